// Package search implements the paginated, browser-driven search engine:
// randomized browsing contexts, result-page pagination, selector-chain
// extraction, block detection and the outer retry loop.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/metrics"
	"github.com/use-agent/scout/models"
)

// Snapshot is the outcome of one page navigation.
type Snapshot struct {
	FinalURL    string
	HTML        string
	Blocked     bool
	BlockMarker string

	// Screenshot is the full-page capture taken when Blocked is set.
	Screenshot []byte
}

// Fetcher loads result pages and captures diagnostics. *Navigator is the
// browser-backed implementation; tests substitute in-memory fakes.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Snapshot, error)
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
}

// Attempt is one search attempt's browser surface: a page fetcher plus
// the teardown of the browsing context behind it.
type Attempt interface {
	Fetcher() Fetcher
	Close() error
}

// OpenFunc opens a fresh Attempt. The production implementation creates
// a randomized browsing context on the shared session; a failed open
// leaves nothing for the caller to close.
type OpenFunc func(ctx context.Context, req *models.SearchRequest) (Attempt, error)

// Engine runs searches. Each attempt gets a fresh browsing context with
// a fresh fingerprint, so a retry after a block or timeout does not
// reuse the identity that just failed.
type Engine struct {
	open OpenFunc
	cfg  config.SearchConfig
}

// NewEngine builds an Engine on the shared browser session.
func NewEngine(mgr *browser.Manager, cfg config.SearchConfig) *Engine {
	return &Engine{
		cfg: cfg,
		open: func(_ context.Context, req *models.SearchRequest) (Attempt, error) {
			return openBrowserAttempt(mgr, cfg, req)
		},
	}
}

// NewEngineWithOpener builds an Engine with a custom attempt opener.
// Used by tests to substitute fake fetchers.
func NewEngineWithOpener(open OpenFunc, cfg config.SearchConfig) *Engine {
	return &Engine{open: open, cfg: cfg}
}

// Search runs a query to completion: up to RetryCount+1 attempts, each
// in its own browsing context, with linearly growing backoff between
// attempts. A blocked outcome is a success whose SearchData says so;
// only infrastructure failures are retried. When every attempt fails the
// last error is wrapped under the exhaustion code.
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchData, error) {
	start := time.Now()
	retries := *req.RetryCount
	backoff := time.Duration(req.SleepInterval * float64(time.Second))

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			metrics.SearchRetriesTotal.Inc()
			slog.Info("retrying search",
				"query", req.Query,
				"attempt", attempt+1,
				"maxAttempts", retries+1,
			)
		}

		data, err := e.runAttempt(ctx, req, attempt)
		if err == nil {
			outcome := "ok"
			if data.Blocked {
				outcome = "blocked"
			}
			metrics.SearchesTotal.WithLabelValues(outcome).Inc()
			metrics.SearchDuration.Observe(time.Since(start).Seconds())
			return data, nil
		}
		lastErr = err
		slog.Warn("search attempt failed",
			"query", req.Query,
			"attempt", attempt+1,
			"error", err,
		)

		if ctx.Err() != nil {
			break
		}
		if attempt < retries {
			if err := sleepCtx(ctx, backoff*time.Duration(attempt+1)); err != nil {
				lastErr = err
				break
			}
		}
	}

	metrics.SearchesTotal.WithLabelValues("error").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if ctx.Err() != nil {
		// Caller deadline or cancellation, not retry exhaustion.
		return nil, categorizeNavError(ctx.Err(), "search interrupted")
	}
	return nil, models.NewSearchError(
		models.ErrCodeExhausted,
		fmt.Sprintf("search failed after %d attempts", retries+1),
		lastErr,
	)
}

// runAttempt executes one attempt in a fresh browsing context. The
// context is closed on every exit path; leaking one leaks a browser
// profile for the life of the session.
func (e *Engine) runAttempt(ctx context.Context, req *models.SearchRequest, attempt int) (*models.SearchData, error) {
	at, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := at.Close(); closeErr != nil {
			slog.Warn("failed to close browsing context", "error", closeErr)
		}
	}()

	return e.paginate(ctx, at.Fetcher(), req, attempt)
}

// browserAttempt binds a Navigator to the browsing context it runs in.
type browserAttempt struct {
	bctx *browser.Context
	nav  *Navigator
}

func openBrowserAttempt(mgr *browser.Manager, cfg config.SearchConfig, req *models.SearchRequest) (Attempt, error) {
	bctx, err := mgr.NewContext(browser.ContextOptions{
		Locale:   req.Lang,
		Timezone: timezoneFor(req.Lang),
		UseProxy: req.UseProxy,
		Stealth:  *req.UseStealth,
	})
	if err != nil {
		return nil, err
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, err
	}
	seedConsentCookies(page, baseLang(req.Lang))

	nav := NewNavigator(page, NavigatorOptions{
		Timeout:  cfg.NavigationTimeout,
		Wait:     WaitMinimal,
		Pause:    time.Duration(req.SleepInterval * float64(time.Second) / 2),
		Humanize: cfg.Humanize && *req.UseStealth,
	})
	return &browserAttempt{bctx: bctx, nav: nav}, nil
}

func (a *browserAttempt) Fetcher() Fetcher { return a.nav }
func (a *browserAttempt) Close() error     { return a.bctx.Close() }

// timezones pairs a plausible IANA zone with each supported language so
// the context's clock agrees with its Accept-Language.
var timezones = map[string]string{
	"en": "America/New_York",
	"it": "Europe/Rome",
	"fr": "Europe/Paris",
	"de": "Europe/Berlin",
	"es": "Europe/Madrid",
	"pt": "Europe/Lisbon",
	"nl": "Europe/Amsterdam",
	"ja": "Asia/Tokyo",
	"zh": "Asia/Shanghai",
}

func timezoneFor(lang string) string {
	if tz, ok := timezones[baseLang(lang)]; ok {
		return tz
	}
	return "UTC"
}

func baseLang(lang string) string {
	if i := strings.IndexByte(lang, '-'); i > 0 {
		return lang[:i]
	}
	return lang
}
