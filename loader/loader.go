// Package loader fetches single pages on demand: a plain-HTTP fast path
// with a Chrome-shaped TLS handshake, a headless-browser path for pages
// that need JavaScript, and an auto mode that tries HTTP first and falls
// back to the browser when the response looks challenged.
package loader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/metrics"
	"github.com/use-agent/scout/models"
)

// Loader loads single pages. Safe for concurrent use.
type Loader struct {
	mgr  *browser.Manager
	cfg  config.LoaderConfig
	http *httpFetcher
}

func New(mgr *browser.Manager, cfg config.LoaderConfig) *Loader {
	return &Loader{
		mgr:  mgr,
		cfg:  cfg,
		http: newHTTPFetcher(cfg.Timeout),
	}
}

// Load fetches one page per the request's fetch mode and returns the
// parsed page info.
func (l *Loader) Load(ctx context.Context, req *models.LoadRequest) (*models.PageInfo, error) {
	info, err := l.load(ctx, req)
	outcome := "ok"
	method := "browser"
	if err != nil {
		outcome = "error"
	} else {
		method = info.FetchMethod
	}
	metrics.PageLoadsTotal.WithLabelValues(method, outcome).Inc()
	return info, err
}

func (l *Loader) load(ctx context.Context, req *models.LoadRequest) (*models.PageInfo, error) {
	switch req.FetchMode {
	case "http":
		return l.loadHTTP(ctx, req)
	case "browser":
		return l.loadBrowser(ctx, req)
	default:
		// Screenshots and script evaluation need a real page; skip the
		// HTTP probe when the request asks for either.
		if req.Screenshot || req.EvaluateJS != "" {
			return l.loadBrowser(ctx, req)
		}
		info, err := l.loadHTTP(ctx, req)
		if err == nil && !looksChallenged(info.StatusCode, []byte(info.HTML.Full)) {
			return info, nil
		}
		if err != nil {
			slog.Info("http fetch failed, falling back to browser", "url", req.URL, "error", err)
		} else {
			slog.Info("http response looks challenged, falling back to browser",
				"url", req.URL, "status", info.StatusCode)
		}
		return l.loadBrowser(ctx, req)
	}
}

func (l *Loader) loadHTTP(ctx context.Context, req *models.LoadRequest) (*models.PageInfo, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	res, err := l.http.Fetch(fetchCtx, req.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewSearchError(models.ErrCodeNavTimeout, "http fetch timed out", err)
		}
		return nil, models.NewSearchError(models.ErrCodeNavigation, "http fetch failed", err)
	}

	info := buildPageInfo(req.URL, res.FinalURL, res.StatusCode, string(res.Body))
	info.FetchMethod = "http"
	for _, c := range res.Cookies {
		info.Cookies = append(info.Cookies, models.Cookie{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
		})
	}
	return info, nil
}

func (l *Loader) loadBrowser(ctx context.Context, req *models.LoadRequest) (*models.PageInfo, error) {
	bctx, err := l.mgr.NewContext(browser.ContextOptions{
		Locale:   "en-US",
		Timezone: "America/New_York",
		UseProxy: req.UseProxy,
		Stealth:  *req.UseStealth,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := bctx.Close(); closeErr != nil {
			slog.Warn("failed to close browsing context", "error", closeErr)
		}
	}()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()
	p := page.Context(loadCtx)

	if err := p.Navigate(req.URL); err != nil {
		return nil, navError(err, "navigation failed")
	}
	if req.WaitForLoad != nil && *req.WaitForLoad {
		if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			return nil, navError(err, "page never settled")
		}
	} else {
		if err := p.WaitLoad(); err != nil {
			return nil, navError(err, "page load wait failed")
		}
	}
	if req.WaitTime > 0 {
		select {
		case <-loadCtx.Done():
			return nil, navError(loadCtx.Err(), "wait interrupted")
		case <-time.After(time.Duration(req.WaitTime) * time.Millisecond):
		}
	}

	jsResult := ""
	if req.EvaluateJS != "" {
		wrapped := fmt.Sprintf("() => { return %s; }", req.EvaluateJS)
		if obj, evalErr := p.Eval(wrapped); evalErr == nil {
			jsResult = obj.Value.String()
		} else {
			slog.Warn("script evaluation failed", "url", req.URL, "error", evalErr)
			jsResult = "ERROR: " + evalErr.Error()
		}
	}

	pageHTML, err := p.HTML()
	if err != nil {
		return nil, navError(err, "failed to read page HTML")
	}

	status := pageStatus(p)

	finalURL := req.URL
	if pi, infoErr := p.Info(); infoErr == nil && pi.URL != "" {
		finalURL = pi.URL
	}

	info := buildPageInfo(req.URL, finalURL, status, pageHTML)
	info.FetchMethod = "browser"
	info.JSResult = jsResult
	if cookies, cookieErr := p.Cookies(nil); cookieErr == nil {
		for _, ck := range cookies {
			info.Cookies = append(info.Cookies, models.Cookie{
				Name: ck.Name, Value: ck.Value, Domain: ck.Domain, Path: ck.Path,
			})
		}
	}

	if req.Screenshot {
		if shot, shotErr := p.Screenshot(true, nil); shotErr == nil {
			info.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot)
		} else {
			slog.Warn("screenshot failed", "url", req.URL, "error", shotErr)
		}
	}
	return info, nil
}

// pageStatus reads the document's HTTP status from the navigation timing
// entry. CDP network event listeners enable Network-domain interception,
// which conflicts with the Fetch domain on recent Chromium, so the
// status is probed from the page instead. Best-effort: 0 when the entry
// is unavailable.
func pageStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`)
	return statusFromEval(res, err)
}

// statusFromEval unpacks a status probe result, tolerating failed or
// empty evaluations.
func statusFromEval(res *proto.RuntimeRemoteObject, err error) int {
	if err != nil || res == nil {
		return 0
	}
	return res.Value.Int()
}

func navError(err error, msg string) *models.SearchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewSearchError(models.ErrCodeNavTimeout, msg, err)
	}
	return models.NewSearchError(models.ErrCodeNavigation, msg, err)
}
