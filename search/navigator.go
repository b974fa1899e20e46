package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/models"
)

// WaitPolicy selects how long a navigation waits before the page is
// considered ready.
type WaitPolicy int

const (
	// WaitMinimal waits for the load event only. Result pages render
	// their organic results server-side, so this is enough for them.
	WaitMinimal WaitPolicy = iota

	// WaitFull additionally waits for the DOM to stop mutating. Used for
	// script-heavy pages. WaitRequestIdle is deliberately avoided: it
	// needs the Fetch domain, which recent Chromium builds reject when
	// request interception is already active.
	WaitFull
)

// NavigatorOptions configure a Navigator.
type NavigatorOptions struct {
	// Timeout bounds one Fetch end to end.
	Timeout time.Duration

	// Wait selects the readiness policy applied after navigation.
	Wait WaitPolicy

	// Pause is the human-like dwell time after the page is ready, jittered
	// by up to 50 percent.
	Pause time.Duration

	// Humanize moves the pointer and scrolls between load and snapshot.
	Humanize bool
}

// Navigator is the browser-backed Fetcher. It drives a single page that
// lives inside one browsing context; it is not safe for concurrent use.
type Navigator struct {
	page *rod.Page
	opts NavigatorOptions
}

func NewNavigator(page *rod.Page, opts NavigatorOptions) *Navigator {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Navigator{page: page, opts: opts}
}

// Fetch navigates to pageURL, waits per the policy and returns a snapshot
// of the rendered document. Block detection runs on the snapshot: a
// blocked page is a successful fetch whose snapshot says Blocked, with a
// full-page screenshot attached for diagnosis.
func (n *Navigator) Fetch(ctx context.Context, pageURL string) (*Snapshot, error) {
	navCtx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()
	p := n.page.Context(navCtx)

	if err := p.Navigate(pageURL); err != nil {
		return nil, categorizeNavError(err, "navigation to result page failed")
	}

	switch n.opts.Wait {
	case WaitFull:
		if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
			return nil, categorizeNavError(err, "page never settled")
		}
	default:
		if err := p.WaitLoad(); err != nil {
			return nil, categorizeNavError(err, "page load wait failed")
		}
	}

	if n.opts.Pause > 0 {
		jittered := n.opts.Pause + time.Duration(rand.Int64N(int64(n.opts.Pause)))/2
		if err := sleepCtx(navCtx, jittered); err != nil {
			return nil, categorizeNavError(err, "dwell interrupted")
		}
	}
	if n.opts.Humanize {
		browser.Humanize(p)
		browser.RandomScroll(p)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, categorizeNavError(err, "failed to read page HTML")
	}

	snap := &Snapshot{FinalURL: finalURL(p, pageURL), HTML: html}
	if marker := MatchBlockMarker(html); marker != "" {
		snap.Blocked = true
		snap.BlockMarker = marker
		shot, shotErr := p.Screenshot(true, nil)
		if shotErr != nil {
			slog.Warn("block screenshot failed", "error", shotErr)
		}
		snap.Screenshot = shot
	}
	return snap, nil
}

// Screenshot captures the current page, viewport-sized or full-page.
func (n *Navigator) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return n.page.Context(ctx).Screenshot(fullPage, nil)
}

func finalURL(p *rod.Page, fallback string) string {
	info, err := p.Info()
	if err != nil || info.URL == "" {
		return fallback
	}
	return info.URL
}

// seedConsentCookies pre-accepts the engine's cookie consent so the first
// navigation lands on results instead of the consent interstitial.
func seedConsentCookies(page *rod.Page, lang string) {
	stamp := time.Now().AddDate(0, 0, -30).Format("20060102")
	err := page.SetCookies([]*proto.NetworkCookieParam{
		{
			Name:   "CONSENT",
			Value:  fmt.Sprintf("YES+cb.%s-17-p0.%s+FX+%03d", stamp, lang, rand.IntN(1000)),
			Domain: ".google.com",
			Path:   "/",
		},
		{
			Name:   "SOCS",
			Value:  "CAESHAgBEhJnd3NfMjAyNDA4MDUtMF9SQzIaAmVuIAEaBgiAo_y1Bg",
			Domain: ".google.com",
			Path:   "/",
		},
	})
	if err != nil {
		slog.Debug("consent cookie seeding failed", "error", err)
	}
}

// categorizeNavError wraps a navigation failure with the right error
// code. Deadline and cancellation both map to the timeout code so the
// API layer can report a 504.
func categorizeNavError(err error, msg string) *models.SearchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewSearchError(models.ErrCodeNavTimeout, msg, err)
	}
	return models.NewSearchError(models.ErrCodeNavigation, msg, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
