package browser

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/scout/models"
	"github.com/ysmood/gson"
)

// ContextOptions configure a new browsing context.
type ContextOptions struct {
	// Locale is a BCP 47 tag, e.g. "en-US" or "it-IT".
	Locale string

	// Timezone is an IANA zone name, e.g. "Europe/Rome".
	Timezone string

	// UseProxy draws the next proxy from the pool and routes the whole
	// context through it. With an empty pool the context runs direct.
	UseProxy bool

	// Stealth injects the anti-detection startup scripts into every page.
	Stealth bool
}

// Context is an isolated browsing context (own cookie jar, cache and
// fingerprint) within the shared browser session. The creator owns it and
// must Close it on every exit path: a context left open leaks a real
// browser profile.
type Context struct {
	browser *rod.Browser
	id      proto.BrowserBrowserContextID
	fp      Fingerprint
	proxy   *Proxy
	stealth bool
}

// NewContext builds a randomized browsing context from the shared session,
// launching the session first if needed.
func (m *Manager) NewContext(opts ContextOptions) (*Context, error) {
	b, err := m.Browser()
	if err != nil {
		return nil, err
	}

	var proxy *Proxy
	create := proto.TargetCreateBrowserContext{}
	if opts.UseProxy {
		if proxy = m.proxies.Next(); proxy != nil {
			create.ProxyServer = proxy.Server
		}
	}

	res, err := create.Call(b)
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeContextCreate,
			"failed to create browsing context",
			err,
		)
	}

	fp := randomFingerprint(opts.Locale, opts.Timezone)
	slog.Debug("browsing context created",
		"viewport", fp.ViewportWidth,
		"colorScheme", fp.ColorScheme,
		"proxy", proxy != nil,
	)

	return &Context{
		browser: b,
		id:      res.BrowserContextID,
		fp:      fp,
		proxy:   proxy,
		stealth: opts.Stealth,
	}, nil
}

// Fingerprint returns the randomized identity parameters of this context.
func (c *Context) Fingerprint() Fingerprint {
	return c.fp
}

// NewPage opens a page inside the context with the fingerprint and
// startup scripts applied. Scripts must be installed before the first
// navigation or they never take effect.
func (c *Context) NewPage() (*rod.Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{
		URL:              "about:blank",
		BrowserContextID: c.id,
	})
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeContextCreate,
			"failed to open page in browsing context",
			err,
		)
	}

	if c.proxy != nil && c.proxy.Username != "" {
		waitAuth := c.browser.HandleAuth(c.proxy.Username, c.proxy.Password)
		go func() {
			if authErr := waitAuth(); authErr != nil {
				slog.Debug("proxy auth handler exited", "error", authErr)
			}
		}()
	}

	if err := c.applyFingerprint(page); err != nil {
		_ = page.Close()
		return nil, models.NewSearchError(
			models.ErrCodeContextCreate,
			"failed to apply context fingerprint",
			err,
		)
	}

	if c.stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
		if _, evalErr := page.EvalOnNewDocument(maskScript(languageList(c.fp.Locale))); evalErr != nil {
			slog.Warn("mask script injection failed", "error", evalErr)
		}
	}

	return page, nil
}

// applyFingerprint pushes the randomized identity onto the page via CDP
// emulation overrides.
func (c *Context) applyFingerprint(page *rod.Page) error {
	fp := c.fp

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             fp.ViewportWidth,
		Height:            fp.ViewportHeight,
		DeviceScaleFactor: fp.DeviceScaleFactor,
		Mobile:            false,
	}).Call(page); err != nil {
		return err
	}

	if err := touchOverride(fp).Call(page); err != nil {
		return err
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      fp.UserAgent,
		AcceptLanguage: fp.AcceptLanguage(),
	}).Call(page); err != nil {
		return err
	}

	if fp.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: fp.Locale}).Call(page); err != nil {
			return err
		}
	}
	if fp.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: fp.Timezone}).Call(page); err != nil {
			return err
		}
	}

	if err := (proto.EmulationSetEmulatedMedia{
		Features: []*proto.EmulationMediaFeature{
			{Name: "prefers-color-scheme", Value: fp.ColorScheme},
		},
	}).Call(page); err != nil {
		return err
	}

	// Accept-Language is also pinned as an explicit header: some sites
	// read the header, not navigator.languages.
	return proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept-Language": gson.New(fp.AcceptLanguage()),
		},
	}.Call(page)
}

// touchOverride builds the touch emulation override for a fingerprint.
// MaxTouchPoints is optional on the wire, so it goes in as a pointer.
func touchOverride(fp Fingerprint) *proto.EmulationSetTouchEmulationEnabled {
	maxTouch := 5
	return &proto.EmulationSetTouchEmulationEnabled{
		Enabled:        fp.HasTouch,
		MaxTouchPoints: &maxTouch,
	}
}

// Close disposes the browsing context and every page in it.
func (c *Context) Close() error {
	return proto.TargetDisposeBrowserContext{BrowserContextID: c.id}.Call(c.browser)
}
