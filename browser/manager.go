// Package browser owns the shared headless-browser session and hands out
// isolated, fingerprint-randomized browsing contexts.
package browser

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/models"
)

// Manager owns the single long-lived browser process. It is safe for
// concurrent use; at most one browser exists at a time and it is launched
// lazily on first acquire.
type Manager struct {
	mu      sync.Mutex
	browser *rod.Browser
	launch  *launcher.Launcher
	cfg     config.BrowserConfig
	proxies *ProxyPool
}

// NewManager creates a Manager. The browser is not launched until the
// first call to Browser or NewContext.
func NewManager(cfg config.BrowserConfig, proxies *ProxyPool) *Manager {
	if proxies == nil {
		proxies = NewProxyPool(nil)
	}
	return &Manager{cfg: cfg, proxies: proxies}
}

// Browser returns the shared browser session, launching it on first use.
// Initialization is serialized: concurrent callers never launch two
// processes. On a failed launch any partially created process is torn
// down before the error is returned, so a later call retries cleanly.
func (m *Manager) Browser() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return m.browser, nil
	}

	l := launcher.New().
		Headless(m.cfg.Headless).
		NoSandbox(m.cfg.NoSandbox)

	if m.cfg.BrowserBin != "" {
		l = l.Bin(m.cfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-accelerated-2d-canvas"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"failed to launch browser",
			err,
		)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		// The process launched but the CDP handshake failed; kill it so
		// the failure path leaks nothing.
		l.Kill()
		return nil, models.NewSearchError(
			models.ErrCodeSessionInit,
			"failed to connect to browser",
			err,
		)
	}

	m.browser = b
	m.launch = l
	slog.Info("browser session ready", "controlURL", controlURL)
	return b, nil
}

// Ready reports whether the browser session is currently initialized.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser != nil
}

// Close tears down the browser session and resets the Manager so a
// subsequent Browser call re-initializes. Call on graceful shutdown to
// prevent zombie Chrome processes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return
	}
	slog.Info("closing browser session")
	if err := m.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	if m.launch != nil {
		m.launch.Kill()
	}
	m.browser = nil
	m.launch = nil
}
