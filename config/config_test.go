package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("mode = %q", cfg.Server.Mode)
	}
	if !cfg.Browser.Headless {
		t.Error("headless should default to true")
	}
	if cfg.Search.DefaultLang != "en" {
		t.Errorf("default lang = %q", cfg.Search.DefaultLang)
	}
	if cfg.Search.NavigationTimeout != 30*time.Second {
		t.Errorf("nav timeout = %v", cfg.Search.NavigationTimeout)
	}
	if cfg.Search.RetryCount != 2 {
		t.Errorf("retry count = %d", cfg.Search.RetryCount)
	}
	if !cfg.Search.Stealth || !cfg.Search.Humanize {
		t.Error("stealth and humanize should default to true")
	}
	if cfg.Admission.PerMinute != 10 || cfg.Admission.Cooldown != time.Minute {
		t.Errorf("admission = %+v", cfg.Admission)
	}
	if cfg.Cache.MaxEntries != 512 || cfg.Cache.TTL != time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if len(cfg.Proxy.Entries) != 0 {
		t.Errorf("proxies = %v", cfg.Proxy.Entries)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCOUT_PORT", "9090")
	t.Setenv("SCOUT_MODE", "debug")
	t.Setenv("SCOUT_HEADLESS", "false")
	t.Setenv("SCOUT_SEARCH_LANG", "it")
	t.Setenv("SCOUT_NAV_TIMEOUT", "45s")
	t.Setenv("SCOUT_SEARCH_RETRIES", "4")
	t.Setenv("SCOUT_RATE_RPS", "2.5")
	t.Setenv("SCOUT_API_KEYS", "key-one, key-two ,")
	t.Setenv("SCOUT_PROXIES", "http://p1:8080|u|p,http://p2:8080")

	cfg := Load()

	if cfg.Server.Port != 9090 || cfg.Server.Mode != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Browser.Headless {
		t.Error("headless should be off")
	}
	if cfg.Search.DefaultLang != "it" || cfg.Search.NavigationTimeout != 45*time.Second {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Search.RetryCount != 4 {
		t.Errorf("retries = %d", cfg.Search.RetryCount)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("rps = %v", cfg.RateLimit.RequestsPerSecond)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[1] != "key-two" {
		t.Errorf("api keys = %v (empty entries should be dropped)", cfg.Auth.APIKeys)
	}
	if len(cfg.Proxy.Entries) != 2 {
		t.Errorf("proxies = %v", cfg.Proxy.Entries)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("SCOUT_PORT", "not-a-number")
	t.Setenv("SCOUT_NAV_TIMEOUT", "soon")
	t.Setenv("SCOUT_STEALTH", "yes please")

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default on parse failure", cfg.Server.Port)
	}
	if cfg.Search.NavigationTimeout != 30*time.Second {
		t.Errorf("nav timeout = %v, want default", cfg.Search.NavigationTimeout)
	}
	if !cfg.Search.Stealth {
		t.Error("stealth should keep its default on parse failure")
	}
}
