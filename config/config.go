package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Search    SearchConfig
	Loader    LoaderConfig
	Proxy     ProxyConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Admission AdmissionConfig
	Cache     CacheConfig
	Memory    MemoryConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Rod browser session.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// SearchConfig controls the paginated search engine.
type SearchConfig struct {
	// DefaultLang is the language used when a request omits one.
	DefaultLang string // default: "en"

	// NavigationTimeout bounds a single page navigation.
	NavigationTimeout time.Duration // default: 30s

	// PageTimeout is the per-result-page budget; the handler scales the
	// overall deadline by the requested page count.
	PageTimeout time.Duration // default: 90s

	// RetryCount is the default number of extra attempts after a failure.
	RetryCount int // default: 2

	// Stealth enables fingerprint randomization and the anti-detection
	// startup script by default.
	Stealth bool // default: true

	// Humanize enables randomized pointer movement and scrolling between
	// navigation and extraction.
	Humanize bool // default: true
}

// LoaderConfig controls the single-page loader.
type LoaderConfig struct {
	// Timeout bounds one page load end to end.
	Timeout time.Duration // default: 60s
}

// ProxyConfig holds the externally supplied proxy pool.
// An empty list means "no proxy".
type ProxyConfig struct {
	// Entries is a comma-separated list of "server|username|password"
	// records; username and password are optional.
	Entries []string
}

// AuthConfig controls API token authentication.
type AuthConfig struct {
	// Enabled toggles token authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API tokens.
	APIKeys []string
}

// RateLimitConfig controls the per-identity token bucket applied to all
// protected routes.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// AdmissionConfig controls the sliding-window admission gate in front of
// the search endpoints.
type AdmissionConfig struct {
	// PerMinute is the number of searches allowed per client per minute.
	PerMinute int // default: 10

	// Cooldown is how long a client is locked out after exceeding the
	// window.
	Cooldown time.Duration // default: 60s
}

// CacheConfig controls the crawl response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached renders.
	MaxEntries int // default: 512

	// TTL is the hard upper bound on entry age.
	TTL time.Duration // default: 1h
}

// MemoryConfig controls the interaction log storage.
type MemoryConfig struct {
	// Path is the JSON file backing the interaction log.
	Path string // default: "data/interactions.json"

	// MaxBackups is how many rotated backup files are kept.
	MaxBackups int // default: 3
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("SCOUT_PORT", 8080),
			Mode: envOr("SCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("SCOUT_HEADLESS", true),
			NoSandbox:  envBoolOr("SCOUT_NO_SANDBOX", false),
			BrowserBin: os.Getenv("SCOUT_BROWSER_BIN"),
		},
		Search: SearchConfig{
			DefaultLang:       envOr("SCOUT_SEARCH_LANG", "en"),
			NavigationTimeout: envDurationOr("SCOUT_NAV_TIMEOUT", 30*time.Second),
			PageTimeout:       envDurationOr("SCOUT_SEARCH_TIMEOUT", 90*time.Second),
			RetryCount:        envIntOr("SCOUT_SEARCH_RETRIES", 2),
			Stealth:           envBoolOr("SCOUT_STEALTH", true),
			Humanize:          envBoolOr("SCOUT_HUMANIZE", true),
		},
		Loader: LoaderConfig{
			Timeout: envDurationOr("SCOUT_LOAD_TIMEOUT", 60*time.Second),
		},
		Proxy: ProxyConfig{
			Entries: envSliceOr("SCOUT_PROXIES", nil),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SCOUT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCOUT_RATE_RPS", 5.0),
			Burst:             envIntOr("SCOUT_RATE_BURST", 10),
		},
		Admission: AdmissionConfig{
			PerMinute: envIntOr("SCOUT_SEARCH_RATE_LIMIT", 10),
			Cooldown:  envDurationOr("SCOUT_SEARCH_COOLDOWN", 60*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SCOUT_CACHE_MAX_ENTRIES", 512),
			TTL:        envDurationOr("SCOUT_CACHE_TTL", time.Hour),
		},
		Memory: MemoryConfig{
			Path:       envOr("SCOUT_MEMORY_PATH", "data/interactions.json"),
			MaxBackups: envIntOr("SCOUT_MEMORY_BACKUPS", 3),
		},
		Log: LogConfig{
			Level:  envOr("SCOUT_LOG_LEVEL", "info"),
			Format: envOr("SCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
