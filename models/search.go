package models

// BlockSentinel is the StatsText prefix reported when the search engine
// served an anti-scraping response instead of results. The API layer keys
// off this marker to classify the outcome as a block rather than an empty
// result set.
const BlockSentinel = "ERROR: search engine blocked the request"

// SearchRequest is the payload for GET/POST /api/v1/search.
type SearchRequest struct {
	// Query is the search query. Required.
	Query string `form:"query" json:"query" binding:"required"`

	// Lang selects the result language (e.g. "en", "it", "fr-FR").
	// Default: config SearchConfig.DefaultLang.
	Lang string `form:"lang" json:"lang,omitempty"`

	// ResultsPerPage caps how many results are kept per result page.
	// Default: 5. Max: 20.
	ResultsPerPage int `form:"results_per_page" json:"results_per_page,omitempty" binding:"omitempty,min=1,max=20"`

	// MaxPages is how many result pages to walk at most.
	// Default: 1. Max: 10.
	MaxPages int `form:"max_pages" json:"max_pages,omitempty" binding:"omitempty,min=1,max=10"`

	// SleepInterval is the pause in seconds between page fetches. It also
	// scales the retry backoff. Default: 2.0.
	SleepInterval float64 `form:"sleep_interval" json:"sleep_interval,omitempty" binding:"omitempty,min=0"`

	// RetryCount is how many extra attempts are made after a failed one.
	// Default: 2.
	RetryCount *int `form:"retry_count" json:"retry_count,omitempty" binding:"omitempty,min=0,max=5"`

	// IncludeScreenshot returns the first-page diagnostic screenshot
	// (base64) in the response. Default: false.
	IncludeScreenshot bool `form:"include_screenshot" json:"include_screenshot,omitempty"`

	// UseStealth enables the anti-detection startup script and fingerprint
	// randomization. Default: true (config).
	UseStealth *bool `form:"use_stealth" json:"use_stealth,omitempty"`

	// UseProxy routes the browsing context through a proxy from the pool.
	// Default: false.
	UseProxy bool `form:"use_proxy" json:"use_proxy,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults(defaultLang string, defaultStealth bool, defaultRetries int) {
	if r.Lang == "" {
		r.Lang = defaultLang
	}
	if r.ResultsPerPage == 0 {
		r.ResultsPerPage = 5
	}
	if r.ResultsPerPage > 20 {
		r.ResultsPerPage = 20
	}
	if r.MaxPages <= 0 {
		r.MaxPages = 1
	}
	if r.MaxPages > 10 {
		r.MaxPages = 10
	}
	if r.SleepInterval == 0 {
		r.SleepInterval = 2.0
	}
	if r.RetryCount == nil {
		n := defaultRetries
		r.RetryCount = &n
	}
	if r.UseStealth == nil {
		s := defaultStealth
		r.UseStealth = &s
	}
}

// ResultItem is one organic search result.
type ResultItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`

	// Page is the 1-based result page the item was extracted from.
	Page int `json:"page"`
}

// SearchData is the accumulated outcome of one multi-page search attempt.
type SearchData struct {
	Query        string       `json:"query"`
	Results      []ResultItem `json:"results"`
	StatsText    string       `json:"stats"`
	PagesFetched int          `json:"pages_fetched"`

	// Blocked is set when the engine detected an anti-scraping response.
	// The search still "succeeds"; StatsText carries BlockSentinel.
	Blocked bool `json:"blocked,omitempty"`

	// ScreenshotBase64 is the first-page diagnostic screenshot, or the
	// full-page block screenshot when Blocked is set.
	ScreenshotBase64 string `json:"screenshot,omitempty"`

	// HTMLSnippet is a truncated slice of raw page HTML, populated only
	// when zero results were found or a block was detected.
	HTMLSnippet string `json:"html_snippet,omitempty"`
}

// SearchResponse is the response for the search endpoints.
type SearchResponse struct {
	Success      bool         `json:"success"`
	Query        string       `json:"query,omitempty"`
	Results      []ResultItem `json:"results,omitempty"`
	StatsText    string       `json:"stats,omitempty"`
	PagesFetched int          `json:"pages_fetched,omitempty"`
	Blocked      bool         `json:"blocked,omitempty"`
	Debug        *DebugInfo   `json:"debug_info,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// DebugInfo carries diagnostic artifacts attached on request or on block.
type DebugInfo struct {
	ScreenshotBase64 string `json:"screenshot,omitempty"`
	HTMLSnippet      string `json:"html_snippet,omitempty"`
}
