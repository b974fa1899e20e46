package models

// LoadRequest is the payload for POST /api/v1/browser/load.
type LoadRequest struct {
	// URL is the page to load. Required.
	URL string `json:"url" binding:"required,url"`

	// WaitForLoad waits for the DOM to settle instead of returning on the
	// initial response. Default: true.
	WaitForLoad *bool `json:"wait_for_load,omitempty"`

	// WaitTime is extra time to wait after load, in milliseconds.
	WaitTime int `json:"wait_time,omitempty" binding:"omitempty,min=0,max=30000"`

	// Screenshot captures a full-page screenshot (base64).
	Screenshot bool `json:"screenshot,omitempty"`

	// EvaluateJS is an optional JavaScript expression evaluated on the
	// loaded page; its result is returned in PageInfo.JSResult.
	EvaluateJS string `json:"evaluate_js,omitempty"`

	// UseStealth uses a fingerprint-randomized context with the
	// anti-detection startup script. Default: true.
	UseStealth *bool `json:"use_stealth,omitempty"`

	// UseProxy routes the context through a proxy from the pool.
	UseProxy bool `json:"use_proxy,omitempty"`

	// FetchMode selects the fetch path.
	// "auto" (default): try plain HTTP first, fall back to the browser.
	// "http": HTTP only (no JS rendering, no screenshot).
	// "browser": always drive the headless browser.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=auto browser http"`
}

// Defaults applies default values to unset fields.
func (r *LoadRequest) Defaults(defaultStealth bool) {
	if r.WaitForLoad == nil {
		t := true
		r.WaitForLoad = &t
	}
	if r.UseStealth == nil {
		s := defaultStealth
		r.UseStealth = &s
	}
	if r.FetchMode == "" {
		r.FetchMode = "auto"
	}
}

// PageInfo is the result of loading a single page.
type PageInfo struct {
	URL        string `json:"url"`
	FinalURL   string `json:"final_url"`
	StatusCode int    `json:"status_code"`
	Title      string `json:"title"`

	HTML PageHTML `json:"html"`

	// MetaTags holds name/content pairs for common SEO meta tags plus the
	// canonical link.
	MetaTags map[string]string `json:"meta_tags,omitempty"`

	// OGTags holds Open Graph property/content pairs.
	OGTags map[string]string `json:"og_tags,omitempty"`

	Links LinksResult `json:"links"`

	// Cookies are the cookies visible after the load.
	Cookies []Cookie `json:"cookies,omitempty"`

	// FetchMethod reports which path produced the page: "http" or "browser".
	FetchMethod string `json:"fetch_method"`

	JSResult         string `json:"js_result,omitempty"`
	ScreenshotBase64 string `json:"screenshot,omitempty"`
}

// PageHTML splits the document into head and body for callers that only
// need one of them.
type PageHTML struct {
	Full string `json:"full"`
	Head string `json:"head,omitempty"`
	Body string `json:"body,omitempty"`
}

// LinksResult separates extracted links into internal and external groups.
type LinksResult struct {
	Internal []Link `json:"internal"`
	External []Link `json:"external"`
}

// Link represents a hyperlink extracted from the page.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// Cookie is a cookie observed on the loaded page.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

// LoadResponse is the response for POST /api/v1/browser/load.
type LoadResponse struct {
	Success bool         `json:"success"`
	Page    *PageInfo    `json:"page,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// CrawlRequest is the payload for POST /api/v1/crawl/page.
type CrawlRequest struct {
	URL string `json:"url" binding:"required,url"`

	// WaitTime is extra time to wait after load, in milliseconds.
	WaitTime int `json:"wait_time,omitempty" binding:"omitempty,min=0,max=30000"`

	// UseStealth and UseProxy mirror LoadRequest.
	UseStealth *bool `json:"use_stealth,omitempty"`
	UseProxy   bool  `json:"use_proxy,omitempty"`

	// MaxAge enables the response cache: a cached render younger than
	// MaxAge milliseconds is returned without touching the browser.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// CrawlResponse is the response for POST /api/v1/crawl/page.
type CrawlResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	FinalURL string `json:"final_url,omitempty"`
	Title    string `json:"title,omitempty"`

	// Markdown is the readability-extracted page body rendered as Markdown.
	Markdown string `json:"markdown,omitempty"`

	// CacheStatus is "hit" or "miss" when caching was requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "healthy" or "degraded"
	Uptime       string `json:"uptime"`
	BrowserReady bool   `json:"browser_ready"`
	Version      string `json:"version"`
}
