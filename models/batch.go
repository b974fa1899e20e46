package models

// Batch job states.
const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusPartial    = "partial"
)

// BatchCrawlRequest is the payload for POST /api/v1/crawl/batch.
type BatchCrawlRequest struct {
	// URLs are the pages to crawl. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=50,dive,url"`

	// WaitTime is extra time to wait after each load, in milliseconds.
	WaitTime int `json:"wait_time,omitempty" binding:"omitempty,min=0,max=30000"`

	// UseStealth and UseProxy mirror CrawlRequest and apply to every URL.
	UseStealth *bool `json:"use_stealth,omitempty"`
	UseProxy   bool  `json:"use_proxy,omitempty"`
}

// BatchResponse acknowledges an accepted batch.
type BatchResponse struct {
	Success bool         `json:"success"`
	ID      string       `json:"id,omitempty"`
	Status  string       `json:"status,omitempty"`
	Total   int          `json:"total,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// BatchStatusResponse is the response for GET /api/v1/crawl/batch/:id.
type BatchStatusResponse struct {
	Success   bool             `json:"success"`
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Results   []*CrawlResponse `json:"results,omitempty"`
	Error     *ErrorDetail     `json:"error,omitempty"`
}
