package models

// MapRequest is the payload for POST /api/v1/map.
type MapRequest struct {
	// URL is the page whose outgoing links to discover. Required.
	URL string `json:"url" binding:"required,url"`

	// ExternalOnly keeps only links leaving the page's host.
	ExternalOnly bool `json:"external_only,omitempty"`
}

// MapResponse is the response for POST /api/v1/map.
type MapResponse struct {
	Success bool         `json:"success"`
	URLs    []string     `json:"urls"`
	Total   int          `json:"total"`
	Error   *ErrorDetail `json:"error,omitempty"`
}
