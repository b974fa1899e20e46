// Package handler implements the HTTP handlers behind /api/v1.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/cache"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/loader"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/models"
	"github.com/use-agent/scout/search"
)

// Deps bundles everything the handlers need.
type Deps struct {
	Cfg     *config.Config
	Engine  *search.Engine
	Loader  *loader.Loader
	Cache   *cache.Cache
	Memory  *memory.Store
	Browser *browser.Manager
	Start   time.Time
	Version string
}

// errorStatus maps internal error codes to HTTP statuses.
func errorStatus(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeNavTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeSessionInit, models.ErrCodeContextCreate:
		return http.StatusServiceUnavailable
	case models.ErrCodeNavigation, models.ErrCodeExhausted:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// toDetail converts any error into an API-facing detail plus HTTP status.
// Unknown error types become an opaque internal error: raw messages from
// the browser layer are not for clients.
func toDetail(err error) (*models.ErrorDetail, int) {
	var se *models.SearchError
	if errors.As(err, &se) {
		return se.ToDetail(), errorStatus(se.Code)
	}
	return &models.ErrorDetail{
		Code:    models.ErrCodeInternal,
		Message: "internal error",
	}, http.StatusInternalServerError
}

func bindError(err error) *models.ErrorDetail {
	return &models.ErrorDetail{
		Code:    models.ErrCodeInvalidInput,
		Message: err.Error(),
	}
}
