package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/models"
)

// Health answers liveness probes. "degraded" means the service is up but
// the browser session has not been initialized yet; the first search or
// browser load will initialize it lazily.
type Health struct {
	deps *Deps
}

func NewHealth(deps *Deps) *Health {
	return &Health{deps: deps}
}

func (h *Health) Get(c *gin.Context) {
	ready := h.deps.Browser.Ready()
	status := "healthy"
	if !ready {
		status = "degraded"
	}
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:       status,
		Uptime:       time.Since(h.deps.Start).Round(time.Second).String(),
		BrowserReady: ready,
		Version:      h.deps.Version,
	})
}
