package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/models"
)

// Load serves POST /api/v1/browser/load.
type Load struct {
	deps *Deps
}

func NewLoad(deps *Deps) *Load {
	return &Load{deps: deps}
}

func (h *Load) Post(c *gin.Context) {
	var req models.LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.LoadResponse{Success: false, Error: bindError(err)})
		return
	}
	req.Defaults(h.deps.Cfg.Search.Stealth)

	info, err := h.deps.Loader.Load(c.Request.Context(), &req)
	if err != nil {
		detail, status := toDetail(err)
		slog.Error("page load failed", "url", req.URL, "code", detail.Code, "error", err)
		c.JSON(status, models.LoadResponse{Success: false, Error: detail})
		return
	}

	c.JSON(http.StatusOK, models.LoadResponse{Success: true, Page: info})
}
