package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/models"
)

// Search serves GET and POST /api/v1/search.
type Search struct {
	deps *Deps
}

func NewSearch(deps *Deps) *Search {
	return &Search{deps: deps}
}

// Get binds the request from query parameters.
func (h *Search) Get(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.SearchResponse{Success: false, Error: bindError(err)})
		return
	}
	h.run(c, &req)
}

// Post binds the request from the JSON body.
func (h *Search) Post(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.SearchResponse{Success: false, Error: bindError(err)})
		return
	}
	h.run(c, &req)
}

func (h *Search) run(c *gin.Context, req *models.SearchRequest) {
	cfg := h.deps.Cfg.Search
	req.Defaults(cfg.DefaultLang, cfg.Stealth, cfg.RetryCount)

	// The overall deadline scales with the requested page count; a
	// ten-page walk legitimately takes a while.
	deadline := cfg.PageTimeout * time.Duration(req.MaxPages)
	ctx, cancel := context.WithTimeout(c.Request.Context(), deadline)
	defer cancel()

	data, err := h.deps.Engine.Search(ctx, req)
	if err != nil {
		detail, status := toDetail(err)
		slog.Error("search failed", "query", req.Query, "code", detail.Code, "error", err)
		c.JSON(status, models.SearchResponse{Success: false, Query: req.Query, Error: detail})
		return
	}

	resp := models.SearchResponse{
		Success:      true,
		Query:        data.Query,
		Results:      data.Results,
		StatsText:    data.StatsText,
		PagesFetched: data.PagesFetched,
		Blocked:      data.Blocked,
	}
	// Diagnostics travel on explicit request, and always on a block so
	// the operator can see what the engine served.
	if req.IncludeScreenshot || data.Blocked {
		resp.Debug = &models.DebugInfo{
			ScreenshotBase64: data.ScreenshotBase64,
			HTMLSnippet:      data.HTMLSnippet,
		}
	}

	h.record(data)
	c.JSON(http.StatusOK, resp)
}

func (h *Search) record(data *models.SearchData) {
	summary := fmt.Sprintf("%d results over %d pages", len(data.Results), data.PagesFetched)
	if data.Blocked {
		summary = "blocked by the search engine"
	}
	if _, err := h.deps.Memory.Add(memory.Interaction{
		Kind:    memory.KindSearch,
		Query:   data.Query,
		Summary: summary,
		Results: len(data.Results),
	}); err != nil {
		slog.Warn("failed to record search interaction", "error", err)
	}
}
