package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/cache"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/metrics"
	"github.com/use-agent/scout/models"
	"github.com/use-agent/scout/render"
)

// crawlFunc crawls one page. Swappable so the batch handler's tests can
// run without a browser.
type crawlFunc func(ctx context.Context, deps *Deps, req *models.CrawlRequest) (*models.CrawlResponse, int)

// Crawl serves POST /api/v1/crawl/page: load a page, extract its main
// content and return it as Markdown, with an optional response cache.
type Crawl struct {
	deps *Deps
}

func NewCrawl(deps *Deps) *Crawl {
	return &Crawl{deps: deps}
}

func (h *Crawl) Post(c *gin.Context) {
	var req models.CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.CrawlResponse{Success: false, Error: bindError(err)})
		return
	}
	resp, status := crawlPage(c.Request.Context(), h.deps, &req)
	c.JSON(status, resp)
}

// crawlPage runs one crawl end to end and returns the response plus the
// HTTP status it should travel with.
func crawlPage(ctx context.Context, deps *Deps, req *models.CrawlRequest) (*models.CrawlResponse, int) {
	cacheStatus := ""
	if req.MaxAge > 0 {
		maxAge := time.Duration(req.MaxAge) * time.Millisecond
		if entry, ok := deps.Cache.Get(req.URL, maxAge); ok {
			metrics.CrawlCache.WithLabelValues("hit").Inc()
			return &models.CrawlResponse{
				Success:     true,
				URL:         entry.URL,
				FinalURL:    entry.FinalURL,
				Title:       entry.Title,
				Markdown:    entry.Markdown,
				CacheStatus: "hit",
			}, http.StatusOK
		}
		metrics.CrawlCache.WithLabelValues("miss").Inc()
		cacheStatus = "miss"
	}

	loadReq := &models.LoadRequest{
		URL:        req.URL,
		WaitTime:   req.WaitTime,
		UseStealth: req.UseStealth,
		UseProxy:   req.UseProxy,
	}
	loadReq.Defaults(deps.Cfg.Search.Stealth)

	info, err := deps.Loader.Load(ctx, loadReq)
	if err != nil {
		detail, status := toDetail(err)
		slog.Error("crawl load failed", "url", req.URL, "code", detail.Code, "error", err)
		return &models.CrawlResponse{Success: false, URL: req.URL, Error: detail}, status
	}

	article, err := render.FromHTML(info.HTML.Full, info.FinalURL)
	if err != nil {
		detail, status := toDetail(err)
		slog.Error("crawl render failed", "url", req.URL, "code", detail.Code, "error", err)
		return &models.CrawlResponse{Success: false, URL: req.URL, Error: detail}, status
	}

	title := article.Title
	if title == "" {
		title = info.Title
	}

	deps.Cache.Put(cache.Entry{
		URL:      req.URL,
		FinalURL: info.FinalURL,
		Title:    title,
		Markdown: article.Markdown,
	})

	if _, memErr := deps.Memory.Add(memory.Interaction{
		Kind:    memory.KindCrawl,
		URL:     req.URL,
		Summary: title,
	}); memErr != nil {
		slog.Warn("failed to record crawl interaction", "error", memErr)
	}

	return &models.CrawlResponse{
		Success:     true,
		URL:         req.URL,
		FinalURL:    info.FinalURL,
		Title:       title,
		Markdown:    article.Markdown,
		CacheStatus: cacheStatus,
	}, http.StatusOK
}
