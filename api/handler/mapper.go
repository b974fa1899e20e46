package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/models"
)

// Mapper serves POST /api/v1/map: load one page and report the URLs it
// links to, for crawl frontier building.
type Mapper struct {
	deps *Deps
}

func NewMapper(deps *Deps) *Mapper {
	return &Mapper{deps: deps}
}

func (h *Mapper) Post(c *gin.Context) {
	var req models.MapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.MapResponse{Success: false, Error: bindError(err)})
		return
	}

	loadReq := &models.LoadRequest{URL: req.URL}
	loadReq.Defaults(h.deps.Cfg.Search.Stealth)

	info, err := h.deps.Loader.Load(c.Request.Context(), loadReq)
	if err != nil {
		detail, status := toDetail(err)
		slog.Error("map load failed", "url", req.URL, "code", detail.Code, "error", err)
		c.JSON(status, models.MapResponse{Success: false, Error: detail})
		return
	}

	urls := make([]string, 0, len(info.Links.Internal)+len(info.Links.External))
	if !req.ExternalOnly {
		for _, l := range info.Links.Internal {
			urls = append(urls, l.Href)
		}
	}
	for _, l := range info.Links.External {
		urls = append(urls, l.Href)
	}

	c.JSON(http.StatusOK, models.MapResponse{Success: true, URLs: urls, Total: len(urls)})
}
