package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/models"
)

// Memory serves the interaction log endpoints under /api/v1/memory.
type Memory struct {
	deps *Deps
}

func NewMemory(deps *Deps) *Memory {
	return &Memory{deps: deps}
}

// List answers GET /api/v1/memory?kind=search&limit=20.
func (h *Memory) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "limit must be a non-negative integer",
			}})
			return
		}
		limit = n
	}

	items := h.deps.Memory.List(c.Query("kind"), limit)
	c.JSON(http.StatusOK, gin.H{"success": true, "interactions": items, "count": len(items)})
}

type addNoteRequest struct {
	Kind    string `json:"kind" binding:"omitempty,oneof=search crawl note"`
	Query   string `json:"query,omitempty"`
	URL     string `json:"url,omitempty"`
	Summary string `json:"summary" binding:"required"`
}

// Add answers POST /api/v1/memory with an operator note.
func (h *Memory) Add(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindError(err)})
		return
	}
	if req.Kind == "" {
		req.Kind = memory.KindNote
	}

	item, err := h.deps.Memory.Add(memory.Interaction{
		Kind:    req.Kind,
		Query:   req.Query,
		URL:     req.URL,
		Summary: req.Summary,
	})
	if err != nil {
		detail, status := toDetail(err)
		c.JSON(status, gin.H{"success": false, "error": detail})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "interaction": item})
}

// Delete answers DELETE /api/v1/memory/:id.
func (h *Memory) Delete(c *gin.Context) {
	err := h.deps.Memory.Delete(c.Param("id"))
	if errors.Is(err, memory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: "no interaction with that id",
		}})
		return
	}
	if err != nil {
		detail, status := toDetail(err)
		c.JSON(status, gin.H{"success": false, "error": detail})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Clear answers DELETE /api/v1/memory.
func (h *Memory) Clear(c *gin.Context) {
	if err := h.deps.Memory.Clear(); err != nil {
		detail, status := toDetail(err)
		c.JSON(status, gin.H{"success": false, "error": detail})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
