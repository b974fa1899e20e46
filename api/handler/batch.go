package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/scout/models"
)

// batchWorkers bounds how many pages of one batch are crawled at once.
// Each crawl can occupy a browser context, so this stays small.
const batchWorkers = 2

// jobRetention is how long a finished job stays queryable.
const jobRetention = time.Hour

type batchJob struct {
	id    string
	total int

	mu        sync.Mutex
	status    string
	completed int
	doneAt    time.Time
	results   []*models.CrawlResponse
}

func (j *batchJob) snapshot() models.BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()

	results := make([]*models.CrawlResponse, len(j.results))
	copy(results, j.results)
	return models.BatchStatusResponse{
		Success:   true,
		ID:        j.id,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.total,
		Results:   results,
	}
}

// Batch serves POST /api/v1/crawl/batch and GET /api/v1/crawl/batch/:id.
// Batches run asynchronously; the POST answers immediately with a job ID.
type Batch struct {
	deps  *Deps
	crawl crawlFunc

	mu   sync.Mutex
	jobs map[string]*batchJob
}

func NewBatch(deps *Deps) *Batch {
	return &Batch{
		deps:  deps,
		crawl: crawlPage,
		jobs:  make(map[string]*batchJob),
	}
}

func (h *Batch) Post(c *gin.Context) {
	var req models.BatchCrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.BatchResponse{Success: false, Error: bindError(err)})
		return
	}

	job := &batchJob{
		id:      uuid.NewString(),
		total:   len(req.URLs),
		status:  models.BatchStatusProcessing,
		results: make([]*models.CrawlResponse, len(req.URLs)),
	}

	h.mu.Lock()
	h.pruneLocked()
	h.jobs[job.id] = job
	h.mu.Unlock()

	go h.run(job, &req)

	c.JSON(http.StatusAccepted, models.BatchResponse{
		Success: true,
		ID:      job.id,
		Status:  job.status,
		Total:   job.total,
	})
}

func (h *Batch) Get(c *gin.Context) {
	h.mu.Lock()
	job, ok := h.jobs[c.Param("id")]
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, models.BatchStatusResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "no batch with that id",
			},
		})
		return
	}
	c.JSON(http.StatusOK, job.snapshot())
}

// run crawls the batch with a bounded worker pool. The job detaches from
// the originating request: each crawl gets its own deadline instead.
func (h *Batch) run(job *batchJob, req *models.BatchCrawlRequest) {
	perURL := h.deps.Cfg.Loader.Timeout + 30*time.Second

	var wg sync.WaitGroup
	sem := make(chan struct{}, batchWorkers)
	for i, pageURL := range req.URLs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, pageURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			ctx, cancel := context.WithTimeout(context.Background(), perURL)
			defer cancel()

			resp, _ := h.crawl(ctx, h.deps, &models.CrawlRequest{
				URL:        pageURL,
				WaitTime:   req.WaitTime,
				UseStealth: req.UseStealth,
				UseProxy:   req.UseProxy,
			})

			job.mu.Lock()
			job.results[i] = resp
			job.completed++
			job.mu.Unlock()
		}(i, pageURL)
	}
	wg.Wait()

	job.mu.Lock()
	job.status = models.BatchStatusCompleted
	for _, r := range job.results {
		if r == nil || !r.Success {
			job.status = models.BatchStatusPartial
			break
		}
	}
	job.doneAt = time.Now()
	job.mu.Unlock()
}

// pruneLocked drops finished jobs past retention. A job still running
// stays queryable no matter how old it is; evicting it would orphan the
// crawl goroutine behind a 404. Callers hold h.mu.
func (h *Batch) pruneLocked() {
	cut := time.Now().Add(-jobRetention)
	for id, job := range h.jobs {
		job.mu.Lock()
		doneAt := job.doneAt
		job.mu.Unlock()
		if !doneAt.IsZero() && doneAt.Before(cut) {
			delete(h.jobs, id)
		}
	}
}
