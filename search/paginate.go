package search

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/scout/metrics"
	"github.com/use-agent/scout/models"
)

// resultsPerSERP is the engine's native page size, used for the start
// offset. Independent of how many results the caller keeps per page.
const resultsPerSERP = 10

const (
	blockSnippetLen = 1000
	emptySnippetLen = 500
)

// buildSearchURL renders the result-page URL for a 0-based page index.
// pws=0 disables personalization so results are reproducible across
// contexts; gl pins the result country to the language's region.
func buildSearchURL(query, lang string, page int) string {
	country := lang
	if i := strings.IndexByte(lang, '-'); i > 0 {
		country = lang[:i]
	}

	v := url.Values{}
	v.Set("q", query)
	v.Set("hl", lang)
	v.Set("gl", country)
	v.Set("pws", "0")
	if page > 0 {
		v.Set("start", strconv.Itoa(page*resultsPerSERP))
	}
	return "https://www.google.com/search?" + v.Encode()
}

// paginate walks result pages within one attempt, accumulating results
// until a terminal condition holds. Terminal conditions are checked in a
// fixed order after each page is fully extracted: block, no next-page
// affordance, accumulated-count cutoff, page budget. The cutoff never
// truncates mid-page; a fetched page always contributes all its kept
// results.
func (e *Engine) paginate(ctx context.Context, f Fetcher, req *models.SearchRequest, attempt int) (*models.SearchData, error) {
	data := &models.SearchData{Query: req.Query, Results: []models.ResultItem{}}
	seen := make(map[string]struct{})
	interval := time.Duration(req.SleepInterval * float64(time.Second))
	var lastHTML string

	for page := 0; page < req.MaxPages; page++ {
		pageURL := buildSearchURL(req.Query, req.Lang, page)
		slog.Info("fetching result page",
			"query", req.Query,
			"page", page+1,
			"maxPages", req.MaxPages,
		)

		snap, err := f.Fetch(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		lastHTML = snap.HTML

		if snap.Blocked {
			slog.Error("anti-scraping block detected",
				"query", req.Query,
				"page", page+1,
				"marker", snap.BlockMarker,
			)
			data.Blocked = true
			data.StatsText = models.BlockSentinel
			data.PagesFetched = page
			data.HTMLSnippet = truncate(snap.HTML, blockSnippetLen)
			if len(snap.Screenshot) > 0 {
				data.ScreenshotBase64 = base64.StdEncoding.EncodeToString(snap.Screenshot)
			}
			return data, nil
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
		if err != nil {
			return nil, models.NewSearchError(models.ErrCodeNavigation, "failed to parse result page", err)
		}

		items := extractResults(doc, req.ResultsPerPage, page+1, seen)
		data.Results = append(data.Results, items...)
		data.PagesFetched = page + 1
		metrics.ResultPagesFetched.Inc()
		slog.Info("result page extracted",
			"query", req.Query,
			"page", page+1,
			"pageResults", len(items),
			"totalResults", len(data.Results),
		)

		if page == 0 {
			data.StatsText = statsChain.firstText(doc.Selection)
			if shot, shotErr := f.Screenshot(ctx, false); shotErr == nil {
				data.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot)
			} else {
				slog.Warn("first-page screenshot failed", "error", shotErr)
			}
		}

		if !hasNextPage(doc) {
			slog.Info("no next page, stopping", "query", req.Query, "page", page+1)
			break
		}
		if len(data.Results) >= req.ResultsPerPage*req.MaxPages {
			break
		}
		if page+1 >= req.MaxPages {
			break
		}

		// The pause before the next fetch grows with the attempt number
		// so retried attempts back off harder.
		if err := sleepCtx(ctx, interval*time.Duration(attempt+1)); err != nil {
			return nil, categorizeNavError(err, "inter-page pause interrupted")
		}
	}

	if len(data.Results) == 0 {
		data.HTMLSnippet = truncate(lastHTML, emptySnippetLen)
	}
	return data, nil
}

func hasNextPage(doc *goquery.Document) bool {
	return nextPageChain.first(doc.Selection) != nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
