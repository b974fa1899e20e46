package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/scout/models"
)

// Link prefixes the generic fallback skips: navigation chrome of the
// search engine itself, never organic results.
var excludedPrefixes = []string{
	"https://accounts.",
	"https://support.",
	"https://maps.",
	"https://policies.",
}

// extractResults pulls up to maxResults organic results out of one parsed
// result page. seen is the attempt-wide URL dedup set and is updated in
// place, so a result repeated across pages is kept once.
//
// The container chain is tried first; when no known container layout
// matches at all, the generic outbound-hyperlink fallback runs instead.
func extractResults(doc *goquery.Document, maxResults, pageNum int, seen map[string]struct{}) []models.ResultItem {
	containers := containerChain.first(doc.Selection)
	if containers == nil {
		return extractGeneric(doc, maxResults, pageNum, seen)
	}

	items := make([]models.ResultItem, 0, maxResults)
	containers.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(items) >= maxResults {
			return false
		}

		href := linkChain.firstAttr(s, "href")
		if href == "" {
			// A container without a link is an ad slot or a widget.
			return true
		}
		if _, dup := seen[href]; dup {
			return true
		}
		seen[href] = struct{}{}

		items = append(items, models.ResultItem{
			Title:       titleChain.firstText(s),
			URL:         href,
			Description: descChain.firstText(s),
			Page:        pageNum,
		})
		return true
	})
	return items
}

// extractGeneric is the last-resort extraction path for layouts none of
// the container selectors recognize: every outbound hyperlink that has a
// title and is not part of the engine's own chrome becomes a result.
func extractGeneric(doc *goquery.Document, maxResults, pageNum int, seen map[string]struct{}) []models.ResultItem {
	items := make([]models.ResultItem, 0, maxResults)
	doc.Find(`a[href^='http']`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if len(items) >= maxResults {
			return false
		}

		href, _ := link.Attr("href")
		if href == "" || isEngineLink(href) {
			return true
		}

		title := strings.TrimSpace(link.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		if title == "" {
			// Untitled anchors are icons and images, not results.
			return true
		}

		if _, dup := seen[href]; dup {
			return true
		}
		seen[href] = struct{}{}

		desc := ""
		if parent := link.Closest("div"); parent.Length() > 0 {
			desc = strings.TrimSpace(strings.Replace(parent.Text(), title, "", 1))
		}

		items = append(items, models.ResultItem{
			Title:       title,
			URL:         href,
			Description: desc,
			Page:        pageNum,
		})
		return true
	})
	return items
}

func isEngineLink(href string) bool {
	if strings.Contains(href, "google.com") {
		return true
	}
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(href, p) {
			return true
		}
	}
	return false
}
