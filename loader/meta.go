package loader

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/scout/models"
	"golang.org/x/net/html"
)

// extractTitle pulls the document title with a streaming tokenizer, so
// the auto-mode probe can read it without building a DOM.
func extractTitle(body string) string {
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				if z.Next() == html.TextToken {
					return strings.TrimSpace(string(z.Text()))
				}
				return ""
			}
		}
	}
}

// Meta tag names surfaced in PageInfo.MetaTags.
var metaNames = []string{"description", "keywords", "robots", "author", "viewport", "generator"}

// buildPageInfo parses the document and fills everything that can be
// derived from HTML alone: title, head/body split, meta and Open Graph
// tags and classified links. FetchMethod is left for the caller.
func buildPageInfo(requestURL, finalURL string, status int, pageHTML string) *models.PageInfo {
	info := &models.PageInfo{
		URL:        requestURL,
		FinalURL:   finalURL,
		StatusCode: status,
		Title:      extractTitle(pageHTML),
		HTML:       models.PageHTML{Full: pageHTML},
		MetaTags:   map[string]string{},
		OGTags:     map[string]string{},
		Links:      models.LinksResult{Internal: []models.Link{}, External: []models.Link{}},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return info
	}

	if head, err := doc.Find("head").First().Html(); err == nil {
		info.HTML.Head = head
	}
	if body, err := doc.Find("body").First().Html(); err == nil {
		info.HTML.Body = body
	}

	for _, name := range metaNames {
		if content, ok := doc.Find(`meta[name='` + name + `']`).First().Attr("content"); ok {
			info.MetaTags[name] = content
		}
	}
	if canonical, ok := doc.Find(`link[rel='canonical']`).First().Attr("href"); ok {
		info.MetaTags["canonical"] = canonical
	}

	doc.Find(`meta[property^='og:']`).Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		content, _ := s.Attr("content")
		if prop != "" && content != "" {
			info.OGTags[prop] = content
		}
	})

	info.Links = classifyLinks(doc, finalURL)
	return info
}

// classifyLinks resolves every anchor against the final URL and splits
// them into same-host and external groups. Fragment-only, javascript:
// and mailto: anchors are dropped.
func classifyLinks(doc *goquery.Document, finalURL string) models.LinksResult {
	result := models.LinksResult{Internal: []models.Link{}, External: []models.Link{}}
	base, err := url.Parse(finalURL)
	if err != nil {
		return result
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""

		key := abs.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		link := models.Link{Href: key, Text: strings.TrimSpace(s.Text())}
		if abs.Host == base.Host {
			result.Internal = append(result.Internal, link)
		} else {
			result.External = append(result.External, link)
		}
	})
	return result
}
