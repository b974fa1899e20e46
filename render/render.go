// Package render turns raw page HTML into reader-friendly Markdown:
// readability extraction first, then HTML-to-Markdown conversion.
package render

import (
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	readability "github.com/go-shiori/go-readability"
	"github.com/use-agent/scout/models"
)

// Article is the rendered form of a page.
type Article struct {
	Title    string
	Markdown string

	// Excerpt is the readability-derived summary, when one exists.
	Excerpt string
}

// FromHTML extracts the main content of a page and renders it as
// Markdown. pageURL anchors relative links in the extracted content.
func FromHTML(pageHTML, pageURL string) (*Article, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, models.NewSearchError(models.ErrCodeInvalidInput, "invalid page url", err)
	}

	doc, err := readability.FromReader(strings.NewReader(pageHTML), base)
	if err != nil {
		return nil, models.NewSearchError(models.ErrCodeInternal, "readability extraction failed", err)
	}

	content := doc.Content
	if strings.TrimSpace(content) == "" {
		// Some pages defeat readability (login walls, pure link hubs);
		// converting the whole body still beats returning nothing.
		content = pageHTML
	}

	md, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return nil, models.NewSearchError(models.ErrCodeInternal, "markdown conversion failed", err)
	}

	return &Article{
		Title:    doc.Title,
		Markdown: strings.TrimSpace(md),
		Excerpt:  doc.Excerpt,
	}, nil
}
