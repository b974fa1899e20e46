package render

import (
	"strings"
	"testing"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>How Pagination Works</title></head>
<body>
	<nav><a href="/">Home</a><a href="/blog">Blog</a></nav>
	<article>
		<h1>How Pagination Works</h1>
		<p>Search engines split results across pages. Each page carries an
		offset parameter, and a next-page link signals whether more results
		exist. Walking them in order yields the full result set without
		guessing the total count up front.</p>
		<p>Clients should respect a page budget and stop early when the
		next-page affordance disappears, since offsets past the end return
		an empty page rather than an error.</p>
	</article>
	<footer>Copyright 2026</footer>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	art, err := FromHTML(articlePage, "https://example.com/blog/pagination")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if art.Title != "How Pagination Works" {
		t.Errorf("title = %q", art.Title)
	}
	if !strings.Contains(art.Markdown, "offset parameter") {
		t.Errorf("markdown missing article text: %q", art.Markdown)
	}
	if strings.Contains(art.Markdown, "<p>") {
		t.Errorf("markdown still contains html: %q", art.Markdown)
	}
}

func TestFromHTMLInvalidURL(t *testing.T) {
	if _, err := FromHTML("<html></html>", "://not a url"); err == nil {
		t.Fatal("want error for unparsable url")
	}
}

func TestFromHTMLEmptyExtraction(t *testing.T) {
	// A page readability finds nothing in still converts the raw html.
	page := `<html><body><a href="/a">a</a><a href="/b">b</a></body></html>`
	art, err := FromHTML(page, "https://example.com/")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if art.Markdown == "" {
		t.Error("want non-empty markdown from fallback conversion")
	}
}
