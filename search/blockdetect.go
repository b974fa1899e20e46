package search

import "strings"

// blockMarker is a text fragment whose presence in a result page means
// the engine served an anti-scraping interstitial instead of results.
type blockMarker struct {
	text string
	fold bool // match case-insensitively
}

// Markers observed in the wild. The Italian one is matched exactly: the
// consent page contains similar words in a harmless context and folding
// it caused false positives.
var blockMarkers = []blockMarker{
	{text: "detected unusual traffic", fold: true},
	{text: "unusual traffic from your computer network", fold: true},
	{text: "solving the above CAPTCHA", fold: true},
	{text: "violazione dei Termini di servizio", fold: false},
}

// MatchBlockMarker returns the first marker found in the page HTML, or
// "" when the page looks like a normal result page.
func MatchBlockMarker(html string) string {
	lower := ""
	for _, m := range blockMarkers {
		if m.fold {
			if lower == "" {
				lower = strings.ToLower(html)
			}
			if strings.Contains(lower, strings.ToLower(m.text)) {
				return m.text
			}
			continue
		}
		if strings.Contains(html, m.text) {
			return m.text
		}
	}
	return ""
}
