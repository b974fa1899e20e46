package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// chain is an ordered list of CSS probes tried until one succeeds. The
// result-page markup changes over time, so every field is extracted
// through a chain of known layouts rather than a single selector.
type chain struct {
	name      string
	selectors []cascadia.Selector
}

func newChain(name string, selectors ...string) chain {
	cs := make([]cascadia.Selector, 0, len(selectors))
	for _, s := range selectors {
		cs = append(cs, cascadia.MustCompile(s))
	}
	return chain{name: name, selectors: cs}
}

// first returns the matches of the first selector that matches at least
// one element, or nil when no selector matches.
func (c chain) first(root *goquery.Selection) *goquery.Selection {
	for _, sel := range c.selectors {
		if m := root.FindMatcher(sel); m.Length() > 0 {
			return m
		}
	}
	return nil
}

// firstText returns the trimmed text of the first probe that yields a
// non-empty value, or "".
func (c chain) firstText(root *goquery.Selection) string {
	for _, sel := range c.selectors {
		m := root.FindMatcher(sel)
		if m.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(m.First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first matching element of
// the first matching selector, or "". The first match wins even when its
// attribute is missing; later selectors describe different layouts, not
// fallbacks within one layout.
func (c chain) firstAttr(root *goquery.Selection, attr string) string {
	for _, sel := range c.selectors {
		if m := root.FindMatcher(sel); m.Length() > 0 {
			v, _ := m.First().Attr(attr)
			return v
		}
	}
	return ""
}

// Known result-page layouts, newest first where it matters.
var (
	containerChain = newChain("containers",
		"div.g",
		"div.MjjYud",
		`div[data-snf='x']`,
		"div.v7W49e",
		"div.Gx5Zad",
		`div[data-sotr='r']`,
		"div.tF2Cxc",
		"div.yuRUbf",
		"div[jscontroller]",
	)

	titleChain = newChain("titles",
		"h3",
		"a h3",
		"div h3",
		"h3.LC20lb",
	)

	linkChain = newChain("links",
		"a[href]",
		"a[ping]",
		"h3 a",
		"div > a",
		"a.cz88Hc",
	)

	descChain = newChain("descriptions",
		"div.VwiC3b",
		`div[data-sncf='1']`,
		`div[role='link'] div`,
		"div.yi8zzc",
	)

	statsChain = newChain("stats",
		"div#result-stats",
		`div[aria-level='3']`,
		"#result-stats",
	)

	// The next-page affordance carries a locale-dependent label; the id
	// selector works everywhere, the labels cover older layouts.
	nextPageChain = newChain("next-page",
		"a#pnnext",
		`a[aria-label='Next page']`,
		`a[aria-label='Next']`,
		`a[aria-label='Pagina successiva']`,
		`a[aria-label='Page suivante']`,
		`a[aria-label='Nächste Seite']`,
		"a.nBDE1b.G5eFlf",
	)
)
