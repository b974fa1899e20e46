package browser

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Fingerprint is the per-context set of randomized browser identity
// parameters applied to every page of a browsing context.
type Fingerprint struct {
	ViewportWidth     int
	ViewportHeight    int
	UserAgent         string
	ColorScheme       string // "light", "dark" or "no-preference"
	DeviceScaleFactor float64
	HasTouch          bool
	Locale            string
	Timezone          string
}

// Realistic desktop user agents, rotated per context.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

var (
	viewportWidths  = []int{1366, 1920, 1440, 1536}
	viewportHeights = []int{768, 1080, 900, 864}
	colorSchemes    = []string{"light", "dark", "no-preference"}
)

// randomFingerprint draws a plausible desktop fingerprint. Dimensions come
// from a small discrete set of common screen sizes; a retina scale factor
// and a touchscreen are minority picks, matching real-world distribution.
func randomFingerprint(locale, timezone string) Fingerprint {
	fp := Fingerprint{
		ViewportWidth:     viewportWidths[rand.IntN(len(viewportWidths))],
		ViewportHeight:    viewportHeights[rand.IntN(len(viewportHeights))],
		UserAgent:         userAgents[rand.IntN(len(userAgents))],
		ColorScheme:       colorSchemes[rand.IntN(len(colorSchemes))],
		DeviceScaleFactor: 1,
		HasTouch:          rand.Float64() > 0.8,
		Locale:            locale,
		Timezone:          timezone,
	}
	if rand.Float64() > 0.7 {
		fp.DeviceScaleFactor = 2
	}
	return fp
}

// AcceptLanguage renders the fingerprint's language preference list as an
// Accept-Language header value.
func (fp Fingerprint) AcceptLanguage() string {
	langs := languageList(fp.Locale)
	parts := make([]string, 0, len(langs))
	for i, l := range langs {
		if i == 0 {
			parts = append(parts, l)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s;q=%.1f", l, 1.0-0.1*float64(i)))
	}
	return strings.Join(parts, ",")
}

// languageList derives the navigator.languages list from the locale,
// always ending with English fallbacks.
func languageList(locale string) []string {
	base := locale
	if i := strings.IndexByte(locale, '-'); i > 0 {
		base = locale[:i]
	}
	langs := []string{locale}
	if base != locale {
		langs = append(langs, base)
	}
	if base != "en" {
		langs = append(langs, "en-US", "en")
	} else if locale != "en-US" {
		langs = append(langs, "en-US")
	}
	return langs
}
