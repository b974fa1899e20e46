package browser

import (
	"slices"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestRandomFingerprintDrawsFromKnownSets(t *testing.T) {
	for i := 0; i < 50; i++ {
		fp := randomFingerprint("it-IT", "Europe/Rome")

		if !slices.Contains(viewportWidths, fp.ViewportWidth) {
			t.Fatalf("viewport width %d not in the allowed set", fp.ViewportWidth)
		}
		if !slices.Contains(viewportHeights, fp.ViewportHeight) {
			t.Fatalf("viewport height %d not in the allowed set", fp.ViewportHeight)
		}
		if !slices.Contains(userAgents, fp.UserAgent) {
			t.Fatalf("user agent %q not in the allowed set", fp.UserAgent)
		}
		if !slices.Contains(colorSchemes, fp.ColorScheme) {
			t.Fatalf("color scheme %q not in the allowed set", fp.ColorScheme)
		}
		if fp.DeviceScaleFactor != 1 && fp.DeviceScaleFactor != 2 {
			t.Fatalf("device scale factor = %v", fp.DeviceScaleFactor)
		}
		if fp.Locale != "it-IT" || fp.Timezone != "Europe/Rome" {
			t.Fatalf("locale/timezone not carried: %+v", fp)
		}
	}
}

func TestAcceptLanguage(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"it-IT", "it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7"},
		{"fr", "fr,en-US;q=0.9,en;q=0.8"},
		{"en-US", "en-US,en;q=0.9"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			fp := Fingerprint{Locale: tt.locale}
			if got := fp.AcceptLanguage(); got != tt.want {
				t.Errorf("AcceptLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLanguageList(t *testing.T) {
	tests := []struct {
		locale string
		want   []string
	}{
		{"it-IT", []string{"it-IT", "it", "en-US", "en"}},
		{"de", []string{"de", "en-US", "en"}},
		{"en", []string{"en", "en-US"}},
	}
	for _, tt := range tests {
		if got := languageList(tt.locale); !slices.Equal(got, tt.want) {
			t.Errorf("languageList(%q) = %v, want %v", tt.locale, got, tt.want)
		}
	}
}

func TestMaskScript(t *testing.T) {
	script := maskScript([]string{"it-IT", "it", "en"})

	if !strings.Contains(script, `["it-IT","it","en"]`) {
		t.Error("languages list not injected")
	}
	for _, fragment := range []string{"webdriver", "getImageData", "permissions.query", "window.chrome"} {
		if !strings.Contains(script, fragment) {
			t.Errorf("mask script missing %q", fragment)
		}
	}
}

func TestTouchOverride(t *testing.T) {
	ov := touchOverride(Fingerprint{HasTouch: true})
	if !ov.Enabled {
		t.Error("touch not enabled for a touch fingerprint")
	}
	if ov.MaxTouchPoints == nil || *ov.MaxTouchPoints != 5 {
		t.Errorf("max touch points = %v, want 5", ov.MaxTouchPoints)
	}
	if ov2 := touchOverride(Fingerprint{}); ov2.Enabled {
		t.Error("touch enabled for a touchless fingerprint")
	}
}

func TestContextIDRoundTrip(t *testing.T) {
	c := &Context{id: "ctx-1"}
	dispose := proto.TargetDisposeBrowserContext{BrowserContextID: c.id}
	if dispose.BrowserContextID != proto.BrowserBrowserContextID("ctx-1") {
		t.Errorf("dispose id = %q", dispose.BrowserContextID)
	}
	create := proto.TargetCreateTarget{BrowserContextID: c.id}
	if create.BrowserContextID != c.id {
		t.Errorf("create id = %q", create.BrowserContextID)
	}
}

func TestProxyPoolParsing(t *testing.T) {
	pool := NewProxyPool([]string{
		"http://proxy1:8080|alice|s3cret",
		"http://proxy2:8080",
		"   ",
		"http://proxy3:8080|bob",
	})

	if pool.Size() != 3 {
		t.Fatalf("size = %d, want 3 (blank entry skipped)", pool.Size())
	}

	first := pool.Next()
	if first.Server != "http://proxy1:8080" || first.Username != "alice" || first.Password != "s3cret" {
		t.Errorf("first = %+v", first)
	}
	if second := pool.Next(); second.Username != "" {
		t.Errorf("second should have no credentials: %+v", second)
	}
	if third := pool.Next(); third.Username != "bob" || third.Password != "" {
		t.Errorf("third = %+v", third)
	}
	// Round robin wraps.
	if again := pool.Next(); again.Server != "http://proxy1:8080" {
		t.Errorf("wrap = %+v", again)
	}
}

func TestProxyPoolEmpty(t *testing.T) {
	pool := NewProxyPool(nil)
	if pool.Size() != 0 {
		t.Fatalf("size = %d", pool.Size())
	}
	if pool.Next() != nil || pool.Random() != nil {
		t.Error("empty pool must hand out nil")
	}
}
