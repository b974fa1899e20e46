package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/models"
)

const blockedPage = `<html><body>Our systems have detected unusual traffic from your computer network.</body></html>`

// fakeFetcher serves a scripted sequence of page bodies, applying the
// same block detection the real Navigator does.
type fakeFetcher struct {
	pages   []string
	err     error
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (*Snapshot, error) {
	f.fetched = append(f.fetched, pageURL)
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.fetched) - 1
	if i >= len(f.pages) {
		i = len(f.pages) - 1
	}
	html := f.pages[i]
	snap := &Snapshot{FinalURL: pageURL, HTML: html}
	if marker := MatchBlockMarker(html); marker != "" {
		snap.Blocked = true
		snap.BlockMarker = marker
		snap.Screenshot = []byte("block-png")
	}
	return snap, nil
}

func (f *fakeFetcher) Screenshot(context.Context, bool) ([]byte, error) {
	return []byte("page-png"), nil
}

// scriptedOpener yields one fakeFetcher per attempt and counts context
// closes.
type scriptedOpener struct {
	fetchers []*fakeFetcher
	opened   int
	closes   int
}

type fakeAttempt struct {
	f  Fetcher
	op *scriptedOpener
}

func (a *fakeAttempt) Fetcher() Fetcher { return a.f }
func (a *fakeAttempt) Close() error     { a.op.closes++; return nil }

func (o *scriptedOpener) open(_ context.Context, _ *models.SearchRequest) (Attempt, error) {
	i := o.opened
	o.opened++
	if i >= len(o.fetchers) {
		i = len(o.fetchers) - 1
	}
	return &fakeAttempt{f: o.fetchers[i], op: o}, nil
}

func newTestRequest(query string) *models.SearchRequest {
	req := &models.SearchRequest{Query: query, SleepInterval: 0.001}
	req.Defaults("en", true, 2)
	return req
}

func newTestEngine(op *scriptedOpener) *Engine {
	return NewEngineWithOpener(op.open, config.SearchConfig{})
}

func TestSearchTwoPages(t *testing.T) {
	op := &scriptedOpener{fetchers: []*fakeFetcher{{
		pages: []string{resultPage(1, 10, true), resultPage(2, 10, false)},
	}}}
	req := newTestRequest("golang testing")
	req.ResultsPerPage = 5
	req.MaxPages = 2

	data, err := newTestEngine(op).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(data.Results) != 10 {
		t.Fatalf("got %d results, want 10", len(data.Results))
	}
	if data.PagesFetched != 2 {
		t.Errorf("pages fetched = %d, want 2", data.PagesFetched)
	}
	if data.Results[0].Page != 1 || data.Results[9].Page != 2 {
		t.Errorf("page attribution wrong: first=%d last=%d", data.Results[0].Page, data.Results[9].Page)
	}
	if data.StatsText == "" {
		t.Error("stats text missing on first page")
	}
	if data.ScreenshotBase64 == "" {
		t.Error("first-page screenshot missing")
	}
	if op.closes != 1 {
		t.Errorf("context closes = %d, want 1", op.closes)
	}

	urls := make(map[string]struct{})
	for _, r := range data.Results {
		if _, dup := urls[r.URL]; dup {
			t.Fatalf("duplicate url %q in results", r.URL)
		}
		urls[r.URL] = struct{}{}
	}
}

func TestSearchDedupAcrossPages(t *testing.T) {
	// Page 2 serves the same URLs as page 1: every item is a duplicate.
	op := &scriptedOpener{fetchers: []*fakeFetcher{{
		pages: []string{resultPage(1, 5, true), resultPage(1, 5, false)},
	}}}
	req := newTestRequest("dup query")
	req.ResultsPerPage = 5
	req.MaxPages = 2

	data, err := newTestEngine(op).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(data.Results) != 5 {
		t.Fatalf("got %d results, want 5 after dedup", len(data.Results))
	}
	if data.PagesFetched != 2 {
		t.Errorf("pages fetched = %d, want 2", data.PagesFetched)
	}
}

func TestSearchStopsWithoutNextPage(t *testing.T) {
	op := &scriptedOpener{fetchers: []*fakeFetcher{{
		pages: []string{resultPage(1, 3, false)},
	}}}
	req := newTestRequest("tiny")
	req.MaxPages = 5

	data, err := newTestEngine(op).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if data.PagesFetched != 1 {
		t.Errorf("pages fetched = %d, want 1", data.PagesFetched)
	}
	if got := len(op.fetchers[0].fetched); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestSearchHonorsMaxPages(t *testing.T) {
	// Every page advertises a next page; the page budget must stop the walk.
	f := &fakeFetcher{pages: []string{resultPage(1, 10, true)}}
	op := &scriptedOpener{fetchers: []*fakeFetcher{f}}
	req := newTestRequest("endless")
	req.ResultsPerPage = 2
	req.MaxPages = 3

	data, err := newTestEngine(op).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := len(f.fetched); got != 3 {
		t.Errorf("fetch calls = %d, want 3", got)
	}
	if data.PagesFetched != 3 {
		t.Errorf("pages fetched = %d, want 3", data.PagesFetched)
	}
}

func TestSearchBlockShortCircuits(t *testing.T) {
	op := &scriptedOpener{fetchers: []*fakeFetcher{{
		pages: []string{resultPage(1, 5, true), blockedPage, resultPage(3, 5, true)},
	}}}
	req := newTestRequest("blocked on page two")
	req.ResultsPerPage = 5
	req.MaxPages = 5

	data, err := newTestEngine(op).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("a block is not an error, got: %v", err)
	}
	if !data.Blocked {
		t.Fatal("Blocked not set")
	}
	if data.StatsText != models.BlockSentinel {
		t.Errorf("stats = %q, want block sentinel", data.StatsText)
	}
	if len(data.Results) != 5 {
		t.Errorf("got %d results, want the 5 extracted before the block", len(data.Results))
	}
	if data.PagesFetched != 1 {
		t.Errorf("pages fetched = %d, want 1", data.PagesFetched)
	}
	if data.ScreenshotBase64 == "" {
		t.Error("block screenshot missing")
	}
	if data.HTMLSnippet == "" {
		t.Error("html snippet missing on block")
	}
	// No further pages after the block, and exactly one context used.
	if got := len(op.fetchers[0].fetched); got != 2 {
		t.Errorf("fetch calls = %d, want 2", got)
	}
	if op.closes != 1 {
		t.Errorf("context closes = %d, want 1 (no retry on block)", op.closes)
	}
}

func TestSearchExhaustsRetries(t *testing.T) {
	failing := &fakeFetcher{err: errors.New("net::ERR_CONNECTION_RESET")}
	op := &scriptedOpener{fetchers: []*fakeFetcher{failing}}
	req := newTestRequest("doomed")
	retries := 2
	req.RetryCount = &retries

	_, err := newTestEngine(op).Search(context.Background(), req)
	if err == nil {
		t.Fatal("want error after exhausting retries")
	}
	var se *models.SearchError
	if !errors.As(err, &se) || se.Code != models.ErrCodeExhausted {
		t.Fatalf("error = %v, want code %s", err, models.ErrCodeExhausted)
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("error message %q does not name the attempt count", err.Error())
	}
	if op.opened != 3 {
		t.Errorf("attempts = %d, want retryCount+1 = 3", op.opened)
	}
	if op.closes != 3 {
		t.Errorf("context closes = %d, want one per attempt", op.closes)
	}
}

func TestSearchRecoversOnRetry(t *testing.T) {
	op := &scriptedOpener{fetchers: []*fakeFetcher{
		{err: errors.New("timeout")},
		{pages: []string{resultPage(1, 4, false)}},
	}}
	req := newTestRequest("second time lucky")
	req.ResultsPerPage = 4

	data, err := newTestEngine(op).Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(data.Results) != 4 {
		t.Errorf("got %d results, want 4", len(data.Results))
	}
	if op.opened != 2 || op.closes != 2 {
		t.Errorf("opened=%d closes=%d, want 2/2", op.opened, op.closes)
	}
}

func TestSearchEmptyResultsCarrySnippet(t *testing.T) {
	op := &scriptedOpener{fetchers: []*fakeFetcher{{
		pages: []string{`<html><body><div class="unknown-layout">nothing here</div></body></html>`},
	}}}
	data, err := newTestEngine(op).Search(context.Background(), newTestRequest("no hits"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(data.Results) != 0 {
		t.Fatalf("got %d results, want 0", len(data.Results))
	}
	if data.HTMLSnippet == "" {
		t.Error("want a diagnostic html snippet with zero results")
	}
}

func TestSearchCanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failing := &fakeFetcher{err: context.Canceled}
	op := &scriptedOpener{fetchers: []*fakeFetcher{failing}}

	_, err := newTestEngine(op).Search(ctx, newTestRequest("canceled"))
	if err == nil {
		t.Fatal("want error")
	}
	if op.opened != 1 {
		t.Errorf("attempts = %d, want 1 with a dead context", op.opened)
	}

	// The cancellation surfaces as a timeout-coded error, not as retry
	// exhaustion claiming attempts that never ran.
	var se *models.SearchError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *models.SearchError", err)
	}
	if se.Code != models.ErrCodeNavTimeout {
		t.Errorf("code = %s, want %s", se.Code, models.ErrCodeNavTimeout)
	}
	if strings.Contains(err.Error(), "attempts") {
		t.Errorf("error message %q misreports the attempt count", err.Error())
	}
}

func TestBuildSearchURL(t *testing.T) {
	first := buildSearchURL("go testing", "en", 0)
	if strings.Contains(first, "start=") {
		t.Errorf("first page carries a start offset: %s", first)
	}
	for _, want := range []string{"q=go+testing", "hl=en", "gl=en", "pws=0"} {
		if !strings.Contains(first, want) {
			t.Errorf("url %s missing %q", first, want)
		}
	}

	third := buildSearchURL("go testing", "fr-FR", 2)
	if !strings.Contains(third, "start=20") {
		t.Errorf("page index 2 should offset by 20: %s", third)
	}
	if !strings.Contains(third, "gl=fr") {
		t.Errorf("country should derive from the language base: %s", third)
	}
}

func TestTimezoneFor(t *testing.T) {
	tests := []struct {
		lang, want string
	}{
		{"it", "Europe/Rome"},
		{"fr-FR", "Europe/Paris"},
		{"xx", "UTC"},
	}
	for _, tt := range tests {
		if got := timezoneFor(tt.lang); got != tt.want {
			t.Errorf("timezoneFor(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}
