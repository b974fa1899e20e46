package models

import (
	"errors"
	"strings"
	"testing"
)

func TestSearchErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSearchError(ErrCodeNavigation, "navigation failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), ErrCodeNavigation) || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q", err.Error())
	}

	var se *SearchError
	if !errors.As(error(err), &se) || se.Code != ErrCodeNavigation {
		t.Errorf("errors.As failed: %v", se)
	}

	detail := err.ToDetail()
	if detail.Code != ErrCodeNavigation || detail.Message != "navigation failed" {
		t.Errorf("detail = %+v", detail)
	}
	if strings.Contains(detail.Message, "connection refused") {
		t.Error("detail must not leak the underlying error")
	}
}

func TestSearchErrorWithoutCause(t *testing.T) {
	err := NewSearchError(ErrCodeInvalidInput, "query required", nil)
	if err.Unwrap() != nil {
		t.Error("Unwrap should be nil without a cause")
	}
	if got := err.Error(); got != "INVALID_INPUT: query required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSearchRequestDefaults(t *testing.T) {
	req := &SearchRequest{Query: "x"}
	req.Defaults("it", true, 2)

	if req.Lang != "it" {
		t.Errorf("lang = %q", req.Lang)
	}
	if req.ResultsPerPage != 5 || req.MaxPages != 1 {
		t.Errorf("paging defaults = %d/%d", req.ResultsPerPage, req.MaxPages)
	}
	if req.SleepInterval != 2.0 {
		t.Errorf("sleep interval = %v", req.SleepInterval)
	}
	if req.RetryCount == nil || *req.RetryCount != 2 {
		t.Errorf("retry count = %v", req.RetryCount)
	}
	if req.UseStealth == nil || !*req.UseStealth {
		t.Error("stealth default not applied")
	}
}

func TestSearchRequestDefaultsKeepExplicitValues(t *testing.T) {
	zero := 0
	off := false
	req := &SearchRequest{
		Query:          "x",
		Lang:           "fr",
		ResultsPerPage: 30,
		MaxPages:       4,
		RetryCount:     &zero,
		UseStealth:     &off,
	}
	req.Defaults("it", true, 2)

	if req.Lang != "fr" {
		t.Errorf("lang overridden: %q", req.Lang)
	}
	if req.ResultsPerPage != 20 {
		t.Errorf("results per page = %d, want clamped to 20", req.ResultsPerPage)
	}
	if req.MaxPages != 4 {
		t.Errorf("max pages = %d", req.MaxPages)
	}
	if *req.RetryCount != 0 {
		t.Error("explicit zero retry count overridden")
	}
	if *req.UseStealth {
		t.Error("explicit stealth=false overridden")
	}
}

func TestSearchRequestDefaultsClampMaxPages(t *testing.T) {
	// Requests built in process (the MCP tools) never pass through the
	// HTTP binding validators, so Defaults clamps on its own.
	tests := []struct {
		in, want int
	}{
		{100, 10},
		{11, 10},
		{10, 10},
		{-3, 1},
	}
	for _, tt := range tests {
		req := &SearchRequest{Query: "x", MaxPages: tt.in}
		req.Defaults("en", true, 2)
		if req.MaxPages != tt.want {
			t.Errorf("MaxPages %d defaulted to %d, want %d", tt.in, req.MaxPages, tt.want)
		}
	}
}

func TestLoadRequestDefaults(t *testing.T) {
	req := &LoadRequest{URL: "https://example.com"}
	req.Defaults(true)

	if req.WaitForLoad == nil || !*req.WaitForLoad {
		t.Error("wait_for_load default not applied")
	}
	if req.UseStealth == nil || !*req.UseStealth {
		t.Error("stealth default not applied")
	}
	if req.FetchMode != "auto" {
		t.Errorf("fetch mode = %q", req.FetchMode)
	}
}
