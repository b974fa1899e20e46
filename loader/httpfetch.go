package loader

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
)

// maxBodyBytes bounds how much of a response body is read. Pages larger
// than this are truncated, not rejected.
const maxBodyBytes = 10 << 20

const httpUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// fetchResult is the raw outcome of a plain HTTP fetch.
type fetchResult struct {
	FinalURL   string
	StatusCode int
	Body       []byte
	Cookies    []*http.Cookie
}

// httpFetcher fetches pages without a browser. The TLS handshake mimics
// Chrome's ClientHello so TLS-fingerprinting CDNs see a browser, not the
// Go runtime. ALPN is pinned to HTTP/1.1: the stock transport cannot
// speak h2 over a handshake it did not negotiate itself.
type httpFetcher struct {
	client *http.Client
}

func newHTTPFetcher(timeout time.Duration) *httpFetcher {
	transport := &http.Transport{
		DialTLSContext:        dialChromeTLS,
		MaxIdleConns:          16,
		IdleConnTimeout:       60 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &httpFetcher{client: &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}}
}

func dialChromeTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 15 * time.Second}
	raw, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn := utls.UClient(raw, &utls.Config{ServerName: host}, utls.HelloCustom)
	spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("build hello spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
	if err := conn.ApplyPreset(&spec); err != nil {
		raw.Close()
		return nil, fmt.Errorf("apply hello spec: %w", err)
	}
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

// Fetch performs a GET with browser-shaped headers and returns the final
// URL after redirects, the status and the (bounded) body.
func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) (*fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httpUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &fetchResult{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
		Cookies:    resp.Cookies(),
	}, nil
}

// Markers of bot-challenge interstitials served over plain HTTP. A body
// containing one means the HTTP path got a challenge page, not content.
var challengeMarkers = []string{
	"just a moment",
	"enable javascript and cookies",
	"checking your browser",
	"cf-challenge",
	"attention required",
}

// looksChallenged reports whether an HTTP response is a bot challenge or
// otherwise unusable without a real browser.
func looksChallenged(status int, body []byte) bool {
	switch status {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	if len(body) < 512 {
		return true
	}
	lower := strings.ToLower(string(body[:min(len(body), 4096)]))
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
