package search

import "testing"

func TestMatchBlockMarker(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		blocked bool
	}{
		{
			"case-insensitive marker",
			"<html><body>Our systems have DETECTED UNUSUAL TRAFFIC from your network</body></html>",
			true,
		},
		{
			"captcha marker",
			"<html><body>please confirm by solving the above CAPTCHA</body></html>",
			true,
		},
		{
			"italian tos marker exact case",
			"<html><body>violazione dei Termini di servizio</body></html>",
			true,
		},
		{
			"italian marker wrong case stays clean",
			"<html><body>VIOLAZIONE DEI TERMINI DI SERVIZIO</body></html>",
			false,
		},
		{
			"normal result page",
			resultPage(1, 3, true),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := MatchBlockMarker(tt.html)
			if (marker != "") != tt.blocked {
				t.Errorf("marker = %q, blocked want %v", marker, tt.blocked)
			}
		})
	}
}
