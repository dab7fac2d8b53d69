package bootstrap

import "testing"

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "en-US"},
		{"pt-PT,pt;q=0.9,en;q=0.8", "pt-PT"},
		{"en;q=0.5, de-DE", "de-DE"},
		{"   ", "en-US"},
	}
	for _, tt := range tests {
		if got := DetectLocale(tt.header); got != tt.want {
			t.Errorf("DetectLocale(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
