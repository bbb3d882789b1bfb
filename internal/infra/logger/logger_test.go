package logger

import "testing"

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcdef", "***"},
		{"eyJhbGciOiJSUzI1NiJ9", "eyJhbG***"},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.token); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestMaskAddress(t *testing.T) {
	long := "0x3fa1d2e6b7c8091a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f79c2e"
	if got := MaskAddress(long); got != "0x3fa1...9c2e" {
		t.Errorf("MaskAddress(long) = %q", got)
	}
	if got := MaskAddress("0xshort"); got != "0xshort" {
		t.Errorf("short address should pass through, got %q", got)
	}
}

func TestSanitizeURL(t *testing.T) {
	in := "https://accounts.google.com/o/oauth2/v2/auth?nonce=abc&state=xyz"
	if got := SanitizeURL(in); got != "https://accounts.google.com/o/oauth2/v2/auth?..." {
		t.Errorf("SanitizeURL = %q", got)
	}
	if got := SanitizeURL("https://example.com/path"); got != "https://example.com/path" {
		t.Errorf("query-less URL should pass through, got %q", got)
	}
}
