package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAPICSPConfig(t *testing.T) {
	header := APICSPConfig().BuildCSPHeader()
	if !strings.Contains(header, "default-src 'none'") {
		t.Errorf("Expected strict default-src, got %q", header)
	}
	if !strings.Contains(header, "frame-ancestors 'none'") {
		t.Errorf("Expected frame-ancestors 'none', got %q", header)
	}
}

func TestBuildCSPHeader(t *testing.T) {
	tests := []struct {
		name string
		cfg  CSPConfig
		want string
	}{
		{
			name: "Empty config",
			cfg:  CSPConfig{},
			want: "",
		},
		{
			name: "Upgrade insecure",
			cfg:  CSPConfig{UpgradeInsecureRequests: true},
			want: "upgrade-insecure-requests",
		},
		{
			name: "Connect sources",
			cfg:  CSPConfig{DefaultSrc: []string{"'self'"}, ConnectSrc: []string{"'self'", "wss:"}},
			want: "default-src 'self'; connect-src 'self' wss:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BuildCSPHeader(); got != tt.want {
				t.Errorf("BuildCSPHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeadersWithCSP(t *testing.T) {
	handler := SecurityHeadersWithCSP(APICSPConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	checks := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("Header %s = %q, want %q", header, got, want)
		}
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("Expected Content-Security-Policy header")
	}
}

func TestValidateContentType(t *testing.T) {
	allowed := []string{"application/json"}

	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"Application/JSON", true},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateContentType(tt.contentType, allowed); got != tt.want {
			t.Errorf("ValidateContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
