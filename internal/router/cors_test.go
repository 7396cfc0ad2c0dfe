package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveAllowOrigin(t *testing.T) {
	cases := []struct {
		name          string
		allowOrigin   string
		credentials   bool
		requestOrigin string
		wantValue     string
		wantVary      bool
	}{
		{"wildcard", "*", false, "https://app.example.com", "*", false},
		{"wildcard with credentials echoes origin", "*", true, "https://app.example.com", "https://app.example.com", true},
		{"empty config falls back to wildcard", "", false, "https://app.example.com", "*", false},
		{"listed origin", "https://a.com, https://b.com", false, "https://b.com", "https://b.com", true},
		{"unlisted origin", "https://a.com", false, "https://evil.com", "", true},
		{"no request origin against a list", "https://a.com", false, "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value, vary := resolveAllowOrigin(tc.allowOrigin, tc.credentials, tc.requestOrigin)
			if value != tc.wantValue || vary != tc.wantVary {
				t.Errorf("got (%q, %v), want (%q, %v)", value, vary, tc.wantValue, tc.wantVary)
			}
		})
	}
}

func TestWithCORS_Preflight(t *testing.T) {
	called := false
	h := withCORS("*", false, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h(rec, req)

	if called {
		t.Error("preflight reached the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("allow-methods header missing")
	}
}

func TestWithCORS_PassThrough(t *testing.T) {
	h := withCORS("https://a.com", true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Origin", "https://a.com")
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("handler not reached, status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://a.com" {
		t.Errorf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials header missing")
	}
}
