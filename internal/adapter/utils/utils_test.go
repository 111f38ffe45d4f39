package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestNewRouter(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		name         string
		path         string
		wantCode     int
		wantLocation string
	}{
		{"swagger root redirects to the ui", "/swagger", http.StatusMovedPermanently, "/swagger/index.html"},
		{"swagger spec is served", "/swagger/doc.json", http.StatusOK, ""},
		{"prometheus scrape endpoint", "/metrics", http.StatusOK, ""},
		{"no api routes yet", "/health", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantCode)
			}
			if tt.wantLocation != "" && rec.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q", rec.Header().Get("Location"))
			}
		})
	}

	// every call builds its own mux
	if NewRouter().Router == r.Router {
		t.Error("routers should not be shared")
	}
}

func TestGetNewUUID(t *testing.T) {
	a, b := GetNewUUID(), GetNewUUID()
	if a == b {
		t.Fatal("ids should be unique")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("%q is not a uuid: %v", a, err)
	}
}
