package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestServer_HealthAndReadiness(t *testing.T) {
	s := NewServer(":0")
	h := s.Handler()

	tests := []struct {
		name     string
		ready    bool
		path     string
		expected int
	}{
		{"healthz always ok", false, "/healthz", http.StatusOK},
		{"readyz before start", false, "/readyz", http.StatusServiceUnavailable},
		{"readyz when ready", true, "/readyz", http.StatusOK},
		{"metrics exposed", false, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetReady(tt.ready)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}
