package livez

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/hub/pkg/metrics"
)

func TestServer_RoutesExist(t *testing.T) {
	metrics.RegisterComponent("registry", true, "ready")
	metrics.RegisterComponent("fabric", true, "ready")
	metrics.RegisterComponent("api", true, "ready")

	s := New()

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.NotEqual(t, http.StatusNotFound, rec.Code, "path %s should be routed", path)
	}
}

func TestServer_ReadyReflectsComponentHealth(t *testing.T) {
	metrics.RegisterComponent("registry", true, "ready")
	metrics.RegisterComponent("fabric", true, "ready")
	metrics.RegisterComponent("api", false, "starting")

	s := New()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
