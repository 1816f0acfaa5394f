package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func corsRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	r := newCORSRouter(t)

	w := corsRequest(r, http.MethodGet, "http://localhost:3000")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q, want the dev origin echoed back", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}

func TestCORSOmitsHeaderForUnknownOrigin(t *testing.T) {
	r := newCORSRouter(t)

	w := corsRequest(r, http.MethodGet, "https://evil.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for an unlisted origin", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; CORS gates browsers, not the request", w.Code)
	}
}

func TestCORSEnvOriginsAndWildcard(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://handyghana.com, *")
	r := newCORSRouter(t)

	w := corsRequest(r, http.MethodGet, "https://handyghana.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://handyghana.com" {
		t.Errorf("Allow-Origin = %q, want the configured origin", got)
	}

	w = corsRequest(r, http.MethodGet, "https://partner.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want wildcard fallback", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q, want unset under the wildcard", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := newCORSRouter(t)

	w := corsRequest(r, http.MethodOptions, "http://localhost:5173")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("Allow-Methods missing on preflight")
	}
}
