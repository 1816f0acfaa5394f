package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	jwtsvc "handyghana/internal/pkg/jwt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *jwtsvc.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := jwtsvc.New("test-secret", time.Hour)
	r := gin.New()
	r.GET("/protected", Auth(jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("user_id"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/admin", Auth(jwt), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, jwt
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)
	if w := doRequest(r, "/protected", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	r, jwt := newAuthRouter(t)
	token, _ := jwt.GenerateToken(1, "customer")

	for _, h := range []string{"Basic abc", token, "Bearer ", "Bearer  "} {
		if w := doRequest(r, "/protected", h); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", h, w.Code)
		}
	}
}

func TestAuthRejectsTokenFromWrongSecret(t *testing.T) {
	r, _ := newAuthRouter(t)
	other := jwtsvc.New("other-secret", time.Hour)
	token, _ := other.GenerateToken(1, "customer")

	if w := doRequest(r, "/protected", "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwt := jwtsvc.New("test-secret", -time.Minute)
	r := gin.New()
	r.GET("/protected", Auth(jwt), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, _ := jwt.GenerateToken(1, "customer")
	if w := doRequest(r, "/protected", "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthPassesClaimsThrough(t *testing.T) {
	r, jwt := newAuthRouter(t)
	token, _ := jwt.GenerateToken(42, "provider")

	w := doRequest(r, "/protected", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if want := `"user_id":42`; !strings.Contains(body, want) {
		t.Errorf("body %s missing %s", body, want)
	}
	if want := `"role":"provider"`; !strings.Contains(body, want) {
		t.Errorf("body %s missing %s", body, want)
	}
}

func TestRoleGate(t *testing.T) {
	r, jwt := newAuthRouter(t)

	adminToken, _ := jwt.GenerateToken(1, "admin")
	if w := doRequest(r, "/admin", "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}

	customerToken, _ := jwt.GenerateToken(2, "customer")
	if w := doRequest(r, "/admin", "Bearer "+customerToken); w.Code != http.StatusForbidden {
		t.Errorf("customer: status = %d, want 403", w.Code)
	}
}
