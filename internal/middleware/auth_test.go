package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/model"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func newTestEngine(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", util.GetUserFromContext(c).UserID)
	})
	r.GET("/admin", AuthMiddleware(cfg), RoleMiddleware(model.Admin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func tokenFor(t *testing.T, id uint, role model.UserRole, secret string) string {
	t.Helper()
	u := &model.User{Role: role}
	u.ID = id
	token, err := util.GenerateJWT(u, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

func TestAuthMiddleware_TokenSources(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret", CookieName: "access_token"}
	r := newTestEngine(cfg)
	token := tokenFor(t, 7, model.Student, cfg.Secret)

	header := httptest.NewRequest(http.MethodGet, "/me", nil)
	header.Header.Set("Authorization", "Bearer "+token)

	cookie := httptest.NewRequest(http.MethodGet, "/me", nil)
	cookie.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	query := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)

	for name, req := range map[string]*http.Request{"header": header, "cookie": cookie, "query": query} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || w.Body.String() != "7" {
			t.Errorf("%s: status=%d body=%q", name, w.Code, w.Body.String())
		}
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}
	r := newTestEngine(cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 1, model.Student, "wrong"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad signature status = %d", w.Code)
	}
}

func TestRoleMiddleware(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret"}
	r := newTestEngine(cfg)

	for role, want := range map[model.UserRole]int{model.Student: http.StatusForbidden, model.Admin: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, 1, role, cfg.Secret))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("role %s: status = %d, want %d", role, w.Code, want)
		}
	}
}
