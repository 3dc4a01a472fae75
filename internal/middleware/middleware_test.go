package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/testps-api/internal/domain/entity"
	"github.com/yourusername/testps-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService("middleware-test-secret", 1)
	require.NoError(t, err)
	return svc
}

func tokenFor(t *testing.T, svc *auth.JWTService, id uint, role string) string {
	t.Helper()
	token, err := svc.GenerateToken(&entity.User{ID: id, Role: role})
	require.NoError(t, err)
	return token
}

func newAuthRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "admin": IsAdmin(c)})
	})
	r.GET("/admin", m.RequireAuth(), m.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/public", m.OptionalAuth(), func(c *gin.Context) {
		_, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	return r
}

func doRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func TestRequireAuth(t *testing.T) {
	svc := newJWT(t)
	r := newAuthRouter(NewAuthMiddleware(svc))

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token_missing", decode(t, w)["error_type"])
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token_format", decode(t, w)["error_type"])
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(r, "/me", "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other, err := auth.NewJWTService("another-secret", 1)
		require.NoError(t, err)
		w := doRequest(r, "/me", tokenFor(t, other, 5, entity.RoleStudent))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := doRequest(r, "/me", tokenFor(t, svc, 5, entity.RoleStudent))
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.EqualValues(t, 5, resp["id"])
		assert.Equal(t, false, resp["admin"])
	})
}

func TestAdminOnly(t *testing.T) {
	svc := newJWT(t)
	r := newAuthRouter(NewAuthMiddleware(svc))

	w := doRequest(r, "/admin", tokenFor(t, svc, 2, entity.RoleStudent))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error_type"])

	w = doRequest(r, "/admin", tokenFor(t, svc, 1, entity.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(r, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	svc := newJWT(t)
	r := newAuthRouter(NewAuthMiddleware(svc))

	assert.Equal(t, false, decode(t, doRequest(r, "/public", ""))["authenticated"])
	assert.Equal(t, false, decode(t, doRequest(r, "/public", "broken"))["authenticated"])
	assert.Equal(t, true, decode(t, doRequest(r, "/public", tokenFor(t, svc, 3, entity.RoleStudent)))["authenticated"])
}

func TestExtractUintParam(t *testing.T) {
	r := gin.New()
	r.GET("/tests/:id", ExtractUintParam("id", "testID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetUint("testID")})
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/tests/12", http.StatusOK},
		{"/tests/0", http.StatusBadRequest},
		{"/tests/-1", http.StatusBadRequest},
		{"/tests/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := doRequest(r, tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	w := doRequest(r, "/tests/12", "")
	assert.EqualValues(t, 12, decode(t, w)["id"])
}

func TestLocalRateLimiter_Limit(t *testing.T) {
	rl := NewLocalRateLimiter(time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.POST("/send-otp", rl.Limit(OTPRateLimitConfig(2, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/send-otp", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decode(t, w)["error_type"])

	// Другой IP имеет собственный бакет
	req := httptest.NewRequest(http.MethodPost, "/send-otp", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLocalRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl := NewLocalRateLimiter(time.Minute)
	defer rl.Stop()

	rl.get("k", 1, 1)
	require.Len(t, rl.limiters, 1)

	rl.cleanup(time.Now().Add(2 * time.Minute))
	assert.Len(t, rl.limiters, 0)
}

func TestOTPRateLimitConfig_Defaults(t *testing.T) {
	cfg := OTPRateLimitConfig(0, 0)
	assert.Equal(t, 5, cfg.MaxRequests)
	assert.Equal(t, time.Minute, cfg.Window)
}
