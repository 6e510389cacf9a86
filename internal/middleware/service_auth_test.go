package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kingdom-server/internal/authutils"
	"kingdom-server/internal/middleware"
	"kingdom-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-inter-service-secret"

func issue(t *testing.T, roles []string, ttl time.Duration) string {
	t.Helper()
	token, err := authutils.IssueServiceToken(secret, "telegram-gateway", roles, ttl)
	require.NoError(t, err)
	return token
}

func TestInterServiceAuthMiddleware_Echo(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(secret, nil)
	require.NoError(t, err)

	e := echo.New()
	e.Use(middleware.EchoZapLogger(zap.NewNop()))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(string(models.SourceServiceContextKey)).(string))
	}, middleware.InterServiceAuthMiddleware(verifier, zap.NewNop()))

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"Missing token", "", http.StatusUnauthorized},
		{"Garbage token", "garbage", http.StatusUnauthorized},
		{"Expired token", issue(t, nil, -time.Minute), http.StatusUnauthorized},
		{"Valid token", issue(t, nil, time.Minute), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.token != "" {
				req.Header.Set(middleware.ServiceTokenHeader, tc.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "telegram-gateway", rec.Body.String())
			}
		})
	}
}

func TestGinInterServiceAuth_RequiresRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier, err := authutils.NewJWTVerifier(secret, nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.GinZapLogger(zap.NewNop()))
	r.GET("/admin/ping", middleware.GinInterServiceAuth(verifier, models.RoleAdmin, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if token != "" {
			req.Header.Set(middleware.ServiceTokenHeader, token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusForbidden, do(issue(t, nil, time.Minute)).Code)

	rec := do(issue(t, []string{models.RoleAdmin}, time.Minute))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
