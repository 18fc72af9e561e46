package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(zap.NewNop()), Metrics(), RequestLogger())
	r.GET("/guarded", guard, func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": id.Role})
	})
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGuard(t *testing.T) {
	issuer := auth.NewHMAC("secret")
	userToken, err := issuer.Issue(auth.Identity{UserID: "u1"}, time.Minute)
	require.NoError(t, err)
	adminToken, err := issuer.Issue(auth.Identity{UserID: "ops", Role: auth.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	user := newRouter(UserAuth(issuer))
	admin := newRouter(AdminAuth(issuer))

	tests := []struct {
		name   string
		router http.Handler
		header string
		status int
	}{
		{"missing header", user, "", http.StatusUnauthorized},
		{"wrong scheme", user, "Basic abc", http.StatusUnauthorized},
		{"garbage token", user, "Bearer nope", http.StatusUnauthorized},
		{"user token", user, "Bearer " + userToken, http.StatusOK},
		{"user on admin route", admin, "Bearer " + userToken, http.StatusForbidden},
		{"admin token", admin, "bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(tt.router, tt.header)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.Set(identityKey, auth.Identity{UserID: "x"}) })

	w := get(r, "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func requestCount(t *testing.T, path, status string) float64 {
	var m dto.Metric
	require.NoError(t, metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, path, status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.Set(identityKey, auth.Identity{UserID: "x"}) })
	before := requestCount(t, "/guarded", "200")

	get(r, "")

	assert.Equal(t, before+1, requestCount(t, "/guarded", "200"))
}
