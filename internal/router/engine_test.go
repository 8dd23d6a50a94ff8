package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/config"
	"github.com/oksasatya/go-social-crud/internal/container"
	"github.com/oksasatya/go-social-crud/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

func testConfig(mr *miniredis.Miniredis) *config.Config {
	return &config.Config{
		AppName:          "go-social-crud-test",
		Env:              "test",
		StoreDriver:      container.StoreMemory,
		RedisAddr:        mr.Addr(),
		JWTAccessSecret:  "access",
		JWTRefreshSecret: "refresh",
		AccessTTL:        time.Hour,
		RefreshTTL:       24 * time.Hour,
		CookieDomain:     "localhost",
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
		MetricsEnabled:   true,
		DefaultLocale:    "en",
	}
}

func newEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := container.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	require.NotNil(t, c.Redis)
	require.NotNil(t, c.Metrics)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.Queue)

	r, err := NewEngine(c)
	require.NoError(t, err)
	return r
}

func call(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "203.0.113.7:4000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEngineServesModules(t *testing.T) {
	r := newEngine(t, testConfig(miniredis.RunT(t)))

	w := call(r, http.MethodGet, "/api/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(r, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "Password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.Data.AccessToken)

	w = call(r, http.MethodPost, "/api/posts", map[string]any{"content": "hello"}, reg.Data.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(r, http.MethodGet, "/api/posts", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")

	w = call(r, http.MethodPost, "/api/graphql", map[string]any{"query": "{ getAllPosts { id content } }"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello")

	w = call(r, http.MethodGet, "/api/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/api/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "social_http_requests_total")
	assert.Contains(t, w.Body.String(), "social_permission_decisions_total")
}

func TestEngineGlobalRateLimit(t *testing.T) {
	cfg := testConfig(miniredis.RunT(t))
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	r := newEngine(t, cfg)

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/posts", nil, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(r, http.MethodGet, "/api/posts", nil, "").Code)

	// health and metrics bypass the limiter
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/healthz", nil, "").Code)
	}
	w := call(r, http.MethodGet, "/api/metrics", nil, "")
	assert.Contains(t, w.Body.String(), `social_rate_limited_total{backend="redis"} 1`)
}

func TestRegistryModuleFunc(t *testing.T) {
	reg := NewRegistry(gin.New())
	reg.Use(func(c *gin.Context) { c.Header("X-Test", "1"); c.Next() })
	reg.Add(ModuleFunc(func(rg *gin.RouterGroup) {
		rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	}))
	reg.RegisterAll()

	w := call(reg.Engine, http.MethodGet, "/api/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Test"))
}
