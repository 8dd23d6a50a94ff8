package modules

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-social-crud/internal/metrics"
)

// SystemModule serves liveness and, when enabled, Prometheus metrics.
// GET /api/healthz, GET /api/metrics
type SystemModule struct {
	DB      *sql.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
}

func NewSystemModule(db *sql.DB, rdb *redis.Client, m *metrics.Metrics) *SystemModule {
	return &SystemModule{DB: db, Redis: rdb, Metrics: m}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.health)
	if m.Metrics != nil {
		rg.GET("/metrics", gin.WrapH(m.Metrics.Handler()))
	}
}

func (m *SystemModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK
	if m.DB != nil {
		checks["postgres"] = "ok"
		if err := m.DB.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if m.Redis != nil {
		checks["redis"] = "ok"
		if err := m.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
