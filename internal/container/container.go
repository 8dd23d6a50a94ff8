package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/config"
	"github.com/oksasatya/go-social-crud/internal/application"
	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/cache"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/events"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/search"
	"github.com/oksasatya/go-social-crud/internal/metrics"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Container owns the components shared across the process. Redis,
// Elasticsearch, RabbitMQ and metrics are optional and nil when absent
// or unreachable.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	DB      *sql.DB
	Redis   *redis.Client
	ES      *elasticsearch.Client
	Queue   *helpers.RabbitQueue
	JWT     *helpers.JWTManager
	Metrics *metrics.Metrics
	Broker  *events.Broker
	Search  *search.Indexer

	Repos         application.Repositories
	Registry      *crud.Registry
	Auth          *application.AuthService
	Social        *application.SocialService
	Notifications *application.NotificationService
}

// New connects the infrastructure selected by cfg and wires the services.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	if err := c.wire(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wire(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger
	if err := c.openStore(ctx); err != nil {
		return err
	}
	c.openRedis(ctx)
	c.openSearch(ctx)
	c.openQueue()

	c.JWT = helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if cfg.MetricsEnabled {
		c.Metrics = metrics.New()
	}

	// Optional collaborators are passed as nil interfaces, never typed nils.
	var idx application.SearchIndex
	if c.Search != nil {
		idx = c.Search
	}
	reg, err := application.BuildRegistry(c.Repos, idx, logger)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	c.Registry = reg
	if c.Metrics != nil {
		c.Registry.SetObserver(c.Metrics)
	}

	var bus application.EventBus
	if c.Redis != nil {
		c.Broker = events.NewBroker(c.Redis, logger)
		if c.Metrics != nil {
			c.Broker.OnPublish(c.Metrics.ObservePublished)
		}
		bus = c.Broker
	}
	var jobs application.JobPublisher
	if c.Queue != nil {
		jobs = c.Queue
	}

	if c.Auth, err = application.NewAuthService(c.Registry, c.Repos.Users, c.JWT, c.Redis, idx, logger); err != nil {
		return err
	}
	if c.Notifications, err = application.NewNotificationService(c.Registry, c.Repos, jobs, cfg, logger); err != nil {
		return err
	}
	if c.Social, err = application.NewSocialService(c.Registry, c.Repos, c.Notifications, bus, idx, logger); err != nil {
		return err
	}
	return nil
}

func (c *Container) openStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case StoreMemory:
		c.Repos = application.Repositories{
			Users:         memory.NewUserRepository(),
			Posts:         memory.NewPostRepository(),
			Comments:      memory.NewCommentRepository(),
			Likes:         memory.NewLikeRepository(),
			Notifications: memory.NewNotificationRepository(),
			Messages:      memory.NewMessageRepository(),
		}
		c.Logger.Warn("using in-memory store; data is lost on restart")
	case StorePostgres, "":
		db, err := postgres.Open(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.DB = db
		if err := postgres.Migrate(db, cfg.MigrationsDir, c.Logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		c.Repos = application.Repositories{
			Users:         postgres.NewUserRepository(db),
			Posts:         postgres.NewPostRepository(db),
			Comments:      postgres.NewCommentRepository(db),
			Likes:         postgres.NewLikeRepository(db),
			Notifications: postgres.NewNotificationRepository(db),
			Messages:      postgres.NewMessageRepository(db),
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.UserCacheSize > 0 {
		c.Repos.Users = cache.NewUserRepository(c.Repos.Users, cfg.UserCacheSize, cfg.UserCacheTTL)
	}
	return nil
}

func (c *Container) openRedis(ctx context.Context) {
	cfg := c.Config
	if cfg.RedisAddr == "" {
		c.Logger.Warn("REDIS_ADDR empty; sessions, distributed rate limiting and event streams are disabled")
		return
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := helpers.PingRedis(ctx, rdb, 2*time.Second); err != nil {
		helpers.LogError(c.Logger, "redis unavailable; continuing without it", err, logrus.Fields{"addr": cfg.RedisAddr})
		_ = rdb.Close()
		return
	}
	c.Redis = rdb
}

func (c *Container) openSearch(ctx context.Context) {
	cfg := c.Config
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return
	}
	es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		helpers.LogError(c.Logger, "elasticsearch client init failed; search disabled", err, nil)
		return
	}
	if err := helpers.PingES(ctx, es, 3*time.Second); err != nil {
		helpers.LogError(c.Logger, "elasticsearch unreachable; search disabled", err, logrus.Fields{"addrs": addrs})
		return
	}
	c.ES = es
	c.Search = search.NewIndexer(es, cfg.ESUsersIndex, cfg.ESPostsIndex, c.Logger)
}

func (c *Container) openQueue() {
	cfg := c.Config
	if !cfg.MailSendEnabled || cfg.RabbitMQURL == "" {
		return
	}
	q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQNotificationQueue)
	if err != nil {
		helpers.LogError(c.Logger, "rabbitmq unavailable; notification emails disabled", err, logrus.Fields{"queue": cfg.RabbitMQNotificationQueue})
		return
	}
	c.Queue = q
}

// Close releases every connection the container opened. It is safe to call
// on a partially built container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	c.Queue.Close()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
