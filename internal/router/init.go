package router

import (
	"github.com/oksasatya/go-social-crud/internal/container"
	handlers "github.com/oksasatya/go-social-crud/internal/interface/http"
	"github.com/oksasatya/go-social-crud/internal/router/modules"
)

// InitModules builds the HTTP handlers from the container and registers every
// feature module with the router registry. Call once during startup, before
// RegisterAll.
func InitModules(r *Registry, c *container.Container) error {
	cfg := c.Config
	limiter := modules.Limiter{Redis: c.Redis}
	if c.Metrics != nil {
		limiter.OnLimited = c.Metrics.ObserveRateLimited
	}

	crudH, err := handlers.NewCrudHandler(c.Registry, c.Logger)
	if err != nil {
		return err
	}
	gqlH, err := handlers.NewGraphQLHandler(c.Registry, c.Logger)
	if err != nil {
		return err
	}

	r.Add(modules.NewSystemModule(c.DB, c.Redis, c.Metrics))
	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(c.Auth, c.Logger, cfg.CookieDomain, cfg.CookieSecure),
		c.Redis, c.JWT, limiter,
	))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Auth, c.Logger), c.Redis, c.JWT, limiter))
	r.Add(modules.NewSocialModule(handlers.NewSocialHandler(c.Social, c.Logger), c.Redis, c.JWT, limiter))
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(c.Notifications, c.Logger), c.Redis, c.JWT))
	// Sending a message goes through the social module so the receiver's
	// stream is notified.
	r.Add(modules.NewCrudModule(crudH, gqlH, limiter, "POST /messages"))
	return nil
}
