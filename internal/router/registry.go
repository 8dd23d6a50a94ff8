package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects global /api middleware and feature modules, then mounts
// them in the order they were added.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

// Use appends middleware that runs before every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}

// LogRoutes writes the mounted routes at debug level.
func (r *Registry) LogRoutes(logger *logrus.Logger) {
	for _, rt := range r.Engine.Routes() {
		logger.WithFields(logrus.Fields{"method": rt.Method, "path": rt.Path}).Debug("route")
	}
}
