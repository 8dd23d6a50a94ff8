package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-crud/internal/interface/http"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
)

// CrudModule exposes the generated resolvers twice: as REST collections
// under /api/<plural> and as fields of POST /api/graphql. Access is decided
// by each type's validators, so these routes only need the optional
// principal set by the global middleware.
type CrudModule struct {
	Rest    *handlers.CrudHandler
	GraphQL *handlers.GraphQLHandler
	Limiter Limiter
	// Skip lists "METHOD /path" routes owned by other modules.
	Skip []string
}

func NewCrudModule(rest *handlers.CrudHandler, gql *handlers.GraphQLHandler, l Limiter, skip ...string) *CrudModule {
	return &CrudModule{Rest: rest, GraphQL: gql, Limiter: l, Skip: skip}
}

func (m *CrudModule) Register(rg *gin.RouterGroup) {
	rg.POST("/graphql", m.Limiter.PerMinute(300, middleware.KeyByIP()), m.GraphQL.Serve)
	m.Rest.Register(rg, m.Skip...)
}
