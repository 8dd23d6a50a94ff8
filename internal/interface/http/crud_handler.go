package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

// CrudHandler serves the generated resolvers of every registered entity as
// REST collections.
type CrudHandler struct {
	Registry  *crud.Registry
	Logger    *logrus.Logger
	Resolvers []*crud.Resolver
}

func NewCrudHandler(reg *crud.Registry, logger *logrus.Logger) (*CrudHandler, error) {
	h := &CrudHandler{Registry: reg, Logger: logger}
	for _, typ := range reg.Types() {
		res, err := crud.BuildResolver(reg, typ)
		if err != nil {
			return nil, err
		}
		h.Resolvers = append(h.Resolvers, res)
	}
	return h, nil
}

// Register mounts /<plural> routes for each enabled operation. A disabled
// operation has no route. Routes listed in skip, as "METHOD /path", are left
// to other modules.
func (h *CrudHandler) Register(rg gin.IRoutes, skip ...string) {
	taken := make(map[string]bool, len(skip))
	for _, s := range skip {
		taken[s] = true
	}
	mount := func(method, path string, fn gin.HandlerFunc) {
		if !taken[method+" "+path] {
			rg.Handle(method, path, fn)
		}
	}
	for _, res := range h.Resolvers {
		base := "/" + crud.RoutePath(res.Type)
		if res.GetAll != nil {
			mount(http.MethodGet, base, h.list(res))
			mount(http.MethodGet, base+"/:id", h.get(res))
		}
		if res.Create != nil {
			mount(http.MethodPost, base, h.create(res))
		}
		if res.Update != nil {
			mount(http.MethodPatch, base+"/:id", h.update(res))
		}
		if res.Delete != nil {
			mount(http.MethodDelete, base+"/:id", h.delete(res))
		}
	}
}

// selection reads ?fields={ id author { id } } or ?include=author,comments.
// fields wins when both are given.
func selection(c *gin.Context) (crud.Selection, error) {
	if f := c.Query("fields"); f != "" {
		return crud.ParseSelection(f)
	}
	return crud.ParseIncludes(c.Query("include"))
}

func (h *CrudHandler) list(res *crud.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sel, err := selection(c)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, i18n.MsgInvalidRequest, map[string]string{"fields": err.Error()})
			return
		}
		recs, err := res.GetAll(middleware.CrudContext(c, h.Logger), sel)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		out, err := h.Registry.ProjectAll(res.Type, sel, recs)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.Success(c, http.StatusOK, out, i18n.MsgOK, map[string]any{"count": len(out)})
	}
}

func (h *CrudHandler) get(res *crud.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		sel, err := selection(c)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, i18n.MsgInvalidRequest, map[string]string{"fields": err.Error()})
			return
		}
		rec, err := res.GetOne(middleware.CrudContext(c, h.Logger), id, sel)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		h.respond(c, http.StatusOK, res.Type, sel, rec)
	}
}

func (h *CrudHandler) create(res *crud.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			badRequest(c, err)
			return
		}
		rec, err := res.Create(middleware.CrudContext(c, h.Logger), fields)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		status := http.StatusCreated
		if rec == nil {
			status = http.StatusOK
		}
		h.respond(c, status, res.Type, nil, rec)
	}
}

func (h *CrudHandler) update(res *crud.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			badRequest(c, err)
			return
		}
		rec, err := res.Update(middleware.CrudContext(c, h.Logger), id, fields)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		h.respond(c, http.StatusOK, res.Type, nil, rec)
	}
}

func (h *CrudHandler) delete(res *crud.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		deleted, err := res.Delete(middleware.CrudContext(c, h.Logger), id)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		msg := i18n.MsgOK
		if deleted {
			msg = i18n.MsgDeleted
		}
		response.Success[any](c, http.StatusOK, gin.H{"deleted": deleted}, msg, nil)
	}
}

// respond projects rec. A nil record, from a return-null denial, renders as null data.
func (h *CrudHandler) respond(c *gin.Context, status int, typ string, sel crud.Selection, rec entity.Record) {
	if rec == nil {
		response.Success[any](c, status, nil, i18n.MsgOK, nil)
		return
	}
	out, err := h.Registry.Project(typ, sel, rec)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	msg := i18n.MsgOK
	if status == http.StatusCreated {
		msg = i18n.MsgCreated
	}
	response.Success(c, status, out, msg, nil)
}
