package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/interface/middleware"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
	"github.com/oksasatya/go-social-crud/pkg/response"
)

type opKind int

const (
	opGetAll opKind = iota
	opGetOne
	opCreate
	opUpdate
	opDelete
)

func (k opKind) mutation() bool { return k >= opCreate }

type gqlOperation struct {
	res  *crud.Resolver
	kind opKind
}

type graphqlRequest struct {
	Query         string         `json:"query" binding:"required"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type gqlError struct {
	Message    string         `json:"message"`
	Path       []string       `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type gqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []gqlError     `json:"errors,omitempty"`
}

// errBadField is returned for malformed top-level fields.
var errBadField = errors.New("graphql: bad field")

// GraphQLHandler dispatches top-level query and mutation fields to the
// generated resolvers by operation name (getAllPosts, getPost, createPost...).
type GraphQLHandler struct {
	Registry *crud.Registry
	Logger   *logrus.Logger
	ops      map[string]gqlOperation
}

func NewGraphQLHandler(reg *crud.Registry, logger *logrus.Logger) (*GraphQLHandler, error) {
	h := &GraphQLHandler{Registry: reg, Logger: logger, ops: make(map[string]gqlOperation)}
	for _, typ := range reg.Types() {
		res, err := crud.BuildResolver(reg, typ)
		if err != nil {
			return nil, err
		}
		if res.GetAll != nil {
			h.ops[res.Names.GetAll] = gqlOperation{res, opGetAll}
			h.ops[res.Names.GetOne] = gqlOperation{res, opGetOne}
		}
		if res.Create != nil {
			h.ops[res.Names.Create] = gqlOperation{res, opCreate}
		}
		if res.Update != nil {
			h.ops[res.Names.Update] = gqlOperation{res, opUpdate}
		}
		if res.Delete != nil {
			h.ops[res.Names.Delete] = gqlOperation{res, opDelete}
		}
	}
	return h, nil
}

// Serve POST /api/graphql
func (h *GraphQLHandler) Serve(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gqlResponse{Errors: []gqlError{{Message: "query is required"}}})
		return
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if err != nil {
		c.JSON(http.StatusBadRequest, gqlResponse{Errors: []gqlError{{Message: err.Error()}}})
		return
	}
	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		c.JSON(http.StatusBadRequest, gqlResponse{Errors: []gqlError{{Message: "operation not found"}}})
		return
	}
	if op.Operation == ast.Subscription {
		c.JSON(http.StatusBadRequest, gqlResponse{Errors: []gqlError{{Message: "subscriptions are served over /api/*/stream"}}})
		return
	}
	vars := withDefaults(op, req.Variables)

	cc := middleware.CrudContext(c, h.Logger)
	out := gqlResponse{Data: make(map[string]any, len(op.SelectionSet))}
	for _, s := range op.SelectionSet {
		f, ok := s.(*ast.Field)
		if !ok {
			out.Errors = append(out.Errors, gqlError{Message: "fragments are not supported"})
			continue
		}
		key := f.Alias
		if key == "" {
			key = f.Name
		}
		v, err := h.resolve(cc, f, vars, op.Operation == ast.Mutation)
		if err != nil {
			out.Data[key] = nil
			out.Errors = append(out.Errors, h.fieldError(c, key, err))
			continue
		}
		out.Data[key] = v
	}
	c.JSON(http.StatusOK, out)
}

func withDefaults(op *ast.OperationDefinition, vars map[string]any) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	for _, vd := range op.VariableDefinitions {
		if _, ok := out[vd.Variable]; ok || vd.DefaultValue == nil {
			continue
		}
		if v, err := vd.DefaultValue.Value(nil); err == nil {
			out[vd.Variable] = v
		}
	}
	return out
}

func (h *GraphQLHandler) resolve(c *crud.Context, f *ast.Field, vars map[string]any, mutation bool) (any, error) {
	op, ok := h.ops[f.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", errBadField, f.Name)
	}
	if op.kind.mutation() != mutation {
		return nil, fmt.Errorf("%w: %q is not available on this operation type", errBadField, f.Name)
	}
	args := make(map[string]any, len(f.Arguments))
	for _, a := range f.Arguments {
		v, err := a.Value.Value(vars)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %s: %v", errBadField, a.Name, err)
		}
		args[a.Name] = v
	}
	sel, err := crud.FromAST(f.SelectionSet, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadField, err)
	}

	res := op.res
	switch op.kind {
	case opGetAll:
		recs, err := res.GetAll(c, sel)
		if err != nil {
			return nil, err
		}
		return h.Registry.ProjectAll(res.Type, sel, recs)
	case opDelete:
		id, err := idArg(args)
		if err != nil {
			return nil, err
		}
		return res.Delete(c, id)
	case opCreate:
		data, err := dataArg(args)
		if err != nil {
			return nil, err
		}
		rec, err := res.Create(c, data)
		if err != nil || rec == nil {
			return nil, err
		}
		return h.Registry.Project(res.Type, sel, rec)
	}

	id, err := idArg(args)
	if err != nil {
		return nil, err
	}
	if op.kind == opGetOne {
		rec, err := res.GetOne(c, id, sel)
		if err != nil || rec == nil {
			return nil, err
		}
		return h.Registry.Project(res.Type, sel, rec)
	}
	data, err := dataArg(args)
	if err != nil {
		return nil, err
	}
	rec, err := res.Update(c, id, data)
	if err != nil || rec == nil {
		return nil, err
	}
	return h.Registry.Project(res.Type, sel, rec)
}

func idArg(args map[string]any) (int64, error) {
	id, ok := helpers.ToInt64(args["id"])
	if !ok || id <= 0 {
		return 0, fmt.Errorf("%w: argument id must be a positive integer", errBadField)
	}
	return id, nil
}

func dataArg(args map[string]any) (map[string]any, error) {
	data, ok := args["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: argument data must be an object", errBadField)
	}
	return data, nil
}

func (h *GraphQLHandler) fieldError(c *gin.Context, key string, err error) gqlError {
	if errors.Is(err, errBadField) {
		return gqlError{Message: err.Error(), Path: []string{key}, Extensions: map[string]any{"code": "bad_request"}}
	}
	status, msg, body := classify(c, err)
	ext := map[string]any{"status": status}
	if ae, ok := body.(apiError); ok {
		ext["code"] = ae.Code
		if ae.Type != "" {
			ext["type"] = ae.Type
		}
		if ae.Path != "" {
			ext["deniedAt"] = ae.Path
		}
	} else {
		ext["details"] = body
	}
	if status >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.WithError(err).WithField("field", key).Error("graphql field failed")
	}
	return gqlError{Message: response.Translate(c, msg), Path: []string{key}, Extensions: ext}
}
