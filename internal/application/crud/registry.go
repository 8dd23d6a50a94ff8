package crud

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// Registry composes three maps keyed by entity type: the persistence schema
// (a Store), the API shape and the permission options. Only types present in
// all three can have resolvers built for them.
type Registry struct {
	mu       sync.RWMutex
	schemas  map[string]Store
	shapes   map[string]Shape
	perms    map[string]Options
	log      *logrus.Entry
	observer Observer
}

func NewRegistry(schemas map[string]Store, shapes map[string]Shape, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Registry{
		schemas: make(map[string]Store, len(schemas)),
		shapes:  make(map[string]Shape, len(shapes)),
		perms:   make(map[string]Options),
		log:     logger.WithField("component", "crud"),
	}
	for k, v := range schemas {
		r.schemas[k] = v
	}
	for k, v := range shapes {
		r.shapes[k] = v
	}
	return r
}

// Compose registers every entry of perms and verifies that each declared
// relation points at a registered type.
func Compose(schemas map[string]Store, shapes map[string]Shape, perms map[string]Options, logger *logrus.Logger) (*Registry, error) {
	r := NewRegistry(schemas, shapes, logger)
	names := make([]string, 0, len(perms))
	for name := range perms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(name, perms[name]); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		for field, rel := range r.shapes[name].Relations {
			if _, ok := r.perms[rel.Target]; !ok {
				return nil, &ConfigurationError{Type: name, Reason: fmt.Sprintf("relation %s targets unregistered type %s", field, rel.Target)}
			}
		}
	}
	return r, nil
}

// Register stores the permission options for entityType. The type must
// already have a store and a shape.
func (r *Registry) Register(entityType string, opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[entityType]; !ok {
		return &ConfigurationError{Type: entityType, Reason: "no store declared"}
	}
	if _, ok := r.shapes[entityType]; !ok {
		return &ConfigurationError{Type: entityType, Reason: "no shape declared"}
	}
	opts = opts.withDefaults()
	r.perms[entityType] = opts
	r.log.WithFields(logrus.Fields{
		"entity":   entityType,
		"strategy": opts.ErrorStrategy,
		"read":     opts.Read.Name,
	}).Debug("entity registered")
	return nil
}

// SetObserver installs o to receive permission decisions.
func (r *Registry) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

func (r *Registry) RepositoryFor(entityType string) (Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.perms[entityType]; !ok {
		return nil, &ConfigurationError{Type: entityType, Reason: "not registered"}
	}
	return r.schemas[entityType], nil
}

func (r *Registry) PermissionsFor(entityType string) (Options, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opts, ok := r.perms[entityType]
	if !ok {
		return Options{}, &ConfigurationError{Type: entityType, Reason: "not registered"}
	}
	return opts, nil
}

func (r *Registry) ShapeFor(entityType string) (Shape, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.perms[entityType]; !ok {
		return Shape{}, &ConfigurationError{Type: entityType, Reason: "not registered"}
	}
	return r.shapes[entityType], nil
}

// Types lists registered entity types in name order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.perms))
	for name := range r.perms {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// check evaluates the validator of op. Disabled operations always deny.
func (r *Registry) check(c *Context, entityType string, op Operation, opts Options, target entity.Record) (bool, error) {
	v := opts.validator(op)
	allowed := false
	if opts.enabled(op) {
		ok, err := v.Allow(c, target)
		if err != nil {
			return false, fmt.Errorf("%s %s: validator %s: %w", op, entityType, v.Name, err)
		}
		allowed = ok
	}
	r.mu.RLock()
	obs := r.observer
	r.mu.RUnlock()
	if obs != nil {
		obs.ObserveDecision(entityType, string(op), allowed)
	}
	if !allowed {
		c.Logger().WithFields(logrus.Fields{
			"entity":    entityType,
			"operation": op,
			"validator": v.Name,
		}).Debug("permission denied")
	}
	return allowed, nil
}

// deny applies the entity's error strategy to a rejected check.
func (r *Registry) deny(c *Context, opts Options, denied *UnauthorizedError) (outcome, error) {
	out, err := opts.ErrorStrategy.resolve(denied, opts.ObscureErrors)
	if out == proceed {
		c.Logger().WithFields(logrus.Fields{
			"entity":    denied.Type,
			"operation": denied.Operation,
			"path":      denied.Path,
		}).Warn("permission failure ignored by error strategy")
	}
	return out, err
}
