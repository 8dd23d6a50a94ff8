package crud

import (
	"errors"
	"fmt"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

// Resolver holds the generated operations of one entity type. An operation
// is nil when it is disabled in the entity's Options.
type Resolver struct {
	Type  string
	Names OperationNames

	GetAll func(c *Context, sel Selection) ([]entity.Record, error)
	GetOne func(c *Context, id int64, sel Selection) (entity.Record, error)
	Create func(c *Context, fields map[string]any) (entity.Record, error)
	Update func(c *Context, id int64, fields map[string]any) (entity.Record, error)
	Delete func(c *Context, id int64) (bool, error)
}

// BuildResolver generates the enabled operations for entityType.
func BuildResolver(reg *Registry, entityType string) (*Resolver, error) {
	opts, err := reg.PermissionsFor(entityType)
	if err != nil {
		return nil, err
	}
	store, err := reg.RepositoryFor(entityType)
	if err != nil {
		return nil, err
	}
	shape, err := reg.ShapeFor(entityType)
	if err != nil {
		return nil, err
	}
	b := &builder{reg: reg, typ: entityType, opts: opts, store: store, shape: shape}
	res := &Resolver{Type: entityType, Names: NamesFor(entityType)}
	if opts.EnableRead {
		res.GetAll = b.getAll
		res.GetOne = b.getOne
	}
	if opts.EnableCreate {
		res.Create = b.create
	}
	if opts.EnableUpdate {
		res.Update = b.update
	}
	if opts.EnableDelete {
		res.Delete = b.delete
	}
	return res, nil
}

type builder struct {
	reg   *Registry
	typ   string
	opts  Options
	store Store
	shape Shape
}

func (b *builder) denied(op Operation) *UnauthorizedError {
	return &UnauthorizedError{Type: b.typ, Operation: op, Validator: b.opts.validator(op).Name}
}

func (b *builder) find(c *Context, id int64) (entity.Record, error) {
	rec, err := b.store.FindByID(c.Std(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Type: b.typ, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %d: %w", b.typ, id, err)
	}
	return rec, nil
}

// getAll drops records rejected by the read validator, or whose nested
// selection is rejected. It never fails because of permissions.
func (b *builder) getAll(c *Context, sel Selection) ([]entity.Record, error) {
	rows, err := b.store.FindAll(c.Std())
	if err != nil {
		return nil, fmt.Errorf("getAll %s: %w", b.typ, err)
	}
	out := make([]entity.Record, 0, len(rows))
	for _, rec := range rows {
		keep := false
		err := c.WithResolverScope(rec, func() error {
			ok, err := b.reg.check(c, b.typ, OpRead, b.opts, rec)
			if err != nil {
				return err
			}
			if !ok {
				if out, _ := b.reg.deny(c, b.opts, b.denied(OpRead)); out != proceed {
					return nil
				}
			}
			if err := b.reg.walk(c, sel, rec, b.typ, b.typ); err != nil {
				if IsUnauthorized(err) {
					return nil
				}
				return err
			}
			keep = true
			return nil
		})
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (b *builder) getOne(c *Context, id int64, sel Selection) (entity.Record, error) {
	rec, err := b.find(c, id)
	if err != nil {
		return nil, err
	}
	var result entity.Record
	err = c.WithResolverScope(rec, func() error {
		ok, err := b.reg.check(c, b.typ, OpRead, b.opts, rec)
		if err != nil {
			return err
		}
		if !ok {
			switch out, err := b.reg.deny(c, b.opts, b.denied(OpRead)); out {
			case fail:
				return err
			case empty:
				return nil
			}
		}
		if err := b.reg.walk(c, sel, rec, b.typ, b.typ); err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *builder) create(c *Context, fields map[string]any) (entity.Record, error) {
	ok, err := b.reg.check(c, b.typ, OpCreate, b.opts, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		switch out, err := b.reg.deny(c, b.opts, b.denied(OpCreate)); out {
		case fail:
			return nil, err
		case empty:
			return nil, nil
		}
	}
	rec, err := b.store.Create(c.Std(), b.shape.fillable(fields))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", b.typ, err)
	}
	if hook := b.shape.Hooks.BeforeCreate; hook != nil {
		if err := hook(c, rec); err != nil {
			return nil, err
		}
	}
	saved, err := b.store.Save(c.Std(), rec)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", b.typ, err)
	}
	if hook := b.shape.Hooks.AfterSave; hook != nil {
		hook(c, saved)
	}
	return saved, nil
}

func (b *builder) update(c *Context, id int64, fields map[string]any) (entity.Record, error) {
	rec, err := b.find(c, id)
	if err != nil {
		return nil, err
	}
	var result entity.Record
	err = c.WithResolverScope(rec, func() error {
		ok, err := b.reg.check(c, b.typ, OpUpdate, b.opts, rec)
		if err != nil {
			return err
		}
		if !ok {
			switch out, err := b.reg.deny(c, b.opts, b.denied(OpUpdate)); out {
			case fail:
				return err
			case empty:
				return nil
			}
		}
		if err := helpers.DecodeFields(b.shape.updatable(fields), rec); err != nil {
			return fmt.Errorf("update %s %d: %w", b.typ, id, err)
		}
		saved, err := b.store.Save(c.Std(), rec)
		if err != nil {
			return fmt.Errorf("save %s %d: %w", b.typ, id, err)
		}
		if hook := b.shape.Hooks.AfterSave; hook != nil {
			hook(c, saved)
		}
		result = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *builder) delete(c *Context, id int64) (bool, error) {
	rec, err := b.find(c, id)
	if err != nil {
		return false, err
	}
	deleted := false
	err = c.WithResolverScope(rec, func() error {
		ok, err := b.reg.check(c, b.typ, OpDelete, b.opts, rec)
		if err != nil {
			return err
		}
		if !ok {
			switch out, err := b.reg.deny(c, b.opts, b.denied(OpDelete)); out {
			case fail:
				return err
			case empty:
				return nil
			}
		}
		if err := b.store.Remove(c.Std(), rec); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Type: b.typ, ID: id}
			}
			return fmt.Errorf("remove %s %d: %w", b.typ, id, err)
		}
		if hook := b.shape.Hooks.AfterRemove; hook != nil {
			hook(c, rec)
		}
		deleted = true
		return nil
	})
	return deleted, err
}
