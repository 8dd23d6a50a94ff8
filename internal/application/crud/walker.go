package crud

import (
	"fmt"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// CheckNestedReadPermissions walks sel over root and validates every related
// record it reaches with the read validator of that record's own type.
// Rejections follow the nested type's error strategy: throw fails the walk,
// return-null drops the record from its relation, ignore keeps it. Records
// reached along several paths are validated on every occurrence.
func (r *Registry) CheckNestedReadPermissions(c *Context, sel Selection, root entity.Record, rootType string) error {
	return r.walk(c, sel, root, rootType, rootType)
}

func (r *Registry) walk(c *Context, sel Selection, rec entity.Record, typ, path string) error {
	if len(sel) == 0 {
		return nil
	}
	shape, err := r.ShapeFor(typ)
	if err != nil {
		return err
	}
	for _, f := range sel {
		rel, ok := shape.relation(f.Name)
		if !ok {
			continue
		}
		opts, err := r.PermissionsFor(rel.Target)
		if err != nil {
			continue
		}
		related, err := rel.Load(c.Std(), rec)
		if err != nil {
			return fmt.Errorf("load %s.%s: %w", path, f.Name, err)
		}
		if len(related) == 0 {
			continue
		}
		kept := make([]entity.Record, 0, len(related))
		for i, child := range related {
			childPath := path + "." + f.Name
			if rel.Many {
				childPath = fmt.Sprintf("%s[%d]", childPath, i)
			}
			keep := true
			err := c.WithResolverScope(child, func() error {
				ok, err := r.check(c, rel.Target, OpRead, opts, child)
				if err != nil {
					return err
				}
				if !ok {
					denied := &UnauthorizedError{Type: rel.Target, Operation: OpRead, Validator: opts.Read.Name, Path: childPath}
					switch out, err := r.deny(c, opts, denied); out {
					case fail:
						return err
					case empty:
						keep = false
						return nil
					}
				}
				if f.Structured() {
					return r.walk(c, f.Selection, child, rel.Target, childPath)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if keep {
				kept = append(kept, child)
			}
		}
		rel.Set(rec, kept)
	}
	return nil
}
