package crud

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// Shape declares what the API exposes for an entity type: which fields a
// caller may write and which fields are relations to other entity types.
// Fillable fields are accepted on create; only Updatable fields are merged
// on update, so a nil Updatable makes every field immutable.
type Shape struct {
	Fillable  []string
	Updatable []string
	Relations map[string]Relation
	Hooks     Hooks
}

// Relation describes a field holding other records. Load fetches them (an
// empty result means the relation is not populated); Set writes the records
// that survived permission checks back onto the parent.
type Relation struct {
	Target string
	Many   bool
	Load   func(ctx context.Context, parent entity.Record) ([]entity.Record, error)
	Set    func(parent entity.Record, related []entity.Record)
}

// Hooks run around persistence. BeforeCreate may reject the record.
type Hooks struct {
	BeforeCreate func(c *Context, rec entity.Record) error
	AfterSave    func(c *Context, rec entity.Record)
	AfterRemove  func(c *Context, rec entity.Record)
}

func (s Shape) relation(name string) (Relation, bool) {
	r, ok := s.Relations[name]
	return r, ok
}

func (s Shape) fillable(fields map[string]any) map[string]any {
	return pick(s.Fillable, fields)
}

func (s Shape) updatable(fields map[string]any) map[string]any {
	return pick(s.Updatable, fields)
}

// pick keeps the keys of fields listed in keys.
func pick(keys []string, fields map[string]any) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// OneRelation declares a to-one relation. load reports found=false when the
// relation is empty; set receives the zero R when the record was dropped.
func OneRelation[P, R entity.Record](target string, load func(ctx context.Context, parent P) (R, bool, error), set func(parent P, related R)) Relation {
	return Relation{
		Target: target,
		Load: func(ctx context.Context, rec entity.Record) ([]entity.Record, error) {
			p, ok := rec.(P)
			if !ok {
				return nil, fmt.Errorf("relation %s: unexpected parent %T", target, rec)
			}
			r, found, err := load(ctx, p)
			if err != nil || !found {
				return nil, err
			}
			return []entity.Record{r}, nil
		},
		Set: func(rec entity.Record, related []entity.Record) {
			p, ok := rec.(P)
			if !ok {
				return
			}
			var r R
			if len(related) > 0 {
				if v, ok := related[0].(R); ok {
					r = v
				}
			}
			set(p, r)
		},
	}
}

// ManyRelation declares a to-many relation.
func ManyRelation[P, R entity.Record](target string, load func(ctx context.Context, parent P) ([]R, error), set func(parent P, related []R)) Relation {
	return Relation{
		Target: target,
		Many:   true,
		Load: func(ctx context.Context, rec entity.Record) ([]entity.Record, error) {
			p, ok := rec.(P)
			if !ok {
				return nil, fmt.Errorf("relation %s: unexpected parent %T", target, rec)
			}
			rows, err := load(ctx, p)
			if err != nil {
				return nil, err
			}
			out := make([]entity.Record, len(rows))
			for i, r := range rows {
				out[i] = r
			}
			return out, nil
		},
		Set: func(rec entity.Record, related []entity.Record) {
			p, ok := rec.(P)
			if !ok {
				return
			}
			rows := make([]R, 0, len(related))
			for _, r := range related {
				if v, ok := r.(R); ok {
					rows = append(rows, v)
				}
			}
			set(p, rows)
		},
	}
}
