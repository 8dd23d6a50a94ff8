package crud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// Project renders the selected fields of rec. An empty selection renders the
// record as serialised. Relations absent from the record render as null, or
// as an empty list for to-many relations.
func (r *Registry) Project(entityType string, sel Selection, rec entity.Record) (map[string]any, error) {
	if rec == nil {
		return nil, nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", entityType, err)
	}
	return r.project(entityType, sel, gjson.ParseBytes(raw)), nil
}

// ProjectAll renders each record with Project.
func (r *Registry) ProjectAll(entityType string, sel Selection, recs []entity.Record) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		m, err := r.Project(entityType, sel, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) project(entityType string, sel Selection, doc gjson.Result) map[string]any {
	out := make(map[string]any)
	if len(sel) == 0 {
		doc.ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = value(v)
			return true
		})
		return out
	}
	shape, _ := r.ShapeFor(entityType)
	for _, f := range sel {
		if f.Name == Wildcard {
			doc.ForEach(func(k, v gjson.Result) bool {
				if _, isRel := shape.relation(k.String()); !isRel {
					out[k.String()] = value(v)
				}
				return true
			})
			continue
		}
		v := doc.Get(f.Name)
		rel, isRel := shape.relation(f.Name)
		switch {
		case isRel && rel.Many:
			items := make([]any, 0)
			if v.IsArray() {
				v.ForEach(func(_, item gjson.Result) bool {
					items = append(items, r.project(rel.Target, f.Selection, item))
					return true
				})
			}
			out[f.Key()] = items
		case isRel:
			if v.IsObject() {
				out[f.Key()] = r.project(rel.Target, f.Selection, v)
			} else {
				out[f.Key()] = nil
			}
		case v.Exists():
			out[f.Key()] = value(v)
		default:
			out[f.Key()] = nil
		}
	}
	return out
}

// value converts v like gjson's Value, except that integral numbers become
// int64 so ids beyond 2^53 survive.
func value(v gjson.Result) any {
	switch {
	case v.Type == gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return i
			}
		}
		return v.Num
	case v.IsArray():
		items := make([]any, 0)
		v.ForEach(func(_, item gjson.Result) bool {
			items = append(items, value(item))
			return true
		})
		return items
	case v.IsObject():
		m := make(map[string]any)
		v.ForEach(func(k, item gjson.Result) bool {
			m[k.String()] = value(item)
			return true
		})
		return m
	}
	return v.Value()
}
