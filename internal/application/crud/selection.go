package crud

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Wildcard stands for every non-relation field of a record. Include-lists
// put it at each level so that naming a relation does not hide the scalars.
const Wildcard = "*"

// Field is one requested field. Selection is non-empty when the caller asked
// for sub-fields of a relation.
type Field struct {
	Name      string
	Alias     string
	Args      map[string]any
	Selection Selection
}

// Key is the name the field is rendered under.
func (f Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

func (f Field) Structured() bool { return len(f.Selection) > 0 }

// Selection is a field-selection tree in request order.
type Selection []Field

// Lookup returns the first field named name.
func (s Selection) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var errFragments = errors.New("selection: fragments are not supported")

// ParseSelection parses a GraphQL selection set such as
// "{ id author { id email } }". The outer braces are optional.
func ParseSelection(src string) (Selection, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	if !strings.HasPrefix(src, "{") {
		src = "{" + src + "}"
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "selection", Input: src})
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	if len(doc.Operations) != 1 || len(doc.Fragments) > 0 {
		return nil, errors.New("selection: expected a single selection set")
	}
	return FromAST(doc.Operations[0].SelectionSet, nil)
}

// FromAST converts a parsed selection set. Argument values are resolved
// against vars.
func FromAST(set ast.SelectionSet, vars map[string]any) (Selection, error) {
	if len(set) == 0 {
		return nil, nil
	}
	out := make(Selection, 0, len(set))
	for _, s := range set {
		f, ok := s.(*ast.Field)
		if !ok {
			return nil, errFragments
		}
		field := Field{Name: f.Name}
		if f.Alias != "" && f.Alias != f.Name {
			field.Alias = f.Alias
		}
		if len(f.Arguments) > 0 {
			field.Args = make(map[string]any, len(f.Arguments))
			for _, a := range f.Arguments {
				v, err := a.Value.Value(vars)
				if err != nil {
					return nil, fmt.Errorf("selection: argument %s.%s: %w", f.Name, a.Name, err)
				}
				field.Args[a.Name] = v
			}
		}
		sub, err := FromAST(f.SelectionSet, vars)
		if err != nil {
			return nil, err
		}
		field.Selection = sub
		out = append(out, field)
	}
	return out, nil
}

var includeName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseIncludes parses a REST include-list such as "author,comments.author".
// Every level keeps all scalar fields through Wildcard.
func ParseIncludes(list string) (Selection, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	root := Selection{{Name: Wildcard}}
	for _, path := range strings.Split(list, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		parts := strings.Split(path, ".")
		for _, p := range parts {
			if !includeName.MatchString(p) {
				return nil, fmt.Errorf("selection: invalid include %q", path)
			}
		}
		root = include(root, parts)
	}
	return root, nil
}

func include(sel Selection, parts []string) Selection {
	if len(parts) == 0 {
		return sel
	}
	for i := range sel {
		if sel[i].Name == parts[0] {
			sel[i].Selection = include(sel[i].Selection, parts[1:])
			return sel
		}
	}
	return append(sel, Field{Name: parts[0], Selection: include(Selection{{Name: Wildcard}}, parts[1:])})
}
