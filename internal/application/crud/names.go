package crud

import "github.com/go-openapi/inflect"

// OperationNames are the API names generated for an entity type.
type OperationNames struct {
	GetAll string
	GetOne string
	Create string
	Update string
	Delete string
}

// NamesFor derives operation names mechanically: getAll<Name>s, get<Name>,
// create<Name>, update<Name>, delete<Name>.
func NamesFor(entityType string) OperationNames {
	name := inflect.Camelize(entityType)
	return OperationNames{
		GetAll: "getAll" + name + "s",
		GetOne: "get" + name,
		Create: "create" + name,
		Update: "update" + name,
		Delete: "delete" + name,
	}
}

// RoutePath is the REST collection path segment, e.g. "notifications".
func RoutePath(entityType string) string {
	return inflect.Pluralize(inflect.Underscore(entityType))
}
