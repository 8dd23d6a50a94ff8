package crud

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// Validator is a named permission predicate. Check must not mutate the
// Context; it may read storage through c.Std(). Allow on a zero Validator
// denies, but Register replaces zero validators with PublicAccess.
type Validator struct {
	Name  string
	Check func(c *Context, target entity.Record) (bool, error)
}

func (v Validator) IsZero() bool { return v.Check == nil }

// Allow evaluates the predicate against target, which may be nil.
func (v Validator) Allow(c *Context, target entity.Record) (bool, error) {
	if v.Check == nil {
		return false, nil
	}
	return v.Check(c, target)
}

func IsAuthenticated() Validator {
	return Validator{Name: "isAuthenticated", Check: func(c *Context, _ entity.Record) (bool, error) {
		return c.Authenticated(), nil
	}}
}

func IsAdmin() Validator {
	v := IsAuthorizedWithRole(entity.RoleAdmin.String())
	v.Name = "isAdmin"
	return v
}

func IsAuthorizedWithRole(role string) Validator {
	return Validator{Name: "isAuthorizedWithRole(" + role + ")", Check: func(c *Context, _ entity.Record) (bool, error) {
		p, ok := c.Principal()
		return ok && p.Role == role, nil
	}}
}

// IsOwner matches the principal against the owner of the record on top of
// the resolution chain. Missing principal, empty chain and records without
// an owner all evaluate to false, checked in that order.
func IsOwner() Validator {
	return Validator{Name: "isOwner", Check: func(c *Context, _ entity.Record) (bool, error) {
		p, ok := c.Principal()
		if !ok {
			return false, nil
		}
		cur, ok := c.Current()
		if !ok {
			return false, nil
		}
		owned, ok := cur.(entity.HasOwner)
		if !ok {
			return false, nil
		}
		return owned.OwnerID() == p.ID, nil
	}}
}

func PublicAccess() Validator {
	return Validator{Name: "publicAccess", Check: func(*Context, entity.Record) (bool, error) { return true, nil }}
}

func PrivateAccess() Validator {
	return Validator{Name: "privateAccess", Check: func(*Context, entity.Record) (bool, error) { return false, nil }}
}

// Authorize gates a non-CRUD business action on a single validator. When
// target is non-nil it is pushed onto the resolution chain during the check.
func Authorize(c *Context, action string, v Validator, target entity.Record) error {
	check := func() error {
		ok, err := v.Allow(c, target)
		if err != nil {
			return fmt.Errorf("%s: validator %s: %w", action, v.Name, err)
		}
		if !ok {
			typ := ""
			if target != nil {
				typ = target.TypeName()
			}
			c.Logger().WithFields(logrus.Fields{"action": action, "validator": v.Name}).Debug("action denied")
			return &UnauthorizedError{Type: typ, Operation: Operation(action), Validator: v.Name}
		}
		return nil
	}
	if target == nil {
		return check()
	}
	return c.WithResolverScope(target, check)
}
