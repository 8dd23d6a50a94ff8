package crud

import (
	"errors"
	"fmt"
)

// Operation names one of the four generated CRUD operations.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ErrObscured replaces permission errors for entities that hide why access was denied.
var ErrObscured = errors.New("access denied")

// NotFoundError reports a missing record. It is raised regardless of error strategy.
type NotFoundError struct {
	Type string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Type, e.ID)
}

// UnauthorizedError reports a rejected permission check. Path is set when the
// rejection happened on a nested field, e.g. "Post.comments[1].author".
type UnauthorizedError struct {
	Type      string
	Operation Operation
	Validator string
	Path      string
}

func (e *UnauthorizedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("not authorized to %s %s at %s", e.Operation, e.Type, e.Path)
	}
	return fmt.Sprintf("not authorized to %s %s", e.Operation, e.Type)
}

// ConfigurationError reports an entity type used without a complete registration.
type ConfigurationError struct {
	Type   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("crud: %s: %s", e.Type, e.Reason)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnauthorized matches both detailed and obscured permission errors.
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	return errors.As(err, &ue) || errors.Is(err, ErrObscured)
}

func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
