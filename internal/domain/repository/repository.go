package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

var (
	// ErrNotFound is returned by FindByID (and lookups built on it) when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a save would violate a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// Repository is the persistence contract shared by every entity type.
// Create only constructs a record from fields; Save persists it, inserting
// when the id is zero and updating otherwise.
type Repository[T entity.Record] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, fields map[string]any) (T, error)
	Save(ctx context.Context, rec T) (T, error)
	Remove(ctx context.Context, rec T) error
}
