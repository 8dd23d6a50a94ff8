package crud

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

// Store is the type-erased persistence handle the engine works against.
// FindByID returns repository.ErrNotFound for absent ids.
type Store interface {
	FindAll(ctx context.Context) ([]entity.Record, error)
	FindByID(ctx context.Context, id int64) (entity.Record, error)
	Create(ctx context.Context, fields map[string]any) (entity.Record, error)
	Save(ctx context.Context, rec entity.Record) (entity.Record, error)
	Remove(ctx context.Context, rec entity.Record) error
}

// Adapt exposes a typed repository as a Store.
func Adapt[T entity.Record](repo repository.Repository[T]) Store {
	return adapter[T]{repo: repo}
}

type adapter[T entity.Record] struct {
	repo repository.Repository[T]
}

func (a adapter[T]) FindAll(ctx context.Context) ([]entity.Record, error) {
	rows, err := a.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

func (a adapter[T]) FindByID(ctx context.Context, id int64) (entity.Record, error) {
	rec, err := a.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (a adapter[T]) Create(ctx context.Context, fields map[string]any) (entity.Record, error) {
	rec, err := a.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (a adapter[T]) Save(ctx context.Context, rec entity.Record) (entity.Record, error) {
	t, err := a.cast(rec)
	if err != nil {
		return nil, err
	}
	saved, err := a.repo.Save(ctx, t)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (a adapter[T]) Remove(ctx context.Context, rec entity.Record) error {
	t, err := a.cast(rec)
	if err != nil {
		return err
	}
	return a.repo.Remove(ctx, t)
}

func (a adapter[T]) cast(rec entity.Record) (T, error) {
	t, ok := rec.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("store: unexpected record type %T", rec)
	}
	return t, nil
}
