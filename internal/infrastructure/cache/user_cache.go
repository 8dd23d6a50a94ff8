package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

// UserRepository is a read-through cache in front of another
// UserRepository. Only FindByID is cached; every write evicts the user.
// Cached users are cloned on the way out because callers attach relations.
type UserRepository struct {
	repository.UserRepository
	lru *expirable.LRU[int64, *entity.User]
}

func NewUserRepository(next repository.UserRepository, size int, ttl time.Duration) *UserRepository {
	if size <= 0 {
		size = 1024
	}
	return &UserRepository{
		UserRepository: next,
		lru:            expirable.NewLRU[int64, *entity.User](size, nil, ttl),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if u, ok := r.lru.Get(id); ok {
		return u.Clone(), nil
	}
	u, err := r.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.lru.Add(id, u.Clone())
	return u, nil
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := r.UserRepository.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	r.lru.Remove(saved.ID)
	return saved, nil
}

func (r *UserRepository) Remove(ctx context.Context, u *entity.User) error {
	r.lru.Remove(u.ID)
	return r.UserRepository.Remove(ctx, u)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	r.lru.Remove(userID)
	return r.UserRepository.UpdatePassword(ctx, userID, hash)
}

// Len reports the number of cached users.
func (r *UserRepository) Len() int { return r.lru.Len() }

var _ repository.UserRepository = (*UserRepository)(nil)
