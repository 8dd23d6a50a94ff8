package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

type edge struct{ from, to int64 }

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	*Store[entity.User, *entity.User]

	graphMu  sync.RWMutex
	follows  map[edge]struct{}
	requests map[edge]struct{}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		Store:    NewStore[entity.User](),
		follows:  make(map[edge]struct{}),
		requests: make(map[edge]struct{}),
	}
}

// Save enforces case-insensitive uniqueness of username and email.
func (r *UserRepository) Save(_ context.Context, u *entity.User) (*entity.User, error) {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	return r.SaveUnless(u, func(o *entity.User) bool {
		return strings.EqualFold(o.Username, u.Username) || strings.EqualFold(o.Email, u.Email)
	})
}

func (r *UserRepository) Remove(ctx context.Context, u *entity.User) error {
	if err := r.Store.Remove(ctx, u); err != nil {
		return err
	}
	r.graphMu.Lock()
	defer r.graphMu.Unlock()
	for _, m := range []map[edge]struct{}{r.follows, r.requests} {
		for e := range m {
			if e.from == u.ID || e.to == u.ID {
				delete(m, e)
			}
		}
	}
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.First(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.First(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	u.Password = hash
	_, err = r.Store.Save(ctx, u)
	return err
}

func (r *UserRepository) Followers(_ context.Context, userID int64) ([]*entity.User, error) {
	return r.related(r.follows, func(e edge) (int64, bool) { return e.from, e.to == userID }), nil
}

func (r *UserRepository) Following(_ context.Context, userID int64) ([]*entity.User, error) {
	return r.related(r.follows, func(e edge) (int64, bool) { return e.to, e.from == userID }), nil
}

func (r *UserRepository) IsFollowing(_ context.Context, followerID, followeeID int64) (bool, error) {
	r.graphMu.RLock()
	defer r.graphMu.RUnlock()
	_, ok := r.follows[edge{followerID, followeeID}]
	return ok, nil
}

func (r *UserRepository) Follow(_ context.Context, followerID, followeeID int64) error {
	r.graphMu.Lock()
	defer r.graphMu.Unlock()
	r.follows[edge{followerID, followeeID}] = struct{}{}
	return nil
}

func (r *UserRepository) Unfollow(_ context.Context, followerID, followeeID int64) error {
	r.graphMu.Lock()
	defer r.graphMu.Unlock()
	delete(r.follows, edge{followerID, followeeID})
	return nil
}

func (r *UserRepository) FollowRequests(_ context.Context, targetID int64) ([]*entity.User, error) {
	return r.related(r.requests, func(e edge) (int64, bool) { return e.from, e.to == targetID }), nil
}

func (r *UserRepository) HasFollowRequest(_ context.Context, requesterID, targetID int64) (bool, error) {
	r.graphMu.RLock()
	defer r.graphMu.RUnlock()
	_, ok := r.requests[edge{requesterID, targetID}]
	return ok, nil
}

func (r *UserRepository) AddFollowRequest(_ context.Context, requesterID, targetID int64) error {
	r.graphMu.Lock()
	defer r.graphMu.Unlock()
	r.requests[edge{requesterID, targetID}] = struct{}{}
	return nil
}

func (r *UserRepository) RemoveFollowRequest(_ context.Context, requesterID, targetID int64) error {
	r.graphMu.Lock()
	defer r.graphMu.Unlock()
	delete(r.requests, edge{requesterID, targetID})
	return nil
}

// related resolves the users picked out of m by pick, ordered by id.
func (r *UserRepository) related(m map[edge]struct{}, pick func(edge) (int64, bool)) []*entity.User {
	r.graphMu.RLock()
	ids := make(map[int64]struct{})
	for e := range m {
		if id, ok := pick(e); ok {
			ids[id] = struct{}{}
		}
	}
	r.graphMu.RUnlock()
	out := r.Where(func(u *entity.User) bool {
		_, ok := ids[u.ID]
		return ok
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ repository.UserRepository = (*UserRepository)(nil)
