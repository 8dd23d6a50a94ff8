package crud

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/memory"
)

type fixture struct {
	users *memory.UserRepository
	posts *memory.PostRepository
	alice *entity.User
	bob   *entity.User
	admin *entity.User
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{users: memory.NewUserRepository(), posts: memory.NewPostRepository()}
	var err error
	f.alice, err = f.users.Save(ctx, &entity.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	f.bob, err = f.users.Save(ctx, &entity.User{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	f.admin, err = f.users.Save(ctx, &entity.User{Username: "root", Email: "root@example.com", Role: entity.RoleAdmin})
	require.NoError(t, err)
	return f
}

func (f *fixture) post(t *testing.T, author *entity.User, content string) *entity.Post {
	t.Helper()
	p, err := f.posts.Save(context.Background(), &entity.Post{AuthorID: author.ID, Content: content})
	require.NoError(t, err)
	return p
}

func (f *fixture) shapes() map[string]Shape {
	return map[string]Shape{
		entity.TypeUser: {
			Fillable:  []string{"username", "email", "isPrivate"},
			Updatable: []string{"isPrivate"},
			Relations: map[string]Relation{
				"posts": ManyRelation(entity.TypePost,
					func(ctx context.Context, u *entity.User) ([]*entity.Post, error) { return f.posts.FindByAuthor(ctx, u.ID) },
					func(u *entity.User, ps []*entity.Post) { u.Posts = ps }),
			},
		},
		entity.TypePost: {
			Fillable:  []string{"content", "authorId"},
			Updatable: []string{"content"},
			Relations: map[string]Relation{
				"author": OneRelation(entity.TypeUser,
					func(ctx context.Context, p *entity.Post) (*entity.User, bool, error) {
						u, err := f.users.FindByID(ctx, p.AuthorID)
						if errors.Is(err, repository.ErrNotFound) {
							return nil, false, nil
						}
						return u, err == nil, err
					},
					func(p *entity.Post, u *entity.User) { p.Author = u }),
			},
			Hooks: Hooks{BeforeCreate: func(c *Context, rec entity.Record) error {
				if p, ok := c.Principal(); ok {
					rec.(*entity.Post).AuthorID = p.ID
				}
				return nil
			}},
		},
	}
}

func (f *fixture) registry(t *testing.T, userOpts, postOpts Options) *Registry {
	t.Helper()
	schemas := map[string]Store{
		entity.TypeUser: Adapt[*entity.User](f.users),
		entity.TypePost: Adapt[*entity.Post](f.posts),
	}
	reg, err := Compose(schemas, f.shapes(), map[string]Options{
		entity.TypeUser: userOpts,
		entity.TypePost: postOpts,
	}, quietLogger())
	require.NoError(t, err)
	return reg
}

func (f *fixture) resolver(t *testing.T, reg *Registry, typ string) *Resolver {
	t.Helper()
	res, err := BuildResolver(reg, typ)
	require.NoError(t, err)
	return res
}

func as(u *entity.User) *Context {
	if u == nil {
		return NewContext(context.Background(), nil, logrus.NewEntry(quietLogger()))
	}
	p := &Principal{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role.String()}
	return NewContext(context.Background(), p, logrus.NewEntry(quietLogger()))
}

// spy wraps v and records the resolution chain seen by each call.
type spy struct {
	v      Validator
	calls  int
	chains [][]int64
}

func (s *spy) validator() Validator {
	return Validator{Name: s.v.Name, Check: func(c *Context, target entity.Record) (bool, error) {
		s.calls++
		ids := make([]int64, 0, c.Depth())
		for _, r := range c.Chain() {
			ids = append(ids, r.GetID())
		}
		s.chains = append(s.chains, ids)
		return s.v.Allow(c, target)
	}}
}
