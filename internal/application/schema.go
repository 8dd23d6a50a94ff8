package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

// BuildRegistry composes the persistence, shape and permission maps of all
// entity types. idx may be nil when search is not configured.
func BuildRegistry(repos Repositories, idx SearchIndex, logger *logrus.Logger) (*crud.Registry, error) {
	return crud.Compose(Schemas(repos), Shapes(repos, idx), Permissions(repos), logger)
}

func Schemas(repos Repositories) map[string]crud.Store {
	return map[string]crud.Store{
		entity.TypeUser:         crud.Adapt[*entity.User](repos.Users),
		entity.TypePost:         crud.Adapt[*entity.Post](repos.Posts),
		entity.TypeComment:      crud.Adapt[*entity.Comment](repos.Comments),
		entity.TypeLike:         crud.Adapt[*entity.Like](repos.Likes),
		entity.TypeNotification: crud.Adapt[*entity.Notification](repos.Notifications),
		entity.TypeMessage:      crud.Adapt[*entity.Message](repos.Messages),
	}
}

// Permissions is the access table of the social API.
func Permissions(repos Repositories) map[string]crud.Options {
	return map[string]crud.Options{
		entity.TypeUser: {
			EnableRead:    true,
			EnableUpdate:  true,
			EnableDelete:  true,
			Read:          crud.IsAuthenticated(),
			Update:        crud.IsOwner(),
			Delete:        crud.IsAdmin(),
			ErrorStrategy: crud.StrategyReturnNull,
			ObscureErrors: true,
		},
		entity.TypePost: {
			EnableCreate:  true,
			EnableRead:    true,
			EnableUpdate:  true,
			EnableDelete:  true,
			Create:        crud.IsAuthenticated(),
			Read:          CanViewPost(repos.Users),
			Update:        crud.IsOwner(),
			Delete:        crud.IsOwner(),
			ErrorStrategy: crud.StrategyThrow,
		},
		entity.TypeComment: {
			EnableCreate:  true,
			EnableRead:    true,
			EnableUpdate:  true,
			EnableDelete:  true,
			Create:        crud.IsAuthenticated(),
			Read:          CanViewParentPost(repos),
			Update:        crud.IsOwner(),
			Delete:        crud.IsOwner(),
			ErrorStrategy: crud.StrategyThrow,
		},
		entity.TypeLike: {
			EnableCreate:  true,
			EnableRead:    true,
			EnableDelete:  true,
			Create:        crud.IsAuthenticated(),
			Read:          CanViewParentPost(repos),
			Delete:        crud.IsOwner(),
			ErrorStrategy: crud.StrategyThrow,
		},
		entity.TypeNotification: {
			EnableRead:    true,
			EnableUpdate:  true,
			EnableDelete:  true,
			Read:          crud.IsOwner(),
			Update:        crud.IsOwner(),
			Delete:        crud.IsOwner(),
			ErrorStrategy: crud.StrategyReturnNull,
		},
		entity.TypeMessage: {
			EnableCreate:  true,
			EnableRead:    true,
			EnableDelete:  true,
			Create:        crud.IsAuthenticated(),
			Read:          IsParticipant(),
			Delete:        crud.IsOwner(),
			ErrorStrategy: crud.StrategyThrow,
			ObscureErrors: true,
		},
	}
}

// Shapes declares the writable fields, relations and hooks of every entity type.
func Shapes(repos Repositories, idx SearchIndex) map[string]crud.Shape {
	users := repos.Users
	return map[string]crud.Shape{
		entity.TypeUser: {
			Fillable:  []string{"username", "email", "isPrivate"},
			Updatable: []string{"isPrivate"},
			Relations: map[string]crud.Relation{
				"posts": crud.ManyRelation(entity.TypePost,
					func(ctx context.Context, u *entity.User) ([]*entity.Post, error) { return repos.Posts.FindByAuthor(ctx, u.ID) },
					func(u *entity.User, ps []*entity.Post) { u.Posts = ps }),
				"followers": crud.ManyRelation(entity.TypeUser,
					func(ctx context.Context, u *entity.User) ([]*entity.User, error) { return users.Followers(ctx, u.ID) },
					func(u *entity.User, fs []*entity.User) { u.Followers = fs }),
				"following": crud.ManyRelation(entity.TypeUser,
					func(ctx context.Context, u *entity.User) ([]*entity.User, error) { return users.Following(ctx, u.ID) },
					func(u *entity.User, fs []*entity.User) { u.Following = fs }),
			},
			Hooks: crud.Hooks{
				AfterSave: func(c *crud.Context, rec entity.Record) {
					if idx != nil {
						logIndexErr(c, rec, idx.IndexUser(c.Std(), rec.(*entity.User)))
					}
				},
				AfterRemove: func(c *crud.Context, rec entity.Record) {
					if idx != nil {
						logIndexErr(c, rec, idx.DeleteUser(c.Std(), rec.GetID()))
					}
				},
			},
		},
		entity.TypePost: {
			Fillable:  []string{"content"},
			Updatable: []string{"content"},
			Relations: map[string]crud.Relation{
				"author": crud.OneRelation(entity.TypeUser,
					func(ctx context.Context, p *entity.Post) (*entity.User, bool, error) {
						return loadOne[*entity.User](ctx, users, p.AuthorID)
					},
					func(p *entity.Post, u *entity.User) { p.Author = u }),
				"comments": crud.ManyRelation(entity.TypeComment,
					func(ctx context.Context, p *entity.Post) ([]*entity.Comment, error) { return repos.Comments.FindByPost(ctx, p.ID) },
					func(p *entity.Post, cs []*entity.Comment) { p.Comments = cs }),
				"likes": crud.ManyRelation(entity.TypeLike,
					func(ctx context.Context, p *entity.Post) ([]*entity.Like, error) { return repos.Likes.FindByPost(ctx, p.ID) },
					func(p *entity.Post, ls []*entity.Like) { p.Likes = ls }),
			},
			Hooks: crud.Hooks{
				BeforeCreate: func(c *crud.Context, rec entity.Record) error {
					id, err := principalID(c, entity.TypePost)
					rec.(*entity.Post).AuthorID = id
					return err
				},
				AfterSave: func(c *crud.Context, rec entity.Record) {
					if idx != nil {
						logIndexErr(c, rec, idx.IndexPost(c.Std(), rec.(*entity.Post)))
					}
				},
				AfterRemove: func(c *crud.Context, rec entity.Record) {
					if idx != nil {
						logIndexErr(c, rec, idx.DeletePost(c.Std(), rec.GetID()))
					}
				},
			},
		},
		entity.TypeComment: {
			Fillable:  []string{"content", "postId"},
			Updatable: []string{"content"},
			Relations: map[string]crud.Relation{
				"author": crud.OneRelation(entity.TypeUser,
					func(ctx context.Context, cm *entity.Comment) (*entity.User, bool, error) {
						return loadOne[*entity.User](ctx, users, cm.AuthorID)
					},
					func(cm *entity.Comment, u *entity.User) { cm.Author = u }),
				"post": crud.OneRelation(entity.TypePost,
					func(ctx context.Context, cm *entity.Comment) (*entity.Post, bool, error) {
						return loadOne[*entity.Post](ctx, repos.Posts, cm.PostID)
					},
					func(cm *entity.Comment, p *entity.Post) { cm.Post = p }),
			},
			Hooks: crud.Hooks{BeforeCreate: func(c *crud.Context, rec entity.Record) error {
				cm := rec.(*entity.Comment)
				id, err := principalID(c, entity.TypeComment)
				if err != nil {
					return err
				}
				cm.AuthorID = id
				return requireVisiblePost(c, repos, cm.PostID)
			}},
		},
		entity.TypeLike: {
			Fillable: []string{"postId"},
			Relations: map[string]crud.Relation{
				"user": crud.OneRelation(entity.TypeUser,
					func(ctx context.Context, l *entity.Like) (*entity.User, bool, error) {
						return loadOne[*entity.User](ctx, users, l.UserID)
					},
					func(l *entity.Like, u *entity.User) { l.User = u }),
				"post": crud.OneRelation(entity.TypePost,
					func(ctx context.Context, l *entity.Like) (*entity.Post, bool, error) {
						return loadOne[*entity.Post](ctx, repos.Posts, l.PostID)
					},
					func(l *entity.Like, p *entity.Post) { l.Post = p }),
			},
			Hooks: crud.Hooks{BeforeCreate: func(c *crud.Context, rec entity.Record) error {
				l := rec.(*entity.Like)
				id, err := principalID(c, entity.TypeLike)
				if err != nil {
					return err
				}
				l.UserID = id
				return requireVisiblePost(c, repos, l.PostID)
			}},
		},
		entity.TypeNotification: {
			Fillable:  []string{"read"},
			Updatable: []string{"read"},
			Relations: map[string]crud.Relation{
				"user": crud.OneRelation(entity.TypeUser,
					func(ctx context.Context, n *entity.Notification) (*entity.User, bool, error) {
						return loadOne[*entity.User](ctx, users, n.UserID)
					},
					func(n *entity.Notification, u *entity.User) { n.User = u }),
			},
		},
		entity.TypeMessage: {
			Fillable: []string{"content", "receiverId"},
			Relations: map[string]crud.Relation{
				"sender": crud.OneRelation(entity.TypeUser,
					func(ctx context.Context, m *entity.Message) (*entity.User, bool, error) {
						return loadOne[*entity.User](ctx, users, m.SenderID)
					},
					func(m *entity.Message, u *entity.User) { m.Sender = u }),
				"receiver": crud.OneRelation(entity.TypeUser,
					func(ctx context.Context, m *entity.Message) (*entity.User, bool, error) {
						return loadOne[*entity.User](ctx, users, m.ReceiverID)
					},
					func(m *entity.Message, u *entity.User) { m.Receiver = u }),
			},
			Hooks: crud.Hooks{BeforeCreate: func(c *crud.Context, rec entity.Record) error {
				m := rec.(*entity.Message)
				id, err := principalID(c, entity.TypeMessage)
				if err != nil {
					return err
				}
				m.SenderID = id
				if _, found, err := loadOne[*entity.User](c.Std(), users, m.ReceiverID); err != nil {
					return err
				} else if !found {
					return &crud.NotFoundError{Type: entity.TypeUser, ID: m.ReceiverID}
				}
				return nil
			}},
		},
	}
}

func loadOne[T entity.Record](ctx context.Context, repo repository.Repository[T], id int64) (T, bool, error) {
	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, repository.ErrNotFound) {
			return zero, false, nil
		}
		return zero, false, err
	}
	return rec, true, nil
}

// principalID returns the caller that a created record is stamped with.
func principalID(c *crud.Context, typ string) (int64, error) {
	p, ok := c.Principal()
	if !ok {
		return 0, &crud.UnauthorizedError{Type: typ, Operation: crud.OpCreate, Validator: "isAuthenticated"}
	}
	return p.ID, nil
}

// requireVisiblePost rejects comments and likes on posts the caller cannot read.
func requireVisiblePost(c *crud.Context, repos Repositories, postID int64) error {
	post, found, err := loadOne[*entity.Post](c.Std(), repos.Posts, postID)
	if err != nil {
		return err
	}
	if !found {
		return &crud.NotFoundError{Type: entity.TypePost, ID: postID}
	}
	p, _ := c.Principal()
	ok, err := isVisibleToUser(c.Std(), repos.Users, p.ID, post)
	if err != nil {
		return err
	}
	if !ok {
		return &crud.UnauthorizedError{Type: entity.TypePost, Operation: crud.OpRead, Validator: "canViewPost"}
	}
	return nil
}

func logIndexErr(c *crud.Context, rec entity.Record, err error) {
	if err != nil {
		c.Logger().WithError(err).WithFields(logrus.Fields{
			"entity": rec.TypeName(),
			"id":     rec.GetID(),
		}).Warn("search index update failed")
	}
}
