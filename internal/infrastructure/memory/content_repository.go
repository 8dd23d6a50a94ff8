package memory

import (
	"context"
	"slices"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

type PostRepository struct {
	*Store[entity.Post, *entity.Post]
}

func NewPostRepository() *PostRepository {
	return &PostRepository{Store: NewStore[entity.Post]()}
}

func (r *PostRepository) FindByAuthor(_ context.Context, authorID int64) ([]*entity.Post, error) {
	return r.Where(func(p *entity.Post) bool { return p.AuthorID == authorID }), nil
}

type CommentRepository struct {
	*Store[entity.Comment, *entity.Comment]
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{Store: NewStore[entity.Comment]()}
}

func (r *CommentRepository) FindByPost(_ context.Context, postID int64) ([]*entity.Comment, error) {
	return r.Where(func(c *entity.Comment) bool { return c.PostID == postID }), nil
}

type LikeRepository struct {
	*Store[entity.Like, *entity.Like]
}

func NewLikeRepository() *LikeRepository {
	return &LikeRepository{Store: NewStore[entity.Like]()}
}

// Save allows one like per user and post.
func (r *LikeRepository) Save(ctx context.Context, l *entity.Like) (*entity.Like, error) {
	if l.ID == 0 {
		if _, err := r.FindByUserAndPost(ctx, l.UserID, l.PostID); err == nil {
			return nil, repository.ErrConflict
		}
	}
	return r.Store.Save(ctx, l)
}

func (r *LikeRepository) FindByPost(_ context.Context, postID int64) ([]*entity.Like, error) {
	return r.Where(func(l *entity.Like) bool { return l.PostID == postID }), nil
}

func (r *LikeRepository) FindByUserAndPost(_ context.Context, userID, postID int64) (*entity.Like, error) {
	return r.First(func(l *entity.Like) bool { return l.UserID == userID && l.PostID == postID })
}

type NotificationRepository struct {
	*Store[entity.Notification, *entity.Notification]
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{Store: NewStore[entity.Notification]()}
}

// FindByUser returns the notifications of userID, newest first.
func (r *NotificationRepository) FindByUser(_ context.Context, userID int64) ([]*entity.Notification, error) {
	rows := r.Where(func(n *entity.Notification) bool { return n.UserID == userID })
	slices.Reverse(rows)
	return rows, nil
}

type MessageRepository struct {
	*Store[entity.Message, *entity.Message]
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{Store: NewStore[entity.Message]()}
}

func (r *MessageRepository) FindConversation(_ context.Context, a, b int64) ([]*entity.Message, error) {
	return r.Where(func(m *entity.Message) bool { return m.Involves(a) && m.Involves(b) }), nil
}

var (
	_ repository.PostRepository         = (*PostRepository)(nil)
	_ repository.CommentRepository      = (*CommentRepository)(nil)
	_ repository.LikeRepository         = (*LikeRepository)(nil)
	_ repository.NotificationRepository = (*NotificationRepository)(nil)
	_ repository.MessageRepository      = (*MessageRepository)(nil)
)
