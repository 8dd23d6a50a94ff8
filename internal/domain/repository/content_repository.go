package repository

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

type PostRepository interface {
	Repository[*entity.Post]
	FindByAuthor(ctx context.Context, authorID int64) ([]*entity.Post, error)
}

type CommentRepository interface {
	Repository[*entity.Comment]
	FindByPost(ctx context.Context, postID int64) ([]*entity.Comment, error)
}

type LikeRepository interface {
	Repository[*entity.Like]
	FindByPost(ctx context.Context, postID int64) ([]*entity.Like, error)
	// FindByUserAndPost returns ErrNotFound when the user has not liked the post.
	FindByUserAndPost(ctx context.Context, userID, postID int64) (*entity.Like, error)
}

type NotificationRepository interface {
	Repository[*entity.Notification]
	FindByUser(ctx context.Context, userID int64) ([]*entity.Notification, error)
}

type MessageRepository interface {
	Repository[*entity.Message]
	// FindConversation returns messages exchanged between a and b, oldest first.
	FindConversation(ctx context.Context, a, b int64) ([]*entity.Message, error)
}
