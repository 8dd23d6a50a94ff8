package application

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/events"
)

// Repositories groups the stores behind every registered entity type.
type Repositories struct {
	Users         repository.UserRepository
	Posts         repository.PostRepository
	Comments      repository.CommentRepository
	Likes         repository.LikeRepository
	Notifications repository.NotificationRepository
	Messages      repository.MessageRepository
}

// SearchIndex is implemented by search.Indexer.
type SearchIndex interface {
	IndexUser(ctx context.Context, u *entity.User) error
	IndexPost(ctx context.Context, p *entity.Post) error
	DeleteUser(ctx context.Context, id int64) error
	DeletePost(ctx context.Context, id int64) error
	SearchUsers(ctx context.Context, q string, size int) ([]int64, error)
	SearchPosts(ctx context.Context, q string, size int) ([]int64, error)
}

// EventBus is implemented by events.Broker.
type EventBus interface {
	Publish(ctx context.Context, topic string, key int64, payload any) error
	Subscribe(ctx context.Context, topic string, key int64) (<-chan events.Event, error)
}

// JobPublisher puts background jobs on a queue. Implemented by helpers.RabbitQueue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
