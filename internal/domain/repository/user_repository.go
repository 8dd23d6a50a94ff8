package repository

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

// UserRepository adds lookups and the follow graph on top of Repository.
type UserRepository interface {
	Repository[*entity.User]

	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error

	Followers(ctx context.Context, userID int64) ([]*entity.User, error)
	Following(ctx context.Context, userID int64) ([]*entity.User, error)
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error

	FollowRequests(ctx context.Context, targetID int64) ([]*entity.User, error)
	HasFollowRequest(ctx context.Context, requesterID, targetID int64) (bool, error)
	AddFollowRequest(ctx context.Context, requesterID, targetID int64) error
	RemoveFollowRequest(ctx context.Context, requesterID, targetID int64) error
}
