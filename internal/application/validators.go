package application

import (
	"context"
	"errors"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

// CanViewPost allows reading a post whose author is public, is the viewer,
// or is followed by the viewer.
func CanViewPost(users repository.UserRepository) crud.Validator {
	return crud.Validator{Name: "canViewPost", Check: func(c *crud.Context, target entity.Record) (bool, error) {
		post, ok := postOf(c, target)
		if !ok {
			return false, nil
		}
		var viewerID int64
		if p, ok := c.Principal(); ok {
			viewerID = p.ID
		}
		return isVisibleToUser(c.Std(), users, viewerID, post)
	}}
}

// CanViewParentPost allows reading a comment or like when CanViewPost would
// allow reading the post it belongs to.
func CanViewParentPost(repos Repositories) crud.Validator {
	return crud.Validator{Name: "canViewParentPost", Check: func(c *crud.Context, target entity.Record) (bool, error) {
		if target == nil {
			cur, ok := c.Current()
			if !ok {
				return false, nil
			}
			target = cur
		}
		var postID int64
		switch t := target.(type) {
		case *entity.Comment:
			postID = t.PostID
		case *entity.Like:
			postID = t.PostID
		default:
			return false, nil
		}
		post, found, err := loadOne[*entity.Post](c.Std(), repos.Posts, postID)
		if err != nil || !found {
			return false, err
		}
		var viewerID int64
		if p, ok := c.Principal(); ok {
			viewerID = p.ID
		}
		return isVisibleToUser(c.Std(), repos.Users, viewerID, post)
	}}
}

// IsParticipant allows the sender and the receiver of a message.
func IsParticipant() crud.Validator {
	return crud.Validator{Name: "isParticipant", Check: func(c *crud.Context, target entity.Record) (bool, error) {
		p, ok := c.Principal()
		if !ok {
			return false, nil
		}
		if target == nil {
			if target, ok = c.Current(); !ok {
				return false, nil
			}
		}
		m, ok := target.(*entity.Message)
		return ok && m.Involves(p.ID), nil
	}}
}

func postOf(c *crud.Context, target entity.Record) (*entity.Post, bool) {
	if target == nil {
		cur, ok := c.Current()
		if !ok {
			return nil, false
		}
		target = cur
	}
	p, ok := target.(*entity.Post)
	return p, ok
}

// isVisibleToUser reports whether viewerID (0 for anonymous) may see post.
func isVisibleToUser(ctx context.Context, users repository.UserRepository, viewerID int64, post *entity.Post) (bool, error) {
	if viewerID != 0 && viewerID == post.AuthorID {
		return true, nil
	}
	author, err := users.FindByID(ctx, post.AuthorID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !author.IsPrivate {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	return users.IsFollowing(ctx, viewerID, author.ID)
}
