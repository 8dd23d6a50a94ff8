package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/events"
	"github.com/oksasatya/go-social-crud/pkg/i18n"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrUserPrivate      = errors.New("user is private")
	ErrNoFollowRequest  = errors.New("no pending follow request")
	ErrAlreadyLiked     = errors.New("post already liked")
	ErrStreamClosed     = errors.New("event streaming is not configured")
)

// FollowStatus is the outcome of RequestToFollow.
type FollowStatus string

const (
	FollowRequested FollowStatus = "requested"
	FollowAccepted  FollowStatus = "following"
)

// SocialService covers the follow graph, likes, comments and messages.
type SocialService struct {
	Users         repository.UserRepository
	Likes         repository.LikeRepository
	Notifications *NotificationService
	Events        EventBus
	Search        SearchIndex
	Logger        *logrus.Logger

	posts    *crud.Resolver
	comments *crud.Resolver
	likes    *crud.Resolver
	messages *crud.Resolver
}

// NewSocialService wires the service. bus may be nil, in which case nothing
// is published and streams are unavailable.
func NewSocialService(reg *crud.Registry, repos Repositories, notifications *NotificationService, bus EventBus, search SearchIndex, logger *logrus.Logger) (*SocialService, error) {
	s := &SocialService{
		Users:         repos.Users,
		Likes:         repos.Likes,
		Notifications: notifications,
		Events:        bus,
		Search:        search,
		Logger:        logger,
	}
	if s.Logger == nil {
		s.Logger = logrus.StandardLogger()
	}
	for typ, dst := range map[string]**crud.Resolver{
		entity.TypePost:    &s.posts,
		entity.TypeComment: &s.comments,
		entity.TypeLike:    &s.likes,
		entity.TypeMessage: &s.messages,
	} {
		res, err := crud.BuildResolver(reg, typ)
		if err != nil {
			return nil, err
		}
		*dst = res
	}
	return s, nil
}

func (s *SocialService) caller(c *crud.Context, action string) (*crud.Principal, error) {
	if err := crud.Authorize(c, action, crud.IsAuthenticated(), nil); err != nil {
		return nil, err
	}
	p, _ := c.Principal()
	return p, nil
}

func (s *SocialService) target(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &crud.NotFoundError{Type: entity.TypeUser, ID: id}
	}
	return u, err
}

// RequestToFollow follows a public user directly. For a private user it
// records a follow request and notifies them instead.
func (s *SocialService) RequestToFollow(c *crud.Context, targetID int64) (FollowStatus, error) {
	me, err := s.caller(c, "requestToFollow")
	if err != nil {
		return "", err
	}
	if me.ID == targetID {
		return "", ErrSelfFollow
	}
	ctx := c.Std()
	target, err := s.target(ctx, targetID)
	if err != nil {
		return "", err
	}
	following, err := s.Users.IsFollowing(ctx, me.ID, target.ID)
	if err != nil {
		return "", err
	}
	if following {
		return "", ErrAlreadyFollowing
	}
	if !target.IsPrivate {
		if err := s.Users.Follow(ctx, me.ID, target.ID); err != nil {
			return "", err
		}
		return FollowAccepted, nil
	}
	pending, err := s.Users.HasFollowRequest(ctx, me.ID, target.ID)
	if err != nil {
		return "", err
	}
	if pending {
		return FollowRequested, nil
	}
	if err := s.Users.AddFollowRequest(ctx, me.ID, target.ID); err != nil {
		return "", err
	}
	s.notify(ctx, target.ID, fmt.Sprintf(i18n.MsgWantsToFollow, me.Username))
	return FollowRequested, nil
}

// Follow follows a public user. Private users must be asked first.
func (s *SocialService) Follow(c *crud.Context, targetID int64) error {
	me, err := s.caller(c, "follow")
	if err != nil {
		return err
	}
	if me.ID == targetID {
		return ErrSelfFollow
	}
	ctx := c.Std()
	target, err := s.target(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsPrivate {
		return ErrUserPrivate
	}
	following, err := s.Users.IsFollowing(ctx, me.ID, target.ID)
	if err != nil {
		return err
	}
	if following {
		return ErrAlreadyFollowing
	}
	return s.Users.Follow(ctx, me.ID, target.ID)
}

func (s *SocialService) Unfollow(c *crud.Context, targetID int64) error {
	me, err := s.caller(c, "unfollow")
	if err != nil {
		return err
	}
	return s.Users.Unfollow(c.Std(), me.ID, targetID)
}

// AcceptFollowRequest turns requesterID's pending request into a follow of the caller.
func (s *SocialService) AcceptFollowRequest(c *crud.Context, requesterID int64) error {
	me, err := s.caller(c, "acceptFollowRequest")
	if err != nil {
		return err
	}
	ctx := c.Std()
	if err := s.takeRequest(ctx, requesterID, me.ID); err != nil {
		return err
	}
	return s.Users.Follow(ctx, requesterID, me.ID)
}

func (s *SocialService) DeclineFollowRequest(c *crud.Context, requesterID int64) error {
	me, err := s.caller(c, "declineFollowRequest")
	if err != nil {
		return err
	}
	return s.takeRequest(c.Std(), requesterID, me.ID)
}

func (s *SocialService) takeRequest(ctx context.Context, requesterID, targetID int64) error {
	ok, err := s.Users.HasFollowRequest(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoFollowRequest
	}
	return s.Users.RemoveFollowRequest(ctx, requesterID, targetID)
}

// FollowRequests lists users waiting for the caller's approval.
func (s *SocialService) FollowRequests(c *crud.Context) ([]*entity.User, error) {
	me, err := s.caller(c, "followRequests")
	if err != nil {
		return nil, err
	}
	return s.Users.FollowRequests(c.Std(), me.ID)
}

// IsVisibleToUser reports whether viewerID (0 for anonymous) can see post.
func (s *SocialService) IsVisibleToUser(ctx context.Context, viewerID int64, post *entity.Post) (bool, error) {
	return isVisibleToUser(ctx, s.Users, viewerID, post)
}

// LikePost likes a post once per user.
func (s *SocialService) LikePost(c *crud.Context, postID int64) (*entity.Like, error) {
	me, err := s.caller(c, "likePost")
	if err != nil {
		return nil, err
	}
	_, err = s.Likes.FindByUserAndPost(c.Std(), me.ID, postID)
	switch {
	case err == nil:
		return nil, ErrAlreadyLiked
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	rec, err := s.likes.Create(c, map[string]any{"postId": postID})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrAlreadyLiked
	}
	if err != nil {
		return nil, err
	}
	return rec.(*entity.Like), nil
}

// AddComment comments on a post and publishes COMMENT_ADDED for the post.
func (s *SocialService) AddComment(c *crud.Context, postID int64, content string) (*entity.Comment, error) {
	me, err := s.caller(c, "addComment")
	if err != nil {
		return nil, err
	}
	post, err := s.visiblePost(c, postID)
	if err != nil {
		return nil, err
	}
	rec, err := s.comments.Create(c, map[string]any{"postId": postID, "content": content})
	if err != nil {
		return nil, err
	}
	comment := rec.(*entity.Comment)
	s.publish(c.Std(), events.TopicCommentAdded, postID, comment)
	if post.AuthorID != me.ID {
		s.notify(c.Std(), post.AuthorID, fmt.Sprintf(i18n.MsgNewComment, me.Username))
	}
	return comment, nil
}

// SendMessage sends a direct message and publishes NEW_MESSAGE for the receiver.
func (s *SocialService) SendMessage(c *crud.Context, receiverID int64, content string) (*entity.Message, error) {
	me, err := s.caller(c, "sendMessage")
	if err != nil {
		return nil, err
	}
	rec, err := s.messages.Create(c, map[string]any{"receiverId": receiverID, "content": content})
	if err != nil {
		return nil, err
	}
	msg := rec.(*entity.Message)
	s.publish(c.Std(), events.TopicNewMessage, receiverID, msg)
	s.notify(c.Std(), receiverID, fmt.Sprintf(i18n.MsgNewMessage, me.Username))
	return msg, nil
}

// CommentStream subscribes to new comments on a post the caller can read.
func (s *SocialService) CommentStream(c *crud.Context, postID int64) (<-chan events.Event, error) {
	if _, err := s.caller(c, "commentStream"); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(c, postID); err != nil {
		return nil, err
	}
	return s.subscribe(c.Std(), events.TopicCommentAdded, postID)
}

// MessageStream subscribes to messages sent to the caller.
func (s *SocialService) MessageStream(c *crud.Context) (<-chan events.Event, error) {
	me, err := s.caller(c, "messageStream")
	if err != nil {
		return nil, err
	}
	return s.subscribe(c.Std(), events.TopicNewMessage, me.ID)
}

func (s *SocialService) subscribe(ctx context.Context, topic string, key int64) (<-chan events.Event, error) {
	if s.Events == nil {
		return nil, ErrStreamClosed
	}
	return s.Events.Subscribe(ctx, topic, key)
}

// SearchPosts finds posts by content, keeping only those the caller can read.
func (s *SocialService) SearchPosts(c *crud.Context, q string, size int) ([]*entity.Post, error) {
	if s.Search == nil {
		return []*entity.Post{}, nil
	}
	ids, err := s.Search.SearchPosts(c.Std(), q, size)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Post, 0, len(ids))
	for _, id := range ids {
		post, err := s.visiblePost(c, id)
		if crud.IsNotFound(err) || crud.IsUnauthorized(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, nil
}

// visiblePost reads a post through the Post resolver, applying its read permission.
func (s *SocialService) visiblePost(c *crud.Context, postID int64) (*entity.Post, error) {
	rec, err := s.posts.GetOne(c, postID, nil)
	if err != nil {
		return nil, err
	}
	post, ok := rec.(*entity.Post)
	if !ok {
		return nil, &crud.NotFoundError{Type: entity.TypePost, ID: postID}
	}
	return post, nil
}

func (s *SocialService) publish(ctx context.Context, topic string, key int64, payload any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, topic, key, payload); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"topic": topic, "key": key}).Warn("publish event failed")
	}
}

func (s *SocialService) notify(ctx context.Context, userID int64, content string) {
	if s.Notifications == nil {
		return
	}
	if _, err := s.Notifications.Notify(ctx, userID, content); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("notify failed")
	}
}
