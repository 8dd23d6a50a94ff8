package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
)

// AuthService owns registration, login sessions and the caller's profile.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Search SearchIndex
	Logger *logrus.Logger

	resolver *crud.Resolver
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// NewAuthService wires the service. rdb and search may be nil; without Redis
// tokens are not bound to a server-side session.
func NewAuthService(reg *crud.Registry, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, search SearchIndex, logger *logrus.Logger) (*AuthService, error) {
	res, err := crud.BuildResolver(reg, entity.TypeUser)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{Users: users, JWT: jwt, Redis: rdb, Search: search, Logger: logger, resolver: res}, nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := s.ensureAvailable(ctx, 0, in.Username, in.Email); err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.Save(ctx, &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     entity.RoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", in.Username, err)
	}
	s.index(ctx, u)
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// ensureAvailable checks that username and email are unused by anyone but selfID.
func (s *AuthService) ensureAvailable(ctx context.Context, selfID int64, username, email string) error {
	if username != "" {
		u, err := s.Users.GetByUsername(ctx, username)
		switch {
		case err == nil && u.ID != selfID:
			return ErrUsernameTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	if email != "" {
		u, err := s.Users.GetByEmail(ctx, email)
		switch {
		case err == nil && u.ID != selfID:
			return ErrEmailTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}
	return nil
}

// Authenticate checks a username (or email) and password without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*entity.User, error) {
	var (
		u   *entity.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.Users.GetByEmail(ctx, login)
	} else {
		u, err = s.Users.GetByUsername(ctx, login)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	s.rehash(ctx, u, password)
	return u, nil
}

// rehash upgrades a stored hash made with an outdated bcrypt cost. Failures
// are logged and otherwise ignored.
func (s *AuthService) rehash(ctx context.Context, u *entity.User, password string) {
	if !helpers.NeedsRehash(u.Password) {
		return
	}
	hash, err := helpers.HashPassword(password)
	if err == nil {
		err = s.Users.UpdatePassword(ctx, u.ID, hash)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("password rehash failed")
		return
	}
	u.Password = hash
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates access/refresh tokens under a fresh session id and
// records the session in Redis, replacing any previous one.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	sub := helpers.Subject{UserID: u.ID, Username: u.Username, Role: u.Role.String()}
	access, aexp, err := s.JWT.GenerateAccessToken(sub, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(sub, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	if s.Redis != nil {
		sess := helpers.Session{UserID: u.ID, Username: u.Username, Role: sub.Role, SID: sid}
		if err := helpers.SaveSession(ctx, s.Redis, sess); err != nil {
			s.Logger.WithError(err).WithField("key", helpers.SessionKey(u.ID)).Error("save session failed")
			return TokenPair{}, err
		}
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id. A refresh token from a replaced or deleted
// session is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		sess, ok, err := helpers.LoadSession(ctx, s.Redis, u.ID)
		if err != nil {
			return nil, TokenPair{}, err
		}
		if !ok || sess.SID != claims.SessionID {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if s.Redis == nil {
		return nil
	}
	return helpers.DeleteSession(ctx, s.Redis, userID)
}

// Profile returns the caller's own user record.
func (s *AuthService) Profile(c *crud.Context) (*entity.User, error) {
	if err := crud.Authorize(c, "profile", crud.IsAuthenticated(), nil); err != nil {
		return nil, err
	}
	p, _ := c.Principal()
	u, err := s.Users.FindByID(c.Std(), p.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfileInput carries optional changes; nil fields are left alone.
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	IsPrivate *bool
}

// UpdateProfile changes userID's profile. Only the user themself may do it.
func (s *AuthService) UpdateProfile(c *crud.Context, userID int64, in UpdateProfileInput) (*entity.User, error) {
	ctx := c.Std()
	u, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := crud.Authorize(c, "updateProfile", crud.IsOwner(), u); err != nil {
		return nil, err
	}
	var username, email string
	if in.Username != nil && !strings.EqualFold(*in.Username, u.Username) {
		username = *in.Username
	}
	if in.Email != nil && !strings.EqualFold(*in.Email, u.Email) {
		email = *in.Email
	}
	if err := s.ensureAvailable(ctx, u.ID, username, email); err != nil {
		return nil, err
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.IsPrivate != nil {
		u.IsPrivate = *in.IsPrivate
	}
	u, err = s.Users.Save(ctx, u)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		n, err := s.Redis.Exists(ctx, key).Result()
		switch {
		case err != nil:
			s.Logger.WithError(err).WithField("key", key).Warn("redis session lookup failed")
		case n > 0:
			if err := s.Redis.HSet(ctx, key, "username", u.Username).Err(); err != nil {
				s.Logger.WithError(err).WithField("key", key).Warn("redis session update failed")
			}
		}
	}
	s.index(ctx, u)
	return u, nil
}

// UpdatePassword replaces the caller's password after checking the current one.
func (s *AuthService) UpdatePassword(c *crud.Context, current, next string) error {
	u, err := s.Profile(c)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(c.Std(), u.ID, hash)
}

// SearchUsers finds users by username or email. Hits are re-read through the
// User resolver so callers only see users they may read.
func (s *AuthService) SearchUsers(c *crud.Context, q string, size int) ([]*entity.User, error) {
	if s.Search == nil {
		return []*entity.User{}, nil
	}
	ids, err := s.Search.SearchUsers(c.Std(), q, size)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		rec, err := s.resolver.GetOne(c, id, nil)
		if crud.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if u, ok := rec.(*entity.User); ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *AuthService) index(ctx context.Context, u *entity.User) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexUser(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}
