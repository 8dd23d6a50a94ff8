package application

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.auth.Register(ctx, RegisterInput{Username: "dave", Email: "dave@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, e.index.users[u.ID])

	_, err = e.auth.Register(ctx, RegisterInput{Username: "DAVE", Email: "other@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = e.auth.Register(ctx, RegisterInput{Username: "eve", Email: "dave@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginStoresSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = e.auth.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, pair, err := e.auth.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, e.alice.ID, u.ID)

	claims, err := e.auth.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	sess, ok, err := helpers.LoadSession(ctx, e.rdb, e.alice.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, claims.SessionID, sess.SID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, "user", sess.Role)
}

func TestRefreshRotatesSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, first, err := e.auth.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	_, second, err := e.auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	old, err := e.auth.JWT.ParseRefreshToken(first.RefreshToken)
	require.NoError(t, err)
	fresh, err := e.auth.JWT.ParseRefreshToken(second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, old.SessionID, fresh.SessionID)

	// the first refresh token belongs to a replaced session
	_, _, err = e.auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.auth.Logout(ctx, e.alice.ID))
	_, _, err = e.auth.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = e.auth.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	e := newEnv(t)
	name, private := "alicia", true

	_, err := e.auth.UpdateProfile(as(e.bob), e.alice.ID, UpdateProfileInput{Username: &name})
	assert.True(t, crud.IsUnauthorized(err))

	taken := "bob"
	_, err = e.auth.UpdateProfile(as(e.alice), e.alice.ID, UpdateProfileInput{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	u, err := e.auth.UpdateProfile(as(e.alice), e.alice.ID, UpdateProfileInput{Username: &name, IsPrivate: &private})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)
	assert.True(t, u.IsPrivate)

	_, err = e.auth.UpdateProfile(as(e.alice), 999, UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfileSyncsSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, _, err := e.auth.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	name := "alicia"
	_, err = e.auth.UpdateProfile(as(e.alice), e.alice.ID, UpdateProfileInput{Username: &name})
	require.NoError(t, err)
	sess, ok, err := helpers.LoadSession(ctx, e.rdb, e.alice.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alicia", sess.Username)

	// an unreachable Redis is logged and does not fail the update
	logger, hook := test.NewNullLogger()
	broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = broken.Close() })
	e.auth.Logger, e.auth.Redis = logger, broken

	name = "ally"
	u, err := e.auth.UpdateProfile(as(e.alice), e.alice.ID, UpdateProfileInput{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "ally", u.Username)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "redis session lookup failed", entry.Message)
	assert.Equal(t, helpers.SessionKey(e.alice.ID), entry.Data["key"])
}

func TestUpdatePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.auth.UpdatePassword(as(e.alice), "nope", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.auth.UpdatePassword(as(e.alice), "password123", "new-password"))
	_, _, err = e.auth.Login(ctx, "alice", "new-password")
	assert.NoError(t, err)

	err = e.auth.UpdatePassword(as(nil), "password123", "x")
	assert.True(t, crud.IsUnauthorized(err))
}

func TestSearchUsersFiltersUnreadable(t *testing.T) {
	e := newEnv(t)
	e.index.userHit = []int64{e.bob.ID, 999, e.carol.ID}

	got, err := e.auth.SearchUsers(as(e.alice), "o", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Username)
	assert.Equal(t, "carol", got[1].Username)

	// anonymous callers cannot read users; the return-null strategy drops them
	got, err = e.auth.SearchUsers(as(nil), "o", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
