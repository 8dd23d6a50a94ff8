package crud

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

func postOptions(read, update Validator) Options {
	opts := DefaultOptions()
	opts.Read = read
	opts.Update = update
	opts.Create = IsAuthenticated()
	opts.Delete = IsOwner()
	return opts
}

func TestBuildResolverOmitsDisabledOperations(t *testing.T) {
	f := newFixture(t)
	postOpts := DefaultOptions()
	postOpts.EnableRead = false
	postOpts.EnableDelete = false
	reg := f.registry(t, DefaultOptions(), postOpts)

	res := f.resolver(t, reg, entity.TypePost)
	assert.Nil(t, res.GetAll)
	assert.Nil(t, res.GetOne)
	assert.Nil(t, res.Delete)
	assert.NotNil(t, res.Create)
	assert.NotNil(t, res.Update)
	assert.Equal(t, "getAllPosts", res.Names.GetAll)
	assert.Equal(t, "deletePost", res.Names.Delete)
}

func TestBuildResolverUnregistered(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	_, err := BuildResolver(reg, "Group")
	assert.True(t, IsConfiguration(err))
}

func TestRegisterRequiresStoreAndShape(t *testing.T) {
	f := newFixture(t)
	reg := NewRegistry(map[string]Store{entity.TypeUser: Adapt[*entity.User](f.users)}, map[string]Shape{}, quietLogger())

	err := reg.Register(entity.TypeUser, DefaultOptions())
	assert.True(t, IsConfiguration(err))

	err = reg.Register(entity.TypePost, DefaultOptions())
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "no store declared", ce.Reason)
}

func TestRegisterFillsZeroValidatorsWithPublicAccess(t *testing.T) {
	f := newFixture(t)
	post := f.post(t, f.alice, "hello")
	reg := f.registry(t, DefaultOptions(), Options{EnableRead: true, Update: IsOwner()})

	opts, err := reg.PermissionsFor(entity.TypePost)
	require.NoError(t, err)
	assert.Equal(t, "publicAccess", opts.Read.Name)
	assert.Equal(t, "publicAccess", opts.Create.Name)
	assert.Equal(t, "isOwner", opts.Update.Name)
	assert.Equal(t, StrategyThrow, opts.ErrorStrategy)

	res := f.resolver(t, reg, entity.TypePost)
	got, err := res.GetOne(as(nil), post.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.GetID())
	assert.Nil(t, res.Create)
}

func TestComposeRejectsDanglingRelation(t *testing.T) {
	f := newFixture(t)
	_, err := Compose(
		map[string]Store{entity.TypePost: Adapt[*entity.Post](f.posts)},
		f.shapes(),
		map[string]Options{entity.TypePost: DefaultOptions()},
		quietLogger(),
	)
	assert.True(t, IsConfiguration(err))
}

func TestGetAllFiltersRejectedRecords(t *testing.T) {
	f := newFixture(t)
	p1 := f.post(t, f.alice, "hello")
	p2 := f.post(t, f.bob, "private: bob only")
	p3 := f.post(t, f.alice, "world")

	notPrivate := Validator{Name: "notPrivate", Check: func(c *Context, target entity.Record) (bool, error) {
		p := target.(*entity.Post)
		if !strings.HasPrefix(p.Content, "private") {
			return true, nil
		}
		return IsOwner().Allow(c, target)
	}}
	reg := f.registry(t, DefaultOptions(), postOptions(notPrivate, IsOwner()))
	res := f.resolver(t, reg, entity.TypePost)

	c := as(f.alice)
	all, err := res.GetAll(c, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p1.ID, all[0].GetID())
	assert.Equal(t, p3.ID, all[1].GetID())
	assert.Equal(t, 0, c.Depth())

	_, err = res.GetOne(c, p2.ID, nil)
	var ue *UnauthorizedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, OpRead, ue.Operation)

	got, err := res.GetOne(as(f.bob), p2.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, p2.ID, got.GetID())
}

func TestGetOneMissing(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	res := f.resolver(t, reg, entity.TypePost)

	_, err := res.GetOne(as(f.alice), 404, nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(404), nf.ID)
	assert.Equal(t, entity.TypePost, nf.Type)
}

func TestUpdateByNonOwnerIsRejected(t *testing.T) {
	f := newFixture(t)
	owner := &spy{v: IsOwner()}
	reg := f.registry(t, DefaultOptions(), postOptions(PublicAccess(), owner.validator()))
	res := f.resolver(t, reg, entity.TypePost)

	created, err := res.Create(as(f.alice), map[string]any{"content": "original"})
	require.NoError(t, err)
	post := created.(*entity.Post)
	assert.Equal(t, f.alice.ID, post.AuthorID)

	c := as(f.bob)
	_, err = res.Update(c, post.ID, map[string]any{"content": "x"})
	var ue *UnauthorizedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, OpUpdate, ue.Operation)
	assert.Equal(t, "isOwner", ue.Validator)

	require.Equal(t, 1, owner.calls)
	assert.Equal(t, []int64{post.ID}, owner.chains[0])
	assert.Equal(t, 0, c.Depth())

	stored, err := f.posts.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Content)
}

func TestUpdateByOwnerMergesUpdatableFields(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), postOptions(PublicAccess(), IsOwner()))
	res := f.resolver(t, reg, entity.TypePost)
	post := f.post(t, f.alice, "draft")

	c := as(f.alice)
	updated, err := res.Update(c, post.ID, map[string]any{"content": "final", "authorId": f.bob.ID, "id": 99})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Depth())

	got := updated.(*entity.Post)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "final", got.Content)
	assert.Equal(t, f.alice.ID, got.AuthorID)
}

func TestUpdateIgnoresCreateOnlyFields(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), DefaultOptions())
	res := f.resolver(t, reg, entity.TypeUser)

	created, err := res.Create(as(nil), map[string]any{"username": "carol", "email": "carol@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "carol", created.(*entity.User).Username)

	updated, err := res.Update(as(nil), created.GetID(), map[string]any{
		"username": "mallory", "email": "not-an-email", "isPrivate": true,
	})
	require.NoError(t, err)
	got := updated.(*entity.User)
	assert.Equal(t, "carol", got.Username)
	assert.Equal(t, "carol@example.com", got.Email)
	assert.True(t, got.IsPrivate)

	stored, err := f.users.FindByID(context.Background(), created.GetID())
	require.NoError(t, err)
	assert.Equal(t, "carol", stored.Username)
	assert.True(t, stored.IsPrivate)
}

func TestUpdateMissingFailsBeforeValidation(t *testing.T) {
	f := newFixture(t)
	update := &spy{v: PublicAccess()}
	reg := f.registry(t, DefaultOptions(), postOptions(PublicAccess(), update.validator()))
	res := f.resolver(t, reg, entity.TypePost)

	c := as(f.alice)
	_, err := res.Update(c, 12345, map[string]any{"content": "x"})
	assert.True(t, IsNotFound(err))
	assert.Zero(t, update.calls)
	assert.Equal(t, 0, c.Depth())
}

func TestDeleteTwiceIsNotFound(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), postOptions(PublicAccess(), IsOwner()))
	res := f.resolver(t, reg, entity.TypePost)
	post := f.post(t, f.alice, "bye")

	c := as(f.alice)
	ok, err := res.Delete(c, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = res.Delete(c, post.ID)
	assert.True(t, IsNotFound(err))
	assert.False(t, ok)
}

func TestDeleteByNonOwner(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), postOptions(PublicAccess(), IsOwner()))
	res := f.resolver(t, reg, entity.TypePost)
	post := f.post(t, f.alice, "keep")

	ok, err := res.Delete(as(f.bob), post.ID)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, ok)
	assert.Equal(t, 1, f.posts.Len())
}

func TestCreateRequiresValidator(t *testing.T) {
	f := newFixture(t)
	reg := f.registry(t, DefaultOptions(), postOptions(PublicAccess(), IsOwner()))
	res := f.resolver(t, reg, entity.TypePost)

	_, err := res.Create(as(nil), map[string]any{"content": "anon"})
	assert.True(t, IsUnauthorized(err))
	assert.Zero(t, f.posts.Len())
}

func TestErrorStrategies(t *testing.T) {
	f := newFixture(t)
	post := f.post(t, f.alice, "secret")

	t.Run("return-null", func(t *testing.T) {
		opts := postOptions(PrivateAccess(), PrivateAccess())
		opts.ErrorStrategy = StrategyReturnNull
		res := f.resolver(t, f.registry(t, DefaultOptions(), opts), entity.TypePost)

		got, err := res.GetOne(as(f.bob), post.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = res.Update(as(f.bob), post.ID, map[string]any{"content": "changed"})
		require.NoError(t, err)
		assert.Nil(t, got)

		stored, err := f.posts.FindByID(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "secret", stored.Content)
	})

	t.Run("throw obscured", func(t *testing.T) {
		opts := postOptions(PrivateAccess(), PrivateAccess())
		opts.ObscureErrors = true
		res := f.resolver(t, f.registry(t, DefaultOptions(), opts), entity.TypePost)

		_, err := res.GetOne(as(f.bob), post.ID, nil)
		assert.ErrorIs(t, err, ErrObscured)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("ignore", func(t *testing.T) {
		opts := postOptions(PrivateAccess(), PrivateAccess())
		opts.ErrorStrategy = StrategyIgnore
		res := f.resolver(t, f.registry(t, DefaultOptions(), opts), entity.TypePost)

		got, err := res.GetOne(as(f.bob), post.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.GetID())

		all, err := res.GetAll(as(nil), nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

type countingObserver struct{ allowed, denied int }

func (o *countingObserver) ObserveDecision(_, _ string, allowed bool) {
	if allowed {
		o.allowed++
		return
	}
	o.denied++
}

func TestObserverSeesDecisions(t *testing.T) {
	f := newFixture(t)
	f.post(t, f.alice, "a")
	f.post(t, f.bob, "b")
	reg := f.registry(t, DefaultOptions(), postOptions(IsOwner(), IsOwner()))
	obs := &countingObserver{}
	reg.SetObserver(obs)

	res := f.resolver(t, reg, entity.TypePost)
	_, err := res.GetAll(as(f.alice), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, obs.allowed)
	assert.Equal(t, 1, obs.denied)
}
