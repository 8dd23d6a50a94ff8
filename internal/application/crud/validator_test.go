package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
)

type ownerless struct{ id int64 }

func (o ownerless) GetID() int64     { return o.id }
func (o ownerless) TypeName() string { return "Ownerless" }

func TestBuiltinValidators(t *testing.T) {
	f := newFixture(t)
	alicePost := &entity.Post{ID: 7, AuthorID: f.alice.ID}

	tests := []struct {
		name  string
		v     Validator
		ctx   *Context
		scope entity.Record
		want  bool
	}{
		{"authenticated with principal", IsAuthenticated(), as(f.alice), nil, true},
		{"authenticated anonymous", IsAuthenticated(), as(nil), nil, false},
		{"admin as admin", IsAdmin(), as(f.admin), nil, true},
		{"admin as user", IsAdmin(), as(f.alice), nil, false},
		{"admin anonymous", IsAdmin(), as(nil), nil, false},
		{"role match", IsAuthorizedWithRole("user"), as(f.bob), nil, true},
		{"role mismatch", IsAuthorizedWithRole("moderator"), as(f.bob), nil, false},
		{"owner of top record", IsOwner(), as(f.alice), alicePost, true},
		{"not owner of top record", IsOwner(), as(f.bob), alicePost, false},
		{"owner without principal", IsOwner(), as(nil), alicePost, false},
		{"owner with empty chain", IsOwner(), as(f.alice), nil, false},
		{"owner of record without owner", IsOwner(), as(f.alice), ownerless{id: 1}, false},
		{"public", PublicAccess(), as(nil), nil, true},
		{"private", PrivateAccess(), as(f.admin), nil, false},
		{"zero validator denies", Validator{}, as(f.admin), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			run := func() error {
				ok, err := tt.v.Allow(tt.ctx, tt.scope)
				got = ok
				return err
			}
			if tt.scope != nil {
				require.NoError(t, tt.ctx.WithResolverScope(tt.scope, run))
			} else {
				require.NoError(t, run())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsOwnerUsesTopOfChain(t *testing.T) {
	f := newFixture(t)
	c := as(f.alice)
	outer := &entity.Post{ID: 1, AuthorID: f.alice.ID}
	inner := &entity.Post{ID: 2, AuthorID: f.bob.ID}

	err := c.WithResolverScope(outer, func() error {
		return c.WithResolverScope(inner, func() error {
			ok, err := IsOwner().Allow(c, nil)
			require.NoError(t, err)
			assert.False(t, ok)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	post := &entity.Post{ID: 3, AuthorID: f.alice.ID}

	require.NoError(t, Authorize(as(f.alice), "edit", IsOwner(), post))

	err := Authorize(as(f.bob), "edit", IsOwner(), post)
	var ue *UnauthorizedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, entity.TypePost, ue.Type)
	assert.Equal(t, Operation("edit"), ue.Operation)
	assert.Equal(t, "isOwner", ue.Validator)

	assert.Error(t, Authorize(as(nil), "follow", IsAuthenticated(), nil))
}
