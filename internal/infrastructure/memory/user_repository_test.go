package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

func TestUserRepositorySaveRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	alice, err := r.Save(ctx, &entity.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, alice.Role)

	_, err = r.Save(ctx, &entity.User{Username: "ALICE", Email: "other@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = r.Save(ctx, &entity.User{Username: "other", Email: "Alice@Example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// re-saving a record does not clash with itself
	alice.IsPrivate = true
	_, err = r.Save(ctx, alice)
	require.NoError(t, err)
}

func TestUserRepositoryConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		saved   int
		clashes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Save(ctx, &entity.User{Username: "bob", Email: fmt.Sprintf("bob%d@example.com", i)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				saved++
			} else if assert.ErrorIs(t, err, repository.ErrConflict) {
				clashes++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, saved)
	assert.Equal(t, n-1, clashes)
	assert.Equal(t, 1, r.Len())
}
