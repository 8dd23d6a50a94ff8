package application

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/config"
	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/events"
	"github.com/oksasatya/go-social-crud/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

type fakeIndex struct {
	mu      sync.Mutex
	users   map[int64]bool
	posts   map[int64]bool
	userHit []int64
	postHit []int64
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{users: map[int64]bool{}, posts: map[int64]bool{}}
}

func (f *fakeIndex) IndexUser(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = true
	return nil
}

func (f *fakeIndex) IndexPost(_ context.Context, p *entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[p.ID] = true
	return nil
}

func (f *fakeIndex) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeIndex) DeletePost(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.posts, id)
	return nil
}

func (f *fakeIndex) SearchUsers(context.Context, string, int) ([]int64, error) { return f.userHit, nil }
func (f *fakeIndex) SearchPosts(context.Context, string, int) ([]int64, error) { return f.postHit, nil }

type fakeJobs struct {
	mu   sync.Mutex
	jobs []any
}

func (f *fakeJobs) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, body)
	return nil
}

func (f *fakeJobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

type env struct {
	repos  Repositories
	users  *memory.UserRepository
	reg    *crud.Registry
	rdb    *redis.Client
	index  *fakeIndex
	jobs   *fakeJobs
	broker *events.Broker

	auth   *AuthService
	social *SocialService
	notes  *NotificationService

	alice *entity.User // public
	bob   *entity.User // public
	carol *entity.User // private
	admin *entity.User
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := &env{users: memory.NewUserRepository(), rdb: rdb, index: newFakeIndex(), jobs: &fakeJobs{}}
	e.repos = Repositories{
		Users:         e.users,
		Posts:         memory.NewPostRepository(),
		Comments:      memory.NewCommentRepository(),
		Likes:         memory.NewLikeRepository(),
		Notifications: memory.NewNotificationRepository(),
		Messages:      memory.NewMessageRepository(),
	}
	logger := quietLogger()
	var err error
	e.reg, err = BuildRegistry(e.repos, e.index, logger)
	require.NoError(t, err)
	e.broker = events.NewBroker(rdb, logger)

	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	e.auth, err = NewAuthService(e.reg, e.users, jwt, rdb, e.index, logger)
	require.NoError(t, err)
	cfg := &config.Config{AppName: "social", CompanyName: "Social Inc"}
	e.notes, err = NewNotificationService(e.reg, e.repos, e.jobs, cfg, logger)
	require.NoError(t, err)
	e.social, err = NewSocialService(e.reg, e.repos, e.notes, e.broker, e.index, logger)
	require.NoError(t, err)

	e.alice = e.user(t, "alice", false, entity.RoleUser)
	e.bob = e.user(t, "bob", false, entity.RoleUser)
	e.carol = e.user(t, "carol", true, entity.RoleUser)
	e.admin = e.user(t, "root", false, entity.RoleAdmin)
	return e
}

func (e *env) user(t *testing.T, name string, private bool, role entity.Role) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword("password123")
	require.NoError(t, err)
	u, err := e.users.Save(context.Background(), &entity.User{
		Username:  name,
		Email:     name + "@example.com",
		Password:  hash,
		Role:      role,
		IsPrivate: private,
	})
	require.NoError(t, err)
	return u
}

func (e *env) post(t *testing.T, author *entity.User, content string) *entity.Post {
	t.Helper()
	p, err := e.repos.Posts.Save(context.Background(), &entity.Post{AuthorID: author.ID, Content: content})
	require.NoError(t, err)
	return p
}

func as(u *entity.User) *crud.Context {
	return withContext(context.Background(), u)
}

func withContext(ctx context.Context, u *entity.User) *crud.Context {
	log := logrus.NewEntry(quietLogger())
	if u == nil {
		return crud.NewContext(ctx, nil, log)
	}
	p := &crud.Principal{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role.String()}
	return crud.NewContext(ctx, p, log)
}
