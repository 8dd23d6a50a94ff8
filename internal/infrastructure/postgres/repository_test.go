package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, DBTX) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return mock, db
}

var userRowColumns = []string{"id", "username", "email", "password_hash", "role", "is_private", "created_at", "updated_at"}

func TestUserRepositoryFindByID(t *testing.T) {
	mock, db := newMock(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(7, "alice", "alice@example.com", "hash", "admin", true, now, now))

	u, err := NewUserRepository(db).FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.True(t, u.IsPrivate)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := NewUserRepository(db).FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepositoryInsertConflict(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hash", "user", false).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := NewUserRepository(db).Save(context.Background(), &entity.User{Username: "alice", Email: "alice@example.com", Password: "hash"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestUserRepositoryInsertAndUpdate(t *testing.T) {
	mock, db := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("bob", "bob@example.com", "hash", "user", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
	mock.ExpectQuery(`UPDATE users SET username = \$1, email = \$2, role = \$3, is_private = \$4`).
		WithArgs("bobby", "bob@example.com", "user", true, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	repo := NewUserRepository(db)
	u, err := repo.Save(context.Background(), &entity.User{Username: "bob", Email: "bob@example.com", Password: "hash", IsPrivate: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, entity.RoleUser, u.Role)

	u.Username = "bobby"
	_, err = repo.Save(context.Background(), u)
	require.NoError(t, err)
}

func TestUserRepositoryFollowGraph(t *testing.T) {
	mock, db := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO follows`).WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM follows`).WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM follows f JOIN users u ON u.id = f.follower_id`).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "alice", "a@example.com", "h", "user", false, now, now))
	mock.ExpectExec(`DELETE FROM follows`).WithArgs(int64(1), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Follow(ctx, 1, 2))
	ok, err := repo.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	followers, err := repo.Followers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)
	require.NoError(t, repo.Unfollow(ctx, 1, 2))
}

func TestPostRepositoryFindByAuthor(t *testing.T) {
	mock, db := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT (.+) FROM posts WHERE author_id = \$1 ORDER BY id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "author_id", "created_at", "updated_at"}).
			AddRow(1, "first", 1, now, now).
			AddRow(4, "second", 1, now, now))

	posts, err := NewPostRepository(db).FindByAuthor(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[1].Content)
}

func TestPostRepositoryUpdateMissing(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(`UPDATE posts SET content = \$1`).
		WithArgs("x", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	_, err := NewPostRepository(db).Save(context.Background(), &entity.Post{ID: 9, Content: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoveMissingRow(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).WithArgs(int64(6)).WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCommentRepository(db)
	assert.ErrorIs(t, repo.Remove(context.Background(), &entity.Comment{ID: 5}), repository.ErrNotFound)
	assert.NoError(t, repo.Remove(context.Background(), &entity.Comment{ID: 6}))
}

func TestLikeRepositoryDuplicate(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(`INSERT INTO likes`).WithArgs(int64(1), int64(2)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := NewLikeRepository(db).Save(context.Background(), &entity.Like{UserID: 1, PostID: 2})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestMessageRepositoryConversation(t *testing.T) {
	mock, db := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM messages WHERE \(sender_id = \$1 AND receiver_id = \$2\)`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "sender_id", "receiver_id", "created_at"}).
			AddRow(1, "hi", 1, 2, now).
			AddRow(2, "hey", 2, 1, now))

	msgs, err := NewMessageRepository(db).FindConversation(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].Involves(1))
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectExec(`UPDATE notifications SET content = \$1, read = \$2 WHERE id = \$3`).
		WithArgs("hello", true, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := NewNotificationRepository(db).Save(context.Background(), &entity.Notification{ID: 4, Content: "hello", Read: true})
	require.NoError(t, err)
	assert.True(t, n.Read)
}

func TestQueryErrorsPassThrough(t *testing.T) {
	mock, db := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT (.+) FROM notifications`).WillReturnError(boom)

	_, err := NewNotificationRepository(db).FindAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "u.id, u.username", prefixed("u", "id, username"))
}
