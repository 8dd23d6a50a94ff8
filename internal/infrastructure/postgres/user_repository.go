package postgres

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const userColumns = `id, username, email, password_hash, role, is_private, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(s scanner) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &role, &u.IsPrivate, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	return queryAll(ctx, r.db, scanUser, `SELECT `+userColumns+` FROM users ORDER BY id`)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return queryOne(ctx, r.db, scanUser, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return queryOne(ctx, r.db, scanUser, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return queryOne(ctx, r.db, scanUser, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) Create(_ context.Context, fields map[string]any) (*entity.User, error) {
	u := &entity.User{}
	if err := helpers.DecodeFields(fields, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if u.ID == 0 {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO users (username, email, password_hash, role, is_private)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, u.Username, u.Email, u.Password, u.Role.String(), u.IsPrivate)
		if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		return u, nil
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, role = $3, is_private = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, u.Username, u.Email, u.Role.String(), u.IsPrivate, u.ID)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) Remove(ctx context.Context, u *entity.User) error {
	return execOne(ctx, r.db, `DELETE FROM users WHERE id = $1`, u.ID)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	return execOne(ctx, r.db, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID)
}

func (r *UserRepository) Followers(ctx context.Context, userID int64) ([]*entity.User, error) {
	return queryAll(ctx, r.db, scanUser, `
		SELECT `+prefixed("u", userColumns)+`
		FROM follows f JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY u.id
	`, userID)
}

func (r *UserRepository) Following(ctx context.Context, userID int64) ([]*entity.User, error) {
	return queryAll(ctx, r.db, scanUser, `
		SELECT `+prefixed("u", userColumns)+`
		FROM follows f JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY u.id
	`, userID)
}

func (r *UserRepository) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`, followerID, followeeID)
}

func (r *UserRepository) Follow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, followerID, followeeID)
	return mapErr(err)
}

func (r *UserRepository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return err
}

func (r *UserRepository) FollowRequests(ctx context.Context, targetID int64) ([]*entity.User, error) {
	return queryAll(ctx, r.db, scanUser, `
		SELECT `+prefixed("u", userColumns)+`
		FROM follow_requests fr JOIN users u ON u.id = fr.requester_id
		WHERE fr.target_id = $1
		ORDER BY fr.created_at, u.id
	`, targetID)
}

func (r *UserRepository) HasFollowRequest(ctx context.Context, requesterID, targetID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM follow_requests WHERE requester_id = $1 AND target_id = $2)`, requesterID, targetID)
}

func (r *UserRepository) AddFollowRequest(ctx context.Context, requesterID, targetID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follow_requests (requester_id, target_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, requesterID, targetID)
	return mapErr(err)
}

func (r *UserRepository) RemoveFollowRequest(ctx context.Context, requesterID, targetID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM follow_requests WHERE requester_id = $1 AND target_id = $2`, requesterID, targetID)
	return err
}

func (r *UserRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
