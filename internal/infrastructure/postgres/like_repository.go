package postgres

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const likeColumns = `id, user_id, post_id, created_at`

type LikeRepository struct {
	db DBTX
}

func NewLikeRepository(db DBTX) *LikeRepository {
	return &LikeRepository{db: db}
}

func scanLike(s scanner) (*entity.Like, error) {
	l := &entity.Like{}
	if err := s.Scan(&l.ID, &l.UserID, &l.PostID, &l.CreatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LikeRepository) FindAll(ctx context.Context) ([]*entity.Like, error) {
	return queryAll(ctx, r.db, scanLike, `SELECT `+likeColumns+` FROM likes ORDER BY id`)
}

func (r *LikeRepository) FindByID(ctx context.Context, id int64) (*entity.Like, error) {
	return queryOne(ctx, r.db, scanLike, `SELECT `+likeColumns+` FROM likes WHERE id = $1`, id)
}

func (r *LikeRepository) FindByPost(ctx context.Context, postID int64) ([]*entity.Like, error) {
	return queryAll(ctx, r.db, scanLike, `SELECT `+likeColumns+` FROM likes WHERE post_id = $1 ORDER BY id`, postID)
}

func (r *LikeRepository) FindByUserAndPost(ctx context.Context, userID, postID int64) (*entity.Like, error) {
	return queryOne(ctx, r.db, scanLike, `SELECT `+likeColumns+` FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
}

func (r *LikeRepository) Create(_ context.Context, fields map[string]any) (*entity.Like, error) {
	l := &entity.Like{}
	if err := helpers.DecodeFields(fields, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Save only inserts; likes are immutable.
func (r *LikeRepository) Save(ctx context.Context, l *entity.Like) (*entity.Like, error) {
	if l.ID != 0 {
		if _, err := r.FindByID(ctx, l.ID); err != nil {
			return nil, err
		}
		return l, nil
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO likes (user_id, post_id) VALUES ($1, $2)
		RETURNING id, created_at
	`, l.UserID, l.PostID)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

func (r *LikeRepository) Remove(ctx context.Context, l *entity.Like) error {
	return execOne(ctx, r.db, `DELETE FROM likes WHERE id = $1`, l.ID)
}

var _ repository.LikeRepository = (*LikeRepository)(nil)
