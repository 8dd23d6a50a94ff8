package postgres

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const commentColumns = `id, content, author_id, post_id, created_at`

type CommentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) *CommentRepository {
	return &CommentRepository{db: db}
}

func scanComment(s scanner) (*entity.Comment, error) {
	c := &entity.Comment{}
	if err := s.Scan(&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) FindAll(ctx context.Context) ([]*entity.Comment, error) {
	return queryAll(ctx, r.db, scanComment, `SELECT `+commentColumns+` FROM comments ORDER BY id`)
}

func (r *CommentRepository) FindByID(ctx context.Context, id int64) (*entity.Comment, error) {
	return queryOne(ctx, r.db, scanComment, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
}

func (r *CommentRepository) FindByPost(ctx context.Context, postID int64) ([]*entity.Comment, error) {
	return queryAll(ctx, r.db, scanComment, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY id`, postID)
}

func (r *CommentRepository) Create(_ context.Context, fields map[string]any) (*entity.Comment, error) {
	c := &entity.Comment{}
	if err := helpers.DecodeFields(fields, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) Save(ctx context.Context, c *entity.Comment) (*entity.Comment, error) {
	if c.ID == 0 {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO comments (content, author_id, post_id) VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, c.Content, c.AuthorID, c.PostID)
		if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		return c, nil
	}
	if err := execOne(ctx, r.db, `UPDATE comments SET content = $1 WHERE id = $2`, c.Content, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) Remove(ctx context.Context, c *entity.Comment) error {
	return execOne(ctx, r.db, `DELETE FROM comments WHERE id = $1`, c.ID)
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
