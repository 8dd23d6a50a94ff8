package postgres

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const postColumns = `id, content, author_id, created_at, updated_at`

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(s scanner) (*entity.Post, error) {
	p := &entity.Post{}
	if err := s.Scan(&p.ID, &p.Content, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) FindAll(ctx context.Context) ([]*entity.Post, error) {
	return queryAll(ctx, r.db, scanPost, `SELECT `+postColumns+` FROM posts ORDER BY id`)
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	return queryOne(ctx, r.db, scanPost, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PostRepository) FindByAuthor(ctx context.Context, authorID int64) ([]*entity.Post, error) {
	return queryAll(ctx, r.db, scanPost, `SELECT `+postColumns+` FROM posts WHERE author_id = $1 ORDER BY id`, authorID)
}

func (r *PostRepository) Create(_ context.Context, fields map[string]any) (*entity.Post, error) {
	p := &entity.Post{}
	if err := helpers.DecodeFields(fields, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) Save(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	if p.ID == 0 {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO posts (content, author_id) VALUES ($1, $2)
			RETURNING id, created_at, updated_at
		`, p.Content, p.AuthorID)
		if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		return p, nil
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE posts SET content = $1, updated_at = NOW() WHERE id = $2
		RETURNING updated_at
	`, p.Content, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *PostRepository) Remove(ctx context.Context, p *entity.Post) error {
	return execOne(ctx, r.db, `DELETE FROM posts WHERE id = $1`, p.ID)
}

var _ repository.PostRepository = (*PostRepository)(nil)
