package postgres

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const messageColumns = `id, content, sender_id, receiver_id, created_at`

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func scanMessage(s scanner) (*entity.Message, error) {
	m := &entity.Message{}
	if err := s.Scan(&m.ID, &m.Content, &m.SenderID, &m.ReceiverID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MessageRepository) FindAll(ctx context.Context) ([]*entity.Message, error) {
	return queryAll(ctx, r.db, scanMessage, `SELECT `+messageColumns+` FROM messages ORDER BY id`)
}

func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*entity.Message, error) {
	return queryOne(ctx, r.db, scanMessage, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
}

func (r *MessageRepository) FindConversation(ctx context.Context, a, b int64) ([]*entity.Message, error) {
	return queryAll(ctx, r.db, scanMessage, `
		SELECT `+messageColumns+` FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, id
	`, a, b)
}

func (r *MessageRepository) Create(_ context.Context, fields map[string]any) (*entity.Message, error) {
	m := &entity.Message{}
	if err := helpers.DecodeFields(fields, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MessageRepository) Save(ctx context.Context, m *entity.Message) (*entity.Message, error) {
	if m.ID == 0 {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO messages (content, sender_id, receiver_id) VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, m.Content, m.SenderID, m.ReceiverID)
		if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		return m, nil
	}
	if err := execOne(ctx, r.db, `UPDATE messages SET content = $1 WHERE id = $2`, m.Content, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MessageRepository) Remove(ctx context.Context, m *entity.Message) error {
	return execOne(ctx, r.db, `DELETE FROM messages WHERE id = $1`, m.ID)
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
