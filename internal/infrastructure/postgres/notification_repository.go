package postgres

import (
	"context"

	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const notificationColumns = `id, content, user_id, read, created_at`

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(s scanner) (*entity.Notification, error) {
	n := &entity.Notification{}
	if err := s.Scan(&n.ID, &n.Content, &n.UserID, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) FindAll(ctx context.Context) ([]*entity.Notification, error) {
	return queryAll(ctx, r.db, scanNotification, `SELECT `+notificationColumns+` FROM notifications ORDER BY id`)
}

func (r *NotificationRepository) FindByID(ctx context.Context, id int64) (*entity.Notification, error) {
	return queryOne(ctx, r.db, scanNotification, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
}

// FindByUser returns the newest notifications first.
func (r *NotificationRepository) FindByUser(ctx context.Context, userID int64) ([]*entity.Notification, error) {
	return queryAll(ctx, r.db, scanNotification, `SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY id DESC`, userID)
}

func (r *NotificationRepository) Create(_ context.Context, fields map[string]any) (*entity.Notification, error) {
	n := &entity.Notification{}
	if err := helpers.DecodeFields(fields, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) Save(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	if n.ID == 0 {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO notifications (content, user_id, read) VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, n.Content, n.UserID, n.Read)
		if err := row.Scan(&n.ID, &n.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		return n, nil
	}
	if err := execOne(ctx, r.db, `UPDATE notifications SET content = $1, read = $2 WHERE id = $3`, n.Content, n.Read, n.ID); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) Remove(ctx context.Context, n *entity.Notification) error {
	return execOne(ctx, r.db, `DELETE FROM notifications WHERE id = $1`, n.ID)
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
