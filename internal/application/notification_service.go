package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/config"
	"github.com/oksasatya/go-social-crud/internal/application/crud"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-crud/pkg/mailer/templates"
)

type NotificationService struct {
	Notifications repository.NotificationRepository
	Users         repository.UserRepository
	Jobs          JobPublisher
	Config        *config.Config
	Logger        *logrus.Logger

	resolver *crud.Resolver
}

// NewNotificationService wires the service. jobs may be nil, in which case
// notifications are stored but not emailed.
func NewNotificationService(reg *crud.Registry, repos Repositories, jobs JobPublisher, cfg *config.Config, logger *logrus.Logger) (*NotificationService, error) {
	res, err := crud.BuildResolver(reg, entity.TypeNotification)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationService{
		Notifications: repos.Notifications,
		Users:         repos.Users,
		Jobs:          jobs,
		Config:        cfg,
		Logger:        logger,
		resolver:      res,
	}, nil
}

// Notify stores a notification for userID and queues an email about it.
// A failure to queue the email is logged, not returned.
func (s *NotificationService) Notify(ctx context.Context, userID int64, content string) (*entity.Notification, error) {
	n, err := s.Notifications.Save(ctx, &entity.Notification{UserID: userID, Content: content})
	if err != nil {
		return nil, fmt.Errorf("notify user %d: %w", userID, err)
	}
	if s.Jobs == nil {
		return n, nil
	}
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("notification email skipped")
		return n, nil
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Notification,
		Data:     mailtpl.NewNotificationData(s.Config, u.Username, u.Email, content, mailtpl.WithTime(n.CreatedAt)),
	}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("publish notification job failed")
	}
	return n, nil
}

// Mine lists the caller's notifications, newest first.
func (s *NotificationService) Mine(c *crud.Context) ([]*entity.Notification, error) {
	if err := crud.Authorize(c, "listNotifications", crud.IsAuthenticated(), nil); err != nil {
		return nil, err
	}
	p, _ := c.Principal()
	return s.Notifications.FindByUser(c.Std(), p.ID)
}

// MarkRead flags a notification as read through the Notification resolver,
// so only its owner can do it. A notification the caller may not touch is
// reported as not found.
func (s *NotificationService) MarkRead(c *crud.Context, id int64) (*entity.Notification, error) {
	rec, err := s.resolver.Update(c, id, map[string]any{"read": true})
	if err != nil {
		return nil, err
	}
	n, ok := rec.(*entity.Notification)
	if !ok {
		return nil, &crud.NotFoundError{Type: entity.TypeNotification, ID: id}
	}
	return n, nil
}
