package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

// NotificationService composes and lists notifications. Delivery is
// pull-based: clients poll ListForUser, nothing is pushed and no read
// state is persisted.
type NotificationService interface {
	// Compose creates a notification. A nil target broadcasts to all
	// employees. Admin only.
	Compose(ctx context.Context, actor *entity.User, targetUserID *int64, message string, notifType entity.NotificationType) (*entity.Notification, error)

	// ListForUser returns broadcast plus direct notifications for the
	// user, newest first.
	ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error)

	// ListAll returns every notification. Admin only.
	ListAll(ctx context.Context, actor *entity.User) ([]*entity.Notification, error)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *notificationServiceImpl) Compose(ctx context.Context, actor *entity.User, targetUserID *int64, message string, notifType entity.NotificationType) (*entity.Notification, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "only admins may send notifications")
	}
	if message == "" {
		return nil, apperr.New(apperr.KindValidation, "message is required")
	}
	if !notifType.IsValid() {
		return nil, apperr.Newf(apperr.KindValidation, "unknown notification type: %s", notifType)
	}

	notification := &entity.Notification{
		TargetUserID: targetUserID,
		Message:      message,
		Type:         notifType,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to create notification", "error", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "create notification", err)
	}

	s.logger.Info("Notification created",
		"notification_id", notification.ID,
		"broadcast", notification.IsBroadcast(),
		"type", string(notifType),
	)
	return notification, nil
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error) {
	notifications, err := s.notificationRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list notifications", err)
	}
	return notifications, nil
}

func (s *notificationServiceImpl) ListAll(ctx context.Context, actor *entity.User) ([]*entity.Notification, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "only admins may list all notifications")
	}
	notifications, err := s.notificationRepo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list notifications", err)
	}
	return notifications, nil
}
