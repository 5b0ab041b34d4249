package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a notification. A NULL target means broadcast.
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO notifications (target_user_id, message, type, created_at)
		VALUES (?, ?, ?, ?)
	`,
		n.TargetUserID, n.Message, n.Type, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	return nil
}

// ListForUser returns broadcast plus direct notifications for the user,
// newest first. Notifications are read, never consumed.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error) {
	return r.list(ctx, `
		SELECT id, target_user_id, message, type, created_at
		FROM notifications
		WHERE target_user_id IS NULL OR target_user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
}

// ListAll returns every notification, newest first.
func (r *NotificationRepository) ListAll(ctx context.Context) ([]*entity.Notification, error) {
	return r.list(ctx, `
		SELECT id, target_user_id, message, type, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
	`)
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Notification, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var target sql.NullInt64
		if err := rows.Scan(&n.ID, &target, &n.Message, &n.Type, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if target.Valid {
			n.TargetUserID = &target.Int64
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
