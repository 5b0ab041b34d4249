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

// ActivityLogRepository implements port.ActivityLogRepository.
// The table is append-only; there are no update or delete operations.
type ActivityLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *sql.DB, logger *zap.Logger) port.ActivityLogRepository {
	return &ActivityLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a log entry.
func (r *ActivityLogRepository) Create(ctx context.Context, e *entity.ActivityLog) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO activity_logs (user_id, username, action, ip_address, device_info, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.UserID, e.Username, e.Action, e.IPAddress, e.DeviceInfo, e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create activity log", zap.Error(err))
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// List returns entries newest first.
func (r *ActivityLogRepository) List(ctx context.Context, limit, offset int) ([]*entity.ActivityLog, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, user_id, username, action, ip_address, device_info, created_at
		FROM activity_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list activity logs", zap.Error(err))
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ActivityLog
	for rows.Next() {
		var e entity.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.IPAddress, &e.DeviceInfo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Verify interface compliance
var _ port.ActivityLogRepository = (*ActivityLogRepository)(nil)
