package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

// ActivityService records and lists the best-effort audit trail.
type ActivityService interface {
	// Record appends a log entry. Failures are logged and swallowed so
	// the request that produced the entry never fails on its account.
	Record(ctx context.Context, e *entity.ActivityLog)

	// List returns entries newest first. Admin only.
	List(ctx context.Context, actor *entity.User, limit, offset int) ([]*entity.ActivityLog, error)
}

type activityServiceImpl struct {
	activityRepo port.ActivityLogRepository
	logger       Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo port.ActivityLogRepository, logger Logger) ActivityService {
	return &activityServiceImpl{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *activityServiceImpl) Record(ctx context.Context, e *entity.ActivityLog) {
	if err := s.activityRepo.Create(ctx, e); err != nil {
		s.logger.Warn("Failed to record activity log",
			"user_id", e.UserID,
			"action", e.Action,
			"error", err,
		)
	}
}

func (s *activityServiceImpl) List(ctx context.Context, actor *entity.User, limit, offset int) ([]*entity.ActivityLog, error) {
	if !actor.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "only admins may view activity logs")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.activityRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list activity logs", err)
	}
	return entries, nil
}
