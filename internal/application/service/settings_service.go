package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

// SettingsService manages the app-wide category list. Categories are
// loaded by the UI to populate pickers and report filters; they change
// only through an explicit update with last-write-wins semantics.
type SettingsService interface {
	Categories(ctx context.Context) ([]*entity.Category, error)

	// UpdateCategories replaces the list, preserving the given order.
	// Admin only; names must be unique and non-empty.
	UpdateCategories(ctx context.Context, actor *entity.User, names []string) error
}

type settingsServiceImpl struct {
	categoryRepo port.CategoryRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	categoryRepo port.CategoryRepository,
	txManager port.TransactionManager,
	logger Logger,
) SettingsService {
	return &settingsServiceImpl{
		categoryRepo: categoryRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *settingsServiceImpl) Categories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list categories", err)
	}
	return categories, nil
}

func (s *settingsServiceImpl) UpdateCategories(ctx context.Context, actor *entity.User, names []string) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "only admins may update categories")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return apperr.New(apperr.KindValidation, "category names must not be empty")
		}
		if seen[name] {
			return apperr.Newf(apperr.KindValidation, "duplicate category: %s", name)
		}
		seen[name] = true
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.categoryRepo.Replace(txCtx, names)
	})
	if err != nil {
		s.logger.Error("Failed to update categories", "error", err)
		return apperr.Wrap(apperr.KindUpstream, "update categories", err)
	}

	s.logger.Info("Categories updated", "count", len(names))
	return nil
}
