package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// CategoryRepository implements port.CategoryRepository
type CategoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB, logger *zap.Logger) port.CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

// List returns categories in insertion order.
func (r *CategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `SELECT id, name, position FROM categories ORDER BY position`)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// Replace overwrites the category list with the given names in order.
// Callers wrap this in a transaction so the swap is atomic.
func (r *CategoryRepository) Replace(ctx context.Context, names []string) error {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	if _, err := exec.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		r.logger.Error("Failed to clear categories", zap.Error(err))
		return fmt.Errorf("failed to clear categories: %w", err)
	}

	for i, name := range names {
		if _, err := exec.ExecContext(ctx,
			`INSERT INTO categories (name, position) VALUES (?, ?)`, name, i,
		); err != nil {
			r.logger.Error("Failed to insert category", zap.String("name", name), zap.Error(err))
			return fmt.Errorf("failed to insert category: %w", err)
		}
	}
	return nil
}

// Verify interface compliance
var _ port.CategoryRepository = (*CategoryRepository)(nil)
