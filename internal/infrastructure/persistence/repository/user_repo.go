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

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, name, position, phone, email, username, password_hash, photo_ref, role, created_at`

// Create inserts a new account. The username unique constraint surfaces
// as an error the service maps to a validation failure.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO users (name, position, phone, email, username, password_hash, photo_ref, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.Name, u.Position, u.Phone, u.Email, u.Username, u.PasswordHash, u.PhotoRef, u.Role, u.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("username", u.Username), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	u.ID = id
	return nil
}

// GetByID retrieves an account. Returns nil when the id does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves an account by its unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepository) get(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	var u entity.User
	err := exec.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Position, &u.Phone, &u.Email,
		&u.Username, &u.PasswordHash, &u.PhotoRef, &u.Role, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// List retrieves all accounts ordered by name.
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Position, &u.Phone, &u.Email,
			&u.Username, &u.PasswordHash, &u.PhotoRef, &u.Role, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// Update rewrites the mutable profile fields, password hash included.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		UPDATE users
		SET name = ?, position = ?, phone = ?, email = ?, password_hash = ?, photo_ref = ?, role = ?
		WHERE id = ?
	`,
		u.Name, u.Position, u.Phone, u.Email, u.PasswordHash, u.PhotoRef, u.Role, u.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update user", zap.Int64("id", u.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
