// Package port declares the interfaces the application layer depends on.
// Concrete implementations live under internal/infrastructure.
package port

import (
	"context"

	"github.com/davinrkh/finbook/internal/domain/entity"
)

// TransactionManager runs a function inside a database transaction.
// Repository calls made with the callback's context join that transaction,
// so multi-row writes commit atomically or not at all.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionRepository defines persistence operations for journal entries.
// Entries are immutable once created; there is no update or delete.
type TransactionRepository interface {
	// Create inserts the transaction header and its items.
	Create(ctx context.Context, txn *entity.Transaction) error
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	List(ctx context.Context) ([]*entity.Transaction, error)
}

// ReimbursementRepository defines persistence operations for expense claims.
type ReimbursementRepository interface {
	Create(ctx context.Context, r *entity.Reimbursement) error
	GetByID(ctx context.Context, id int64) (*entity.Reimbursement, error)
	List(ctx context.Context) ([]*entity.Reimbursement, error)
	ListByRequestor(ctx context.Context, userID int64) ([]*entity.Reimbursement, error)
	ListByStatus(ctx context.Context, status entity.ReimbursementStatus) ([]*entity.Reimbursement, error)

	// Update replaces the header fields and items of a claim. Only valid
	// while the claim is PENDING; the service enforces that rule.
	Update(ctx context.Context, r *entity.Reimbursement) error

	// UpdateStatusIf transitions the stored status only when it still
	// equals expected, together with the proof ref or rejection reason the
	// transition carries. Returns false when the stored state no longer
	// matches (lost an optimistic-concurrency race) or the row is gone.
	UpdateStatusIf(ctx context.Context, id int64, expected, next entity.ReimbursementStatus, proofRef, reason string) (bool, error)
}

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error

	// ListForUser returns broadcast plus direct notifications for the
	// user, newest first.
	ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error)
	ListAll(ctx context.Context) ([]*entity.Notification, error)
}

// ActivityLogRepository is append-only: entries are never updated or deleted.
type ActivityLogRepository interface {
	Create(ctx context.Context, e *entity.ActivityLog) error
	List(ctx context.Context, limit, offset int) ([]*entity.ActivityLog, error)
}

// CategoryRepository defines persistence operations for report categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]*entity.Category, error)

	// Replace overwrites the category list with the given names in order.
	// Settings updates are last-write-wins.
	Replace(ctx context.Context, names []string) error
}
