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

// TransactionRepository implements port.TransactionRepository
type TransactionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sql.DB, logger *zap.Logger) port.TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the journal entry header and its line items. Callers
// wrap this in TransactionManager.WithTransaction so the rows commit as
// one unit.
func (r *TransactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO transactions (date, type, expense_type, category, activity_name, description, grand_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.Date,
		txn.Type,
		txn.ExpenseType,
		txn.Category,
		txn.ActivityName,
		txn.Description,
		txn.GrandTotal,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	txn.ID = id

	for i := range txn.Items {
		item := &txn.Items[i]
		res, err := exec.ExecContext(ctx, `
			INSERT INTO transaction_items (transaction_id, name, qty, price, total, receipt_ref)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			txn.ID, item.Name, item.Qty, item.Price, item.Total, item.ReceiptRef,
		)
		if err != nil {
			r.logger.Error("Failed to create transaction item",
				zap.Int64("transaction_id", txn.ID),
				zap.Error(err))
			return fmt.Errorf("failed to create transaction item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a journal entry with its items. Returns nil when the
// id does not exist.
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	var txn entity.Transaction
	err := exec.QueryRowContext(ctx, `
		SELECT id, date, type, expense_type, category, activity_name, description, grand_total, created_at
		FROM transactions
		WHERE id = ?
	`, id).Scan(
		&txn.ID,
		&txn.Date,
		&txn.Type,
		&txn.ExpenseType,
		&txn.Category,
		&txn.ActivityName,
		&txn.Description,
		&txn.GrandTotal,
		&txn.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get transaction", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	items, err := r.itemsFor(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	txn.Items = items

	return &txn, nil
}

// List retrieves all journal entries with items, newest first.
func (r *TransactionRepository) List(ctx context.Context) ([]*entity.Transaction, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, date, type, expense_type, category, activity_name, description, grand_total, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		r.logger.Error("Failed to list transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*entity.Transaction
	for rows.Next() {
		var txn entity.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.Date,
			&txn.Type,
			&txn.ExpenseType,
			&txn.Category,
			&txn.ActivityName,
			&txn.Description,
			&txn.GrandTotal,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, txn := range txns {
		items, err := r.itemsFor(ctx, txn.ID)
		if err != nil {
			return nil, err
		}
		txn.Items = items
	}

	return txns, nil
}

func (r *TransactionRepository) itemsFor(ctx context.Context, transactionID int64) ([]entity.ItemDetail, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, name, qty, price, total, receipt_ref
		FROM transaction_items
		WHERE transaction_id = ?
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction items: %w", err)
	}
	defer rows.Close()

	var items []entity.ItemDetail
	for rows.Next() {
		var item entity.ItemDetail
		if err := rows.Scan(&item.ID, &item.Name, &item.Qty, &item.Price, &item.Total, &item.ReceiptRef); err != nil {
			return nil, fmt.Errorf("failed to scan transaction item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Verify interface compliance
var _ port.TransactionRepository = (*TransactionRepository)(nil)
