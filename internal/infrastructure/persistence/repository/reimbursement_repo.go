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

// ReimbursementRepository implements port.ReimbursementRepository
type ReimbursementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReimbursementRepository creates a new reimbursement repository
func NewReimbursementRepository(db *sql.DB, logger *zap.Logger) port.ReimbursementRepository {
	return &ReimbursementRepository{
		db:     db,
		logger: logger,
	}
}

const reimbursementColumns = `id, date, requestor_id, requestor_name, category, activity_name,
	description, grand_total, status, transfer_proof_ref, rejection_reason, created_at, updated_at`

// Create inserts a claim and its items in status PENDING.
func (r *ReimbursementRepository) Create(ctx context.Context, rb *entity.Reimbursement) error {
	now := time.Now()
	if rb.CreatedAt.IsZero() {
		rb.CreatedAt = now
	}
	rb.UpdatedAt = now

	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		INSERT INTO reimbursements (date, requestor_id, requestor_name, category, activity_name,
			description, grand_total, status, transfer_proof_ref, rejection_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rb.Date,
		rb.RequestorID,
		rb.RequestorName,
		rb.Category,
		rb.ActivityName,
		rb.Description,
		rb.GrandTotal,
		rb.Status,
		rb.TransferProofRef,
		rb.RejectionReason,
		rb.CreatedAt,
		rb.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create reimbursement", zap.Error(err))
		return fmt.Errorf("failed to create reimbursement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	rb.ID = id

	return r.insertItems(ctx, rb.ID, rb.Items)
}

// Update replaces the header fields and items of a claim.
func (r *ReimbursementRepository) Update(ctx context.Context, rb *entity.Reimbursement) error {
	rb.UpdatedAt = time.Now()

	exec := sqlite.ExecutorFrom(ctx, r.db)

	_, err := exec.ExecContext(ctx, `
		UPDATE reimbursements
		SET date = ?, category = ?, activity_name = ?, description = ?, grand_total = ?, updated_at = ?
		WHERE id = ?
	`,
		rb.Date,
		rb.Category,
		rb.ActivityName,
		rb.Description,
		rb.GrandTotal,
		rb.UpdatedAt,
		rb.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update reimbursement", zap.Int64("id", rb.ID), zap.Error(err))
		return fmt.Errorf("failed to update reimbursement: %w", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM reimbursement_items WHERE reimbursement_id = ?`, rb.ID); err != nil {
		return fmt.Errorf("failed to clear reimbursement items: %w", err)
	}

	return r.insertItems(ctx, rb.ID, rb.Items)
}

// UpdateStatusIf performs the optimistic-concurrency status transition.
// The WHERE clause on the expected status serializes concurrent admins:
// the second writer matches zero rows and gets false back.
func (r *ReimbursementRepository) UpdateStatusIf(ctx context.Context, id int64, expected, next entity.ReimbursementStatus, proofRef, reason string) (bool, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	result, err := exec.ExecContext(ctx, `
		UPDATE reimbursements
		SET status = ?, transfer_proof_ref = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`,
		next, proofRef, reason, time.Now(), id, expected,
	)
	if err != nil {
		r.logger.Error("Failed to update reimbursement status",
			zap.Int64("id", id),
			zap.String("next", string(next)),
			zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// GetByID retrieves a claim with its items. Returns nil when the id does
// not exist.
func (r *ReimbursementRepository) GetByID(ctx context.Context, id int64) (*entity.Reimbursement, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	row := exec.QueryRowContext(ctx, `SELECT `+reimbursementColumns+` FROM reimbursements WHERE id = ?`, id)

	rb, err := scanReimbursement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get reimbursement", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get reimbursement: %w", err)
	}

	items, err := r.itemsFor(ctx, rb.ID)
	if err != nil {
		return nil, err
	}
	rb.Items = items

	return rb, nil
}

// List retrieves all claims, newest first.
func (r *ReimbursementRepository) List(ctx context.Context) ([]*entity.Reimbursement, error) {
	return r.list(ctx, `SELECT `+reimbursementColumns+` FROM reimbursements ORDER BY created_at DESC, id DESC`)
}

// ListByRequestor retrieves the claims one employee submitted, newest first.
func (r *ReimbursementRepository) ListByRequestor(ctx context.Context, userID int64) ([]*entity.Reimbursement, error) {
	return r.list(ctx,
		`SELECT `+reimbursementColumns+` FROM reimbursements WHERE requestor_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
}

// ListByStatus retrieves claims in the given status, oldest first.
func (r *ReimbursementRepository) ListByStatus(ctx context.Context, status entity.ReimbursementStatus) ([]*entity.Reimbursement, error) {
	return r.list(ctx,
		`SELECT `+reimbursementColumns+` FROM reimbursements WHERE status = ? ORDER BY created_at ASC, id ASC`,
		status)
}

func (r *ReimbursementRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Reimbursement, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list reimbursements", zap.Error(err))
		return nil, fmt.Errorf("failed to list reimbursements: %w", err)
	}
	defer rows.Close()

	var rbs []*entity.Reimbursement
	for rows.Next() {
		rb, err := scanReimbursement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reimbursement: %w", err)
		}
		rbs = append(rbs, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rb := range rbs {
		items, err := r.itemsFor(ctx, rb.ID)
		if err != nil {
			return nil, err
		}
		rb.Items = items
	}

	return rbs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReimbursement(row rowScanner) (*entity.Reimbursement, error) {
	var rb entity.Reimbursement
	err := row.Scan(
		&rb.ID,
		&rb.Date,
		&rb.RequestorID,
		&rb.RequestorName,
		&rb.Category,
		&rb.ActivityName,
		&rb.Description,
		&rb.GrandTotal,
		&rb.Status,
		&rb.TransferProofRef,
		&rb.RejectionReason,
		&rb.CreatedAt,
		&rb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rb, nil
}

func (r *ReimbursementRepository) insertItems(ctx context.Context, reimbursementID int64, items []entity.ItemDetail) error {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	for i := range items {
		item := &items[i]
		res, err := exec.ExecContext(ctx, `
			INSERT INTO reimbursement_items (reimbursement_id, name, qty, price, total, receipt_ref)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			reimbursementID, item.Name, item.Qty, item.Price, item.Total, item.ReceiptRef,
		)
		if err != nil {
			r.logger.Error("Failed to create reimbursement item",
				zap.Int64("reimbursement_id", reimbursementID),
				zap.Error(err))
			return fmt.Errorf("failed to create reimbursement item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}
	return nil
}

func (r *ReimbursementRepository) itemsFor(ctx context.Context, reimbursementID int64) ([]entity.ItemDetail, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db)

	rows, err := exec.QueryContext(ctx, `
		SELECT id, name, qty, price, total, receipt_ref
		FROM reimbursement_items
		WHERE reimbursement_id = ?
		ORDER BY id
	`, reimbursementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reimbursement items: %w", err)
	}
	defer rows.Close()

	var items []entity.ItemDetail
	for rows.Next() {
		var item entity.ItemDetail
		if err := rows.Scan(&item.ID, &item.Name, &item.Qty, &item.Price, &item.Total, &item.ReceiptRef); err != nil {
			return nil, fmt.Errorf("failed to scan reimbursement item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Verify interface compliance
var _ port.ReimbursementRepository = (*ReimbursementRepository)(nil)
