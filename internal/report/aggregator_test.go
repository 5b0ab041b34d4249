package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davinrkh/finbook/internal/domain/entity"
)

func ts(day int, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func incomeTxn(id int64, date string, total int64, created time.Time) *entity.Transaction {
	return &entity.Transaction{
		ID:         id,
		Date:       date,
		Type:       entity.TransactionIncome,
		Category:   "Sales",
		GrandTotal: total,
		CreatedAt:  created,
	}
}

func expenseTxn(id int64, date string, total int64, subType entity.ExpenseSubType, created time.Time) *entity.Transaction {
	return &entity.Transaction{
		ID:          id,
		Date:        date,
		Type:        entity.TransactionExpense,
		ExpenseType: subType,
		Category:    "Office",
		GrandTotal:  total,
		CreatedAt:   created,
	}
}

func approvedClaim(id int64, date string, total int64, updated time.Time) *entity.Reimbursement {
	return &entity.Reimbursement{
		ID:         id,
		Date:       date,
		Category:   "Travel",
		GrandTotal: total,
		Status:     entity.ReimbursementApproved,
		UpdatedAt:  updated,
	}
}

func TestMergeRowsShapes(t *testing.T) {
	txns := []*entity.Transaction{
		incomeTxn(1, "2025-03-01", 100000, ts(1, 9)),
		expenseTxn(2, "2025-03-02", 40000, entity.ExpenseReimbursed, ts(2, 9)),
	}
	claims := []*entity.Reimbursement{
		approvedClaim(3, "2025-03-03", 75000, ts(3, 9)),
	}

	rows := MergeRows(txns, claims)
	require.Len(t, rows, 3)

	assert.Equal(t, "journal", rows[0].Source)
	assert.Equal(t, SubTypeNormal, rows[0].SubType)

	assert.Equal(t, SubTypeReimbursed, rows[1].SubType)

	rb := rows[2]
	assert.Equal(t, "reimbursement", rb.Source)
	assert.Equal(t, entity.TransactionExpense, rb.Type)
	assert.Equal(t, SubTypeReimburseSourced, rb.SubType)
	assert.Equal(t, int64(75000), rb.Total)
	assert.Equal(t, ts(3, 9), rb.Timestamp, "reimbursement rows are dated by approval time")
}

func TestSummaryIdentities(t *testing.T) {
	rows := MergeRows(
		[]*entity.Transaction{
			incomeTxn(1, "2025-03-01", 100000, ts(1, 9)),
			expenseTxn(2, "2025-03-02", 30000, entity.ExpenseNormal, ts(2, 9)),
			expenseTxn(3, "2025-03-02", 20000, entity.ExpenseReimbursed, ts(2, 10)),
		},
		[]*entity.Reimbursement{
			approvedClaim(4, "2025-03-03", 25000, ts(3, 9)),
		},
	)

	s := Summarize(rows)
	assert.Equal(t, int64(100000), s.Income)
	assert.Equal(t, int64(75000), s.Expense)
	assert.Equal(t, int64(45000), s.ReimburseTotal, "REIMBURSED journal rows and approved claims both count")
	assert.Equal(t, s.Expense, s.CashExpense+s.ReimburseTotal)
	assert.Equal(t, s.Income-s.Expense, s.Balance)
}

func TestSummaryEmptySet(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s, "all totals are zero over the empty set")
}

func TestApplyFilterDateBoundsInclusive(t *testing.T) {
	rows := MergeRows([]*entity.Transaction{
		incomeTxn(1, "2025-03-01", 1, ts(1, 9)),
		incomeTxn(2, "2025-03-05", 1, ts(5, 9)),
		incomeTxn(3, "2025-03-10", 1, ts(10, 9)),
	}, nil)

	got := ApplyFilter(rows, Filter{StartDate: "2025-03-01", EndDate: "2025-03-05"})
	require.Len(t, got, 2, "both boundary dates are included")
	assert.Equal(t, "2025-03-01", got[0].Date)
	assert.Equal(t, "2025-03-05", got[1].Date)

	got = ApplyFilter(rows, Filter{StartDate: "2025-03-06"})
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-10", got[0].Date)
}

func TestApplyFilterTypeAndCategory(t *testing.T) {
	rows := MergeRows(
		[]*entity.Transaction{
			incomeTxn(1, "2025-03-01", 1, ts(1, 9)),
			expenseTxn(2, "2025-03-02", 1, entity.ExpenseNormal, ts(2, 9)),
			expenseTxn(3, "2025-03-02", 1, entity.ExpenseReimbursed, ts(2, 10)),
		},
		[]*entity.Reimbursement{
			approvedClaim(4, "2025-03-03", 1, ts(3, 9)),
		},
	)

	assert.Len(t, ApplyFilter(rows, Filter{Type: FilterIncome}), 1)
	assert.Len(t, ApplyFilter(rows, Filter{Type: FilterExpense}), 3)
	assert.Len(t, ApplyFilter(rows, Filter{Type: FilterReimburse}), 2,
		"REIMBURSE selects flagged journal expenses plus reimbursement rows")
	assert.Len(t, ApplyFilter(rows, Filter{Type: FilterAll}), 4)
	assert.Len(t, ApplyFilter(rows, Filter{}), 4, "empty type means no type filter")

	travel := ApplyFilter(rows, Filter{Category: "Travel"})
	require.Len(t, travel, 1)
	assert.Equal(t, "reimbursement", travel[0].Source)
}

func TestSortRowsNewestFirstAndStable(t *testing.T) {
	shared := ts(5, 12)
	rows := []Row{
		{Description: "old", Timestamp: ts(1, 9)},
		{Description: "tie-a", Timestamp: shared},
		{Description: "tie-b", Timestamp: shared},
		{Description: "new", Timestamp: ts(9, 9)},
	}

	SortRows(rows)

	assert.Equal(t, "new", rows[0].Description)
	assert.Equal(t, "tie-a", rows[1].Description, "equal timestamps keep original order")
	assert.Equal(t, "tie-b", rows[2].Description)
	assert.Equal(t, "old", rows[3].Description)
}

type fetchStubTxnRepo struct {
	txns []*entity.Transaction
}

func (s *fetchStubTxnRepo) Create(ctx context.Context, txn *entity.Transaction) error { return nil }
func (s *fetchStubTxnRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	return nil, nil
}
func (s *fetchStubTxnRepo) List(ctx context.Context) ([]*entity.Transaction, error) {
	return s.txns, nil
}

type fetchStubReimburseRepo struct {
	byStatus map[entity.ReimbursementStatus][]*entity.Reimbursement
	asked    []entity.ReimbursementStatus
}

func (s *fetchStubReimburseRepo) Create(ctx context.Context, r *entity.Reimbursement) error {
	return nil
}
func (s *fetchStubReimburseRepo) GetByID(ctx context.Context, id int64) (*entity.Reimbursement, error) {
	return nil, nil
}
func (s *fetchStubReimburseRepo) List(ctx context.Context) ([]*entity.Reimbursement, error) {
	return nil, nil
}
func (s *fetchStubReimburseRepo) ListByRequestor(ctx context.Context, userID int64) ([]*entity.Reimbursement, error) {
	return nil, nil
}
func (s *fetchStubReimburseRepo) ListByStatus(ctx context.Context, status entity.ReimbursementStatus) ([]*entity.Reimbursement, error) {
	s.asked = append(s.asked, status)
	return s.byStatus[status], nil
}
func (s *fetchStubReimburseRepo) Update(ctx context.Context, r *entity.Reimbursement) error {
	return nil
}
func (s *fetchStubReimburseRepo) UpdateStatusIf(ctx context.Context, id int64, expected, next entity.ReimbursementStatus, proofRef, reason string) (bool, error) {
	return false, nil
}

// Approving a claim moves its amount into the report; pending, processing
// and rejected claims never contribute.
func TestGenerateIncludesOnlyApprovedClaims(t *testing.T) {
	txnRepo := &fetchStubTxnRepo{txns: []*entity.Transaction{
		incomeTxn(1, "2025-03-01", 100000, ts(1, 9)),
	}}
	rbRepo := &fetchStubReimburseRepo{byStatus: map[entity.ReimbursementStatus][]*entity.Reimbursement{
		entity.ReimbursementApproved: {approvedClaim(2, "2025-03-02", 75000, ts(2, 9))},
		// Anything else in the store is invisible to Generate because it
		// only ever asks for APPROVED.
		entity.ReimbursementPending: {approvedClaim(3, "2025-03-02", 999999, ts(2, 10))},
	}}

	svc := NewService(txnRepo, rbRepo, zap.NewNop())
	rpt, err := svc.Generate(context.Background(), Filter{})
	require.NoError(t, err)

	require.Equal(t, []entity.ReimbursementStatus{entity.ReimbursementApproved}, rbRepo.asked)
	require.Len(t, rpt.Rows, 2)
	assert.Equal(t, int64(100000), rpt.Summary.Income)
	assert.Equal(t, int64(75000), rpt.Summary.Expense)
	assert.Equal(t, int64(75000), rpt.Summary.ReimburseTotal)
	assert.Equal(t, int64(0), rpt.Summary.CashExpense)
	assert.Equal(t, int64(25000), rpt.Summary.Balance)
}
