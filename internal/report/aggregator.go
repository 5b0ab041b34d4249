// Package report merges journal entries and approved reimbursements into
// a unified, filterable ledger with summary totals.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"go.uber.org/zap"
)

// SubType qualifies a ledger row beyond income/expense.
// REIMBURSE_SOURCED marks rows that came from the reimbursement module
// rather than the journal.
type SubType string

const (
	SubTypeNormal           SubType = "NORMAL"
	SubTypeReimbursed       SubType = "REIMBURSED"
	SubTypeReimburseSourced SubType = "REIMBURSE_SOURCED"
)

// TypeFilter selects which entry types a report includes.
type TypeFilter string

const (
	FilterAll       TypeFilter = "ALL"
	FilterIncome    TypeFilter = "INCOME"
	FilterExpense   TypeFilter = "EXPENSE"
	FilterReimburse TypeFilter = "REIMBURSE"
)

// Filter narrows the ledger. Date bounds are inclusive ISO dates compared
// lexicographically; empty bounds are open. Category matches exactly.
type Filter struct {
	StartDate string
	EndDate   string
	Type      TypeFilter
	Category  string
}

// Row is one ledger line after the merge.
type Row struct {
	Date        string                 `json:"date"`
	Type        entity.TransactionType `json:"type"`
	SubType     SubType                `json:"sub_type"`
	Category    string                 `json:"category"`
	Activity    string                 `json:"activity"`
	Total       int64                  `json:"total"`
	Description string                 `json:"description"`
	Timestamp   time.Time              `json:"timestamp"`
	Source      string                 `json:"source"` // "journal" or "reimbursement"
}

// Summary holds the totals over the filtered row set. All amounts are
// whole currency units; cashExpense + reimburseTotal == expense and
// income - expense == balance hold exactly.
type Summary struct {
	Income         int64 `json:"income"`
	Expense        int64 `json:"expense"`
	ReimburseTotal int64 `json:"reimburse_total"`
	CashExpense    int64 `json:"cash_expense"`
	Balance        int64 `json:"balance"`
}

// Report is the filtered, sorted ledger plus its summary.
type Report struct {
	Rows    []Row   `json:"rows"`
	Summary Summary `json:"summary"`
}

// Service produces reports from the two persistence sources.
type Service struct {
	transactionRepo   port.TransactionRepository
	reimbursementRepo port.ReimbursementRepository
	logger            *zap.Logger
}

// NewService creates a new report service
func NewService(
	transactionRepo port.TransactionRepository,
	reimbursementRepo port.ReimbursementRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		transactionRepo:   transactionRepo,
		reimbursementRepo: reimbursementRepo,
		logger:            logger,
	}
}

// Generate builds the report for the given filter. Transactions are
// included unconditionally; reimbursements only when APPROVED — any
// other status is unrealized cash flow and never contributes.
func (s *Service) Generate(ctx context.Context, filter Filter) (*Report, error) {
	txns, err := s.transactionRepo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list transactions", err)
	}

	approved, err := s.reimbursementRepo.ListByStatus(ctx, entity.ReimbursementApproved)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list approved reimbursements", err)
	}

	rows := MergeRows(txns, approved)
	rows = ApplyFilter(rows, filter)
	SortRows(rows)

	report := &Report{
		Rows:    rows,
		Summary: Summarize(rows),
	}

	s.logger.Debug("Report generated",
		zap.Int("rows", len(rows)),
		zap.Int64("balance", report.Summary.Balance))

	return report, nil
}

// MergeRows converts the two sources into the unified row shape, journal
// entries first so equal timestamps keep a deterministic original order.
func MergeRows(txns []*entity.Transaction, approved []*entity.Reimbursement) []Row {
	rows := make([]Row, 0, len(txns)+len(approved))

	for _, t := range txns {
		subType := SubTypeNormal
		if t.Type == entity.TransactionExpense && t.ExpenseType == entity.ExpenseReimbursed {
			subType = SubTypeReimbursed
		}
		rows = append(rows, Row{
			Date:        t.Date,
			Type:        t.Type,
			SubType:     subType,
			Category:    t.Category,
			Activity:    t.ActivityName,
			Total:       t.GrandTotal,
			Description: t.Description,
			Timestamp:   t.CreatedAt,
			Source:      "journal",
		})
	}

	for _, r := range approved {
		rows = append(rows, Row{
			Date:        r.Date,
			Type:        entity.TransactionExpense,
			SubType:     SubTypeReimburseSourced,
			Category:    r.Category,
			Activity:    r.ActivityName,
			Total:       r.GrandTotal,
			Description: r.Description,
			Timestamp:   r.UpdatedAt,
			Source:      "reimbursement",
		})
	}

	return rows
}

// ApplyFilter keeps the rows matching every set filter field. Both date
// bounds are inclusive.
func ApplyFilter(rows []Row, filter Filter) []Row {
	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if filter.StartDate != "" && row.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && row.Date > filter.EndDate {
			continue
		}
		if filter.Category != "" && row.Category != filter.Category {
			continue
		}
		if !matchesType(row, filter.Type) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func matchesType(row Row, t TypeFilter) bool {
	switch t {
	case "", FilterAll:
		return true
	case FilterIncome:
		return row.Type == entity.TransactionIncome
	case FilterExpense:
		return row.Type == entity.TransactionExpense
	case FilterReimburse:
		return isReimbursed(row)
	default:
		return true
	}
}

// isReimbursed reports whether the row represents reimbursed spending:
// either a journal expense flagged REIMBURSED or a row sourced from an
// approved reimbursement.
func isReimbursed(row Row) bool {
	return row.SubType == SubTypeReimbursed || row.SubType == SubTypeReimburseSourced
}

// SortRows orders rows descending by timestamp. The sort is stable so
// rows sharing a timestamp keep their original relative order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
}

// Summarize computes the summary totals over the filtered set.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, row := range rows {
		switch row.Type {
		case entity.TransactionIncome:
			s.Income += row.Total
		case entity.TransactionExpense:
			s.Expense += row.Total
			if isReimbursed(row) {
				s.ReimburseTotal += row.Total
			}
		}
	}
	s.CashExpense = s.Expense - s.ReimburseTotal
	s.Balance = s.Income - s.Expense
	return s
}
