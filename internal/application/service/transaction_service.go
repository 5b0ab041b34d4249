package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/pkg/utils"
)

// TransactionService manages journal entries
type TransactionService interface {
	// Create records a new journal entry. Admin only; the entry is
	// immutable afterwards.
	Create(ctx context.Context, actor *entity.User, txn *entity.Transaction) error
	Get(ctx context.Context, id int64) (*entity.Transaction, error)
	List(ctx context.Context) ([]*entity.Transaction, error)
}

type transactionServiceImpl struct {
	transactionRepo port.TransactionRepository
	txManager       port.TransactionManager
	logger          Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo port.TransactionRepository,
	txManager port.TransactionManager,
	logger Logger,
) TransactionService {
	return &transactionServiceImpl{
		transactionRepo: transactionRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

func (s *transactionServiceImpl) Create(ctx context.Context, actor *entity.User, txn *entity.Transaction) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "only admins may record journal entries")
	}

	if err := utils.ValidateISODate(txn.Date); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid date", err)
	}
	if txn.Type != entity.TransactionIncome && txn.Type != entity.TransactionExpense {
		return apperr.New(apperr.KindValidation, "type must be INCOME or EXPENSE")
	}
	if txn.Category == "" {
		return apperr.New(apperr.KindValidation, "category is required")
	}

	switch txn.Type {
	case entity.TransactionExpense:
		if txn.ExpenseType == "" {
			txn.ExpenseType = entity.ExpenseNormal
		}
		if txn.ExpenseType != entity.ExpenseNormal && txn.ExpenseType != entity.ExpenseReimbursed {
			return apperr.New(apperr.KindValidation, "expense_type must be NORMAL or REIMBURSED")
		}
	default:
		// ExpenseType only applies to expenses.
		txn.ExpenseType = ""
	}

	grandTotal, err := validateAndTotalItems(txn.Items)
	if err != nil {
		return err
	}
	txn.GrandTotal = grandTotal

	// Header and items commit as one atomic unit.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.transactionRepo.Create(txCtx, txn)
	})
	if err != nil {
		s.logger.Error("Failed to create transaction", "error", err)
		return apperr.Wrap(apperr.KindUpstream, "create transaction", err)
	}

	s.logger.Info("Journal entry recorded",
		"transaction_id", txn.ID,
		"type", string(txn.Type),
		"grand_total", txn.GrandTotal,
	)
	return nil
}

func (s *transactionServiceImpl) Get(ctx context.Context, id int64) (*entity.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "get transaction", err)
	}
	if txn == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "transaction %d not found", id)
	}
	return txn, nil
}

func (s *transactionServiceImpl) List(ctx context.Context) ([]*entity.Transaction, error) {
	txns, err := s.transactionRepo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "list transactions", err)
	}
	return txns, nil
}
