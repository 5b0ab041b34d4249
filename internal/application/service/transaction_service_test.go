package service

import (
	"context"
	"errors"
	"testing"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

func validEntry() *entity.Transaction {
	return &entity.Transaction{
		Date:         "2025-03-01",
		Type:         entity.TransactionIncome,
		Category:     "Sales",
		ActivityName: "March invoices",
		Items: []entity.ItemDetail{
			{Name: "Invoice #12", Qty: 1, Price: 100000},
		},
	}
}

func TestCreateTransactionAdminOnly(t *testing.T) {
	svc := NewTransactionService(&mockTransactionRepo{}, &mockTxManager{}, nopLogger{})

	err := svc.Create(context.Background(), employeeUser(7), validEntry())
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("Create() error = %v, want authorization error", err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := NewTransactionService(&mockTransactionRepo{}, &mockTxManager{}, nopLogger{})

	tests := []struct {
		name   string
		mutate func(txn *entity.Transaction)
	}{
		{"bad date", func(txn *entity.Transaction) { txn.Date = "March 1st" }},
		{"bad type", func(txn *entity.Transaction) { txn.Type = "TRANSFER" }},
		{"missing category", func(txn *entity.Transaction) { txn.Category = "" }},
		{"no items", func(txn *entity.Transaction) { txn.Items = nil }},
		{"bad expense subtype", func(txn *entity.Transaction) {
			txn.Type = entity.TransactionExpense
			txn.ExpenseType = "PREPAID"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := validEntry()
			tt.mutate(txn)
			err := svc.Create(context.Background(), adminUser(), txn)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestCreateTransactionNormalizesExpenseType(t *testing.T) {
	var created *entity.Transaction
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, txn *entity.Transaction) error {
			created = txn
			return nil
		},
	}
	svc := NewTransactionService(repo, &mockTxManager{}, nopLogger{})

	// Expense without a subtype defaults to NORMAL.
	txn := validEntry()
	txn.Type = entity.TransactionExpense
	if err := svc.Create(context.Background(), adminUser(), txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ExpenseType != entity.ExpenseNormal {
		t.Errorf("ExpenseType = %q, want NORMAL", created.ExpenseType)
	}

	// Income entries never carry a subtype, whatever was submitted.
	txn = validEntry()
	txn.ExpenseType = entity.ExpenseReimbursed
	if err := svc.Create(context.Background(), adminUser(), txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ExpenseType != "" {
		t.Errorf("income ExpenseType = %q, want empty", created.ExpenseType)
	}
}

func TestCreateTransactionRecomputesTotals(t *testing.T) {
	var created *entity.Transaction
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, txn *entity.Transaction) error {
			created = txn
			return nil
		},
	}
	tm := &mockTxManager{}
	svc := NewTransactionService(repo, tm, nopLogger{})

	txn := validEntry()
	txn.Items = []entity.ItemDetail{
		{Name: "Paper", Qty: 10, Price: 5000, Total: 3},
		{Name: "Toner", Qty: 2, Price: 150000},
	}
	txn.GrandTotal = -1

	if err := svc.Create(context.Background(), adminUser(), txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.GrandTotal != 350000 {
		t.Errorf("GrandTotal = %d, want 350000", created.GrandTotal)
	}
	if tm.calls != 1 {
		t.Errorf("transaction manager calls = %d, want 1", tm.calls)
	}
}

func TestCreateTransactionUpstreamFailure(t *testing.T) {
	repo := &mockTransactionRepo{
		createFn: func(ctx context.Context, txn *entity.Transaction) error {
			return errors.New("disk full")
		},
	}
	svc := NewTransactionService(repo, &mockTxManager{}, nopLogger{})

	err := svc.Create(context.Background(), adminUser(), validEntry())
	if !apperr.IsKind(err, apperr.KindUpstream) {
		t.Errorf("Create() error = %v, want upstream error", err)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	repo := &mockTransactionRepo{
		getByIDFn: func(ctx context.Context, id int64) (*entity.Transaction, error) {
			return nil, nil
		},
	}
	svc := NewTransactionService(repo, &mockTxManager{}, nopLogger{})

	_, err := svc.Get(context.Background(), 99)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("Get() error = %v, want not found", err)
	}
}
