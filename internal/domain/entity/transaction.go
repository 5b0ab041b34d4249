package entity

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// ExpenseSubType qualifies an expense row. REIMBURSED marks rows that
// originated from an approved reimbursement payout rather than direct
// operating cash.
type ExpenseSubType string

const (
	ExpenseNormal     ExpenseSubType = "NORMAL"
	ExpenseReimbursed ExpenseSubType = "REIMBURSED"
)

// ItemDetail is a single line item on a journal entry or reimbursement.
// Total is always Qty*Price; the server recomputes it and never trusts
// the submitted value.
type ItemDetail struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Qty        int64  `json:"qty"`
	Price      int64  `json:"price"`
	Total      int64  `json:"total"`
	ReceiptRef string `json:"receipt_ref,omitempty"`
}

// ComputeTotal recalculates the line total from qty and price.
func (i *ItemDetail) ComputeTotal() {
	i.Total = i.Qty * i.Price
}

// Transaction is a recorded journal entry. Immutable once created.
type Transaction struct {
	ID           int64           `json:"id"`
	Date         string          `json:"date"` // ISO date, YYYY-MM-DD
	Type         TransactionType `json:"type"`
	ExpenseType  ExpenseSubType  `json:"expense_type,omitempty"` // only when Type == EXPENSE
	Category     string          `json:"category"`
	ActivityName string          `json:"activity_name"`
	Description  string          `json:"description"`
	Items        []ItemDetail    `json:"items"`
	GrandTotal   int64           `json:"grand_total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SumItems returns the sum of line totals. Callers must have called
// ComputeTotal on each item first.
func SumItems(items []ItemDetail) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Total
	}
	return sum
}
