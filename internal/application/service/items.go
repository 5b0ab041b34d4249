package service

import (
	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

// validateAndTotalItems checks the line items of a journal entry or
// reimbursement and recomputes every total server-side. Submitted totals
// are never trusted.
func validateAndTotalItems(items []entity.ItemDetail) (int64, error) {
	if len(items) == 0 {
		return 0, apperr.New(apperr.KindValidation, "at least one item is required")
	}

	for i := range items {
		item := &items[i]
		if item.Name == "" {
			return 0, apperr.Newf(apperr.KindValidation, "item %d: name is required", i+1)
		}
		if item.Qty < 1 {
			return 0, apperr.Newf(apperr.KindValidation, "item %d: qty must be at least 1", i+1)
		}
		if item.Price < 0 {
			return 0, apperr.Newf(apperr.KindValidation, "item %d: price must not be negative", i+1)
		}
		item.ComputeTotal()
	}

	return entity.SumItems(items), nil
}
