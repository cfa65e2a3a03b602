package stock

import (
	"errors"
	"fmt"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

var (
	errProductRequired  = errors.New("adjustment product_id is required")
	errQuantityNegative = errors.New("adjustment quantity must be non-negative")
	errQuantityZero     = errors.New("adjustment quantity must be greater than zero")
)

func errUnknownOp(op AdjustmentOp) error {
	return fmt.Errorf("unknown adjustment op %q (use add|remove|set)", op)
}

func validateAdjustment(adj Adjustment) error {
	var issues []error

	if adj.ProductID == "" {
		issues = append(issues, errProductRequired)
	}
	switch adj.Op {
	case AdjustmentOpAdd, AdjustmentOpRemove:
		if adj.Quantity <= 0 {
			issues = append(issues, errQuantityZero)
		}
	case AdjustmentOpSet:
		// set в ноль — легальная операция.
		if adj.Quantity < 0 {
			issues = append(issues, errQuantityNegative)
		}
	default:
		issues = append(issues, errUnknownOp(adj.Op))
	}

	return domain.NewValidationError(issues)
}
