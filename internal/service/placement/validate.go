package placement

import (
	"errors"
	"fmt"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

var (
	errAdHocNameRequired = errors.New("ad-hoc line requires a name")
	errShippingNegative  = errors.New("shipping must be non-negative")
	errTaxNegative       = errors.New("tax must be non-negative")
)

// validateRequest проверяет форму запроса до любых обращений к хранилищу.
func validateRequest(req PlaceOrderRequest) error {
	var issues []error

	if req.CustomerID == "" {
		issues = append(issues, domain.ErrCustomerRequired)
	}
	if len(req.Lines) == 0 {
		issues = append(issues, domain.ErrLinesRequired)
	}
	if req.ShippingMinor < 0 {
		issues = append(issues, errShippingNegative)
	}
	if req.TaxMinor < 0 {
		issues = append(issues, errTaxNegative)
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodCOD, domain.PaymentMethodCard, domain.PaymentMethodUPI, domain.PaymentMethodWallet:
	default:
		issues = append(issues, fmt.Errorf("unknown payment method %q", req.PaymentMethod))
	}

	for idx, line := range req.Lines {
		if line.Qty <= 0 {
			issues = append(issues, fmt.Errorf("line[%d]: %w", idx, domain.ErrLineQtyInvalid))
		}
		switch line.Kind {
		case domain.LineKindCatalog:
			if line.ProductID == "" {
				issues = append(issues, fmt.Errorf("line[%d]: %w", idx, domain.ErrLineProductRequired))
			}
		case domain.LineKindAdHoc:
			if line.Name == "" {
				issues = append(issues, fmt.Errorf("line[%d]: %w", idx, errAdHocNameRequired))
			}
			if line.UnitPriceMinor < 0 {
				issues = append(issues, fmt.Errorf("line[%d]: %w", idx, domain.ErrLinePriceInvalid))
			}
		default:
			issues = append(issues, fmt.Errorf("line[%d]: unknown line kind %q", idx, line.Kind))
		}
	}

	return domain.NewValidationError(issues)
}
