package order

import (
	"fmt"

	"tradelink/internal/domain"
)

var (
	ErrOrderAccessDenied   = fmt.Errorf("order %w", domain.ErrAccessDenied)
	ErrEmptyOrder          = fmt.Errorf("order must contain at least one product: %w", domain.ErrValidation)
	ErrInvalidQuantity     = fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	ErrDuplicateLine       = fmt.Errorf("product listed more than once: %w", domain.ErrValidation)
	ErrProductNotInCatalog = fmt.Errorf("product is not sold by this supplier: %w", domain.ErrValidation)
	ErrBelowMinimumOrder   = fmt.Errorf("quantity below minimum order: %w", domain.ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("unknown order status: %w", domain.ErrValidation)
	ErrProductUnavailable  = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrInsufficientStock   = fmt.Errorf("insufficient stock: %w", domain.ErrConflict)
	ErrOrderRejected       = fmt.Errorf("rejected order cannot change status: %w", domain.ErrInvalidTransition)
)
