package linking

import (
	"fmt"

	"tradelink/internal/domain"
)

var (
	ErrLinkingAccessDenied = fmt.Errorf("linking %w", domain.ErrAccessDenied)
	ErrNotConsumer         = fmt.Errorf("only consumer companies can request a linking: %w", domain.ErrAccessDenied)
	ErrNotSupplier         = fmt.Errorf("target company is not a supplier: %w", domain.ErrValidation)
	ErrLinkingExists       = fmt.Errorf("a pending or accepted linking already exists: %w", domain.ErrConflict)
	ErrAlreadyLinked       = fmt.Errorf("companies are already linked: %w", domain.ErrConflict)
	ErrNotPending          = fmt.Errorf("linking is not pending: %w", domain.ErrInvalidTransition)
)
