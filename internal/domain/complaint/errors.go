package complaint

import (
	"fmt"

	"tradelink/internal/domain"
)

var (
	ErrComplaintAccessDenied = fmt.Errorf("complaint %w", domain.ErrAccessDenied)
	ErrCancelNotAllowed      = fmt.Errorf("cancel_order is not allowed here: %w", domain.ErrAccessDenied)
	ErrInvalidTransition     = fmt.Errorf("complaint %w", domain.ErrInvalidTransition)
	ErrAlreadyClaimed        = fmt.Errorf("complaint already claimed: %w", domain.ErrConflict)
	ErrConcurrentUpdate      = fmt.Errorf("complaint changed concurrently: %w", domain.ErrConflict)
	ErrNoAssignedSalesman    = fmt.Errorf("linking has no assigned salesman: %w", domain.ErrConflict)
	ErrEmptyDescription      = fmt.Errorf("description is required: %w", domain.ErrValidation)
	ErrUnknownAction         = fmt.Errorf("unknown complaint action: %w", domain.ErrValidation)
)
