package upload

import (
	"fmt"

	"tradelink/internal/domain"
)

var (
	ErrStorageDisabled     = fmt.Errorf("object storage is not configured: %w", domain.ErrUnavailable)
	ErrExtensionNotAllowed = fmt.Errorf("file extension is not allowed: %w", domain.ErrValidation)
)
