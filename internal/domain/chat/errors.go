package chat

import (
	"errors"
	"fmt"

	"tradelink/internal/domain"
)

var (
	ErrEmptyBody = fmt.Errorf("message body cannot be empty: %w", domain.ErrValidation)
	// ErrOrderChatNotReady is returned when an order exists but its chat
	// is not visible yet; callers should retry.
	ErrOrderChatNotReady = fmt.Errorf("order chat %w", domain.ErrUnavailable)
	ErrChatAccessDenied  = fmt.Errorf("chat %w", domain.ErrAccessDenied)
	ErrHubClosed         = errors.New("chat hub is closed")
)
