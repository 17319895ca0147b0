package domain

import "errors"

// Error kinds. Feature packages wrap these so handlers can map any
// concrete error to a status with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	// ErrUnavailable marks transient sequencing failures; retrying may succeed.
	ErrUnavailable = errors.New("temporarily unavailable")
)

// Models lists every persisted entity, in dependency order.
func Models() []any {
	return []any{
		&Company{},
		&User{},
		&Linking{},
		&Product{},
		&Order{},
		&OrderLineItem{},
		&Complaint{},
		&ComplaintHistory{},
		&Chat{},
		&Message{},
		&Upload{},
	}
}
