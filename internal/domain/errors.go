package domain

import "errors"

// Errores de transporte. Los adapters mapean los códigos de Discord a estos.
var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrForbidden        = errors.New("forbidden")
	ErrRecipientBlocked = errors.New("recipient cannot receive direct messages")
)

// Unreachable: errores esperables al mandar (no se reportan, solo se loguean).
func Unreachable(err error) bool {
	return errors.Is(err, ErrChannelNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrRecipientBlocked)
}
