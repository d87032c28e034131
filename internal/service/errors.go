package service

import "errors"

var (
	ErrNotFound         = errors.New("measurement not found")
	ErrInsufficientData = errors.New("at least two measurements are required")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}
