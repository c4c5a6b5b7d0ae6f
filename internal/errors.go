package internal

import "errors"

// Sentinel errors shared by the storage and service layers.
var (
	// ErrNotFound is returned by point lookups that matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrLastSet is returned when a caller tries to remove the only
	// remaining set of an exercise. State is left unchanged.
	ErrLastSet = errors.New("cannot remove the last remaining set")
)

// AppError is the error shape carried in API response envelopes.
type AppError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(status int, msg string) *AppError {
	return &AppError{Status: status, Message: msg}
}
