package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrOutOfStock is returned when a purchase hits an empty shelf.
	ErrOutOfStock = errors.New("out of stock")
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput marks request payloads that fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError is an ErrInvalidInput carrying a human-readable reason.
type InputError struct {
	Reason string
}

// Invalid returns an InputError for reason.
func Invalid(reason string) error {
	return &InputError{Reason: reason}
}

func (e *InputError) Error() string { return e.Reason }

func (e *InputError) Unwrap() error { return ErrInvalidInput }
