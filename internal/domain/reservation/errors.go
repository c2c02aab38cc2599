package reservation

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotReservationOwner = errors.New("you can only manage your own reservations")
	ErrNotActive           = errors.New("only active reservations can be cancelled")

	// ErrTxConflict is returned when the booking transaction keeps
	// losing to concurrent writers after the bounded retry.
	ErrTxConflict = errors.New("reservation conflicts with a concurrent booking")
)

// ValidationErrors carries field-scoped validation messages
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string { return "validation failed" }
