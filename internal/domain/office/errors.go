package office

import "errors"

var (
	ErrOfficeNotFound  = errors.New("office not found")
	ErrNotOfficeOwner  = errors.New("you can only manage your own offices")
	ErrHasReservations = errors.New("office has reservations and cannot be deleted")
)

// ValidationErrors carries field-scoped validation messages
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string { return "validation failed" }
