package reservation

import (
	"time"

	"github.com/google/uuid"
)

// Status of a reservation
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known reservation status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Reservation represents a visitor's booking of an office for a date range
type Reservation struct {
	ID       uuid.UUID `db:"id"`
	OfficeID uuid.UUID `db:"office_id"`
	UserID   uuid.UUID `db:"user_id"`

	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`

	// Price in the smallest currency unit, fixed at creation
	Price  int    `db:"price"`
	Status Status `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Overlaps reports whether the reservation shares at least one calendar
// day with [start, end].
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}
