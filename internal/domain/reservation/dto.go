package reservation

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for reservation dates
const DateLayout = "2006-01-02"

// CreateReservationRequest for POST /reservations
type CreateReservationRequest struct {
	OfficeID  uuid.UUID `json:"office_id" validate:"required"`
	StartDate string    `json:"start_date" validate:"required,date"`
	EndDate   string    `json:"end_date" validate:"required,date"`
}

// OfficeSummary is the office relation embedded in reservation payloads
type OfficeSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	AddressLine1 string    `json:"address_line1"`
	PricePerDay  int       `json:"price_per_day"`
}

// ReservationResponse is the public reservation representation
type ReservationResponse struct {
	ID        uuid.UUID      `json:"id"`
	OfficeID  uuid.UUID      `json:"office_id"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Price     int            `json:"price"`
	Status    Status         `json:"status"`
	Office    *OfficeSummary `json:"office,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func responseFromEntity(r *Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:        r.ID,
		OfficeID:  r.OfficeID,
		StartDate: r.StartDate.Format(DateLayout),
		EndDate:   r.EndDate.Format(DateLayout),
		Price:     r.Price,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
