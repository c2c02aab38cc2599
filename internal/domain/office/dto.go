package office

import (
	"time"

	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/domain/image"
	"github.com/deskhub/deskhub-api/internal/domain/tag"
)

// CreateOfficeRequest for POST /offices
type CreateOfficeRequest struct {
	Title           string      `json:"title" validate:"required,min=3,max=200"`
	Description     string      `json:"description" validate:"required,min=10,max=5000"`
	AddressLine1    string      `json:"address_line1" validate:"required,max=500"`
	Lat             *float64    `json:"lat" validate:"omitempty,latitude"`
	Lng             *float64    `json:"lng" validate:"omitempty,longitude"`
	PricePerDay     int         `json:"price_per_day" validate:"required,gte=100"`
	MonthlyDiscount int         `json:"monthly_discount" validate:"gte=0,lte=90"`
	Hidden          bool        `json:"hidden"`
	Tags            []uuid.UUID `json:"tags" validate:"omitempty,max=20"`
}

// UpdateOfficeRequest for PUT /offices/{id}. Nil fields are untouched.
type UpdateOfficeRequest struct {
	Title           *string      `json:"title" validate:"omitempty,min=3,max=200"`
	Description     *string      `json:"description" validate:"omitempty,min=10,max=5000"`
	AddressLine1    *string      `json:"address_line1" validate:"omitempty,max=500"`
	Lat             *float64     `json:"lat" validate:"omitempty,latitude"`
	Lng             *float64     `json:"lng" validate:"omitempty,longitude"`
	PricePerDay     *int         `json:"price_per_day" validate:"omitempty,gte=100"`
	MonthlyDiscount *int         `json:"monthly_discount" validate:"omitempty,gte=0,lte=90"`
	Hidden          *bool        `json:"hidden"`
	FeaturedImageID *uuid.UUID   `json:"featured_image_id"`
	Tags            *[]uuid.UUID `json:"tags" validate:"omitempty,max=20"`
}

// OwnerResponse is the owner summary embedded in office payloads
type OwnerResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OfficeResponse is the public office representation
type OfficeResponse struct {
	ID                uuid.UUID      `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	AddressLine1      string         `json:"address_line1"`
	Lat               *float64       `json:"lat"`
	Lng               *float64       `json:"lng"`
	PricePerDay       int            `json:"price_per_day"`
	MonthlyDiscount   int            `json:"monthly_discount"`
	ApprovalStatus    ApprovalStatus `json:"approval_status"`
	Hidden            bool           `json:"hidden"`
	FeaturedImageID   *uuid.UUID     `json:"featured_image_id"`
	ReservationsCount int            `json:"reservations_count"`
	User              *OwnerResponse `json:"user,omitempty"`
	Images            []*image.Image `json:"images"`
	Tags              []*tag.Tag     `json:"tags"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func responseFromEntity(o *Office) *OfficeResponse {
	resp := &OfficeResponse{
		ID:                o.ID,
		Title:             o.Title,
		Description:       o.Description,
		AddressLine1:      o.AddressLine1,
		PricePerDay:       o.PricePerDay,
		MonthlyDiscount:   o.MonthlyDiscount,
		ApprovalStatus:    o.ApprovalStatus,
		Hidden:            o.Hidden,
		ReservationsCount: o.ReservationsCount,
		Images:            []*image.Image{},
		Tags:              []*tag.Tag{},
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.Lat.Valid {
		lat := o.Lat.Float64
		resp.Lat = &lat
	}
	if o.Lng.Valid {
		lng := o.Lng.Float64
		resp.Lng = &lng
	}
	if o.FeaturedImageID.Valid {
		id := o.FeaturedImageID.UUID
		resp.FeaturedImageID = &id
	}
	return resp
}
