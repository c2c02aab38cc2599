package office

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus gates public visibility of an office listing
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Office represents a listed coworking space
type Office struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	Title        string `db:"title"`
	Description  string `db:"description"`
	AddressLine1 string `db:"address_line1"`

	Lat sql.NullFloat64 `db:"lat"`
	Lng sql.NullFloat64 `db:"lng"`

	// Price in the smallest currency unit per day
	PricePerDay     int `db:"price_per_day"`
	MonthlyDiscount int `db:"monthly_discount"`

	ApprovalStatus  ApprovalStatus `db:"approval_status"`
	Hidden          bool           `db:"hidden"`
	FeaturedImageID uuid.NullUUID  `db:"featured_image_id"`

	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`

	// Annotated by queries, not a column: count of active reservations.
	ReservationsCount int `db:"reservations_count"`
}

// IsVisible reports whether the office appears in the public listing
func (o *Office) IsVisible() bool {
	return o.ApprovalStatus == ApprovalApproved && !o.Hidden
}

// CanBeEditedBy checks if user can edit this office
func (o *Office) CanBeEditedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}
