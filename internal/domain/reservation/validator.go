package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OfficeInfo is the office state the booking rules need
type OfficeInfo struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	PricePerDay     int
	MonthlyDiscount int
	Approved        bool
	Hidden          bool

	Title        string
	AddressLine1 string
}

// Bookable reports whether visitors may reserve the office
func (o *OfficeInfo) Bookable() bool {
	return o.Approved && !o.Hidden
}

// OfficeProvider resolves offices for booking validation
type OfficeProvider interface {
	OfficeInfo(ctx context.Context, id uuid.UUID) (*OfficeInfo, error)
}

// AvailabilityChecker reports overlapping active reservations
type AvailabilityChecker interface {
	HasConflict(ctx context.Context, officeID uuid.UUID, start, end time.Time) (bool, error)
}

// minStayDays is the minimum billable stay length
const minStayDays = 2

// Validator runs the booking business rules
type Validator struct {
	offices      OfficeProvider
	availability AvailabilityChecker
}

// NewValidator creates reservation validator
func NewValidator(offices OfficeProvider, availability AvailabilityChecker) *Validator {
	return &Validator{offices: offices, availability: availability}
}

// ValidatedRequest is a booking request that passed every rule
type ValidatedRequest struct {
	Office    *OfficeInfo
	VisitorID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// Validate runs every booking rule and collects the failures into
// field-scoped messages. The office_id and date fields are independent
// error buckets; within the office_id bucket the first failing rule
// wins, and the overlap check only runs once both buckets are clean.
func (v *Validator) Validate(ctx context.Context, visitorID, officeID uuid.UUID, start, end time.Time) (*ValidatedRequest, error) {
	errs := ValidationErrors{}

	office, err := v.offices.OfficeInfo(ctx, officeID)
	if err != nil {
		return nil, err
	}
	switch {
	case office == nil:
		errs["office_id"] = "Invalid office_id"
	case office.OwnerID == visitorID:
		errs["office_id"] = "You cannot make a reservation on your own office"
	case !office.Bookable():
		errs["office_id"] = "You cannot make a reservation on a hidden office"
	}

	today := truncateToDay(time.Now())
	if !start.After(today) {
		errs["start_date"] = "The start date must be a date after today."
	}
	if !end.After(start) || Nights(start, end) < minStayDays {
		errs["end_date"] = "The end date must be a date after start date."
	}

	if len(errs) == 0 {
		conflict, err := v.availability.HasConflict(ctx, officeID, start, end)
		if err != nil {
			return nil, err
		}
		if conflict {
			errs["office_id"] = "You cannot make a reservation during this time"
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &ValidatedRequest{
		Office:    office,
		VisitorID: visitorID,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
