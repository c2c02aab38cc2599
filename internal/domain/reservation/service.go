package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PageSize is the fixed listing page size
const PageSize = 20

// CancellationNotifier tells an office owner a booking was cancelled
type CancellationNotifier interface {
	NotifyReservationCancelled(ctx context.Context, ownerID, reservationID uuid.UUID, officeTitle string)
}

// Service handles reservation business logic
type Service struct {
	repo      Repository
	offices   OfficeProvider
	notifier  CancellationNotifier // optional
	validator *Validator
}

// NewService creates reservation service
func NewService(repo Repository, offices OfficeProvider, notifier CancellationNotifier) *Service {
	return &Service{
		repo:      repo,
		offices:   offices,
		notifier:  notifier,
		validator: NewValidator(offices, repo),
	}
}

// Create validates the booking, prices it and persists it as active.
// The transactional calendar re-check can still find an overlap under
// concurrency; that surfaces as the same field error the validator
// would have produced.
func (s *Service) Create(ctx context.Context, visitorID uuid.UUID, officeID uuid.UUID, start, end time.Time) (*Reservation, error) {
	validated, err := s.validator.Validate(ctx, visitorID, officeID, start, end)
	if err != nil {
		return nil, err
	}

	res := &Reservation{
		ID:        uuid.New(),
		OfficeID:  officeID,
		UserID:    visitorID,
		StartDate: start,
		EndDate:   end,
		Price:     Total(validated.Office.PricePerDay, validated.Office.MonthlyDiscount, start, end),
	}

	if err := s.repo.CreateActive(ctx, res); err != nil {
		if IsOverlap(err) {
			return nil, ValidationErrors{"office_id": "You cannot make a reservation during this time"}
		}
		return nil, err
	}

	return res, nil
}

// List returns the requester's reservations, filtered and paginated
func (s *Service) List(ctx context.Context, filter *Filter, page int) ([]*Reservation, int, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.List(ctx, filter, &Pagination{Page: page, Limit: PageSize})
}

// Cancel transitions the requester's active reservation to cancelled
func (s *Service) Cancel(ctx context.Context, requesterID, id uuid.UUID) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}
	if res.UserID != requesterID {
		return nil, ErrNotReservationOwner
	}
	if res.Status != StatusActive {
		return nil, ErrNotActive
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	res.Status = StatusCancelled

	if s.notifier != nil {
		if office, err := s.offices.OfficeInfo(ctx, res.OfficeID); err == nil && office != nil {
			s.notifier.NotifyReservationCancelled(ctx, office.OwnerID, res.ID, office.Title)
		}
	}

	return res, nil
}

// Hydrate assembles reservation responses with the office relation
func (s *Service) Hydrate(ctx context.Context, reservations []*Reservation) ([]*ReservationResponse, error) {
	out := make([]*ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		resp := responseFromEntity(res)

		office, err := s.offices.OfficeInfo(ctx, res.OfficeID)
		if err != nil {
			return nil, err
		}
		if office != nil {
			resp.Office = &OfficeSummary{
				ID:           office.ID,
				Title:        office.Title,
				AddressLine1: office.AddressLine1,
				PricePerDay:  office.PricePerDay,
			}
		}

		out = append(out, resp)
	}
	return out, nil
}
