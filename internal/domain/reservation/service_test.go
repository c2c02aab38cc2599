package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	reservations map[uuid.UUID]*Reservation
	created      []*Reservation
}

func newFakeRepo(reservations ...*Reservation) *fakeRepo {
	m := make(map[uuid.UUID]*Reservation)
	for _, res := range reservations {
		m[res.ID] = res
	}
	return &fakeRepo{reservations: m}
}

func (f *fakeRepo) CreateActive(ctx context.Context, res *Reservation) error {
	conflict, _ := f.HasConflict(ctx, res.OfficeID, res.StartDate, res.EndDate)
	if conflict {
		return errOverlapInTx
	}
	res.Status = StatusActive
	res.CreatedAt = time.Now()
	f.reservations[res.ID] = res
	f.created = append(f.created, res)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return f.reservations[id], nil
}

func (f *fakeRepo) List(ctx context.Context, filter *Filter, p *Pagination) ([]*Reservation, int, error) {
	var out []*Reservation
	for _, res := range f.reservations {
		if res.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && res.Status != *filter.Status {
			continue
		}
		out = append(out, res)
	}
	return out, len(out), nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if res, ok := f.reservations[id]; ok {
		res.Status = status
	}
	return nil
}

func (f *fakeRepo) HasConflict(ctx context.Context, officeID uuid.UUID, start, end time.Time) (bool, error) {
	for _, res := range f.reservations {
		if res.OfficeID == officeID && res.Status == StatusActive && res.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func newBookingService(office *OfficeInfo, existing ...*Reservation) (*Service, *fakeRepo) {
	offices := &fakeOffices{offices: map[uuid.UUID]*OfficeInfo{}}
	if office != nil {
		offices.offices[office.ID] = office
	}
	repo := newFakeRepo(existing...)
	return NewService(repo, offices, nil), repo
}

func TestCreatePricesAndActivates(t *testing.T) {
	office := bookableOffice(uuid.New())
	svc, repo := newBookingService(office)
	visitor := uuid.New()

	res, err := svc.Create(context.Background(), visitor, office.ID, future(1), future(41))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != StatusActive {
		t.Fatalf("expected active, got %s", res.Status)
	}
	if res.Price != 36000 {
		t.Fatalf("expected price 36000, got %d", res.Price)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted reservation, got %d", len(repo.created))
	}
}

func TestCreateRejectsOverlappingRange(t *testing.T) {
	office := bookableOffice(uuid.New())
	existing := &Reservation{
		ID:        uuid.New(),
		OfficeID:  office.ID,
		UserID:    uuid.New(),
		StartDate: future(5),
		EndDate:   future(10),
		Status:    StatusActive,
	}
	svc, _ := newBookingService(office, existing)

	_, err := svc.Create(context.Background(), uuid.New(), office.ID, future(8), future(12))
	assertFieldError(t, err, "office_id", "You cannot make a reservation during this time")
}

func TestCreateAllowsAdjacentRange(t *testing.T) {
	office := bookableOffice(uuid.New())
	existing := &Reservation{
		ID:        uuid.New(),
		OfficeID:  office.ID,
		UserID:    uuid.New(),
		StartDate: future(5),
		EndDate:   future(10),
		Status:    StatusActive,
	}
	svc, _ := newBookingService(office, existing)

	if _, err := svc.Create(context.Background(), uuid.New(), office.ID, future(11), future(15)); err != nil {
		t.Fatalf("adjacent range must not conflict: %v", err)
	}
}

func TestCreateIgnoresCancelledReservations(t *testing.T) {
	office := bookableOffice(uuid.New())
	existing := &Reservation{
		ID:        uuid.New(),
		OfficeID:  office.ID,
		UserID:    uuid.New(),
		StartDate: future(5),
		EndDate:   future(10),
		Status:    StatusCancelled,
	}
	svc, _ := newBookingService(office, existing)

	if _, err := svc.Create(context.Background(), uuid.New(), office.ID, future(6), future(9)); err != nil {
		t.Fatalf("cancelled reservation must not conflict: %v", err)
	}
}

func TestCreateRaceLoserGetsOverlapError(t *testing.T) {
	office := bookableOffice(uuid.New())
	svc, repo := newBookingService(office)
	visitor := uuid.New()

	if _, err := svc.Create(context.Background(), visitor, office.ID, future(1), future(5)); err != nil {
		t.Fatalf("first booking must succeed: %v", err)
	}
	_, err := svc.Create(context.Background(), uuid.New(), office.ID, future(1), future(5))
	assertFieldError(t, err, "office_id", "You cannot make a reservation during this time")
	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one persisted booking, got %d", len(repo.created))
	}
}

func TestCancelActiveReservation(t *testing.T) {
	visitor := uuid.New()
	res := &Reservation{
		ID:     uuid.New(),
		UserID: visitor,
		Status: StatusActive,
	}
	svc, repo := newBookingService(nil, res)

	cancelled, err := svc.Cancel(context.Background(), visitor, res.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if repo.reservations[res.ID].Status != StatusCancelled {
		t.Fatal("status not persisted")
	}
}

func TestCancelRejectsNonOwner(t *testing.T) {
	res := &Reservation{ID: uuid.New(), UserID: uuid.New(), Status: StatusActive}
	svc, _ := newBookingService(nil, res)

	_, err := svc.Cancel(context.Background(), uuid.New(), res.ID)
	if !errors.Is(err, ErrNotReservationOwner) {
		t.Fatalf("expected ErrNotReservationOwner, got %v", err)
	}
}

func TestCancelRejectsCompletedReservation(t *testing.T) {
	visitor := uuid.New()
	res := &Reservation{ID: uuid.New(), UserID: visitor, Status: StatusCompleted}
	svc, _ := newBookingService(nil, res)

	_, err := svc.Cancel(context.Background(), visitor, res.ID)
	if !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
}

func TestCancelUnknownReservation(t *testing.T) {
	svc, _ := newBookingService(nil)

	_, err := svc.Cancel(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}
