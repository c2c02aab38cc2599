package office

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/deskhub/deskhub-api/internal/domain/image"
	"github.com/deskhub/deskhub-api/internal/domain/tag"
	"github.com/deskhub/deskhub-api/internal/domain/user"
)

func ptr[T any](v T) *T { return &v }

type fakeRepo struct {
	offices      map[uuid.UUID]*Office
	reservations map[uuid.UUID]int
	deleted      []uuid.UUID
	updated      []uuid.UUID
}

func newFakeRepo(offices ...*Office) *fakeRepo {
	m := make(map[uuid.UUID]*Office)
	for _, o := range offices {
		m[o.ID] = o
	}
	return &fakeRepo{offices: m, reservations: make(map[uuid.UUID]int)}
}

func (f *fakeRepo) Create(ctx context.Context, o *Office, tags []uuid.UUID) error {
	f.offices[o.ID] = o
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Office, error) {
	return f.offices[id], nil
}

func (f *fakeRepo) Update(ctx context.Context, o *Office, tags *[]uuid.UUID) error {
	f.offices[o.ID] = o
	f.updated = append(f.updated, o.ID)
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	delete(f.offices, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter *Filter, p *Pagination) ([]*Office, int, error) {
	var out []*Office
	for _, o := range f.offices {
		if !filter.IncludeUnapproved && !o.IsVisible() {
			continue
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListForGeoSort(ctx context.Context, filter *Filter) ([]*Office, error) {
	out, _, err := f.List(ctx, filter, nil)
	var withCoords []*Office
	for _, o := range out {
		if o.Lat.Valid && o.Lng.Valid {
			withCoords = append(withCoords, o)
		}
	}
	return withCoords, err
}

func (f *fakeRepo) CountReservations(ctx context.Context, officeID uuid.UUID) (int, error) {
	return f.reservations[officeID], nil
}

type fakeTags struct {
	known map[uuid.UUID]*tag.Tag
}

func (f *fakeTags) List(ctx context.Context) ([]*tag.Tag, error) { return nil, nil }

func (f *fakeTags) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	for _, id := range ids {
		if _, ok := f.known[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeTags) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*tag.Tag, error) {
	return nil, nil
}

type fakeUsers struct {
	users    map[uuid.UUID]*user.User
	adminIDs []uuid.UUID
}

func (f *fakeUsers) Create(ctx context.Context, u *user.User) error { return nil }

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, nil
}

func (f *fakeUsers) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f.adminIDs, nil
}

type fakeImages struct {
	byOffice map[uuid.UUID][]*image.Image
	purged   []uuid.UUID
}

func (f *fakeImages) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*image.Image, error) {
	return f.byOffice[officeID], nil
}

func (f *fakeImages) PurgeByOffice(ctx context.Context, officeID uuid.UUID) error {
	f.purged = append(f.purged, officeID)
	return nil
}

type notification struct {
	adminID  uuid.UUID
	officeID uuid.UUID
}

type fakeNotifier struct {
	sent []notification
}

func (f *fakeNotifier) NotifyOfficePendingApproval(ctx context.Context, adminID, officeID uuid.UUID, title string) {
	f.sent = append(f.sent, notification{adminID: adminID, officeID: officeID})
}

type serviceDeps struct {
	repo     *fakeRepo
	tags     *fakeTags
	users    *fakeUsers
	images   *fakeImages
	notifier *fakeNotifier
}

func newTestService(offices ...*Office) (*Service, *serviceDeps) {
	deps := &serviceDeps{
		repo:     newFakeRepo(offices...),
		tags:     &fakeTags{known: make(map[uuid.UUID]*tag.Tag)},
		users:    &fakeUsers{users: make(map[uuid.UUID]*user.User)},
		images:   &fakeImages{byOffice: make(map[uuid.UUID][]*image.Image)},
		notifier: &fakeNotifier{},
	}
	return NewService(deps.repo, deps.tags, deps.users, deps.images, deps.notifier), deps
}

func approvedOffice(owner uuid.UUID) *Office {
	return &Office{
		ID:              uuid.New(),
		UserID:          owner,
		Title:           "Riverside Loft",
		Description:     "Bright loft with fibre and standing desks",
		AddressLine1:    "12 Quay Street",
		PricePerDay:     1000,
		MonthlyDiscount: 10,
		ApprovalStatus:  ApprovalApproved,
	}
}

func TestCreateStartsPending(t *testing.T) {
	svc, _ := newTestService()
	owner := uuid.New()

	o, err := svc.Create(context.Background(), owner, &CreateOfficeRequest{
		Title:        "Harbour Desk",
		Description:  "Quiet corner space near the harbour",
		AddressLine1: "3 Dock Road",
		PricePerDay:  1500,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if o.ApprovalStatus != ApprovalPending {
		t.Fatalf("expected pending, got %s", o.ApprovalStatus)
	}
	if o.UserID != owner {
		t.Fatal("expected office owned by creator")
	}
}

func TestCreateRejectsUnknownTags(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), uuid.New(), &CreateOfficeRequest{
		Title:        "Harbour Desk",
		Description:  "Quiet corner space near the harbour",
		AddressLine1: "3 Dock Road",
		PricePerDay:  1500,
		Tags:         []uuid.UUID{uuid.New()},
	})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, ok := verrs["tags"]; !ok {
		t.Fatalf("expected tags error, got %v", verrs)
	}
}

func TestUpdateSubstantiveChangeResetsApprovalAndNotifiesAdmins(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, deps := newTestService(o)
	admin1, admin2 := uuid.New(), uuid.New()
	deps.users.adminIDs = []uuid.UUID{admin1, admin2}

	updated, err := svc.Update(context.Background(), owner, o.ID, &UpdateOfficeRequest{
		PricePerDay: ptr(2000),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.ApprovalStatus != ApprovalPending {
		t.Fatalf("expected pending, got %s", updated.ApprovalStatus)
	}
	if len(deps.notifier.sent) != 2 {
		t.Fatalf("expected one notification per admin, got %d", len(deps.notifier.sent))
	}
	for _, n := range deps.notifier.sent {
		if n.officeID != o.ID {
			t.Fatalf("notification for wrong office %s", n.officeID)
		}
	}
}

func TestUpdateCosmeticChangeKeepsApproval(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, deps := newTestService(o)
	deps.users.adminIDs = []uuid.UUID{uuid.New()}

	updated, err := svc.Update(context.Background(), owner, o.ID, &UpdateOfficeRequest{
		Hidden: ptr(true),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.ApprovalStatus != ApprovalApproved {
		t.Fatalf("expected approved, got %s", updated.ApprovalStatus)
	}
	if len(deps.notifier.sent) != 0 {
		t.Fatalf("unexpected notifications: %d", len(deps.notifier.sent))
	}
}

func TestUpdateUnchangedValueDoesNotResetApproval(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, deps := newTestService(o)
	deps.users.adminIDs = []uuid.UUID{uuid.New()}

	updated, err := svc.Update(context.Background(), owner, o.ID, &UpdateOfficeRequest{
		PricePerDay: ptr(o.PricePerDay),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.ApprovalStatus != ApprovalApproved {
		t.Fatalf("expected approved, got %s", updated.ApprovalStatus)
	}
	if len(deps.notifier.sent) != 0 {
		t.Fatal("unexpected notification for no-op edit")
	}
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	o := approvedOffice(uuid.New())
	svc, _ := newTestService(o)

	_, err := svc.Update(context.Background(), uuid.New(), o.ID, &UpdateOfficeRequest{
		Title: ptr("New Title"),
	})
	if err != ErrNotOfficeOwner {
		t.Fatalf("expected ErrNotOfficeOwner, got %v", err)
	}
}

func TestUpdateRejectsForeignFeaturedImage(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, _ := newTestService(o)

	_, err := svc.Update(context.Background(), owner, o.ID, &UpdateOfficeRequest{
		FeaturedImageID: ptr(uuid.New()),
	})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, ok := verrs["featured_image_id"]; !ok {
		t.Fatalf("expected featured_image_id error, got %v", verrs)
	}
}

func TestUpdateAcceptsOwnFeaturedImage(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, deps := newTestService(o)
	img := &image.Image{ID: uuid.New(), ResourceType: image.ResourceOffice, ResourceID: o.ID}
	deps.images.byOffice[o.ID] = []*image.Image{img}

	updated, err := svc.Update(context.Background(), owner, o.ID, &UpdateOfficeRequest{
		FeaturedImageID: ptr(img.ID),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !updated.FeaturedImageID.Valid || updated.FeaturedImageID.UUID != img.ID {
		t.Fatal("expected featured image set")
	}
	if updated.ApprovalStatus != ApprovalApproved {
		t.Fatalf("cosmetic edit should keep approval, got %s", updated.ApprovalStatus)
	}
}

func TestDeleteRejectsOfficeWithReservations(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, deps := newTestService(o)
	deps.repo.reservations[o.ID] = 1

	err := svc.Delete(context.Background(), owner, o.ID)
	if err != ErrHasReservations {
		t.Fatalf("expected ErrHasReservations, got %v", err)
	}
	if len(deps.repo.deleted) != 0 {
		t.Fatal("office must not be deleted")
	}
}

func TestDeletePurgesImages(t *testing.T) {
	owner := uuid.New()
	o := approvedOffice(owner)
	svc, deps := newTestService(o)

	if err := svc.Delete(context.Background(), owner, o.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(deps.repo.deleted) != 1 || deps.repo.deleted[0] != o.ID {
		t.Fatal("expected soft delete")
	}
	if len(deps.images.purged) != 1 || deps.images.purged[0] != o.ID {
		t.Fatal("expected image purge")
	}
}

func TestListHidesUnapprovedFromStrangers(t *testing.T) {
	owner := uuid.New()
	pending := approvedOffice(owner)
	pending.ApprovalStatus = ApprovalPending
	svc, _ := newTestService(pending)

	offices, total, err := svc.List(context.Background(), uuid.Nil, &ListQuery{Page: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 0 || len(offices) != 0 {
		t.Fatalf("expected empty listing, got %d", total)
	}
}

func TestListShowsOwnerTheirUnapprovedOffices(t *testing.T) {
	owner := uuid.New()
	pending := approvedOffice(owner)
	pending.ApprovalStatus = ApprovalPending
	svc, _ := newTestService(pending)

	offices, total, err := svc.List(context.Background(), owner, &ListQuery{Page: 1, UserID: &owner})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 1 || len(offices) != 1 {
		t.Fatalf("expected own pending office listed, got %d", total)
	}
}

func TestListNearestOrdersByDistance(t *testing.T) {
	owner := uuid.New()
	lisbon := approvedOffice(owner)
	lisbon.Lat = sql.NullFloat64{Float64: 38.7223, Valid: true}
	lisbon.Lng = sql.NullFloat64{Float64: -9.1393, Valid: true}
	porto := approvedOffice(owner)
	porto.Lat = sql.NullFloat64{Float64: 41.1579, Valid: true}
	porto.Lng = sql.NullFloat64{Float64: -8.6291, Valid: true}
	svc, _ := newTestService(lisbon, porto)

	// Query point near Porto.
	lat, lng := 41.0, -8.6
	offices, total, err := svc.List(context.Background(), uuid.Nil, &ListQuery{
		Page: 1, Lat: &lat, Lng: &lng,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 offices, got %d", total)
	}
	if offices[0].ID != porto.ID {
		t.Fatal("expected Porto office first")
	}
	if offices[1].ID != lisbon.ID {
		t.Fatal("expected Lisbon office second")
	}
}
