package office

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub-api/internal/domain/image"
	"github.com/deskhub/deskhub-api/internal/domain/tag"
	"github.com/deskhub/deskhub-api/internal/domain/user"
	"github.com/deskhub/deskhub-api/internal/pkg/geo"
)

// ImageStore defines the image operations the office domain needs
type ImageStore interface {
	ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*image.Image, error)
	PurgeByOffice(ctx context.Context, officeID uuid.UUID) error
}

// AdminNotifier dispatches approval-queue notifications to administrators
type AdminNotifier interface {
	NotifyOfficePendingApproval(ctx context.Context, adminID, officeID uuid.UUID, officeTitle string)
}

// ListQuery carries the parsed listing filters
type ListQuery struct {
	UserID    *uuid.UUID
	VisitorID *uuid.UUID
	TagIDs    []uuid.UUID
	Lat       *float64
	Lng       *float64
	Page      int
}

// PageSize is the fixed listing page size
const PageSize = 20

// Service handles office business logic
type Service struct {
	repo     Repository
	tags     tag.Repository
	users    user.Repository
	images   ImageStore
	notifier AdminNotifier
}

// NewService creates office service
func NewService(repo Repository, tags tag.Repository, users user.Repository, images ImageStore, notifier AdminNotifier) *Service {
	return &Service{
		repo:     repo,
		tags:     tags,
		users:    users,
		images:   images,
		notifier: notifier,
	}
}

// Create creates a new office in pending state
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateOfficeRequest) (*Office, error) {
	ok, err := s.tags.ExistAll(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ValidationErrors{"tags": "One or more tags do not exist"}
	}

	o := &Office{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		AddressLine1:    req.AddressLine1,
		PricePerDay:     req.PricePerDay,
		MonthlyDiscount: req.MonthlyDiscount,
		ApprovalStatus:  ApprovalPending,
		Hidden:          req.Hidden,
	}
	if req.Lat != nil {
		o.Lat = sql.NullFloat64{Float64: *req.Lat, Valid: true}
	}
	if req.Lng != nil {
		o.Lng = sql.NullFloat64{Float64: *req.Lng, Valid: true}
	}

	if err := s.repo.Create(ctx, o, req.Tags); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID returns an office or ErrOfficeNotFound
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Office, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOfficeNotFound
	}
	return o, nil
}

// Update applies an edit, syncs tags atomically, resets approval state
// when a substantive field changed and fans a notification out to every
// administrator, once per triggering edit.
func (s *Service) Update(ctx context.Context, userID, officeID uuid.UUID, req *UpdateOfficeRequest) (*Office, error) {
	o, err := s.repo.GetByID(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOfficeNotFound
	}
	if !o.CanBeEditedBy(userID) {
		return nil, ErrNotOfficeOwner
	}

	if req.FeaturedImageID != nil {
		owned, err := s.imageBelongsToOffice(ctx, *req.FeaturedImageID, officeID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, ValidationErrors{"featured_image_id": "The featured image must belong to this office"}
		}
	}

	if req.Tags != nil {
		ok, err := s.tags.ExistAll(ctx, *req.Tags)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ValidationErrors{"tags": "One or more tags do not exist"}
		}
	}

	changed := applyUpdate(o, req)

	next, notify := Transition(o.ApprovalStatus, changed)
	o.ApprovalStatus = next

	if err := s.repo.Update(ctx, o, req.Tags); err != nil {
		return nil, err
	}

	if notify {
		s.notifyAdmins(ctx, o)
	}

	return o, nil
}

// applyUpdate copies the non-nil request fields onto the office and
// returns the names of the fields whose value actually changed.
func applyUpdate(o *Office, req *UpdateOfficeRequest) []string {
	var changed []string

	if req.Title != nil && *req.Title != o.Title {
		o.Title = *req.Title
		changed = append(changed, FieldTitle)
	}
	if req.Description != nil && *req.Description != o.Description {
		o.Description = *req.Description
		changed = append(changed, FieldDescription)
	}
	if req.AddressLine1 != nil && *req.AddressLine1 != o.AddressLine1 {
		o.AddressLine1 = *req.AddressLine1
		changed = append(changed, FieldAddressLine1)
	}
	if req.Lat != nil && (!o.Lat.Valid || o.Lat.Float64 != *req.Lat) {
		o.Lat = sql.NullFloat64{Float64: *req.Lat, Valid: true}
		changed = append(changed, FieldLat)
	}
	if req.Lng != nil && (!o.Lng.Valid || o.Lng.Float64 != *req.Lng) {
		o.Lng = sql.NullFloat64{Float64: *req.Lng, Valid: true}
		changed = append(changed, FieldLng)
	}
	if req.PricePerDay != nil && *req.PricePerDay != o.PricePerDay {
		o.PricePerDay = *req.PricePerDay
		changed = append(changed, FieldPricePerDay)
	}
	if req.MonthlyDiscount != nil && *req.MonthlyDiscount != o.MonthlyDiscount {
		o.MonthlyDiscount = *req.MonthlyDiscount
		changed = append(changed, FieldMonthlyDiscount)
	}
	if req.Hidden != nil && *req.Hidden != o.Hidden {
		o.Hidden = *req.Hidden
		changed = append(changed, FieldHidden)
	}
	if req.FeaturedImageID != nil && (!o.FeaturedImageID.Valid || o.FeaturedImageID.UUID != *req.FeaturedImageID) {
		o.FeaturedImageID = uuid.NullUUID{UUID: *req.FeaturedImageID, Valid: true}
		changed = append(changed, FieldFeaturedImage)
	}
	if req.Tags != nil {
		changed = append(changed, FieldTags)
	}

	return changed
}

func (s *Service) imageBelongsToOffice(ctx context.Context, imageID, officeID uuid.UUID) (bool, error) {
	images, err := s.images.ListByOffice(ctx, officeID)
	if err != nil {
		return false, err
	}
	for _, img := range images {
		if img.ID == imageID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) notifyAdmins(ctx context.Context, o *Office) {
	adminIDs, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		log.Error().Err(err).Str("office_id", o.ID.String()).Msg("failed to list admins for approval notification")
		return
	}
	for _, adminID := range adminIDs {
		s.notifier.NotifyOfficePendingApproval(ctx, adminID, o.ID, o.Title)
	}
}

// Delete soft-removes a reservation-free office and purges its images
func (s *Service) Delete(ctx context.Context, userID, officeID uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, officeID)
	if err != nil {
		return err
	}
	if o == nil {
		return ErrOfficeNotFound
	}
	if !o.CanBeEditedBy(userID) {
		return ErrNotOfficeOwner
	}

	count, err := s.repo.CountReservations(ctx, officeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasReservations
	}

	if err := s.repo.SoftDelete(ctx, officeID); err != nil {
		return err
	}
	return s.images.PurgeByOffice(ctx, officeID)
}

// List builds the public listing. Visibility: approved and not hidden,
// unless the query is scoped to the authenticated requester's own
// offices. With coordinates, results are ordered nearest first using an
// explicit haversine sort key; otherwise newest first.
func (s *Service) List(ctx context.Context, requesterID uuid.UUID, q *ListQuery) ([]*Office, int, error) {
	filter := &Filter{
		UserID:    q.UserID,
		VisitorID: q.VisitorID,
		TagIDs:    q.TagIDs,
	}
	if q.UserID != nil && requesterID != uuid.Nil && *q.UserID == requesterID {
		filter.IncludeUnapproved = true
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	if q.Lat != nil && q.Lng != nil {
		return s.listNearest(ctx, filter, *q.Lat, *q.Lng, page)
	}

	offices, total, err := s.repo.List(ctx, filter, &Pagination{Page: page, Limit: PageSize})
	return offices, total, err
}

func (s *Service) listNearest(ctx context.Context, filter *Filter, lat, lng float64, page int) ([]*Office, int, error) {
	offices, err := s.repo.ListForGeoSort(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(offices, func(i, j int) bool {
		di := geo.Distance(lat, lng, offices[i].Lat.Float64, offices[i].Lng.Float64)
		dj := geo.Distance(lat, lng, offices[j].Lat.Float64, offices[j].Lng.Float64)
		return di < dj
	})

	total := len(offices)
	start := (page - 1) * PageSize
	if start >= total {
		return []*Office{}, total, nil
	}
	end := start + PageSize
	if end > total {
		end = total
	}
	return offices[start:end], total, nil
}

// Hydrate assembles office responses with images, tags and owner
func (s *Service) Hydrate(ctx context.Context, offices []*Office) ([]*OfficeResponse, error) {
	out := make([]*OfficeResponse, 0, len(offices))
	for _, o := range offices {
		resp := responseFromEntity(o)

		images, err := s.images.ListByOffice(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if images != nil {
			resp.Images = images
		}

		tags, err := s.tags.ListByOffice(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if tags != nil {
			resp.Tags = tags
		}

		owner, err := s.users.GetByID(ctx, o.UserID)
		if err != nil {
			return nil, err
		}
		if owner != nil {
			resp.User = &OwnerResponse{ID: owner.ID, Name: owner.Name}
		}

		out = append(out, resp)
	}
	return out, nil
}
