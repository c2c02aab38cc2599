package office

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/deskhub/deskhub-api/internal/middleware"
)

// Filter represents office listing filters
type Filter struct {
	UserID    *uuid.UUID
	VisitorID *uuid.UUID
	TagIDs    []uuid.UUID

	// IncludeUnapproved lifts the approved+visible predicate when the
	// requester filters by their own user id.
	IncludeUnapproved bool
}

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}

// geoCandidateLimit bounds the candidate set fetched for in-process
// nearest-first ordering.
const geoCandidateLimit = 1000

// Repository defines office data access
type Repository interface {
	Create(ctx context.Context, o *Office, tags []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Office, error)
	Update(ctx context.Context, o *Office, tags *[]uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Office, int, error)
	ListForGeoSort(ctx context.Context, filter *Filter) ([]*Office, error)
	CountReservations(ctx context.Context, officeID uuid.UUID) (int, error)
}

type repository struct {
	db *sqlx.DB
}

const officeSelectColumns = `
	id, user_id, title, description, address_line1, lat, lng,
	price_per_day, monthly_discount, approval_status, hidden,
	featured_image_id, created_at, updated_at, deleted_at,
	(SELECT COUNT(*) FROM reservations r
	 WHERE r.office_id = offices.id AND r.status = 'active') AS reservations_count
`

// NewRepository creates office repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Office, tags []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO offices (
			id, user_id, title, description, address_line1, lat, lng,
			price_per_day, monthly_discount, approval_status, hidden,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13
		)
	`
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, query,
		o.ID, o.UserID, o.Title, o.Description, o.AddressLine1, o.Lat, o.Lng,
		o.PricePerDay, o.MonthlyDiscount, o.ApprovalStatus, o.Hidden,
		o.CreatedAt, o.UpdatedAt,
	); err != nil {
		log.Error().
			Str("request_id", middleware.GetRequestID(ctx)).
			Str("query", "offices.create").
			Str("office_id", o.ID.String()).
			Err(err).
			Msg("office insert failed")
		return err
	}

	if err := attachTags(ctx, tx, o.ID, tags); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Office, error) {
	query := `
		SELECT ` + officeSelectColumns + ` FROM offices
		WHERE id = $1 AND deleted_at IS NULL
	`
	var o Office
	err := r.db.GetContext(ctx, &o, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Update writes the office and, when tags is non-nil, syncs the tag
// attachments in the same transaction.
func (r *repository) Update(ctx context.Context, o *Office, tags *[]uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE offices SET
			title = $2, description = $3, address_line1 = $4,
			lat = $5, lng = $6,
			price_per_day = $7, monthly_discount = $8,
			approval_status = $9, hidden = $10, featured_image_id = $11,
			updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL
	`
	o.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx, query,
		o.ID, o.Title, o.Description, o.AddressLine1,
		o.Lat, o.Lng,
		o.PricePerDay, o.MonthlyDiscount,
		o.ApprovalStatus, o.Hidden, o.FeaturedImageID,
		o.UpdatedAt,
	); err != nil {
		log.Error().
			Str("request_id", middleware.GetRequestID(ctx)).
			Str("query", "offices.update").
			Str("office_id", o.ID.String()).
			Err(err).
			Msg("office update failed")
		return err
	}

	if tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM office_tag WHERE office_id = $1`, o.ID); err != nil {
			return err
		}
		if err := attachTags(ctx, tx, o.ID, *tags); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func attachTags(ctx context.Context, tx *sqlx.Tx, officeID uuid.UUID, tags []uuid.UUID) error {
	for _, tagID := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO office_tag (office_id, tag_id, attached_at) VALUES ($1, $2, $3)`,
			officeID, tagID, time.Now(),
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE offices SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}

func buildListWhere(filter *Filter) (string, []interface{}) {
	where := `deleted_at IS NULL`
	args := []interface{}{}
	n := 1

	if !filter.IncludeUnapproved {
		where += ` AND approval_status = 'approved' AND NOT hidden`
	}
	if filter.UserID != nil {
		where += ` AND user_id = $` + itoa(n)
		args = append(args, *filter.UserID)
		n++
	}
	if filter.VisitorID != nil {
		where += ` AND EXISTS (
			SELECT 1 FROM reservations res
			WHERE res.office_id = offices.id AND res.user_id = $` + itoa(n) + `)`
		args = append(args, *filter.VisitorID)
		n++
	}
	if len(filter.TagIDs) > 0 {
		strIDs := make([]string, len(filter.TagIDs))
		for i, id := range filter.TagIDs {
			strIDs[i] = id.String()
		}
		where += ` AND EXISTS (
			SELECT 1 FROM office_tag ot
			WHERE ot.office_id = offices.id AND ot.tag_id = ANY($` + itoa(n) + `))`
		args = append(args, pq.Array(strIDs))
		n++
	}

	return where, args
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Office, int, error) {
	where, args := buildListWhere(filter)

	countQuery := `SELECT COUNT(*) FROM offices WHERE ` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := `
		SELECT ` + officeSelectColumns + ` FROM offices
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + itoa(pagination.Limit) + ` OFFSET ` + itoa(offset)

	var offices []*Office
	if err := r.db.SelectContext(ctx, &offices, query, args...); err != nil {
		return nil, 0, err
	}

	return offices, total, nil
}

// ListForGeoSort returns the unpaginated candidate set for in-process
// nearest-first ordering. Offices without coordinates are excluded.
func (r *repository) ListForGeoSort(ctx context.Context, filter *Filter) ([]*Office, error) {
	where, args := buildListWhere(filter)

	query := `
		SELECT ` + officeSelectColumns + ` FROM offices
		WHERE ` + where + ` AND lat IS NOT NULL AND lng IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT ` + itoa(geoCandidateLimit)

	var offices []*Office
	if err := r.db.SelectContext(ctx, &offices, query, args...); err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *repository) CountReservations(ctx context.Context, officeID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE office_id = $1`
	var count int
	err := r.db.GetContext(ctx, &count, query, officeID)
	return count, err
}

func itoa(n int) string { return strconv.Itoa(n) }
