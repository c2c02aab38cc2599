package reservation

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

// Filter represents reservation listing filters, always scoped to the
// requesting user.
type Filter struct {
	UserID   uuid.UUID
	Status   *Status
	OfficeID *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
}

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}

// maxBookingRetries bounds the booking transaction retry on
// serialization failures before surfacing ErrTxConflict.
const maxBookingRetries = 3

// errOverlapInTx signals a conflict found inside the booking transaction.
var errOverlapInTx = errors.New("overlapping active reservation")

// Repository defines reservation data access
type Repository interface {
	CreateActive(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Reservation, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	HasConflict(ctx context.Context, officeID uuid.UUID, start, end time.Time) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reservation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateActive inserts an active reservation after re-checking the
// calendar inside a transaction that locks the office row. The lock
// serializes concurrent bookings on the same office, closing the
// check-then-act race between the availability check and the insert.
// Serialization failures are retried a bounded number of times.
func (r *repository) CreateActive(ctx context.Context, res *Reservation) error {
	var err error
	for attempt := 0; attempt < maxBookingRetries; attempt++ {
		err = r.tryCreateActive(ctx, res)
		if err == nil || !isRetryable(err) {
			return err
		}
		log.Warn().
			Str("request_id", middleware.GetRequestID(ctx)).
			Str("office_id", res.OfficeID.String()).
			Int("attempt", attempt+1).
			Err(err).
			Msg("booking transaction retry")
	}
	return ErrTxConflict
}

func (r *repository) tryCreateActive(ctx context.Context, res *Reservation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var officeID uuid.UUID
	err = tx.GetContext(ctx, &officeID,
		`SELECT id FROM offices WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		res.OfficeID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errOverlapInTx
		}
		return err
	}

	var conflicts int
	err = tx.GetContext(ctx, &conflicts, `
		SELECT COUNT(*) FROM reservations
		WHERE office_id = $1 AND status = 'active'
		  AND start_date <= $3 AND end_date >= $2
	`, res.OfficeID, res.StartDate, res.EndDate)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return errOverlapInTx
	}

	now := time.Now()
	res.Status = StatusActive
	res.CreatedAt = now
	res.UpdatedAt = now
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reservations (id, office_id, user_id, start_date, end_date, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, res.ID, res.OfficeID, res.UserID, res.StartDate, res.EndDate, res.Price, res.Status, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// isRetryable matches Postgres serialization_failure and deadlock_detected.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// IsOverlap reports whether err is the in-transaction overlap signal
func IsOverlap(err error) bool {
	return errors.Is(err, errOverlapInTx)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	query := `SELECT * FROM reservations WHERE id = $1`
	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Reservation, int, error) {
	where := `user_id = $1`
	args := []interface{}{filter.UserID}
	n := 2

	if filter.Status != nil {
		where += ` AND status = $` + strconv.Itoa(n)
		args = append(args, *filter.Status)
		n++
	}
	if filter.OfficeID != nil {
		where += ` AND office_id = $` + strconv.Itoa(n)
		args = append(args, *filter.OfficeID)
		n++
	}
	// Date bounds use the same overlap semantics as the availability
	// check; either bound works alone.
	if filter.FromDate != nil {
		where += ` AND end_date >= $` + strconv.Itoa(n)
		args = append(args, *filter.FromDate)
		n++
	}
	if filter.ToDate != nil {
		where += ` AND start_date <= $` + strconv.Itoa(n)
		args = append(args, *filter.ToDate)
		n++
	}

	countQuery := `SELECT COUNT(*) FROM reservations WHERE ` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := `
		SELECT * FROM reservations
		WHERE ` + where + `
		ORDER BY created_at, id
		LIMIT ` + strconv.Itoa(pagination.Limit) + ` OFFSET ` + strconv.Itoa(offset)

	var reservations []*Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE reservations SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *repository) HasConflict(ctx context.Context, officeID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE office_id = $1 AND status = 'active'
		  AND start_date <= $3 AND end_date >= $2
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, officeID, start, end); err != nil {
		return false, err
	}
	return count > 0, nil
}
