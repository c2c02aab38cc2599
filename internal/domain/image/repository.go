package image

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines image data access
type Repository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	ListByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) ([]*Image, error)
	CountByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates image repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, img *Image) error {
	query := `
		INSERT INTO images (id, resource_type, resource_id, path, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.ResourceType, img.ResourceID, img.Path, img.CreatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	query := `SELECT id, resource_type, resource_id, path, created_at FROM images WHERE id = $1`
	var img Image
	err := r.db.GetContext(ctx, &img, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

func (r *repository) ListByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) ([]*Image, error) {
	query := `
		SELECT id, resource_type, resource_id, path, created_at FROM images
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at, id
	`
	var images []*Image
	err := r.db.SelectContext(ctx, &images, query, rt, resourceID)
	return images, err
}

func (r *repository) CountByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM images WHERE resource_type = $1 AND resource_id = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, rt, resourceID)
	return count, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	return err
}

func (r *repository) DeleteByResource(ctx context.Context, rt ResourceType, resourceID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE resource_type = $1 AND resource_id = $2`, rt, resourceID)
	return err
}
