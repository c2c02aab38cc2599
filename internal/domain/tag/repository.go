package tag

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cacheKey = "tags:all"
	cacheTTL = 10 * time.Minute
)

// Repository defines tag data access
type Repository interface {
	List(ctx context.Context) ([]*Tag, error)
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
	ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*Tag, error)
}

type repository struct {
	db    *sqlx.DB
	cache *redis.Client // optional, nil disables caching
}

// NewRepository creates tag repository
func NewRepository(db *sqlx.DB, cache *redis.Client) Repository {
	return &repository{db: db, cache: cache}
}

func (r *repository) List(ctx context.Context) ([]*Tag, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var tags []*Tag
			if err := json.Unmarshal(raw, &tags); err == nil {
				return tags, nil
			}
		}
	}

	query := `SELECT id, name FROM tags ORDER BY name`
	var tags []*Tag
	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, err
	}

	if r.cache != nil {
		if raw, err := json.Marshal(tags); err == nil {
			if err := r.cache.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("tag cache set failed")
			}
		}
	}

	return tags, nil
}

func (r *repository) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := `SELECT COUNT(*) FROM tags WHERE id = ANY($1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, pq.Array(strIDs)); err != nil {
		return false, err
	}
	return count == len(ids), nil
}

func (r *repository) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*Tag, error) {
	query := `
		SELECT t.id, t.name FROM tags t
		JOIN office_tag ot ON ot.tag_id = t.id
		WHERE ot.office_id = $1
		ORDER BY ot.attached_at, t.id
	`
	var tags []*Tag
	err := r.db.SelectContext(ctx, &tags, query, officeID)
	return tags, err
}
