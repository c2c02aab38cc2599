package tag

import "github.com/google/uuid"

// Tag is a label attachable to offices (many-to-many)
type Tag struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}
