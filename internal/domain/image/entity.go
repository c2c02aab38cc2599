package image

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType discriminates the owning entity of an image.
// A lookup on this tag replaces dynamic type resolution.
type ResourceType string

const (
	ResourceOffice ResourceType = "office"
	ResourceUser   ResourceType = "user"
)

// Image represents a stored image attached to an office or a user.
// Path is the storage key; the public URL is derived from it.
type Image struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	ResourceType ResourceType `db:"resource_type" json:"resource_type"`
	ResourceID   uuid.UUID    `db:"resource_id" json:"resource_id"`
	Path         string       `db:"path" json:"path"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`

	// URL is not a DB column; populated from storage by the service.
	URL string `db:"-" json:"url,omitempty"`
}
