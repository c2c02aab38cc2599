package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a marketplace account. Hosts and visitors share the
// same table; administrators are flagged with is_admin.
type User struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
