package model

import (
	"time"
)

type User struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	OrganizationID *string   `db:"organization_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// Principal is the authenticated identity attached to a request. The core
// only records it as author or owner metadata.
type Principal struct {
	ID             string
	OrganizationID *string
}
