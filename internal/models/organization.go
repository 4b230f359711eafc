package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant. Every scoped entity carries the
// organization id of exactly one organization.
type Organization struct {
	OrgID       uuid.UUID // UUIDv7
	Name        string
	OwnerUserID uuid.UUID // FK to users
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
