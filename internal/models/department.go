package models

import (
	"time"

	"github.com/google/uuid"
)

// Department groups users within an organization. HeadUserID is nulled
// when the head is deleted, ahead of the user row itself.
type Department struct {
	DepartmentID uuid.UUID // UUIDv7
	OrgID        uuid.UUID
	Name         string
	HeadUserID   *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Team is a working group within an organization. Membership is recorded
// on the user rows (User.TeamID).
type Team struct {
	TeamID     uuid.UUID // UUIDv7
	OrgID      uuid.UUID
	Name       string
	LeadUserID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Project belongs to an organization and optionally to a team.
type Project struct {
	ProjectID uuid.UUID // UUIDv7
	OrgID     uuid.UUID
	Name      string
	TeamID    *uuid.UUID
	Status    string // "ACTIVE", "ARCHIVED"
	CreatedAt time.Time
	UpdatedAt time.Time
}
