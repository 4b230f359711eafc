package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/roles"
)

// UserStatus represents the employment status of a user.
type UserStatus string

const (
	UserStatusActive     UserStatus = "ACTIVE"
	UserStatusProbation  UserStatus = "PROBATION"
	UserStatusSabbatical UserStatus = "SABBATICAL"
	UserStatusInactive   UserStatus = "INACTIVE"
	UserStatusTerminated UserStatus = "TERMINATED"
)

// User represents an identity in the system. Users belong to at most one
// organization and optionally one team and one department.
type User struct {
	UserID       uuid.UUID  // UUIDv7
	OrgID        *uuid.UUID // nil only for super admins acting globally
	Email        string     // unique
	PasswordHash string     // bcrypt
	Name         string
	Role         roles.Role
	Status       UserStatus
	Title        string

	DepartmentID *uuid.UUID
	TeamID       *uuid.UUID

	TerminatedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminated returns true if the user has been terminated.
func (u *User) IsTerminated() bool {
	return u.Status == UserStatusTerminated
}

// InOrg reports whether the user belongs to the given organization.
func (u *User) InOrg(orgID uuid.UUID) bool {
	return u.OrgID != nil && *u.OrgID == orgID
}
