// Package store defines the storage interfaces for staffd. Implementations
// live in the memory and postgres subpackages; the relational store is the
// single source of truth and sole synchronization point.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
)

// ListUsersOptions filters ListByOrg. Zero values mean no filter.
type ListUsersOptions struct {
	Status       models.UserStatus
	TeamID       *uuid.UUID
	DepartmentID *uuid.UUID
	Limit        int
}

// UserStore defines storage operations for users and their dependent
// child records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID, opts ListUsersOptions) ([]*models.User, error)
	// GetManyByOrg returns the subset of userIDs that exist within orgID.
	// Callers compare lengths to detect ids outside the tenant.
	GetManyByOrg(ctx context.Context, orgID uuid.UUID, userIDs []uuid.UUID) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// AssignTeam sets the team for all listed users in one atomic write.
	AssignTeam(ctx context.Context, orgID, teamID uuid.UUID, userIDs []uuid.UUID) error

	// DeleteCascade removes the user's dependent child records (contacts,
	// bank accounts, attendance, leave requests, reset tokens, profile)
	// and then the user row itself. Dependents go first; the ordering is
	// load-bearing for reference integrity.
	DeleteCascade(ctx context.Context, userID uuid.UUID) error

	PutProfile(ctx context.Context, profile *models.EmployeeProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.EmployeeProfile, error)
	AddEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error
	ListEmergencyContacts(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error)
	AddBankAccount(ctx context.Context, account *models.BankAccount) error
	ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]*models.BankAccount, error)
	AddAttendance(ctx context.Context, entry *models.AttendanceEntry) error
	ListAttendance(ctx context.Context, userID uuid.UUID) ([]*models.AttendanceEntry, error)
	AddLeaveRequest(ctx context.Context, request *models.LeaveRequest) error
	ListLeaveRequests(ctx context.Context, userID uuid.UUID) ([]*models.LeaveRequest, error)
}

// OrganizationStore defines storage operations for organizations.
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

// DepartmentStore defines storage operations for departments.
type DepartmentStore interface {
	Create(ctx context.Context, dept *models.Department) error
	Get(ctx context.Context, deptID uuid.UUID) (*models.Department, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Department, error)
	Update(ctx context.Context, dept *models.Department) error
}

// TeamStore defines storage operations for teams.
type TeamStore interface {
	Create(ctx context.Context, team *models.Team) error
	Get(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
}

// ProjectStore defines storage operations for projects.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
}

// NotificationStore defines storage operations for notification rows.
type NotificationStore interface {
	// CreateBatch persists all rows atomically; either every row becomes
	// visible or none do.
	CreateBatch(ctx context.Context, rows []*models.Notification) error
	// ListRecentByOrg returns up to limit rows of the given type for the
	// organization, newest first by sent_at (created_at fallback).
	ListRecentByOrg(ctx context.Context, orgID uuid.UUID, typ models.NotificationType, limit int) ([]*models.Notification, error)
}

// SessionStore defines storage operations for sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	UpdateLastUsed(ctx context.Context, sessionID uuid.UUID) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteExpired(ctx context.Context) (int, error)
}

// Stores bundles every store interface for wiring through the services.
type Stores struct {
	Users         UserStore
	Organizations OrganizationStore
	Departments   DepartmentStore
	Teams         TeamStore
	Projects      ProjectStore
	Notifications NotificationStore
	Sessions      SessionStore
}
