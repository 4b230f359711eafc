// Package directory implements the tenancy-scoped employee, department,
// team and project operations.
package directory

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
)

// Service performs directory operations. Every operation takes the
// viewer first and constrains reads and writes to the viewer's
// organization; SUPER_ADMIN may target another organization only by
// passing its id explicitly.
type Service struct {
	stores   *store.Stores
	validate *validator.Validate
}

// NewService creates a directory service over the given stores.
func NewService(stores *store.Stores) *Service {
	return &Service{
		stores:   stores,
		validate: validator.New(),
	}
}

// resolveOrg pins the operation to an organization. orgOverride is only
// honored for SUPER_ADMIN; everyone else must act within their own org.
func (s *Service) resolveOrg(viewer *auth.Viewer, orgOverride *uuid.UUID) (uuid.UUID, error) {
	if viewer.IsSuperAdmin() {
		if orgOverride != nil {
			return *orgOverride, nil
		}
		if viewer.OrgID != nil {
			return *viewer.OrgID, nil
		}
		return uuid.Nil, errs.Validation("An organization id is required for this operation")
	}

	if viewer.OrgID == nil {
		return uuid.Nil, errs.Forbidden("You are not a member of an organization")
	}
	if orgOverride != nil && *orgOverride != *viewer.OrgID {
		return uuid.Nil, errs.Forbidden("You cannot operate on another organization")
	}

	return *viewer.OrgID, nil
}

// getScopedUser loads a user and verifies it belongs to the organization.
// Users outside the tenant surface as NotFound, never as Forbidden, so
// ids cannot be probed across tenants.
func (s *Service) getScopedUser(ctx context.Context, orgID, userID uuid.UUID) (*models.User, error) {
	user, err := s.stores.Users.Get(ctx, userID)
	if err != nil {
		if err == store.ErrUserNotFound {
			return nil, errs.NotFound("Teammate not found")
		}
		return nil, errs.Internal(err)
	}

	if !user.InOrg(orgID) {
		return nil, errs.NotFound("Teammate not found")
	}

	return user, nil
}

// ListEmployeesInput filters ListEmployees.
type ListEmployeesInput struct {
	OrgID        *uuid.UUID
	Status       models.UserStatus
	TeamID       *uuid.UUID
	DepartmentID *uuid.UUID
	Limit        int
}

// ListEmployees lists the organization's users.
func (s *Service) ListEmployees(ctx context.Context, viewer *auth.Viewer, input ListEmployeesInput) ([]*EmployeeSummary, error) {
	orgID, err := s.resolveOrg(viewer, input.OrgID)
	if err != nil {
		return nil, err
	}

	users, err := s.stores.Users.ListByOrg(ctx, orgID, store.ListUsersOptions{
		Status:       input.Status,
		TeamID:       input.TeamID,
		DepartmentID: input.DepartmentID,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, errs.Internal(err)
	}

	summaries := make([]*EmployeeSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, newEmployeeSummary(user))
	}
	return summaries, nil
}

// GetEmployee returns one employee with the viewer-appropriate projection.
// Compensation-bearing fields are omitted unless the viewer holds the
// compensation capability or is reading their own record.
func (s *Service) GetEmployee(ctx context.Context, viewer *auth.Viewer, userID uuid.UUID, orgOverride *uuid.UUID) (*EmployeeDetail, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	user, err := s.getScopedUser(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	detail := &EmployeeDetail{EmployeeSummary: *newEmployeeSummary(user)}

	profile, err := s.stores.Users.GetProfile(ctx, userID)
	if err != nil && err != store.ErrProfileNotFound {
		return nil, errs.Internal(err)
	}
	if profile != nil {
		detail.Profile = &Profile{
			Phone:     profile.Phone,
			Address:   profile.Address,
			BirthDate: profile.BirthDate,
		}
	}

	contacts, err := s.stores.Users.ListEmergencyContacts(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	for _, contact := range contacts {
		detail.EmergencyContacts = append(detail.EmergencyContacts, EmergencyContact{
			ContactID: contact.ContactID,
			Name:      contact.Name,
			Phone:     contact.Phone,
			Relation:  contact.Relation,
		})
	}

	if viewer.Can(roles.CapManageCompensation) || viewer.UserID == userID {
		accounts, err := s.stores.Users.ListBankAccounts(ctx, userID)
		if err != nil {
			return nil, errs.Internal(err)
		}
		detail.BankAccounts = make([]BankAccount, 0, len(accounts))
		for _, account := range accounts {
			detail.BankAccounts = append(detail.BankAccounts, BankAccount{
				AccountID: account.AccountID,
				BankName:  account.BankName,
				IBAN:      account.IBAN,
			})
		}
	}

	return detail, nil
}

// UpdateEmployeeInput carries the editable fields. Nil pointers leave the
// field unchanged.
type UpdateEmployeeInput struct {
	OrgID        *uuid.UUID
	Name         *string
	Title        *string
	Role         *roles.Role
	Status       *models.UserStatus
	DepartmentID *uuid.UUID
	TeamID       *uuid.UUID
}

// UpdateEmployee edits an employee after the capability and seniority
// checks pass. The write is one atomic store call.
func (s *Service) UpdateEmployee(ctx context.Context, viewer *auth.Viewer, userID uuid.UUID, input UpdateEmployeeInput) (*EmployeeSummary, error) {
	orgID, err := s.resolveOrg(viewer, input.OrgID)
	if err != nil {
		return nil, err
	}

	if !viewer.Can(roles.CapManageWork) {
		return nil, errs.Forbidden("You do not have permission to edit teammates")
	}

	target, err := s.getScopedUser(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if decision := roles.EditPermission(viewer.Role, target.Role); !decision.Allowed {
		return nil, errs.Forbidden(decision.Reason)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errs.Validation("Name cannot be empty")
		}
		target.Name = name
	}
	if input.Title != nil {
		target.Title = strings.TrimSpace(*input.Title)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, errs.Validation("Unknown role")
		}
		// Granting a role is held to the same decision table as editing a
		// holder of that role.
		if decision := roles.EditPermission(viewer.Role, *input.Role); !decision.Allowed {
			return nil, errs.Forbidden(decision.Reason)
		}
		target.Role = *input.Role
	}
	if input.Status != nil {
		if *input.Status == models.UserStatusTerminated {
			return nil, errs.Validation("Use the termination operation to terminate a teammate")
		}
		target.Status = *input.Status
	}
	if input.DepartmentID != nil {
		if _, err := s.getScopedDepartment(ctx, orgID, *input.DepartmentID); err != nil {
			return nil, err
		}
		target.DepartmentID = input.DepartmentID
	}
	if input.TeamID != nil {
		if _, err := s.getScopedTeam(ctx, orgID, *input.TeamID); err != nil {
			return nil, err
		}
		target.TeamID = input.TeamID
	}

	target.UpdatedAt = time.Now()
	if err := s.stores.Users.Update(ctx, target); err != nil {
		return nil, errs.Internal(err)
	}

	return newEmployeeSummary(target), nil
}

// TerminateEmployee marks the target TERMINATED and revokes every live
// session so the change takes effect on their next request.
func (s *Service) TerminateEmployee(ctx context.Context, viewer *auth.Viewer, userID uuid.UUID, orgOverride *uuid.UUID) error {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return err
	}

	target, err := s.getScopedUser(ctx, orgID, userID)
	if err != nil {
		return err
	}

	decision := roles.TerminationPermission(viewer.Role, target.Role, viewer.UserID == userID)
	if !decision.Allowed {
		return errs.Forbidden(decision.Reason)
	}

	if target.IsTerminated() {
		return errs.Validation("Teammate is already terminated")
	}

	now := time.Now()
	target.Status = models.UserStatusTerminated
	target.TerminatedAt = &now
	target.UpdatedAt = now

	if err := s.stores.Users.Update(ctx, target); err != nil {
		return errs.Internal(err)
	}

	revoked, err := s.stores.Sessions.DeleteByUser(ctx, userID)
	if err != nil {
		// The termination itself is committed; the middleware rejects
		// terminated users regardless, so log and move on.
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to revoke sessions on termination")
		return nil
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("sessions_revoked", revoked).
		Msg("Teammate terminated")

	return nil
}

// DeleteEmployee removes the user and all dependent records. Headship and
// lead references are detached first, then sessions, then the user row
// with its children; the ordering keeps references intact at every step.
func (s *Service) DeleteEmployee(ctx context.Context, viewer *auth.Viewer, userID uuid.UUID, orgOverride *uuid.UUID) error {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return err
	}

	if !viewer.Can(roles.CapManageWork) {
		return errs.Forbidden("You do not have permission to remove teammates")
	}

	target, err := s.getScopedUser(ctx, orgID, userID)
	if err != nil {
		return err
	}

	decision := roles.TerminationPermission(viewer.Role, target.Role, viewer.UserID == userID)
	if !decision.Allowed {
		return errs.Forbidden(decision.Reason)
	}

	if err := s.detachReferences(ctx, orgID, userID); err != nil {
		return err
	}

	if _, err := s.stores.Sessions.DeleteByUser(ctx, userID); err != nil {
		return errs.Internal(err)
	}

	if err := s.stores.Users.DeleteCascade(ctx, userID); err != nil {
		return errs.Internal(err)
	}

	log.Info().Str("user_id", userID.String()).Msg("Teammate deleted")
	return nil
}

// detachReferences nulls department headships and team leads held by the
// user ahead of the row deletion.
func (s *Service) detachReferences(ctx context.Context, orgID, userID uuid.UUID) error {
	depts, err := s.stores.Departments.ListByOrg(ctx, orgID)
	if err != nil {
		return errs.Internal(err)
	}
	for _, dept := range depts {
		if dept.HeadUserID == nil || *dept.HeadUserID != userID {
			continue
		}
		dept.HeadUserID = nil
		dept.UpdatedAt = time.Now()
		if err := s.stores.Departments.Update(ctx, dept); err != nil {
			return errs.Internal(err)
		}
	}

	teams, err := s.stores.Teams.ListByOrg(ctx, orgID)
	if err != nil {
		return errs.Internal(err)
	}
	for _, team := range teams {
		if team.LeadUserID == nil || *team.LeadUserID != userID {
			continue
		}
		team.LeadUserID = nil
		team.UpdatedAt = time.Now()
		if err := s.stores.Teams.Update(ctx, team); err != nil {
			return errs.Internal(err)
		}
	}

	return nil
}
