package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
)

func (s *Service) getScopedDepartment(ctx context.Context, orgID, deptID uuid.UUID) (*models.Department, error) {
	dept, err := s.stores.Departments.Get(ctx, deptID)
	if err != nil {
		if err == store.ErrDepartmentNotFound {
			return nil, errs.NotFound("Department not found")
		}
		return nil, errs.Internal(err)
	}
	if dept.OrgID != orgID {
		return nil, errs.NotFound("Department not found")
	}
	return dept, nil
}

func (s *Service) getScopedTeam(ctx context.Context, orgID, teamID uuid.UUID) (*models.Team, error) {
	team, err := s.stores.Teams.Get(ctx, teamID)
	if err != nil {
		if err == store.ErrTeamNotFound {
			return nil, errs.NotFound("Team not found")
		}
		return nil, errs.Internal(err)
	}
	if team.OrgID != orgID {
		return nil, errs.NotFound("Team not found")
	}
	return team, nil
}

// ListDepartments lists the organization's departments.
func (s *Service) ListDepartments(ctx context.Context, viewer *auth.Viewer, orgOverride *uuid.UUID) ([]*models.Department, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	depts, err := s.stores.Departments.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return depts, nil
}

// CreateDepartment creates a department in the organization.
func (s *Service) CreateDepartment(ctx context.Context, viewer *auth.Viewer, name string, orgOverride *uuid.UUID) (*models.Department, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	if !viewer.Can(roles.CapManageDepartments) {
		return nil, errs.Forbidden("You do not have permission to manage departments")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("Department name is required")
	}

	now := time.Now()
	dept := &models.Department{
		DepartmentID: uuid.Must(uuid.NewV7()),
		OrgID:        orgID,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.stores.Departments.Create(ctx, dept); err != nil {
		return nil, errs.Internal(err)
	}
	return dept, nil
}

// AssignHead sets the department head. The head must be a non-terminated
// member of the same organization.
func (s *Service) AssignHead(ctx context.Context, viewer *auth.Viewer, deptID, headUserID uuid.UUID, orgOverride *uuid.UUID) (*models.Department, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	if !viewer.Can(roles.CapManageDepartments) {
		return nil, errs.Forbidden("You do not have permission to manage departments")
	}

	dept, err := s.getScopedDepartment(ctx, orgID, deptID)
	if err != nil {
		return nil, err
	}

	head, err := s.getScopedUser(ctx, orgID, headUserID)
	if err != nil {
		return nil, err
	}
	if head.IsTerminated() {
		return nil, errs.Validation("A terminated teammate cannot head a department")
	}

	dept.HeadUserID = &head.UserID
	dept.UpdatedAt = time.Now()
	if err := s.stores.Departments.Update(ctx, dept); err != nil {
		return nil, errs.Internal(err)
	}
	return dept, nil
}

// ListTeams lists the organization's teams.
func (s *Service) ListTeams(ctx context.Context, viewer *auth.Viewer, orgOverride *uuid.UUID) ([]*models.Team, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	teams, err := s.stores.Teams.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return teams, nil
}

// CreateTeam creates a team in the organization.
func (s *Service) CreateTeam(ctx context.Context, viewer *auth.Viewer, name string, orgOverride *uuid.UUID) (*models.Team, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	if !viewer.Can(roles.CapManageTeams) {
		return nil, errs.Forbidden("You do not have permission to manage teams")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("Team name is required")
	}

	now := time.Now()
	team := &models.Team{
		TeamID:    uuid.Must(uuid.NewV7()),
		OrgID:     orgID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stores.Teams.Create(ctx, team); err != nil {
		return nil, errs.Internal(err)
	}
	return team, nil
}

// AssignTeamMembers moves the listed users onto the team in one atomic
// write. Every id must resolve to a non-terminated member of the
// organization or nothing changes.
func (s *Service) AssignTeamMembers(ctx context.Context, viewer *auth.Viewer, teamID uuid.UUID, userIDs []uuid.UUID, orgOverride *uuid.UUID) error {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return err
	}

	if !viewer.Can(roles.CapManageTeams) {
		return errs.Forbidden("You do not have permission to manage teams")
	}

	if _, err := s.getScopedTeam(ctx, orgID, teamID); err != nil {
		return err
	}

	unique := make([]uuid.UUID, 0, len(userIDs))
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return errs.Validation("Select at least one teammate")
	}

	members, err := s.stores.Users.GetManyByOrg(ctx, orgID, unique)
	if err != nil {
		return errs.Internal(err)
	}

	live := 0
	for _, member := range members {
		if !member.IsTerminated() {
			live++
		}
	}
	if live != len(unique) {
		return errs.Validation("Some selected teammates are no longer available")
	}

	if err := s.stores.Users.AssignTeam(ctx, orgID, teamID, unique); err != nil {
		return errs.Internal(err)
	}
	return nil
}

// ListProjects lists the organization's projects.
func (s *Service) ListProjects(ctx context.Context, viewer *auth.Viewer, orgOverride *uuid.UUID) ([]*models.Project, error) {
	orgID, err := s.resolveOrg(viewer, orgOverride)
	if err != nil {
		return nil, err
	}

	projects, err := s.stores.Projects.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return projects, nil
}

// CreateProjectInput carries the new project fields.
type CreateProjectInput struct {
	OrgID  *uuid.UUID
	Name   string
	TeamID *uuid.UUID
}

// CreateProject creates a project, optionally bound to a team in the
// same organization.
func (s *Service) CreateProject(ctx context.Context, viewer *auth.Viewer, input CreateProjectInput) (*models.Project, error) {
	orgID, err := s.resolveOrg(viewer, input.OrgID)
	if err != nil {
		return nil, err
	}

	if !viewer.Can(roles.CapManageProjects) {
		return nil, errs.Forbidden("You do not have permission to manage projects")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errs.Validation("Project name is required")
	}

	if input.TeamID != nil {
		if _, err := s.getScopedTeam(ctx, orgID, *input.TeamID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	project := &models.Project{
		ProjectID: uuid.Must(uuid.NewV7()),
		OrgID:     orgID,
		Name:      name,
		TeamID:    input.TeamID,
		Status:    "ACTIVE",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stores.Projects.Create(ctx, project); err != nil {
		return nil, errs.Internal(err)
	}
	return project, nil
}
