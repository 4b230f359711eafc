package directory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
	"github.com/teamwell/staffd/internal/store/memory"
)

type serviceFixture struct {
	service *Service
	stores  *store.Stores
	orgID   uuid.UUID
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	stores := memory.NewStores()
	return &serviceFixture{
		service: NewService(stores),
		stores:  stores,
		orgID:   uuid.Must(uuid.NewV7()),
	}
}

func (f *serviceFixture) seedUser(t *testing.T, name string, role roles.Role, status models.UserStatus) *models.User {
	t.Helper()
	now := time.Now()
	user := &models.User{
		UserID:       uuid.Must(uuid.NewV7()),
		OrgID:        &f.orgID,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.stores.Users.Create(t.Context(), user))
	return user
}

func (f *serviceFixture) viewerFor(user *models.User) *auth.Viewer {
	return &auth.Viewer{
		UserID:    user.UserID,
		OrgID:     user.OrgID,
		Role:      user.Role,
		SessionID: uuid.Must(uuid.NewV7()),
	}
}

func TestListEmployeesScopedToOrg(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
	f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

	// a user in another organization must never appear
	otherOrg := uuid.Must(uuid.NewV7())
	now := time.Now()
	outsider := &models.User{
		UserID:       uuid.Must(uuid.NewV7()),
		OrgID:        &otherOrg,
		Email:        "outsider@example.com",
		PasswordHash: "x",
		Name:         "Outsider",
		Role:         roles.RoleEmployee,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.stores.Users.Create(t.Context(), outsider))

	list, err := f.service.ListEmployees(t.Context(), f.viewerFor(admin), ListEmployeesInput{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, emp := range list {
		require.NotEqual(t, outsider.UserID, emp.UserID)
	}
}

func TestGetEmployeeCrossTenant(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)

	otherOrg := uuid.Must(uuid.NewV7())
	now := time.Now()
	outsider := &models.User{
		UserID:       uuid.Must(uuid.NewV7()),
		OrgID:        &otherOrg,
		Email:        "outsider2@example.com",
		PasswordHash: "x",
		Name:         "Outsider",
		Role:         roles.RoleEmployee,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.stores.Users.Create(t.Context(), outsider))

	t.Run("foreign id surfaces as not found", func(t *testing.T) {
		_, err := f.service.GetEmployee(t.Context(), f.viewerFor(admin), outsider.UserID, nil)
		require.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})

	t.Run("super admin reaches other org with explicit id", func(t *testing.T) {
		super := &auth.Viewer{UserID: uuid.Must(uuid.NewV7()), Role: roles.RoleSuperAdmin}

		detail, err := f.service.GetEmployee(t.Context(), super, outsider.UserID, &otherOrg)
		require.NoError(t, err)
		require.Equal(t, outsider.UserID, detail.UserID)
	})

	t.Run("super admin without explicit org is rejected", func(t *testing.T) {
		super := &auth.Viewer{UserID: uuid.Must(uuid.NewV7()), Role: roles.RoleSuperAdmin}

		_, err := f.service.GetEmployee(t.Context(), super, outsider.UserID, nil)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("regular viewer cannot override the org id", func(t *testing.T) {
		_, err := f.service.GetEmployee(t.Context(), f.viewerFor(admin), outsider.UserID, &otherOrg)
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})
}

func TestGetEmployeeCompensationGating(t *testing.T) {
	f := newFixture(t)
	hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)
	manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)
	worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

	require.NoError(t, f.stores.Users.AddBankAccount(t.Context(), &models.BankAccount{
		AccountID: uuid.Must(uuid.NewV7()),
		UserID:    worker.UserID,
		BankName:  "Testbank",
		IBAN:      "DE00123",
		CreatedAt: time.Now(),
	}))

	t.Run("hr admin sees bank accounts", func(t *testing.T) {
		detail, err := f.service.GetEmployee(t.Context(), f.viewerFor(hr), worker.UserID, nil)
		require.NoError(t, err)
		require.Len(t, detail.BankAccounts, 1)
	})

	t.Run("manager does not", func(t *testing.T) {
		detail, err := f.service.GetEmployee(t.Context(), f.viewerFor(manager), worker.UserID, nil)
		require.NoError(t, err)
		require.Nil(t, detail.BankAccounts)
	})

	t.Run("worker sees their own", func(t *testing.T) {
		detail, err := f.service.GetEmployee(t.Context(), f.viewerFor(worker), worker.UserID, nil)
		require.NoError(t, err)
		require.Len(t, detail.BankAccounts, 1)
	})
}

func TestUpdateEmployee(t *testing.T) {
	t.Run("applies field changes", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		name := "Renamed Worker"
		title := "Senior Analyst"
		updated, err := f.service.UpdateEmployee(t.Context(), f.viewerFor(admin), worker.UserID, UpdateEmployeeInput{
			Name:  &name,
			Title: &title,
		})
		require.NoError(t, err)
		require.Equal(t, name, updated.Name)
		require.Equal(t, title, updated.Title)
	})

	t.Run("employee viewer is forbidden", func(t *testing.T) {
		f := newFixture(t)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)
		other := f.seedUser(t, "Other", roles.RoleEmployee, models.UserStatusActive)

		name := "x"
		_, err := f.service.UpdateEmployee(t.Context(), f.viewerFor(worker), other.UserID, UpdateEmployeeInput{Name: &name})
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("hr admin cannot edit a manager", func(t *testing.T) {
		f := newFixture(t)
		hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)
		manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)

		name := "x"
		_, err := f.service.UpdateEmployee(t.Context(), f.viewerFor(hr), manager.UserID, UpdateEmployeeInput{Name: &name})
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("granting org owner is held to the decision table", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		owner := roles.RoleOrgOwner
		_, err := f.service.UpdateEmployee(t.Context(), f.viewerFor(admin), worker.UserID, UpdateEmployeeInput{Role: &owner})
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("terminated status via update is rejected", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		status := models.UserStatusTerminated
		_, err := f.service.UpdateEmployee(t.Context(), f.viewerFor(admin), worker.UserID, UpdateEmployeeInput{Status: &status})
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestTerminateEmployee(t *testing.T) {
	t.Run("terminates and revokes sessions", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		now := time.Now()
		require.NoError(t, f.stores.Sessions.Create(t.Context(), &models.Session{
			SessionID:  uuid.Must(uuid.NewV7()),
			UserID:     worker.UserID,
			OrgID:      &f.orgID,
			CreatedAt:  now,
			ExpiresAt:  now.Add(time.Hour),
			LastUsedAt: now,
		}))

		require.NoError(t, f.service.TerminateEmployee(t.Context(), f.viewerFor(admin), worker.UserID, nil))

		reloaded, err := f.stores.Users.Get(t.Context(), worker.UserID)
		require.NoError(t, err)
		require.True(t, reloaded.IsTerminated())
		require.NotNil(t, reloaded.TerminatedAt)

		revoked, err := f.stores.Sessions.DeleteByUser(t.Context(), worker.UserID)
		require.NoError(t, err)
		require.Zero(t, revoked, "sessions must already be gone")
	})

	t.Run("self termination denied", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)

		err := f.service.TerminateEmployee(t.Context(), f.viewerFor(admin), admin.UserID, nil)
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("junior cannot terminate senior", func(t *testing.T) {
		f := newFixture(t)
		hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)

		err := f.service.TerminateEmployee(t.Context(), f.viewerFor(hr), admin.UserID, nil)
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("double termination rejected", func(t *testing.T) {
		f := newFixture(t)
		admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		require.NoError(t, f.service.TerminateEmployee(t.Context(), f.viewerFor(admin), worker.UserID, nil))
		err := f.service.TerminateEmployee(t.Context(), f.viewerFor(admin), worker.UserID, nil)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestDeleteEmployeeCascade(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t, "Admin", roles.RoleOrgAdmin, models.UserStatusActive)
	worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

	now := time.Now()
	dept := &models.Department{
		DepartmentID: uuid.Must(uuid.NewV7()),
		OrgID:        f.orgID,
		Name:         "Finance",
		HeadUserID:   &worker.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.stores.Departments.Create(t.Context(), dept))

	team := &models.Team{
		TeamID:     uuid.Must(uuid.NewV7()),
		OrgID:      f.orgID,
		Name:       "Ledger",
		LeadUserID: &worker.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.stores.Teams.Create(t.Context(), team))

	require.NoError(t, f.stores.Users.PutProfile(t.Context(), &models.EmployeeProfile{
		UserID: worker.UserID, Phone: "555-0100", UpdatedAt: now,
	}))
	require.NoError(t, f.stores.Sessions.Create(t.Context(), &models.Session{
		SessionID: uuid.Must(uuid.NewV7()), UserID: worker.UserID, OrgID: &f.orgID,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour), LastUsedAt: now,
	}))

	require.NoError(t, f.service.DeleteEmployee(t.Context(), f.viewerFor(admin), worker.UserID, nil))

	_, err := f.stores.Users.Get(t.Context(), worker.UserID)
	require.ErrorIs(t, err, store.ErrUserNotFound)

	reloadedDept, err := f.stores.Departments.Get(t.Context(), dept.DepartmentID)
	require.NoError(t, err)
	require.Nil(t, reloadedDept.HeadUserID)

	reloadedTeam, err := f.stores.Teams.Get(t.Context(), team.TeamID)
	require.NoError(t, err)
	require.Nil(t, reloadedTeam.LeadUserID)

	_, err = f.stores.Users.GetProfile(t.Context(), worker.UserID)
	require.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestDepartments(t *testing.T) {
	t.Run("create requires capability", func(t *testing.T) {
		f := newFixture(t)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		_, err := f.service.CreateDepartment(t.Context(), f.viewerFor(worker), "Sales", nil)
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("create and assign head", func(t *testing.T) {
		f := newFixture(t)
		hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)
		worker := f.seedUser(t, "Worker", roles.RoleEmployee, models.UserStatusActive)

		dept, err := f.service.CreateDepartment(t.Context(), f.viewerFor(hr), "  Sales  ", nil)
		require.NoError(t, err)
		require.Equal(t, "Sales", dept.Name)

		updated, err := f.service.AssignHead(t.Context(), f.viewerFor(hr), dept.DepartmentID, worker.UserID, nil)
		require.NoError(t, err)
		require.Equal(t, worker.UserID, *updated.HeadUserID)
	})

	t.Run("terminated head rejected", func(t *testing.T) {
		f := newFixture(t)
		hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)
		gone := f.seedUser(t, "Gone", roles.RoleEmployee, models.UserStatusTerminated)

		dept, err := f.service.CreateDepartment(t.Context(), f.viewerFor(hr), "Ops", nil)
		require.NoError(t, err)

		_, err = f.service.AssignHead(t.Context(), f.viewerFor(hr), dept.DepartmentID, gone.UserID, nil)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	})

	t.Run("blank name rejected", func(t *testing.T) {
		f := newFixture(t)
		hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)

		_, err := f.service.CreateDepartment(t.Context(), f.viewerFor(hr), "   ", nil)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestAssignTeamMembers(t *testing.T) {
	t.Run("moves all members atomically", func(t *testing.T) {
		f := newFixture(t)
		manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)
		u1 := f.seedUser(t, "Ada", roles.RoleEmployee, models.UserStatusActive)
		u2 := f.seedUser(t, "Ben", roles.RoleEmployee, models.UserStatusActive)

		team, err := f.service.CreateTeam(t.Context(), f.viewerFor(manager), "Platform", nil)
		require.NoError(t, err)

		err = f.service.AssignTeamMembers(t.Context(), f.viewerFor(manager), team.TeamID, []uuid.UUID{u1.UserID, u2.UserID, u1.UserID}, nil)
		require.NoError(t, err)

		onTeam, err := f.stores.Users.ListByOrg(t.Context(), f.orgID, store.ListUsersOptions{TeamID: &team.TeamID})
		require.NoError(t, err)
		require.Len(t, onTeam, 2)
	})

	t.Run("terminated member blocks the whole assignment", func(t *testing.T) {
		f := newFixture(t)
		manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)
		live := f.seedUser(t, "Live", roles.RoleEmployee, models.UserStatusActive)
		gone := f.seedUser(t, "Gone", roles.RoleEmployee, models.UserStatusTerminated)

		team, err := f.service.CreateTeam(t.Context(), f.viewerFor(manager), "Mixed", nil)
		require.NoError(t, err)

		err = f.service.AssignTeamMembers(t.Context(), f.viewerFor(manager), team.TeamID, []uuid.UUID{live.UserID, gone.UserID}, nil)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))

		onTeam, err := f.stores.Users.ListByOrg(t.Context(), f.orgID, store.ListUsersOptions{TeamID: &team.TeamID})
		require.NoError(t, err)
		require.Empty(t, onTeam, "no partial assignment may persist")
	})

	t.Run("empty selection rejected", func(t *testing.T) {
		f := newFixture(t)
		manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)

		team, err := f.service.CreateTeam(t.Context(), f.viewerFor(manager), "Empty", nil)
		require.NoError(t, err)

		err = f.service.AssignTeamMembers(t.Context(), f.viewerFor(manager), team.TeamID, nil, nil)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))
	})
}

func TestProjects(t *testing.T) {
	t.Run("manager creates project bound to team", func(t *testing.T) {
		f := newFixture(t)
		manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)

		team, err := f.service.CreateTeam(t.Context(), f.viewerFor(manager), "Platform", nil)
		require.NoError(t, err)

		project, err := f.service.CreateProject(t.Context(), f.viewerFor(manager), CreateProjectInput{
			Name:   "Migration",
			TeamID: &team.TeamID,
		})
		require.NoError(t, err)
		require.Equal(t, "ACTIVE", project.Status)

		listed, err := f.service.ListProjects(t.Context(), f.viewerFor(manager), nil)
		require.NoError(t, err)
		require.Len(t, listed, 1)
	})

	t.Run("hr admin lacks the project capability", func(t *testing.T) {
		f := newFixture(t)
		hr := f.seedUser(t, "HR", roles.RoleHRAdmin, models.UserStatusActive)

		_, err := f.service.CreateProject(t.Context(), f.viewerFor(hr), CreateProjectInput{Name: "Nope"})
		require.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})

	t.Run("foreign team rejected", func(t *testing.T) {
		f := newFixture(t)
		manager := f.seedUser(t, "Manager", roles.RoleManager, models.UserStatusActive)

		foreignTeam := uuid.Must(uuid.NewV7())
		_, err := f.service.CreateProject(t.Context(), f.viewerFor(manager), CreateProjectInput{
			Name:   "Nope",
			TeamID: &foreignTeam,
		})
		require.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}
