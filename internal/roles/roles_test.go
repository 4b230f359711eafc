package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	require.Equal(t, 0, RoleEmployee.Rank())
	require.Equal(t, 5, RoleSuperAdmin.Rank())
	require.Equal(t, -1, Role("JANITOR").Rank())
	require.Equal(t, -1, Role("").Rank())

	require.Greater(t, RoleManager.Rank(), RoleHRAdmin.Rank())
	require.Greater(t, RoleOrgOwner.Rank(), RoleOrgAdmin.Rank())
}

func TestIsValid(t *testing.T) {
	for _, role := range []Role{RoleEmployee, RoleHRAdmin, RoleManager, RoleOrgAdmin, RoleOrgOwner, RoleSuperAdmin} {
		require.True(t, role.IsValid(), role)
	}
	require.False(t, Role("employee").IsValid())
	require.False(t, Role("").IsValid())
}

func TestHas(t *testing.T) {
	tests := []struct {
		name string
		role Role
		cap  Capability
		want bool
	}{
		{name: "employee has nothing", role: RoleEmployee, cap: CapManageTeams, want: false},
		{name: "hr admin manages departments", role: RoleHRAdmin, cap: CapManageDepartments, want: true},
		{name: "hr admin does not manage projects", role: RoleHRAdmin, cap: CapManageProjects, want: false},
		{name: "manager manages teams", role: RoleManager, cap: CapManageTeams, want: true},
		{name: "manager does not manage departments", role: RoleManager, cap: CapManageDepartments, want: false},
		{name: "manager does not see compensation", role: RoleManager, cap: CapManageCompensation, want: false},
		{name: "hr admin sees compensation", role: RoleHRAdmin, cap: CapManageCompensation, want: true},
		{name: "org admin does not see compensation", role: RoleOrgAdmin, cap: CapManageCompensation, want: false},
		{name: "org admin manages the organization", role: RoleOrgAdmin, cap: CapManageOrganization, want: true},
		{name: "org owner has every listed capability", role: RoleOrgOwner, cap: CapManageProjects, want: true},
		{name: "super admin has every listed capability", role: RoleSuperAdmin, cap: CapManageOrganization, want: true},
		{name: "unknown role has nothing", role: Role("JANITOR"), cap: CapManageTeams, want: false},
		{name: "unknown capability is denied", role: RoleSuperAdmin, cap: Capability("payroll:manage"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Has(tt.role, tt.cap))
		})
	}
}
