// Package roles defines the role hierarchy and the pure permission
// predicates used by the authorization guard. Nothing in this package
// touches storage or transport.
package roles

import "slices"

// Role represents a user's role within an organization.
type Role string

const (
	RoleEmployee   Role = "EMPLOYEE"
	RoleHRAdmin    Role = "HR_ADMIN"
	RoleManager    Role = "MANAGER"
	RoleOrgAdmin   Role = "ORG_ADMIN"
	RoleOrgOwner   Role = "ORG_OWNER"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// roleRanks is the total order over roles used for seniority comparisons.
// Higher rank means more senior.
var roleRanks = map[Role]int{
	RoleEmployee:   0,
	RoleHRAdmin:    1,
	RoleManager:    2,
	RoleOrgAdmin:   3,
	RoleOrgOwner:   4,
	RoleSuperAdmin: 5,
}

// Rank returns the role's position in the seniority order, or -1 for an
// unknown or empty role.
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Capability represents an authorized area of management.
type Capability string

const (
	CapManageDepartments  Capability = "departments:manage"
	CapManageTeams        Capability = "teams:manage"
	CapManageProjects     Capability = "projects:manage"
	CapManageWork         Capability = "work:manage"
	CapManageOrganization Capability = "organization:manage"
	CapManageCompensation Capability = "compensation:manage"
)

// capabilityRoles maps capabilities to the fixed allow-list of roles.
var capabilityRoles = map[Capability][]Role{
	CapManageDepartments: {
		RoleHRAdmin,
		RoleOrgAdmin,
		RoleOrgOwner,
		RoleSuperAdmin,
	},
	CapManageTeams: {
		RoleHRAdmin,
		RoleManager,
		RoleOrgAdmin,
		RoleOrgOwner,
		RoleSuperAdmin,
	},
	CapManageProjects: {
		RoleManager,
		RoleOrgAdmin,
		RoleOrgOwner,
		RoleSuperAdmin,
	},
	CapManageWork: {
		RoleHRAdmin,
		RoleManager,
		RoleOrgAdmin,
		RoleOrgOwner,
		RoleSuperAdmin,
	},
	CapManageOrganization: {
		RoleOrgAdmin,
		RoleOrgOwner,
		RoleSuperAdmin,
	},
	CapManageCompensation: {
		RoleHRAdmin,
		RoleOrgOwner,
		RoleSuperAdmin,
	},
}

// Has checks if a role has a specific capability. Unknown or empty roles
// never have any capability.
func Has(role Role, cap Capability) bool {
	allowed, ok := capabilityRoles[cap]
	if !ok {
		return false
	}
	return slices.Contains(allowed, role)
}
