package roles

// Decision is the result of a permission check. Reason is set when the
// action is denied and is safe to show to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// EditPermission decides whether viewer may edit target's profile.
// This is a pure decision table; callers decide how to surface Reason.
func EditPermission(viewer, target Role) Decision {
	if !viewer.IsValid() || !target.IsValid() {
		return deny("unknown role")
	}

	if viewer == RoleEmployee {
		return deny("employees cannot edit teammate profiles")
	}

	// Super admin profiles are immutable by anyone.
	if target == RoleSuperAdmin {
		return deny("super admin profiles cannot be edited")
	}

	// Organization owners are editable only by super admins.
	if target == RoleOrgOwner && viewer != RoleSuperAdmin {
		return deny("only a super admin can edit the organization owner")
	}

	if viewer == RoleHRAdmin || viewer == RoleManager {
		if target == RoleManager || target == RoleOrgAdmin {
			return deny("you cannot edit someone at this level")
		}
	}

	return allow()
}

// TerminationPermission decides whether viewer may terminate target.
// isSelf guards against self-termination regardless of roles.
func TerminationPermission(viewer, target Role, isSelf bool) Decision {
	if isSelf {
		return deny("you cannot terminate your own account")
	}

	if !viewer.IsValid() || !target.IsValid() {
		return deny("unknown role")
	}

	if viewer == RoleEmployee {
		return deny("employees cannot terminate teammates")
	}

	if target == RoleSuperAdmin {
		return deny("super admins cannot be terminated")
	}

	// Seniority check: nobody terminates someone more senior.
	if target.Rank() > viewer.Rank() {
		return deny("you cannot terminate someone more senior than you")
	}

	return allow()
}
