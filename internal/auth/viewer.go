package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/roles"
)

// Viewer is the authenticated caller of a request, resolved from the
// session token and re-validated against storage.
type Viewer struct {
	UserID    uuid.UUID
	OrgID     *uuid.UUID // nil only for super admins acting globally
	Role      roles.Role
	SessionID uuid.UUID
}

// IsSuperAdmin reports whether the viewer holds the global role.
func (v *Viewer) IsSuperAdmin() bool {
	return v.Role == roles.RoleSuperAdmin
}

// Can reports whether the viewer's role grants the capability.
func (v *Viewer) Can(cap roles.Capability) bool {
	return roles.Has(v.Role, cap)
}

type viewerContextKey struct{}

// WithViewer returns a context carrying the viewer.
func WithViewer(ctx context.Context, viewer *Viewer) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, viewer)
}

// ViewerFromContext extracts the viewer set by the middleware.
func ViewerFromContext(ctx context.Context) (*Viewer, error) {
	viewer, ok := ctx.Value(viewerContextKey{}).(*Viewer)
	if !ok || viewer == nil {
		return nil, errs.Unauthenticated()
	}
	return viewer, nil
}
