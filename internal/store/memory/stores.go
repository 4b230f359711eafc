package memory

import (
	"github.com/teamwell/staffd/internal/store"
)

// NewStores builds the full in-memory store bundle.
func NewStores() *store.Stores {
	return &store.Stores{
		Users:         NewUserStore(),
		Organizations: NewOrganizationStore(),
		Departments:   NewDepartmentStore(),
		Teams:         NewTeamStore(),
		Projects:      NewProjectStore(),
		Notifications: NewNotificationStore(),
		Sessions:      NewSessionStore(),
	}
}
