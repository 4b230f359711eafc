package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwell/staffd/internal/store"
)

// NewStores builds the full store bundle on a shared connection pool.
func NewStores(pool *pgxpool.Pool) *store.Stores {
	return &store.Stores{
		Users:         NewUserStore(pool),
		Organizations: NewOrganizationStore(pool),
		Departments:   NewDepartmentStore(pool),
		Teams:         NewTeamStore(pool),
		Projects:      NewProjectStore(pool),
		Notifications: NewNotificationStore(pool),
		Sessions:      NewSessionStore(pool),
	}
}
