package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
)

// NotificationStore implements store.NotificationStore using in-memory storage.
type NotificationStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Notification
}

// NewNotificationStore creates a new in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		rows: make(map[uuid.UUID]*models.Notification),
	}
}

// CreateBatch persists all rows under a single lock; all or nothing.
func (s *NotificationStore) CreateBatch(ctx context.Context, rows []*models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		clone := *row
		s.rows[row.NotificationID] = &clone
	}

	return nil
}

// ListRecentByOrg returns up to limit rows of the given type for the
// organization, newest first by sent_at with created_at as fallback.
func (s *NotificationStore) ListRecentByOrg(ctx context.Context, orgID uuid.UUID, typ models.NotificationType, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Notification
	for _, row := range s.rows {
		if row.OrgID != orgID || row.Type != typ {
			continue
		}
		clone := *row
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return effectiveTime(result[i]).After(effectiveTime(result[j]))
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func effectiveTime(n *models.Notification) time.Time {
	if n.SentAt != nil {
		return n.SentAt.UTC()
	}
	return n.CreatedAt.UTC()
}
