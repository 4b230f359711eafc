package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwell/staffd/internal/models"
)

// NotificationStore implements store.NotificationStore using PostgreSQL.
type NotificationStore struct {
	pool *pgxpool.Pool
}

// NewNotificationStore creates a new PostgreSQL-backed notification store.
func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// CreateBatch inserts all rows in a single transaction. Either every row
// becomes visible or none do.
func (s *NotificationStore) CreateBatch(ctx context.Context, rows []*models.Notification) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO notifications (notification_id, org_id, dispatch_id, audience,
				target_user_id, type, title, body, sender_user_id, status, sent_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, row.NotificationID, row.OrgID, row.DispatchID, row.Audience,
			row.TargetUserID, row.Type, row.Title, row.Body, row.SenderUserID,
			row.Status, row.SentAt, row.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			return fmt.Errorf("failed to insert notification batch: %w", mapPostgresError(err))
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close notification batch: %w", err)
	}

	return tx.Commit(ctx)
}

// ListRecentByOrg returns up to limit rows of the given type for the
// organization, newest first by sent_at with created_at as fallback.
func (s *NotificationStore) ListRecentByOrg(ctx context.Context, orgID uuid.UUID, typ models.NotificationType, limit int) ([]*models.Notification, error) {
	query := `
		SELECT notification_id, org_id, dispatch_id, audience, target_user_id,
			type, title, body, sender_user_id, status, sent_at, created_at
		FROM notifications
		WHERE org_id = $1 AND type = $2
		ORDER BY COALESCE(sent_at, created_at) DESC, notification_id`
	args := []any{orgID, typ}

	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $3"
	}

	dbRows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", mapPostgresError(err))
	}
	defer dbRows.Close()

	var result []*models.Notification
	for dbRows.Next() {
		var n models.Notification
		err := dbRows.Scan(&n.NotificationID, &n.OrgID, &n.DispatchID, &n.Audience,
			&n.TargetUserID, &n.Type, &n.Title, &n.Body, &n.SenderUserID,
			&n.Status, &n.SentAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, &n)
	}

	return result, dbRows.Err()
}
