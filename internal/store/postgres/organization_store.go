package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{pool: pool}
}

// Create inserts a new organization row.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organizations (org_id, name, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, org.OrgID, org.Name, org.OwnerUserID, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := s.pool.QueryRow(ctx, `
		SELECT org_id, name, owner_user_id, created_at, updated_at
		FROM organizations
		WHERE org_id = $1
	`, orgID).Scan(&org.OrgID, &org.Name, &org.OwnerUserID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return &org, nil
}

// Update updates an organization row.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE organizations
		SET name = $2, owner_user_id = $3, updated_at = $4
		WHERE org_id = $1
	`, org.OrgID, org.Name, org.OwnerUserID, org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	return nil
}
