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

// TeamStore implements store.TeamStore using PostgreSQL.
type TeamStore struct {
	pool *pgxpool.Pool
}

// NewTeamStore creates a new PostgreSQL-backed team store.
func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

// Create inserts a new team row.
func (s *TeamStore) Create(ctx context.Context, team *models.Team) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO teams (team_id, org_id, name, lead_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, team.TeamID, team.OrgID, team.Name, team.LeadUserID, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a team by ID.
func (s *TeamStore) Get(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.pool.QueryRow(ctx, `
		SELECT team_id, org_id, name, lead_user_id, created_at, updated_at
		FROM teams
		WHERE team_id = $1
	`, teamID).Scan(&team.TeamID, &team.OrgID, &team.Name, &team.LeadUserID,
		&team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", mapPostgresError(err))
	}

	return &team, nil
}

// ListByOrg lists teams within an organization, ordered by name.
func (s *TeamStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Team, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT team_id, org_id, name, lead_user_id, created_at, updated_at
		FROM teams
		WHERE org_id = $1
		ORDER BY name, team_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(&team.TeamID, &team.OrgID, &team.Name, &team.LeadUserID,
			&team.CreatedAt, &team.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	return teams, rows.Err()
}

// Update updates a team row.
func (s *TeamStore) Update(ctx context.Context, team *models.Team) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE teams
		SET name = $2, lead_user_id = $3, updated_at = $4
		WHERE team_id = $1
	`, team.TeamID, team.Name, team.LeadUserID, team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrTeamNotFound
	}

	return nil
}
