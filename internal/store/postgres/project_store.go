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

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	pool *pgxpool.Pool
}

// NewProjectStore creates a new PostgreSQL-backed project store.
func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{pool: pool}
}

// Create inserts a new project row.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (project_id, org_id, name, team_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, project.ProjectID, project.OrgID, project.Name, project.TeamID,
		project.Status, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.pool.QueryRow(ctx, `
		SELECT project_id, org_id, name, team_id, status, created_at, updated_at
		FROM projects
		WHERE project_id = $1
	`, projectID).Scan(&project.ProjectID, &project.OrgID, &project.Name,
		&project.TeamID, &project.Status, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", mapPostgresError(err))
	}

	return &project, nil
}

// ListByOrg lists projects within an organization, ordered by name.
func (s *ProjectStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT project_id, org_id, name, team_id, status, created_at, updated_at
		FROM projects
		WHERE org_id = $1
		ORDER BY name, project_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(&project.ProjectID, &project.OrgID, &project.Name,
			&project.TeamID, &project.Status, &project.CreatedAt, &project.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// Update updates a project row.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE projects
		SET name = $2, team_id = $3, status = $4, updated_at = $5
		WHERE project_id = $1
	`, project.ProjectID, project.Name, project.TeamID, project.Status, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}

	return nil
}
