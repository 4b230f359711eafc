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

// DepartmentStore implements store.DepartmentStore using PostgreSQL.
type DepartmentStore struct {
	pool *pgxpool.Pool
}

// NewDepartmentStore creates a new PostgreSQL-backed department store.
func NewDepartmentStore(pool *pgxpool.Pool) *DepartmentStore {
	return &DepartmentStore{pool: pool}
}

// Create inserts a new department row.
func (s *DepartmentStore) Create(ctx context.Context, dept *models.Department) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO departments (department_id, org_id, name, head_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, dept.DepartmentID, dept.OrgID, dept.Name, dept.HeadUserID, dept.CreatedAt, dept.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a department by ID.
func (s *DepartmentStore) Get(ctx context.Context, deptID uuid.UUID) (*models.Department, error) {
	var dept models.Department
	err := s.pool.QueryRow(ctx, `
		SELECT department_id, org_id, name, head_user_id, created_at, updated_at
		FROM departments
		WHERE department_id = $1
	`, deptID).Scan(&dept.DepartmentID, &dept.OrgID, &dept.Name, &dept.HeadUserID,
		&dept.CreatedAt, &dept.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", mapPostgresError(err))
	}

	return &dept, nil
}

// ListByOrg lists departments within an organization, ordered by name.
func (s *DepartmentStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Department, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT department_id, org_id, name, head_user_id, created_at, updated_at
		FROM departments
		WHERE org_id = $1
		ORDER BY name, department_id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var depts []*models.Department
	for rows.Next() {
		var dept models.Department
		err := rows.Scan(&dept.DepartmentID, &dept.OrgID, &dept.Name, &dept.HeadUserID,
			&dept.CreatedAt, &dept.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		depts = append(depts, &dept)
	}

	return depts, rows.Err()
}

// Update updates a department row.
func (s *DepartmentStore) Update(ctx context.Context, dept *models.Department) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE departments
		SET name = $2, head_user_id = $3, updated_at = $4
		WHERE department_id = $1
	`, dept.DepartmentID, dept.Name, dept.HeadUserID, dept.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update department: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrDepartmentNotFound
	}

	return nil
}
