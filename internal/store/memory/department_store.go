package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

// DepartmentStore implements store.DepartmentStore using in-memory storage.
type DepartmentStore struct {
	mu    sync.RWMutex
	depts map[uuid.UUID]*models.Department
}

// NewDepartmentStore creates a new in-memory department store.
func NewDepartmentStore() *DepartmentStore {
	return &DepartmentStore{
		depts: make(map[uuid.UUID]*models.Department),
	}
}

// Create creates a new department in memory.
func (s *DepartmentStore) Create(ctx context.Context, dept *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *dept
	s.depts[dept.DepartmentID] = &clone
	return nil
}

// Get retrieves a department by ID.
func (s *DepartmentStore) Get(ctx context.Context, deptID uuid.UUID) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dept, exists := s.depts[deptID]
	if !exists {
		return nil, store.ErrDepartmentNotFound
	}

	clone := *dept
	return &clone, nil
}

// ListByOrg returns all departments of an organization.
func (s *DepartmentStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Department
	for _, d := range s.depts {
		if d.OrgID != orgID {
			continue
		}
		clone := *d
		result = append(result, &clone)
	}

	return result, nil
}

// Update updates an existing department.
func (s *DepartmentStore) Update(ctx context.Context, dept *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.depts[dept.DepartmentID]; !exists {
		return store.ErrDepartmentNotFound
	}

	dept.UpdatedAt = time.Now()
	clone := *dept
	s.depts[dept.DepartmentID] = &clone
	return nil
}
