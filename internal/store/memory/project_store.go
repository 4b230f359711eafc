package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

// ProjectStore implements store.ProjectStore using in-memory storage.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*models.Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[uuid.UUID]*models.Project),
	}
}

// Create creates a new project in memory.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *project
	s.projects[project.ProjectID] = &clone
	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[projectID]
	if !exists {
		return nil, store.ErrProjectNotFound
	}

	clone := *project
	return &clone, nil
}

// ListByOrg returns all projects of an organization.
func (s *ProjectStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Project
	for _, p := range s.projects {
		if p.OrgID != orgID {
			continue
		}
		clone := *p
		result = append(result, &clone)
	}

	return result, nil
}

// Update updates an existing project.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ProjectID]; !exists {
		return store.ErrProjectNotFound
	}

	project.UpdatedAt = time.Now()
	clone := *project
	s.projects[project.ProjectID] = &clone
	return nil
}
