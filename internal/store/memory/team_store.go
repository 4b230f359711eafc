package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

// TeamStore implements store.TeamStore using in-memory storage.
type TeamStore struct {
	mu    sync.RWMutex
	teams map[uuid.UUID]*models.Team
}

// NewTeamStore creates a new in-memory team store.
func NewTeamStore() *TeamStore {
	return &TeamStore{
		teams: make(map[uuid.UUID]*models.Team),
	}
}

// Create creates a new team in memory.
func (s *TeamStore) Create(ctx context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *team
	s.teams[team.TeamID] = &clone
	return nil
}

// Get retrieves a team by ID.
func (s *TeamStore) Get(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, exists := s.teams[teamID]
	if !exists {
		return nil, store.ErrTeamNotFound
	}

	clone := *team
	return &clone, nil
}

// ListByOrg returns all teams of an organization.
func (s *TeamStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Team
	for _, t := range s.teams {
		if t.OrgID != orgID {
			continue
		}
		clone := *t
		result = append(result, &clone)
	}

	return result, nil
}

// Update updates an existing team.
func (s *TeamStore) Update(ctx context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.teams[team.TeamID]; !exists {
		return store.ErrTeamNotFound
	}

	team.UpdatedAt = time.Now()
	clone := *team
	s.teams[team.TeamID] = &clone
	return nil
}
