// Package memory provides in-memory store implementations used for tests
// and development. Data is lost on restart.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*models.User // user_id -> User
	usersByEmail map[string]*models.User    // lowercased email -> User

	profiles    map[uuid.UUID]*models.EmployeeProfile
	contacts    map[uuid.UUID][]*models.EmergencyContact
	accounts    map[uuid.UUID][]*models.BankAccount
	attendance  map[uuid.UUID][]*models.AttendanceEntry
	leaves      map[uuid.UUID][]*models.LeaveRequest
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:        make(map[uuid.UUID]*models.User),
		usersByEmail: make(map[string]*models.User),
		profiles:     make(map[uuid.UUID]*models.EmployeeProfile),
		contacts:     make(map[uuid.UUID][]*models.EmergencyContact),
		accounts:     make(map[uuid.UUID][]*models.BankAccount),
		attendance:   make(map[uuid.UUID][]*models.AttendanceEntry),
		leaves:       make(map[uuid.UUID][]*models.LeaveRequest),
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.UserID]; exists {
		return store.ErrUserAlreadyExists
	}

	email := strings.ToLower(user.Email)
	if _, exists := s.usersByEmail[email]; exists {
		return store.ErrUserAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[user.UserID] = &clone
	s.usersByEmail[email] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[strings.ToLower(email)]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// ListByOrg returns all users of an organization matching opts.
func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID, opts store.ListUsersOptions) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.User
	for _, u := range s.users {
		if !u.InOrg(orgID) {
			continue
		}
		if opts.Status != "" && u.Status != opts.Status {
			continue
		}
		if opts.TeamID != nil && (u.TeamID == nil || *u.TeamID != *opts.TeamID) {
			continue
		}
		if opts.DepartmentID != nil && (u.DepartmentID == nil || *u.DepartmentID != *opts.DepartmentID) {
			continue
		}

		clone := *u
		result = append(result, &clone)

		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}

	return result, nil
}

// GetManyByOrg returns the subset of userIDs that exist within orgID.
func (s *UserStore) GetManyByOrg(ctx context.Context, orgID uuid.UUID, userIDs []uuid.UUID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.User
	for _, id := range userIDs {
		u, exists := s.users[id]
		if !exists || !u.InOrg(orgID) {
			continue
		}
		clone := *u
		result = append(result, &clone)
	}

	return result, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.UserID]
	if !exists {
		return store.ErrUserNotFound
	}

	user.UpdatedAt = time.Now()

	oldEmail := strings.ToLower(existing.Email)
	newEmail := strings.ToLower(user.Email)
	if oldEmail != newEmail {
		if _, taken := s.usersByEmail[newEmail]; taken {
			return store.ErrUserAlreadyExists
		}
		delete(s.usersByEmail, oldEmail)
	}

	clone := *user
	s.users[user.UserID] = &clone
	s.usersByEmail[newEmail] = &clone

	return nil
}

// AssignTeam sets the team for all listed users under a single lock.
func (s *UserStore) AssignTeam(ctx context.Context, orgID, teamID uuid.UUID, userIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything.
	for _, id := range userIDs {
		u, exists := s.users[id]
		if !exists || !u.InOrg(orgID) {
			return store.ErrUserNotFound
		}
	}

	now := time.Now()
	for _, id := range userIDs {
		u := s.users[id]
		tid := teamID
		u.TeamID = &tid
		u.UpdatedAt = now
	}

	return nil
}

// DeleteCascade removes the user's child records and then the user row.
func (s *UserStore) DeleteCascade(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return store.ErrUserNotFound
	}

	// Dependents first, then the user row.
	delete(s.contacts, userID)
	delete(s.accounts, userID)
	delete(s.attendance, userID)
	delete(s.leaves, userID)
	delete(s.profiles, userID)
	delete(s.usersByEmail, strings.ToLower(user.Email))
	delete(s.users, userID)

	return nil
}

// PutProfile creates or replaces a user's profile.
func (s *UserStore) PutProfile(ctx context.Context, profile *models.EmployeeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[profile.UserID]; !exists {
		return store.ErrUserNotFound
	}

	profile.UpdatedAt = time.Now()
	clone := *profile
	s.profiles[profile.UserID] = &clone

	return nil
}

// GetProfile retrieves a user's profile.
func (s *UserStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.EmployeeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[userID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	clone := *profile
	return &clone, nil
}

// AddEmergencyContact appends an emergency contact for a user.
func (s *UserStore) AddEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[contact.UserID]; !exists {
		return store.ErrUserNotFound
	}

	clone := *contact
	s.contacts[contact.UserID] = append(s.contacts[contact.UserID], &clone)
	return nil
}

// ListEmergencyContacts returns a user's emergency contacts.
func (s *UserStore) ListEmergencyContacts(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.contacts[userID]), nil
}

// AddBankAccount appends a bank account for a user.
func (s *UserStore) AddBankAccount(ctx context.Context, account *models.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[account.UserID]; !exists {
		return store.ErrUserNotFound
	}

	clone := *account
	s.accounts[account.UserID] = append(s.accounts[account.UserID], &clone)
	return nil
}

// ListBankAccounts returns a user's bank accounts.
func (s *UserStore) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]*models.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.accounts[userID]), nil
}

// AddAttendance appends an attendance entry for a user.
func (s *UserStore) AddAttendance(ctx context.Context, entry *models.AttendanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[entry.UserID]; !exists {
		return store.ErrUserNotFound
	}

	clone := *entry
	s.attendance[entry.UserID] = append(s.attendance[entry.UserID], &clone)
	return nil
}

// ListAttendance returns a user's attendance entries.
func (s *UserStore) ListAttendance(ctx context.Context, userID uuid.UUID) ([]*models.AttendanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.attendance[userID]), nil
}

// AddLeaveRequest appends a leave request for a user.
func (s *UserStore) AddLeaveRequest(ctx context.Context, request *models.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[request.UserID]; !exists {
		return store.ErrUserNotFound
	}

	clone := *request
	s.leaves[request.UserID] = append(s.leaves[request.UserID], &clone)
	return nil
}

// ListLeaveRequests returns a user's leave requests.
func (s *UserStore) ListLeaveRequests(ctx context.Context, userID uuid.UUID) ([]*models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSlice(s.leaves[userID]), nil
}

func cloneSlice[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		clone := *v
		out = append(out, &clone)
	}
	return out
}
