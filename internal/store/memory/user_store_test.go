package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
)

func newTestUser(orgID uuid.UUID, email string) *models.User {
	now := time.Now()
	return &models.User{
		UserID:    uuid.Must(uuid.NewV7()),
		OrgID:     &orgID,
		Email:     email,
		Name:      "Test User",
		Role:      roles.RoleEmployee,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserStoreCreateGet(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())
	user := newTestUser(orgID, "alice@example.com")

	require.NoError(t, s.Create(t.Context(), user))

	got, err := s.Get(t.Context(), user.UserID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	// Lookup is case-insensitive.
	got, err = s.GetByEmail(t.Context(), "ALICE@Example.COM")
	require.NoError(t, err)
	require.Equal(t, user.UserID, got.UserID)

	_, err = s.Get(t.Context(), uuid.Must(uuid.NewV7()))
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())

	require.NoError(t, s.Create(t.Context(), newTestUser(orgID, "alice@example.com")))

	dup := newTestUser(orgID, "Alice@example.com")
	require.ErrorIs(t, s.Create(t.Context(), dup), store.ErrUserAlreadyExists)
}

func TestUserStoreListByOrg(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())
	otherOrg := uuid.Must(uuid.NewV7())
	teamID := uuid.Must(uuid.NewV7())

	active := newTestUser(orgID, "active@example.com")
	active.TeamID = &teamID
	require.NoError(t, s.Create(t.Context(), active))

	terminated := newTestUser(orgID, "gone@example.com")
	terminated.Status = models.UserStatusTerminated
	require.NoError(t, s.Create(t.Context(), terminated))

	require.NoError(t, s.Create(t.Context(), newTestUser(otherOrg, "outsider@example.com")))

	all, err := s.ListByOrg(t.Context(), orgID, store.ListUsersOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := s.ListByOrg(t.Context(), orgID, store.ListUsersOptions{Status: models.UserStatusActive})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, active.UserID, filtered[0].UserID)

	byTeam, err := s.ListByOrg(t.Context(), orgID, store.ListUsersOptions{TeamID: &teamID})
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
}

func TestUserStoreGetManyByOrgScoping(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())
	otherOrg := uuid.Must(uuid.NewV7())

	inside := newTestUser(orgID, "inside@example.com")
	outside := newTestUser(otherOrg, "outside@example.com")
	require.NoError(t, s.Create(t.Context(), inside))
	require.NoError(t, s.Create(t.Context(), outside))

	found, err := s.GetManyByOrg(t.Context(), orgID, []uuid.UUID{inside.UserID, outside.UserID, uuid.Must(uuid.NewV7())})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, inside.UserID, found[0].UserID)
}

func TestUserStoreAssignTeamAtomic(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())
	teamID := uuid.Must(uuid.NewV7())

	member := newTestUser(orgID, "member@example.com")
	require.NoError(t, s.Create(t.Context(), member))

	// One unknown id fails the whole batch; the valid member keeps its
	// previous team.
	err := s.AssignTeam(t.Context(), orgID, teamID, []uuid.UUID{member.UserID, uuid.Must(uuid.NewV7())})
	require.ErrorIs(t, err, store.ErrUserNotFound)

	got, err := s.Get(t.Context(), member.UserID)
	require.NoError(t, err)
	require.Nil(t, got.TeamID)

	require.NoError(t, s.AssignTeam(t.Context(), orgID, teamID, []uuid.UUID{member.UserID}))
	got, err = s.Get(t.Context(), member.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.TeamID)
	require.Equal(t, teamID, *got.TeamID)
}

func TestUserStoreDeleteCascade(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())

	user := newTestUser(orgID, "doomed@example.com")
	require.NoError(t, s.Create(t.Context(), user))

	require.NoError(t, s.PutProfile(t.Context(), &models.EmployeeProfile{UserID: user.UserID}))
	require.NoError(t, s.AddEmergencyContact(t.Context(), &models.EmergencyContact{
		ContactID: uuid.Must(uuid.NewV7()),
		UserID:    user.UserID,
		Name:      "Next of kin",
	}))
	require.NoError(t, s.AddBankAccount(t.Context(), &models.BankAccount{
		AccountID: uuid.Must(uuid.NewV7()),
		UserID:    user.UserID,
	}))

	require.NoError(t, s.DeleteCascade(t.Context(), user.UserID))

	_, err := s.Get(t.Context(), user.UserID)
	require.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.GetByEmail(t.Context(), user.Email)
	require.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = s.GetProfile(t.Context(), user.UserID)
	require.ErrorIs(t, err, store.ErrProfileNotFound)

	contacts, err := s.ListEmergencyContacts(t.Context(), user.UserID)
	require.NoError(t, err)
	require.Empty(t, contacts)
}

func TestUserStoreClonesOnRead(t *testing.T) {
	s := NewUserStore()
	orgID := uuid.Must(uuid.NewV7())
	user := newTestUser(orgID, "immutable@example.com")
	require.NoError(t, s.Create(t.Context(), user))

	got, err := s.Get(t.Context(), user.UserID)
	require.NoError(t, err)
	got.Name = "Mutated"

	again, err := s.Get(t.Context(), user.UserID)
	require.NoError(t, err)
	require.Equal(t, "Test User", again.Name)
}
