package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/store"
)

const userColumns = `user_id, org_id, email, password_hash, name, role, status, title,
	department_id, team_id, terminated_at, created_at, updated_at`

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts a new user row.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (user_id, org_id, email, password_hash, name, role, status, title,
			department_id, team_id, terminated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, user.UserID, user.OrgID, strings.ToLower(user.Email), user.PasswordHash, user.Name,
		user.Role, user.Status, user.Title, user.DepartmentID, user.TeamID,
		user.TerminatedAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE user_id = $1
	`, userID)

	return scanUser(row)
}

// GetByEmail retrieves a user by email. The lookup is case-insensitive;
// emails are stored lowercased.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, strings.ToLower(email))

	return scanUser(row)
}

// ListByOrg lists users within an organization, applying the given filters.
// Results are ordered by name for stable listings.
func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID, opts store.ListUsersOptions) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE org_id = $1`
	args := []any{orgID}

	if opts.Status != "" {
		args = append(args, opts.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if opts.TeamID != nil {
		args = append(args, *opts.TeamID)
		query += fmt.Sprintf(" AND team_id = $%d", len(args))
	}
	if opts.DepartmentID != nil {
		args = append(args, *opts.DepartmentID)
		query += fmt.Sprintf(" AND department_id = $%d", len(args))
	}

	query += " ORDER BY name, user_id"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanUsers(rows)
}

// GetManyByOrg returns the subset of userIDs that exist within orgID.
func (s *UserStore) GetManyByOrg(ctx context.Context, orgID uuid.UUID, userIDs []uuid.UUID) ([]*models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE org_id = $1 AND user_id = ANY($2)
	`, orgID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Update updates a user row.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE users
		SET org_id = $2, email = $3, password_hash = $4, name = $5, role = $6,
			status = $7, title = $8, department_id = $9, team_id = $10,
			terminated_at = $11, updated_at = $12
		WHERE user_id = $1
	`, user.UserID, user.OrgID, strings.ToLower(user.Email), user.PasswordHash,
		user.Name, user.Role, user.Status, user.Title, user.DepartmentID,
		user.TeamID, user.TerminatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// AssignTeam sets the team for all listed users in one transaction. Every
// user must exist within orgID or the whole write is rolled back.
func (s *UserStore) AssignTeam(ctx context.Context, orgID, teamID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	result, err := tx.Exec(ctx, `
		UPDATE users
		SET team_id = $1, updated_at = NOW()
		WHERE org_id = $2 AND user_id = ANY($3)
	`, teamID, orgID, userIDs)
	if err != nil {
		return fmt.Errorf("failed to assign team: %w", mapPostgresError(err))
	}

	if result.RowsAffected() != int64(len(userIDs)) {
		return store.ErrUserNotFound
	}

	return tx.Commit(ctx)
}

// DeleteCascade removes the user and all dependent rows in one transaction.
// Dependents go first, then references pointing at the user are nulled, then
// the user row itself.
func (s *UserStore) DeleteCascade(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	dependents := []string{
		`DELETE FROM emergency_contacts WHERE user_id = $1`,
		`DELETE FROM bank_accounts WHERE user_id = $1`,
		`DELETE FROM attendance_entries WHERE user_id = $1`,
		`DELETE FROM leave_requests WHERE user_id = $1`,
		`DELETE FROM password_reset_tokens WHERE user_id = $1`,
		`DELETE FROM employment_records WHERE user_id = $1`,
		`DELETE FROM employee_profiles WHERE user_id = $1`,
		`DELETE FROM sessions WHERE user_id = $1`,
		`UPDATE departments SET head_user_id = NULL, updated_at = NOW() WHERE head_user_id = $1`,
		`UPDATE teams SET lead_user_id = NULL, updated_at = NOW() WHERE lead_user_id = $1`,
	}

	for _, query := range dependents {
		if _, err := tx.Exec(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to delete user dependents: %w", mapPostgresError(err))
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return tx.Commit(ctx)
}

// PutProfile upserts the extended profile for a user.
func (s *UserStore) PutProfile(ctx context.Context, profile *models.EmployeeProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employee_profiles (user_id, phone, address, birth_date, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone, address = EXCLUDED.address,
			birth_date = EXCLUDED.birth_date, updated_at = EXCLUDED.updated_at
	`, profile.UserID, profile.Phone, profile.Address, profile.BirthDate, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put profile: %w", mapPostgresError(err))
	}

	return nil
}

// GetProfile retrieves the extended profile for a user.
func (s *UserStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.EmployeeProfile, error) {
	var profile models.EmployeeProfile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, phone, address, birth_date, updated_at
		FROM employee_profiles
		WHERE user_id = $1
	`, userID).Scan(&profile.UserID, &profile.Phone, &profile.Address,
		&profile.BirthDate, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", mapPostgresError(err))
	}

	return &profile, nil
}

// AddEmergencyContact inserts an emergency contact entry.
func (s *UserStore) AddEmergencyContact(ctx context.Context, contact *models.EmergencyContact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO emergency_contacts (contact_id, user_id, name, phone, relation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, contact.ContactID, contact.UserID, contact.Name, contact.Phone,
		contact.Relation, contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add emergency contact: %w", mapPostgresError(err))
	}

	return nil
}

// ListEmergencyContacts lists emergency contacts for a user, oldest first.
func (s *UserStore) ListEmergencyContacts(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT contact_id, user_id, name, phone, relation, created_at
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY created_at, contact_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergency contacts: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var contacts []*models.EmergencyContact
	for rows.Next() {
		var c models.EmergencyContact
		if err := rows.Scan(&c.ContactID, &c.UserID, &c.Name, &c.Phone, &c.Relation, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan emergency contact: %w", err)
		}
		contacts = append(contacts, &c)
	}

	return contacts, rows.Err()
}

// AddBankAccount inserts a bank account entry.
func (s *UserStore) AddBankAccount(ctx context.Context, account *models.BankAccount) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bank_accounts (account_id, user_id, bank_name, iban, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.AccountID, account.UserID, account.BankName, account.IBAN, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add bank account: %w", mapPostgresError(err))
	}

	return nil
}

// ListBankAccounts lists bank accounts for a user, oldest first.
func (s *UserStore) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]*models.BankAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT account_id, user_id, bank_name, iban, created_at
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY created_at, account_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var accounts []*models.BankAccount
	for rows.Next() {
		var a models.BankAccount
		if err := rows.Scan(&a.AccountID, &a.UserID, &a.BankName, &a.IBAN, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bank account: %w", err)
		}
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}

// AddAttendance inserts an attendance entry.
func (s *UserStore) AddAttendance(ctx context.Context, entry *models.AttendanceEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attendance_entries (entry_id, user_id, day, clock_in, clock_out)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.EntryID, entry.UserID, entry.Day, entry.ClockIn, entry.ClockOut)
	if err != nil {
		return fmt.Errorf("failed to add attendance entry: %w", mapPostgresError(err))
	}

	return nil
}

// ListAttendance lists attendance entries for a user, newest day first.
func (s *UserStore) ListAttendance(ctx context.Context, userID uuid.UUID) ([]*models.AttendanceEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT entry_id, user_id, day, clock_in, clock_out
		FROM attendance_entries
		WHERE user_id = $1
		ORDER BY day DESC, entry_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var entries []*models.AttendanceEntry
	for rows.Next() {
		var e models.AttendanceEntry
		if err := rows.Scan(&e.EntryID, &e.UserID, &e.Day, &e.ClockIn, &e.ClockOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// AddLeaveRequest inserts a leave request.
func (s *UserStore) AddLeaveRequest(ctx context.Context, request *models.LeaveRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_requests (request_id, user_id, from_date, to_date, kind, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, request.RequestID, request.UserID, request.From, request.To,
		request.Kind, request.Status, request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add leave request: %w", mapPostgresError(err))
	}

	return nil
}

// ListLeaveRequests lists leave requests for a user, newest first.
func (s *UserStore) ListLeaveRequests(ctx context.Context, userID uuid.UUID) ([]*models.LeaveRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT request_id, user_id, from_date, to_date, kind, status, created_at
		FROM leave_requests
		WHERE user_id = $1
		ORDER BY created_at DESC, request_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var requests []*models.LeaveRequest
	for rows.Next() {
		var r models.LeaveRequest
		if err := rows.Scan(&r.RequestID, &r.UserID, &r.From, &r.To, &r.Kind, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, &r)
	}

	return requests, rows.Err()
}

// scanUser scans a single user row, mapping pgx.ErrNoRows to the sentinel.
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.UserID, &user.OrgID, &user.Email, &user.PasswordHash,
		&user.Name, &user.Role, &user.Status, &user.Title, &user.DepartmentID,
		&user.TeamID, &user.TerminatedAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", mapPostgresError(err))
	}

	return &user, nil
}

// scanUsers scans a user result set.
func scanUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.UserID, &user.OrgID, &user.Email, &user.PasswordHash,
			&user.Name, &user.Role, &user.Status, &user.Title, &user.DepartmentID,
			&user.TeamID, &user.TerminatedAt, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
