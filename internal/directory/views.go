package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/roles"
)

// EmployeeSummary is the list projection of a user. It never carries
// credentials or compensation data.
type EmployeeSummary struct {
	UserID       uuid.UUID         `json:"userId"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Role         roles.Role        `json:"role"`
	Status       models.UserStatus `json:"status"`
	Title        string            `json:"title,omitempty"`
	DepartmentID *uuid.UUID        `json:"departmentId,omitempty"`
	TeamID       *uuid.UUID        `json:"teamId,omitempty"`
	TerminatedAt *time.Time        `json:"terminatedAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Profile is the extended profile projection.
type Profile struct {
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
}

// EmergencyContact is the contact projection.
type EmergencyContact struct {
	ContactID uuid.UUID `json:"contactId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Relation  string    `json:"relation,omitempty"`
}

// BankAccount is the compensation-gated account projection.
type BankAccount struct {
	AccountID uuid.UUID `json:"accountId"`
	BankName  string    `json:"bankName"`
	IBAN      string    `json:"iban"`
}

// EmployeeDetail is the single-employee projection. BankAccounts is nil
// (omitted from JSON) when the viewer lacks the compensation capability;
// it is an empty slice when visible but empty.
type EmployeeDetail struct {
	EmployeeSummary
	Profile           *Profile           `json:"profile,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty"`
	BankAccounts      []BankAccount      `json:"bankAccounts,omitempty"`
}

func newEmployeeSummary(user *models.User) *EmployeeSummary {
	return &EmployeeSummary{
		UserID:       user.UserID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Status:       user.Status,
		Title:        user.Title,
		DepartmentID: user.DepartmentID,
		TeamID:       user.TeamID,
		TerminatedAt: user.TerminatedAt,
		CreatedAt:    user.CreatedAt,
	}
}
