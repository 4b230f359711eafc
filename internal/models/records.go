package models

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeProfile holds the extended profile for a user. Deleted as part
// of the user deletion cascade.
type EmployeeProfile struct {
	UserID    uuid.UUID
	Phone     string
	Address   string
	BirthDate *time.Time
	UpdatedAt time.Time
}

// EmergencyContact is a user's emergency contact entry.
type EmergencyContact struct {
	ContactID uuid.UUID // UUIDv7
	UserID    uuid.UUID
	Name      string
	Phone     string
	Relation  string
	CreatedAt time.Time
}

// BankAccount is a user's payout account. Visible only to viewers with
// the compensation capability.
type BankAccount struct {
	AccountID uuid.UUID // UUIDv7
	UserID    uuid.UUID
	BankName  string
	IBAN      string
	CreatedAt time.Time
}

// AttendanceEntry records one day's clock-in/clock-out for a user.
type AttendanceEntry struct {
	EntryID  uuid.UUID // UUIDv7
	UserID   uuid.UUID
	Day      time.Time
	ClockIn  time.Time
	ClockOut *time.Time
}

// LeaveRequest is a user's leave request.
type LeaveRequest struct {
	RequestID uuid.UUID // UUIDv7
	UserID    uuid.UUID
	From      time.Time
	To        time.Time
	Kind      string // "VACATION", "SICK", "UNPAID"
	Status    string // "PENDING", "APPROVED", "REJECTED"
	CreatedAt time.Time
}
