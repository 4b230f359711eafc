package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationAudience selects between organization-wide and individually
// targeted delivery.
type NotificationAudience string

const (
	AudienceOrganization NotificationAudience = "ORGANIZATION"
	AudienceIndividual   NotificationAudience = "INDIVIDUAL"
)

// NotificationType distinguishes announcement rows from other notification
// kinds that may share the table.
type NotificationType string

const (
	NotificationTypeAnnouncement NotificationType = "ANNOUNCEMENT"
)

// NotificationStatus is the row lifecycle. Rows are immutable once SENT.
type NotificationStatus string

const (
	NotificationStatusDraft NotificationStatus = "DRAFT"
	NotificationStatusSent  NotificationStatus = "SENT"
)

// Notification is one persisted per-recipient row of a logical dispatch.
// All rows sharing a DispatchID carry identical title/body/sender and are
// re-aggregated into one user-visible item when listed.
type Notification struct {
	NotificationID uuid.UUID // UUIDv7
	OrgID          uuid.UUID
	DispatchID     uuid.UUID // uuid.Nil on legacy rows; listing falls back to the row id
	Audience       NotificationAudience
	TargetUserID   *uuid.UUID // nil for organization-wide rows
	Type           NotificationType
	Title          string
	Body           string
	SenderUserID   uuid.UUID
	Status         NotificationStatus
	SentAt         *time.Time
	CreatedAt      time.Time
}
