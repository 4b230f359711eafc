// Package announce implements announcement dispatch and the grouped
// overview read path.
package announce

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
	"github.com/teamwell/staffd/internal/realtime"
	"github.com/teamwell/staffd/internal/store"
	"github.com/teamwell/staffd/internal/telemetry"
)

// Engine creates announcement dispatches and emits best-effort realtime
// events after the rows are committed.
type Engine struct {
	users         store.UserStore
	notifications store.NotificationStore
	broker        realtime.Broker
	validate      *validator.Validate
}

// NewEngine creates an announcement engine. broker may not be nil; use
// a Hub when no external broker is configured.
func NewEngine(users store.UserStore, notifications store.NotificationStore, broker realtime.Broker) *Engine {
	return &Engine{
		users:         users,
		notifications: notifications,
		broker:        broker,
		validate:      validator.New(),
	}
}

// SendInput is one dispatch request.
type SendInput struct {
	Title        string                      `json:"title" validate:"required"`
	Body         string                      `json:"body" validate:"required"`
	Audience     models.NotificationAudience `json:"audience" validate:"required,oneof=ORGANIZATION INDIVIDUAL"`
	RecipientIDs []uuid.UUID                 `json:"recipientIds"`
}

// SendResult carries the dispatch id of a successful send.
type SendResult struct {
	DispatchID uuid.UUID `json:"dispatchId"`
}

// eventPayload is the minimal projection pushed to subscribers. Clients
// re-read the list endpoint on receipt.
type eventPayload struct {
	DispatchID uuid.UUID `json:"dispatchId"`
	Title      string    `json:"title"`
	SenderID   uuid.UUID `json:"senderId"`
	SentAt     time.Time `json:"sentAt"`
}

// Send validates the input, persists one row per recipient (or one
// organization-wide row) atomically, and returns the dispatch id. The
// realtime push happens after return and never affects the result.
func (e *Engine) Send(ctx context.Context, viewer *auth.Viewer, input SendInput) (*SendResult, error) {
	if viewer.OrgID == nil {
		return nil, errs.Validation("An organization context is required to send announcements")
	}
	orgID := *viewer.OrgID

	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)

	if err := e.validate.Struct(input); err != nil {
		return nil, errs.Validation("Title, body and audience are required")
	}

	dispatchID := uuid.Must(uuid.NewV7())
	now := time.Now()

	var rows []*models.Notification
	var channels []string

	switch input.Audience {
	case models.AudienceOrganization:
		rows = append(rows, e.newRow(dispatchID, orgID, viewer.UserID, input, nil, now))
		channels = append(channels, realtime.OrgChannel(orgID))

	case models.AudienceIndividual:
		recipients := dedupe(input.RecipientIDs)
		if len(recipients) == 0 {
			return nil, errs.Validation("Select at least one teammate")
		}

		found, err := e.users.GetManyByOrg(ctx, orgID, recipients)
		if err != nil {
			return nil, errs.Internal(err)
		}

		resolved := make(map[uuid.UUID]bool, len(found))
		for _, user := range found {
			if user.IsTerminated() {
				continue
			}
			resolved[user.UserID] = true
		}

		if len(resolved) != len(recipients) {
			return nil, errs.Validation("Some selected teammates are no longer available")
		}

		for _, recipientID := range recipients {
			target := recipientID
			rows = append(rows, e.newRow(dispatchID, orgID, viewer.UserID, input, &target, now))
			channels = append(channels, realtime.UserChannel(recipientID))
		}

	default:
		return nil, errs.Validation("Unknown audience")
	}

	if err := e.notifications.CreateBatch(ctx, rows); err != nil {
		return nil, errs.Internal(err)
	}

	telemetry.AnnouncementsSent.Inc()

	// Fire-and-forget push. The rows are committed; a failed or slow emit
	// must not fail the request, so it runs detached from the request
	// context.
	go e.push(context.WithoutCancel(ctx), channels, eventPayload{
		DispatchID: dispatchID,
		Title:      input.Title,
		SenderID:   viewer.UserID,
		SentAt:     now,
	})

	return &SendResult{DispatchID: dispatchID}, nil
}

func (e *Engine) newRow(dispatchID, orgID, senderID uuid.UUID, input SendInput, target *uuid.UUID, now time.Time) *models.Notification {
	sentAt := now
	return &models.Notification{
		NotificationID: uuid.Must(uuid.NewV7()),
		OrgID:          orgID,
		DispatchID:     dispatchID,
		Audience:       input.Audience,
		TargetUserID:   target,
		Type:           models.NotificationTypeAnnouncement,
		Title:          input.Title,
		Body:           input.Body,
		SenderUserID:   senderID,
		Status:         models.NotificationStatusSent,
		SentAt:         &sentAt,
		CreatedAt:      now,
	}
}

func (e *Engine) push(ctx context.Context, channels []string, payload eventPayload) {
	event, err := realtime.NewEvent("announcement.created", payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build announcement event")
		return
	}

	for _, channel := range channels {
		if err := e.broker.Emit(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Announcement push failed")
		}
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	var result []uuid.UUID
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
