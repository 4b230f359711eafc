// Package realtime implements best-effort event delivery to connected
// clients. Events are hints to refresh; the store remains the source of
// truth and clients re-read state on receipt.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Channel name prefixes. A connection may hold any mix of the three.
const (
	userChannelPrefix = "user:"
	orgChannelPrefix  = "org:"
	teamChannelPrefix = "team:"
)

// UserChannel returns the per-user channel name.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}

// OrgChannel returns the organization-wide channel name.
func OrgChannel(orgID uuid.UUID) string {
	return orgChannelPrefix + orgID.String()
}

// TeamChannel returns the per-team channel name.
func TeamChannel(teamID uuid.UUID) string {
	return teamChannelPrefix + teamID.String()
}

// Event is one message delivered to subscribers. Payload is an opaque
// JSON document owned by the emitter.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event, marshalling the payload.
func NewEvent(eventType string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: eventType}, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return Event{Type: eventType, Payload: data}, nil
}

// Broker fans events out to subscribers of a channel. Delivery is
// best-effort; a Broker never blocks the caller on slow consumers.
type Broker interface {
	// Emit publishes an event to every current subscriber of the channel.
	// Implementations return only transport errors; absence of
	// subscribers is not an error.
	Emit(ctx context.Context, channel string, event Event) error
}
