package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teamwell/staffd/internal/telemetry"
)

// connBufferSize is the per-connection event buffer. When the buffer is
// full new events are dropped for that connection rather than blocking
// the emitter.
const connBufferSize = 32

type connection struct {
	ch       chan Event
	channels map[string]struct{}
}

// Hub is the in-process Broker. Each connection holds a buffered channel;
// emitters never block.
type Hub struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*connection
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*connection),
	}
}

// Subscribe registers a connection with its initial channel set and
// returns the stream of events for it. The caller must Unsubscribe when
// the connection closes.
func (h *Hub) Subscribe(connID uuid.UUID, channels []string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn := &connection{
		ch:       make(chan Event, connBufferSize),
		channels: make(map[string]struct{}, len(channels)),
	}
	for _, channel := range channels {
		conn.channels[channel] = struct{}{}
	}

	h.conns[connID] = conn
	return conn.ch
}

// AddChannels joins a live connection to additional channels. Unknown
// connection ids are ignored; the connection may have closed already.
func (h *Hub) AddChannels(connID uuid.UUID, channels []string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, exists := h.conns[connID]
	if !exists {
		return false
	}

	for _, channel := range channels {
		conn.channels[channel] = struct{}{}
	}
	return true
}

// Unsubscribe removes a connection and closes its event stream.
func (h *Hub) Unsubscribe(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, exists := h.conns[connID]
	if !exists {
		return
	}

	delete(h.conns, connID)
	close(conn.ch)
}

// Emit delivers the event to every connection subscribed to the channel.
// Connections with a full buffer are skipped.
func (h *Hub) Emit(ctx context.Context, channel string, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for connID, conn := range h.conns {
		if _, subscribed := conn.channels[channel]; !subscribed {
			continue
		}

		select {
		case conn.ch <- event:
			telemetry.EventsDelivered.Inc()
		default:
			telemetry.EventsDropped.Inc()
			log.Debug().
				Str("conn_id", connID.String()).
				Str("channel", channel).
				Str("event_type", event.Type).
				Msg("Dropping event for slow consumer")
		}
	}

	return nil
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
