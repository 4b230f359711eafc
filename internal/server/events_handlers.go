package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/realtime"
	"github.com/teamwell/staffd/internal/telemetry"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// handleEvents streams realtime events over SSE. The connection joins
// the viewer's personal channel plus the org and team channels read from
// storage at connect time. The first event is a "hello" carrying the
// connection id used by the subscribe endpoint.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, errs.Internal(fmt.Errorf("response writer does not support streaming")))
		return
	}

	// Membership is read from storage, not from the token, so a stale
	// token cannot join channels the user has left.
	user, err := s.stores.Users.Get(r.Context(), viewer.UserID)
	if err != nil {
		writeError(w, r, errs.Internal(err))
		return
	}

	channels := []string{realtime.UserChannel(user.UserID)}
	if user.OrgID != nil {
		channels = append(channels, realtime.OrgChannel(*user.OrgID))
	}
	if user.TeamID != nil {
		channels = append(channels, realtime.TeamChannel(*user.TeamID))
	}

	connID := uuid.Must(uuid.NewV7())
	events := s.hub.Subscribe(connID, channels)

	s.connMu.Lock()
	s.connOwners[connID] = user.UserID
	s.connMu.Unlock()

	telemetry.ActiveConnections.Inc()

	defer func() {
		s.connMu.Lock()
		delete(s.connOwners, connID)
		s.connMu.Unlock()

		s.hub.Unsubscribe(connID)
		telemetry.ActiveConnections.Dec()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	hello, err := realtime.NewEvent("hello", map[string]string{"connId": connID.String()})
	if err != nil {
		return
	}
	writeSSE(w, hello)
	flusher.Flush()

	zerolog.Ctx(r.Context()).Debug().
		Str("conn_id", connID.String()).
		Int("channels", len(channels)).
		Msg("Event stream opened")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case event, open := <-events:
			if !open {
				return
			}
			writeSSE(w, event)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event realtime.Event) {
	fmt.Fprintf(w, "event: %s\n", event.Type)
	data := event.Payload
	if data == nil {
		data = json.RawMessage("{}")
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

type subscribeRequest struct {
	ConnID   uuid.UUID `json:"connId"`
	Channels []string  `json:"channels"`
}

// handleEventSubscribe extends a live connection's channel set. Every
// requested channel is re-validated against stored membership before
// being granted.
func (s *Server) handleEventSubscribe(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Channels) == 0 {
		writeError(w, r, errs.Validation("Select at least one channel"))
		return
	}

	s.connMu.Lock()
	owner, exists := s.connOwners[req.ConnID]
	s.connMu.Unlock()

	if !exists || owner != viewer.UserID {
		writeError(w, r, errs.NotFound("Connection not found"))
		return
	}

	user, err := s.stores.Users.Get(r.Context(), viewer.UserID)
	if err != nil {
		writeError(w, r, errs.Internal(err))
		return
	}

	for _, channel := range req.Channels {
		allowed := channel == realtime.UserChannel(user.UserID) ||
			(user.OrgID != nil && channel == realtime.OrgChannel(*user.OrgID)) ||
			(user.TeamID != nil && channel == realtime.TeamChannel(*user.TeamID))
		if !allowed {
			writeError(w, r, errs.Forbidden("You are not a member of that channel"))
			return
		}
	}

	if !s.hub.AddChannels(req.ConnID, req.Channels) {
		writeError(w, r, errs.NotFound("Connection not found"))
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
