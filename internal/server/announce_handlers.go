package server

import (
	"net/http"
	"strconv"

	"github.com/teamwell/staffd/internal/announce"
	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
)

func (s *Server) handleSendAnnouncement(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input announce.SendInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.announce.Send(r.Context(), viewer, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleAnnouncementOverview(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.ViewerFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, errs.Validation("Invalid limit"))
			return
		}
		limit = parsed
	}

	items, err := s.announce.Overview(r.Context(), viewer, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"announcements": items})
}
