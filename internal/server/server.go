// Package server assembles the HTTP API: routing, middleware, and the
// JSON handlers over the directory, announcement and realtime services.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"filippo.io/csrf"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/teamwell/staffd/internal/announce"
	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/directory"
	"github.com/teamwell/staffd/internal/logger"
	"github.com/teamwell/staffd/internal/realtime"
	"github.com/teamwell/staffd/internal/roles"
	"github.com/teamwell/staffd/internal/store"
	"github.com/teamwell/staffd/internal/telemetry"
)

// Config carries the server assembly options.
type Config struct {
	CORSOrigins []string
	SessionTTL  time.Duration
	// SecureCookies marks session cookies Secure; disable only in
	// development over plain HTTP.
	SecureCookies bool
}

// Server owns the HTTP surface.
type Server struct {
	cfg       Config
	log       zerolog.Logger
	stores    *store.Stores
	tokens    *auth.TokenCodec
	directory *directory.Service
	announce  *announce.Engine
	hub       *realtime.Hub

	// connOwners maps live event stream connections to the user that
	// opened them, so subscribe requests can't touch foreign connections.
	connMu     sync.Mutex
	connOwners map[uuid.UUID]uuid.UUID
}

// New assembles a server over the given services.
func New(cfg Config, log zerolog.Logger, stores *store.Stores, tokens *auth.TokenCodec, dir *directory.Service, engine *announce.Engine, hub *realtime.Hub) *Server {
	return &Server{
		cfg:        cfg,
		log:        log,
		stores:     stores,
		tokens:     tokens,
		directory:  dir,
		announce:   engine,
		hub:        hub,
		connOwners: make(map[uuid.UUID]uuid.UUID),
	}
}

// Handler builds the routed handler with the full middleware stack.
func (s *Server) Handler() http.Handler {
	authn := auth.NewMiddleware(s.tokens, s.stores.Sessions, s.stores.Users)

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(logger.Requests(s.log))
	r.Use(telemetry.Requests)
	r.Use(chimid.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/me", s.handleMe)

			r.Get("/employees", s.handleListEmployees)
			r.Get("/employees/{userID}", s.handleGetEmployee)
			r.Patch("/employees/{userID}", s.handleUpdateEmployee)
			r.Post("/employees/{userID}/termination", s.handleTerminateEmployee)
			r.Delete("/employees/{userID}", s.handleDeleteEmployee)

			r.Get("/departments", s.handleListDepartments)
			r.With(auth.RequireCapability(roles.CapManageDepartments)).
				Post("/departments", s.handleCreateDepartment)
			r.With(auth.RequireCapability(roles.CapManageDepartments)).
				Put("/departments/{deptID}/head", s.handleAssignHead)

			r.Get("/teams", s.handleListTeams)
			r.With(auth.RequireCapability(roles.CapManageTeams)).
				Post("/teams", s.handleCreateTeam)
			r.With(auth.RequireCapability(roles.CapManageTeams)).
				Put("/teams/{teamID}/members", s.handleAssignTeamMembers)

			r.Get("/projects", s.handleListProjects)
			r.With(auth.RequireCapability(roles.CapManageProjects)).
				Post("/projects", s.handleCreateProject)

			r.Post("/announcements", s.handleSendAnnouncement)
			r.Get("/announcements", s.handleAnnouncementOverview)

			r.Get("/events", s.handleEvents)
			r.Post("/events/subscriptions", s.handleEventSubscribe)
		})
	})

	protection := csrf.New()
	for _, origin := range s.cfg.CORSOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			s.log.Warn().Err(err).Str("origin", origin).Msg("Skipping invalid trusted origin")
		}
	}

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return corsMiddleware.Handler(protection.Handler(r))
}
