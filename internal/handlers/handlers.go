package handlers

import (
	"context"
	"net/http"

	"github.com/abrezinsky/aesops/internal/auth"
	"github.com/abrezinsky/aesops/internal/services"
	"github.com/abrezinsky/aesops/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Tournaments  services.TournamentServicer
	Participants services.ParticipantServicer
	Rounds       services.RoundServicer
	Standings    services.StandingsServicer
	Identities   services.IdentityServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Metrics      http.Handler
	Health       Pinger
	Log          HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the service dependencies of New
type Services struct {
	Tournaments  services.TournamentServicer
	Participants services.ParticipantServicer
	Rounds       services.RoundServicer
	Standings    services.StandingsServicer
	Identities   services.IdentityServicer
	Settings     services.SettingsServicer
}

// New creates a new Handlers instance with all dependencies. metrics may be
// nil, which leaves /metrics unmounted.
func New(svc Services, adminAuth *auth.Auth, hub *websocket.Hub, metrics http.Handler, health Pinger, log HTTPLogger) *Handlers {
	return &Handlers{
		Tournaments:  svc.Tournaments,
		Participants: svc.Participants,
		Rounds:       svc.Rounds,
		Standings:    svc.Standings,
		Identities:   svc.Identities,
		Settings:     svc.Settings,
		Auth:         adminAuth,
		Hub:          hub,
		Metrics:      metrics,
		Health:       health,
		Log:          log,
	}
}

// handleHealth reports 200 when the database answers
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"})
}
