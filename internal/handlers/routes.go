package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.handleHealth)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Auth
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	// Public API
	r.Get("/api/identities", h.handleListIdentities)
	r.Get("/api/tournaments", h.handleListTournaments)
	r.Route("/api/tournaments/{tid}", func(r chi.Router) {
		r.Get("/", h.handleGetTournament)
		r.Get("/participants", h.handleListParticipants)
		r.Get("/standings", h.handleStandings)
		r.Get("/rounds", h.handleListRounds)
		r.Get("/rounds/{rnd}", h.handleGetRound)
		r.Get("/stats", h.handleStats)
		r.Get("/export.json", h.handleExportJSON)
		r.Get("/export.xlsx", h.handleExportXLSX)
		r.Get("/qr", h.handleQRCode)
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Settings
		r.Get("/api/admin/settings", h.handleGetSettings)
		r.Put("/api/admin/settings", h.handleUpdateSettings)

		// Tournaments
		r.Post("/api/admin/tournaments", h.handleCreateTournament)
		r.Post("/api/admin/tournaments/{tid}/start", h.handleStartTournament)
		r.Post("/api/admin/tournaments/{tid}/recalculate", h.handleRecalculate)

		// Registration
		r.Post("/api/admin/tournaments/{tid}/participants", h.handleRegister)
		r.Post("/api/admin/tournaments/{tid}/participants/import", h.handleImportRoster)
		r.Put("/api/admin/participants/{pid}", h.handleUpdateParticipant)
		r.Post("/api/admin/participants/{pid}/drop", h.handleDropParticipant)
		r.Post("/api/admin/participants/{pid}/undrop", h.handleUndropParticipant)
		r.Delete("/api/admin/participants/{pid}", h.handleRemoveParticipant)

		// Rounds
		r.Post("/api/admin/tournaments/{tid}/rounds/{rnd}/pair", h.handlePairRound)
		r.Delete("/api/admin/tournaments/{tid}/rounds/{rnd}", h.handleDeletePairings)
		r.Post("/api/admin/tournaments/{tid}/rounds/{rnd}/results", h.handleImportResults)
		r.Post("/api/admin/tournaments/{tid}/rounds/{rnd}/close", h.handleCloseRound)
		r.Post("/api/admin/matches/{mid}/result", h.handleReportResult)
	})

	return r
}
