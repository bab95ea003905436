package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/abrezinsky/aesops/internal/services"
)

// tournamentID resolves the {tid} parameter, which is either the numeric
// ID or the public UUID printed on the QR code.
func (h *Handlers) tournamentID(r *http.Request) (int64, error) {
	param := chi.URLParam(r, "tid")
	if id, err := strconv.ParseInt(param, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	if _, err := uuid.Parse(param); err != nil {
		return 0, BadRequest("Invalid tid parameter")
	}
	t, err := h.Tournaments.GetTournamentByPublicID(r.Context(), param)
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (h *Handlers) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Tournaments.ListTournaments(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	t, err := h.Tournaments.GetTournament(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, t)
}

func (h *Handlers) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTournament
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	t, err := h.Tournaments.CreateTournament(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, t)
}

func (h *Handlers) handleStartTournament(w http.ResponseWriter, r *http.Request) {
	id, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	round, err := h.Tournaments.StartTournament(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, round)
}

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req services.Settings
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Settings.UpdateSettings(r.Context(), req); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}

func (h *Handlers) handleListIdentities(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Identities.ListIdentities(r.Context(), r.URL.Query().Get("side"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ids)
}
