package handlers

import (
	"net/http"
	"strconv"

	"github.com/abrezinsky/aesops/internal/models"
	"github.com/abrezinsky/aesops/internal/services"
)

// roundParams resolves {tid} and {rnd}
func (h *Handlers) roundParams(r *http.Request) (int64, int, error) {
	tid, err := h.tournamentID(r)
	if err != nil {
		return 0, 0, err
	}
	rnd, err := parseIntParam(r, "rnd")
	if err != nil {
		return 0, 0, err
	}
	if rnd < 1 {
		return 0, 0, BadRequest("Invalid rnd parameter")
	}
	return tid, rnd, nil
}

func (h *Handlers) handleListRounds(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	rounds, err := h.Rounds.ListRounds(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, rounds)
}

func (h *Handlers) handleGetRound(w http.ResponseWriter, r *http.Request) {
	tid, rnd, err := h.roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	round, err := h.Rounds.GetRound(r.Context(), tid, rnd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, round)
}

// handlePairRound pairs a round. ?repair=true replaces existing pairings.
func (h *Handlers) handlePairRound(w http.ResponseWriter, r *http.Request) {
	tid, rnd, err := h.roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	repair, _ := strconv.ParseBool(r.URL.Query().Get("repair"))
	round, err := h.Rounds.PairRound(r.Context(), tid, rnd, services.PairOptions{Repair: repair})
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, round)
}

func (h *Handlers) handleDeletePairings(w http.ResponseWriter, r *http.Request) {
	tid, rnd, err := h.roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Rounds.DeletePairings(r.Context(), tid, rnd); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleReportResult(w http.ResponseWriter, r *http.Request) {
	mid, err := parseIDParam(r, "mid")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ResultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var m *models.Match
	switch {
	case req.Outcome != "":
		m, err = h.Rounds.ReportOutcome(r.Context(), mid, req.Outcome)
	case req.CorpScore != nil && req.RunnerScore != nil:
		m, err = h.Rounds.ReportResult(r.Context(), mid, *req.CorpScore, *req.RunnerScore)
	default:
		err = BadRequest("Either outcome or both scores are required")
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, m)
}

func (h *Handlers) handleImportResults(w http.ResponseWriter, r *http.Request) {
	tid, rnd, err := h.roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req ImportResultsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	n, err := h.Rounds.ImportResults(r.Context(), tid, rnd, req.Results)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ImportResultsResponse{Recorded: n})
}

func (h *Handlers) handleCloseRound(w http.ResponseWriter, r *http.Request) {
	tid, rnd, err := h.roundParams(r)
	if err != nil {
		respondError(w, err)
		return
	}
	table, err := h.Rounds.CloseRound(r.Context(), tid, rnd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, table)
}
