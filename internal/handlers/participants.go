package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/abrezinsky/aesops/internal/models"
)

// maxRosterSize bounds roster uploads
const maxRosterSize = 4 << 20

func (h *Handlers) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	id, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	list, err := h.Participants.ListParticipants(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, list)
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	id, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req ParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	p, err := h.Participants.Register(r.Context(), id, req.registration())
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, p)
}

// handleImportRoster accepts a multipart upload in the "file" field. The
// file name selects the parser.
func (h *Handlers) handleImportRoster(w http.ResponseWriter, r *http.Request) {
	id, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRosterSize)
	if err := r.ParseMultipartForm(maxRosterSize); err != nil {
		respondError(w, BadRequest("Invalid upload: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, BadRequest("Missing file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, BadRequest("Could not read upload"))
		return
	}
	force, _ := strconv.ParseBool(r.FormValue("force"))

	imported, err := h.Participants.ImportRoster(r.Context(), id, header.Filename, data, force)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, ImportRosterResponse{Imported: len(imported), Participants: imported})
}

func (h *Handlers) handleUpdateParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "pid")
	if err != nil {
		respondError(w, err)
		return
	}
	var req ParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	p, err := h.Participants.UpdateParticipant(r.Context(), id, req.registration())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, p)
}

func (h *Handlers) handleDropParticipant(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.Participants.Drop)
}

func (h *Handlers) handleUndropParticipant(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.Participants.Undrop)
}

func (h *Handlers) setActive(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (*models.Participant, error)) {
	id, err := parseIDParam(r, "pid")
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, p)
}

func (h *Handlers) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "pid")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Participants.Remove(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}
