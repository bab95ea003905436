package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) handleStandings(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	table, err := h.Standings.Standings(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, table)
}

func (h *Handlers) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	table, err := h.Standings.Recalculate(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, table)
}

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	stats, err := h.Standings.Stats(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	doc, err := h.Standings.Export(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		respondError(w, InternalError(err))
		return
	}
	respondFile(w, "application/json", fmt.Sprintf("tournament-%d.json", tid), data)
}

func (h *Handlers) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := h.Standings.ExportXLSX(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	respondFile(w, xlsxContentType, fmt.Sprintf("tournament-%d.xlsx", tid), data)
}

func (h *Handlers) handleQRCode(w http.ResponseWriter, r *http.Request) {
	tid, err := h.tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	png, err := h.Standings.QRCode(r.Context(), tid)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
