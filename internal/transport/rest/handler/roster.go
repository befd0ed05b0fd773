package handler

import (
	"errors"
	"net/http"

	"surveycast/internal/roster"
	"surveycast/internal/service"
)

const maxRosterBytes = 10 << 20

// RosterHandler handles roster uploads
type RosterHandler struct {
	engine *service.Engine
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(engine *service.Engine) *RosterHandler {
	return &RosterHandler{engine: engine}
}

// Upload handles POST /v1/roster?filename=recipients.xlsx
func (h *RosterHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "roster.csv"
	}

	parsed, err := roster.Load(name, http.MaxBytesReader(w, r.Body, maxRosterBytes))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, roster.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		writeError(w, status, err.Error())
		return
	}

	report, err := h.engine.LoadRoster(r.Context(), parsed.Recipients)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report.Skipped += parsed.Skipped

	writeJSON(w, http.StatusOK, report)
}
