package handler

import (
	"net/http"
	"strconv"

	"surveycast/internal/model"
	"surveycast/internal/service"
)

// ResultsHandler handles result export and retrieval endpoints
type ResultsHandler struct {
	engine    *service.Engine
	exportSvc *service.ExportService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(engine *service.Engine, exportSvc *service.ExportService) *ResultsHandler {
	return &ResultsHandler{engine: engine, exportSvc: exportSvc}
}

// Export handles POST /v1/results/export
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	art, err := h.engine.Export(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, art)
}

// List handles GET /v1/results
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.engine.Results(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// Download handles GET /v1/results/download, serving the newest artifact
// of ?runId= or of the current run
func (h *ResultsHandler) Download(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.resolveRunID(w, r)
	if !ok {
		return
	}

	art, err := h.exportSvc.Latest(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if art == nil {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

// GetSnapshot handles GET /v1/results/snapshot
func (h *ResultsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.resolveRunID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.exportSvc.Snapshot(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot == nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *ResultsHandler) resolveRunID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if runID := r.URL.Query().Get("runId"); runID != "" {
		return runID, true
	}

	progress, err := h.engine.Progress(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return "", false
	}
	if progress.RunID == "" || progress.State != model.AdminRunning {
		writeError(w, http.StatusNotFound, "no survey has been launched")
		return "", false
	}
	return progress.RunID, true
}
