package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"surveycast/internal/model"
	"surveycast/internal/service"
)

// RosterLookup reports whether a recipient id is on the loaded roster
type RosterLookup interface {
	OnRoster(ctx context.Context, id int64) (bool, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
	roster  RosterLookup
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, roster RosterLookup) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, roster: roster}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.AdminID)
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecipientToken handles POST /v1/auth/recipient. Only an admin can mint
// recipient tokens, and only for ids on the loaded roster.
func (h *AuthHandler) RecipientToken(w http.ResponseWriter, r *http.Request) {
	var req model.RecipientTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecipientID <= 0 {
		writeError(w, http.StatusBadRequest, service.ErrInvalidID.Error())
		return
	}

	onRoster, err := h.roster.OnRoster(r.Context(), req.RecipientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !onRoster {
		writeError(w, http.StatusNotFound, "recipient not on roster")
		return
	}

	resp, err := h.authSvc.GenerateRecipientToken(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps a classified service error to a status code and
// reports the classification alongside the message
func writeServiceError(w http.ResponseWriter, err error) {
	kind := service.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case service.KindStateViolation:
		status = http.StatusConflict
	case service.KindParseFailure:
		status = http.StatusBadRequest
	case service.KindDeliveryFailure, service.KindExportFailure:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "kind": string(kind)})
}
