package handler

import (
	"encoding/json"
	"net/http"

	"surveycast/internal/model"
	"surveycast/internal/service"
	"surveycast/internal/transport/rest/middleware"
)

// AnswerHandler accepts recipient answers over REST
type AnswerHandler struct {
	engine *service.Engine
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(engine *service.Engine) *AnswerHandler {
	return &AnswerHandler{engine: engine}
}

// AnswerRequest is the request body for submitting an answer. A token
// answers a poll, otherwise text replies to the pending text question.
type AnswerRequest struct {
	Token     string `json:"token"`
	OptionIDs []int  `json:"optionIds"`
	Text      string `json:"text"`
}

// Submit handles POST /v1/answers
func (h *AnswerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	recipientID := middleware.GetRecipientID(r.Context())
	if recipientID == 0 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev := model.AnswerEvent{
		Token:       req.Token,
		RecipientID: recipientID,
		OptionIDs:   req.OptionIDs,
		Text:        req.Text,
	}
	if err := h.engine.HandleAnswer(r.Context(), ev); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}
