package handler

import (
	"encoding/json"
	"net/http"

	"surveycast/internal/model"
	"surveycast/internal/service"
)

// SurveyHandler handles the survey authoring and launch endpoints
type SurveyHandler struct {
	engine *service.Engine
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(engine *service.Engine) *SurveyHandler {
	return &SurveyHandler{engine: engine}
}

// TitleRequest is the request body for starting a survey
type TitleRequest struct {
	Title string `json:"title"`
}

// QuestionRequest is the request body for adding a question. Either the
// structured fields or a raw text block may be given.
type QuestionRequest struct {
	Kind    model.QuestionKind `json:"kind"`
	Prompt  string             `json:"prompt"`
	Options []string           `json:"options"`
	Text    string             `json:"text"`
}

// SubmitTitle handles POST /v1/survey/title
func (h *SurveyHandler) SubmitTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.SubmitTitle(r.Context(), req.Title); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.AdminAwaitingQuestions)})
}

// AddQuestion handles POST /v1/survey/questions
func (h *SurveyHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind == "" {
		req.Kind = model.QuestionKindChoice
	}

	q := model.Question{Kind: req.Kind, Prompt: req.Prompt, Options: req.Options}
	if req.Text != "" {
		parsed, err := model.ParseQuestionText(req.Kind, req.Text)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		q = parsed
	}

	if err := h.engine.AddQuestion(r.Context(), q); err != nil {
		writeServiceError(w, err)
		return
	}

	progress, err := h.engine.Progress(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"question":      q,
		"questionCount": progress.QuestionCount,
	})
}

// Reset handles POST /v1/survey/reset
func (h *SurveyHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Reset(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.AdminAwaitingTitle)})
}

// Launch handles POST /v1/survey/launch
func (h *SurveyHandler) Launch(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Launch(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Progress handles GET /v1/survey/progress
func (h *SurveyHandler) Progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Progress(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
