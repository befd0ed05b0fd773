package service

import (
	"fmt"
	"strings"

	"surveycast/internal/model"
)

// AdminSession gates which survey-building operations are valid.
// AwaitingTitle -> AwaitingQuestions -> Running; a new title restarts the cycle.
type AdminSession struct {
	state model.AdminState
	title string
	draft []model.Question
}

// NewAdminSession starts in AwaitingTitle
func NewAdminSession() *AdminSession {
	return &AdminSession{state: model.AdminAwaitingTitle}
}

func (s *AdminSession) State() model.AdminState { return s.state }
func (s *AdminSession) Title() string           { return s.title }
func (s *AdminSession) DraftLen() int           { return len(s.draft) }

// SubmitTitle is valid in every state and discards the previous draft.
// The caller is responsible for discarding run state alongside.
func (s *AdminSession) SubmitTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return parseFailure("submit title", ErrEmptyTitle)
	}
	s.title = title
	s.draft = nil
	s.state = model.AdminAwaitingQuestions
	return nil
}

// AddQuestion appends a validated question to the draft
func (s *AdminSession) AddQuestion(q model.Question) error {
	if s.state != model.AdminAwaitingQuestions {
		return stateViolation("add question", fmt.Errorf("session is %s", s.state))
	}
	if err := q.Validate(); err != nil {
		return parseFailure("add question", err)
	}
	s.draft = append(s.draft, q)
	return nil
}

// Freeze validates launch preconditions, returns the frozen definition
// and moves the session to Running
func (s *AdminSession) Freeze(rosterSize int) (model.SurveyDefinition, error) {
	if s.state != model.AdminAwaitingQuestions {
		return model.SurveyDefinition{}, stateViolation("launch", fmt.Errorf("session is %s", s.state))
	}
	if rosterSize == 0 {
		return model.SurveyDefinition{}, stateViolation("launch", ErrEmptyRoster)
	}
	if len(s.draft) == 0 {
		return model.SurveyDefinition{}, stateViolation("launch", ErrEmptySurvey)
	}

	def := model.SurveyDefinition{Title: s.title, Questions: s.draft}
	s.state = model.AdminRunning
	return def.Clone(), nil
}

// Reset returns to AwaitingTitle
func (s *AdminSession) Reset() {
	s.state = model.AdminAwaitingTitle
	s.title = ""
	s.draft = nil
}
