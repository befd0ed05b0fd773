package model

// SurveyDefinition is the admin-built questionnaire, frozen at launch
type SurveyDefinition struct {
	Title     string     `json:"title" bson:"title"`
	Questions []Question `json:"questions" bson:"questions"`
}

// Len returns the number of questions
func (d SurveyDefinition) Len() int {
	return len(d.Questions)
}

// Clone returns a deep copy so a launched run cannot observe later edits
func (d SurveyDefinition) Clone() SurveyDefinition {
	out := SurveyDefinition{
		Title:     d.Title,
		Questions: make([]Question, len(d.Questions)),
	}
	for i, q := range d.Questions {
		out.Questions[i] = Question{
			Kind:    q.Kind,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		}
	}
	return out
}
