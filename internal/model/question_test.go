package model

import (
	"errors"
	"strings"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	long := strings.Repeat("é", MaxPromptLength+1)
	tenOpts := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}

	tests := []struct {
		name string
		q    Question
		want error
	}{
		{"valid choice", Question{Kind: QuestionKindChoice, Prompt: "Q", Options: []string{"a", "b"}}, nil},
		{"ten options", Question{Kind: QuestionKindChoice, Prompt: "Q", Options: tenOpts}, nil},
		{"valid text", Question{Kind: QuestionKindText, Prompt: "Q"}, nil},
		{"empty prompt", Question{Kind: QuestionKindText, Prompt: "  "}, ErrEmptyPrompt},
		{"long prompt", Question{Kind: QuestionKindText, Prompt: long}, ErrPromptTooLong},
		{"one option", Question{Kind: QuestionKindChoice, Prompt: "Q", Options: []string{"a"}}, ErrTooFewOptions},
		{"eleven options", Question{Kind: QuestionKindChoice, Prompt: "Q", Options: append(tenOpts, "11")}, ErrTooManyOptions},
		{"blank option", Question{Kind: QuestionKindChoice, Prompt: "Q", Options: []string{"a", " "}}, ErrEmptyOption},
		{"long option", Question{Kind: QuestionKindChoice, Prompt: "Q", Options: []string{"a", strings.Repeat("x", MaxOptionLength+1)}}, ErrOptionTooLong},
		{"text with options", Question{Kind: QuestionKindText, Prompt: "Q", Options: []string{"a"}}, ErrUnexpectedOpts},
		{"unknown kind", Question{Kind: "scale", Prompt: "Q"}, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.q.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseQuestionText(t *testing.T) {
	tests := []struct {
		name    string
		kind    QuestionKind
		text    string
		prompt  string
		options []string
		wantErr bool
	}{
		{"lines", QuestionKindChoice, "Favourite colour?\nRed\n\nBlue\n", "Favourite colour?", []string{"Red", "Blue"}, false},
		{"pipes", QuestionKindChoice, "Tea or coffee? | Tea | Coffee", "Tea or coffee?", []string{"Tea", "Coffee"}, false},
		{"lines keep pipes", QuestionKindChoice, "Pick\nA|B\nC", "Pick", []string{"A|B", "C"}, false},
		{"text body", QuestionKindText, "  Any | comments?\nPlease share  ", "Any | comments?\nPlease share", nil, false},
		{"choice without options", QuestionKindChoice, "Lonely prompt", "", nil, true},
		{"empty", QuestionKindText, "   ", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuestionText(tt.kind, tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if q.Kind != tt.kind || q.Prompt != tt.prompt {
				t.Errorf("got kind=%s prompt=%q", q.Kind, q.Prompt)
			}
			if strings.Join(q.Options, ",") != strings.Join(tt.options, ",") {
				t.Errorf("options = %q, want %q", q.Options, tt.options)
			}
		})
	}
}

func TestSurveyDefinitionClone(t *testing.T) {
	def := SurveyDefinition{
		Title:     "T",
		Questions: []Question{{Kind: QuestionKindChoice, Prompt: "Q", Options: []string{"a", "b"}}},
	}
	c := def.Clone()
	c.Questions[0].Options[1] = "z"
	c.Questions = append(c.Questions, Question{Kind: QuestionKindText, Prompt: "extra"})

	if def.Questions[0].Options[1] != "b" || def.Len() != 1 {
		t.Errorf("clone aliases the original: %+v", def)
	}
}
