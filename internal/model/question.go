package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// QuestionKind defines how a question is delivered and answered
type QuestionKind string

const (
	QuestionKindChoice QuestionKind = "choice" // Poll with fixed options, answered by token
	QuestionKindText   QuestionKind = "text"   // Plain prompt, answered by a free-text reply
)

// Limits applied to admin-authored questions
const (
	MaxPromptLength = 300
	MaxOptionLength = 100
	MinOptions      = 2
	MaxOptions      = 10
)

var (
	ErrEmptyPrompt    = errors.New("question prompt is empty")
	ErrPromptTooLong  = fmt.Errorf("question prompt exceeds %d characters", MaxPromptLength)
	ErrTooFewOptions  = fmt.Errorf("choice question needs at least %d options", MinOptions)
	ErrTooManyOptions = fmt.Errorf("choice question allows at most %d options", MaxOptions)
	ErrEmptyOption    = errors.New("choice option is empty")
	ErrOptionTooLong  = fmt.Errorf("choice option exceeds %d characters", MaxOptionLength)
	ErrUnexpectedOpts = errors.New("text question cannot carry options")
	ErrUnknownKind    = errors.New("unknown question kind")
)

// Question is one step of a survey. Immutable once the survey is launched.
type Question struct {
	Kind    QuestionKind `json:"kind" bson:"kind"`
	Prompt  string       `json:"prompt" bson:"prompt"`
	Options []string     `json:"options,omitempty" bson:"options,omitempty"` // choice only
}

// Validate checks the question against the kind-specific rules
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if utf8.RuneCountInString(q.Prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}

	switch q.Kind {
	case QuestionKindChoice:
		if len(q.Options) < MinOptions {
			return ErrTooFewOptions
		}
		if len(q.Options) > MaxOptions {
			return ErrTooManyOptions
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return ErrEmptyOption
			}
			if utf8.RuneCountInString(opt) > MaxOptionLength {
				return ErrOptionTooLong
			}
		}
	case QuestionKindText:
		if len(q.Options) > 0 {
			return ErrUnexpectedOpts
		}
	default:
		return ErrUnknownKind
	}
	return nil
}

// ParseQuestionText builds a question from an admin-typed command body.
// For choice questions the first line is the prompt and every following
// line is an option; a single line may separate them with "|" instead.
// Text questions take the whole body as the prompt.
func ParseQuestionText(kind QuestionKind, text string) (Question, error) {
	text = strings.TrimSpace(text)
	q := Question{Kind: kind}

	if kind == QuestionKindText {
		q.Prompt = text
	} else {
		sep := "|"
		if strings.Contains(text, "\n") {
			sep = "\n"
		}
		for _, f := range strings.Split(text, sep) {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if q.Prompt == "" {
				q.Prompt = f
				continue
			}
			q.Options = append(q.Options, f)
		}
	}

	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}
