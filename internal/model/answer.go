package model

import "time"

// NoAnswer is recorded when a choice event reports no selection
const NoAnswer = "no answer"

// CorrelationEntry maps an outbound choice question token back to its origin
type CorrelationEntry struct {
	Token         string   `json:"token"`
	RunID         string   `json:"runId"`
	RecipientID   int64    `json:"recipientId"`
	QuestionIndex int      `json:"questionIndex"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
}

// AnswerEvent is an inbound reply from the delivery channel.
// Choice answers carry Token and OptionIDs, free-text replies carry Text.
type AnswerEvent struct {
	Token       string `json:"token,omitempty"`
	RecipientID int64  `json:"recipientId"`
	OptionIDs   []int  `json:"optionIds,omitempty"`
	Text        string `json:"text,omitempty"`
}

// IsChoice reports whether the event answers a tokenized question
func (e AnswerEvent) IsChoice() bool {
	return e.Token != ""
}

// AnswerRecord is one stored response. Append-only.
type AnswerRecord struct {
	RecipientID   int64     `json:"recipientId" bson:"recipientId"`
	DisplayName   string    `json:"displayName,omitempty" bson:"displayName,omitempty"`
	QuestionIndex int       `json:"questionIndex" bson:"questionIndex"`
	Question      string    `json:"question" bson:"question"`
	Response      string    `json:"response" bson:"response"`
	AnsweredAt    time.Time `json:"answeredAt" bson:"answeredAt"`
}

// ResultGroup holds one recipient's answers in question order
type ResultGroup struct {
	Recipient Recipient      `json:"recipient" bson:"recipient"`
	Answers   []AnswerRecord `json:"answers" bson:"answers"`
}
