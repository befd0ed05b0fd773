package model

import "time"

// RecipientProgress is a read-only view of one recipient's cursor
type RecipientProgress struct {
	Recipient         Recipient       `json:"recipient"`
	NextQuestionIndex int             `json:"nextQuestionIndex"`
	Status            RecipientStatus `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
}

// ProgressReport answers the admin's progress query
type ProgressReport struct {
	State         AdminState          `json:"state"`
	RunID         string              `json:"runId,omitempty"`
	Title         string              `json:"title,omitempty"`
	QuestionCount int                 `json:"questionCount"`
	RosterSize    int                 `json:"rosterSize"`
	Denominator   int                 `json:"denominator"`
	Completed     int                 `json:"completed"`
	Failed        int                 `json:"failed"`
	Answers       int                 `json:"answers"`
	Finished      bool                `json:"finished"`
	ExportError   string              `json:"exportError,omitempty"`
	LaunchedAt    *time.Time          `json:"launchedAt,omitempty"`
	FinishedAt    *time.Time          `json:"finishedAt,omitempty"`
	Recipients    []RecipientProgress `json:"recipients,omitempty"`
}

// LaunchReport summarises the initial fan-out
type LaunchReport struct {
	RunID       string  `json:"runId"`
	Dispatched  int     `json:"dispatched"`
	Failed      []int64 `json:"failed,omitempty"`
	Denominator int     `json:"denominator"`
}

// RosterReport summarises a roster load
type RosterReport struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
}
