package model

// AdminState is the admin session phase
type AdminState string

const (
	AdminAwaitingTitle     AdminState = "awaiting_title"
	AdminAwaitingQuestions AdminState = "awaiting_questions"
	AdminRunning           AdminState = "running"
)
