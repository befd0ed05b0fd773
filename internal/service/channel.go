package service

import (
	"context"

	"surveycast/internal/model"
)

// DeliveryChannel is the one-way messaging transport to recipients
// (implemented by the WebSocket hub)
type DeliveryChannel interface {
	// SendChoiceQuestion delivers a poll and returns its correlation token
	SendChoiceQuestion(ctx context.Context, recipientID int64, prompt string, options []string) (string, error)
	SendText(ctx context.Context, recipientID int64, text string) error
}

// ResultExporter receives the grouped answers when a run completes
type ResultExporter interface {
	Export(ctx context.Context, runID, title string, groups []model.ResultGroup, complete bool) (*model.ExportArtifact, error)
}
