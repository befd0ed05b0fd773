package model

import "time"

// ExportFormat selects the tabular artifact encoding
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// ExportArtifact is a rendered, downloadable result file
type ExportArtifact struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	RunID       string       `json:"runId" bson:"runId"`
	Title       string       `json:"title" bson:"title"`
	Format      ExportFormat `json:"format" bson:"format"`
	Filename    string       `json:"filename" bson:"filename"`
	ContentType string       `json:"contentType" bson:"contentType"`
	Data        []byte       `json:"-" bson:"data"`
	Rows        int          `json:"rows" bson:"rows"`
	Complete    bool         `json:"complete" bson:"complete"` // produced by the completion handoff
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
}

// ResultSnapshot archives the grouped answers of a run
type ResultSnapshot struct {
	RunID     string        `json:"runId" bson:"runId"`
	Title     string        `json:"title" bson:"title"`
	Complete  bool          `json:"complete" bson:"complete"`
	Groups    []ResultGroup `json:"groups" bson:"groups"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}
