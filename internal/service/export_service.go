package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"surveycast/internal/export"
	"surveycast/internal/model"
	"surveycast/internal/repository"
)

// ExportService renders results and stores the artifact and a snapshot of
// the grouped answers. It implements ResultExporter.
type ExportService struct {
	exportRepo repository.ExportRepo
	reportRepo repository.ReportRepo
	format     model.ExportFormat
	now        func() time.Time
}

// NewExportService creates a new export service
func NewExportService(exportRepo repository.ExportRepo, reportRepo repository.ReportRepo, format model.ExportFormat) *ExportService {
	if format == "" {
		format = model.ExportXLSX
	}
	return &ExportService{
		exportRepo: exportRepo,
		reportRepo: reportRepo,
		format:     format,
		now:        time.Now,
	}
}

// Export renders the groups and persists the artifact
func (s *ExportService) Export(ctx context.Context, runID, title string, groups []model.ResultGroup, complete bool) (*model.ExportArtifact, error) {
	data, err := export.Render(s.format, groups)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", s.format, err)
	}

	now := s.now()
	art := &model.ExportArtifact{
		RunID:       runID,
		Title:       title,
		Format:      s.format,
		Filename:    export.Filename(title, s.format, now),
		ContentType: export.ContentType(s.format),
		Data:        data,
		Rows:        len(export.Rows(groups)),
		Complete:    complete,
		CreatedAt:   now,
	}
	if err := s.exportRepo.Save(ctx, art); err != nil {
		return nil, fmt.Errorf("save export: %w", err)
	}

	snapshot := &model.ResultSnapshot{
		RunID:     runID,
		Title:     title,
		Complete:  complete,
		Groups:    groups,
		UpdatedAt: now,
	}
	if err := s.reportRepo.SaveSnapshot(ctx, snapshot); err != nil {
		// The artifact is already stored, the snapshot is an archive copy
		log.Printf("Run %s: failed to archive snapshot: %v", runID, err)
	}

	log.Printf("Run %s: exported %d rows to %s", runID, art.Rows, art.Filename)
	return art, nil
}

// Latest returns the newest artifact of a run
func (s *ExportService) Latest(ctx context.Context, runID string) (*model.ExportArtifact, error) {
	return s.exportRepo.Latest(ctx, runID)
}

// Snapshot returns the archived answers of a run
func (s *ExportService) Snapshot(ctx context.Context, runID string) (*model.ResultSnapshot, error) {
	return s.reportRepo.GetSnapshot(ctx, runID)
}
