package repository

import (
	"context"
	"sync"

	"surveycast/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepo archives the grouped answers of a run, keyed by run id
type ReportRepo interface {
	SaveSnapshot(ctx context.Context, snapshot *model.ResultSnapshot) error
	GetSnapshot(ctx context.Context, runID string) (*model.ResultSnapshot, error)
}

type reportRepo struct {
	snapshots *mongo.Collection
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		snapshots: db.Collection("result_snapshots"),
	}
}

func (r *reportRepo) SaveSnapshot(ctx context.Context, snapshot *model.ResultSnapshot) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.snapshots.ReplaceOne(ctx, bson.M{"runId": snapshot.RunID}, snapshot, opts)
	return err
}

func (r *reportRepo) GetSnapshot(ctx context.Context, runID string) (*model.ResultSnapshot, error) {
	var snapshot model.ResultSnapshot
	err := r.snapshots.FindOne(ctx, bson.M{"runId": runID}).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

type memoryReportRepo struct {
	mu        sync.Mutex
	snapshots map[string]*model.ResultSnapshot
}

// NewMemoryReportRepo keeps snapshots in process memory
func NewMemoryReportRepo() ReportRepo {
	return &memoryReportRepo{snapshots: make(map[string]*model.ResultSnapshot)}
}

func (r *memoryReportRepo) SaveSnapshot(_ context.Context, snapshot *model.ResultSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.RunID] = snapshot
	return nil
}

func (r *memoryReportRepo) GetSnapshot(_ context.Context, runID string) (*model.ResultSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[runID], nil
}
