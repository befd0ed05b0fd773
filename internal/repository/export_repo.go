package repository

import (
	"context"
	"sync"
	"time"

	"surveycast/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExportRepo stores rendered result artifacts so the admin can download
// or re-download them
type ExportRepo interface {
	Save(ctx context.Context, art *model.ExportArtifact) error
	// Latest returns the newest artifact of a run, or nil when none exists
	Latest(ctx context.Context, runID string) (*model.ExportArtifact, error)
}

type exportRepo struct {
	collection *mongo.Collection
}

// NewExportRepo creates a MongoDB-backed export repository
func NewExportRepo(db *mongo.Database) ExportRepo {
	return &exportRepo{
		collection: db.Collection("exports"),
	}
}

func (r *exportRepo) Save(ctx context.Context, art *model.ExportArtifact) error {
	if art.CreatedAt.IsZero() {
		art.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, art)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		art.ID = oid.Hex()
	}
	return nil
}

func (r *exportRepo) Latest(ctx context.Context, runID string) (*model.ExportArtifact, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var art model.ExportArtifact
	err := r.collection.FindOne(ctx, bson.M{"runId": runID}, opts).Decode(&art)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &art, nil
}

type memoryExportRepo struct {
	mu        sync.Mutex
	artifacts map[string][]*model.ExportArtifact
}

// NewMemoryExportRepo keeps artifacts in process memory
func NewMemoryExportRepo() ExportRepo {
	return &memoryExportRepo{artifacts: make(map[string][]*model.ExportArtifact)}
}

func (r *memoryExportRepo) Save(_ context.Context, art *model.ExportArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if art.CreatedAt.IsZero() {
		art.CreatedAt = time.Now()
	}
	art.ID = primitive.NewObjectID().Hex()
	r.artifacts[art.RunID] = append(r.artifacts[art.RunID], art)
	return nil
}

func (r *memoryExportRepo) Latest(_ context.Context, runID string) (*model.ExportArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.artifacts[runID]
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}
