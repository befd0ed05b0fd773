package service

import (
	"context"

	"surveycast/internal/model"
)

// CorrelationTable maps outbound choice-question tokens to the
// (recipient, question index) they were sent for. Entries are single-use.
type CorrelationTable interface {
	Put(ctx context.Context, entry *model.CorrelationEntry) error
	// Take removes and returns the entry for token. A missing or already
	// consumed token returns (nil, nil).
	Take(ctx context.Context, runID, token string) (*model.CorrelationEntry, error)
	// Restore puts back an entry taken for an event that was then rejected
	Restore(ctx context.Context, entry *model.CorrelationEntry) error
	Reset(ctx context.Context, runID string) error
}

type memoryCorrelations struct {
	entries map[string]*model.CorrelationEntry
}

// NewMemoryCorrelations returns an in-process table. It is only safe when
// accessed from a single goroutine, which the Engine guarantees.
func NewMemoryCorrelations() CorrelationTable {
	return &memoryCorrelations{entries: make(map[string]*model.CorrelationEntry)}
}

func (m *memoryCorrelations) key(runID, token string) string {
	return runID + ":" + token
}

func (m *memoryCorrelations) Put(_ context.Context, entry *model.CorrelationEntry) error {
	m.entries[m.key(entry.RunID, entry.Token)] = entry
	return nil
}

func (m *memoryCorrelations) Take(_ context.Context, runID, token string) (*model.CorrelationEntry, error) {
	k := m.key(runID, token)
	entry, ok := m.entries[k]
	if !ok {
		return nil, nil
	}
	delete(m.entries, k)
	return entry, nil
}

func (m *memoryCorrelations) Restore(ctx context.Context, entry *model.CorrelationEntry) error {
	return m.Put(ctx, entry)
}

func (m *memoryCorrelations) Reset(_ context.Context, _ string) error {
	m.entries = make(map[string]*model.CorrelationEntry)
	return nil
}
