package service

import (
	"fmt"

	"surveycast/internal/model"
)

// ProgressTracker holds the progression cursor for every recipient of a run.
// The cursor is the only record of which question a recipient is on.
type ProgressTracker struct {
	total     int
	order     []model.Recipient
	byID      map[int64]model.Recipient
	cursors   map[int64]int
	completed map[int64]struct{}
	failed    map[int64]string
}

// NewProgressTracker starts every recipient at question 0
func NewProgressTracker(recipients []model.Recipient, total int) *ProgressTracker {
	p := &ProgressTracker{
		total:     total,
		order:     append([]model.Recipient(nil), recipients...),
		byID:      make(map[int64]model.Recipient, len(recipients)),
		cursors:   make(map[int64]int, len(recipients)),
		completed: make(map[int64]struct{}),
		failed:    make(map[int64]string),
	}
	for _, r := range recipients {
		p.byID[r.ID] = r
		p.cursors[r.ID] = 0
	}
	return p
}

// Cursor returns the next question index for a recipient
func (p *ProgressTracker) Cursor(id int64) (int, bool) {
	i, ok := p.cursors[id]
	return i, ok
}

// Advance moves the cursor from `from` to `from+1`. It refuses to move a
// cursor that is not at `from`, which keeps it monotonic and gap-free.
func (p *ProgressTracker) Advance(id int64, from int) error {
	cur, ok := p.cursors[id]
	if !ok {
		return ErrUnknownRecipient
	}
	if cur != from || cur >= p.total {
		return fmt.Errorf("cursor for %d is at %d, cannot advance from %d", id, cur, from)
	}
	p.cursors[id] = cur + 1
	return nil
}

// AtEnd reports whether the recipient has answered every question
func (p *ProgressTracker) AtEnd(id int64) bool {
	cur, ok := p.cursors[id]
	return ok && cur == p.total
}

// MarkComplete adds the recipient to the completion set. It returns false
// when the recipient was already complete.
func (p *ProgressTracker) MarkComplete(id int64) bool {
	if _, done := p.completed[id]; done {
		return false
	}
	p.completed[id] = struct{}{}
	return true
}

// MarkFailed excludes the recipient from further dispatch and from the
// completion denominator. It returns false when already failed.
func (p *ProgressTracker) MarkFailed(id int64, reason string) bool {
	if _, failed := p.failed[id]; failed {
		return false
	}
	p.failed[id] = reason
	return true
}

func (p *ProgressTracker) IsFailed(id int64) bool {
	_, failed := p.failed[id]
	return failed
}

func (p *ProgressTracker) IsComplete(id int64) bool {
	_, done := p.completed[id]
	return done
}

// Denominator is the number of recipients still expected to finish
func (p *ProgressTracker) Denominator() int {
	return len(p.order) - len(p.failed)
}

func (p *ProgressTracker) CompletedCount() int { return len(p.completed) }
func (p *ProgressTracker) FailedCount() int    { return len(p.failed) }
func (p *ProgressTracker) Size() int           { return len(p.order) }

// Recipients returns the roster in launch order
func (p *ProgressTracker) Recipients() []model.Recipient {
	return p.order
}

// Recipient looks up a roster entry by id
func (p *ProgressTracker) Recipient(id int64) (model.Recipient, bool) {
	r, ok := p.byID[id]
	return r, ok
}

// Snapshot returns a per-recipient view in roster order
func (p *ProgressTracker) Snapshot() []model.RecipientProgress {
	out := make([]model.RecipientProgress, 0, len(p.order))
	for _, r := range p.order {
		rp := model.RecipientProgress{
			Recipient:         r,
			NextQuestionIndex: p.cursors[r.ID],
			Status:            model.RecipientPending,
		}
		if reason, failed := p.failed[r.ID]; failed {
			rp.Status = model.RecipientFailed
			rp.FailureReason = reason
		} else if p.IsComplete(r.ID) {
			rp.Status = model.RecipientComplete
		}
		out = append(out, rp)
	}
	return out
}
