package service

import "surveycast/internal/model"

// ResultStore is the append-only answer log of a run
type ResultStore struct {
	records []model.AnswerRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) Append(rec model.AnswerRecord) {
	s.records = append(s.records, rec)
}

func (s *ResultStore) Len() int {
	return len(s.records)
}

// Records returns a copy of the log in arrival order
func (s *ResultStore) Records() []model.AnswerRecord {
	return append([]model.AnswerRecord(nil), s.records...)
}

// Grouped returns answers grouped by recipient, in roster order.
// Recipients without answers are included with an empty slice.
func (s *ResultStore) Grouped(roster []model.Recipient) []model.ResultGroup {
	byID := make(map[int64][]model.AnswerRecord, len(roster))
	for _, rec := range s.records {
		byID[rec.RecipientID] = append(byID[rec.RecipientID], rec)
	}

	groups := make([]model.ResultGroup, 0, len(roster))
	for _, r := range roster {
		answers := byID[r.ID]
		if answers == nil {
			answers = []model.AnswerRecord{}
		}
		groups = append(groups, model.ResultGroup{Recipient: r, Answers: answers})
	}
	return groups
}
