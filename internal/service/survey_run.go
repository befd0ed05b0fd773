package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"surveycast/internal/model"
)

// FarewellText is sent to a recipient after their last answer
const FarewellText = "Thank you! You have completed the survey."

// Run owns the state of one launched survey: the frozen definition,
// progression cursors, correlation entries and collected answers
type Run struct {
	ID         string
	Definition model.SurveyDefinition
	LaunchedAt time.Time
	FinishedAt *time.Time
	ExportErr  error

	progress     *ProgressTracker
	correlations CorrelationTable
	results      *ResultStore
	detector     CompletionDetector

	channel  DeliveryChannel
	exporter ResultExporter
	now      func() time.Time
}

func newRun(
	id string,
	def model.SurveyDefinition,
	recipients []model.Recipient,
	channel DeliveryChannel,
	correlations CorrelationTable,
	exporter ResultExporter,
	now func() time.Time,
) *Run {
	return &Run{
		ID:           id,
		Definition:   def,
		LaunchedAt:   now(),
		progress:     NewProgressTracker(recipients, def.Len()),
		correlations: correlations,
		results:      NewResultStore(),
		channel:      channel,
		exporter:     exporter,
		now:          now,
	}
}

// launch dispatches the first question to every recipient. A delivery
// failure is isolated to its recipient and never aborts the batch.
func (r *Run) launch(ctx context.Context) *model.LaunchReport {
	report := &model.LaunchReport{RunID: r.ID}
	for _, rec := range r.progress.Recipients() {
		if err := r.dispatch(ctx, rec.ID); err != nil {
			report.Failed = append(report.Failed, rec.ID)
			continue
		}
		report.Dispatched++
	}
	report.Denominator = r.progress.Denominator()
	log.Printf("Run %s launched: %d dispatched, %d failed", r.ID, report.Dispatched, len(report.Failed))

	r.checkCompletion(ctx)
	return report
}

// dispatch sends the recipient's pending question, if any
func (r *Run) dispatch(ctx context.Context, id int64) error {
	if r.progress.IsFailed(id) {
		return nil
	}
	i, ok := r.progress.Cursor(id)
	if !ok {
		return stateViolation("dispatch", ErrUnknownRecipient)
	}
	if i == r.Definition.Len() {
		return nil
	}

	q := r.Definition.Questions[i]
	switch q.Kind {
	case model.QuestionKindChoice:
		token, err := r.channel.SendChoiceQuestion(ctx, id, q.Prompt, q.Options)
		if err != nil {
			return r.fail(id, err)
		}
		entry := &model.CorrelationEntry{
			Token:         token,
			RunID:         r.ID,
			RecipientID:   id,
			QuestionIndex: i,
			Prompt:        q.Prompt,
			Options:       q.Options,
		}
		if err := r.correlations.Put(ctx, entry); err != nil {
			return r.fail(id, fmt.Errorf("record correlation: %w", err))
		}
	case model.QuestionKindText:
		if err := r.channel.SendText(ctx, id, q.Prompt); err != nil {
			return r.fail(id, err)
		}
	}
	return nil
}

func (r *Run) fail(id int64, err error) error {
	if r.progress.MarkFailed(id, err.Error()) {
		log.Printf("Run %s: delivery to %d failed, excluding recipient: %v", r.ID, id, err)
	}
	return deliveryFailure("dispatch", err)
}

// onAnswer resolves an inbound event to (recipient, question index),
// records it and advances the recipient
func (r *Run) onAnswer(ctx context.Context, ev model.AnswerEvent) error {
	var (
		id       int64
		i        int
		response string
	)

	if ev.IsChoice() {
		entry, err := r.correlations.Take(ctx, r.ID, ev.Token)
		if err != nil {
			return fmt.Errorf("lookup token: %w", err)
		}
		if entry == nil {
			return stateViolation("answer", ErrUnknownToken)
		}
		if ev.RecipientID != 0 && ev.RecipientID != entry.RecipientID {
			r.restore(ctx, entry)
			return stateViolation("answer", ErrRecipientMismatch)
		}
		resp, err := resolveChoice(entry.Options, ev.OptionIDs)
		if err != nil {
			r.restore(ctx, entry)
			return parseFailure("answer", err)
		}
		cur, ok := r.progress.Cursor(entry.RecipientID)
		if !ok || cur != entry.QuestionIndex {
			return stateViolation("answer", fmt.Errorf("token for question %d is stale", entry.QuestionIndex))
		}
		id, i, response = entry.RecipientID, entry.QuestionIndex, resp
	} else {
		id = ev.RecipientID
		cur, ok := r.progress.Cursor(id)
		if !ok {
			return stateViolation("answer", ErrUnknownRecipient)
		}
		if r.progress.IsFailed(id) || cur >= r.Definition.Len() || r.Definition.Questions[cur].Kind != model.QuestionKindText {
			return stateViolation("answer", ErrNoPendingQuestion)
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			return parseFailure("answer", errors.New("empty reply"))
		}
		i, response = cur, text
	}

	if err := r.progress.Advance(id, i); err != nil {
		return stateViolation("answer", err)
	}
	rec, _ := r.progress.Recipient(id)
	r.results.Append(model.AnswerRecord{
		RecipientID:   id,
		DisplayName:   rec.DisplayName,
		QuestionIndex: i,
		Question:      r.Definition.Questions[i].Prompt,
		Response:      response,
		AnsweredAt:    r.now(),
	})

	r.advance(ctx, id)
	return nil
}

func (r *Run) restore(ctx context.Context, entry *model.CorrelationEntry) {
	if err := r.correlations.Restore(ctx, entry); err != nil {
		log.Printf("Run %s: failed to restore token %s: %v", r.ID, entry.Token, err)
	}
}

// advance either completes the recipient or sends the next question
func (r *Run) advance(ctx context.Context, id int64) {
	if r.progress.AtEnd(id) {
		if r.progress.MarkComplete(id) {
			if err := r.channel.SendText(ctx, id, FarewellText); err != nil {
				log.Printf("Run %s: farewell to %d not delivered: %v", r.ID, id, err)
			}
		}
		r.checkCompletion(ctx)
		return
	}

	if err := r.dispatch(ctx, id); err != nil && IsDeliveryFailure(err) {
		r.checkCompletion(ctx)
	}
}

// checkCompletion fires the one-time aggregation handoff
func (r *Run) checkCompletion(ctx context.Context) {
	if !r.detector.Observe(r.progress.CompletedCount(), r.progress.Denominator()) {
		return
	}
	now := r.now()
	r.FinishedAt = &now
	log.Printf("Run %s finished: %d of %d recipients completed", r.ID, r.progress.CompletedCount(), r.progress.Size())

	if _, err := r.export(ctx); err != nil {
		log.Printf("Run %s: export failed: %v", r.ID, err)
	}
}

// export hands the grouped answers to the exporter. It may be called again
// by the admin; the completion latch is unaffected.
func (r *Run) export(ctx context.Context) (*model.ExportArtifact, error) {
	if r.exporter == nil {
		return nil, exportFailure("export", errors.New("no exporter configured"))
	}
	complete := r.detector.Fired()
	art, err := r.exporter.Export(ctx, r.ID, r.Definition.Title, r.results.Grouped(r.progress.Recipients()), complete)
	if err != nil {
		err = exportFailure("export", err)
		if complete {
			r.ExportErr = err
		}
		return nil, err
	}
	if complete {
		r.ExportErr = nil
	}
	return art, nil
}

// report builds the progress view of this run
func (r *Run) report() model.ProgressReport {
	rep := model.ProgressReport{
		RunID:         r.ID,
		Title:         r.Definition.Title,
		QuestionCount: r.Definition.Len(),
		RosterSize:    r.progress.Size(),
		Denominator:   r.progress.Denominator(),
		Completed:     r.progress.CompletedCount(),
		Failed:        r.progress.FailedCount(),
		Answers:       r.results.Len(),
		Finished:      r.detector.Fired(),
		FinishedAt:    r.FinishedAt,
		Recipients:    r.progress.Snapshot(),
	}
	launched := r.LaunchedAt
	rep.LaunchedAt = &launched
	if r.ExportErr != nil {
		rep.ExportError = r.ExportErr.Error()
	}
	return rep
}

// resolveChoice maps selected option indexes to their text
func resolveChoice(options []string, selected []int) (string, error) {
	if len(selected) == 0 {
		return model.NoAnswer, nil
	}
	texts := make([]string, 0, len(selected))
	seen := make(map[int]bool, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(options) {
			return "", fmt.Errorf("%w: %d", ErrOptionOutOfRange, idx)
		}
		// repeated ids count once, in the order first selected
		if seen[idx] {
			continue
		}
		seen[idx] = true
		texts = append(texts, options[idx])
	}
	return strings.Join(texts, ", "), nil
}
