package service

import (
	"context"
	"errors"
	"testing"

	"surveycast/internal/model"
)

// Three recipients, two choice questions, recipient 2 unreachable at
// dispatch: the handoff follows the 4th answer.
func TestScenarioUnreachableRecipientShrinksDenominator(t *testing.T) {
	ch := newFakeChannel(2)
	exp := &fakeExporter{}
	e := newTestEngine(t, ch, exp)

	report := launchSurvey(t, e, recipients(1, 2, 3), "A",
		choice("First", "x", "y"),
		choice("Second", "x", "y"),
	)
	if report.Denominator != 2 {
		t.Fatalf("denominator = %d, want 2", report.Denominator)
	}

	answers := []int64{1, 3, 1, 3}
	for n, id := range answers {
		if len(exp.completeCalls()) != 0 {
			t.Fatalf("handoff fired after %d answers", n)
		}
		answerChoice(t, e, ch, id, 0)
	}
	if len(exp.completeCalls()) != 1 {
		t.Fatalf("handoff count after 4 answers = %d, want 1", len(exp.completeCalls()))
	}
}

// A free-text reply arriving after the cursor has moved past the text
// question is a state violation and changes nothing.
func TestScenarioStaleTextReply(t *testing.T) {
	ch := newFakeChannel()
	e := newTestEngine(t, ch, &fakeExporter{})
	ctx := context.Background()

	launchSurvey(t, e, recipients(1), "B",
		text("Describe your day"),
		choice("Rate it", "good", "bad"),
	)
	answerText(t, e, 1, "busy")

	before := progress(t, e)
	err := e.HandleAnswer(ctx, model.AnswerEvent{RecipientID: 1, Text: "late second thought"})
	if !IsStateViolation(err) || !errors.Is(err, ErrNoPendingQuestion) {
		t.Fatalf("stale reply err = %v, want no-pending-question violation", err)
	}

	after := progress(t, e)
	if after.Answers != before.Answers || after.Recipients[0].NextQuestionIndex != 1 {
		t.Errorf("stale reply changed state: before=%+v after=%+v", before, after)
	}
}

// A new title mid-run discards the run; an answer for the old run is
// rejected.
func TestScenarioNewTitleMidRun(t *testing.T) {
	ch := newFakeChannel()
	exp := &fakeExporter{}
	e := newTestEngine(t, ch, exp)
	ctx := context.Background()

	launchSurvey(t, e, recipients(1, 2), "Old",
		choice("Q1", "a", "b"),
		choice("Q2", "a", "b"),
	)
	answerChoice(t, e, ch, 1, 0)
	stale := ch.lastToken(2)

	if err := e.SubmitTitle(ctx, "Fresh"); err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}
	err := e.HandleAnswer(ctx, model.AnswerEvent{Token: stale, RecipientID: 2, OptionIDs: []int{0}})
	if !IsStateViolation(err) {
		t.Fatalf("answer for discarded run err = %v, want state violation", err)
	}

	e.AddQuestion(ctx, choice("New", "c", "d"))
	if _, err := e.Launch(ctx); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	err = e.HandleAnswer(ctx, model.AnswerEvent{Token: stale, RecipientID: 2, OptionIDs: []int{0}})
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("old token in new run err = %v, want ErrUnknownToken", err)
	}

	p := progress(t, e)
	if p.Answers != 0 || p.Title != "Fresh" || p.QuestionCount != 1 {
		t.Errorf("new run progress = %+v", p)
	}
	for _, rp := range p.Recipients {
		if rp.NextQuestionIndex != 0 {
			t.Errorf("recipient %d cursor = %d, want 0", rp.Recipient.ID, rp.NextQuestionIndex)
		}
	}
	if len(exp.completeCalls()) != 0 {
		t.Error("discarded run handed off results")
	}
}
