package service

import (
	"context"
	"testing"
	"time"

	"surveycast/internal/model"
)

// ctxCorrelations refuses work once its context is done, like a network store
type ctxCorrelations struct {
	CorrelationTable
}

func (c ctxCorrelations) Put(ctx context.Context, entry *model.CorrelationEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.CorrelationTable.Put(ctx, entry)
}

func (c ctxCorrelations) Take(ctx context.Context, runID, token string) (*model.CorrelationEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.CorrelationTable.Take(ctx, runID, token)
}

// cancelingChannel cancels the caller's request right after each delivery,
// the way a client hanging up mid-request would
type cancelingChannel struct {
	*fakeChannel
	cancel context.CancelFunc
}

func (c *cancelingChannel) SendChoiceQuestion(ctx context.Context, id int64, prompt string, options []string) (string, error) {
	token, err := c.fakeChannel.SendChoiceQuestion(ctx, id, prompt, options)
	if c.cancel != nil {
		c.cancel()
	}
	return token, err
}

func TestEngineLaunchSurvivesCallerCancel(t *testing.T) {
	inner := newFakeChannel()
	ch := &cancelingChannel{fakeChannel: inner}
	exp := &fakeExporter{}
	e := NewEngine(ch, exp,
		WithCorrelationTable(ctxCorrelations{NewMemoryCorrelations()}),
		WithClock(func() time.Time { return testNow }),
		WithRunIDs(sequentialRunIDs()),
	)
	t.Cleanup(e.Close)

	bg := context.Background()
	if _, err := e.LoadRoster(bg, recipients(1, 2, 3)); err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if err := e.SubmitTitle(bg, "Offsite"); err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}
	if err := e.AddQuestion(bg, choice("Where?", "Lake", "Hills")); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	ctx, cancel := context.WithCancel(bg)
	defer cancel()
	ch.cancel = cancel
	report, err := e.Launch(ctx)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if report.Dispatched != 3 || len(report.Failed) != 0 || report.Denominator != 3 {
		t.Fatalf("launch report = %+v, want 3 dispatched and no failures", report)
	}

	p := progress(t, e)
	if p.Finished || p.Failed != 0 {
		t.Fatalf("progress = %+v, want an unfinished run with no failures", p)
	}
	if calls := exp.completeCalls(); len(calls) != 0 {
		t.Fatalf("complete handoffs = %d, want 0", len(calls))
	}

	// every correlation entry survived, so each recipient can still answer
	for _, id := range []int64{1, 2, 3} {
		answerChoice(t, e, inner, id, 0)
	}
	if p := progress(t, e); !p.Finished || p.Completed != 3 {
		t.Fatalf("after answers progress = %+v, want finished with 3 completed", p)
	}
}

func TestEngineAnswerSurvivesCallerCancel(t *testing.T) {
	inner := newFakeChannel()
	ch := &cancelingChannel{fakeChannel: inner}
	exp := &fakeExporter{}
	e := NewEngine(ch, exp,
		WithCorrelationTable(ctxCorrelations{NewMemoryCorrelations()}),
		WithClock(func() time.Time { return testNow }),
		WithRunIDs(sequentialRunIDs()),
	)
	t.Cleanup(e.Close)

	launchSurvey(t, e, recipients(1), "Offsite",
		choice("Where?", "Lake", "Hills"),
		choice("When?", "May", "June"),
	)

	// the next question goes out while the answering request is cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch.cancel = cancel
	ev := model.AnswerEvent{Token: inner.lastToken(1), RecipientID: 1, OptionIDs: []int{1}}
	if err := e.HandleAnswer(ctx, ev); err != nil {
		t.Fatalf("HandleAnswer: %v", err)
	}
	ch.cancel = nil

	p := progress(t, e)
	if p.Failed != 0 || p.Recipients[0].NextQuestionIndex != 1 {
		t.Fatalf("progress = %+v, want recipient 1 waiting on question 1", p)
	}
	answerChoice(t, e, inner, 1, 0)
	if p := progress(t, e); !p.Finished {
		t.Fatalf("run not finished after last answer: %+v", p)
	}
}
