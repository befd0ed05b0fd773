package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"surveycast/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type sentPoll struct {
	RecipientID int64
	Token       string
	Prompt      string
	Options     []string
}

type sentText struct {
	RecipientID int64
	Text        string
}

// fakeChannel records every delivery and fails for unreachable recipients
type fakeChannel struct {
	mu          sync.Mutex
	seq         int
	polls       []sentPoll
	texts       []sentText
	unreachable map[int64]bool
}

func newFakeChannel(unreachable ...int64) *fakeChannel {
	c := &fakeChannel{unreachable: make(map[int64]bool)}
	for _, id := range unreachable {
		c.unreachable[id] = true
	}
	return c
}

func (c *fakeChannel) SendChoiceQuestion(_ context.Context, id int64, prompt string, options []string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unreachable[id] {
		return "", fmt.Errorf("%w: %d", ErrRecipientUnreachable, id)
	}
	c.seq++
	token := fmt.Sprintf("tok-%d", c.seq)
	c.polls = append(c.polls, sentPoll{RecipientID: id, Token: token, Prompt: prompt, Options: options})
	return token, nil
}

func (c *fakeChannel) SendText(_ context.Context, id int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unreachable[id] {
		return fmt.Errorf("%w: %d", ErrRecipientUnreachable, id)
	}
	c.texts = append(c.texts, sentText{RecipientID: id, Text: text})
	return nil
}

func (c *fakeChannel) setUnreachable(id int64, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unreachable[id] = v
}

// lastToken returns the most recent poll token sent to a recipient
func (c *fakeChannel) lastToken(id int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.polls) - 1; i >= 0; i-- {
		if c.polls[i].RecipientID == id {
			return c.polls[i].Token
		}
	}
	return ""
}

func (c *fakeChannel) textsTo(id int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, t := range c.texts {
		if t.RecipientID == id {
			out = append(out, t.Text)
		}
	}
	return out
}

func (c *fakeChannel) pollCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.polls)
}

type exportCall struct {
	RunID    string
	Title    string
	Groups   []model.ResultGroup
	Complete bool
}

// fakeExporter records handoffs and can be told to fail
type fakeExporter struct {
	mu    sync.Mutex
	calls []exportCall
	fail  bool
}

var errExportDown = errors.New("export backend down")

func (e *fakeExporter) Export(_ context.Context, runID, title string, groups []model.ResultGroup, complete bool) (*model.ExportArtifact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail {
		return nil, errExportDown
	}
	e.calls = append(e.calls, exportCall{RunID: runID, Title: title, Groups: groups, Complete: complete})
	return &model.ExportArtifact{RunID: runID, Title: title, Complete: complete, CreatedAt: testNow}, nil
}

func (e *fakeExporter) setFail(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = v
}

// completeCalls counts handoffs made for a finished run
func (e *fakeExporter) completeCalls() []exportCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []exportCall
	for _, c := range e.calls {
		if c.Complete {
			out = append(out, c)
		}
	}
	return out
}

func sequentialRunIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
}

func choice(prompt string, options ...string) model.Question {
	return model.Question{Kind: model.QuestionKindChoice, Prompt: prompt, Options: options}
}

func text(prompt string) model.Question {
	return model.Question{Kind: model.QuestionKindText, Prompt: prompt}
}

func recipients(ids ...int64) []model.Recipient {
	out := make([]model.Recipient, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Recipient{ID: id, DisplayName: fmt.Sprintf("user%d", id)})
	}
	return out
}
