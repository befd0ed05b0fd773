package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"surveycast/internal/model"

	"github.com/google/uuid"
)

// Engine is the single writer of all survey state. Every admin command
// and answer event runs to completion on the engine goroutine before the
// next one is accepted, so cursors and correlation entries need no locks.
type Engine struct {
	channel      DeliveryChannel
	exporter     ResultExporter
	correlations CorrelationTable
	now          func() time.Time
	newID        func() string

	session *AdminSession
	roster  []model.Recipient
	run     *Run

	ops       chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures an Engine
type Option func(*Engine)

// WithCorrelationTable replaces the in-memory correlation table
func WithCorrelationTable(t CorrelationTable) Option {
	return func(e *Engine) { e.correlations = t }
}

// WithClock overrides the time source used for answer timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunIDs overrides run id generation
func WithRunIDs(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an engine and starts its event loop
func NewEngine(channel DeliveryChannel, exporter ResultExporter, opts ...Option) *Engine {
	e := &Engine{
		channel:      channel,
		exporter:     exporter,
		correlations: NewMemoryCorrelations(),
		now:          time.Now,
		newID:        func() string { return "run_" + uuid.New().String()[:8] },
		session:      NewAdminSession(),
		ops:          make(chan func()),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	go e.loop()
	return e
}

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case op := <-e.ops:
			op()
		case <-e.quit:
			return
		}
	}
}

// do runs fn on the engine goroutine and waits for it to finish. The
// caller's ctx only bounds the wait for the op to be accepted: once running,
// fn gets a context detached from the caller's cancellation, so a client
// that disconnects mid-launch cannot turn sent questions into failures.
func (e *Engine) do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	finished := make(chan struct{})
	opCtx := context.WithoutCancel(ctx)
	op := func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Recovered from panic in engine op: %v", r)
				err = fmt.Errorf("internal error: %v", r)
			}
		}()
		err = fn(opCtx)
	}

	select {
	case e.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.quit:
		return ErrEngineClosed
	}
	<-finished
	return err
}

// Close stops the event loop
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.quit) })
	<-e.done
}

// LoadRoster replaces the recipient roster. Duplicate ids keep the first entry.
func (e *Engine) LoadRoster(ctx context.Context, recipients []model.Recipient) (*model.RosterReport, error) {
	var report *model.RosterReport
	err := e.do(ctx, func(ctx context.Context) error {
		if e.session.State() == model.AdminRunning {
			return stateViolation("load roster", fmt.Errorf("survey is running"))
		}
		seen := make(map[int64]bool, len(recipients))
		roster := make([]model.Recipient, 0, len(recipients))
		for _, r := range recipients {
			if r.ID <= 0 || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			roster = append(roster, r)
		}
		e.roster = roster
		report = &model.RosterReport{Loaded: len(roster), Skipped: len(recipients) - len(roster)}
		log.Printf("Roster loaded: %d recipients", len(roster))
		return nil
	})
	return report, err
}

// SubmitTitle starts a new survey, discarding all state of the previous one
func (e *Engine) SubmitTitle(ctx context.Context, title string) error {
	return e.do(ctx, func(ctx context.Context) error {
		if err := e.session.SubmitTitle(title); err != nil {
			return err
		}
		e.discardRun(ctx)
		log.Printf("Survey %q started, awaiting questions", e.session.Title())
		return nil
	})
}

// AddQuestion appends a question to the draft survey
func (e *Engine) AddQuestion(ctx context.Context, q model.Question) error {
	return e.do(ctx, func(ctx context.Context) error {
		return e.session.AddQuestion(q)
	})
}

// Reset abandons the current survey and returns to AwaitingTitle
func (e *Engine) Reset(ctx context.Context) error {
	return e.do(ctx, func(ctx context.Context) error {
		e.session.Reset()
		e.discardRun(ctx)
		return nil
	})
}

// Launch freezes the draft and dispatches the first question to every recipient
func (e *Engine) Launch(ctx context.Context) (*model.LaunchReport, error) {
	var report *model.LaunchReport
	err := e.do(ctx, func(ctx context.Context) error {
		def, err := e.session.Freeze(len(e.roster))
		if err != nil {
			return err
		}
		e.run = newRun(e.newID(), def, e.roster, e.channel, e.correlations, e.exporter, e.now)
		report = e.run.launch(ctx)
		return nil
	})
	return report, err
}

// HandleAnswer consumes one inbound answer event
func (e *Engine) HandleAnswer(ctx context.Context, ev model.AnswerEvent) error {
	return e.do(ctx, func(ctx context.Context) error {
		if e.run == nil || e.session.State() != model.AdminRunning {
			return stateViolation("answer", ErrNoRun)
		}
		err := e.run.onAnswer(ctx, ev)
		if err != nil {
			log.Printf("Run %s: answer from %d rejected: %v", e.run.ID, ev.RecipientID, err)
		}
		return err
	})
}

// Progress reports the session state and per-recipient cursors
func (e *Engine) Progress(ctx context.Context) (*model.ProgressReport, error) {
	var rep model.ProgressReport
	err := e.do(ctx, func(ctx context.Context) error {
		if e.run != nil {
			rep = e.run.report()
		} else {
			rep.Title = e.session.Title()
			rep.QuestionCount = e.session.DraftLen()
			rep.RosterSize = len(e.roster)
		}
		rep.State = e.session.State()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Export renders the current results of the run. After completion this
// retries a failed handoff; before completion it produces a partial export.
func (e *Engine) Export(ctx context.Context) (*model.ExportArtifact, error) {
	var art *model.ExportArtifact
	err := e.do(ctx, func(ctx context.Context) error {
		if e.run == nil {
			return stateViolation("export", ErrNoRun)
		}
		var err error
		art, err = e.run.export(ctx)
		return err
	})
	return art, err
}

// Results returns the grouped answers collected so far
func (e *Engine) Results(ctx context.Context) ([]model.ResultGroup, error) {
	var groups []model.ResultGroup
	err := e.do(ctx, func(ctx context.Context) error {
		if e.run == nil {
			return stateViolation("results", ErrNoRun)
		}
		groups = e.run.results.Grouped(e.run.progress.Recipients())
		return nil
	})
	return groups, err
}

// OnRoster reports whether id belongs to the loaded roster
func (e *Engine) OnRoster(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := e.do(ctx, func(ctx context.Context) error {
		for _, r := range e.roster {
			if r.ID == id {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (e *Engine) discardRun(ctx context.Context) {
	if e.run == nil {
		return
	}
	if err := e.correlations.Reset(ctx, e.run.ID); err != nil {
		log.Printf("Run %s: failed to clear correlations: %v", e.run.ID, err)
	}
	log.Printf("Run %s discarded", e.run.ID)
	e.run = nil
}
