package output

import (
	"context"
	"sync"
	"time"

	"github.com/waftester/wafcharset/pkg/charset"
	"github.com/waftester/wafcharset/pkg/output/events"
	"github.com/waftester/wafcharset/pkg/results"
)

// Emitter receives events. *dispatcher.Dispatcher implements it.
type Emitter interface {
	Dispatch(ctx context.Context, event events.Event) error
}

// Session turns one run into output events: the start event, a result
// event per applied store update, an error event per encoding that could
// not be generated, and the summary.
//
// Result updates and generation failures usually arrive before the run
// ID is known. They are held back and emitted, in arrival order, right
// after the start event.
type Session struct {
	ctx    context.Context
	out    Emitter
	target string
	mode   string

	mu      sync.Mutex
	runID   string
	started time.Time
	pending []events.Event
	failed  int
}

// NewSession creates a session for a run against target in mode
// ("encode" or "fuzz").
func NewSession(ctx context.Context, out Emitter, target, mode string) *Session {
	return &Session{ctx: ctx, out: out, target: target, mode: mode}
}

// Observe is a results.Subscriber: it emits every applied upsert.
func (s *Session) Observe(u results.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch u.Kind {
	case results.UpdateClear:
		// Failures may already be queued: the clear is applied
		// asynchronously while generation runs.
		kept := s.pending[:0]
		for _, e := range s.pending {
			if _, ok := e.(*events.ResultEvent); !ok {
				kept = append(kept, e)
			}
		}
		s.pending = kept
	case results.UpdateUpsert:
		s.emit(&events.ResultEvent{
			BaseEvent: events.NewBase(events.EventTypeResult, s.runID),
			Target:    s.target,
			Result:    ResultInfo(u.Result),
		})
	}
}

// Failure is a fuzz.FailureFunc: it emits an error event for an encoding
// that could not be generated.
func (s *Session) Failure(index int, spec charset.EncodingSpec, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failed++
	s.emit(&events.ErrorEvent{
		BaseEvent: events.NewBase(events.EventTypeError, s.runID),
		Index:     index,
		Encoding:  spec.Name,
		ErrorType: ErrorType(err),
		Message:   err.Error(),
	})
}

// Start emits the start event, then everything held back so far.
func (s *Session) Start(runID string, variants int, cfg events.RunConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runID = runID
	s.started = time.Now()
	err := s.out.Dispatch(s.ctx, &events.StartEvent{
		BaseEvent: events.NewBase(events.EventTypeStart, runID),
		Target:    s.target,
		Mode:      s.mode,
		Variants:  variants,
		Config:    cfg,
	})
	for _, e := range s.pending {
		setRunID(e, runID)
		if derr := s.out.Dispatch(s.ctx, e); derr != nil && err == nil {
			err = derr
		}
	}
	s.pending = nil
	return err
}

// Finish emits the summary built from the final store counts.
func (s *Session) Finish(sum results.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var elapsed float64
	if !s.started.IsZero() {
		elapsed = time.Since(s.started).Seconds()
	}
	return s.out.Dispatch(s.ctx, &events.SummaryEvent{
		BaseEvent: events.NewBase(events.EventTypeSummary, s.runID),
		Target:    s.target,
		Totals:    SummaryTotals(sum, s.failed),
		Duration:  elapsed,
	})
}

// RunID returns the ID passed to Start.
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Failed returns how many encodings could not be generated.
func (s *Session) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// emit dispatches e, or holds it back until Start. Called with mu held.
func (s *Session) emit(e events.Event) {
	if s.runID == "" {
		s.pending = append(s.pending, e)
		return
	}
	_ = s.out.Dispatch(s.ctx, e)
}

func setRunID(e events.Event, runID string) {
	switch ev := e.(type) {
	case *events.ResultEvent:
		ev.Scan = runID
	case *events.ErrorEvent:
		ev.Scan = runID
	}
}
