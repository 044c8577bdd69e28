// Package dispatcher provides the central event routing for output.
// It receives events from a run and routes them to registered writers
// and hooks. Writers persist events (console table, JSON, CSV, templates);
// hooks feed real-time integrations (structured logs, metrics, traces).
package dispatcher

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/waftester/wafcharset/pkg/output/events"
)

// Writer is the interface for all output writers.
type Writer interface {
	// Write writes an event to the output.
	Write(event events.Event) error

	// Flush ensures all buffered events are written.
	Flush() error

	// Close closes the writer and releases any resources.
	Close() error

	// SupportsEvent returns true if the writer handles this event type.
	SupportsEvent(eventType events.EventType) bool
}

// Hook is the interface for event hooks.
type Hook interface {
	// OnEvent is called for each matching event.
	OnEvent(ctx context.Context, event events.Event) error

	// EventTypes returns the event types this hook handles.
	// Return nil or empty slice to receive all events.
	EventTypes() []events.EventType
}

// Dispatcher routes events to writers and hooks.
// It is safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	writers []Writer
	hooks   []Hook
	closed  bool

	async  bool
	hookWG sync.WaitGroup
	logger *slog.Logger
}

// Config configures the dispatcher behavior.
type Config struct {
	// Async enables asynchronous hook processing.
	// When true, hooks are called in goroutines and Close waits for them.
	Async bool

	Logger *slog.Logger
}

// New creates a new event dispatcher with the given configuration.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{async: cfg.Async, logger: logger}
}

// RegisterWriter adds a writer to the dispatcher.
func (d *Dispatcher) RegisterWriter(w Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writers = append(d.writers, w)
}

// RegisterHook adds a hook to the dispatcher.
func (d *Dispatcher) RegisterHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch sends an event to all registered writers and hooks.
// Individual writer or hook failures are logged, never returned, so every
// consumer still receives the event. Events after Close are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil
	}

	for _, w := range d.writers {
		if !w.SupportsEvent(event.EventType()) {
			continue
		}
		if err := w.Write(event); err != nil {
			d.logger.Warn("output writer failed",
				slog.String("event", string(event.EventType())),
				slog.String("error", err.Error()),
			)
		}
	}

	for _, h := range d.hooks {
		if !hookSupportsEvent(h, event.EventType()) {
			continue
		}
		if d.async {
			d.hookWG.Add(1)
			go func(hook Hook) {
				defer d.hookWG.Done()
				d.runHook(ctx, hook, event)
			}(h)
			continue
		}
		d.runHook(ctx, h, event)
	}
	return nil
}

func (d *Dispatcher) runHook(ctx context.Context, h Hook, event events.Event) {
	if err := h.OnEvent(ctx, event); err != nil {
		d.logger.Warn("output hook failed",
			slog.String("event", string(event.EventType())),
			slog.String("error", err.Error()),
		)
	}
}

// hookSupportsEvent checks if a hook handles the given event type.
func hookSupportsEvent(h Hook, eventType events.EventType) bool {
	types := h.EventTypes()
	if len(types) == 0 {
		return true
	}
	for _, et := range types {
		if et == eventType {
			return true
		}
	}
	return false
}

// Flush flushes all registered writers.
func (d *Dispatcher) Flush() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, w := range d.writers {
		if err := w.Flush(); err != nil {
			d.logger.Warn("output flush failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// Close waits for in-flight hooks, then flushes and closes all writers and
// every hook that implements io.Closer. It is safe to call more than once.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.hookWG.Wait()

	var firstErr error
	for _, w := range d.writers {
		_ = w.Flush()
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, h := range d.hooks {
		if c, ok := h.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
