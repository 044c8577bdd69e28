// Package exitcode provides semantic exit codes for CI/CD integration.
// Exit codes communicate run outcomes to automation pipelines.
//
// Exit codes:
//   - 0: Success (no variant diverged)
//   - 1: At least one variant diverged from the baseline (configurable)
//   - 2: Invalid configuration or arguments
//   - 3: Target unreachable (every send failed)
//   - 4: Internal error
//   - 5: Run interrupted
package exitcode

import (
	"context"
	"fmt"
	"sync"

	"github.com/waftester/wafcharset/pkg/output/dispatcher"
	"github.com/waftester/wafcharset/pkg/output/events"
)

// Code represents a semantic exit code for CI/CD pipelines.
type Code int

const (
	// Success indicates the run completed and no variant diverged.
	Success Code = 0
	// Divergence indicates one or more variants answered differently than the baseline.
	Divergence Code = 1
	// Configuration indicates invalid configuration was provided.
	Configuration Code = 2
	// Target indicates the target could not be reached by any send.
	Target Code = 3
	// Internal indicates an unexpected failure.
	Internal Code = 4
	// Interrupted indicates the run was interrupted (e.g., SIGINT).
	Interrupted Code = 5
)

// codeStrings maps exit codes to human-readable descriptions.
var codeStrings = map[Code]string{
	Success:       "success",
	Divergence:    "divergence_detected",
	Configuration: "invalid_configuration",
	Target:        "target_unreachable",
	Internal:      "internal_error",
	Interrupted:   "run_interrupted",
}

// codeDescriptions provides detailed descriptions for exit codes.
var codeDescriptions = map[Code]string{
	Success:       "Run completed with no diverging variants",
	Divergence:    "One or more variants diverged from the baseline",
	Configuration: "Invalid configuration provided",
	Target:        "Target is unreachable: every send failed",
	Internal:      "Internal error",
	Interrupted:   "Run was interrupted by user or signal",
}

// Config holds configuration for the exit code manager.
type Config struct {
	// DivergenceCode is the exit code to return when variants diverge.
	// Default: 1
	DivergenceCode int

	// IgnoreDivergence always reports Success for diverging variants.
	IgnoreDivergence bool
}

// DefaultConfig returns the default exit code configuration.
func DefaultConfig() Config {
	return Config{DivergenceCode: int(Divergence)}
}

// Compile-time interface check.
var _ dispatcher.Hook = (*Manager)(nil)

// Manager tracks run outcomes and determines the appropriate exit code.
// It is a dispatcher hook fed by final results.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	sent      int // variants that reached a final state
	diverging int
	errors    int

	// Special state flags
	configError   bool
	internalError bool
	interrupted   bool
}

// New creates a new exit code manager with the given configuration.
func New(cfg Config) *Manager {
	if cfg.DivergenceCode == 0 {
		cfg.DivergenceCode = int(Divergence)
	}
	return &Manager{cfg: cfg}
}

// OnEvent records final results.
func (m *Manager) OnEvent(_ context.Context, event events.Event) error {
	e, ok := event.(*events.ResultEvent)
	if !ok || !e.Result.Final() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	if e.Result.State == "Error" {
		m.errors++
	}
	if e.Result.Diverges {
		m.diverging++
	}
	return nil
}

// EventTypes returns the event types this hook handles.
func (m *Manager) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeResult}
}

// SetConfigError marks that a configuration error occurred.
func (m *Manager) SetConfigError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configError = true
}

// SetInternalError marks that an unexpected error occurred.
func (m *Manager) SetInternalError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.internalError = true
}

// SetInterrupted marks that the run was interrupted.
func (m *Manager) SetInterrupted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupted = true
}

// ExitCode returns the appropriate exit code based on recorded outcomes.
// The returned string provides a human-readable reason for the code.
//
// Priority order (highest to lowest):
//  1. Interrupted
//  2. Configuration error
//  3. Internal error
//  4. Every send failed
//  5. Diverging variants
//  6. Success
func (m *Manager) ExitCode() (Code, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.interrupted:
		return Interrupted, codeDescriptions[Interrupted]
	case m.configError:
		return Configuration, codeDescriptions[Configuration]
	case m.internalError:
		return Internal, codeDescriptions[Internal]
	case m.sent > 0 && m.errors == m.sent:
		return Target, fmt.Sprintf("%s (%d sends)", codeDescriptions[Target], m.sent)
	case m.diverging > 0 && !m.cfg.IgnoreDivergence:
		return Code(m.cfg.DivergenceCode), fmt.Sprintf("%s (count: %d)",
			codeDescriptions[Divergence], m.diverging)
	}
	return Success, codeDescriptions[Success]
}

// Stats returns the current final, diverging and error counts.
func (m *Manager) Stats() (sent, diverging, errors int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent, m.diverging, m.errors
}

// Reset clears all recorded outcomes and state flags.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent, m.diverging, m.errors = 0, 0, 0
	m.configError = false
	m.internalError = false
	m.interrupted = false
}

// CodeString returns the string representation of any exit code.
func CodeString(code Code) string {
	if s, ok := codeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("unknown_code_%d", code)
}

// Describe returns the long description of an exit code.
func Describe(code Code) string {
	if s, ok := codeDescriptions[code]; ok {
		return s
	}
	return CodeString(code)
}
