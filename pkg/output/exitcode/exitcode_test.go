package exitcode

import (
	"context"
	"sync"
	"testing"

	"github.com/waftester/wafcharset/pkg/output/events"
)

func final(state string, diverges bool) *events.ResultEvent {
	return &events.ResultEvent{
		BaseEvent: events.NewBase(events.EventTypeResult, "run-1"),
		Result:    events.ResultInfo{Index: 1, Encoding: "IBM037", State: state, Diverges: diverges},
	}
}

func record(t *testing.T, m *Manager, evs ...events.Event) {
	t.Helper()
	for _, e := range evs {
		if err := m.OnEvent(context.Background(), e); err != nil {
			t.Fatalf("OnEvent: %v", err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("zero values get defaults", func(t *testing.T) {
		m := New(Config{})
		if m.cfg.DivergenceCode != 1 {
			t.Errorf("expected DivergenceCode=1, got %d", m.cfg.DivergenceCode)
		}
	})

	t.Run("custom config preserved", func(t *testing.T) {
		m := New(Config{DivergenceCode: 9})
		if m.cfg.DivergenceCode != 9 {
			t.Errorf("expected DivergenceCode=9, got %d", m.cfg.DivergenceCode)
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		events []events.Event
		setup  func(*Manager)
		want   Code
	}{
		{name: "no sends", want: Success},
		{name: "all done", events: []events.Event{final("Done", false), final("No Response", false)}, want: Success},
		{name: "transient states ignored", events: []events.Event{final("Ready", false), final("Sent", false)}, want: Success},
		{name: "diverging", events: []events.Event{final("Done", true), final("Done", false)}, want: Divergence},
		{name: "custom divergence code", cfg: Config{DivergenceCode: 7}, events: []events.Event{final("Done", true)}, want: 7},
		{name: "divergence ignored", cfg: Config{IgnoreDivergence: true}, events: []events.Event{final("Done", true)}, want: Success},
		{name: "every send failed", events: []events.Event{final("Error", false), final("Error", false)}, want: Target},
		{name: "some sends failed", events: []events.Event{final("Error", false), final("Done", false)}, want: Success},
		{name: "config error wins", events: []events.Event{final("Done", true)}, setup: (*Manager).SetConfigError, want: Configuration},
		{name: "internal error", setup: (*Manager).SetInternalError, want: Internal},
		{name: "interrupt wins", setup: func(m *Manager) {
			m.SetConfigError()
			m.SetInterrupted()
		}, want: Interrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cfg)
			record(t, m, tt.events...)
			if tt.setup != nil {
				tt.setup(m)
			}
			got, reason := m.ExitCode()
			if got != tt.want {
				t.Errorf("ExitCode() = %d (%s), want %d", got, reason, tt.want)
			}
			if reason == "" {
				t.Error("expected a reason")
			}
		})
	}
}

func TestStatsAndReset(t *testing.T) {
	m := New(DefaultConfig())
	record(t, m, final("Done", true), final("Error", false), final("Sent", false))

	sent, diverging, errs := m.Stats()
	if sent != 2 || diverging != 1 || errs != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", sent, diverging, errs)
	}

	m.SetInterrupted()
	m.Reset()
	if code, _ := m.ExitCode(); code != Success {
		t.Errorf("after Reset got %d, want Success", code)
	}
}

func TestConcurrentRecording(t *testing.T) {
	m := New(DefaultConfig())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.OnEvent(context.Background(), final("Done", true))
		}()
	}
	wg.Wait()
	if sent, diverging, _ := m.Stats(); sent != 50 || diverging != 50 {
		t.Errorf("Stats() = %d, %d; want 50, 50", sent, diverging)
	}
}

func TestCodeString(t *testing.T) {
	if CodeString(Target) != "target_unreachable" {
		t.Errorf("CodeString(Target) = %q", CodeString(Target))
	}
	if CodeString(Code(42)) != "unknown_code_42" {
		t.Errorf("CodeString(42) = %q", CodeString(Code(42)))
	}
	if Describe(Divergence) == "" || Describe(Code(42)) != "unknown_code_42" {
		t.Error("Describe returned unexpected text")
	}
}
