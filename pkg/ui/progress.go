package ui

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Spinner holds spinner animation frames.
type Spinner struct {
	Frames   []string
	Interval time.Duration
}

var (
	spinnerDots = Spinner{
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Interval: 80 * time.Millisecond,
	}
	spinnerLine = Spinner{
		Frames:   []string{"-", "\\", "|", "/"},
		Interval: 100 * time.Millisecond,
	}
)

// DefaultSpinner returns a braille-dot spinner on Unicode terminals,
// ASCII line spinner (-\|/) otherwise.
func DefaultSpinner() Spinner {
	if UnicodeTerminal() {
		return spinnerDots
	}
	return spinnerLine
}

// Progress is a single redrawn status line for a send sweep:
//
//	⠹   7/12 | done 5 | no response 1 | error 1 | 00:02
//
// It only draws when the output is an interactive terminal.
type Progress struct {
	total     int
	w         io.Writer
	spinner   Spinner
	startTime time.Time

	current    atomic.Int64
	done       atomic.Int64
	noResponse atomic.Int64
	errored    atomic.Int64

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	stopped chan struct{}
}

// NewProgress creates a progress line for total sends.
func NewProgress(total int) *Progress {
	return &Progress{
		total:   total,
		w:       Output(),
		spinner: DefaultSpinner(),
	}
}

// Start begins redrawing. It is a no-op in silent mode or when the
// output is not a terminal.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || IsSilent() || !IsTerminal(p.w) {
		return
	}
	p.running = true
	p.startTime = time.Now()
	p.stop = make(chan struct{})
	p.stopped = make(chan struct{})
	go p.renderLoop()
}

// Stop halts redrawing and leaves the final line in place.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stop)
	<-p.stopped
	p.running = false
	fmt.Fprintf(p.w, "\r%s\n", p.line(""))
}

// Increment records one finished send in the given state label.
func (p *Progress) Increment(state string) {
	p.current.Add(1)
	switch state {
	case "Done":
		p.done.Add(1)
	case "No Response":
		p.noResponse.Add(1)
	case "Error":
		p.errored.Add(1)
	}
}

func (p *Progress) renderLoop() {
	defer close(p.stopped)
	ticker := time.NewTicker(p.spinner.Interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ticker.C:
			frame = (frame + 1) % len(p.spinner.Frames)
			fmt.Fprintf(p.w, "\r%s", p.line(p.spinner.Frames[frame]))
		case <-p.stop:
			return
		}
	}
}

func (p *Progress) line(spin string) string {
	if spin == "" {
		spin = " "
	}
	elapsed := time.Duration(0)
	if !p.startTime.IsZero() {
		elapsed = time.Since(p.startTime)
	}
	sep := BracketStyle.Render("|")
	return fmt.Sprintf("%s %s/%d %s %s %s %s %s %s %s %s",
		SpinnerStyle.Render(spin),
		StatValueStyle.Render(fmt.Sprintf("%3d", p.current.Load())),
		p.total,
		sep,
		PassStyle.Render(fmt.Sprintf("done %d", p.done.Load())),
		sep,
		WarnStyle.Render(fmt.Sprintf("no response %d", p.noResponse.Load())),
		sep,
		FailStyle.Render(fmt.Sprintf("error %d", p.errored.Load())),
		sep,
		StatLabelStyle.Render(formatDuration(elapsed)),
	)
}

// formatDuration formats a duration as MM:SS or HH:MM:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
