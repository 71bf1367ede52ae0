package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// StepStatus represents the state of a progress step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepError
)

// ProgressStep represents a single step in the progress
type ProgressStep struct {
	Name     string
	Status   StepStatus
	Progress float64 // 0-100, only used for download steps
	Total    int64   // Total bytes for download
	Current  int64   // Current bytes for download
	Error    string
	Started  time.Time
	Elapsed  time.Duration
}

// ProgressDisplay manages multi-step progress output on a terminal
type ProgressDisplay struct {
	out         io.Writer
	steps       []ProgressStep
	currentStep int
	spinnerIdx  int
	quiet       bool
	mu          sync.Mutex
	lastRender  time.Time
	rendered    bool
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewProgressDisplay creates a new progress display writing to out
func NewProgressDisplay(out io.Writer, steps []string, quiet bool) *ProgressDisplay {
	pd := &ProgressDisplay{
		out:         out,
		steps:       make([]ProgressStep, len(steps)),
		currentStep: -1,
		quiet:       quiet,
	}
	for i, name := range steps {
		pd.steps[i] = ProgressStep{Name: name, Status: StepPending}
	}
	return pd
}

// Advance completes the running step and starts the one at index
func (p *ProgressDisplay) Advance(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completeCurrent()
	if index >= 0 && index < len(p.steps) {
		p.currentStep = index
		p.steps[index].Status = StepRunning
		p.steps[index].Started = time.Now()
	}
	p.render()
}

// Finish completes the running step
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completeCurrent()
	p.render()
}

// Fail marks the running step as failed
func (p *ProgressDisplay) Fail(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentStep >= 0 && p.currentStep < len(p.steps) {
		step := &p.steps[p.currentStep]
		step.Status = StepError
		step.Error = msg
		step.Elapsed = time.Since(step.Started)
	}
	p.render()
}

func (p *ProgressDisplay) completeCurrent() {
	if p.currentStep < 0 || p.currentStep >= len(p.steps) {
		return
	}
	step := &p.steps[p.currentStep]
	if step.Status == StepRunning {
		step.Status = StepComplete
		step.Elapsed = time.Since(step.Started)
	}
}

// UpdateProgress updates download progress for the running step
func (p *ProgressDisplay) UpdateProgress(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentStep < 0 || p.currentStep >= len(p.steps) {
		return
	}
	step := &p.steps[p.currentStep]
	step.Current = current
	step.Total = total
	if total > 0 {
		step.Progress = float64(current) / float64(total) * 100
	}
	// Throttle renders to avoid flickering
	if time.Since(p.lastRender) > 100*time.Millisecond {
		p.render()
	}
}

// Tick advances the spinner animation
func (p *ProgressDisplay) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
	p.render()
}

// Steps returns a snapshot of the step states
func (p *ProgressDisplay) Steps() []ProgressStep {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]ProgressStep, len(p.steps))
	copy(out, p.steps)
	return out
}

func (p *ProgressDisplay) render() {
	if p.quiet {
		return
	}

	p.lastRender = time.Now()

	// Move cursor up by number of steps and clear to redraw in place
	if p.rendered {
		fmt.Fprintf(p.out, "\033[%dA", len(p.steps))
		fmt.Fprint(p.out, "\033[J")
	}

	total := len(p.steps)
	for i, step := range p.steps {
		fmt.Fprintf(p.out, "[%d/%d] %s... %s\n", i+1, total, step.Name, p.status(step))
	}

	p.rendered = true
}

func (p *ProgressDisplay) status(step ProgressStep) string {
	switch step.Status {
	case StepRunning:
		if step.Total > 0 {
			return fmt.Sprintf("%.1f%% (%s / %s)",
				step.Progress,
				humanize.IBytes(uint64(step.Current)),
				humanize.IBytes(uint64(step.Total)))
		}
		return spinnerFrames[p.spinnerIdx]
	case StepComplete:
		return fmt.Sprintf("✓ (%s)", FormatDuration(step.Elapsed))
	case StepError:
		return "✗ " + step.Error
	default:
		return " "
	}
}

// StartSpinner starts a goroutine that ticks the spinner until the
// returned channel is closed
func (p *ProgressDisplay) StartSpinner() chan struct{} {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.Tick()
			}
		}
	}()
	return done
}
