package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress through a batch of documents.
type ProgressReporter interface {
	Start(total int)
	Update(done int)
	Finish()
	Error(err error)
}

// BarProgress draws a single-line progress bar, redrawn in place.
type BarProgress struct {
	mu      sync.Mutex
	label   string
	total   int
	done    int
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress bar that writes to w, defaulting
// to os.Stderr so that it never mixes with JSON on stdout.
func NewProgressReporter(w io.Writer, label string) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	if label == "" {
		label = "Progress"
	}
	return &BarProgress{writer: w, label: label}
}

// Start resets the bar for total documents.
func (p *BarProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = 0
	p.started = time.Now()
	p.render()
}

// Update sets the number of documents done.
func (p *BarProgress) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = done
	p.render()
}

// Finish completes the bar and ends the line.
func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error ends the bar with an error line.
func (p *BarProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *BarProgress) render() {
	if p.total <= 0 {
		return
	}

	done := min(p.done, p.total)
	percent := float64(done) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(done) / elapsed
	}

	fmt.Fprintf(p.writer, "\r%s: [%s] %.1f%% (%d/%d) %.1f docs/s",
		p.label, bar, percent, done, p.total, rate)
}
