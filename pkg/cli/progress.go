package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const progressBarWidth = 40

// ProgressReporter draws parse progress for a build.
type ProgressReporter interface {
	// Observe records that done of total files have been parsed. It is
	// safe to call from the pipeline's worker goroutines.
	Observe(done, total int)
	// Finish completes the bar and ends the line.
	Finish()
	// Error ends the bar with a failure message.
	Error(err error)
}

// fileProgress renders a single carriage-return progress line.
type fileProgress struct {
	mu      sync.Mutex
	w       io.Writer
	done    int
	total   int
	started time.Time
	now     func() time.Time
}

// NewProgressReporter returns a reporter writing to w, or to stderr when w
// is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &fileProgress{w: w, now: time.Now}
}

func (p *fileProgress) Observe(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.IsZero() {
		p.started = p.now()
	}
	// Callbacks may arrive out of order from parallel workers.
	if total != p.total {
		p.total, p.done = total, 0
	}
	if done > p.done {
		p.done = done
	}
	p.draw()
}

func (p *fileProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total <= 0 {
		return
	}
	p.done = p.total
	p.draw()
	fmt.Fprintln(p.w)
}

func (p *fileProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "✗ Error: %v\n", err)
}

func (p *fileProgress) draw() {
	if p.total <= 0 {
		return
	}

	filled := progressBarWidth * p.done / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	var rate float64
	if secs := p.now().Sub(p.started).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}

	fmt.Fprintf(p.w, "\rParsing: [%s] %3d%% (%d/%d) %.1f files/s",
		bar, 100*p.done/p.total, p.done, p.total, rate)
}
