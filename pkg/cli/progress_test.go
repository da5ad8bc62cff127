package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestProgress_ObserveAndFinish(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Observe(1, 4)
	progress.Observe(2, 4)
	progress.Finish()

	out := buf.String()
	for _, want := range []string{"Parsing:", "(2/4)", "(4/4)", "100%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestProgress_OutOfOrder(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Observe(3, 5)
	buf.Reset()
	progress.Observe(2, 5)

	if !strings.Contains(buf.String(), "(3/5)") {
		t.Errorf("late callback moved the bar backwards: %q", buf.String())
	}
}

func TestProgress_NothingToParse(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Observe(0, 0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestProgress_Error(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	progress.Observe(1, 10)
	progress.Error(errors.New("disk on fire"))

	out := buf.String()
	if !strings.Contains(out, "\n✗ Error: disk on fire") {
		t.Errorf("unexpected error output %q", out)
	}
}

func TestProgress_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	progress := NewProgressReporter(&buf)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(done int) {
			defer wg.Done()
			progress.Observe(done, 10)
		}(i)
	}
	wg.Wait()
	progress.Finish()

	if !strings.Contains(buf.String(), "(10/10)") {
		t.Errorf("expected final count in output, got %q", buf.String())
	}
}
