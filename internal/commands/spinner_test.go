package commands

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is a bytes.Buffer safe for the spinner goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	out := &lockedBuffer{}
	s := newSpinner(out, "Asking")
	s.start()
	// Let it spin briefly
	time.Sleep(200 * time.Millisecond)
	s.stopWithSuccess("done")

	got := out.String()
	if !strings.Contains(got, "Asking") {
		t.Errorf("expected spinner message in output, got %q", got)
	}
	if !strings.Contains(got, "done") {
		t.Errorf("expected success message in output, got %q", got)
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	out := &lockedBuffer{}
	s := newSpinner(out, "Asking")
	s.start()
	time.Sleep(30 * time.Millisecond)
	// Should stop cleanly on error (no panic)
	s.stopWithError()
	// A second stop must not close the channel twice
	s.stopOnce()
}
