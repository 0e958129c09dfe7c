package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Fetching acme/widget")
	time.Sleep(200 * time.Millisecond)
	s.stop()
	s.stop()

	if !strings.Contains(out.String(), "Fetching acme/widget") {
		t.Errorf("spinner should draw its message, got %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r") {
		t.Error("spinner should clear its line when stopped")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &out, "waiting")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner should stop when its context is cancelled")
	}
	s.stop()
}
