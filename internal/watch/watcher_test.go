package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, deadline time.Duration, cond func() bool) bool {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.nc")
	if err := os.WriteFile(path, []byte("CDF\x01"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var calls atomic.Int64
	w := New(path, Config{Debounce: 20 * time.Millisecond}, zerolog.Nop(), func() {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("CDF\x01more"), 0644); err != nil {
		t.Fatalf("modify fixture: %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("callback did not fire after write")
	}
}

func TestWatcherFiresOnReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.nc")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var calls atomic.Int64
	w := New(path, Config{Debounce: 20 * time.Millisecond}, zerolog.Nop(), func() {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	// Atomic replace: write a sibling and rename over the target.
	tmp := filepath.Join(dir, "profile.nc.tmp")
	if err := os.WriteFile(tmp, []byte("new"), 0644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("callback did not fire after rename-replace")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.nc")
	if err := os.WriteFile(path, []byte("CDF\x01"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var calls atomic.Int64
	w := New(path, Config{Debounce: 20 * time.Millisecond}, zerolog.Nop(), func() {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	other := filepath.Join(dir, "unrelated.txt")
	if err := os.WriteFile(other, []byte("noise"), 0644); err != nil {
		t.Fatalf("write other: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback fired %d times for an unrelated file", got)
	}
}

func TestWatcherStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.nc")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	w := New(path, Config{}, zerolog.Nop(), func() {})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
}
