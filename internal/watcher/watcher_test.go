package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_coalescesBurstIntoOneTrigger(t *testing.T) {
	dir := t.TempDir()
	var triggers atomic.Int32
	w := New(dir, []string{".md"}, nil, func() { triggers.Add(1) }, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if !waitFor(t, 2*time.Second, func() bool { return triggers.Load() >= 1 }) {
		t.Fatal("onChange never fired")
	}
	// Let any stragglers land, then confirm the burst coalesced.
	time.Sleep(150 * time.Millisecond)
	if got := triggers.Load(); got > 2 {
		t.Errorf("burst of 3 writes triggered %d times, want 1 (2 tolerated)", got)
	}
}

func TestWatcher_extensionFilter(t *testing.T) {
	dir := t.TempDir()
	var triggers atomic.Int32
	w := New(dir, []string{".md"}, nil, func() { triggers.Add(1) }, WithDebounce(30*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if triggers.Load() != 0 {
		t.Errorf("non-matching extension should not trigger: %d", triggers.Load())
	}
}

func TestWatcher_newDirectoryGetsWatched(t *testing.T) {
	dir := t.TempDir()
	var triggers atomic.Int32
	w := New(dir, []string{".md"}, nil, func() { triggers.Add(1) }, WithDebounce(30*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "docs")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a beat to pick up the new directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "new.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return triggers.Load() >= 1 }) {
		t.Error("write inside a newly created directory should trigger")
	}
}

func TestWatcher_ignoredDirs(t *testing.T) {
	dir := t.TempDir()
	ignored := filepath.Join(dir, ".git")
	if err := os.MkdirAll(ignored, 0755); err != nil {
		t.Fatal(err)
	}
	var triggers atomic.Int32
	w := New(dir, []string{".md"}, []string{".git"}, func() { triggers.Add(1) }, WithDebounce(30*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(ignored, "x.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if triggers.Load() != 0 {
		t.Errorf("events under ignored dirs should not trigger: %d", triggers.Load())
	}
}

func TestWatcher_stopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
