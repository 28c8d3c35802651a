package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (context.CancelFunc, chan error) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Let the event loop start before the test writes files.
	time.Sleep(50 * time.Millisecond)
	return cancel, errCh
}

func stopWatcher(t *testing.T, cancel context.CancelFunc, errCh chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherCoalescesChanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "materials"), 0o755); err != nil {
		t.Fatal(err)
	}

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})
	cancel, errCh := startWatcher(t, Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})

	for _, name := range []string{"a.vmt", "b.vmt"} {
		if err := os.WriteFile(filepath.Join(dir, "materials", name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(250 * time.Millisecond)
	stopWatcher(t, cancel, errCh)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, want := range []string{"materials/a.vmt", "materials/b.vmt"} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed paths, got %v", want, collected)
		}
	}
}

func TestWatcherIgnoresNoise(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fired := make(chan []string, 10)
	cancel, errCh := startWatcher(t, Config{
		BaseDir:  dir,
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	for _, name := range []string{"build.log", ".ge_x.res.tmp-123", "Thumbs.db"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "ge_x.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-fired:
		if !slices.Equal(changed, []string{"ge_x.txt"}) {
			t.Fatalf("unexpected changed set %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	stopWatcher(t, cancel, errCh)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fired := make(chan []string, 10)
	cancel, errCh := startWatcher(t, Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	sub := filepath.Join(dir, "sound", "music")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Wait for the directory creation to be handled before writing into it.
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for directory event")
	}
	if err := os.WriteFile(filepath.Join(sub, "theme.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, "sound/music/theme.mp3") {
				stopWatcher(t, cancel, errCh)
				return
			}
		case <-deadline:
			t.Fatal("change inside new directory was not reported")
		}
	}
}

func TestWatcherRunOnce(t *testing.T) {
	t.Parallel()
	w, err := New(Config{BaseDir: t.TempDir(), Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := w.Run(ctx); err == nil {
		t.Fatal("expected error on second Run")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without base dir")
	}
	if _, err := New(Config{BaseDir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing base dir")
	}
	if _, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"[unclosed"}}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestIgnoredPaths(t *testing.T) {
	t.Parallel()
	w := &Watcher{ignores: defaultIgnores}
	tests := map[string]bool{
		".git/objects/ab":            true,
		"maps/.ge_x.res.tmp-99":      true,
		"scripts/maps/ge_x.txt~":     true,
		"materials/Thumbs.db":        true,
		"scripts/maps/ge_x.txt":      false,
		"sound/music/ge_x_theme.mp3": false,
	}
	for rel, want := range tests {
		if got := w.ignored(rel); got != want {
			t.Errorf("ignored(%q) = %v, want %v", rel, got, want)
		}
	}
	if !w.ignoredDir(".git") {
		t.Error("expected .git directory to be skipped")
	}
}
