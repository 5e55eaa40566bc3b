package export

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debouncer batches rapid filesystem events into one callback after a
// quiet period. Editors often fire several writes per save.
type debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	action   func()
}

func newDebouncer(duration time.Duration, action func()) *debouncer {
	return &debouncer{duration: duration, action: action}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.action)
}

func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// WatchDebounce is the quiet period between a file event and the
// change callback
const WatchDebounce = 500 * time.Millisecond

// WatchFile watches path and calls onChange after each debounced
// change, skipping events that leave the content identical. The parent
// directory is watched too so recreates and renames are caught. Blocks
// until ctx is cancelled.
func WatchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	parent := filepath.Dir(abs)

	if err := watcher.Add(parent); err != nil {
		return fmt.Errorf("failed to watch %s: %w", parent, err)
	}
	// The file itself may not exist yet; the parent watch covers its
	// creation.
	_ = watcher.Add(abs)

	lastHash := hashFile(abs)
	var hashMu sync.Mutex

	deb := newDebouncer(WatchDebounce, func() {
		hashMu.Lock()
		current := hashFile(abs)
		unchanged := current != "" && current == lastHash
		if !unchanged {
			lastHash = current
		}
		hashMu.Unlock()
		if unchanged {
			return
		}
		onChange()
	})
	defer deb.Cancel()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod) != 0 {
				if event.Op&fsnotify.Create != 0 {
					// Re-add after recreate so write events keep flowing
					_ = watcher.Add(abs)
				}
				deb.Trigger()
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				_ = watcher.Remove(abs)
				reAddWatch(ctx, watcher, abs, deb)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watcher error: %v\n", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reAddWatch retries adding the file watch after a remove or rename,
// backing off while the file is still missing
func reAddWatch(ctx context.Context, watcher *fsnotify.Watcher, path string, deb *debouncer) {
	delays := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	for _, delay := range delays {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			if err := watcher.Add(path); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return
			}
			deb.Trigger()
			return
		}
	}
}

// hashFile returns the sha256 of the file's content, or "" when the
// file cannot be read
func hashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
