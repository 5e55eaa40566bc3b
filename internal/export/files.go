package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/hipotures/todoit/internal/manager"
)

const (
	lockRetryDelay = 50 * time.Millisecond
	lockTimeout    = 30 * time.Second
)

// lockPath hides the lock next to its target so editors don't pick it up
func lockPath(path string) string {
	dir := filepath.Dir(path)
	return filepath.Join(dir, "."+filepath.Base(path)+".lock")
}

// withFileLock runs fn while holding a file lock on path's lock file.
// Exclusive for writers, shared for readers. Acquisition polls until
// the lock is free or the timeout elapses.
func withFileLock(ctx context.Context, path string, exclusive bool, fn func() error) error {
	lock := flock.New(lockPath(path))
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if exclusive {
		locked, err = lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		locked, err = lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil || !locked {
		return fmt.Errorf("failed to lock %s (another export or import may be running): %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// atomicWriteFile replaces path via a temp file in the same directory
// so readers never see a partial file
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ListKeyFromPath derives a list key from a file name, so
// "work.md" imports into list "work" when no key is given.
func ListKeyFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// ExportFile writes a list to path under an exclusive lock. The format
// follows the extension: .json gets the JSON document, everything else
// the markdown checklist.
func ExportFile(ctx context.Context, mgr *manager.Manager, listKey, path string) error {
	list, err := mgr.GetList(ctx, listKey)
	if err != nil {
		return err
	}
	forest, err := mgr.GetListTree(ctx, listKey)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if isJSONPath(path) {
		err = WriteJSON(&buf, list, forest)
	} else {
		err = WriteMarkdown(&buf, list, forest)
	}
	if err != nil {
		return err
	}

	return withFileLock(ctx, path, true, func() error {
		return atomicWriteFile(path, buf.Bytes())
	})
}

// ImportFile reads path under a shared lock and applies it to listKey.
// An empty listKey falls back to the file name stem.
func ImportFile(ctx context.Context, mgr *manager.Manager, listKey, path string) (*ImportResult, error) {
	if listKey == "" {
		listKey = ListKeyFromPath(path)
	}

	var data []byte
	err := withFileLock(ctx, path, false, func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		return nil, err
	}

	var doc *Document
	if isJSONPath(path) {
		doc, err = ParseJSON(bytes.NewReader(data))
	} else {
		doc, err = ParseMarkdown(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return Apply(ctx, mgr, listKey, doc)
}
