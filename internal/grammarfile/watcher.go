// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package grammarfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// FILE WATCHER INTERFACE
// =============================================================================

// FileWatcher is the interface for grammar file watching implementations
type FileWatcher interface {
	// Watch starts watching for file changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// ReloadFunc is called after the grammar file changed and settled. The error
// returned by the registry reload is passed through for reporting.
type ReloadFunc func(err error)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements FileWatcher using fsnotify
type FsnotifyWatcher struct {
	reg      *Registry
	onReload ReloadFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  map[string]time.Time // File path -> last change time
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher
func NewFsnotifyWatcher(reg *Registry, debounce time.Duration, onReload ReloadFunc) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsnotifyWatcher{
		reg:      reg,
		onReload: onReload,
		watcher:  watcher,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}

	return fw, nil
}

// Watch starts watching for file changes. The containing directory is
// watched rather than the file itself so editors that replace the file on
// save keep triggering events.
func (fw *FsnotifyWatcher) Watch() error {
	dir := filepath.Dir(fw.reg.Path())
	if err := fw.watcher.Add(dir); err != nil {
		return err
	}

	// Start event processing goroutine
	go fw.processEvents()

	// Start debounce timer goroutine
	go fw.processPending()

	return nil
}

// processEvents processes file system events
func (fw *FsnotifyWatcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			_ = r
		}
	}()

	target := filepath.Clean(fw.reg.Path())

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			// Write, Create and Rename all mean the file content may have
			// changed; rename covers atomic-save editors.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.mu.Lock()
				fw.pending[event.Name] = time.Now()
				fw.mu.Unlock()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal and are discarded.
			_ = err
		}
	}
}

// processPending processes pending file changes with debounce
func (fw *FsnotifyWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			fw.mu.Lock()
			ready := false
			for path, changeTime := range fw.pending {
				if now.Sub(changeTime) >= fw.debounce {
					ready = true
					delete(fw.pending, path)
				}
			}
			fw.mu.Unlock()

			if ready {
				fw.reload()
			}
		}
	}
}

func (fw *FsnotifyWatcher) reload() {
	err := fw.reg.Reload()
	if fw.onReload != nil {
		fw.onReload(err)
	}
}

// Close stops watching and releases resources
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements FileWatcher using periodic polling
type PollingWatcher struct {
	reg      *Registry
	onReload ReloadFunc
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	modTime  time.Time
	size     int64
}

// NewPollingWatcher creates a new polling-based watcher
func NewPollingWatcher(reg *Registry, interval time.Duration, onReload ReloadFunc) *PollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &PollingWatcher{
		reg:      reg,
		onReload: onReload,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch starts watching for file changes
func (pw *PollingWatcher) Watch() error {
	if info, err := os.Stat(pw.reg.Path()); err == nil {
		pw.modTime = info.ModTime()
		pw.size = info.Size()
	}

	go pw.poll()

	return nil
}

// poll periodically checks for file changes
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChange()
		}
	}
}

// checkChange reloads when the file's mod time or size moved
func (pw *PollingWatcher) checkChange() {
	info, err := os.Stat(pw.reg.Path())
	if err != nil {
		return
	}

	pw.mu.Lock()
	changed := !info.ModTime().Equal(pw.modTime) || info.Size() != pw.size
	if changed {
		pw.modTime = info.ModTime()
		pw.size = info.Size()
	}
	pw.mu.Unlock()

	if changed {
		err := pw.reg.Reload()
		if pw.onReload != nil {
			pw.onReload(err)
		}
	}
}

// Close stops watching
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// StartWatcher starts a grammar file watcher (fsnotify or polling fallback)
func StartWatcher(reg *Registry, debounce time.Duration, onReload ReloadFunc) (FileWatcher, error) {
	// Try fsnotify first
	fw, err := NewFsnotifyWatcher(reg, debounce, onReload)
	if err == nil {
		if err := fw.Watch(); err == nil {
			return fw, nil
		}
		fw.Close()
	}

	// Fallback to polling watcher
	pw := NewPollingWatcher(reg, 2*time.Second, onReload)
	if err := pw.Watch(); err != nil {
		return nil, err
	}

	return pw, nil
}
