// Package filesystem watches a directory tree for new or changed notes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultSettle is how long a file must be quiet before it is reported.
// Editors and copies produce bursts of write events for a single save.
const DefaultSettle = 500 * time.Millisecond

// Watcher reports uploadable files created or written under a root directory.
type Watcher struct {
	rootPath string
	settle   time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a watcher for rootPath. A settle of zero uses DefaultSettle.
func New(rootPath string, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{rootPath: rootPath, settle: settle}
}

// Watch starts watching the root directory and its subdirectories.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}
	if w.watcher != nil {
		return nil, errors.New("watcher is already running")
	}

	info, err := os.Stat(w.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(watcher, w.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	w.watcher = watcher

	out := make(chan string)
	go w.run(ctx, watcher, out)
	return out, nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher, out chan<- string) {
	defer close(out)

	// pending holds paths waiting for their settle period to pass.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) && !w.hidden(event.Name) {
				if err := addTree(watcher, event.Name); err != nil {
					logger.Warn("watch: cannot watch %s: %v", event.Name, err)
				}
				continue
			}
			if path := w.handleFsEvent(event); path != "" {
				pending[path] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)

		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.settle) {
				delete(pending, path)
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent returns the path to upload for event, or "" when the
// event is not an uploadable file being created or written.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if w.hidden(event.Name) || !domain.IsAllowedUploadExtension(event.Name) {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return event.Name
}

// settled returns the pending paths quiet for at least settle, sorted.
func settled(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// hidden reports whether path is hidden below the root. The root itself
// may live inside a hidden directory.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.rootPath, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// addTree watches dir and every non-hidden subdirectory.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(strings.TrimPrefix(path, dir)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
