package driven

import "context"

// FileWatcher reports files that were created or changed under a directory.
type FileWatcher interface {
	// Watch starts watching and returns a channel of file paths. The
	// channel is closed when ctx is cancelled or the watcher is closed.
	Watch(ctx context.Context) (<-chan string, error)

	// Close stops watching and releases resources.
	Close() error
}
