// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the transcript and message input.
	ViewChat ViewType = iota
	// ViewThreads is the thread list.
	ViewThreads
	// ViewSearch is note search and the note reader.
	ViewSearch
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewThreads:
		return "threads"
	case ViewSearch:
		return "search"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ChatEvent carries one pipeline notification from a running Send.
type ChatEvent struct {
	Event driving.ChatEvent
}

// ChatCompleted is sent once a Send returns.
type ChatCompleted struct {
	Result *driving.ChatResult
	Err    error
}

// UploadProgressed carries an update of the upload progress slot.
type UploadProgressed struct {
	Progress domain.UploadProgress
}

// UploadCompleted is sent once an upload batch returns.
type UploadCompleted struct {
	Summary *domain.BatchSummary
	Err     error
}

// FileCountLoaded carries the number of stored notes.
type FileCountLoaded struct {
	Count int
	Err   error
}

// ThreadsLoaded carries the thread list.
type ThreadsLoaded struct {
	Threads []domain.ChatThread
	Err     error
}

// ThreadSelected is sent when a thread was loaded and made active.
type ThreadSelected struct {
	Thread *domain.ChatThread
	Err    error
}

// ThreadCreated is sent when a new thread was started.
type ThreadCreated struct {
	Thread *domain.ChatThread
	Err    error
}

// ThreadDeleted is sent when a thread was removed.
type ThreadDeleted struct {
	ID  string
	Err error
}

// SearchCompleted carries the hits for a search query.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// FileContentLoaded carries the extracted text of an opened note.
type FileContentLoaded struct {
	ID      string
	Title   string
	Content string
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
