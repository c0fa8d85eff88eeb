package driven

import "github.com/custodia-labs/notely-cli/internal/core/domain"

// ThreadStore holds the session's threads and their messages.
// It performs no I/O. Readers receive copies.
type ThreadStore interface {
	// ReplaceThread inserts or replaces a thread. New threads are
	// placed first.
	ReplaceThread(thread domain.ChatThread)

	// ReplaceAll swaps the whole thread list, keeping order.
	ReplaceAll(threads []domain.ChatThread)

	// RemoveThread deletes a thread. Removing the active thread clears
	// the active pointer.
	RemoveThread(id string)

	// SetActiveThread selects the thread messages are sent to.
	// An empty id clears the selection.
	SetActiveThread(id string) error

	// ActiveThread returns the selected thread.
	ActiveThread() (domain.ChatThread, bool)

	// Thread returns a thread by id.
	Thread(id string) (domain.ChatThread, bool)

	// Threads returns all threads in display order.
	Threads() []domain.ChatThread

	// AppendMessage appends a message to a thread.
	AppendMessage(threadID string, msg domain.Message) error

	// MutateLastAssistantMessage edits the last message when it is a
	// pending assistant message. Otherwise it is a no-op and returns false.
	MutateLastAssistantMessage(threadID string, mutation domain.MessageMutation) bool

	// SealLastAssistantMessage marks the pending assistant message complete.
	SealLastAssistantMessage(threadID string) bool

	// RemoveLastAssistantMessage drops a pending assistant placeholder.
	RemoveLastAssistantMessage(threadID string) bool
}
