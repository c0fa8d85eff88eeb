package driving

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// ChatEventKind identifies a chat pipeline notification.
type ChatEventKind int

const (
	// ChatEventStatus reports a phase or progress change.
	ChatEventStatus ChatEventKind = iota

	// ChatEventContent reports a content fragment appended to the answer.
	ChatEventContent

	// ChatEventSources reports that the answer's sources were replaced.
	ChatEventSources

	// ChatEventThread reports that the thread's messages changed.
	ChatEventThread
)

// ChatEvent is delivered to a ChatObserver while a message is in flight.
type ChatEvent struct {
	Kind     ChatEventKind
	ThreadID string
	Status   domain.ChatStatus
	Delta    string
	Sources  []domain.SourceRef
}

// ChatObserver receives chat events. It may be called from a background
// goroutine and must not block.
type ChatObserver func(ChatEvent)

// ChatResult is the outcome of a completed chat message.
type ChatResult struct {
	// ThreadID is the thread the exchange was stored in.
	ThreadID string

	// Answer is the sealed assistant message.
	Answer domain.Message

	// SkippedFrames counts frames dropped because they could not be decoded.
	SkippedFrames int
}

// ChatService sends messages and streams the answers into the thread store.
type ChatService interface {
	// Send posts text to a thread and streams the answer. An empty
	// threadID uses the active thread, creating one when none is active.
	Send(ctx context.Context, threadID, text string, observe ChatObserver) (*ChatResult, error)

	// Status returns the current phase and simulated progress.
	Status() domain.ChatStatus
}
