// Package memory provides in-memory implementations of driven ports.
package memory

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is an in-memory implementation of driven.ThreadStore.
// Threads are kept in display order, newest first.
type ThreadStore struct {
	mu       sync.RWMutex
	threads  []domain.ChatThread
	activeID string
}

// NewThreadStore creates an empty thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{}
}

// indexOf returns the position of id, or -1. Callers hold the lock.
func (s *ThreadStore) indexOf(id string) int {
	for i := range s.threads {
		if s.threads[i].ID == id {
			return i
		}
	}
	return -1
}

// ReplaceThread inserts or replaces a thread. New threads go first.
func (s *ThreadStore) ReplaceThread(thread domain.ChatThread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread = thread.Clone()
	if i := s.indexOf(thread.ID); i >= 0 {
		s.threads[i] = thread
		return
	}
	s.threads = append([]domain.ChatThread{thread}, s.threads...)
}

// ReplaceAll swaps the thread list. The active selection is kept when the
// active thread is still present.
func (s *ThreadStore) ReplaceAll(threads []domain.ChatThread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = make([]domain.ChatThread, len(threads))
	for i, t := range threads {
		s.threads[i] = t.Clone()
	}
	if s.activeID != "" && s.indexOf(s.activeID) < 0 {
		s.activeID = ""
	}
}

// RemoveThread deletes a thread and clears the selection if it was active.
func (s *ThreadStore) RemoveThread(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.threads = append(s.threads[:i], s.threads[i+1:]...)
	}
	if s.activeID == id {
		s.activeID = ""
	}
}

// SetActiveThread selects a thread. An empty id clears the selection.
func (s *ThreadStore) SetActiveThread(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.indexOf(id) < 0 {
		return fmt.Errorf("thread %s: %w", id, domain.ErrNotFound)
	}
	s.activeID = id
	return nil
}

// ActiveThread returns a copy of the selected thread.
func (s *ThreadStore) ActiveThread() (domain.ChatThread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return domain.ChatThread{}, false
	}
	i := s.indexOf(s.activeID)
	if i < 0 {
		return domain.ChatThread{}, false
	}
	return s.threads[i].Clone(), true
}

// Thread returns a copy of a thread.
func (s *ThreadStore) Thread(id string) (domain.ChatThread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.ChatThread{}, false
	}
	return s.threads[i].Clone(), true
}

// Threads returns copies of all threads.
func (s *ThreadStore) Threads() []domain.ChatThread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatThread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t.Clone()
	}
	return out
}

// AppendMessage appends msg to a thread and bumps its last-updated time.
func (s *ThreadStore) AppendMessage(threadID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(threadID)
	if i < 0 {
		return fmt.Errorf("thread %s: %w", threadID, domain.ErrNotFound)
	}
	s.threads[i].Messages = append(s.threads[i].Messages, msg.Clone())
	if !msg.Timestamp.IsZero() {
		s.threads[i].LastUpdated = msg.Timestamp
	}
	return nil
}

// pendingAssistant returns the last message of a thread when it is a
// pending assistant message. Callers hold the lock.
func (s *ThreadStore) pendingAssistant(threadID string) *domain.Message {
	i := s.indexOf(threadID)
	if i < 0 {
		return nil
	}
	msgs := s.threads[i].Messages
	if len(msgs) == 0 || !msgs[len(msgs)-1].IsPendingAssistant() {
		return nil
	}
	return &s.threads[i].Messages[len(msgs)-1]
}

// MutateLastAssistantMessage applies mutation to the pending assistant
// message. It is a no-op when the last message is not one.
func (s *ThreadStore) MutateLastAssistantMessage(threadID string, mutation domain.MessageMutation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.pendingAssistant(threadID)
	if msg == nil {
		return false
	}
	*msg = mutation.Apply(*msg)
	return true
}

// SealLastAssistantMessage ends mutation of the pending assistant message.
func (s *ThreadStore) SealLastAssistantMessage(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.pendingAssistant(threadID)
	if msg == nil {
		return false
	}
	msg.Pending = false
	return true
}

// RemoveLastAssistantMessage drops the pending assistant placeholder.
// Sealed messages are never removed.
func (s *ThreadStore) RemoveLastAssistantMessage(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingAssistant(threadID) == nil {
		return false
	}
	i := s.indexOf(threadID)
	s.threads[i].Messages = s.threads[i].Messages[:len(s.threads[i].Messages)-1]
	return true
}
