package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

// Ensure ThreadService implements the interface.
var _ driving.ThreadService = (*ThreadService)(nil)

// ThreadService mirrors remote thread operations into the thread store.
type ThreadService struct {
	api   driven.NotesAPI
	store driven.ThreadStore
}

// NewThreadService creates a thread service.
func NewThreadService(api driven.NotesAPI, store driven.ThreadStore) *ThreadService {
	return &ThreadService{api: api, store: store}
}

// Create starts a new thread and makes it active.
func (s *ThreadService) Create(ctx context.Context, title string) (*domain.ChatThread, error) {
	thread, err := s.api.CreateThread(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	s.store.ReplaceThread(*thread)
	if err := s.store.SetActiveThread(thread.ID); err != nil {
		return nil, err
	}
	return thread, nil
}

// List fetches all threads and replaces the local list.
func (s *ThreadService) List(ctx context.Context) ([]domain.ChatThread, error) {
	threads, err := s.api.ListThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	s.store.ReplaceAll(threads)
	return s.store.Threads(), nil
}

// Get fetches a thread with its messages.
func (s *ThreadService) Get(ctx context.Context, id string) (*domain.ChatThread, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: thread id is required", domain.ErrInvalidInput)
	}
	thread, err := s.api.GetThread(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", id, err)
	}
	s.store.ReplaceThread(*thread)
	return thread, nil
}

// Delete removes a thread remotely, then locally.
func (s *ThreadService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: thread id is required", domain.ErrInvalidInput)
	}
	if err := s.api.DeleteThread(ctx, id); err != nil {
		return fmt.Errorf("deleting thread %s: %w", id, err)
	}
	s.store.RemoveThread(id)
	return nil
}

// Select loads a thread and makes it active.
func (s *ThreadService) Select(ctx context.Context, id string) (*domain.ChatThread, error) {
	thread, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActiveThread(thread.ID); err != nil {
		return nil, err
	}
	return thread, nil
}

// Active returns the active thread.
func (s *ThreadService) Active() (domain.ChatThread, bool) {
	return s.store.ActiveThread()
}
