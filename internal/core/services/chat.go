package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService sends a message and streams the answer into the thread store.
type ChatService struct {
	api     driven.NotesAPI
	store   driven.ThreadStore
	session driven.SessionProvider

	// newSimulator is replaced in tests to control ticks.
	newSimulator func(onTick func(float64)) *ProgressSimulator
	now          func() time.Time

	mu     sync.Mutex
	status domain.ChatStatus

	// streaming holds the threads with an answer in flight. The store
	// addresses the last pending assistant message, so one per thread.
	streaming map[string]struct{}
}

// NewChatService creates a chat service.
func NewChatService(api driven.NotesAPI, store driven.ThreadStore, session driven.SessionProvider) *ChatService {
	return &ChatService{
		api:          api,
		store:        store,
		session:      session,
		newSimulator: NewProgressSimulator,
		now:          time.Now,
		streaming:    make(map[string]struct{}),
	}
}

// Status returns the current phase and simulated progress.
func (s *ChatService) Status() domain.ChatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Send posts text and streams the answer. The observer is called from
// this goroutine and from the progress simulator goroutine; it is never
// called after Send returns.
func (s *ChatService) Send(
	ctx context.Context, threadID, text string, observe driving.ChatObserver,
) (*driving.ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, domain.MaxMessageLength)
	}
	userID := s.session.UserID()
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if observe == nil {
		observe = func(driving.ChatEvent) {}
	}

	threadID, err := s.resolveThread(ctx, threadID, text)
	if err != nil {
		return nil, err
	}
	release, err := s.claim(threadID)
	if err != nil {
		return nil, err
	}
	defer release()

	logger.Section("Chat")
	logger.Debug("Thread: %s, message: %d chars", threadID, len(text))

	now := domain.NewTimestamp(s.now())
	if err := s.store.AppendMessage(threadID, domain.Message{Role: domain.RoleUser, Content: text, Timestamp: now}); err != nil {
		return nil, err
	}
	if err := s.store.AppendMessage(threadID, domain.Message{Role: domain.RoleAssistant, Timestamp: now, Pending: true}); err != nil {
		return nil, err
	}
	observe(driving.ChatEvent{Kind: driving.ChatEventThread, ThreadID: threadID})

	run := &chatRun{
		svc:      s,
		threadID: threadID,
		observe:  observe,
	}
	return run.stream(ctx, driven.ChatRequest{Message: text, ThreadID: threadID, UserID: userID})
}

// claim marks threadID as streaming. A second Send on the same thread
// fails with ErrThreadBusy until release is called.
func (s *ChatService) claim(threadID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.streaming[threadID]; busy {
		return nil, fmt.Errorf("%w: %s", domain.ErrThreadBusy, threadID)
	}
	s.streaming[threadID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.streaming, threadID)
		s.mu.Unlock()
	}, nil
}

// resolveThread returns the thread to post to, creating one when none is
// given and none is active.
func (s *ChatService) resolveThread(ctx context.Context, threadID, text string) (string, error) {
	if threadID != "" {
		if _, ok := s.store.Thread(threadID); ok {
			return threadID, nil
		}
		thread, err := s.api.GetThread(ctx, threadID)
		if err != nil {
			return "", fmt.Errorf("loading thread %s: %w", threadID, err)
		}
		s.store.ReplaceThread(*thread)
		return thread.ID, nil
	}

	if active, ok := s.store.ActiveThread(); ok {
		return active.ID, nil
	}

	thread, err := s.api.CreateThread(ctx, domain.ThreadTitleFromMessage(text))
	if err != nil {
		return "", fmt.Errorf("creating thread: %w", err)
	}
	s.store.ReplaceThread(*thread)
	if err := s.store.SetActiveThread(thread.ID); err != nil {
		return "", err
	}
	logger.Debug("Created thread %s (%q)", thread.ID, thread.Title)
	return thread.ID, nil
}

// setStatus moves to phase if it is a forward step and reports the change.
func (s *ChatService) setStatus(phase domain.ChatPhase, progress float64, err error) (domain.ChatStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if phase != s.status.Phase && !s.status.Phase.CanAdvanceTo(phase) {
		return s.status, false
	}
	s.status = domain.ChatStatus{Phase: phase, Progress: progress, Err: err}
	return s.status, true
}

// reset returns the pipeline to idle, clearing any previous error.
func (s *ChatService) reset() domain.ChatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = domain.ChatStatus{Phase: domain.PhaseIdle}
	return s.status
}

// setProgress records simulated progress while still searching.
func (s *ChatService) setProgress(p float64) (domain.ChatStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Phase != domain.PhaseSearching {
		return s.status, false
	}
	s.status.Progress = p
	return s.status, true
}

// chatRun is the state of one in-flight answer.
type chatRun struct {
	svc      *ChatService
	threadID string
	observe  driving.ChatObserver

	contentSeen bool
	skipped     int
}

func (r *chatRun) emitStatus(status domain.ChatStatus) {
	r.observe(driving.ChatEvent{Kind: driving.ChatEventStatus, ThreadID: r.threadID, Status: status})
}

func (r *chatRun) advance(phase domain.ChatPhase) {
	if status, ok := r.svc.setStatus(phase, r.svc.Status().Progress, nil); ok {
		r.emitStatus(status)
	}
}

func (r *chatRun) stream(ctx context.Context, req driven.ChatRequest) (*driving.ChatResult, error) {
	r.svc.reset()
	status, _ := r.svc.setStatus(domain.PhaseSearching, 0, nil)
	r.emitStatus(status)

	sim := r.svc.newSimulator(func(p float64) {
		if status, ok := r.svc.setProgress(p); ok {
			r.emitStatus(status)
		}
	})
	sim.Start()
	defer sim.Stop()

	frames, err := r.svc.api.StreamChat(ctx, req)
	if err != nil {
		sim.Stop()
		return nil, r.fail(err)
	}
	defer frames.Close()

	// Closing the stream unblocks a pending read when ctx is cancelled.
	stopClose := context.AfterFunc(ctx, func() { _ = frames.Close() })
	defer stopClose()

	for {
		if err := ctx.Err(); err != nil {
			sim.Stop()
			return nil, r.fail(err)
		}

		frame, err := frames.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, domain.ErrStreamDecode) {
			r.skipped++
			logger.Warn("chat: skipping malformed frame: %v", err)
			continue
		}
		if err != nil {
			sim.Stop()
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return nil, r.fail(err)
		}

		if frame.ThreadID != "" && frame.ThreadID != r.threadID {
			logger.Debug("chat: server reported thread %s for %s", frame.ThreadID, r.threadID)
		}

		if frame.HasSources {
			r.svc.store.MutateLastAssistantMessage(r.threadID, domain.MessageMutation{
				Sources:        frame.Sources,
				ReplaceSources: true,
			})
			if !r.contentSeen {
				r.advance(domain.PhaseAnalyzing)
			}
			r.observe(driving.ChatEvent{Kind: driving.ChatEventSources, ThreadID: r.threadID, Sources: frame.Sources})
		}

		if frame.HasContent && frame.Content != "" {
			if !r.contentSeen {
				r.contentSeen = true
				sim.Stop()
				r.advance(domain.PhaseAnalyzing)
				r.advance(domain.PhaseGenerating)
			}
			r.svc.store.MutateLastAssistantMessage(r.threadID, domain.MessageMutation{AppendContent: frame.Content})
			r.observe(driving.ChatEvent{Kind: driving.ChatEventContent, ThreadID: r.threadID, Delta: frame.Content})
		}

		if frame.Done {
			break
		}
	}

	sim.Stop()
	return r.complete()
}

// complete seals the answer and returns the pipeline to idle.
func (r *chatRun) complete() (*driving.ChatResult, error) {
	answer, ok := r.pendingAnswer()
	r.svc.store.SealLastAssistantMessage(r.threadID)
	answer.Pending = false

	r.advance(domain.PhaseDone)
	r.emitStatus(r.svc.reset())
	r.observe(driving.ChatEvent{Kind: driving.ChatEventThread, ThreadID: r.threadID})

	if !ok {
		logger.Warn("chat: answer placeholder for thread %s was removed before completion", r.threadID)
	}
	logger.Debug("chat: answer complete (%d chars, %d sources, %d skipped frames)",
		len(answer.Content), len(answer.Sources), r.skipped)

	return &driving.ChatResult{ThreadID: r.threadID, Answer: answer, SkippedFrames: r.skipped}, nil
}

// fail removes the placeholder and records err on the status.
func (r *chatRun) fail(err error) error {
	r.svc.store.RemoveLastAssistantMessage(r.threadID)
	status, _ := r.svc.setStatus(domain.PhaseErrored, r.svc.Status().Progress, err)
	r.emitStatus(status)
	r.observe(driving.ChatEvent{Kind: driving.ChatEventThread, ThreadID: r.threadID})
	logger.Warn("chat: stream failed: %v", err)
	return err
}

func (r *chatRun) pendingAnswer() (domain.Message, bool) {
	thread, ok := r.svc.store.Thread(r.threadID)
	if !ok {
		return domain.Message{}, false
	}
	last, ok := thread.LastMessage()
	if !ok || !last.IsPendingAssistant() {
		return domain.Message{}, false
	}
	return last, true
}
