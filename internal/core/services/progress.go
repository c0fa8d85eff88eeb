package services

import (
	"sync"
	"time"
)

// progressCeiling is the value simulated progress approaches but never reaches.
const progressCeiling = 90.0

// maxSimulatedProgress is the highest value the simulator reports.
const maxSimulatedProgress = 89.9

// NextProgress returns the next simulated progress value and the delay
// before it is reached. Progress climbs fast to 30, more slowly to 50 and
// then closes a tenth of the remaining gap to 90 per step.
func NextProgress(current float64) (float64, time.Duration) {
	switch {
	case current < 30:
		return min(current+5, 30), 200 * time.Millisecond
	case current < 50:
		return min(current+2, 50), 300 * time.Millisecond
	default:
		next := current + (progressCeiling-current)*0.1
		return min(next, maxSimulatedProgress), 500 * time.Millisecond
	}
}

// ProgressSimulator advances a synthetic progress value on a background
// goroutine until stopped. It exists so the user sees movement while the
// notes service searches before the first token arrives.
type ProgressSimulator struct {
	onTick func(float64)
	after  func(time.Duration) <-chan time.Time

	mu       sync.Mutex
	progress float64
	started  bool
	stopped  bool
	stopCh   chan struct{}
	done     chan struct{}
}

// NewProgressSimulator creates a simulator that reports each new value to
// onTick. onTick runs on the simulator goroutine and is never called after
// Stop returns.
func NewProgressSimulator(onTick func(float64)) *ProgressSimulator {
	return &ProgressSimulator{
		onTick: onTick,
		after:  time.After,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the simulator goroutine. Starting twice, or after Stop,
// is a no-op.
func (s *ProgressSimulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	go s.run()
}

func (s *ProgressSimulator) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		next, wait := NextProgress(s.progress)
		s.mu.Unlock()

		select {
		case <-s.stopCh:
			return
		case <-s.after(wait):
		}

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.progress = next
		onTick := s.onTick
		s.mu.Unlock()

		if onTick != nil {
			onTick(next)
		}
	}
}

// Stop halts the simulator and waits for its goroutine to exit.
// It is safe to call more than once, and before Start.
func (s *ProgressSimulator) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stopCh)
	}
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

// Progress returns the current simulated value.
func (s *ProgressSimulator) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}
