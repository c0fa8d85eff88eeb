package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextProgress_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		wantNext float64
		wantWait time.Duration
	}{
		{"fast from zero", 0, 5, 200 * time.Millisecond},
		{"fast clamps at 30", 28, 30, 200 * time.Millisecond},
		{"medium", 30, 32, 300 * time.Millisecond},
		{"medium clamps at 50", 49, 50, 300 * time.Millisecond},
		{"slow closes a tenth of the gap", 50, 54, 500 * time.Millisecond},
		{"slow near ceiling", 89, 89.1, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, wait := NextProgress(tt.current)
			assert.InDelta(t, tt.wantNext, next, 1e-9)
			assert.Equal(t, tt.wantWait, wait)
		})
	}
}

func TestNextProgress_NeverReachesCeiling(t *testing.T) {
	p := 0.0
	for i := 0; i < 10000; i++ {
		next, _ := NextProgress(p)
		require.GreaterOrEqual(t, next, p)
		require.Less(t, next, 90.0)
		p = next
	}
	assert.InDelta(t, maxSimulatedProgress, p, 0.01)
}

// manualClock releases simulator steps on demand.
type manualClock struct {
	ticks chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{ticks: make(chan time.Time)}
}

func (c *manualClock) after(time.Duration) <-chan time.Time {
	return c.ticks
}

func (c *manualClock) tick() {
	c.ticks <- time.Now()
}

func TestProgressSimulator_Ticks(t *testing.T) {
	var mu sync.Mutex
	var seen []float64
	sim := NewProgressSimulator(func(p float64) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})
	clock := newManualClock()
	sim.after = clock.after

	sim.Start()
	for i := 0; i < 8; i++ {
		clock.tick()
	}
	sim.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seen), 7)
	assert.Equal(t, []float64{5, 10, 15, 20, 25, 30, 32}, seen[:7])
	assert.InDelta(t, seen[len(seen)-1], sim.Progress(), 1e-9)
}

func TestProgressSimulator_NoTicksAfterStop(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	sim := NewProgressSimulator(func(float64) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	clock := newManualClock()
	sim.after = clock.after

	sim.Start()
	clock.tick()
	sim.Stop()

	mu.Lock()
	before := calls
	mu.Unlock()

	// The goroutine has exited, so nobody receives further ticks.
	select {
	case clock.ticks <- time.Now():
		t.Fatal("simulator still running after Stop")
	case <-time.After(50 * time.Millisecond):
	}

	mu.Lock()
	assert.Equal(t, before, calls)
	mu.Unlock()
}

func TestProgressSimulator_StopIsIdempotent(t *testing.T) {
	sim := NewProgressSimulator(nil)

	// Stop before Start must not block.
	sim.Stop()
	sim.Stop()
	sim.Start()
	assert.Zero(t, sim.Progress())

	running := NewProgressSimulator(nil)
	running.after = newManualClock().after
	running.Start()
	running.Stop()
	running.Stop()
}

func TestProgressSimulator_RealClock(t *testing.T) {
	sim := NewProgressSimulator(nil)
	sim.Start()
	time.Sleep(450 * time.Millisecond)
	sim.Stop()

	p := sim.Progress()
	assert.Greater(t, p, 0.0)
	assert.LessOrEqual(t, p, 30.0)
}
