// Package engine drives a park in real time: it paces ticks, serializes
// player commands with them and fans out hourly and daily callbacks.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/park"
)

// Speed bounds. 1.0 runs one tick per Interval.
const (
	MinSpeed = 0.0
	MaxSpeed = 64.0
)

// Engine owns the authoritative park state.
//
// Published states are never modified: Step swaps in the next state and
// commands run against a clone that replaces the current state only on
// success. A *park.State obtained from Snapshot or a callback stays valid and
// consistent forever.
type Engine struct {
	Interval time.Duration // Base tick interval (default 1 second)
	Debug    bool          // Check invariants after every tick and panic on violation

	// Callbacks, populated during setup. They run after the tick is
	// published, outside the engine lock.
	OnTick func(s *park.State)               // Every tick (game minute)
	OnHour func(s *park.State)               // When the clock reaches a full hour
	OnDay  func(s *park.State, day DayStats) // At midnight, with the finished day's totals

	mu     sync.Mutex
	state  *park.State
	rng    entropy.Source
	speed  float64
	paused bool
	day    DayStats
}

// New creates an engine around s. The engine takes ownership of s and rng.
func New(s *park.State, rng entropy.Source) *Engine {
	e := &Engine{
		Interval: time.Second,
		state:    s,
		rng:      rng,
		speed:    1.0,
	}
	e.day = newDayStats(s)
	return e
}

// Run advances the park until ctx is cancelled. While paused or at speed 0
// it idles and re-checks periodically.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("simulation engine started", "tick", e.Snapshot().Tick, "speed", e.Speed())

	for {
		wait := 100 * time.Millisecond
		if target, ok := e.tickInterval(); ok {
			start := time.Now()
			e.Step()
			wait = max(target-time.Since(start), 0)
		}

		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Snapshot().Tick)
			return
		case <-time.After(wait):
		}
	}
}

// tickInterval returns the wall-clock time one tick should take, or false
// when the clock is stopped.
func (e *Engine) tickInterval() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused || e.speed <= 0 {
		return 0, false
	}
	return time.Duration(float64(e.Interval) / e.speed), true
}

// Step advances the park by exactly one tick, regardless of pause state, and
// returns the new state.
func (e *Engine) Step() *park.State {
	e.mu.Lock()
	next := park.Step(e.state, e.rng)
	if e.Debug {
		if err := next.CheckInvariants(); err != nil {
			e.mu.Unlock()
			panic(fmt.Sprintf("park invariants violated at tick %d: %v", next.Tick, err))
		}
	}
	e.state = next

	e.day.observe(next)
	var finished *DayStats
	if next.GameMinutes == 0 {
		done := e.day
		finished = &done
		e.day = newDayStats(next)
	}
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(next)
	}
	if next.GameMinutes%60 == 0 && e.OnHour != nil {
		e.OnHour(next)
	}
	if finished != nil && e.OnDay != nil {
		e.OnDay(next, *finished)
	}
	return next
}

// Advance runs n ticks back to back and returns the final state.
func (e *Engine) Advance(n int) *park.State {
	s := e.Snapshot()
	for i := 0; i < n; i++ {
		s = e.Step()
	}
	return s
}

// Do runs a command between ticks. fn receives a private copy of the state;
// if it returns nil the copy becomes the current state, otherwise it is
// discarded and the error returned.
func (e *Engine) Do(fn func(s *park.State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	e.state = next
	return nil
}

// Snapshot returns the current state. Callers must treat it as read-only.
func (e *Engine) Snapshot() *park.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Report returns the read view of the current state.
func (e *Engine) Report() park.Report {
	return e.Snapshot().Report()
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier, clamped to [MinSpeed, MaxSpeed],
// and returns the value applied. Speed 0 stops the clock without pausing.
func (e *Engine) SetSpeed(speed float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = min(max(speed, MinSpeed), MaxSpeed)
	slog.Info("speed changed", "speed", e.speed)
	return e.speed
}

// Pause stops the clock. Commands and reads keep working.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
	slog.Info("simulation paused", "tick", e.state.Tick)
}

// Resume restarts a paused clock.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
	slog.Info("simulation resumed", "tick", e.state.Tick)
}

// Paused reports whether the clock is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}
