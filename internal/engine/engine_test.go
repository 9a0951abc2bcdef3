package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/park"
	"github.com/talgya/mini-park/internal/world"
)

func newEngine() *Engine {
	return New(park.NewState(park.DefaultRules()), entropy.Constant(0.99))
}

func TestStepPublishesNewState(t *testing.T) {
	e := newEngine()
	before := e.Snapshot()

	after := e.Step()
	if after.Tick != 1 || before.Tick != 0 {
		t.Fatalf("ticks: before %d after %d", before.Tick, after.Tick)
	}
	if e.Snapshot() != after {
		t.Error("Snapshot does not return the latest state")
	}
}

func TestDoAppliesOnlyOnSuccess(t *testing.T) {
	e := newEngine()
	start := e.Snapshot()

	err := e.Do(func(s *park.State) error {
		return s.PlaceBuilding(0, 0, catalog.Rollercoaster)
	})
	if !errors.Is(err, park.ErrNoAdjacentPath) {
		t.Fatalf("Do = %v, want ErrNoAdjacentPath", err)
	}
	if e.Snapshot() != start {
		t.Error("failed command replaced the state")
	}

	err = e.Do(func(s *park.State) error {
		return s.PlaceBuilding(11, 10, catalog.Rollercoaster)
	})
	if err != nil {
		t.Fatal(err)
	}
	now := e.Snapshot()
	if now.Money != 7000 || now.Grid.At(world.Coord{X: 11, Y: 10}).Building != catalog.Rollercoaster {
		t.Errorf("command not applied: money %d", now.Money)
	}
	if start.Money != park.StartMoney || len(start.Facilities) != 0 {
		t.Error("command modified a published snapshot")
	}
}

func TestHourAndDayCallbacks(t *testing.T) {
	e := newEngine()
	var hours, ticks int
	var days []DayStats
	e.OnTick = func(*park.State) { ticks++ }
	e.OnHour = func(s *park.State) {
		hours++
		if s.GameMinutes%60 != 0 {
			t.Errorf("hour callback at minute %d", s.GameMinutes)
		}
	}
	e.OnDay = func(s *park.State, d DayStats) {
		if s.GameMinutes != 0 {
			t.Errorf("day callback at minute %d", s.GameMinutes)
		}
		days = append(days, d)
	}

	// 08:00 to midnight.
	e.Advance(16 * 60)
	if ticks != 960 || hours != 16 {
		t.Errorf("ticks = %d hours = %d, want 960 and 16", ticks, hours)
	}
	if len(days) != 1 {
		t.Fatalf("day callbacks = %d, want 1", len(days))
	}
	d := days[0]
	if d.Day != 1 || d.Ticks != 960 {
		t.Errorf("day = %+v", d)
	}
	if d.ClosingMoney != e.Snapshot().Money {
		t.Errorf("closing money = %d, want %d", d.ClosingMoney, e.Snapshot().Money)
	}
	if got := SimTime(e.Snapshot()); got != "Day 2, 00:00" {
		t.Errorf("SimTime = %q", got)
	}

	e.Advance(24 * 60)
	if len(days) != 2 || days[1].Day != 2 || days[1].Ticks != 1440 {
		t.Errorf("second day = %+v", days)
	}
}

func TestDayStatsTotals(t *testing.T) {
	e := newEngine()
	if err := e.Do(func(s *park.State) error { return s.PlaceBuilding(11, 10, catalog.Rollercoaster) }); err != nil {
		t.Fatal(err)
	}
	var got DayStats
	e.OnDay = func(_ *park.State, d DayStats) { got = d }
	e.Advance(960)

	// Every quiet tick costs 50 and earns 4.
	if got.Expense != 960*50 || got.Income != 960*4 {
		t.Errorf("totals = %+v", got)
	}
	if got.Net() != 960*(4-50) {
		t.Errorf("net = %d", got.Net())
	}
}

func TestSpeedAndPause(t *testing.T) {
	e := newEngine()
	if got := e.SetSpeed(1000); got != MaxSpeed {
		t.Errorf("SetSpeed(1000) = %f, want %f", got, MaxSpeed)
	}
	if got := e.SetSpeed(-3); got != 0 {
		t.Errorf("SetSpeed(-3) = %f, want 0", got)
	}
	if _, ok := e.tickInterval(); ok {
		t.Error("speed 0 should stop the clock")
	}

	e.SetSpeed(2)
	e.Interval = time.Second
	if d, ok := e.tickInterval(); !ok || d != 500*time.Millisecond {
		t.Errorf("interval = %v %v", d, ok)
	}

	e.Pause()
	if !e.Paused() {
		t.Error("not paused")
	}
	if _, ok := e.tickInterval(); ok {
		t.Error("paused engine should not tick")
	}
	// Manual steps still work while paused.
	if e.Step().Tick != 1 {
		t.Error("Step ignored while paused")
	}
	e.Resume()
	if e.Paused() {
		t.Error("still paused")
	}
}

func TestRunAdvancesUntilCancelled(t *testing.T) {
	e := newEngine()
	e.Interval = time.Millisecond
	e.SetSpeed(MaxSpeed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for e.Snapshot().Tick < 20 {
		if time.Now().After(deadline) {
			t.Fatal("engine did not advance")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDebugPanicsOnCorruptState(t *testing.T) {
	s := park.NewState(park.DefaultRules())
	s.Visitors = append(s.Visitors, park.Visitor{ID: 1, Pos: world.Coord{X: 0, Y: 0}, Satisfaction: 50})
	s.NextVisitorID = 2
	s.MaxVisitors = 1

	e := New(s, entropy.Constant(0.99))
	e.Debug = true

	defer func() {
		if recover() == nil {
			t.Error("expected invariant panic")
		}
	}()
	e.Step()
}
