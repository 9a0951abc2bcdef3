package park

import (
	"reflect"
	"testing"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/world"
)

// quietRNG never triggers events, breakdowns, spawns or culls.
const quietRNG = entropy.Constant(0.99)

// busyPark builds a small park with every starter category represented.
func busyPark(t *testing.T) *State {
	t.Helper()
	s := newTestPark(t)
	mustPlace(t, s, 11, 10, catalog.Rollercoaster)
	mustPlace(t, s, 9, 10, catalog.Carousel)
	mustPlace(t, s, 11, 9, catalog.Burger)
	mustPlace(t, s, 9, 9, catalog.Drink)
	mustPlace(t, s, 11, 11, catalog.Restroom)
	mustPlace(t, s, 10, 13, catalog.Path)
	mustPlace(t, s, 10, 7, catalog.Path)
	return s
}

func TestStepMaintenanceOnlyTick(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 11, 10, catalog.Rollercoaster)
	if s.Money != 7000 {
		t.Fatalf("money after build = %d, want 7000", s.Money)
	}

	next := Step(s, quietRNG)

	// 7000 − 50 maintenance + round(18 × 0.2) activity
	if next.Money != 6954 {
		t.Errorf("money = %d, want 6954", next.Money)
	}
	if next.Ledger.Expense != 50 || next.Ledger.Income != 4 {
		t.Errorf("ledger = %+v", next.Ledger)
	}
	if len(next.Visitors) != 0 {
		t.Errorf("visitors = %d, want 0", len(next.Visitors))
	}
	// round(0.45×50 + 0.35×21 + 20) = round(49.85)
	if next.Rating != 50 {
		t.Errorf("rating = %d, want 50", next.Rating)
	}
	if next.Tick != 1 || next.GameMinutes != StartMinutes+1 {
		t.Errorf("clock = tick %d minute %d", next.Tick, next.GameMinutes)
	}
}

func TestStepTreasuryHasNoFloor(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 11, 10, catalog.Rollercoaster)
	s.Money = 0

	next := Step(s, quietRNG)
	if next.Money != -46 {
		t.Errorf("money = %d, want -46", next.Money)
	}
}

func TestStepClockWraps(t *testing.T) {
	s := newTestPark(t)
	s.GameMinutes = MinutesPerDay - 1
	s.Tick = 41

	next := Step(s, quietRNG)
	if next.GameMinutes != 0 {
		t.Errorf("minutes = %d, want 0", next.GameMinutes)
	}
	if next.Tick != 42 {
		t.Errorf("tick = %d, want 42", next.Tick)
	}
	if ClockLabel(next.GameMinutes) != "00:00" {
		t.Errorf("label = %q", ClockLabel(next.GameMinutes))
	}
}

func TestStepResearchCompletes(t *testing.T) {
	s := newTestPark(t)
	if err := s.StartResearch(catalog.Ferris); err != nil {
		t.Fatal(err)
	}
	if s.Money != 8500 {
		t.Fatalf("money = %d, want 8500", s.Money)
	}
	if s.Research == nil || s.Research.MinutesRemaining != 30 {
		t.Fatalf("research = %+v", s.Research)
	}

	for i := 0; i < 29; i++ {
		s = Step(s, quietRNG)
	}
	if s.Research == nil || s.Research.MinutesRemaining != 1 {
		t.Fatalf("after 29 ticks research = %+v", s.Research)
	}
	if s.IsUnlocked(catalog.Ferris) {
		t.Fatal("unlocked before the job finished")
	}
	if got := s.ResearchProgress(); got < 0.96 || got > 0.97 {
		t.Errorf("progress = %f", got)
	}

	s = Step(s, quietRNG)
	if s.Research != nil {
		t.Errorf("job still running: %+v", s.Research)
	}
	if !s.Unlocked[catalog.Ferris] {
		t.Error("ferris not unlocked")
	}
	if !s.CanPlace(11, 10, catalog.Ferris) {
		t.Error("ferris should now be placeable")
	}
	if err := s.StartResearch(catalog.Ferris); err == nil {
		t.Error("researching an unlocked building should fail")
	}
}

func TestStepDoesNotModifyInput(t *testing.T) {
	s := busyPark(t)
	rng := entropy.NewSeeded(3)
	for i := 0; i < 300; i++ {
		s = Step(s, rng)
	}

	before := s.Clone()
	for i := 0; i < 50; i++ {
		_ = Step(s, rng)
		if !reflect.DeepEqual(before, s) {
			t.Fatalf("Step modified its input on call %d", i)
		}
	}
}

func TestStepDeterministic(t *testing.T) {
	run := func(seed int64) *State {
		s := busyPark(t)
		rng := entropy.NewSeeded(seed)
		for i := 0; i < 1000; i++ {
			s = Step(s, rng)
		}
		return s
	}

	a, b := run(99), run(99)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different parks")
	}
}

func TestStepReplayFromRecordedDraws(t *testing.T) {
	start := busyPark(t)

	rec := entropy.NewRecorder(entropy.NewSeeded(5))
	live := start.Clone()
	for i := 0; i < 400; i++ {
		live = Step(live, rec)
	}

	replay := entropy.NewSequence(rec.Draws()...)
	again := start.Clone()
	for i := 0; i < 400; i++ {
		again = Step(again, replay)
	}

	if replay.Drawn() != len(rec.Draws()) {
		t.Errorf("replay consumed %d draws, recorded %d", replay.Drawn(), len(rec.Draws()))
	}
	if !reflect.DeepEqual(live, again) {
		t.Fatal("replaying recorded draws diverged")
	}
}

func TestStepInvariantsHoldOverLongRun(t *testing.T) {
	for _, rules := range []Rules{DefaultRules(), independentRules()} {
		s := busyPark(t)
		s.Rules = rules
		rng := entropy.NewSeeded(11)
		maxSeen := 0

		for i := 0; i < 3000; i++ {
			s = Step(s, rng)
			if err := s.CheckInvariants(); err != nil {
				t.Fatalf("tick %d: %v", s.Tick, err)
			}
			if s.MaxVisitors < maxSeen {
				t.Fatalf("tick %d: high-water mark fell from %d to %d", s.Tick, maxSeen, s.MaxVisitors)
			}
			maxSeen = s.MaxVisitors
			if len(s.Visitors) > rules.PopulationCap {
				t.Fatalf("tick %d: population %d over cap", s.Tick, len(s.Visitors))
			}

			// Keep the park running the way a player would.
			if i%25 == 0 {
				for _, f := range s.FacilityList() {
					if f.Broken {
						_ = s.Repair(f.Pos)
					}
				}
			}
		}
		if s.MaxVisitors == 0 {
			t.Error("no visitor ever arrived in 3000 ticks")
		}
	}
}

func independentRules() Rules {
	r := DefaultRules()
	r.Breakdown = BreakdownIndependent
	r.Rating = ExtendedRating()
	return r
}

func TestReadsAreIdempotent(t *testing.T) {
	s := busyPark(t)
	rng := entropy.NewSeeded(8)
	for i := 0; i < 200; i++ {
		s = Step(s, rng)
	}
	before := s.Clone()

	if a, b := s.Attractiveness(), s.Attractiveness(); a != b {
		t.Errorf("Attractiveness: %f then %f", a, b)
	}
	if a, b := s.ComputeRating(), s.ComputeRating(); a != b {
		t.Errorf("ComputeRating: %d then %d", a, b)
	}
	if a, b := s.Report(), s.Report(); !reflect.DeepEqual(a, b) {
		t.Error("Report differs between calls")
	}
	_ = s.Settle()
	_ = s.SpawnChance()
	_ = s.CanPlace(0, 0, catalog.Path)

	if !reflect.DeepEqual(before, s) {
		t.Error("read operations modified state")
	}
}

func TestReport(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 11, 10, catalog.Rollercoaster)
	s.Facilities[world.Coord{X: 11, Y: 10}].Broken = true
	if err := s.StartResearch(catalog.Bumper); err != nil {
		t.Fatal(err)
	}

	r := s.Report()
	if r.Clock != "08:00" {
		t.Errorf("clock = %q", r.Clock)
	}
	if r.Mission == nil || r.Mission.Index != 0 || r.Mission.Total != 4 {
		t.Errorf("mission = %+v", r.Mission)
	}
	if r.Research == nil || r.Research.Building != catalog.Bumper || r.Research.Progress != 0 {
		t.Errorf("research = %+v", r.Research)
	}
	if len(r.Facilities) != 1 {
		t.Fatalf("facilities = %d", len(r.Facilities))
	}
	f := r.Facilities[0]
	if !f.Broken || f.RepairFee != 500 || f.UpgradeCost != 2550 || f.Name != "Rollercoaster" {
		t.Errorf("facility = %+v", f)
	}
	if len(r.Unlocked) != 0 {
		t.Errorf("unlocked = %v, want none", r.Unlocked)
	}

	s.Unlocked[catalog.Bumper] = true
	s.MissionUnlocks[catalog.Garden] = true
	want := []catalog.BuildingID{catalog.Bumper, catalog.Garden}
	if got := s.Report().Unlocked; !reflect.DeepEqual(got, want) {
		t.Errorf("unlocked = %v, want %v", got, want)
	}
}

func TestCheckInvariantsReportsCorruption(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 11, 10, catalog.Rollercoaster)

	bad := s.Clone()
	bad.Visitors = append(bad.Visitors, Visitor{ID: 1, Pos: world.Coord{X: 0, Y: 0}, Satisfaction: 50})
	bad.NextVisitorID = 2
	bad.MaxVisitors = 1
	if bad.CheckInvariants() == nil {
		t.Error("visitor on grass not reported")
	}

	bad = s.Clone()
	delete(bad.Facilities, world.Coord{X: 11, Y: 10})
	if bad.CheckInvariants() == nil {
		t.Error("facility tile without state not reported")
	}

	bad = s.Clone()
	bad.Facilities[world.Coord{X: 11, Y: 10}].Level = 0
	if bad.CheckInvariants() == nil {
		t.Error("level 0 not reported")
	}

	bad = s.Clone()
	bad.Rating = 101
	if bad.CheckInvariants() == nil {
		t.Error("rating out of range not reported")
	}
}
