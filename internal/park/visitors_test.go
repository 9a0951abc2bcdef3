package park

import (
	"testing"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/world"
)

func TestSpawnChance(t *testing.T) {
	s := newTestPark(t)
	if got := s.SpawnChance(); !approx(got, 0.06*0.95) {
		t.Errorf("empty park chance = %f", got)
	}

	mustPlace(t, s, 11, 10, catalog.Rollercoaster)
	if got := s.SpawnChance(); !approx(got, (0.06+18.0/280)*0.95) {
		t.Errorf("one ride chance = %f", got)
	}

	s.EntryFee = 1900
	if got := s.SpawnChance(); got != SpawnMinChance {
		t.Errorf("expensive park chance = %f, want floor", got)
	}
}

func TestSpawnVisitor(t *testing.T) {
	s := newTestPark(t)
	rng := entropy.NewSequence(0, 0.5, 0.5)

	if !s.spawnVisitor(rng, s.Grid.PathTiles()) {
		t.Fatal("no visitor spawned")
	}
	v := s.Visitors[0]
	if v.ID != 1 || s.NextVisitorID != 2 {
		t.Errorf("id = %d next = %d", v.ID, s.NextVisitorID)
	}
	if v.Pos != (world.Coord{X: 10, Y: 10}) {
		t.Errorf("entry tile = %s, want 10,10", v.Pos)
	}
	if !approx(v.Satisfaction, 65) {
		t.Errorf("satisfaction = %f, want 65", v.Satisfaction)
	}
}

func TestSpawnRespectsPopulationCap(t *testing.T) {
	s := newTestPark(t)
	s.Rules.PopulationCap = 0
	rng := entropy.NewSequence(0)

	if s.spawnVisitor(rng, s.Grid.PathTiles()) {
		t.Fatal("spawned past the cap")
	}
	if rng.Drawn() != 1 {
		t.Errorf("drew %d, want only the arrival roll", rng.Drawn())
	}
}

func TestMoveVisitorWeighted(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 11, 11, catalog.Rollercoaster)

	// From 10,10: 10,11 weighs 3 (ride next to it), 10,9 weighs 1.
	tests := []struct {
		roll float64
		want world.Coord
	}{
		{0.7, world.Coord{X: 10, Y: 11}},
		{0.8, world.Coord{X: 10, Y: 9}},
	}
	for _, tt := range tests {
		v := Visitor{ID: 1, Pos: world.Coord{X: 10, Y: 10}}
		s.moveVisitor(&v, entropy.NewSequence(tt.roll))
		if v.Pos != tt.want {
			t.Errorf("roll %.1f moved to %s, want %s", tt.roll, v.Pos, tt.want)
		}
	}
}

func TestMoveVisitorStranded(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 0, 0, catalog.Path)
	v := Visitor{ID: 1, Pos: world.Coord{X: 0, Y: 0}}
	rng := entropy.NewSequence(0.5)

	s.moveVisitor(&v, rng)
	if v.Pos != (world.Coord{X: 0, Y: 0}) || rng.Drawn() != 0 {
		t.Errorf("stranded visitor moved to %s using %d draws", v.Pos, rng.Drawn())
	}
}

func TestInteract(t *testing.T) {
	base := AmbientDecay - 100.0/FeeDecayDivisor
	coaster := world.Coord{X: 11, Y: 10}
	burger := world.Coord{X: 9, Y: 10}

	tests := []struct {
		name      string
		rolls     []float64
		level     int
		broken    bool
		wantDelta float64
		wantDraws int
		wantRide  int64
		wantShop  int64
	}{
		{"ride and shop miss", []float64{0.5, 0.5}, 1, false, base, 2, 0, 0},
		{"ride hit", []float64{0.1, 0.5}, 1, false, base + 4 + 18*0.22, 2, 1, 0},
		{"upgraded ride hit", []float64{0.1, 0.5}, 3, false, base + 4 + 18*0.22 + 2.8, 2, 1, 0},
		{"shop hit", []float64{0.5, 0.1}, 1, false, base + ShopVisitBonus, 2, 0, 1},
		{"broken ride skipped", []float64{0.1}, 1, true, base + ShopVisitBonus, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestPark(t)
			mustPlace(t, s, coaster.X, coaster.Y, catalog.Rollercoaster)
			mustPlace(t, s, burger.X, burger.Y, catalog.Burger)
			s.Facilities[coaster].Level = tt.level
			s.Facilities[coaster].Broken = tt.broken

			v := Visitor{ID: 1, Pos: world.Coord{X: 10, Y: 10}, Satisfaction: 60}
			rng := entropy.NewSequence(tt.rolls...)
			s.interact(&v, rng)

			if !approx(v.Satisfaction, 60+tt.wantDelta) {
				t.Errorf("satisfaction = %f, want %f", v.Satisfaction, 60+tt.wantDelta)
			}
			if rng.Drawn() != tt.wantDraws {
				t.Errorf("drew %d, want %d", rng.Drawn(), tt.wantDraws)
			}
			if got := s.Facilities[coaster].Users; got != tt.wantRide {
				t.Errorf("ride users = %d, want %d", got, tt.wantRide)
			}
			if got := s.Facilities[burger].Users; got != tt.wantShop {
				t.Errorf("shop users = %d, want %d", got, tt.wantShop)
			}
			if got := s.Facilities[burger].Revenue; got != tt.wantShop*30 {
				t.Errorf("shop revenue = %d", got)
			}
		})
	}
}

func TestInteractUtilityAndClamp(t *testing.T) {
	s := newTestPark(t)
	mustPlace(t, s, 11, 10, catalog.Restroom)

	v := Visitor{ID: 1, Pos: world.Coord{X: 10, Y: 10}, Satisfaction: 99}
	s.interact(&v, entropy.NewSequence(0.05))
	if v.Satisfaction != 100 {
		t.Errorf("satisfaction = %f, want clamped to 100", v.Satisfaction)
	}
	if s.Facilities[world.Coord{X: 11, Y: 10}].Users != 1 {
		t.Error("restroom visit not counted")
	}

	v = Visitor{ID: 2, Pos: world.Coord{X: 10, Y: 8}, Satisfaction: 0.2}
	s.interact(&v, entropy.NewSequence(0.5))
	if v.Satisfaction != 0 {
		t.Errorf("satisfaction = %f, want clamped to 0", v.Satisfaction)
	}
}

func TestCullRate(t *testing.T) {
	rng := entropy.NewSeeded(2024)
	const trials = 20000
	removed := 0
	for i := 0; i < trials; i++ {
		if !keepVisitor(Visitor{Satisfaction: 5}, rng) {
			removed++
		}
	}
	rate := float64(removed) / trials
	if rate < 0.13 || rate > 0.17 {
		t.Errorf("cull rate = %.4f, want about 0.15", rate)
	}
}

func TestCullThreshold(t *testing.T) {
	rng := entropy.NewSequence(0.15)
	if keepVisitor(Visitor{Satisfaction: 8}, rng) {
		t.Error("visitor at threshold survived a roll of 0.15")
	}
	if !keepVisitor(Visitor{Satisfaction: 8}, entropy.NewSequence(0.16)) {
		t.Error("visitor at threshold removed on a roll of 0.16")
	}

	above := entropy.NewSequence(0)
	if !keepVisitor(Visitor{Satisfaction: 8.01}, above) || above.Drawn() != 0 {
		t.Error("happy visitor was rolled for")
	}

	s := newTestPark(t)
	s.Visitors = []Visitor{
		{ID: 1, Pos: world.Coord{X: 10, Y: 10}, Satisfaction: 3},
		{ID: 2, Pos: world.Coord{X: 10, Y: 10}, Satisfaction: 60},
		{ID: 3, Pos: world.Coord{X: 10, Y: 10}, Satisfaction: 1},
	}
	s.cullVisitors(entropy.NewSequence(0.1, 0.9))
	if len(s.Visitors) != 2 || s.Visitors[0].ID != 2 || s.Visitors[1].ID != 3 {
		t.Errorf("survivors = %+v", s.Visitors)
	}
}

func TestAverageSatisfaction(t *testing.T) {
	s := newTestPark(t)
	if got := s.AverageSatisfaction(); got != 50 {
		t.Errorf("empty park average = %f, want 50", got)
	}
	s.Visitors = []Visitor{{ID: 1, Satisfaction: 20}, {ID: 2, Satisfaction: 70}}
	if got := s.AverageSatisfaction(); got != 45 {
		t.Errorf("average = %f, want 45", got)
	}
}
