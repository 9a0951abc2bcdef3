package steward

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/talgya/mini-park/internal/api"
	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/engine"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/park"
	"github.com/talgya/mini-park/internal/world"
)

const adminKey = "steward-key"

// newPark starts an API over a park with a broken rollercoaster and carousel.
func newPark(t *testing.T) (*engine.Engine, *httptest.Server) {
	t.Helper()
	s := park.NewState(park.DefaultRules())
	for _, b := range []struct {
		x, y int
		id   catalog.BuildingID
	}{{11, 10, catalog.Rollercoaster}, {9, 10, catalog.Carousel}} {
		if err := s.PlaceBuilding(b.x, b.y, b.id); err != nil {
			t.Fatal(err)
		}
		s.Facilities[world.Coord{X: b.x, Y: b.y}].Broken = true
	}
	s.Facilities[world.Coord{X: 9, Y: 10}].Users = 50

	eng := engine.New(s, entropy.Constant(0.99))
	srv := httptest.NewServer((&api.Server{Eng: eng, AdminKey: adminKey}).Handler())
	t.Cleanup(srv.Close)
	return eng, srv
}

func newSteward(url string) *Steward {
	return &Steward{
		Observer: NewObserver(url),
		Actor:    NewActor(url, adminKey),
		Memory:   LoadMemory(""),
		Policy:   DefaultPolicy(),
	}
}

func TestObserve(t *testing.T) {
	_, srv := newPark(t)
	snap, err := NewObserver(srv.URL).Observe()
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status.Money != 6000 || snap.Status.Name != "mini-park" {
		t.Errorf("status = %+v", snap.Status)
	}
	if len(snap.Broken) != 2 {
		t.Fatalf("broken = %+v", snap.Broken)
	}
	if snap.Broken[0].Pos != (Coord{X: 9, Y: 10}) || snap.Broken[0].RepairFee != 200 {
		t.Errorf("first broken = %+v", snap.Broken[0])
	}
	if snap.History != nil {
		t.Errorf("history without a database = %+v", snap.History)
	}
}

func TestTriage(t *testing.T) {
	tests := []struct {
		name string
		snap ParkSnapshot
		want string
	}{
		{"healthy", ParkSnapshot{Status: ParkStatus{Money: 5000, Rating: 60, AvgSatisfaction: 70}}, "HEALTHY"},
		{"broken ride", ParkSnapshot{
			Status: ParkStatus{Money: 5000, Rating: 60},
			Broken: []FacilityInfo{{RepairFee: 500}},
		}, "WATCH"},
		{"cannot afford repairs", ParkSnapshot{
			Status: ParkStatus{Money: 100, Rating: 60},
			Broken: []FacilityInfo{{RepairFee: 500}},
		}, "WARNING"},
		{"low rating", ParkSnapshot{Status: ParkStatus{Money: 5000, Rating: 20}}, "WARNING"},
		{"in debt", ParkSnapshot{Status: ParkStatus{Money: -1}}, "CRITICAL"},
		{"losing streak", ParkSnapshot{
			Status:  ParkStatus{Money: 5000, Rating: 60},
			History: []DayRow{{Income: 10, Expense: 5}, {Income: 1, Expense: 5}, {Income: 1, Expense: 5}, {Income: 1, Expense: 5}},
		}, "CRITICAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Triage(&tt.snap).CrisisLevel; got != tt.want {
				t.Errorf("CrisisLevel = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecideRepairOrder(t *testing.T) {
	snap := &ParkSnapshot{
		Status: ParkStatus{Money: 1300, EntryFee: 100, Rating: 60},
		Broken: []FacilityInfo{
			{Pos: Coord{1, 1}, Category: "shop", RepairFee: 100, Users: 90},
			{Pos: Coord{2, 2}, Category: "ride", RepairFee: 500, Users: 5},
			{Pos: Coord{3, 3}, Category: "ride", RepairFee: 400, Users: 40},
		},
	}
	got := Decide(snap, Triage(snap), LoadMemory(""), DefaultPolicy())

	// Budget is 800: the busier ride first, then the other ride is skipped
	// as unaffordable and the shop still fits.
	want := []Coord{{3, 3}, {1, 1}}
	if len(got) != len(want) {
		t.Fatalf("actions = %+v", got)
	}
	for i, a := range got {
		if a.Kind != ActionRepair || a.Pos != want[i] {
			t.Errorf("action %d = %+v, want repair at %v", i, a, want[i])
		}
	}
}

func TestDecideEntryFee(t *testing.T) {
	p := DefaultPolicy()
	high := &ParkSnapshot{Status: ParkStatus{Money: 1000, EntryFee: 490, Rating: 80}}
	got := Decide(high, Triage(high), LoadMemory(""), p)
	if len(got) != 1 || got[0].Kind != ActionEntryFee || got[0].Fee != 500 {
		t.Errorf("high rating = %+v", got)
	}

	low := &ParkSnapshot{Status: ParkStatus{Money: 1000, EntryFee: 10, Rating: 20}}
	got = Decide(low, Triage(low), LoadMemory(""), p)
	if len(got) != 1 || got[0].Fee != 0 {
		t.Errorf("low rating = %+v", got)
	}

	mem := LoadMemory("")
	mem.Record(CycleRecord{Actions: []Action{{Kind: ActionEntryFee, Fee: 125}}})
	if got := Decide(high, Triage(high), mem, p); len(got) != 0 {
		t.Errorf("fee changed on consecutive cycles: %+v", got)
	}
}

func TestRunCycleRepairsPark(t *testing.T) {
	eng, srv := newPark(t)
	st := newSteward(srv.URL)

	rec, err := st.RunCycle()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Actions) != 2 || rec.Failed != 0 {
		t.Fatalf("record = %+v", rec)
	}

	s := eng.Snapshot()
	for _, f := range s.Facilities {
		if f.Broken {
			t.Errorf("%s still broken", f.Building)
		}
	}
	if s.Money != 6000-500-200 {
		t.Errorf("money = %d", s.Money)
	}
	if len(st.Memory.Records) != 1 {
		t.Errorf("memory = %+v", st.Memory.Records)
	}
}

func TestRunCycleSkipsWhenPaused(t *testing.T) {
	eng, srv := newPark(t)
	eng.Pause()

	rec, err := newSteward(srv.URL).RunCycle()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Actions) != 0 || countBroken(eng.Snapshot()) != 2 {
		t.Errorf("paused park was tended: %+v", rec)
	}
}

func TestRunCycleCountsRejectedActions(t *testing.T) {
	_, srv := newPark(t)
	st := newSteward(srv.URL)
	st.Actor.AdminKey = "wrong"

	rec, err := st.RunCycle()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Failed != 2 || len(rec.Actions) != 0 {
		t.Errorf("record = %+v", rec)
	}
}

func TestMemoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steward.json")
	mem := LoadMemory(path)
	for i := 0; i < maxRecords+3; i++ {
		mem.Record(CycleRecord{Tick: uint64(i)})
	}
	mem.Save()

	loaded := LoadMemory(path)
	if len(loaded.Records) != maxRecords {
		t.Fatalf("records = %d", len(loaded.Records))
	}
	if loaded.Records[0].Tick != 3 {
		t.Errorf("oldest tick = %d, want 3", loaded.Records[0].Tick)
	}
}

func countBroken(s *park.State) int {
	n := 0
	for _, f := range s.Facilities {
		if f.Broken {
			n++
		}
	}
	return n
}
