package catalog

import "testing"

func TestLookupKnownAndUnknown(t *testing.T) {
	b, ok := Lookup(Rollercoaster)
	if !ok {
		t.Fatal("rollercoaster missing from catalog")
	}
	if b.Cost != 3000 || b.Maintenance != 50 || b.Fun != 18 {
		t.Errorf("rollercoaster = %+v", b)
	}
	if _, ok := Lookup("monorail"); ok {
		t.Error("expected unknown building lookup to fail")
	}
}

func TestResearchEntriesHaveCostAndDuration(t *testing.T) {
	for _, b := range All() {
		if b.RequiresResearch && (b.ResearchCost <= 0 || b.ResearchMinutes <= 0) {
			t.Errorf("%s requires research but has cost=%d minutes=%d", b.ID, b.ResearchCost, b.ResearchMinutes)
		}
		if b.Category == CategoryUtility && b.SatisfactionBonus == 0 {
			t.Errorf("utility %s has no satisfaction bonus", b.ID)
		}
	}
}

func TestAllOrdering(t *testing.T) {
	all := All()
	if len(all) != 11 {
		t.Fatalf("expected 11 buildings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Category > all[i].Category {
			t.Errorf("entries out of category order at %d: %s before %s", i, all[i-1].ID, all[i].ID)
		}
	}
	if all[len(all)-1].ID != Path {
		t.Errorf("expected path last, got %s", all[len(all)-1].ID)
	}
}

func TestPathIsNotFacility(t *testing.T) {
	p, _ := Lookup(Path)
	if p.IsFacility() || p.Locked() {
		t.Errorf("path should be an unlocked non-facility: %+v", p)
	}
	g, _ := Lookup(Garden)
	if !g.Locked() {
		t.Error("garden should require an unlock")
	}
}
