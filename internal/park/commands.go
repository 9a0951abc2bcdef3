package park

import (
	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/world"
)

// PlacementCheck returns nil if id can be built at c, or the reason it cannot.
func (s *State) PlacementCheck(c world.Coord, id catalog.BuildingID) error {
	if !c.InBounds() {
		return ErrOutOfBounds
	}
	b, ok := catalog.Lookup(id)
	if !ok {
		return ErrUnknownBuilding
	}
	if !s.IsUnlocked(id) {
		return ErrLocked
	}
	if s.Money < b.Cost {
		return ErrInsufficientFunds
	}
	if s.Grid.At(c).Kind != world.KindEmpty {
		return ErrTileOccupied
	}
	if b.IsFacility() && !s.Grid.HasAdjacentPath(c) {
		return ErrNoAdjacentPath
	}
	return nil
}

// CanPlace reports whether id can be built at (x, y).
func (s *State) CanPlace(x, y int, id catalog.BuildingID) bool {
	return s.PlacementCheck(world.Coord{X: x, Y: y}, id) == nil
}

// PlaceBuilding builds id at (x, y), debiting its cost. Paths only change the
// tile; anything else also gets fresh facility state.
func (s *State) PlaceBuilding(x, y int, id catalog.BuildingID) error {
	c := world.Coord{X: x, Y: y}
	if err := s.PlacementCheck(c, id); err != nil {
		return err
	}
	b, _ := catalog.Lookup(id)
	s.Money -= b.Cost
	if !b.IsFacility() {
		s.Grid.Set(c, world.Tile{Kind: world.KindPath})
		return nil
	}
	s.Grid.Set(c, world.Tile{Kind: world.KindFacility, Building: id})
	s.Facilities[c] = &Facility{Building: id, Level: 1}
	s.addNews("build", "%s built at %s", b.Name, c)
	return nil
}

// UpgradeCost is the price of raising a facility from its current level.
func UpgradeCost(b catalog.Building, level int) int64 {
	return roundHalfUp(float64(b.Cost) * (0.5 + float64(level)*0.35))
}

// RepairFee is the price of fixing a broken facility. Free-to-run buildings
// are charged as if their maintenance were 20.
func RepairFee(b catalog.Building) int64 {
	m := b.Maintenance
	if m == 0 {
		m = 20
	}
	return roundHalfUp(float64(m) * 10)
}

// DemolishRefund is what tearing a facility down returns.
func DemolishRefund(b catalog.Building) int64 {
	return roundHalfUp(float64(b.Cost) * 0.5)
}

func (s *State) facilityAt(c world.Coord) (*Facility, catalog.Building, error) {
	f, ok := s.Facilities[c]
	if !ok || s.Grid.At(c).Kind != world.KindFacility {
		return nil, catalog.Building{}, ErrFacilityNotFound
	}
	b, ok := catalog.Lookup(f.Building)
	if !ok {
		return nil, catalog.Building{}, ErrFacilityNotFound
	}
	return f, b, nil
}

// Upgrade raises the facility at c by one level.
func (s *State) Upgrade(c world.Coord) error {
	f, b, err := s.facilityAt(c)
	if err != nil {
		return err
	}
	cost := UpgradeCost(b, f.Level)
	if s.Money < cost {
		return ErrInsufficientFunds
	}
	s.Money -= cost
	f.Level++
	s.addNews("build", "%s at %s upgraded to level %d", b.Name, c, f.Level)
	return nil
}

// Repair clears the broken flag on the facility at c.
func (s *State) Repair(c world.Coord) error {
	f, b, err := s.facilityAt(c)
	if err != nil {
		return err
	}
	if !f.Broken {
		return ErrNotBroken
	}
	fee := RepairFee(b)
	if s.Money < fee {
		return ErrInsufficientFunds
	}
	s.Money -= fee
	f.Broken = false
	s.addNews("repair", "%s at %s repaired", b.Name, c)
	return nil
}

// Demolish removes the facility at c and refunds half its cost. Path tiles
// are not facilities and cannot be demolished.
func (s *State) Demolish(c world.Coord) error {
	_, b, err := s.facilityAt(c)
	if err != nil {
		return err
	}
	s.Money += DemolishRefund(b)
	delete(s.Facilities, c)
	s.Grid.Set(c, world.Tile{Kind: world.KindEmpty})
	s.addNews("build", "%s at %s demolished", b.Name, c)
	return nil
}

// StartResearch pays for and begins unlocking id. Requests that can never
// succeed are rejected before the single-job check.
func (s *State) StartResearch(id catalog.BuildingID) error {
	b, ok := catalog.Lookup(id)
	if !ok {
		return ErrUnknownBuilding
	}
	if s.Unlocked[id] || s.MissionUnlocks[id] {
		return ErrAlreadyUnlocked
	}
	if !b.RequiresResearch {
		return ErrNotResearchable
	}
	if s.Research != nil {
		return ErrResearchInProgress
	}
	if s.Money < b.ResearchCost {
		return ErrInsufficientFunds
	}
	s.Money -= b.ResearchCost
	s.Research = &ResearchJob{
		Building:         id,
		MinutesRemaining: b.ResearchMinutes,
		TotalMinutes:     b.ResearchMinutes,
	}
	s.addNews("research", "research started on %s", b.Name)
	return nil
}

// SetEntryFee sets the gate price, clamped to the ruleset's bounds, and
// returns the fee actually applied.
func (s *State) SetEntryFee(fee int64) int64 {
	s.EntryFee = clamp(fee, s.Rules.MinEntryFee, s.Rules.MaxEntryFee)
	return s.EntryFee
}
