package park

import (
	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/world"
)

// Visitor behavior constants.
const (
	SpawnBase          = 0.06
	SpawnFunDivisor    = 280.0
	SpawnFeeDivisor    = 2000.0
	SpawnMinChance     = 0.03
	SpawnMaxChance     = 0.45
	SpawnSatisfaction  = 55.0
	SpawnSatisfactionU = 20.0

	AmbientDecay     = -0.4
	FeeDecayDivisor  = 1200.0
	RideVisitChance  = 0.17
	ShopVisitChance  = 0.12
	UtilVisitChance  = 0.08
	ShopVisitBonus   = 2.2
	AttractionWeight = 2.0

	CullThreshold = 8.0
	CullChance    = 0.15
)

// RideFun sums ride appeal over all ride facilities, broken or not, with each
// level past the first adding 4.
func (s *State) RideFun() float64 {
	total := 0.0
	for _, c := range s.Grid.FacilityTiles() {
		f, ok := s.Facilities[c]
		if !ok {
			continue
		}
		b, ok := catalog.Lookup(f.Building)
		if !ok || b.Category != catalog.CategoryRide {
			continue
		}
		total += b.Fun + float64(f.Level-1)*4
	}
	return total
}

// SpawnChance is this tick's probability of one new visitor arriving.
func (s *State) SpawnChance() float64 {
	chance := (SpawnBase + s.RideFun()/SpawnFunDivisor) *
		s.Event.VisitorMultiplier *
		(1 - float64(s.EntryFee)/SpawnFeeDivisor)
	return clamp(chance, SpawnMinChance, SpawnMaxChance)
}

// spawnVisitor rolls for an arrival. Draws: the arrival roll, then on success
// (with room and at least one path) the entry tile and starting satisfaction.
func (s *State) spawnVisitor(rng entropy.Source, paths []world.Coord) bool {
	if rng.Float64() >= s.SpawnChance() {
		return false
	}
	if len(paths) == 0 || len(s.Visitors) >= s.Rules.PopulationCap {
		return false
	}
	idx := clamp(int(rng.Float64()*float64(len(paths))), 0, len(paths)-1)
	sat := clamp(SpawnSatisfaction+rng.Float64()*SpawnSatisfactionU, 0, 100)
	s.Visitors = append(s.Visitors, Visitor{
		ID:           s.NextVisitorID,
		Pos:          paths[idx],
		Satisfaction: sat,
	})
	s.NextVisitorID++
	return true
}

// moveWeight scores a destination path tile: 1 plus 2 per operational
// facility around it.
func (s *State) moveWeight(c world.Coord) float64 {
	w := 1.0
	for _, n := range c.Neighbors() {
		if _, _, ok := s.operational(n); ok {
			w += AttractionWeight
		}
	}
	return w
}

// moveVisitor takes one weighted random step along the path network. A
// visitor with no path neighbors stays put and consumes no draw.
func (s *State) moveVisitor(v *Visitor, rng entropy.Source) {
	var candidates [4]world.Coord
	var weights [4]float64
	n := 0
	total := 0.0
	for _, c := range v.Pos.Neighbors() {
		if !s.Grid.IsPath(c) {
			continue
		}
		candidates[n] = c
		weights[n] = s.moveWeight(c)
		total += weights[n]
		n++
	}
	if n == 0 {
		return
	}

	r := rng.Float64() * total
	pick := candidates[0]
	for i := 0; i < n; i++ {
		r -= weights[i]
		if r <= 0 {
			pick = candidates[i]
			break
		}
	}
	v.Pos = pick
}

// interact applies ambient decay and the facilities around the visitor's
// position. Every operational neighbor costs exactly one draw, in direction
// order.
func (s *State) interact(v *Visitor, rng entropy.Source) {
	delta := AmbientDecay + s.Event.SatisfactionDelta - float64(s.EntryFee)/FeeDecayDivisor

	for _, c := range v.Pos.Neighbors() {
		f, b, ok := s.operational(c)
		if !ok {
			continue
		}
		roll := rng.Float64()
		switch b.Category {
		case catalog.CategoryRide:
			if roll < RideVisitChance {
				delta += 4 + b.Fun*0.22 + float64(f.Level-1)*1.4
				f.Users++
			}
		case catalog.CategoryShop:
			if roll < ShopVisitChance {
				delta += ShopVisitBonus
				f.Users++
				f.Revenue += b.ShopIncome
			}
		case catalog.CategoryUtility:
			if roll < UtilVisitChance {
				delta += b.SatisfactionBonus
				f.Users++
			}
		case catalog.CategoryPath:
			// Paths never carry facility state.
		}
	}

	v.Satisfaction = clamp(v.Satisfaction+delta, 0, 100)
}

// stepVisitors moves every visitor, applies interactions, then culls. Culling
// runs as a separate pass after all visitors have moved.
func (s *State) stepVisitors(rng entropy.Source) {
	for i := range s.Visitors {
		v := &s.Visitors[i]
		s.moveVisitor(v, rng)
		s.interact(v, rng)
	}
	s.cullVisitors(rng)
}

// cullVisitors removes unhappy visitors. Anyone above the threshold stays
// without a draw; anyone at or below it leaves with probability CullChance.
func (s *State) cullVisitors(rng entropy.Source) {
	kept := s.Visitors[:0]
	for _, v := range s.Visitors {
		if keepVisitor(v, rng) {
			kept = append(kept, v)
		}
	}
	s.Visitors = kept
}

func keepVisitor(v Visitor, rng entropy.Source) bool {
	return v.Satisfaction > CullThreshold || rng.Float64() > CullChance
}

// AverageSatisfaction is the population mean, or 50 for an empty park.
func (s *State) AverageSatisfaction() float64 {
	if len(s.Visitors) == 0 {
		return 50
	}
	total := 0.0
	for _, v := range s.Visitors {
		total += v.Satisfaction
	}
	return total / float64(len(s.Visitors))
}
