package park

import (
	"math"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/entropy"
	"github.com/talgya/mini-park/internal/world"
)

// BaseBreakdownChance is the per-tick breakdown probability at level 1.
// Each level divides it further.
const BaseBreakdownChance = 0.015

// BreakdownChance returns the per-tick probability for a facility at level.
func BreakdownChance(level int) float64 {
	return BaseBreakdownChance / math.Max(1, float64(level))
}

// rollBreakdowns draws once per facility in x-major order. Under
// BreakdownCapOne rolling stops at the first new breakdown, so at most one
// facility breaks per tick; a roll that lands on an already broken facility
// does not count.
func (s *State) rollBreakdowns(rng entropy.Source) []world.Coord {
	var broke []world.Coord
	for _, c := range s.Grid.FacilityTiles() {
		f, ok := s.Facilities[c]
		if !ok {
			continue
		}
		if rng.Float64() >= BreakdownChance(f.Level) || f.Broken {
			continue
		}
		f.Broken = true
		broke = append(broke, c)
		name := string(f.Building)
		if b, ok := catalog.Lookup(f.Building); ok {
			name = b.Name
		}
		s.addNews("breakdown", "%s at %s broke down", name, c)
		if s.Rules.Breakdown != BreakdownIndependent {
			break
		}
	}
	return broke
}
