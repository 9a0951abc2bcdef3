package park

import "github.com/talgya/mini-park/internal/entropy"

// Step returns the state one tick after s. s itself is not modified, so a
// caller holding s never observes a half-applied tick.
//
// Draw order, which replay depends on:
//  1. event trigger roll (and outcome roll on success)
//  2. one breakdown roll per facility, x-major, until the policy stops it
//  3. spawn roll (then entry tile and satisfaction on success)
//  4. per visitor in order: one move roll if it has a path neighbor, then one
//     roll per operational neighboring facility in +X, -X, +Y, -Y order
//  5. per visitor in order: one cull roll if satisfaction ≤ 8
func Step(s *State, rng entropy.Source) *State {
	next := s.Clone()
	next.advance(rng)
	return next
}

func (s *State) advance(rng entropy.Source) {
	s.Tick++
	s.GameMinutes = (s.GameMinutes + 1) % MinutesPerDay

	s.advanceEvent(rng)
	s.advanceResearch()
	s.rollBreakdowns(rng)

	s.spawnVisitor(rng, s.Grid.PathTiles())
	s.stepVisitors(rng)
	s.MaxVisitors = max(s.MaxVisitors, len(s.Visitors))

	s.settleEconomy()
	s.Rating = s.ComputeRating()
	s.checkMissions()
}
