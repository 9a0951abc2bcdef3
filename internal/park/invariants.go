package park

import (
	"errors"
	"fmt"

	"github.com/talgya/mini-park/internal/world"
)

// CheckInvariants returns every structural defect found in s, joined. A
// non-nil result is a programming error, never a player-facing failure.
func (s *State) CheckInvariants() error {
	var errs []error

	for x := 0; x < world.Size; x++ {
		for y := 0; y < world.Size; y++ {
			c := world.Coord{X: x, Y: y}
			t := s.Grid.Tiles[x][y]
			f, ok := s.Facilities[c]
			switch t.Kind {
			case world.KindFacility:
				if !ok {
					errs = append(errs, fmt.Errorf("facility tile %s has no state", c))
				} else if f.Building != t.Building {
					errs = append(errs, fmt.Errorf("facility %s: tile says %s, state says %s", c, t.Building, f.Building))
				}
			case world.KindEmpty, world.KindPath:
				if ok {
					errs = append(errs, fmt.Errorf("state at %s without facility tile", c))
				}
			}
		}
	}
	for c, f := range s.Facilities {
		if !c.InBounds() {
			errs = append(errs, fmt.Errorf("facility state out of bounds at %s", c))
		}
		if f.Level < 1 {
			errs = append(errs, fmt.Errorf("facility %s has level %d", c, f.Level))
		}
	}

	seen := make(map[VisitorID]bool, len(s.Visitors))
	for _, v := range s.Visitors {
		if !s.Grid.IsPath(v.Pos) {
			errs = append(errs, fmt.Errorf("visitor %d off path at %s", v.ID, v.Pos))
		}
		if v.Satisfaction < 0 || v.Satisfaction > 100 {
			errs = append(errs, fmt.Errorf("visitor %d satisfaction %.2f out of range", v.ID, v.Satisfaction))
		}
		if seen[v.ID] || v.ID >= s.NextVisitorID {
			errs = append(errs, fmt.Errorf("visitor id %d reused or ahead of counter", v.ID))
		}
		seen[v.ID] = true
	}

	if s.Rating < 0 || s.Rating > 100 {
		errs = append(errs, fmt.Errorf("rating %d out of range", s.Rating))
	}
	if s.GameMinutes < 0 || s.GameMinutes >= MinutesPerDay {
		errs = append(errs, fmt.Errorf("game minutes %d out of range", s.GameMinutes))
	}
	if len(s.Visitors) > s.MaxVisitors {
		errs = append(errs, fmt.Errorf("population %d above high-water mark %d", len(s.Visitors), s.MaxVisitors))
	}
	return errors.Join(errs...)
}
