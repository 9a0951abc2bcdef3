package park

import (
	"math"

	"github.com/talgya/mini-park/internal/catalog"
)

// Rating weights.
const (
	SatisfactionWeight   = 0.45
	AttractivenessWeight = 0.35
	DiversityBonus       = 3.0 // Per distinct building type in use
	CrowdBonus           = 0.25
	CrowdBonusCap        = 100
)

// Attractiveness combines ride appeal, working amenities, variety and crowd
// size. It reads s only.
func (s *State) Attractiveness() float64 {
	amenity := 0.0
	distinct := make(map[catalog.BuildingID]struct{})
	for _, c := range s.Grid.FacilityTiles() {
		f, ok := s.Facilities[c]
		if !ok || f.Broken {
			continue
		}
		b, ok := catalog.Lookup(f.Building)
		if !ok {
			continue
		}
		distinct[b.ID] = struct{}{}
		switch b.Category {
		case catalog.CategoryUtility:
			amenity += b.AmenityRating
		case catalog.CategoryRide, catalog.CategoryShop, catalog.CategoryPath:
			// No amenity value.
		}
	}
	crowd := float64(min(len(s.Visitors), CrowdBonusCap)) * CrowdBonus
	return s.RideFun() + amenity + float64(len(distinct))*DiversityBonus + crowd
}

// ComputeRating derives the 0–100 park score from the current state.
func (s *State) ComputeRating() int {
	attr := s.Attractiveness()
	raw := SatisfactionWeight*s.AverageSatisfaction() +
		AttractivenessWeight*math.Min(100, attr) +
		s.Rules.Rating.Baseline(attr)
	return int(clamp(roundHalfUp(raw), 0, 100))
}
