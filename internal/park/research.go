package park

import "github.com/talgya/mini-park/internal/catalog"

// advanceResearch counts the in-flight job down and unlocks its building on
// completion. It draws nothing.
func (s *State) advanceResearch() {
	if s.Research == nil {
		return
	}
	s.Research.MinutesRemaining--
	if s.Research.MinutesRemaining > 0 {
		return
	}
	id := s.Research.Building
	s.Unlocked[id] = true
	s.Research = nil
	name := string(id)
	if b, ok := catalog.Lookup(id); ok {
		name = b.Name
	}
	s.addNews("research", "%s unlocked", name)
}

// ResearchProgress returns the completed fraction of the current job, or 0
// when idle.
func (s *State) ResearchProgress() float64 {
	if s.Research == nil || s.Research.TotalMinutes <= 0 {
		return 0
	}
	done := s.Research.TotalMinutes - s.Research.MinutesRemaining
	return float64(done) / float64(s.Research.TotalMinutes)
}
