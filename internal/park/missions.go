package park

import (
	"fmt"

	"github.com/talgya/mini-park/internal/catalog"
)

// Metric is the aggregate a mission goal measures.
type Metric string

const (
	MetricMaxVisitors Metric = "max_visitors"
	MetricMoney       Metric = "money"
	MetricRating      Metric = "rating"
)

// Mission is one goal in the ordered sequence.
type Mission struct {
	Title        string             `json:"title" yaml:"title"`
	Metric       Metric             `json:"metric" yaml:"metric"`
	Target       int64              `json:"target" yaml:"target"`
	RewardMoney  int64              `json:"reward_money" yaml:"reward_money"`
	RewardUnlock catalog.BuildingID `json:"reward_unlock,omitempty" yaml:"reward_unlock"`
}

// Value reads the mission's metric from s.
func (m Mission) Value(s *State) int64 {
	switch m.Metric {
	case MetricMaxVisitors:
		return int64(s.MaxVisitors)
	case MetricMoney:
		return s.Money
	case MetricRating:
		return int64(s.Rating)
	default:
		return 0
	}
}

// Satisfied reports whether the goal is met in s.
func (m Mission) Satisfied(s *State) bool {
	return m.Value(s) >= m.Target
}

// Describe returns a one-line goal summary.
func (m Mission) Describe() string {
	return fmt.Sprintf("%s: %s ≥ %d", m.Title, m.Metric, m.Target)
}

// CurrentMission returns the head of the sequence, or nil once all are done.
func (s *State) CurrentMission() *Mission {
	if s.MissionIndex < 0 || s.MissionIndex >= len(s.Rules.Missions) {
		return nil
	}
	m := s.Rules.Missions[s.MissionIndex]
	return &m
}

// checkMissions evaluates only the current head. A completed mission pays its
// reward, grants its unlock and advances the index; completion is permanent.
func (s *State) checkMissions() {
	m := s.CurrentMission()
	if m == nil || !m.Satisfied(s) {
		return
	}
	s.Money += m.RewardMoney
	if m.RewardUnlock != "" {
		s.MissionUnlocks[m.RewardUnlock] = true
	}
	s.MissionIndex++
	s.addNews("mission", "mission complete: %s (+%d)", m.Title, m.RewardMoney)
}
