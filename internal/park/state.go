// Package park holds the park's single source of truth and the per-tick
// transition that advances it.
//
// A State is owned by one caller at a time. Step never modifies its input; it
// returns the next state. Commands (PlaceBuilding, Upgrade, ...) mutate the
// state in place and only on success, and must run between ticks.
package park

import (
	"fmt"
	"maps"
	"slices"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/world"
)

// Clock constants.
const (
	MinutesPerDay = 24 * 60
	StartMinutes  = 8 * 60 // Parks open at 08:00
	StartMoney    = 10000
	StartEntryFee = 100
	StartRating   = 50
	maxNews       = 100
)

// VisitorID identifies a visitor. IDs increase monotonically and are never reused.
type VisitorID uint64

// Visitor is one pedestrian agent. Pos is always a path tile.
type Visitor struct {
	ID           VisitorID   `json:"id"`
	Pos          world.Coord `json:"pos"`
	Satisfaction float64     `json:"satisfaction"` // 0–100
}

// Facility is the mutable state of one built, non-path tile.
type Facility struct {
	Building catalog.BuildingID `json:"building"`
	Level    int                `json:"level"` // ≥ 1
	Broken   bool               `json:"broken"`
	Users    int64              `json:"users"`   // Cumulative successful visits
	Revenue  int64              `json:"revenue"` // Cumulative per-sale shop revenue
}

// ResearchJob is the single in-flight unlock.
type ResearchJob struct {
	Building         catalog.BuildingID `json:"building"`
	MinutesRemaining int                `json:"minutes_remaining"`
	TotalMinutes     int                `json:"total_minutes"`
}

// Ledger is the economic record of the last tick.
type Ledger struct {
	Maintenance    int64 `json:"maintenance"`
	ShopIncome     int64 `json:"shop_income"`
	EntranceIncome int64 `json:"entrance_income"`
	ActivityIncome int64 `json:"activity_income"`
	Income         int64 `json:"income"`  // Shop + entrance + activity
	Expense        int64 `json:"expense"` // Maintenance
}

// News is a notable occurrence, kept for reporting.
type News struct {
	Tick        uint64 `json:"tick"`
	Category    string `json:"category"` // "event", "breakdown", "research", "mission", "build", ...
	Description string `json:"description"`
}

// State is the aggregate root: everything the simulation knows.
type State struct {
	Money       int64  `json:"money"` // No floor; spending may drive it negative
	EntryFee    int64  `json:"entry_fee"`
	GameMinutes int    `json:"game_minutes"` // 0..1439, wraps at midnight
	Tick        uint64 `json:"tick"`         // Ticks processed, never wraps
	Rating      int    `json:"rating"`       // 0–100
	MaxVisitors int    `json:"max_visitors"` // High-water mark

	Unlocked       map[catalog.BuildingID]bool `json:"unlocked"`
	MissionUnlocks map[catalog.BuildingID]bool `json:"mission_unlocks"`

	Grid          world.Grid                `json:"grid"`
	Facilities    map[world.Coord]*Facility `json:"facilities"`
	Visitors      []Visitor                 `json:"visitors"`
	NextVisitorID VisitorID                 `json:"next_visitor_id"`

	Event        EventState   `json:"event"`
	MissionIndex int          `json:"mission_index"`
	Research     *ResearchJob `json:"research,omitempty"`

	Ledger Ledger `json:"ledger"`
	News   []News `json:"news"`

	Rules Rules `json:"rules"`
}

// NewState creates a fresh park with the starting path, funds and unlocks.
func NewState(rules Rules) *State {
	s := &State{
		Money:          StartMoney,
		EntryFee:       StartEntryFee,
		GameMinutes:    StartMinutes,
		Rating:         StartRating,
		Unlocked:       make(map[catalog.BuildingID]bool),
		MissionUnlocks: make(map[catalog.BuildingID]bool),
		Grid:           world.NewGrid(),
		Facilities:     make(map[world.Coord]*Facility),
		NextVisitorID:  1,
		Event:          NeutralEvent(),
		Rules:          rules,
	}
	for _, id := range catalog.StarterUnlocks() {
		s.Unlocked[id] = true
	}
	s.EntryFee = clamp(s.EntryFee, rules.MinEntryFee, rules.MaxEntryFee)
	return s
}

// Clone returns a deep copy sharing no mutable memory with s.
func (s *State) Clone() *State {
	next := *s

	next.Unlocked = maps.Clone(s.Unlocked)
	next.MissionUnlocks = maps.Clone(s.MissionUnlocks)

	if s.Facilities != nil {
		next.Facilities = make(map[world.Coord]*Facility, len(s.Facilities))
		for c, f := range s.Facilities {
			fc := *f
			next.Facilities[c] = &fc
		}
	}

	next.Visitors = slices.Clone(s.Visitors)
	next.News = slices.Clone(s.News)
	next.Rules.Missions = slices.Clone(s.Rules.Missions)

	if s.Research != nil {
		job := *s.Research
		next.Research = &job
	}
	return &next
}

// IsUnlocked reports whether id may be placed.
func (s *State) IsUnlocked(id catalog.BuildingID) bool {
	b, ok := catalog.Lookup(id)
	if !ok {
		return false
	}
	if !b.Locked() {
		return true
	}
	return s.Unlocked[id] || s.MissionUnlocks[id]
}

// operational returns the facility at c and its catalog entry if it exists
// and is not broken.
func (s *State) operational(c world.Coord) (*Facility, catalog.Building, bool) {
	if !c.InBounds() || s.Grid.Tiles[c.X][c.Y].Kind != world.KindFacility {
		return nil, catalog.Building{}, false
	}
	f, ok := s.Facilities[c]
	if !ok || f.Broken {
		return nil, catalog.Building{}, false
	}
	b, ok := catalog.Lookup(f.Building)
	if !ok {
		return nil, catalog.Building{}, false
	}
	return f, b, true
}

func (s *State) addNews(category, format string, args ...any) {
	s.News = append(s.News, News{
		Tick:        s.Tick,
		Category:    category,
		Description: fmt.Sprintf(format, args...),
	})
	if len(s.News) > maxNews {
		s.News = append([]News(nil), s.News[len(s.News)-maxNews:]...)
	}
}

// ClockLabel formats minutes since midnight as "HH:MM".
func ClockLabel(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
