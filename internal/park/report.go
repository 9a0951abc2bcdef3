package park

import (
	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/world"
)

// FacilityInfo is a facility joined with its catalog entry and command prices.
type FacilityInfo struct {
	Pos         world.Coord        `json:"pos"`
	Building    catalog.BuildingID `json:"building"`
	Name        string             `json:"name"`
	Category    catalog.Category   `json:"category"`
	Level       int                `json:"level"`
	Broken      bool               `json:"broken"`
	Users       int64              `json:"users"`
	Revenue     int64              `json:"revenue"`
	UpgradeCost int64              `json:"upgrade_cost"`
	RepairFee   int64              `json:"repair_fee"`
}

// MissionStatus describes the current mission head.
type MissionStatus struct {
	Index    int     `json:"index"`
	Total    int     `json:"total"`
	Mission  Mission `json:"mission"`
	Progress int64   `json:"progress"`
}

// ResearchStatus describes the in-flight job.
type ResearchStatus struct {
	Building         catalog.BuildingID `json:"building"`
	MinutesRemaining int                `json:"minutes_remaining"`
	Progress         float64            `json:"progress"` // 0–1
}

// Report is the read-only view renderers and the API consume.
type Report struct {
	Tick            uint64               `json:"tick"`
	Clock           string               `json:"clock"`
	GameMinutes     int                  `json:"game_minutes"`
	Money           int64                `json:"money"`
	EntryFee        int64                `json:"entry_fee"`
	Rating          int                  `json:"rating"`
	Stars           int                  `json:"stars"`
	Visitors        int                  `json:"visitors"`
	MaxVisitors     int                  `json:"max_visitors"`
	AvgSatisfaction float64              `json:"avg_satisfaction"`
	Attractiveness  float64              `json:"attractiveness"`
	Event           EventState           `json:"event"`
	Mission         *MissionStatus       `json:"mission,omitempty"`
	Research        *ResearchStatus      `json:"research,omitempty"`
	Ledger          Ledger               `json:"ledger"`
	Facilities      []FacilityInfo       `json:"facilities"`
	Unlocked        []catalog.BuildingID `json:"unlocked"`
}

// Report builds the read view. It does not modify s.
func (s *State) Report() Report {
	attr := s.Attractiveness()
	r := Report{
		Tick:            s.Tick,
		Clock:           ClockLabel(s.GameMinutes),
		GameMinutes:     s.GameMinutes,
		Money:           s.Money,
		EntryFee:        s.EntryFee,
		Rating:          s.Rating,
		Stars:           s.Rules.Rating.Stars(attr),
		Visitors:        len(s.Visitors),
		MaxVisitors:     s.MaxVisitors,
		AvgSatisfaction: s.AverageSatisfaction(),
		Attractiveness:  attr,
		Event:           s.Event,
		Ledger:          s.Ledger,
		Facilities:      s.FacilityList(),
	}
	if m := s.CurrentMission(); m != nil {
		r.Mission = &MissionStatus{
			Index:    s.MissionIndex,
			Total:    len(s.Rules.Missions),
			Mission:  *m,
			Progress: m.Value(s),
		}
	}
	if s.Research != nil {
		r.Research = &ResearchStatus{
			Building:         s.Research.Building,
			MinutesRemaining: s.Research.MinutesRemaining,
			Progress:         s.ResearchProgress(),
		}
	}
	for _, b := range catalog.All() {
		if b.Locked() && s.IsUnlocked(b.ID) {
			r.Unlocked = append(r.Unlocked, b.ID)
		}
	}
	return r
}

// FacilityList returns every facility in x-major order.
func (s *State) FacilityList() []FacilityInfo {
	var out []FacilityInfo
	for _, c := range s.Grid.FacilityTiles() {
		f, ok := s.Facilities[c]
		if !ok {
			continue
		}
		b, _ := catalog.Lookup(f.Building)
		out = append(out, FacilityInfo{
			Pos:         c,
			Building:    f.Building,
			Name:        b.Name,
			Category:    b.Category,
			Level:       f.Level,
			Broken:      f.Broken,
			Users:       f.Users,
			Revenue:     f.Revenue,
			UpgradeCost: UpgradeCost(b, f.Level),
			RepairFee:   RepairFee(b),
		})
	}
	return out
}
