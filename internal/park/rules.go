package park

import (
	"math"
	"slices"

	"github.com/talgya/mini-park/internal/catalog"
)

// BreakdownPolicy decides how many facilities may break in one tick.
type BreakdownPolicy string

const (
	// BreakdownCapOne stops rolling after the first new breakdown in a tick.
	BreakdownCapOne BreakdownPolicy = "cap-one"
	// BreakdownIndependent lets every facility break independently.
	BreakdownIndependent BreakdownPolicy = "independent"
)

// RatingMode selects the baseline term of the rating formula.
type RatingMode string

const (
	RatingSimple   RatingMode = "simple"   // Flat baseline
	RatingExtended RatingMode = "extended" // Star-tier baseline derived from attractiveness
)

// RatingProfile parameterizes the rating baseline.
type RatingProfile struct {
	Mode         RatingMode `json:"mode" yaml:"mode"`
	FlatBaseline float64    `json:"flat_baseline" yaml:"flat_baseline"`
	TierBase     float64    `json:"tier_base" yaml:"tier_base"`
	TierBonus    float64    `json:"tier_bonus" yaml:"tier_bonus"` // Per star
	TierWidth    float64    `json:"tier_width" yaml:"tier_width"` // Attractiveness per star
	MaxStars     int        `json:"max_stars" yaml:"max_stars"`
}

// SimpleRating is the flat +20 baseline profile.
func SimpleRating() RatingProfile {
	return RatingProfile{Mode: RatingSimple, FlatBaseline: 20}
}

// ExtendedRating is the star-tier profile: up to five stars, one per 25
// attractiveness, each worth 3 points on top of a base of 5.
func ExtendedRating() RatingProfile {
	return RatingProfile{
		Mode:      RatingExtended,
		TierBase:  5,
		TierBonus: 3,
		TierWidth: 25,
		MaxStars:  5,
	}
}

// Stars returns the star tier for an attractiveness score. The simple profile
// has no tiers and always returns 0.
func (p RatingProfile) Stars(attractiveness float64) int {
	if p.Mode != RatingExtended || p.TierWidth <= 0 || attractiveness <= 0 {
		return 0
	}
	stars := int(math.Floor(attractiveness / p.TierWidth))
	return clamp(stars, 0, p.MaxStars)
}

// Baseline returns the additive baseline term.
func (p RatingProfile) Baseline(attractiveness float64) float64 {
	switch p.Mode {
	case RatingExtended:
		return p.TierBase + float64(p.Stars(attractiveness))*p.TierBonus
	default:
		return p.FlatBaseline
	}
}

// Rules holds the tunables that vary between rulesets.
type Rules struct {
	Rating        RatingProfile   `json:"rating"`
	Breakdown     BreakdownPolicy `json:"breakdown"`
	MinEntryFee   int64           `json:"min_entry_fee"`
	MaxEntryFee   int64           `json:"max_entry_fee"`
	PopulationCap int             `json:"population_cap"`
	Missions      []Mission       `json:"missions"`
}

// DefaultRules reproduces the classic single-park ruleset.
func DefaultRules() Rules {
	return Rules{
		Rating:        SimpleRating(),
		Breakdown:     BreakdownCapOne,
		MinEntryFee:   0,
		MaxEntryFee:   500,
		PopulationCap: 260,
		Missions:      DefaultMissions(),
	}
}

// DefaultMissions is the standard goal sequence.
func DefaultMissions() []Mission {
	return []Mission{
		{Title: "Draw a crowd", Metric: MetricMaxVisitors, Target: 20, RewardMoney: 1500},
		{Title: "Build a war chest", Metric: MetricMoney, Target: 15000, RewardMoney: 2000, RewardUnlock: catalog.Garden},
		{Title: "Earn a reputation", Metric: MetricRating, Target: 70, RewardMoney: 3000},
		{Title: "Packed park", Metric: MetricMaxVisitors, Target: 100, RewardMoney: 5000},
	}
}

// ApplyRules replaces the ruleset of a running park, as on a restart with a
// changed config. The entry fee is re-clamped to the new bounds. A mission
// index past the end of a shorter list simply leaves no mission active.
func (s *State) ApplyRules(r Rules) {
	s.Rules = r
	s.Rules.Missions = slices.Clone(r.Missions)
	s.EntryFee = clamp(s.EntryFee, r.MinEntryFee, r.MaxEntryFee)
}
