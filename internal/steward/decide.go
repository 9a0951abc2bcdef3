package steward

import (
	"cmp"
	"fmt"
	"slices"
)

// ActionKind names an upkeep command.
type ActionKind string

const (
	ActionRepair   ActionKind = "repair"
	ActionEntryFee ActionKind = "entry-fee"
)

// Action is one planned command.
type Action struct {
	Kind      ActionKind `json:"kind"`
	Pos       Coord      `json:"pos"`
	Fee       int64      `json:"fee,omitempty"`
	Rationale string     `json:"rationale"`
}

// Policy tunes the steward's rules.
type Policy struct {
	Reserve    int64 // Money kept back from repairs
	MaxRepairs int   // Per cycle
	FeeStep    int64 // Entry fee adjustment per cycle
	MaxFee     int64
	HighRating int // Raise the fee at or above this rating
	LowRating  int // Lower the fee below this rating
}

// DefaultPolicy returns conservative defaults.
func DefaultPolicy() Policy {
	return Policy{
		Reserve:    500,
		MaxRepairs: 5,
		FeeStep:    25,
		MaxFee:     500,
		HighRating: 75,
		LowRating:  40,
	}
}

// Decide plans this cycle's actions. Rides are repaired before other
// facilities, busiest first, while money above the reserve lasts. The entry
// fee moves at most one step per cycle and never in two consecutive cycles.
func Decide(snap *ParkSnapshot, health *ParkHealth, mem *CycleMemory, p Policy) []Action {
	var actions []Action

	broken := slices.Clone(snap.Broken)
	slices.SortStableFunc(broken, func(a, b FacilityInfo) int {
		if (a.Category == "ride") != (b.Category == "ride") {
			if a.Category == "ride" {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Users, a.Users)
	})

	budget := snap.Status.Money - p.Reserve
	for _, f := range broken {
		if len(actions) >= p.MaxRepairs {
			break
		}
		if f.RepairFee > budget {
			continue
		}
		budget -= f.RepairFee
		actions = append(actions, Action{
			Kind:      ActionRepair,
			Pos:       f.Pos,
			Rationale: fmt.Sprintf("%s at %d,%d is broken", f.Name, f.Pos.X, f.Pos.Y),
		})
	}

	if mem.ChangedFeeLastCycle() || health.Money < 0 {
		return actions
	}
	fee := snap.Status.EntryFee
	switch {
	case health.Rating >= p.HighRating && fee < p.MaxFee:
		actions = append(actions, Action{
			Kind:      ActionEntryFee,
			Fee:       min(fee+p.FeeStep, p.MaxFee),
			Rationale: fmt.Sprintf("rating %d can bear a higher fee", health.Rating),
		})
	case health.Rating < p.LowRating && fee > 0:
		actions = append(actions, Action{
			Kind:      ActionEntryFee,
			Fee:       max(fee-p.FeeStep, 0),
			Rationale: fmt.Sprintf("rating %d is scaring visitors off", health.Rating),
		})
	}
	return actions
}
