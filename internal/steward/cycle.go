package steward

import (
	"log/slog"
)

// Steward ties observation, planning and action together.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory
	Policy   Policy
}

// RunCycle executes one observe, decide, act cycle and returns its record.
func (s *Steward) RunCycle() (*CycleRecord, error) {
	slog.Info("steward cycle starting")

	snap, err := s.Observer.Observe()
	if err != nil {
		return nil, err
	}
	health := Triage(snap)
	slog.Info("observation complete",
		"sim_time", snap.Status.SimTime,
		"money", snap.Status.Money,
		"rating", snap.Status.Rating,
		"broken", health.Broken,
		"crisis", health.CrisisLevel,
	)

	rec := CycleRecord{
		Tick:        snap.Status.Tick,
		Money:       snap.Status.Money,
		Rating:      snap.Status.Rating,
		CrisisLevel: health.CrisisLevel,
	}
	if snap.Status.Paused {
		slog.Info("park paused, steward cycle skipped")
		s.Memory.Record(rec)
		s.Memory.Save()
		return &rec, nil
	}

	for _, act := range Decide(snap, health, s.Memory, s.Policy) {
		if _, err := s.Actor.Act(act); err != nil {
			slog.Warn("steward action failed", "kind", act.Kind, "error", err)
			rec.Failed++
			continue
		}
		slog.Info("steward action executed", "kind", act.Kind, "rationale", act.Rationale)
		rec.Actions = append(rec.Actions, act)
	}

	if len(rec.Actions) == 0 && rec.Failed == 0 {
		slog.Info("steward cycle complete, nothing to do")
	}
	s.Memory.Record(rec)
	s.Memory.Save()
	return &rec, nil
}
