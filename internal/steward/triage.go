package steward

// ParkHealth holds derived diagnostic signals computed from a ParkSnapshot.
type ParkHealth struct {
	Broken          int   // Facilities waiting for repair
	RepairBill      int64 // Fees to fix all of them
	Money           int64
	Rating          int
	AvgSatisfaction float64
	LosingDays      int    // Consecutive recent days with expense above income
	CrisisLevel     string // "CRITICAL", "WARNING", "WATCH", "HEALTHY"
}

// Triage computes a ParkHealth from the snapshot's data.
func Triage(snap *ParkSnapshot) *ParkHealth {
	h := &ParkHealth{
		Broken:          len(snap.Broken),
		Money:           snap.Status.Money,
		Rating:          snap.Status.Rating,
		AvgSatisfaction: snap.Status.AvgSatisfaction,
	}
	for _, f := range snap.Broken {
		h.RepairBill += f.RepairFee
	}

	// History is chronological, so count back from the newest day.
	for i := len(snap.History) - 1; i >= 0; i-- {
		if snap.History[i].Expense <= snap.History[i].Income {
			break
		}
		h.LosingDays++
	}

	h.CrisisLevel = "HEALTHY"
	switch {
	case h.Money < 0:
		h.CrisisLevel = "CRITICAL"
	case h.LosingDays >= 3:
		h.CrisisLevel = "CRITICAL"
	case h.Broken > 0 && h.RepairBill > h.Money:
		h.CrisisLevel = "WARNING"
	case h.Rating < 30:
		h.CrisisLevel = "WARNING"
	case h.Broken > 0, h.AvgSatisfaction > 0 && h.AvgSatisfaction < 40:
		h.CrisisLevel = "WATCH"
	}
	return h
}
