package park

import "github.com/talgya/mini-park/internal/catalog"

// Settle computes this tick's ledger from the current facilities and
// population without touching the treasury.
func (s *State) Settle() Ledger {
	var l Ledger
	for _, c := range s.Grid.FacilityTiles() {
		f, ok := s.Facilities[c]
		if !ok {
			continue
		}
		b, ok := catalog.Lookup(f.Building)
		if !ok {
			continue
		}
		lvl := float64(f.Level - 1)
		l.Maintenance += roundHalfUp(float64(b.Maintenance) * (1 + lvl*0.2))
		if !f.Broken {
			l.ShopIncome += roundHalfUp(float64(b.ShopIncome) * (1 + lvl*0.25))
		}
	}

	visitors := float64(len(s.Visitors))
	l.EntranceIncome = roundHalfUp(visitors * float64(s.EntryFee) * 0.2)
	l.ActivityIncome = roundHalfUp(visitors*1.3 + s.RideFun()*0.2*s.Event.VisitorMultiplier)

	l.Income = l.ShopIncome + l.EntranceIncome + l.ActivityIncome
	l.Expense = l.Maintenance
	return l
}

// settleEconomy applies the tick's net result to the treasury and keeps the
// ledger for reporting. The treasury has no floor.
func (s *State) settleEconomy() {
	s.Ledger = s.Settle()
	s.Money += s.Ledger.Income - s.Ledger.Expense
}
