package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-park/internal/park"
)

// DayStats aggregates the ticks of one game day.
type DayStats struct {
	Day           int   `json:"day" db:"day"`
	Ticks         int   `json:"ticks" db:"ticks"`
	Income        int64 `json:"income" db:"income"`
	Expense       int64 `json:"expense" db:"expense"`
	PeakVisitors  int   `json:"peak_visitors" db:"peak_visitors"`
	Breakdowns    int   `json:"breakdowns" db:"breakdowns"`
	ClosingMoney  int64 `json:"closing_money" db:"closing_money"`
	ClosingRating int   `json:"closing_rating" db:"closing_rating"`
}

// DayNumber returns the 1-based game day s is in. Parks open at
// park.StartMinutes on day 1.
func DayNumber(s *park.State) int {
	return int((uint64(park.StartMinutes)+s.Tick)/park.MinutesPerDay) + 1
}

// SimTime returns a human-readable game time such as "Day 3, 14:05".
func SimTime(s *park.State) string {
	return fmt.Sprintf("Day %d, %s", DayNumber(s), park.ClockLabel(s.GameMinutes))
}

func newDayStats(s *park.State) DayStats {
	return DayStats{
		Day:           DayNumber(s),
		PeakVisitors:  len(s.Visitors),
		ClosingMoney:  s.Money,
		ClosingRating: s.Rating,
	}
}

// observe folds one finished tick into the running totals.
func (d *DayStats) observe(s *park.State) {
	d.Ticks++
	d.Income += s.Ledger.Income
	d.Expense += s.Ledger.Expense
	d.PeakVisitors = max(d.PeakVisitors, len(s.Visitors))
	for i := len(s.News) - 1; i >= 0 && s.News[i].Tick == s.Tick; i-- {
		if s.News[i].Category == "breakdown" {
			d.Breakdowns++
		}
	}
	d.ClosingMoney = s.Money
	d.ClosingRating = s.Rating
}

// Net is the day's income minus its expense.
func (d DayStats) Net() int64 {
	return d.Income - d.Expense
}

// LogDailyReport writes the end-of-day summary and the day's notable news.
func LogDailyReport(s *park.State, day DayStats) {
	slog.Info("daily report",
		"day", day.Day,
		"time", SimTime(s),
		"money", humanize.Comma(s.Money),
		"income", humanize.Comma(day.Income),
		"expense", humanize.Comma(day.Expense),
		"net", humanize.Comma(day.Net()),
		"visitors", len(s.Visitors),
		"peak_visitors", day.PeakVisitors,
		"rating", s.Rating,
		"avg_satisfaction", fmt.Sprintf("%.1f", s.AverageSatisfaction()),
		"breakdowns", day.Breakdowns,
	)

	recentStart := 0
	if len(s.News) > 20 {
		recentStart = len(s.News) - 20
	}
	for _, n := range s.News[recentStart:] {
		if n.Category == "mission" || n.Category == "research" || n.Category == "event" {
			slog.Info("event", "category", n.Category, "description", n.Description)
		}
	}
}
