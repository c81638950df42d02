package domain

import "time"

type PersonTotal struct {
	Person string `json:"person"`
	Total  int64  `json:"total"`
}

type DayTotal struct {
	Day   time.Time `json:"day"`
	Total int64     `json:"total"`
}

// Summary aggregates one user's records over the half-open window [Start, End).
type Summary struct {
	Start             time.Time           `json:"start"`
	End               time.Time           `json:"end"`
	Count             int64               `json:"count"`
	TotalsByDirection map[Direction]int64 `json:"totals_by_direction"`
	TotalsByPerson    []PersonTotal       `json:"totals_by_person"`
	DailyTotals       []DayTotal          `json:"daily_totals"`
}

// Net is what the user is owed minus what the user owes.
func (s *Summary) Net() int64 {
	return s.TotalsByDirection[DirectionReceivable] - s.TotalsByDirection[DirectionPayable]
}
