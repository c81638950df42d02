package render

import (
	"fmt"
	"strings"
	"time"

	"expenses_bot/internal/domain"
)

const maxPeople = 10

// Summary renders s under title, listing at most maxDays trailing days.
func Summary(s *domain.Summary, title string, maxDays int) string {
	header := strings.TrimSpace(title)
	if header == "" {
		header = "Summary"
	}
	lines := []string{fmt.Sprintf("%s: %s", header, period(s))}

	if s.Count <= 0 {
		lines = append(lines, "No records in this period.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		"Records: "+Amount(s.Count),
		"",
		"Totals",
		"- Expense: "+Amount(s.TotalsByDirection[domain.DirectionExpense]),
		"- You owe: "+Amount(s.TotalsByDirection[domain.DirectionPayable]),
		"- Owed to you: "+Amount(s.TotalsByDirection[domain.DirectionReceivable]),
		"- Net: "+Amount(s.Net()),
	)

	if len(s.TotalsByPerson) > 0 {
		lines = append(lines, "", "Top people (all types)")
		shown := s.TotalsByPerson[:min(len(s.TotalsByPerson), maxPeople)]
		for i, p := range shown {
			lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, p.Person, Amount(p.Total)))
		}
		if rest := len(s.TotalsByPerson) - len(shown); rest > 0 {
			lines = append(lines, fmt.Sprintf("... and %d more", rest))
		}
	}

	if len(s.DailyTotals) > 0 && maxDays > 0 {
		byDay := make(map[string]int64, len(s.DailyTotals))
		for _, d := range s.DailyTotals {
			byDay[day(d.Day)] += d.Total
		}

		end := truncateDay(s.End)
		earliest := end.AddDate(0, 0, -(maxDays - 1))
		if start := truncateDay(s.Start); start.After(earliest) {
			earliest = start
		}

		var days []string
		for d := earliest; !d.After(end); d = d.AddDate(0, 0, 1) {
			days = append(days, day(d))
		}
		lines = append(lines, "", fmt.Sprintf("Last %d days (all types)", len(days)))
		for _, d := range days {
			lines = append(lines, fmt.Sprintf("- %s: %s", d, Amount(byDay[d])))
		}
	}

	return strings.Join(lines, "\n")
}

func period(s *domain.Summary) string {
	start, end := day(s.Start), day(s.End)
	if start == end {
		return start + " (UTC)"
	}
	return fmt.Sprintf("%s → %s (UTC)", start, end)
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
