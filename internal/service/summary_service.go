package service

import (
	"context"
	"time"

	"expenses_bot/internal/domain"
)

const (
	WeekDays  = 7
	MonthDays = 30
)

// SummaryService computes rolling-window summaries.
type SummaryService struct {
	store SummaryStore
	now   func() time.Time
}

func NewSummaryService(store SummaryStore) *SummaryService {
	return &SummaryService{store: store, now: time.Now}
}

func (s *SummaryService) WithClock(now func() time.Time) *SummaryService {
	s.now = now
	return s
}

// RollingWindow covers the last days calendar days in UTC, including today up to now.
func RollingWindow(now time.Time, days int) (start, end time.Time) {
	end = now.UTC()
	first := end.AddDate(0, 0, -(days - 1))
	start = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	return start, end
}

func (s *SummaryService) Week(ctx context.Context, userID int64) (*domain.Summary, error) {
	start, end := RollingWindow(s.now(), WeekDays)
	return s.store.Summary(ctx, userID, start, end)
}

func (s *SummaryService) Month(ctx context.Context, userID int64) (*domain.Summary, error) {
	start, end := RollingWindow(s.now(), MonthDays)
	return s.store.Summary(ctx, userID, start, end)
}
