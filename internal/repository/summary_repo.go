package repository

import (
	"context"
	"time"

	"expenses_bot/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SummaryRepository struct {
	db *pgxpool.Pool
}

func NewSummaryRepository(db *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Summary aggregates the user's records created in [start, end). Every direction is
// present in the totals even when zero.
func (r *SummaryRepository) Summary(ctx context.Context, userID int64, start, end time.Time) (*domain.Summary, error) {
	start, end = start.UTC(), end.UTC()
	s := &domain.Summary{
		Start: start,
		End:   end,
		TotalsByDirection: map[domain.Direction]int64{
			domain.DirectionExpense:    0,
			domain.DirectionPayable:    0,
			domain.DirectionReceivable: 0,
		},
	}

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)::bigint
		 FROM transactions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`,
		userID, start, end,
	).Scan(&s.Count)
	if err != nil {
		return nil, err
	}

	if err := r.totalsByDirection(ctx, s, userID); err != nil {
		return nil, err
	}
	if err := r.totalsByPerson(ctx, s, userID); err != nil {
		return nil, err
	}
	if err := r.dailyTotals(ctx, s, userID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SummaryRepository) totalsByDirection(ctx context.Context, s *domain.Summary, userID int64) error {
	rows, err := r.db.Query(ctx,
		`SELECT direction, COALESCE(SUM(amount), 0)::bigint
		 FROM transactions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		 GROUP BY direction`,
		userID, s.Start, s.End,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			direction string
			total     int64
		)
		if err := rows.Scan(&direction, &total); err != nil {
			return err
		}
		s.TotalsByDirection[domain.Direction(direction)] = total
	}
	return rows.Err()
}

func (r *SummaryRepository) totalsByPerson(ctx context.Context, s *domain.Summary, userID int64) error {
	rows, err := r.db.Query(ctx,
		`SELECT person, COALESCE(SUM(amount), 0)::bigint AS total
		 FROM transactions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		   AND person IS NOT NULL AND btrim(person) <> ''
		 GROUP BY person
		 ORDER BY total DESC, person ASC`,
		userID, s.Start, s.End,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.PersonTotal
		if err := rows.Scan(&p.Person, &p.Total); err != nil {
			return err
		}
		s.TotalsByPerson = append(s.TotalsByPerson, p)
	}
	return rows.Err()
}

func (r *SummaryRepository) dailyTotals(ctx context.Context, s *domain.Summary, userID int64) error {
	rows, err := r.db.Query(ctx,
		`SELECT (created_at AT TIME ZONE 'UTC')::date AS day, COALESCE(SUM(amount), 0)::bigint
		 FROM transactions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		 GROUP BY day
		 ORDER BY day ASC`,
		userID, s.Start, s.End,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.DayTotal
		if err := rows.Scan(&d.Day, &d.Total); err != nil {
			return err
		}
		d.Day = d.Day.UTC()
		s.DailyTotals = append(s.DailyTotals, d)
	}
	return rows.Err()
}
