package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expenses_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	minListLimit = 1
	maxListLimit = 50
)

// ErrDuplicateWithoutRecord means an insert hit a source-event unique index but the
// matching row belongs to no record of this user.
var ErrDuplicateWithoutRecord = errors.New("duplicate source event but no matching record")

const txColumns = `user_scoped_id, user_id, amount, direction, COALESCE(person, ''), description, raw, created_at`

type TransactionRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db, now: time.Now}
}

// WithClock overrides the creation timestamp source.
func (r *TransactionRepository) WithClock(now func() time.Time) *TransactionRepository {
	r.now = now
	return r
}

// Insert allocates the next user-scoped id and stores p. When keys match a record that
// already exists, the existing id is returned with duplicate set and nothing is written.
// Allocation and insert share one database transaction.
func (r *TransactionRepository) Insert(ctx context.Context, userID int64, p domain.Proposal, keys domain.DedupKeys) (id int64, duplicate bool, err error) {
	p = p.Normalize()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var allocated int64
	err = tx.QueryRow(ctx,
		`INSERT INTO user_counters (user_id, next_id)
		 VALUES ($1, 2)
		 ON CONFLICT (user_id) DO UPDATE SET next_id = user_counters.next_id + 1
		 RETURNING next_id - 1`,
		userID,
	).Scan(&allocated)
	if err != nil {
		return 0, false, fmt.Errorf("allocate id: %w", err)
	}

	var chatID, messageID *int64
	if keys.HasChatMessage() {
		chatID, messageID = keys.ChatID, keys.MessageID
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO transactions
		   (user_id, user_scoped_id, source_update_id, source_chat_id, source_message_id,
		    amount, direction, person, description, raw, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT DO NOTHING
		 RETURNING user_scoped_id`,
		userID, allocated, keys.UpdateID, chatID, messageID,
		p.Amount, string(p.Direction), nullIfEmpty(p.Person), p.Description, p.Raw, r.now().UTC(),
	).Scan(&id)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return 0, false, err
		}
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("insert transaction: %w", err)
	}

	id, err = findBySource(ctx, tx, userID, keys)
	if err != nil {
		return 0, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func findBySource(ctx context.Context, tx pgx.Tx, userID int64, keys domain.DedupKeys) (int64, error) {
	var id int64
	if keys.UpdateID != nil {
		err := tx.QueryRow(ctx,
			`SELECT user_scoped_id FROM transactions WHERE source_update_id = $1 AND user_id = $2`,
			*keys.UpdateID, userID,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	}
	if keys.HasChatMessage() {
		err := tx.QueryRow(ctx,
			`SELECT user_scoped_id FROM transactions
			 WHERE source_chat_id = $1 AND source_message_id = $2 AND user_id = $3`,
			*keys.ChatID, *keys.MessageID, userID,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	}
	return 0, ErrDuplicateWithoutRecord
}

// Update overwrites the fields of one of the user's records. It reports false when the
// record does not exist or is not the user's.
func (r *TransactionRepository) Update(ctx context.Context, userID, id int64, p domain.Proposal) (bool, error) {
	p = p.Normalize()
	tag, err := r.db.Exec(ctx,
		`UPDATE transactions
		 SET amount = $1, direction = $2, person = $3, description = $4, raw = $5
		 WHERE user_scoped_id = $6 AND user_id = $7`,
		p.Amount, string(p.Direction), nullIfEmpty(p.Person), p.Description, p.Raw, id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM transactions WHERE user_scoped_id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransactionRepository) Get(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE user_id = $1 AND user_scoped_id = $2`,
		userID, id,
	)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return tx, err
}

// ListRecent returns the newest records first. limit is clamped to [1, 50].
func (r *TransactionRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	limit = max(minListLimit, min(limit, maxListLimit))

	rows, err := r.db.Query(ctx,
		`SELECT `+txColumns+`
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, user_scoped_id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// ListRange returns records created in [start, end), newest first.
func (r *TransactionRepository) ListRange(ctx context.Context, userID int64, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+txColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at DESC, user_scoped_id DESC`,
		userID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		direction string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &direction, &tx.Person, &tx.Description, &tx.Raw, &tx.CreatedAt); err != nil {
		return nil, err
	}
	tx.Direction = domain.Direction(direction)
	tx.CreatedAt = tx.CreatedAt.UTC()
	return &tx, nil
}

func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
