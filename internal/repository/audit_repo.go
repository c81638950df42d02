package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"expenses_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultAuditLimit = 20

const auditColumns = `id, user_id, COALESCE(record_id, 0), action, category, details, created_at`

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends entry and fills in its id and timestamp.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}

	var recordID *int64
	if entry.RecordID > 0 {
		recordID = &entry.RecordID
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO audit_logs (user_id, record_id, action, category, details)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		entry.UserID, recordID, entry.Action, entry.Category, payload,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListForRecord returns the history of one of the user's records, oldest first.
func (r *AuditRepository) ListForRecord(ctx context.Context, userID, recordID int64) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+`
		 FROM audit_logs
		 WHERE user_id = $1 AND record_id = $2
		 ORDER BY id ASC`,
		userID, recordID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

// ListRecent returns the user's newest entries first.
func (r *AuditRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+`
		 FROM audit_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func scanAuditRows(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var entries []*domain.AuditLog
	for rows.Next() {
		var (
			e       domain.AuditLog
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.RecordID, &e.Action, &e.Category, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &e.Details); err != nil {
			return nil, fmt.Errorf("decode audit details %d: %w", e.ID, err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
