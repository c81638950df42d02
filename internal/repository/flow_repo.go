package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"expenses_bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCorruptFlow is returned when a stored dialogue cannot be decoded.
var ErrCorruptFlow = errors.New("stored flow is corrupt")

// FlowRepository persists at most one dialogue per user.
type FlowRepository struct {
	db *pgxpool.Pool
}

func NewFlowRepository(db *pgxpool.Pool) *FlowRepository {
	return &FlowRepository{db: db}
}

// Get returns the user's stored flow, or nil when there is none.
func (r *FlowRepository) Get(ctx context.Context, userID int64) (*domain.StoredFlow, error) {
	var (
		stored  domain.StoredFlow
		payload []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT channel_id, flow_json, updated_at FROM user_flows WHERE user_id = $1`,
		userID,
	).Scan(&stored.ChannelID, &payload, &stored.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, &stored.Flow); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFlow, err)
	}
	return &stored, nil
}

// Save overwrites the user's flow and refreshes its timestamp.
func (r *FlowRepository) Save(ctx context.Context, userID, channelID int64, f *domain.Flow) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO user_flows (user_id, channel_id, flow_json, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET channel_id = EXCLUDED.channel_id,
		     flow_json = EXCLUDED.flow_json,
		     updated_at = EXCLUDED.updated_at`,
		userID, channelID, payload,
	)
	return err
}

// Delete removes the user's flow and reports whether one existed.
func (r *FlowRepository) Delete(ctx context.Context, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_flows WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
