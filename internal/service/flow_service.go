package service

import (
	"context"
	"errors"
	"time"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/logger"
	"expenses_bot/internal/repository"
)

const DefaultFlowTTL = 24 * time.Hour

// FlowService loads and stores the active dialogue of a user. A dialogue is only
// resumable from the channel it was started in and within its TTL.
type FlowService struct {
	store FlowStore
	ttl   time.Duration
	now   func() time.Time
}

func NewFlowService(store FlowStore, ttl time.Duration) *FlowService {
	if ttl <= 0 {
		ttl = DefaultFlowTTL
	}
	return &FlowService{store: store, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source used for expiry.
func (s *FlowService) WithClock(now func() time.Time) *FlowService {
	s.now = now
	return s
}

// Load returns the user's active flow for channelID, or nil. Flows bound to another
// channel, expired or unreadable flows are deleted and reported as absent.
func (s *FlowService) Load(ctx context.Context, userID, channelID int64) (*domain.Flow, error) {
	stored, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrCorruptFlow) {
		logger.FromContext(ctx).Warn("discarding unreadable flow", "error", err)
		return nil, s.discard(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	switch {
	case stored.ChannelID != channelID:
		logger.FromContext(ctx).Debug("discarding flow from another channel", "bound_channel", stored.ChannelID)
		return nil, s.discard(ctx, userID)
	case stored.Expired(s.now(), s.ttl):
		logger.FromContext(ctx).Debug("discarding expired flow", "updated_at", stored.UpdatedAt)
		return nil, s.discard(ctx, userID)
	case !stored.Flow.Step.Valid():
		logger.FromContext(ctx).Warn("discarding flow with unknown step", "step", stored.Flow.Step)
		return nil, s.discard(ctx, userID)
	}

	f := stored.Flow
	return &f, nil
}

func (s *FlowService) discard(ctx context.Context, userID int64) error {
	_, err := s.store.Delete(ctx, userID)
	return err
}

func (s *FlowService) Save(ctx context.Context, userID, channelID int64, f *domain.Flow) error {
	return s.store.Save(ctx, userID, channelID, f)
}

// Clear deletes the user's flow and reports whether one existed.
func (s *FlowService) Clear(ctx context.Context, userID int64) (bool, error) {
	return s.store.Delete(ctx, userID)
}
