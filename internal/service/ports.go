package service

import (
	"context"
	"time"

	"expenses_bot/internal/domain"
)

// TransactionStore is the persistence the ledger needs. Every method is scoped to one
// user and treats other users' records as missing.
type TransactionStore interface {
	Insert(ctx context.Context, userID int64, p domain.Proposal, keys domain.DedupKeys) (id int64, duplicate bool, err error)
	Update(ctx context.Context, userID, id int64, p domain.Proposal) (bool, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
	Get(ctx context.Context, userID, id int64) (*domain.Transaction, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error)
}

type FlowStore interface {
	Get(ctx context.Context, userID int64) (*domain.StoredFlow, error)
	Save(ctx context.Context, userID, channelID int64, f *domain.Flow) error
	Delete(ctx context.Context, userID int64) (bool, error)
}

type SummaryStore interface {
	Summary(ctx context.Context, userID int64, start, end time.Time) (*domain.Summary, error)
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// Replier delivers a reply on the channel the event came from.
type Replier interface {
	Reply(ctx context.Context, r domain.OutgoingReply) error
}
