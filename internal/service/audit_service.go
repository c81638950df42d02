package service

import (
	"context"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/logger"
)

// AuditService appends ledger changes to the audit trail. A failed write is logged
// and never fails the ledger operation that caused it.
type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log writes one entry. A nil service is a no-op.
func (s *AuditService) Log(ctx context.Context, entry *domain.AuditLog) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.FromContext(ctx).Error("failed to write audit entry",
			"error", err, "action", entry.Action, "record_id", entry.RecordID)
	}
}

func ledgerEntry(userID, recordID int64, action string, details map[string]any) *domain.AuditLog {
	return &domain.AuditLog{
		UserID:   userID,
		RecordID: recordID,
		Action:   action,
		Category: domain.AuditCategoryLedger,
		Details:  details,
	}
}

func proposalDetails(p domain.Proposal) map[string]any {
	details := map[string]any{
		"amount":    p.Amount,
		"direction": string(p.Direction),
	}
	if p.Person != "" {
		details["person"] = p.Person
	}
	return details
}

// LogCreate records a new ledger entry and whether it came from free text or the dialogue.
func (s *AuditService) LogCreate(ctx context.Context, userID, id int64, p domain.Proposal) {
	details := proposalDetails(p)
	details["source"] = "text"
	if p.Raw == domain.RawGuided {
		details["source"] = domain.RawGuided
	}
	s.Log(ctx, ledgerEntry(userID, id, domain.AuditActionCreate, details))
}

func (s *AuditService) LogUpdate(ctx context.Context, userID, id int64, p domain.Proposal) {
	s.Log(ctx, ledgerEntry(userID, id, domain.AuditActionUpdate, proposalDetails(p)))
}

// LogDelete records a removal; action tells /undo apart from an explicit delete.
func (s *AuditService) LogDelete(ctx context.Context, userID, id int64, action string) {
	s.Log(ctx, ledgerEntry(userID, id, action, nil))
}

// LogWipe records that every table was emptied by an operator.
func (s *AuditService) LogWipe(ctx context.Context, tables []string) {
	s.Log(ctx, &domain.AuditLog{
		Action:   domain.AuditActionWipeAll,
		Category: domain.AuditCategoryAdmin,
		Details:  map[string]any{"tables": tables},
	})
}
