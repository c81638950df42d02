package domain

import "time"

// AuditLog is one entry in the trail of changes to a user's ledger. RecordID is the
// user-scoped record id and zero for entries not tied to a record.
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	RecordID  int64          `db:"record_id" json:"record_id,omitempty"`
	Action    string         `db:"action" json:"action"`
	Category  string         `db:"category" json:"category"`
	Details   map[string]any `db:"details" json:"details"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryLedger = "ledger"
	AuditCategoryAdmin  = "admin"
)

const (
	AuditActionCreate = "tx_create"
	AuditActionUpdate = "tx_update"
	AuditActionDelete = "tx_delete"
	AuditActionUndo   = "tx_undo"

	// AuditActionWipeAll is written by the reset tool after it empties every table.
	AuditActionWipeAll = "wipe_all"
)
