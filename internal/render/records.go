package render

import (
	"fmt"
	"strings"

	"expenses_bot/internal/domain"
)

const (
	RecordCallbackPrefix = "tx:"
	maxRecordButtons     = 10
)

// RecentRecords renders a newest-first list of a user's records as an aligned table.
func RecentRecords(txs []*domain.Transaction) string {
	if len(txs) == 0 {
		return "📒 No records yet."
	}

	ids := make([]string, len(txs))
	amounts := make([]string, len(txs))
	directions := make([]string, len(txs))
	idW, amtW, dirW := 2, 1, 4
	for i, tx := range txs {
		ids[i] = fmt.Sprintf("#%d", tx.ID)
		amounts[i] = Amount(tx.Amount)
		directions[i] = DirectionLabel(tx.Direction)
		idW = max(idW, len(ids[i]))
		amtW = max(amtW, len(amounts[i]))
		dirW = max(dirW, len(directions[i]))
	}

	lines := []string{"📒 Recent records (your ids):"}
	for i, tx := range txs {
		lines = append(lines, fmt.Sprintf("%-*s  %*s  %-*s  %s",
			idW, ids[i], amtW, amounts[i], dirW, directions[i], Timestamp(tx.CreatedAt)))

		var details []string
		for _, part := range []string{tx.Person, tx.Description} {
			if part = strings.TrimSpace(part); part != "" {
				details = append(details, part)
			}
		}
		if len(details) > 0 {
			lines = append(lines, "    "+strings.Join(details, " | "))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n ")
}

// RecordButtons attaches Edit/Delete buttons to at most limit records (capped at 10).
// The list limit travels in the delete callback so the refreshed list keeps its size.
func RecordButtons(txs []*domain.Transaction, limit int) *domain.Keyboard {
	if len(txs) == 0 {
		return nil
	}
	n := min(len(txs), min(max(limit, 1), maxRecordButtons))
	kb := &domain.Keyboard{Kind: domain.KeyboardInline}
	for _, tx := range txs[:n] {
		kb.Rows = append(kb.Rows, Row(
			Btn("✏️ Edit", fmt.Sprintf("%sedit:%d", RecordCallbackPrefix, tx.ID)),
			Btn("🗑 Delete", fmt.Sprintf("%sdel:%d:%d", RecordCallbackPrefix, tx.ID, limit)),
		))
	}
	return kb
}
