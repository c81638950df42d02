package render

import (
	"fmt"
	"strings"

	"expenses_bot/internal/domain"
)

func flowFields(f *domain.Flow) []string {
	person := "-"
	if f.Direction.NeedsPerson() {
		person = orDash(f.Person)
	}
	amount := "-"
	if f.Amount != nil {
		amount = Amount(*f.Amount)
	}
	return []string{
		"Type: " + DirectionLabel(f.Direction),
		"Counterparty: " + person,
		"Amount: " + amount,
		"Description: " + orDash(f.Description),
	}
}

// Review is the confirmation text shown before a guided record is saved.
func Review(f *domain.Flow) string {
	return strings.Join(append([]string{"Review & confirm:"}, flowFields(f)...), "\n")
}

// Saved confirms a committed dialogue.
func Saved(f *domain.Flow, id int64) string {
	head := "✅ Saved."
	if f.Mode == domain.ModeEdit {
		head = "✅ Updated."
	}
	lines := append([]string{head, fmt.Sprintf("ID: #%d", id)}, flowFields(f)...)
	return strings.Join(lines, "\n")
}

// SavedProposal confirms a record created straight from free text.
func SavedProposal(p domain.Proposal, id int64) string {
	person := "-"
	if p.Direction.NeedsPerson() {
		person = orDash(p.Person)
	}
	return strings.Join([]string{
		"✅ Saved.",
		fmt.Sprintf("ID: #%d", id),
		"Type: " + DirectionLabel(p.Direction),
		"Counterparty: " + person,
		"Amount: " + Amount(p.Amount),
		"Description: " + orDash(p.Description),
	}, "\n")
}
