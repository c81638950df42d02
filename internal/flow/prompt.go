package flow

import (
	"errors"
	"fmt"
	"strings"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/render"
)

func btn(text string, a Action) domain.Button {
	return render.Btn(text, a.Data())
}

var cancelRow = render.Row(btn("Cancel", Action{Kind: ActionCancel}))

func TypeKeyboard() *domain.Keyboard {
	return render.InlineKeyboard(
		render.Row(
			btn("Expense", Action{Kind: ActionType, Direction: domain.DirectionExpense}),
			btn("Payable", Action{Kind: ActionType, Direction: domain.DirectionPayable}),
			btn("Receivable", Action{Kind: ActionType, Direction: domain.DirectionReceivable}),
		),
		cancelRow,
	)
}

func CancelKeyboard() *domain.Keyboard {
	return render.InlineKeyboard(cancelRow)
}

func okCancelKeyboard(ok ActionKind) *domain.Keyboard {
	return render.InlineKeyboard(render.Row(btn("OK", Action{Kind: ok})), cancelRow)
}

func descriptionKeyboard(hasExisting bool) *domain.Keyboard {
	row := render.Row(btn("Skip", Action{Kind: ActionDescSkip}))
	if hasExisting {
		row = render.Row(
			btn("Keep", Action{Kind: ActionDescKeep}),
			btn("Skip", Action{Kind: ActionDescSkip}),
			btn("Clear", Action{Kind: ActionDescClear}),
		)
	}
	return render.InlineKeyboard(row, cancelRow)
}

func confirmKeyboard(f *domain.Flow) *domain.Keyboard {
	save := "Save"
	if f.Mode == domain.ModeEdit {
		save = "Update"
	}
	jump := func(label string, step domain.Step) domain.Button {
		return btn(label, Action{Kind: ActionJump, Target: step})
	}

	rows := [][]domain.Button{
		render.Row(btn(save, Action{Kind: ActionSave})),
		render.Row(jump("Change type", domain.StepChooseType), jump("Change amount", domain.StepAmount)),
	}
	if f.Direction.NeedsPerson() {
		rows = append(rows, render.Row(jump("Change counterparty", domain.StepPerson)))
	}
	rows = append(rows, render.Row(jump("Change description", domain.StepDescription), btn("Cancel", Action{Kind: ActionCancel})))
	return render.InlineKeyboard(rows...)
}

// stepLabel numbers the data-entry steps; debts have one extra step for the counterparty.
func stepLabel(f *domain.Flow, step domain.Step) string {
	order := []domain.Step{domain.StepChooseType, domain.StepAmount, domain.StepDescription}
	if f.Direction.NeedsPerson() {
		order = []domain.Step{domain.StepChooseType, domain.StepPerson, domain.StepAmount, domain.StepDescription}
	}
	for i, s := range order {
		if s == step {
			return fmt.Sprintf("Step %d/%d: ", i+1, len(order))
		}
	}
	return ""
}

// Prompt renders the question and keyboard for the flow's current step.
func Prompt(f *domain.Flow) (string, *domain.Keyboard) {
	switch f.Step {
	case domain.StepPerson:
		if suggested := strings.TrimSpace(f.Person); suggested != "" {
			return strings.Join([]string{
				stepLabel(f, domain.StepPerson) + "Who is the counterparty?",
				"Suggested: " + suggested,
				"If it's correct press OK, otherwise send the correct name.",
			}, "\n"), okCancelKeyboard(ActionPersonOK)
		}
		return strings.Join([]string{
			stepLabel(f, domain.StepPerson) + "Who is the counterparty?",
			"Send only the name (example: Ali).",
		}, "\n"), CancelKeyboard()

	case domain.StepAmount:
		if f.Amount != nil {
			return strings.Join([]string{
				stepLabel(f, domain.StepAmount) + "What's the amount?",
				"Suggested: " + render.Amount(*f.Amount),
				"If it's correct press OK, otherwise send only the number (example: 400 or 150000).",
			}, "\n"), okCancelKeyboard(ActionAmountOK)
		}
		return strings.Join([]string{
			stepLabel(f, domain.StepAmount) + "What's the amount?",
			"Send only the number (example: 400 or 150,000).",
		}, "\n"), CancelKeyboard()

	case domain.StepDescription:
		existing := strings.TrimSpace(f.Description)
		current := existing
		if current == "" {
			current = "-"
		}
		return strings.Join([]string{
			stepLabel(f, domain.StepDescription) + "Description (optional).",
			"Send a short description (example: Pizza), or use the buttons.",
			"Current: " + current,
		}, "\n"), descriptionKeyboard(existing != "")

	case domain.StepConfirm:
		if f.Direction.Valid() {
			return render.Review(f), confirmKeyboard(f)
		}
	}

	return stepLabel(f, domain.StepChooseType) + "Choose the type:", TypeKeyboard()
}

// Notice is the short user-facing explanation of a Result error.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidName):
		return "Invalid name format.\nSend a short name (no numbers). Example: Ali"
	case errors.Is(err, ErrInvalidAmount):
		return "Invalid amount format.\nSend only the number (no words). Examples:\n- 400\n- 400000\n- 150,000"
	case errors.Is(err, ErrPersonRequired):
		return "Counterparty is required."
	case errors.Is(err, ErrMissingFields):
		return "Missing required fields. Use /cancel."
	case errors.Is(err, ErrUseButtons):
		return "Please use the buttons below."
	case errors.Is(err, ErrUnknownStep):
		return "Let's start over."
	}
	return ""
}
