// Package flow is the guided add/edit dialogue. Transitions are pure: the caller
// loads a flow, applies one input and persists the result.
package flow

import (
	"strings"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/parser"
)

type Outcome int

const (
	// Advanced means the flow changed and must be persisted.
	Advanced Outcome = iota
	// Reprompt means the input did not apply to the current step; the flow is unchanged.
	Reprompt
	// Invalid means the input was rejected by validation; the flow is unchanged.
	Invalid
	// Commit means the flow is complete and should be saved.
	Commit
	// Cancelled means the user abandoned the flow.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case Reprompt:
		return "reprompt"
	case Invalid:
		return "invalid"
	case Commit:
		return "commit"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Input is either typed text or a pressed dialogue button.
type Input struct {
	Text   string
	Action *Action
}

func TextInput(text string) Input {
	return Input{Text: text}
}

func ActionInput(a Action) Input {
	return Input{Action: &a}
}

type Result struct {
	Outcome Outcome
	// Err explains an Invalid or Reprompt outcome, or carries a notice alongside Advanced.
	Err error
}

// Start opens a new add dialogue.
func Start() *domain.Flow {
	return &domain.Flow{Mode: domain.ModeAdd, Step: domain.StepChooseType}
}

// StartEdit opens an edit dialogue seeded with tx, starting at the description step.
func StartEdit(tx *domain.Transaction) *domain.Flow {
	amount := tx.Amount
	f := &domain.Flow{
		Mode:        domain.ModeEdit,
		TargetID:    tx.ID,
		Step:        domain.StepDescription,
		Direction:   tx.Direction,
		Amount:      &amount,
		Description: strings.TrimSpace(tx.Description),
	}
	if tx.Direction.NeedsPerson() {
		f.Person = strings.TrimSpace(tx.Person)
	}
	return f
}

// StartFromProposal opens an add dialogue pre-filled from a parsed message, parked at
// the first step that still needs input.
func StartFromProposal(p domain.Proposal) *domain.Flow {
	amount := p.Amount
	f := &domain.Flow{
		Mode:        domain.ModeAdd,
		Step:        domain.StepConfirm,
		Direction:   p.Direction,
		Person:      p.Person,
		Amount:      &amount,
		Description: p.Description,
	}
	if f.Direction.NeedsPerson() && strings.TrimSpace(f.Person) == "" {
		f.Step = domain.StepPerson
	}
	return f
}

type stepHandler func(f *domain.Flow, in Input) Result

var handlers = map[domain.Step]stepHandler{
	domain.StepChooseType:  applyChooseType,
	domain.StepPerson:      applyPerson,
	domain.StepAmount:      applyAmount,
	domain.StepDescription: applyDescription,
	domain.StepConfirm:     applyConfirm,
}

// Apply feeds one input into f. f is modified in place only for Advanced and Commit.
func Apply(f *domain.Flow, in Input) Result {
	if in.Action != nil && in.Action.Kind == ActionCancel {
		return Result{Outcome: Cancelled}
	}

	h, ok := handlers[f.Step]
	if !ok {
		f.Step = domain.StepChooseType
		return Result{Outcome: Advanced, Err: ErrUnknownStep}
	}
	return h(f, in)
}

func applyChooseType(f *domain.Flow, in Input) Result {
	if in.Action == nil || in.Action.Kind != ActionType {
		return Result{Outcome: Reprompt, Err: ErrUseButtons}
	}
	f.Direction = in.Action.Direction
	if f.Direction.NeedsPerson() {
		f.Step = domain.StepPerson
	} else {
		f.Person = ""
		f.Step = domain.StepAmount
	}
	return Result{Outcome: Advanced}
}

func applyPerson(f *domain.Flow, in Input) Result {
	if in.Action != nil {
		if in.Action.Kind != ActionPersonOK {
			return Result{Outcome: Reprompt}
		}
		if !f.Direction.NeedsPerson() {
			f.Step = domain.StepChooseType
			return Result{Outcome: Advanced}
		}
		if strings.TrimSpace(f.Person) == "" {
			return Result{Outcome: Reprompt, Err: ErrPersonRequired}
		}
		f.Step = domain.StepAmount
		return Result{Outcome: Advanced}
	}

	name, err := parser.CleanPerson(in.Text)
	if err != nil {
		return Result{Outcome: Invalid, Err: invalid("person", ErrInvalidName, err)}
	}
	f.Person = name
	f.Step = domain.StepAmount
	return Result{Outcome: Advanced}
}

func applyAmount(f *domain.Flow, in Input) Result {
	if in.Action != nil {
		if in.Action.Kind != ActionAmountOK || f.Amount == nil {
			return Result{Outcome: Reprompt}
		}
		f.Step = domain.StepDescription
		return Result{Outcome: Advanced}
	}

	amount, err := parser.ParseAmountOnly(in.Text)
	if err != nil {
		return Result{Outcome: Invalid, Err: invalid("amount", ErrInvalidAmount, err)}
	}
	f.Amount = &amount
	f.Step = domain.StepDescription
	return Result{Outcome: Advanced}
}

func applyDescription(f *domain.Flow, in Input) Result {
	if in.Action == nil {
		f.Description = parser.CleanDescription(in.Text)
		f.Step = domain.StepConfirm
		return Result{Outcome: Advanced}
	}

	switch in.Action.Kind {
	case ActionDescKeep:
		f.Description = strings.TrimSpace(f.Description)
	case ActionDescSkip, ActionDescClear:
		f.Description = ""
	default:
		return Result{Outcome: Reprompt}
	}
	f.Step = domain.StepConfirm
	return Result{Outcome: Advanced}
}

func applyConfirm(f *domain.Flow, in Input) Result {
	if in.Action == nil {
		return Result{Outcome: Reprompt, Err: ErrUseButtons}
	}

	switch in.Action.Kind {
	case ActionSave:
		return checkCommit(f)
	case ActionJump:
		if in.Action.Target == domain.StepPerson && !f.Direction.NeedsPerson() {
			return Result{Outcome: Reprompt}
		}
		f.Step = in.Action.Target
		return Result{Outcome: Advanced}
	}
	return Result{Outcome: Reprompt}
}

// checkCommit re-validates the collected fields right before saving. A debt without a
// counterparty goes back to the person step instead of committing.
func checkCommit(f *domain.Flow) Result {
	if !f.Direction.Valid() || f.Amount == nil {
		return Result{Outcome: Invalid, Err: invalid("flow", ErrMissingFields, nil)}
	}
	if f.Direction.NeedsPerson() && strings.TrimSpace(f.Person) == "" {
		f.Step = domain.StepPerson
		return Result{Outcome: Advanced, Err: ErrPersonRequired}
	}
	if f.Direction == domain.DirectionExpense {
		f.Person = ""
	}
	return Result{Outcome: Commit}
}

// Proposal converts a committed flow into the record to save.
func Proposal(f *domain.Flow) domain.Proposal {
	var amount int64
	if f.Amount != nil {
		amount = *f.Amount
	}
	return domain.Proposal{
		Amount:      amount,
		Direction:   f.Direction,
		Person:      f.Person,
		Description: f.Description,
		Raw:         domain.RawGuided,
	}.Normalize()
}
