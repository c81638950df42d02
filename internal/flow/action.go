package flow

import (
	"strings"

	"expenses_bot/internal/domain"
)

// CallbackPrefix namespaces dialogue buttons in callback data.
const CallbackPrefix = "add:"

type ActionKind string

const (
	ActionCancel    ActionKind = "cancel"
	ActionType      ActionKind = "type"
	ActionPersonOK  ActionKind = "person:ok"
	ActionAmountOK  ActionKind = "amount:ok"
	ActionDescKeep  ActionKind = "desc:keep"
	ActionDescSkip  ActionKind = "desc:skip"
	ActionDescClear ActionKind = "desc:clear"
	ActionSave      ActionKind = "confirm:save"
	ActionJump      ActionKind = "confirm:edit"
)

// Action is a decoded dialogue button.
type Action struct {
	Kind      ActionKind
	Direction domain.Direction // ActionType only
	Target    domain.Step      // ActionJump only
}

var jumpTargets = map[string]domain.Step{
	"type":        domain.StepChooseType,
	"person":      domain.StepPerson,
	"amount":      domain.StepAmount,
	"description": domain.StepDescription,
}

// IsAction reports whether callback data belongs to the dialogue.
func IsAction(data string) bool {
	return strings.HasPrefix(strings.TrimSpace(data), CallbackPrefix)
}

// ParseAction decodes callback data such as "add:type:expense" or "add:confirm:edit:amount".
func ParseAction(data string) (Action, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(data), CallbackPrefix)
	if !ok {
		return Action{}, false
	}

	switch kind := ActionKind(rest); kind {
	case ActionCancel, ActionPersonOK, ActionAmountOK, ActionDescKeep, ActionDescSkip, ActionDescClear, ActionSave:
		return Action{Kind: kind}, true
	}

	if d, ok := strings.CutPrefix(rest, string(ActionType)+":"); ok {
		direction, valid := domain.ParseDirection(d)
		if !valid {
			return Action{}, false
		}
		return Action{Kind: ActionType, Direction: direction}, true
	}
	if target, ok := strings.CutPrefix(rest, string(ActionJump)+":"); ok {
		step, valid := jumpTargets[target]
		if !valid {
			return Action{}, false
		}
		return Action{Kind: ActionJump, Target: step}, true
	}
	return Action{}, false
}

// Data encodes the action back into callback data.
func (a Action) Data() string {
	switch a.Kind {
	case ActionType:
		return CallbackPrefix + string(ActionType) + ":" + string(a.Direction)
	case ActionJump:
		for name, step := range jumpTargets {
			if step == a.Target {
				return CallbackPrefix + string(ActionJump) + ":" + name
			}
		}
	}
	return CallbackPrefix + string(a.Kind)
}
