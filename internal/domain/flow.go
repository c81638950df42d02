package domain

import "time"

type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

type Step string

const (
	StepChooseType  Step = "choose_type"
	StepPerson      Step = "person"
	StepAmount      Step = "amount"
	StepDescription Step = "description"
	StepConfirm     Step = "confirm"
)

// AllSteps lists every dialogue step in presentation order.
var AllSteps = []Step{StepChooseType, StepPerson, StepAmount, StepDescription, StepConfirm}

func (s Step) Valid() bool {
	for _, v := range AllSteps {
		if v == s {
			return true
		}
	}
	return false
}

// Flow is the persisted state of one user's guided dialogue.
type Flow struct {
	Mode        Mode      `json:"mode"`
	TargetID    int64     `json:"target_id,omitempty"`
	Step        Step      `json:"step"`
	Direction   Direction `json:"direction,omitempty"`
	Person      string    `json:"person,omitempty"`
	Amount      *int64    `json:"amount,omitempty"`
	Description string    `json:"description,omitempty"`
}

// StoredFlow is a flow together with the row metadata it was persisted with.
type StoredFlow struct {
	Flow      Flow
	ChannelID int64
	UpdatedAt time.Time
}

// Expired reports whether the flow was last touched more than ttl before now.
func (s *StoredFlow) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}
