package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a record does not exist or belongs to another user.
// Callers must not be able to tell the two cases apart.
var ErrNotFound = errors.New("not found")

// RawGuided marks records produced by the guided dialogue instead of free text.
const RawGuided = "guided"

type Direction string

const (
	DirectionExpense    Direction = "expense"
	DirectionPayable    Direction = "payable"    // I owe someone
	DirectionReceivable Direction = "receivable" // someone owes me
)

// ParseDirection accepts only the three known directions.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.TrimSpace(s)); d {
	case DirectionExpense, DirectionPayable, DirectionReceivable:
		return d, true
	}
	return "", false
}

func (d Direction) Valid() bool {
	_, ok := ParseDirection(string(d))
	return ok
}

// NeedsPerson reports whether a counterparty is mandatory for the direction.
func (d Direction) NeedsPerson() bool {
	return d == DirectionPayable || d == DirectionReceivable
}

type Transaction struct {
	ID          int64     `db:"user_scoped_id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Direction   Direction `db:"direction" json:"direction"`
	Person      string    `db:"person" json:"person,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	Raw         string    `db:"raw" json:"raw,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Proposal is a transaction that has not been committed yet. Both the parser and
// the guided dialogue produce one.
type Proposal struct {
	Amount      int64     `json:"amount"`
	Direction   Direction `json:"direction"`
	Person      string    `json:"person,omitempty"`
	Description string    `json:"description,omitempty"`
	Raw         string    `json:"raw"`
}

// Normalize trims free-text fields and drops the counterparty of an expense.
func (p Proposal) Normalize() Proposal {
	p.Person = strings.TrimSpace(p.Person)
	p.Description = strings.TrimSpace(p.Description)
	if p.Direction == DirectionExpense {
		p.Person = ""
	}
	return p
}

// DedupKeys identify the source event of an insert. Nil fields are not checked.
type DedupKeys struct {
	UpdateID  *int64
	ChatID    *int64
	MessageID *int64
}

// HasChatMessage reports whether the (chat, message) pair is fully set.
func (k DedupKeys) HasChatMessage() bool {
	return k.ChatID != nil && k.MessageID != nil
}
