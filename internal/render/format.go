// Package render builds the plain-text replies and keyboards shown to users.
package render

import (
	"strconv"
	"strings"
	"time"

	"expenses_bot/internal/domain"
)

var directionLabels = map[domain.Direction]string{
	domain.DirectionExpense:    "Expense",
	domain.DirectionPayable:    "Payable (you owe)",
	domain.DirectionReceivable: "Receivable (owed to you)",
}

// Amount formats n with comma thousands separators.
func Amount(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func DirectionLabel(d domain.Direction) string {
	if d == "" {
		return "-"
	}
	if label, ok := directionLabels[d]; ok {
		return label
	}
	return string(d)
}

func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}

func InlineKeyboard(rows ...[]domain.Button) *domain.Keyboard {
	return &domain.Keyboard{Kind: domain.KeyboardInline, Rows: rows}
}

func Row(buttons ...domain.Button) []domain.Button {
	return buttons
}

func Btn(text, data string) domain.Button {
	return domain.Button{Text: text, Data: data}
}
