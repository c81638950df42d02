package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxPersonLength = 40

var (
	ErrEmptyName         = errors.New("name is empty")
	ErrNameMultiline     = errors.New("name must be a single line")
	ErrNameTooLong       = errors.New("name is too long")
	ErrNameHasDigits     = errors.New("name must not contain digits")
	ErrAmountFormat      = errors.New("amount must be a number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

var (
	amountOnlyRe = regexp.MustCompile(`^\s*([0-9][0-9,\s_.]{0,24})\s*$`)
	groupingRe   = regexp.MustCompile(`[,\s_.]`)
)

// CleanPerson validates a counterparty name typed by the user and collapses its whitespace.
func CleanPerson(text string) (string, error) {
	name := spaceRunRe.ReplaceAllString(strings.TrimSpace(text), " ")
	switch {
	case name == "":
		return "", ErrEmptyName
	case strings.ContainsAny(name, "\r\n"):
		return "", ErrNameMultiline
	case utf8.RuneCountInString(name) > MaxPersonLength:
		return "", ErrNameTooLong
	case strings.IndexFunc(name, unicode.IsDigit) >= 0:
		return "", ErrNameHasDigits
	}
	return name, nil
}

// ParseAmountOnly accepts a bare number, optionally grouped with commas, dots,
// underscores or spaces ("150,000", "150 000"). Persian digits are accepted.
func ParseAmountOnly(text string) (int64, error) {
	m := amountOnlyRe.FindStringSubmatch(strings.TrimSpace(NormalizeDigits(text)))
	if m == nil {
		return 0, ErrAmountFormat
	}
	digits := groupingRe.ReplaceAllString(m[1], "")
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, ErrAmountFormat
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrAmountFormat
	}
	if value <= 0 {
		return 0, ErrAmountNotPositive
	}
	return value, nil
}

// CleanDescription collapses whitespace and caps the text at MaxDescriptionLength characters.
func CleanDescription(text string) string {
	desc := spaceRunRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		desc = strings.TrimRightFunc(truncateRunes(desc, MaxDescriptionLength), unicode.IsSpace)
	}
	return desc
}
