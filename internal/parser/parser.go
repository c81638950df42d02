// Package parser turns colloquial Persian free text into a transaction proposal.
package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"expenses_bot/internal/domain"
)

var ErrNoAmountFound = errors.New("no amount found in message")

const (
	maxAmountDigits      = 12
	MaxDescriptionLength = 200
)

var (
	payeeRe      = regexp.MustCompile(`به\s+(\S+)`)
	sourceRe     = regexp.MustCompile(`از\s+(\S+)`)
	obligatedRe  = regexp.MustCompile(`(\S+)\s+باید`)
	indexPrefix  = regexp.MustCompile(`^\s*\d+\s*[.٫]\s*`)
	spaceRunRe   = regexp.MustCompile(`\s{2,}`)
	currencyList = []string{"تومن", "تومان", "ریال"}
)

var (
	reflexivePronouns = map[string]bool{"من": true, "خودم": true, "خودمون": true, "خودت": true, "خودتون": true}
	genericWords      = map[string]bool{"من": true, "یه": true, "یک": true, "این": true, "اون": true, "او": true, "ایشون": true}
)

// Parse extracts amount, direction, counterparty and description from text.
// Raw keeps the text exactly as received.
func Parse(text string) (domain.Proposal, error) {
	norm := NormalizeDigits(text)

	amount, ok := extractAmount(norm)
	if !ok {
		return domain.Proposal{}, ErrNoAmountFound
	}

	direction, _ := Classify(norm)
	p := domain.Proposal{
		Amount:      amount,
		Direction:   direction,
		Person:      extractPerson(norm, direction),
		Description: cleanDescription(norm, amount),
		Raw:         text,
	}
	return p.Normalize(), nil
}

type digitRun struct {
	start, end int
}

// digitRuns returns every maximal run of ASCII digits in s as byte offsets.
func digitRuns(s string) []digitRun {
	var runs []digitRun
	for i := 0; i < len(s); {
		if !isASCIIDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isASCIIDigit(s[j]) {
			j++
		}
		runs = append(runs, digitRun{start: i, end: j})
		i = j
	}
	return runs
}

func extractAmount(text string) (int64, bool) {
	var candidates []digitRun
	for _, r := range digitRuns(text) {
		if r.end-r.start <= maxAmountDigits {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	chosen := candidates[0]
	for _, c := range candidates {
		if strings.TrimSpace(text[:c.start]) == "" && listIndexFollows(text[c.end:]) {
			continue
		}
		chosen = c
		break
	}

	n, err := strconv.ParseInt(text[chosen.start:chosen.end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// listIndexFollows reports whether rest starts like the tail of "2. edit" or "2.edit".
func listIndexFollows(rest string) bool {
	if !strings.HasPrefix(rest, ".") && !strings.HasPrefix(rest, "٫") {
		return false
	}
	_, size := utf8.DecodeRuneInString(rest)
	next, n := utf8.DecodeRuneInString(rest[size:])
	if n == 0 {
		return false
	}
	return unicode.IsSpace(next) || unicode.IsLetter(next)
}

func extractPerson(text string, direction domain.Direction) string {
	if direction == domain.DirectionPayable {
		if m := payeeRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	if m := sourceRe.FindStringSubmatch(text); m != nil && !reflexivePronouns[m[1]] {
		return m[1]
	}
	if m := obligatedRe.FindStringSubmatch(text); m != nil && !genericWords[m[1]] {
		return m[1]
	}
	return ""
}

func cleanDescription(text string, amount int64) string {
	t := strings.TrimSpace(removeNumber(text, strconv.FormatInt(amount, 10)))
	t = strings.TrimSpace(removeWords(t, currencyList))
	t = strings.TrimSpace(indexPrefix.ReplaceAllString(t, ""))
	t = spaceRunRe.ReplaceAllString(t, " ")
	return truncateRunes(t, MaxDescriptionLength)
}

// removeNumber drops the first occurrence of digits that is not part of a longer number.
func removeNumber(text, digits string) string {
	for _, r := range digitRuns(text) {
		if text[r.start:r.end] == digits {
			return text[:r.start] + text[r.end:]
		}
	}
	return text
}

// removeWords drops every whole-word occurrence of the given words.
func removeWords(text string, words []string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		matched := ""
		if i == 0 || !isWordRune(lastRune(text[:i])) {
			for _, w := range words {
				if strings.HasPrefix(text[i:], w) {
					end := i + len(w)
					if end == len(text) || !isWordRune(firstRune(text[end:])) {
						matched = w
						break
					}
				}
			}
		}
		if matched != "" {
			i += len(matched)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
