package parser

import (
	"regexp"

	"expenses_bot/internal/domain"
)

// directionRule maps one phrasing to a direction. Rules are tried in rank order and
// the first match wins.
type directionRule struct {
	rank      int
	name      string
	pattern   *regexp.Regexp
	direction domain.Direction
}

// FallbackRule is reported by Classify when no rule matched.
const FallbackRule = "fallback_expense"

var directionRules = rankRules([]directionRule{
	// someone must pay me
	{name: "must_give_me", pattern: regexp.MustCompile(`باید\s*(?:بهم|به\s*من)\s*بده`), direction: domain.DirectionReceivable},
	{name: "must_give_me_money", pattern: regexp.MustCompile(`باید\s*پول(?:ش)?\s*(?:رو)?\s*(?:بهم|به\s*من)\s*بده`), direction: domain.DirectionReceivable},
	{name: "owes_me", pattern: regexp.MustCompile(`(?:بهم|به\s*من)\s*بدهکار(?:ه|است)?`), direction: domain.DirectionReceivable},
	{name: "owes_me_suffix", pattern: regexp.MustCompile(`بدهکار(?:ه|است)?\s*(?:بهم|به\s*من)`), direction: domain.DirectionReceivable},
	{name: "claim_from", pattern: regexp.MustCompile(`از\s*\S+\s*طلب\s*دارم`), direction: domain.DirectionReceivable},
	{name: "claim", pattern: regexp.MustCompile(`طلب(?:کار)?(?:م|ه)?`), direction: domain.DirectionReceivable},
	{name: "my_claim_from", pattern: regexp.MustCompile(`طلبم\s*از\s*\S+`), direction: domain.DirectionReceivable},
	{name: "someone_must_give", pattern: regexp.MustCompile(`\S+\s*باید\s*بده`), direction: domain.DirectionReceivable},
	{name: "someone_must_give_money", pattern: regexp.MustCompile(`\S+\s*باید\s*پول\s*بده`), direction: domain.DirectionReceivable},
	{name: "supposed_to_give_me", pattern: regexp.MustCompile(`قراره\s*(?:بهم|به\s*من)\s*بده`), direction: domain.DirectionReceivable},
	{name: "supposed_to_give_money", pattern: regexp.MustCompile(`قرار(?:ه|بود)?\s*پول\s*بده`), direction: domain.DirectionReceivable},
	{name: "must_transfer_me", pattern: regexp.MustCompile(`باید\s*(?:بهم|به\s*من)\s*واریز\s*کنه`), direction: domain.DirectionReceivable},
	{name: "transfer", pattern: regexp.MustCompile(`واریز\s*کن(?:ه)?`), direction: domain.DirectionReceivable},
	{name: "give_to_settle", pattern: regexp.MustCompile(`بده\s*حساب\s*شه`), direction: domain.DirectionReceivable},

	// I must pay
	{name: "i_must_give", pattern: regexp.MustCompile(`باید\s*بدم`), direction: domain.DirectionPayable},
	{name: "i_must_give_money", pattern: regexp.MustCompile(`باید\s*پول\s*بدم`), direction: domain.DirectionPayable},
	{name: "i_must_give_to", pattern: regexp.MustCompile(`باید\s*به\s*\S+\s*بدم`), direction: domain.DirectionPayable},
	{name: "i_must_give_money_to", pattern: regexp.MustCompile(`باید\s*پول(?:ش)?\s*رو\s*به\s*\S+\s*بدم`), direction: domain.DirectionPayable},
	{name: "i_owe", pattern: regexp.MustCompile(`بدهکار(?:م|هستم)?`), direction: domain.DirectionPayable},
	{name: "i_owe_explicit", pattern: regexp.MustCompile(`من\s*بدهکار(?:م|هستم)?`), direction: domain.DirectionPayable},
	{name: "borrowed", pattern: regexp.MustCompile(`قرض\s*گرفتم`), direction: domain.DirectionPayable},
	{name: "borrowed_from", pattern: regexp.MustCompile(`از\s*\S+\s*قرض\s*گرفتم`), direction: domain.DirectionPayable},
	{name: "must_settle", pattern: regexp.MustCompile(`باید\s*تسویه\s*کنم`), direction: domain.DirectionPayable},
	{name: "settlement", pattern: regexp.MustCompile(`تسویه\s*حساب`), direction: domain.DirectionPayable},
	{name: "must_pay", pattern: regexp.MustCompile(`باید\s*پرداخت\s*کنم`), direction: domain.DirectionPayable},
	{name: "must_transfer", pattern: regexp.MustCompile(`باید\s*واریز\s*کنم`), direction: domain.DirectionPayable},
	{name: "transfer_give", pattern: regexp.MustCompile(`واریز\s*بدم`), direction: domain.DirectionPayable},
	{name: "i_give_to_settle", pattern: regexp.MustCompile(`بدم\s*حساب\s*شه`), direction: domain.DirectionPayable},

	// "<amount> به <name>" means I owe them
	{name: "shorthand_to", pattern: regexp.MustCompile(`^\s*\d{1,12}\s*(?:تومن|تومان|ریال)?\s*به\s+\S+\s*$`), direction: domain.DirectionPayable},
})

func rankRules(rules []directionRule) []directionRule {
	for i := range rules {
		rules[i].rank = i + 1
	}
	return rules
}

// Classify returns the direction of digit-normalized text and the name of the rule
// that decided it.
func Classify(text string) (domain.Direction, string) {
	for _, r := range directionRules {
		if r.pattern.MatchString(text) {
			return r.direction, r.name
		}
	}
	return domain.DirectionExpense, FallbackRule
}
