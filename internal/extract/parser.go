package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// incomeTerms mark a line as money coming in. This is a keyword
// heuristic, not a ledger-accurate sign convention: a line like
// "CREDIT CARD PAYMENT" will be read as income. Best effort only.
var incomeTerms = []string{"credit", "deposit", "salary", "interest", "refund", "cashback", "received"}

var (
	// amountPattern matches money-like tokens: an optionally
	// comma-grouped integer part with an optional one or two digit
	// decimal part (1,234.56 / 1000 / 42.00).
	amountPattern = regexp.MustCompile(`\d{1,3}(?:[,\d]*)?(?:\.\d{1,2})?`)

	// datePattern matches the date shapes OCR tends to lift off
	// statements: 01-Jul-25, 01/07/2025, 2025-07-01 and their
	// slash/dash variants.
	datePattern = regexp.MustCompile(`\d{1,2}[/-][A-Za-z]{3}[/-]\d{2,4}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}`)

	separatorRuns = regexp.MustCompile(`[-_/]+`)
	spaceRuns     = regexp.MustCompile(`\s+`)
)

// dateLayouts are tried in order against the normalized (dash-joined)
// date token. Two-digit years follow time.Parse's pivot, so 01-Jul-25
// lands in 2025. Numeric dates are read month-first.
var dateLayouts = []string{
	"2-Jan-06",
	"2-Jan-2006",
	"1-2-2006",
	"1-2-06",
	"2006-1-2",
}

// AmountStrategy picks the transaction amount out of the numeric tokens
// found on a line, in the order they appeared. It is a separate,
// swappable policy because the choice encodes a statement-layout
// assumption, not arithmetic.
type AmountStrategy interface {
	Pick(dir Direction, amounts []decimal.Decimal) decimal.Decimal
}

// BalanceTrailing assumes statement rows print a running balance in the
// last column, so an income row with at least two tokens takes the
// second-to-last one (the amount sits just before the balance). Any
// other row with two or more tokens takes the first; a single token is
// taken as-is; no tokens means zero.
//
// Known weakness: locating the token adjacent to a transaction-type
// keyword would survive more layouts, but this is the behavior the
// feature shipped with and it is kept deliberately.
type BalanceTrailing struct{}

func (BalanceTrailing) Pick(dir Direction, amounts []decimal.Decimal) decimal.Decimal {
	switch {
	case len(amounts) == 0:
		return decimal.Zero
	case dir == Income && len(amounts) >= 2:
		return amounts[len(amounts)-2]
	default:
		return amounts[0]
	}
}

// LineParser turns one non-noise statement line into a Candidate. It
// never fails; degenerate lines come back with a zero amount and are
// filtered out by the Classifier, not here.
type LineParser struct {
	amounts AmountStrategy
	now     func() time.Time
}

// NewLineParser creates a parser with the BalanceTrailing amount
// strategy and the wall clock.
func NewLineParser() *LineParser {
	return NewLineParserWithDeps(BalanceTrailing{}, time.Now)
}

// NewLineParserWithDeps creates a parser with a custom amount strategy
// and time source for testing.
func NewLineParserWithDeps(amounts AmountStrategy, now func() time.Time) *LineParser {
	return &LineParser{amounts: amounts, now: now}
}

// Parse extracts direction, amount, date and a category guess from one
// line. The date token is located and removed before amounts are
// tokenized so date digits never masquerade as amounts. The line goes
// into Description untouched.
func (p *LineParser) Parse(line string) Candidate {
	lower := strings.ToLower(line)

	dir := Expense
	for _, term := range incomeTerms {
		if strings.Contains(lower, term) {
			dir = Income
			break
		}
	}

	date := p.now()
	remainder := line
	if tok := datePattern.FindString(line); tok != "" {
		remainder = strings.Replace(remainder, tok, " ", 1)
		if parsed, ok := parseDate(tok); ok {
			date = parsed
		}
	}

	tokens := amountPattern.FindAllString(remainder, -1)
	amounts := make([]decimal.Decimal, 0, len(tokens))
	for _, tok := range tokens {
		d, err := decimal.NewFromString(strings.ReplaceAll(tok, ",", ""))
		if err != nil {
			continue
		}
		amounts = append(amounts, d)
	}

	return Candidate{
		Amount:      p.amounts.Pick(dir, amounts),
		Direction:   dir,
		Date:        date,
		Category:    deriveCategory(remainder),
		Description: line,
	}
}

// parseDate tries the known layouts against a normalized date token.
func parseDate(tok string) (time.Time, bool) {
	tok = normalizeDateToken(tok)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, tok); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeDateToken joins separators with dashes and title-cases the
// month abbreviation so time.Parse accepts OCR output like 01-JUL-25.
func normalizeDateToken(tok string) string {
	tok = strings.ReplaceAll(tok, "/", "-")
	parts := strings.Split(tok, "-")
	for i, part := range parts {
		if len(part) == 3 && isAlpha(part) {
			parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return strings.Join(parts, "-")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// deriveCategory is intentionally crude: whatever words survive once
// the date and the numeric tokens are stripped, the first two of them,
// capped at 40 characters. Lines with nothing left get "auto".
func deriveCategory(remainder string) string {
	s := amountPattern.ReplaceAllString(remainder, " ")
	s = separatorRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
	if s == "" {
		return "auto"
	}

	words := strings.Fields(s)
	if len(words) > 2 {
		words = words[:2]
	}
	category := strings.Join(words, " ")
	if len(category) > 40 {
		category = category[:40]
	}
	return category
}
