package extract

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction says whether a transaction increases or decreases a balance.
type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// Candidate is one transaction extracted from a single statement line,
// pending persistence. The original line is kept verbatim in Description
// so a human can audit what the heuristics made of it.
type Candidate struct {
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"type"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// Valid reports whether the candidate is worth persisting: a positive
// amount, a known direction and a non-empty description.
func (c Candidate) Valid() bool {
	if !c.Amount.IsPositive() {
		return false
	}
	if c.Direction != Income && c.Direction != Expense {
		return false
	}
	return c.Description != ""
}
