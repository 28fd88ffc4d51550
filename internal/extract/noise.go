package extract

import "strings"

// noiseTerms are structural fragments of bank statements and receipts:
// headers, footers, balance rows and column captions. A line containing
// any of them is not a transaction. The "---" entry catches table
// separator rows drawn with dashes.
var noiseTerms = []string{
	"bank",
	"account holder",
	"account number",
	"statement period",
	"opening balance",
	"closing balance",
	"balance",
	"date description",
	"debit credit",
	"---",
	"page",
}

// IsNoise reports whether a raw OCR line is structural clutter rather
// than a transaction line. An empty line is always noise.
func IsNoise(line string) bool {
	if len(strings.TrimSpace(line)) < 3 {
		return true
	}

	lower := strings.ToLower(line)
	for _, term := range noiseTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}

	// Lines that are mostly punctuation (boxes, rules, column guides)
	// sneak past the vocabulary check.
	alnum := 0
	for _, r := range line {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			alnum++
		}
	}
	return float64(alnum)/float64(len(line)) < 0.2
}
