package extract

import (
	"encoding/json"
	"strings"
)

// LineItem is one element of the upstream OCR response. Providers send
// either plain strings or partially structured objects; in both cases
// the description text is what the classifier works on.
type LineItem struct {
	text string
}

// NewLineItem wraps a plain string line.
func NewLineItem(text string) LineItem {
	return LineItem{text: text}
}

func (l LineItem) String() string {
	return l.text
}

// UnmarshalJSON accepts a JSON string or an object carrying a
// "description" field. Anything else keeps its raw JSON text so no
// upstream item is silently lost.
func (l *LineItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.text = s
		return nil
	}

	var obj struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Description != "" {
		l.text = obj.Description
		return nil
	}

	l.text = string(data)
	return nil
}

func (l LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.text)
}

// SplitText breaks a raw OCR text blob into line items, dropping blank
// lines.
func SplitText(text string) []LineItem {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var items []LineItem
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, LineItem{text: line})
	}
	return items
}

// Classifier runs the noise filter and the line parser across a batch
// of raw lines and keeps only candidates that pass the sanity checks.
type Classifier struct {
	parser *LineParser
}

// NewClassifier creates a classifier around the given line parser.
func NewClassifier(parser *LineParser) *Classifier {
	return &Classifier{parser: parser}
}

// Classify converts raw OCR line items into persistable candidates.
// Lines that are empty after trimming or flagged as noise are dropped
// before parsing; parsed candidates with a non-positive amount are
// dropped after. Output order follows input order and identical lines
// yield identical candidates; nothing is deduplicated.
func (c *Classifier) Classify(items []LineItem) []Candidate {
	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		line := strings.TrimSpace(item.String())
		if line == "" || IsNoise(line) {
			continue
		}

		candidate := c.parser.Parse(line)
		if !candidate.Valid() {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}
