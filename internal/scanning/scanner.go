package scanning

import "github.com/kdunlop/statement-scan/internal/extract"

// ScanResult is what the OCR collaborator hands back: the raw extracted
// text and, when the provider pre-splits it, a line list. Either field
// may be empty, but not both.
type ScanResult struct {
	Text  string             `json:"text"`
	Lines []extract.LineItem `json:"parsed"`
}

// LineItems returns the provider's pre-split lines when present,
// otherwise the raw text broken into lines.
func (r *ScanResult) LineItems() []extract.LineItem {
	if len(r.Lines) > 0 {
		return r.Lines
	}
	return extract.SplitText(r.Text)
}

// Scanner defines the interface for text extraction operations
type Scanner interface {
	// ExtractText runs OCR over a statement or receipt image/PDF
	ExtractText(data []byte, contentType string) (*ScanResult, error)
	// Close closes the scanner and releases resources
	Close() error
}
