package statement

import (
	"fmt"
	"time"

	"github.com/kdunlop/statement-scan/internal/extract"
)

// Upload is one processed statement or receipt file together with the
// transaction candidates extracted from it. Candidates are frozen at
// processing time; saving later replays exactly what was previewed.
type Upload struct {
	ID          string              `json:"id"`
	Filename    string              `json:"filename"`
	ContentType string              `json:"content_type"`
	Text        string              `json:"text"`
	Candidates  []extract.Candidate `json:"candidates"`
	CreatedAt   time.Time           `json:"created_at"`
}

// SaveFailure records why one candidate could not be persisted.
type SaveFailure struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// SaveReport is the aggregate outcome of one bulk save. Every attempted
// candidate is represented exactly once: in the succeeded count or in
// the failure list.
type SaveReport struct {
	ID        string        `json:"id,omitempty"`
	UploadID  string        `json:"upload_id,omitempty"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []SaveFailure `json:"failures,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Message renders the user-facing summary of the save.
func (r SaveReport) Message() string {
	switch {
	case r.Attempted == 0:
		return "No transactions to save"
	case r.Failed > 0:
		return fmt.Sprintf("Saved %d of %d transactions; see the report for failures", r.Succeeded, r.Attempted)
	default:
		return fmt.Sprintf("Saved %d transactions", r.Succeeded)
	}
}
