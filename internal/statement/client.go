package statement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kdunlop/statement-scan/internal/extract"
)

// HTTPSaver implements the Saver interface against a transactions API:
// one POST per candidate, acknowledged or rejected as a whole. The
// request context carries the per-call deadline, so the underlying
// client has no timeout of its own.
type HTTPSaver struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSaver creates a new HTTPSaver. token is optional; when set it
// is sent as a bearer token.
func NewHTTPSaver(baseURL, token string) (*HTTPSaver, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("transactions api base url is required")
	}

	return &HTTPSaver{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
	}, nil
}

// transactionPayload is the wire shape the transactions API accepts.
type transactionPayload struct {
	Amount      decimal.Decimal   `json:"amount"`
	Type        extract.Direction `json:"type"`
	Category    string            `json:"category"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
}

// SaveTransaction posts one candidate. Non-2xx responses are turned
// into errors carrying the API's human-readable reason when it sent
// one.
func (s *HTTPSaver) SaveTransaction(ctx context.Context, candidate extract.Candidate) error {
	body, err := json.Marshal(transactionPayload{
		Amount:      candidate.Amount,
		Type:        candidate.Direction,
		Category:    candidate.Category,
		Date:        candidate.Date,
		Description: candidate.Description,
	})
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("transaction rejected (status %d): %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("transaction rejected: status %d", resp.StatusCode)
}
