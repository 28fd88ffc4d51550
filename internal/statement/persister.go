package statement

import (
	"context"
	"sync"
	"time"

	"github.com/kdunlop/statement-scan/internal/extract"
)

// Saver submits one candidate to the downstream transaction store. Each
// call is all-or-nothing; there is no partial row.
type Saver interface {
	SaveTransaction(ctx context.Context, candidate extract.Candidate) error
}

// DefaultSaveTimeout bounds each individual save request.
const DefaultSaveTimeout = 30 * time.Second

// BulkPersister submits every candidate independently and concurrently
// and records the settled outcome of each. One failure never aborts or
// rolls back the others, and nothing is retried.
type BulkPersister struct {
	saver   Saver
	timeout time.Duration
}

// NewBulkPersister creates a persister over the given saver. A
// non-positive timeout falls back to DefaultSaveTimeout.
func NewBulkPersister(saver Saver, timeout time.Duration) *BulkPersister {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	return &BulkPersister{saver: saver, timeout: timeout}
}

// PersistAll fans out one save request per candidate and waits for all
// of them to settle before building the aggregate report. A request
// that outlives its per-request timeout counts as failed without
// affecting its siblings. Outcomes are collected by candidate index, so
// the report's failure list follows input order.
func (p *BulkPersister) PersistAll(ctx context.Context, candidates []extract.Candidate) SaveReport {
	report := SaveReport{Attempted: len(candidates)}
	if len(candidates) == 0 {
		return report
	}

	errs := make([]error, len(candidates))
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate extract.Candidate) {
			defer wg.Done()
			saveCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			errs[i] = p.saver.SaveTransaction(saveCtx, candidate)
		}(i, candidate)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, SaveFailure{
				Index:       i,
				Description: candidates[i].Description,
				Reason:      err.Error(),
			})
			continue
		}
		report.Succeeded++
	}
	return report
}
