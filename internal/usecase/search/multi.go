package search

import (
	"context"
	"sync"

	"github.com/quillsearch/quill/internal/domain/search/request"
	"github.com/quillsearch/quill/internal/domain/search/result"
)

// Outcome is the per-position result of one query in a multi-search batch:
// either a response or an error, never both.
type Outcome struct {
	response *result.Response
	err      error
}

// NewOutcome creates a successful outcome.
func NewOutcome(resp *result.Response) Outcome { return Outcome{response: resp} }

// NewOutcomeError creates a failed outcome.
func NewOutcomeError(err error) Outcome { return Outcome{err: err} }

// Response returns the response, nil when the query failed.
func (o Outcome) Response() *result.Response { return o.response }

// Err returns the error, nil when the query succeeded.
func (o Outcome) Err() error { return o.err }

// ExecuteAll runs a batch of independent requests, possibly concurrently,
// and returns one outcome per request in input order. Results are written
// into position-indexed slots, so ordering never depends on completion
// order. A failed query never affects its siblings; an empty batch yields
// an empty outcome list.
func (s *Service) ExecuteAll(ctx context.Context, reqs []*request.Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	if len(reqs) == 0 {
		return outcomes
	}

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			resp, err := s.Execute(ctx, req)
			if err != nil {
				outcomes[i] = NewOutcomeError(err)
				return
			}
			outcomes[i] = NewOutcome(resp)
		}
		if err := s.pool.Submit(run); err != nil {
			// Pool exhausted or released: execute on the caller's goroutine.
			run()
		}
	}
	wg.Wait()
	return outcomes
}
