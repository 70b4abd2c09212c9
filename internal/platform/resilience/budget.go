package resilience

import "sync"

// ErrorBudget tracks consecutive failures and reports when the limit is reached.
// A success resets the streak.
type ErrorBudget struct {
	mu          sync.Mutex
	limit       int
	consecutive int
	total       int
	lastErr     error
}

func NewErrorBudget(limit int) *ErrorBudget {
	if limit < 1 {
		limit = 1
	}
	return &ErrorBudget{limit: limit}
}

// RecordFailure counts err and returns true once the consecutive limit is reached.
func (b *ErrorBudget) RecordFailure(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutive++
	b.total++
	b.lastErr = err
	return b.consecutive >= b.limit
}

func (b *ErrorBudget) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutive = 0
}

func (b *ErrorBudget) Consecutive() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutive
}

func (b *ErrorBudget) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *ErrorBudget) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}
