package orchestrator

import (
	"time"

	"github.com/mkarlsen/orgscan/types"
)

// RunResult aggregates everything one collection pass produced.
type RunResult struct {
	// Results holds one entry per attempted (account, kind) pair. A
	// missing key means the pair was never attempted.
	Results map[types.ResultKey]types.CollectionResult

	// AccountsProcessed counts accounts that passed credential
	// delegation; AccountsSkipped counts the ones that did not.
	AccountsProcessed int
	AccountsSkipped   int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// TotalRows sums rows across all successful collections.
func (r *RunResult) TotalRows() int {
	total := 0
	for _, result := range r.Results {
		total += result.Table.RowCount()
	}
	return total
}

// Failures returns the keys that ended in StatusFailed, for diagnostics.
func (r *RunResult) Failures() []types.ResultKey {
	var keys []types.ResultKey
	for key, result := range r.Results {
		if result.Status == types.StatusFailed {
			keys = append(keys, key)
		}
	}
	return keys
}
