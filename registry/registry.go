// Package registry records one run row per written checkpoint so sweeps
// are queryable after the fact.
//
// Two implementations are provided: a JSON-lines file for local use and a
// DynamoDB table for shared experiment ledgers. Both reject duplicate
// runs, keyed by (dataset, code length, checkpoint name), so re-running a
// sweep cannot silently overwrite history.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateRun is returned when a run with the same key was already
// recorded.
var ErrDuplicateRun = errors.New("registry: duplicate run")

// Run is one recorded sweep step.
type Run struct {
	Dataset    string    `json:"dataset"`
	CodeLength int       `json:"code_length"`
	MAP        float64   `json:"map"`
	TopK       int       `json:"top_k"`
	Seed       int64     `json:"seed"`
	Checkpoint string    `json:"checkpoint"`
	CreatedAt  time.Time `json:"created_at"`
}

// Key returns the registry uniqueness key of the run.
func (r Run) Key() string {
	return fmt.Sprintf("%s/%d/%s", r.Dataset, r.CodeLength, r.Checkpoint)
}

func (r Run) validate() error {
	if r.Dataset == "" {
		return errors.New("registry: run has empty dataset")
	}
	if r.CodeLength < 1 {
		return fmt.Errorf("registry: run has invalid code length %d", r.CodeLength)
	}
	if r.Checkpoint == "" {
		return errors.New("registry: run has empty checkpoint name")
	}
	return nil
}

// Registry stores run rows.
type Registry interface {
	// Put records a run. Fails with ErrDuplicateRun when the key exists.
	Put(ctx context.Context, run Run) error
	// List returns all runs of a dataset, ordered by creation time.
	List(ctx context.Context, dataset string) ([]Run, error)
}
