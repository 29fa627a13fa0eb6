package spectral

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCodeLengths is returned by an experiment configured without
	// any code lengths.
	ErrNoCodeLengths = errors.New("spectral: no code lengths configured")
	// ErrNilDataset is returned when training is invoked without data.
	ErrNilDataset = errors.New("spectral: nil dataset")
)

// SweepError wraps a failure of one code length inside a sweep.
//
// The underlying cause can be accessed via errors.Unwrap.
type SweepError struct {
	CodeLength int
	Err        error
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("code length %d: %v", e.CodeLength, e.Err)
}

func (e *SweepError) Unwrap() error { return e.Err }
