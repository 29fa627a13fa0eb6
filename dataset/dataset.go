package dataset

import (
	"fmt"

	"github.com/hupe1980/spectral/eval"
)

// Dataset holds the three splits and the labels of the two evaluated ones.
// Immutable after load.
type Dataset struct {
	Name string

	Train     [][]float32
	Query     [][]float32
	Retrieval [][]float32

	QueryLabels     *eval.LabelSet
	RetrievalLabels *eval.LabelSet
}

// Stats describes a dataset for logging.
type Stats struct {
	Dim           int
	TrainRows     int
	QueryRows     int
	RetrievalRows int
	Classes       int
}

// Stats returns the dataset's shape summary.
func (d *Dataset) Stats() Stats {
	dim := 0
	if len(d.Train) > 0 {
		dim = len(d.Train[0])
	}
	return Stats{
		Dim:           dim,
		TrainRows:     len(d.Train),
		QueryRows:     len(d.Query),
		RetrievalRows: len(d.Retrieval),
		Classes:       d.RetrievalLabels.Classes(),
	}
}

// Validate checks the cross-split shape invariants: one shared
// dimensionality, nonempty splits and matching label row counts.
func (d *Dataset) Validate() error {
	if len(d.Train) == 0 || len(d.Query) == 0 || len(d.Retrieval) == 0 {
		return fmt.Errorf("dataset %s: empty split (train=%d query=%d retrieval=%d)",
			d.Name, len(d.Train), len(d.Query), len(d.Retrieval))
	}

	dim := len(d.Train[0])
	for splitName, split := range map[string][][]float32{
		"train": d.Train, "query": d.Query, "retrieval": d.Retrieval,
	} {
		for i, row := range split {
			if len(row) != dim {
				return fmt.Errorf("dataset %s: %s row %d has %d dims, want %d",
					d.Name, splitName, i, len(row), dim)
			}
		}
	}

	if d.QueryLabels == nil || d.QueryLabels.Rows() != len(d.Query) {
		return fmt.Errorf("dataset %s: query labels cover %d rows, split has %d",
			d.Name, labelRows(d.QueryLabels), len(d.Query))
	}
	if d.RetrievalLabels == nil || d.RetrievalLabels.Rows() != len(d.Retrieval) {
		return fmt.Errorf("dataset %s: retrieval labels cover %d rows, split has %d",
			d.Name, labelRows(d.RetrievalLabels), len(d.Retrieval))
	}
	return nil
}

func labelRows(s *eval.LabelSet) int {
	if s == nil {
		return 0
	}
	return s.Rows()
}
