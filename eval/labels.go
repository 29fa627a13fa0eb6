package eval

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// LabelSet holds one label bitmap per row. Multi-label data sets set
// several bits per row; single-label data sets exactly one. Two rows
// are relevant to each other when their bitmaps intersect.
type LabelSet struct {
	rows []*roaring.Bitmap
}

// FromClasses builds a single-label set, one class index per row.
func FromClasses(classes []uint32) *LabelSet {
	rows := make([]*roaring.Bitmap, len(classes))
	for i, c := range classes {
		rb := roaring.New()
		rb.Add(c)
		rows[i] = rb
	}
	return &LabelSet{rows: rows}
}

// FromLists builds a multi-label set from per-row class index lists.
// Empty lists are allowed and yield rows relevant to nothing.
func FromLists(lists [][]uint32) *LabelSet {
	rows := make([]*roaring.Bitmap, len(lists))
	for i, list := range lists {
		rb := roaring.New()
		rb.AddMany(list)
		rows[i] = rb
	}
	return &LabelSet{rows: rows}
}

// FromMultiHot builds a multi-label set from a multi-hot matrix where
// column j of row i is positive when row i carries class j.
func FromMultiHot(matrix [][]float32) *LabelSet {
	rows := make([]*roaring.Bitmap, len(matrix))
	for i, row := range matrix {
		rb := roaring.New()
		for j, v := range row {
			if v > 0 {
				rb.Add(uint32(j))
			}
		}
		rows[i] = rb
	}
	return &LabelSet{rows: rows}
}

// FromBitmaps wraps existing bitmaps, e.g. ones restored from a
// checkpoint. The slice is used directly, not copied.
func FromBitmaps(rows []*roaring.Bitmap) *LabelSet {
	return &LabelSet{rows: rows}
}

// Rows returns the number of rows in the set.
func (s *LabelSet) Rows() int { return len(s.rows) }

// Row returns the bitmap of row i.
func (s *LabelSet) Row(i int) *roaring.Bitmap { return s.rows[i] }

// Relevant reports whether row i of s shares a label with row j of t.
func (s *LabelSet) Relevant(i int, t *LabelSet, j int) bool {
	return s.rows[i].Intersects(t.rows[j])
}

// Classes returns the number of distinct classes present in the set.
func (s *LabelSet) Classes() int {
	all := roaring.New()
	for _, rb := range s.rows {
		all.Or(rb)
	}
	return int(all.GetCardinality())
}

func (s *LabelSet) validate(rows int, name string) error {
	if s == nil {
		return fmt.Errorf("eval: nil %s label set", name)
	}
	if len(s.rows) != rows {
		return fmt.Errorf("eval: %s label set has %d rows, codes have %d", name, len(s.rows), rows)
	}
	return nil
}
