// Package eval measures retrieval quality of binary code sets.
//
// A query set is ranked against a retrieval set by Hamming distance.
// Relevance is label overlap: two rows are relevant to each other when
// their label bitmaps intersect. The package reports mean average
// precision (optionally truncated at top-K) and a precision/recall
// curve over every Hamming threshold 0..L.
//
// Ranking never uses a comparison sort: distances are bounded by the
// code length, so queries are ranked by counting sort and the PR curve
// falls out of prefix sums over the same distance histograms. Queries
// are processed in parallel; results are deterministic regardless of
// the worker count.
package eval
