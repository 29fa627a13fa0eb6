package eval

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/hupe1980/spectral/hashcode"
)

// setFromBits builds a code set from rows of '0'/'1' characters, bit k
// of a row at string position k.
func setFromBits(t *testing.T, rows ...string) *hashcode.Set {
	t.Helper()
	s, err := hashcode.NewSet(len(rows), len(rows[0]))
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	for i, r := range rows {
		for k, ch := range r {
			if ch == '1' {
				s.SetBit(i, k)
			}
		}
	}
	return s
}

func TestMeanAveragePrecisionIdentity(t *testing.T) {
	// Collision-free codes: querying the set against itself puts every
	// row's only relevant hit at rank 1.
	codes := setFromBits(t, "00000000", "11110000", "00001111", "11111111")
	labels := FromClasses([]uint32{0, 1, 2, 3})

	mAP, err := MeanAveragePrecision(context.Background(), codes, codes, labels, labels, -1)
	if err != nil {
		t.Fatalf("MeanAveragePrecision failed: %v", err)
	}
	if mAP != 1.0 {
		t.Errorf("identity mAP = %v, want 1.0", mAP)
	}
}

func TestMeanAveragePrecisionIdentityWithCollisions(t *testing.T) {
	// When distinct rows collide on the same code, identity mAP drops
	// below 1: the colliding lower-index row outranks self under the
	// ascending-index tie-break. Rows 0 and 1 share a code, so query 1
	// finds its own row at rank 2 behind the irrelevant row 0.
	codes := setFromBits(t, "0000", "0000", "1111")
	labels := FromClasses([]uint32{0, 1, 2})

	mAP, err := MeanAveragePrecision(context.Background(), codes, codes, labels, labels, -1)
	if err != nil {
		t.Fatalf("MeanAveragePrecision failed: %v", err)
	}
	// Query 0: AP 1. Query 1: hit at rank 2, AP 1/2. Query 2: AP 1.
	if want := 5.0 / 6.0; math.Abs(mAP-want) > 1e-12 {
		t.Errorf("colliding identity mAP = %v, want %v", mAP, want)
	}
}

func TestMeanAveragePrecisionHandComputed(t *testing.T) {
	queries := setFromBits(t, "0000")
	retrieval := setFromBits(t,
		"0001", // distance 1, class 1
		"0000", // distance 0, class 0
		"0011", // distance 2, class 0
		"0111", // distance 3, class 1
	)
	qLabels := FromClasses([]uint32{0})
	rLabels := FromClasses([]uint32{1, 0, 0, 1})
	ctx := context.Background()

	// Ranking: r1, r0, r2, r3. Relevant hits at ranks 1 and 3, so
	// AP = (1/1 + 2/3) / 2.
	mAP, err := MeanAveragePrecision(ctx, queries, retrieval, qLabels, rLabels, -1)
	if err != nil {
		t.Fatalf("MeanAveragePrecision failed: %v", err)
	}
	if want := 5.0 / 6.0; math.Abs(mAP-want) > 1e-12 {
		t.Errorf("mAP = %v, want %v", mAP, want)
	}

	// Truncated at 2 the only hit is rank 1.
	mAP, err = MeanAveragePrecision(ctx, queries, retrieval, qLabels, rLabels, 2)
	if err != nil {
		t.Fatalf("MeanAveragePrecision(topK=2) failed: %v", err)
	}
	if mAP != 1.0 {
		t.Errorf("mAP@2 = %v, want 1.0", mAP)
	}
}

func TestMeanAveragePrecisionZeroRelevantCountsInMean(t *testing.T) {
	queries := setFromBits(t, "0000", "0000")
	retrieval := setFromBits(t, "0000", "0011")
	qLabels := FromClasses([]uint32{0, 9}) // second query matches nothing
	rLabels := FromClasses([]uint32{0, 0})

	mAP, err := MeanAveragePrecision(context.Background(), queries, retrieval, qLabels, rLabels, -1)
	if err != nil {
		t.Fatalf("MeanAveragePrecision failed: %v", err)
	}
	if want := 0.5; math.Abs(mAP-want) > 1e-12 {
		t.Errorf("mAP = %v, want %v (first query 1.0, second 0, both counted)", mAP, want)
	}
}

func TestMeanAveragePrecisionTieBreaksByIndex(t *testing.T) {
	queries := setFromBits(t, "0000")
	retrieval := setFromBits(t,
		"1000", // distance 1, class 1
		"0001", // distance 1, class 0
	)
	qLabels := FromClasses([]uint32{0})
	rLabels := FromClasses([]uint32{1, 0})

	// Both rows tie at distance 1; the lower index ranks first, so the
	// relevant row lands at rank 2.
	mAP, err := MeanAveragePrecision(context.Background(), queries, retrieval, qLabels, rLabels, -1)
	if err != nil {
		t.Fatalf("MeanAveragePrecision failed: %v", err)
	}
	if want := 0.5; math.Abs(mAP-want) > 1e-12 {
		t.Errorf("mAP = %v, want %v", mAP, want)
	}
}

func TestPRCurveHandComputed(t *testing.T) {
	queries := setFromBits(t, "0000")
	retrieval := setFromBits(t,
		"0001", // distance 1, class 1
		"0000", // distance 0, class 0
		"0011", // distance 2, class 0
		"0111", // distance 3, class 1
	)
	qLabels := FromClasses([]uint32{0})
	rLabels := FromClasses([]uint32{1, 0, 0, 1})

	p, r, err := PRCurve(context.Background(), queries, retrieval, qLabels, rLabels)
	if err != nil {
		t.Fatalf("PRCurve failed: %v", err)
	}
	if len(p) != 5 || len(r) != 5 {
		t.Fatalf("curve lengths %d/%d, want 5", len(p), len(r))
	}

	wantP := []float64{1, 0.5, 2.0 / 3.0, 0.5, 0.5}
	wantR := []float64{0.5, 0.5, 1, 1, 1}
	for d := range wantP {
		if math.Abs(p[d]-wantP[d]) > 1e-12 {
			t.Errorf("precision[%d] = %v, want %v", d, p[d], wantP[d])
		}
		if math.Abs(r[d]-wantR[d]) > 1e-12 {
			t.Errorf("recall[%d] = %v, want %v", d, r[d], wantR[d])
		}
	}
}

func TestPRCurveProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	nQ, nR, bits := 40, 150, 16

	q, err := hashcode.NewSet(nQ, bits)
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	rSet, err := hashcode.NewSet(nR, bits)
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	for i := 0; i < nQ; i++ {
		for k := 0; k < bits; k++ {
			if rng.Intn(2) == 1 {
				q.SetBit(i, k)
			}
		}
	}
	for j := 0; j < nR; j++ {
		for k := 0; k < bits; k++ {
			if rng.Intn(2) == 1 {
				rSet.SetBit(j, k)
			}
		}
	}
	qc := make([]uint32, nQ)
	rc := make([]uint32, nR)
	for i := range qc {
		qc[i] = uint32(rng.Intn(3))
	}
	for j := range rc {
		rc[j] = uint32(rng.Intn(3))
	}

	p, r, err := PRCurve(context.Background(), q, rSet, FromClasses(qc), FromClasses(rc))
	if err != nil {
		t.Fatalf("PRCurve failed: %v", err)
	}
	for d := 0; d <= bits; d++ {
		if p[d] < 0 || p[d] > 1 || r[d] < 0 || r[d] > 1 {
			t.Errorf("curve out of [0,1] at %d: p=%v r=%v", d, p[d], r[d])
		}
		if d > 0 && r[d] < r[d-1]-1e-12 {
			t.Errorf("recall decreases at %d: %v -> %v", d, r[d-1], r[d])
		}
	}
	// Every query has relevant rows (3 classes, 150 rows), so recall
	// at the full code length must reach 1.
	if math.Abs(r[bits]-1) > 1e-12 {
		t.Errorf("recall at max threshold = %v, want 1", r[bits])
	}
}

func TestEvalDeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	nQ, nR, bits := 60, 300, 16

	q, _ := hashcode.NewSet(nQ, bits)
	rSet, _ := hashcode.NewSet(nR, bits)
	for i := 0; i < nQ; i++ {
		for k := 0; k < bits; k++ {
			if rng.Intn(2) == 1 {
				q.SetBit(i, k)
			}
		}
	}
	for j := 0; j < nR; j++ {
		for k := 0; k < bits; k++ {
			if rng.Intn(2) == 1 {
				rSet.SetBit(j, k)
			}
		}
	}
	qc := make([]uint32, nQ)
	rc := make([]uint32, nR)
	for i := range qc {
		qc[i] = uint32(rng.Intn(4))
	}
	for j := range rc {
		rc[j] = uint32(rng.Intn(4))
	}
	ql, rl := FromClasses(qc), FromClasses(rc)
	ctx := context.Background()

	m1, err := MeanAveragePrecisionWorkers(ctx, q, rSet, ql, rl, 25, 1)
	if err != nil {
		t.Fatalf("mAP workers=1 failed: %v", err)
	}
	m4, err := MeanAveragePrecisionWorkers(ctx, q, rSet, ql, rl, 25, 4)
	if err != nil {
		t.Fatalf("mAP workers=4 failed: %v", err)
	}
	if m1 != m4 {
		t.Errorf("mAP differs across worker counts: %v vs %v", m1, m4)
	}

	p1, r1, err := PRCurveWorkers(ctx, q, rSet, ql, rl, 1)
	if err != nil {
		t.Fatalf("PRCurve workers=1 failed: %v", err)
	}
	p4, r4, err := PRCurveWorkers(ctx, q, rSet, ql, rl, 4)
	if err != nil {
		t.Fatalf("PRCurve workers=4 failed: %v", err)
	}
	for d := range p1 {
		if p1[d] != p4[d] || r1[d] != r4[d] {
			t.Fatalf("curves differ across worker counts at %d", d)
		}
	}
}

func TestEvalValidation(t *testing.T) {
	ctx := context.Background()
	q := setFromBits(t, "0000")
	r8 := setFromBits(t, "00000000")
	labels1 := FromClasses([]uint32{0})

	if _, err := MeanAveragePrecision(ctx, q, r8, labels1, labels1, -1); err == nil {
		t.Error("expected error for code length mismatch")
	}
	if _, err := MeanAveragePrecision(ctx, q, setFromBits(t, "0000"), FromClasses([]uint32{0, 1}), labels1, -1); err == nil {
		t.Error("expected error for query label row mismatch")
	}
	if _, _, err := PRCurve(ctx, q, setFromBits(t, "0000"), labels1, FromClasses(nil)); err == nil {
		t.Error("expected error for retrieval label row mismatch")
	}
	if _, err := MeanAveragePrecision(ctx, nil, q, labels1, labels1, -1); err == nil {
		t.Error("expected error for nil code set")
	}
}

func TestEvalCancelledContext(t *testing.T) {
	q := setFromBits(t, "0000", "0001")
	r := setFromBits(t, "0000", "0011")
	labels := FromClasses([]uint32{0, 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := MeanAveragePrecision(ctx, q, r, labels, labels, -1); err == nil {
		t.Error("expected error for cancelled context")
	}
	if _, _, err := PRCurve(ctx, q, r, labels, labels); err == nil {
		t.Error("expected error for cancelled context")
	}
}
