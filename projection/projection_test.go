package projection

import (
	"errors"
	"math"
	"testing"
)

// spreadData has strongly decreasing variance along axes 0, 1, 2 and no
// cross-axis correlation, so PCA must recover the coordinate axes.
func spreadData() [][]float32 {
	n := 16
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		a := float32(i) - 7.5
		b := float32(0.2) * float32(i%4-2)
		c := float32(0.01) * float32(i%2*2-1)
		out[i] = []float32{a, b, c}
	}
	return out
}

func TestFitValidation(t *testing.T) {
	if _, err := Fit(nil, 2); err == nil {
		t.Error("expected error for empty training matrix")
	}
	if _, err := Fit([][]float32{{1, 2}, {1, 2, 3}}, 1); err == nil {
		t.Error("expected error for ragged matrix")
	}

	var dimErr *DimensionError
	if _, err := Fit(spreadData(), 4); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for out > dim, got %v", err)
	}
	if _, err := Fit(spreadData(), 0); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for out = 0, got %v", err)
	}
	if _, err := Fit([][]float32{{1, 2, 3}}, 2); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for out > rows, got %v", err)
	}
}

func TestFitRecoversAxes(t *testing.T) {
	p, err := Fit(spreadData(), 2)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	comps := p.Components()
	if len(comps) != 2 || len(comps[0]) != 3 {
		t.Fatalf("unexpected component shape: %d x %d", len(comps), len(comps[0]))
	}

	// First direction ~ +e0, second ~ +e1 (signs normalized positive).
	if math.Abs(comps[0][0]-1) > 1e-6 {
		t.Errorf("component 0 should align with axis 0, got %v", comps[0])
	}
	if math.Abs(comps[1][1]-1) > 1e-6 {
		t.Errorf("component 1 should align with axis 1, got %v", comps[1])
	}

	// Orthonormal columns.
	for a := 0; a < 2; a++ {
		for b := a; b < 2; b++ {
			var dot float64
			for i := 0; i < 3; i++ {
				dot += comps[a][i] * comps[b][i]
			}
			want := 0.0
			if a == b {
				want = 1.0
			}
			if math.Abs(dot-want) > 1e-9 {
				t.Errorf("columns %d,%d: dot = %v, want %v", a, b, dot, want)
			}
		}
	}
}

func TestTransformCentersTraining(t *testing.T) {
	train := spreadData()
	p, err := Fit(train, 2)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	proj, err := p.Transform(train)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if len(proj) != len(train) || len(proj[0]) != 2 {
		t.Fatalf("unexpected projected shape: %d x %d", len(proj), len(proj[0]))
	}

	for j := 0; j < 2; j++ {
		var sum float64
		for i := range proj {
			sum += proj[i][j]
		}
		if m := sum / float64(len(proj)); math.Abs(m) > 1e-9 {
			t.Errorf("projected column %d mean = %v, want ~0", j, m)
		}
	}
}

func TestTransformValidation(t *testing.T) {
	p, err := Fit(spreadData(), 2)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := p.Transform([][]float32{{1, 2, 3, 4}}); err == nil {
		t.Error("expected error for mismatched input dimension")
	}

	empty, err := p.Transform(nil)
	if err != nil {
		t.Fatalf("Transform on empty input failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty output, got %d rows", len(empty))
	}

	var unfitted *Projector
	if _, err := unfitted.Transform([][]float32{{1, 2, 3}}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
}

func TestFitDeterminism(t *testing.T) {
	a, err := Fit(spreadData(), 3)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	b, err := Fit(spreadData(), 3)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	ca, cb := a.Components(), b.Components()
	for j := range ca {
		for i := range ca[j] {
			if ca[j][i] != cb[j][i] {
				t.Fatalf("component (%d,%d) differs between fits: %v vs %v", j, i, ca[j][i], cb[j][i])
			}
		}
	}
}
