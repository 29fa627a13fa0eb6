package sh

import (
	"context"
	"math"
	"testing"
)

func TestEncodeKnownBits(t *testing.T) {
	// One projected dimension with range 4 and two bits: the selected
	// modes are 1 and 2, frequencies pi/4 and pi/2. The eigenfunction
	// value is cos(u * omega) for shifted u = v - min.
	b := &Bounds{Min: []float64{0}, Range: []float64{4}}
	mt, err := BuildModeTable(2, b)
	if err != nil {
		t.Fatalf("BuildModeTable failed: %v", err)
	}

	set, err := Encode(context.Background(), [][]float64{{1}, {3}}, b, mt)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if set.Rows() != 2 || set.Bits() != 2 {
		t.Fatalf("unexpected code shape: %d x %d", set.Rows(), set.Bits())
	}

	// u=1: cos(pi/4) > 0 and cos(pi/2) rounds positive.
	if !set.Bit(0, 0) || !set.Bit(0, 1) {
		t.Errorf("row 0: signs %v, want both positive", set.Signs(0))
	}
	// u=3: cos(3pi/4) < 0 and cos(3pi/2) rounds negative.
	if set.Bit(1, 0) || set.Bit(1, 1) {
		t.Errorf("row 1: signs %v, want both negative", set.Signs(1))
	}
}

func TestEncodeEmptyInput(t *testing.T) {
	b := &Bounds{Min: []float64{0}, Range: []float64{4}}
	mt, err := BuildModeTable(2, b)
	if err != nil {
		t.Fatalf("BuildModeTable failed: %v", err)
	}
	set, err := Encode(context.Background(), nil, b, mt)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if set.Rows() != 0 || set.Bits() != 2 {
		t.Errorf("unexpected shape for empty input: %d x %d", set.Rows(), set.Bits())
	}
}

func TestEncodeValidation(t *testing.T) {
	b := &Bounds{Min: []float64{0, 0}, Range: []float64{4, 2}}
	mt, err := BuildModeTable(3, b)
	if err != nil {
		t.Fatalf("BuildModeTable failed: %v", err)
	}
	ctx := context.Background()

	if _, err := Encode(ctx, [][]float64{{1}}, b, mt); err == nil {
		t.Error("expected error for row width mismatch")
	}
	if _, err := Encode(ctx, [][]float64{{1, 2}}, b, nil); err == nil {
		t.Error("expected error for nil mode table")
	}
	if _, err := Encode(ctx, [][]float64{{1, 2}}, nil, mt); err == nil {
		t.Error("expected error for nil bounds")
	}

	narrow := &Bounds{Min: []float64{0}, Range: []float64{4}}
	if _, err := Encode(ctx, [][]float64{{1}}, narrow, mt); err == nil {
		t.Error("expected error for table/bounds dim mismatch")
	}
}

func TestEncodeDeterministicAcrossWorkers(t *testing.T) {
	n, dims := 100, 3
	projected := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, dims)
		for j := 0; j < dims; j++ {
			row[j] = math.Sin(float64(i*dims+j)) * float64(j+1)
		}
		projected[i] = row
	}

	b, err := FitBounds(projected, DefaultEpsilon)
	if err != nil {
		t.Fatalf("FitBounds failed: %v", err)
	}
	mt, err := BuildModeTable(5, b)
	if err != nil {
		t.Fatalf("BuildModeTable failed: %v", err)
	}

	ctx := context.Background()
	one, err := EncodeWorkers(ctx, projected, b, mt, 1)
	if err != nil {
		t.Fatalf("EncodeWorkers(1) failed: %v", err)
	}
	many, err := EncodeWorkers(ctx, projected, b, mt, 7)
	if err != nil {
		t.Fatalf("EncodeWorkers(7) failed: %v", err)
	}

	a, c := one.Data(), many.Data()
	if len(a) != len(c) {
		t.Fatalf("data length mismatch: %d vs %d", len(a), len(c))
	}
	for i := range a {
		if a[i] != c[i] {
			t.Fatalf("codes differ at word %d with different worker counts", i)
		}
	}
}

func TestEncodeCancelledContext(t *testing.T) {
	b := &Bounds{Min: []float64{0}, Range: []float64{4}}
	mt, err := BuildModeTable(2, b)
	if err != nil {
		t.Fatalf("BuildModeTable failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Encode(ctx, [][]float64{{1}, {2}, {3}}, b, mt); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestEncodeNaNInput(t *testing.T) {
	b := &Bounds{Min: []float64{0}, Range: []float64{4}}
	mt, err := BuildModeTable(2, b)
	if err != nil {
		t.Fatalf("BuildModeTable failed: %v", err)
	}
	set, err := Encode(context.Background(), [][]float64{{math.NaN()}}, b, mt)
	if err != nil {
		t.Fatalf("Encode failed on NaN input: %v", err)
	}
	if set.Bit(0, 0) || set.Bit(0, 1) {
		t.Errorf("NaN input should leave bits unset, got %v", set.Signs(0))
	}
}
