package testutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
// Uses Gaussian distribution for uniform distribution on the sphere.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		var norm float64
		for j := range vec {
			v := r.rand.NormFloat64()
			vec[j] = float32(v)
			norm += v * v
		}

		if norm == 0 {
			norm = 1 // Avoid division by zero, though unlikely with floats
		}

		invNorm := float32(1.0 / math.Sqrt(norm))
		for j := range vec {
			vec[j] *= invNorm
		}
		vectors[i] = vec
	}

	return vectors
}

// LabeledClusters generates vectors around well-separated centroids and
// returns each row's cluster index as its class label. Rows are
// assigned round-robin, so every cluster is populated when num >= clusters.
func (r *RNG) LabeledClusters(num, dim, clusters int, spread float32) ([][]float32, []uint32) {
	centroids := r.UnitVectors(clusters, dim)
	// Scale centroids apart so cluster structure survives the noise.
	for _, c := range centroids {
		for j := range c {
			c[j] *= 10 * spread * float32(math.Sqrt(float64(dim)))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)
	labels := make([]uint32, num)

	for i := range num {
		cluster := i % clusters
		centroid := centroids[cluster]
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
		labels[i] = uint32(cluster)
	}

	return vectors, labels
}

// WriteFvecs writes vectors in the fvecs layout: per row a little-endian
// int32 dimension followed by that many float32 values. Useful for
// building loader fixtures.
func WriteFvecs(w io.Writer, vectors [][]float32) error {
	for i, vec := range vectors {
		if err := binary.Write(w, binary.LittleEndian, int32(len(vec))); err != nil {
			return fmt.Errorf("write row %d header: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write row %d payload: %w", i, err)
		}
	}
	return nil
}

// WriteIvecs writes label rows in the ivecs layout: per row a
// little-endian int32 count followed by that many uint32 values.
func WriteIvecs(w io.Writer, rows [][]uint32) error {
	for i, row := range rows {
		if err := binary.Write(w, binary.LittleEndian, int32(len(row))); err != nil {
			return fmt.Errorf("write row %d header: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("write row %d payload: %w", i, err)
		}
	}
	return nil
}
