package sh

import (
	"context"

	"github.com/hupe1980/spectral/hashcode"
	"github.com/hupe1980/spectral/projection"
)

// Codec bundles the three trained artifacts (projection, bounds, mode
// table) so callers hold one value per code length. A Codec is
// immutable after Fit and safe for concurrent use.
type Codec struct {
	proj   *projection.Projector
	bounds *Bounds
	modes  *ModeTable
}

// Fit trains a codec on the training matrix: PCA projection to bits
// dimensions, padded bounds of the projected training data, then the
// mode table. eps <= 0 selects DefaultEpsilon.
//
// Requires 1 <= bits <= min(dim, rows); violations surface as a
// projection.DimensionError.
func Fit(train [][]float32, bits int, eps float64) (*Codec, error) {
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	proj, err := projection.Fit(train, bits)
	if err != nil {
		return nil, err
	}
	projected, err := proj.Transform(train)
	if err != nil {
		return nil, err
	}
	bounds, err := FitBounds(projected, eps)
	if err != nil {
		return nil, err
	}
	modes, err := BuildModeTable(bits, bounds)
	if err != nil {
		return nil, err
	}
	return &Codec{proj: proj, bounds: bounds, modes: modes}, nil
}

// Bits returns the code length.
func (c *Codec) Bits() int { return c.modes.Bits() }

// Projector returns the fitted projection.
func (c *Codec) Projector() *projection.Projector { return c.proj }

// Bounds returns the fitted bounds.
func (c *Codec) Bounds() *Bounds { return c.bounds }

// Modes returns the mode table.
func (c *Codec) Modes() *ModeTable { return c.modes }

// Encode projects a batch and encodes it into packed binary codes.
func (c *Codec) Encode(ctx context.Context, x [][]float32) (*hashcode.Set, error) {
	return c.EncodeWorkers(ctx, x, 0)
}

// EncodeWorkers is Encode with an explicit worker bound. workers <= 0
// means GOMAXPROCS.
func (c *Codec) EncodeWorkers(ctx context.Context, x [][]float32, workers int) (*hashcode.Set, error) {
	projected, err := c.proj.Transform(x)
	if err != nil {
		return nil, err
	}
	return EncodeWorkers(ctx, projected, c.bounds, c.modes, workers)
}
