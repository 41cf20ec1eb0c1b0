package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashokshau/yomu/internal/bitmatrix"
)

func approxEqual(t *testing.T, want, got float64) {
	t.Helper()
	require.InDelta(t, want, got, 1e-6)
}

func TestSquareToQuadrilateralIdentityOnUnitSquare(t *testing.T) {
	// A square mapped onto itself should be the identity.
	tr := SquareToQuadrilateral(0, 0, 1, 0, 1, 1, 0, 1)
	x, y := tr.TransformPoint(0, 0)
	approxEqual(t, 0, x)
	approxEqual(t, 0, y)
	x, y = tr.TransformPoint(1, 1)
	approxEqual(t, 1, x)
	approxEqual(t, 1, y)
	x, y = tr.TransformPoint(0.5, 0.5)
	approxEqual(t, 0.5, x)
	approxEqual(t, 0.5, y)
}

func TestSquareToQuadrilateralMapsCorners(t *testing.T) {
	tr := SquareToQuadrilateral(10, 20, 110, 25, 105, 120, 8, 115)
	x, y := tr.TransformPoint(0, 0)
	approxEqual(t, 10, x)
	approxEqual(t, 20, y)
	x, y = tr.TransformPoint(1, 0)
	approxEqual(t, 110, x)
	approxEqual(t, 25, y)
	x, y = tr.TransformPoint(1, 1)
	approxEqual(t, 105, x)
	approxEqual(t, 120, y)
	x, y = tr.TransformPoint(0, 1)
	approxEqual(t, 8, x)
	approxEqual(t, 115, y)
}

func TestQuadrilateralToQuadrilateralRoundTrip(t *testing.T) {
	tr := QuadrilateralToQuadrilateral(
		10, 20, 110, 25, 105, 120, 8, 115,
		0, 0, 21, 0, 21, 21, 0, 21,
	)
	x, y := tr.TransformPoint(10, 20)
	approxEqual(t, 0, x)
	approxEqual(t, 0, y)
	x, y = tr.TransformPoint(105, 120)
	approxEqual(t, 21, x)
	approxEqual(t, 21, y)
}

func TestTransformPointsBatchMatchesSingle(t *testing.T) {
	tr := SquareToQuadrilateral(0, 0, 50, 2, 48, 49, -1, 47)
	xs := []float64{0, 0.25, 0.5, 0.75, 1}
	ys := []float64{0, 0.25, 0.5, 0.75, 1}
	gotXs := make([]float64, len(xs))
	copy(gotXs, xs)
	gotYs := make([]float64, len(ys))
	copy(gotYs, ys)
	tr.TransformPoints(gotXs, gotYs)

	for i := range xs {
		wantX, wantY := tr.TransformPoint(xs[i], ys[i])
		approxEqual(t, wantX, gotXs[i])
		approxEqual(t, wantY, gotYs[i])
	}
}

func TestSampleGridReadsModulesUnderIdentity(t *testing.T) {
	src := bitmatrix.New(4, 4)
	src.Set(0, 0)
	src.Set(2, 2)

	tr := SquareToQuadrilateral(0, 0, 1, 0, 1, 1, 0, 1)
	grid, err := SampleGrid(src, 4, tr)
	require.NoError(t, err)
	require.True(t, grid.Get(0, 0))
	require.True(t, grid.Get(2, 2))
	require.False(t, grid.Get(1, 1))
}

func TestSampleGridRejectsWildTransform(t *testing.T) {
	src := bitmatrix.New(4, 4)
	tr := SquareToQuadrilateral(1000, 1000, 1001, 1000, 1001, 1001, 1000, 1001)
	_, err := SampleGrid(src, 21, tr)
	require.ErrorIs(t, err, ErrSampleOutOfBounds)
}

func TestNoNaNOnDegenerateButValidAffineCase(t *testing.T) {
	// A perfect parallelogram hits the affine fast path.
	tr := SquareToQuadrilateral(0, 0, 10, 0, 10, 10, 0, 10)
	x, y := tr.TransformPoint(0.5, 0.5)
	require.False(t, math.IsNaN(x))
	require.False(t, math.IsNaN(y))
}

func TestNoNaNOnNearDegenerateNonParallelogramQuad(t *testing.T) {
	// Constructed so dx3/dy3 are not both exactly zero (so this doesn't
	// take the exact-parallelogram affine fast path), but the projective
	// denominator (dx1*dy2 - dx2*dy1) works out to 1e-12 — comfortably
	// under the 1e-10 degenerate-denominator guard. Without that guard
	// this divides by a near-zero value and produces Inf/NaN
	// coefficients.
	const eps = 1e-12
	tr := SquareToQuadrilateral(2, 2, 1, 1, 0, 0, 1, 1+eps)
	x, y := tr.TransformPoint(0.5, 0.5)
	require.False(t, math.IsNaN(x))
	require.False(t, math.IsNaN(y))
	require.False(t, math.IsInf(x, 0))
	require.False(t, math.IsInf(y, 0))
}
