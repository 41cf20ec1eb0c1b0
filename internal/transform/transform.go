// Package transform implements the perspective homography used to map
// between the ideal square module grid and the quadrilateral a QR
// symbol occupies in the source image, plus the grid sampler built on
// top of it. Grounded on ericlevine-zxinggo's detector.go, which builds
// a transform.PerspectiveTransform from the three finder patterns (and
// an optional alignment pattern) via QuadrilateralToQuadrilateral; the
// transform math itself follows the classical ZXing PerspectiveTransform
// construction (solve a unit-square-to-quadrilateral projective map,
// then compose two such maps back to back for the general
// quad-to-quad case).
package transform

import (
	"fmt"
	"math"
)

// degenerateDenominatorThreshold is the minimum acceptable magnitude for
// SquareToQuadrilateral's projective denominator; below this the
// quadrilateral is treated as a parallelogram (affine case) rather than
// dividing by a near-zero value, per spec.md §4.6.
const degenerateDenominatorThreshold = 1e-10

// PerspectiveTransform is a 3x3 projective transform, applied to a
// point (x, y) as:
//
//	x' = (a11*x + a21*y + a31) / (a13*x + a23*y + a33)
//	y' = (a12*x + a22*y + a32) / (a13*x + a23*y + a33)
type PerspectiveTransform struct {
	a11, a21, a31 float64
	a12, a22, a32 float64
	a13, a23, a33 float64
}

// TransformPoint applies the transform to (x, y).
func (t *PerspectiveTransform) TransformPoint(x, y float64) (float64, float64) {
	denom := t.a13*x + t.a23*y + t.a33
	return (t.a11*x + t.a21*y + t.a31) / denom, (t.a12*x + t.a22*y + t.a32) / denom
}

// TransformPoints applies the transform to parallel x/y slices in
// place, the batch form the grid sampler's hot loop uses.
func (t *PerspectiveTransform) TransformPoints(xs, ys []float64) {
	for i := range xs {
		xs[i], ys[i] = t.TransformPoint(xs[i], ys[i])
	}
}

// times composes two transforms: applying the result is equivalent to
// applying t first, then other (matrix multiplication other * t).
func (t *PerspectiveTransform) times(o *PerspectiveTransform) *PerspectiveTransform {
	return &PerspectiveTransform{
		a11: t.a11*o.a11 + t.a12*o.a21 + t.a13*o.a31,
		a12: t.a11*o.a12 + t.a12*o.a22 + t.a13*o.a32,
		a13: t.a11*o.a13 + t.a12*o.a23 + t.a13*o.a33,
		a21: t.a21*o.a11 + t.a22*o.a21 + t.a23*o.a31,
		a22: t.a21*o.a12 + t.a22*o.a22 + t.a23*o.a32,
		a23: t.a21*o.a13 + t.a22*o.a23 + t.a23*o.a33,
		a31: t.a31*o.a11 + t.a32*o.a21 + t.a33*o.a31,
		a32: t.a31*o.a12 + t.a32*o.a22 + t.a33*o.a32,
		a33: t.a31*o.a13 + t.a32*o.a23 + t.a33*o.a33,
	}
}

// SquareToQuadrilateral builds the projective map sending the unit
// square (0,0),(1,0),(1,1),(0,1) onto the quadrilateral (x0,y0) ..
// (x3,y3), given in the same winding order.
func SquareToQuadrilateral(x0, y0, x1, y1, x2, y2, x3, y3 float64) *PerspectiveTransform {
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3

	if dx3 == 0 && dy3 == 0 {
		// Affine case: the quadrilateral is a parallelogram.
		return &PerspectiveTransform{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a13: 0, a23: 0, a33: 1,
		}
	}

	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2

	denominator := dx1*dy2 - dx2*dy1
	if math.Abs(denominator) < degenerateDenominatorThreshold {
		// Near-degenerate quadrilateral: fall back to the affine map
		// rather than dividing by a near-zero denominator.
		return &PerspectiveTransform{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a13: 0, a23: 0, a33: 1,
		}
	}
	a13 := (dx3*dy2 - dx2*dy3) / denominator
	a23 := (dx1*dy3 - dx3*dy1) / denominator

	return &PerspectiveTransform{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// quadrilateralToSquare inverts SquareToQuadrilateral: maps the
// quadrilateral back onto the unit square.
func quadrilateralToSquare(x0, y0, x1, y1, x2, y2, x3, y3 float64) *PerspectiveTransform {
	return SquareToQuadrilateral(x0, y0, x1, y1, x2, y2, x3, y3).buildAdjoint()
}

// buildAdjoint returns the adjugate of a 3x3 matrix, equal to its
// inverse up to scale. For a projective transform, scaling every entry
// by a nonzero constant produces an equivalent map, so the adjugate
// suffices in place of a true inverse.
func (t *PerspectiveTransform) buildAdjoint() *PerspectiveTransform {
	return &PerspectiveTransform{
		a11: t.a22*t.a33 - t.a23*t.a32,
		a21: t.a23*t.a31 - t.a21*t.a33,
		a31: t.a21*t.a32 - t.a22*t.a31,
		a12: t.a13*t.a32 - t.a12*t.a33,
		a22: t.a11*t.a33 - t.a13*t.a31,
		a32: t.a12*t.a31 - t.a11*t.a32,
		a13: t.a12*t.a23 - t.a13*t.a22,
		a23: t.a13*t.a21 - t.a11*t.a23,
		a33: t.a11*t.a22 - t.a12*t.a21,
	}
}

// QuadrilateralToQuadrilateral builds the transform mapping the source
// quadrilateral onto the destination quadrilateral, by composing
// source -> unit square -> destination.
func QuadrilateralToQuadrilateral(
	x0, y0, x1, y1, x2, y2, x3, y3,
	x0p, y0p, x1p, y1p, x2p, y2p, x3p, y3p float64,
) *PerspectiveTransform {
	toSquare := quadrilateralToSquare(x0, y0, x1, y1, x2, y2, x3, y3)
	squareToDest := SquareToQuadrilateral(x0p, y0p, x1p, y1p, x2p, y2p, x3p, y3p)
	return toSquare.times(squareToDest)
}

// String renders the matrix for debug logging.
func (t *PerspectiveTransform) String() string {
	return fmt.Sprintf("[[%g %g %g] [%g %g %g] [%g %g %g]]",
		t.a11, t.a21, t.a31, t.a12, t.a22, t.a32, t.a13, t.a23, t.a33)
}
