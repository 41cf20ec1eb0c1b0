package transform

import (
	"errors"
	"fmt"

	"github.com/ashokshau/yomu/internal/bitmatrix"
)

// ErrSampleOutOfBounds is returned when too much of the sampled grid
// would fall outside the source image, signaling the detected
// quadrilateral is unusable.
var ErrSampleOutOfBounds = errors.New("transform: sampling grid extends too far outside the image")

// SampleGrid resamples src through t into a dimension x dimension
// module grid: module (i, j)'s center is the module-space point
// (i+0.5, j+0.5), transformed by t into source-image coordinates, then
// read as a single pixel (nearest-sample, no interpolation — the same
// approach the finder/alignment pattern math already assumes when it
// measures module size in whole pixels).
func SampleGrid(src *bitmatrix.BitMatrix, dimension int, t *PerspectiveTransform) (*bitmatrix.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("transform: invalid dimension %d", dimension)
	}

	xs := make([]float64, dimension)
	for i := 0; i < dimension; i++ {
		xs[i] = float64(i) + 0.5
	}

	out := bitmatrix.New(dimension, dimension)
	outOfBounds := 0
	for y := 0; y < dimension; y++ {
		rowXs := make([]float64, dimension)
		copy(rowXs, xs)
		rowYs := make([]float64, dimension)
		for i := range rowYs {
			rowYs[i] = float64(y) + 0.5
		}
		t.TransformPoints(rowXs, rowYs)

		for x := 0; x < dimension; x++ {
			px, py := int(rowXs[x]), int(rowYs[x])
			if px < 0 || px >= src.Width() || py < 0 || py >= src.Height() {
				outOfBounds++
				continue
			}
			if src.Get(px, py) {
				out.Set(x, y)
			}
		}
	}

	// A handful of samples landing just outside the source is normal
	// (rounding at the symbol's physical edge); too many means the
	// transform itself is wrong.
	if outOfBounds > dimension {
		return nil, ErrSampleOutOfBounds
	}
	return out, nil
}
