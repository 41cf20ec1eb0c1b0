package binarizer

import (
	"errors"

	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/imageprep"
)

// numBuckets and luminanceShift bucket the 0-255 luminance range into
// 32 bins of 8 levels each (256 >> 3 == 32), the same bucketing scheme
// ZXing's GlobalHistogramBinarizer uses.
const (
	numBuckets     = 32
	luminanceShift = 3
)

// ErrNoDichotomy means the histogram doesn't show two separable peaks,
// so a single global threshold isn't meaningful for this image.
var ErrNoDichotomy = errors.New("binarizer: histogram has no black/white dichotomy")

// Histogram is the alternate global-threshold strategy: build one
// luminance histogram for the whole image, estimate a single black
// point from its bimodal shape, and threshold every pixel against it.
// Exposed alongside Adaptive (which the façade actually uses) since
// both exist side by side upstream.
type Histogram struct{}

func (Histogram) Binarize(buf *imageprep.LuminanceBuffer, _ float64) (*bitmatrix.BitMatrix, error) {
	var buckets [numBuckets]int
	for _, p := range buf.Pixels {
		buckets[int(p)>>luminanceShift]++
	}

	blackPoint, err := EstimateBlackPoint(buckets)
	if err != nil {
		return nil, err
	}

	out := bitmatrix.New(buf.Width, buf.Height)
	for y := 0; y < buf.Height; y++ {
		row := buf.Pixels[y*buf.Width : (y+1)*buf.Width]
		for x, p := range row {
			if int(p) < blackPoint {
				out.Set(x, y)
			}
		}
	}
	return out, nil
}

// EstimateBlackPoint finds the single best luminance threshold from a
// 32-bucket histogram: locate the two strongest peaks, then the bucket
// between them with the lowest count weighted by distance from each
// peak (the valley). Returns the threshold in full 0-255 luminance
// units (bucket index << luminanceShift).
func EstimateBlackPoint(buckets [numBuckets]int) (int, error) {
	firstPeak := 0
	firstPeakSize := 0
	maxBucketCount := 0
	for x := 0; x < numBuckets; x++ {
		if buckets[x] > firstPeakSize {
			firstPeak = x
			firstPeakSize = buckets[x]
		}
		if buckets[x] > maxBucketCount {
			maxBucketCount = buckets[x]
		}
	}

	secondPeak := 0
	secondPeakScore := 0
	for x := 0; x < numBuckets; x++ {
		distance := x - firstPeak
		score := buckets[x] * distance * distance
		if score > secondPeakScore {
			secondPeak = x
			secondPeakScore = score
		}
	}
	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}

	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, ErrNoDichotomy
	}

	bestValley := secondPeak - 1
	bestValleyScore := -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		fromFirst := x - firstPeak
		score := fromFirst * fromFirst * (secondPeak - x) * (maxBucketCount - buckets[x])
		if score > bestValleyScore {
			bestValley = x
			bestValleyScore = score
		}
	}
	if bestValleyScore <= 0 {
		return 0, ErrNoDichotomy
	}

	return bestValley << luminanceShift, nil
}
