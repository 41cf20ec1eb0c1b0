package binarizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashokshau/yomu/internal/imageprep"
)

func lumBuf(pixels []byte, w, h int) *imageprep.LuminanceBuffer {
	return &imageprep.LuminanceBuffer{Pixels: pixels, Width: w, Height: h}
}

// TestAdaptiveBinarizesTwoRowImage reproduces scenario S3: a 2x2 image
// with rows [64,64] and [192,192] should set the dark top row and
// clear the light bottom row.
func TestAdaptiveBinarizesTwoRowImage(t *testing.T) {
	buf := lumBuf([]byte{64, 64, 192, 192}, 2, 2)
	m, err := Adaptive{}.Binarize(buf, 0.875)
	require.NoError(t, err)
	require.True(t, m.Get(0, 0))
	require.True(t, m.Get(1, 0))
	require.False(t, m.Get(0, 1))
	require.False(t, m.Get(1, 1))
}

func TestAdaptiveOnUniformImageNoneDark(t *testing.T) {
	pixels := make([]byte, 50*50)
	for i := range pixels {
		pixels[i] = 200
	}
	buf := lumBuf(pixels, 50, 50)
	m, err := Adaptive{}.Binarize(buf, 0.875)
	require.NoError(t, err)
	// A perfectly uniform image has no local contrast: every pixel
	// equals its own window mean, which is above the mean scaled by
	// 0.875, so none is marked dark.
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			require.False(t, m.Get(x, y))
		}
	}
}

func TestAdaptiveRejectsInvalidDimensions(t *testing.T) {
	_, err := Adaptive{}.Binarize(lumBuf(nil, 0, 0), 0.875)
	require.Error(t, err)
}

func TestAdaptiveOnLargerCheckerboardImage(t *testing.T) {
	const w, h = 64, 64
	pixels := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/8+y/8)%2 == 0 {
				pixels[y*w+x] = 40
			} else {
				pixels[y*w+x] = 220
			}
		}
	}
	buf := lumBuf(pixels, w, h)
	m, err := Adaptive{}.Binarize(buf, 0.875)
	require.NoError(t, err)
	require.True(t, m.Get(0, 0))
	require.False(t, m.Get(8, 0))
}

// TestEstimateBlackPointMatchesSpecScenario reproduces scenario S4: a
// histogram with a floor of 5 everywhere, peaks of 12 at buckets 5 and
// 25, and a valley at bucket 14 should yield 14<<3 == 112.
func TestEstimateBlackPointMatchesSpecScenario(t *testing.T) {
	var buckets [32]int
	for i := range buckets {
		buckets[i] = 5
	}
	buckets[5] = 12
	buckets[25] = 12
	buckets[14] = 1

	got, err := EstimateBlackPoint(buckets)
	require.NoError(t, err)
	require.Equal(t, 112, got)
}

func TestEstimateBlackPointRejectsFlatHistogram(t *testing.T) {
	var buckets [32]int
	for i := range buckets {
		buckets[i] = 10
	}
	_, err := EstimateBlackPoint(buckets)
	require.ErrorIs(t, err, ErrNoDichotomy)
}

func TestHistogramStrategyBinarizesBimodalImage(t *testing.T) {
	pixels := make([]byte, 100)
	for i := range pixels {
		if i%2 == 0 {
			pixels[i] = 20
		} else {
			pixels[i] = 230
		}
	}
	buf := lumBuf(pixels, 10, 10)
	m, err := Histogram{}.Binarize(buf, 0)
	require.NoError(t, err)
	require.True(t, m.Get(0, 0))
	require.False(t, m.Get(1, 0))
}
