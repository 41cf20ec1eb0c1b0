package imageprep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrepareGrayscalePassThrough(t *testing.T) {
	pixels := []byte{10, 20, 30, 40}
	buf, err := Prepare(pixels, 2, 2, 2, Grayscale)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 30, 40}, buf.Pixels)
	require.Equal(t, 2, buf.Width)
	require.Equal(t, 2, buf.Height)
}

func TestPrepareGrayscaleStrippedStride(t *testing.T) {
	// stride 3, width 2: each row has one padding byte.
	pixels := []byte{10, 20, 0xFF, 30, 40, 0xFF}
	buf, err := Prepare(pixels, 2, 2, 3, Grayscale)
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 30, 40}, buf.Pixels)
}

func TestPrepareRejectsShortBuffer(t *testing.T) {
	_, err := Prepare([]byte{1, 2, 3}, 2, 2, 2, Grayscale)
	require.Error(t, err)
}

func TestPrepareRejectsNonPositiveDimensions(t *testing.T) {
	_, err := Prepare([]byte{}, 0, 2, 2, Grayscale)
	require.Error(t, err)
}

func TestPrepareRejectsShortStride(t *testing.T) {
	_, err := Prepare([]byte{1, 2, 3, 4}, 4, 1, 2, Grayscale)
	require.Error(t, err)
}

// TestFromARGBIntsMatchesSpecScenario reproduces the seed scenario: a
// 2x2 image [Red, Green; Blue, White] in ARGB ints should yield the
// luminance row [76, 150, 29, 255] (+/-1 for rounding).
func TestFromARGBIntsMatchesSpecScenario(t *testing.T) {
	red := uint32(0xFFFF0000)
	green := uint32(0xFF00FF00)
	blue := uint32(0xFF0000FF)
	white := uint32(0xFFFFFFFF)

	buf, err := FromARGBInts([]int32{int32(red), int32(green), int32(blue), int32(white)}, 2, 2)
	require.NoError(t, err)
	require.InDelta(t, 76, int(buf.Pixels[0]), 1)
	require.InDelta(t, 150, int(buf.Pixels[1]), 1)
	require.InDelta(t, 29, int(buf.Pixels[2]), 1)
	require.InDelta(t, 255, int(buf.Pixels[3]), 1)
}

func TestToGrayShortcutsPureGray(t *testing.T) {
	require.Equal(t, byte(128), toGray(128, 128, 128, RGBA))
}

func TestToGraySwapsChannelsForBGRA(t *testing.T) {
	// pure red in BGRA order means b0=B=0, b1=G=0, b2=R=255
	rgbaY := toGray(255, 0, 0, RGBA)
	bgraY := toGray(0, 0, 255, BGRA)
	require.Equal(t, rgbaY, bgraY)
}

func TestPrepareDownsamplesOversizedFrame(t *testing.T) {
	const w, h = 2000, 2000
	pixels := make([]byte, w*h)
	buf, err := Prepare(pixels, w, h, w, Grayscale)
	require.NoError(t, err)
	require.LessOrEqual(t, buf.Width*buf.Height, 1_000_000)
	require.Greater(t, buf.Width, 0)
	require.Greater(t, buf.Height, 0)
}
