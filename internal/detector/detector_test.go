package detector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashokshau/yomu/internal/bitmatrix"
)

// drawFinderPattern stamps a 7x7 1:1:3:1:1 finder pattern with top-left
// corner at (x, y), each module `scale` pixels wide.
func drawFinderPattern(m *bitmatrix.BitMatrix, x, y, scale int) {
	ring := [7][7]int{
		{1, 1, 1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0, 0, 1},
		{1, 0, 1, 1, 1, 0, 1},
		{1, 0, 1, 1, 1, 0, 1},
		{1, 0, 1, 1, 1, 0, 1},
		{1, 0, 0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1, 1, 1},
	}
	for row := 0; row < 7; row++ {
		for col := 0; col < 7; col++ {
			if ring[row][col] == 1 {
				m.SetRegion(x+col*scale, y+row*scale, scale, scale)
			}
		}
	}
}

// buildSyntheticSymbol draws three finder patterns at the corners of a
// dimension x dimension grid (scale pixels per module) so the finder
// scan has a realistic triplet to recover.
func buildSyntheticSymbol(dimension, scale int) *bitmatrix.BitMatrix {
	size := dimension * scale
	m := bitmatrix.New(size, size)
	drawFinderPattern(m, 0, 0, scale)
	drawFinderPattern(m, (dimension-7)*scale, 0, scale)
	drawFinderPattern(m, 0, (dimension-7)*scale, scale)
	return m
}

func TestFinderScanLocatesThreePatterns(t *testing.T) {
	m := buildSyntheticSymbol(21, 4)
	finder := &finderPatternFinder{image: m}
	info, err := finder.find(true)
	require.NoError(t, err)
	require.NotNil(t, info.TopLeft)
	require.NotNil(t, info.TopRight)
	require.NotNil(t, info.BottomLeft)

	// topLeft should be nearest the origin corner.
	require.Less(t, info.TopLeft.X, info.TopRight.X)
	require.Less(t, info.TopLeft.Y, info.BottomLeft.Y)
}

func TestFoundPatternCrossRejectsBadRatio(t *testing.T) {
	require.False(t, foundPatternCross([5]int{1, 1, 1, 1, 1}))
	require.True(t, foundPatternCross([5]int{4, 4, 12, 4, 4}))
}

func TestDetectEndToEndOnSyntheticSymbol(t *testing.T) {
	m := buildSyntheticSymbol(21, 4)
	result, err := Detect(m, true, defaultAlignmentAllowance)
	require.NoError(t, err)
	require.NotNil(t, result.Bits)
	require.InDelta(t, 21, result.Dimension, 2)
}

func TestComputeDimensionRounding(t *testing.T) {
	tl := &FinderPattern{X: 10, Y: 10, EstimatedModuleSize: 4}
	tr := &FinderPattern{X: 10 + 14*4, Y: 10, EstimatedModuleSize: 4}
	bl := &FinderPattern{X: 10, Y: 10 + 14*4, EstimatedModuleSize: 4}
	dim, err := computeDimension(tl, tr, bl, 4)
	require.NoError(t, err)
	require.Equal(t, 21, dim)
}
