// Package binarizer turns a grayscale LuminanceBuffer into a BitMatrix
// of "dark" bits, via a local adaptive threshold (the default path) or
// a global histogram threshold (an alternate Strategy implementation,
// kept because the source library carries both and the port doesn't
// pin down whether the histogram variant should remain reachable).
// The adaptive algorithm and its required rolling-integral-image
// discipline are new code written directly from the component's
// description; the BitMatrix it writes into is the same packed
// word-per-row structure as internal/bitmatrix, generalizing the
// byte-stride Code.Bitmap idiom in inkstray-rsc-qr's coding/qr.go.
package binarizer

import (
	"fmt"

	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/imageprep"
)

// Strategy binarizes a luminance buffer into a BitMatrix.
type Strategy interface {
	Binarize(buf *imageprep.LuminanceBuffer, thresholdFactor float64) (*bitmatrix.BitMatrix, error)
}

// Adaptive is the default strategy: a local-mean threshold over a
// sliding square window, computed from a rolling integral-image ring
// buffer so memory is O(width * windowSize) rather than O(width *
// height).
type Adaptive struct{}

// windowSize returns W = max(max(width,height)/32, 40), clamped to
// min(width, height).
func windowSize(width, height int) int {
	w := max(width, height) / 32
	if w < 40 {
		w = 40
	}
	if m := min(width, height); w > m {
		w = m
	}
	return w
}

func (Adaptive) Binarize(buf *imageprep.LuminanceBuffer, thresholdFactor float64) (*bitmatrix.BitMatrix, error) {
	width, height := buf.Width, buf.Height
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("binarizer: invalid dimensions %dx%d", width, height)
	}
	if thresholdFactor <= 0 || thresholdFactor > 1 {
		thresholdFactor = 0.875
	}

	w := windowSize(width, height)
	halfW := w / 2
	scaledFactor := int(thresholdFactor*256 + 0.5)

	out := bitmatrix.New(width, height)
	pixels := buf.Pixels

	// ring holds W+2 rows of running horizontal prefix sums, each
	// combined with the row above it so ring[k][x] is the integral of
	// the rectangle [0,x) x [0,rowOf(k)] — i.e. a standard 2D integral
	// image restricted to a rolling window of rows.
	ringRows := w + 2
	ring := make([][]int32, ringRows)
	for i := range ring {
		ring[i] = make([]int32, width+1)
	}

	rowIntegral := func(k int) []int32 { return ring[((k%ringRows)+ringRows)%ringRows] }

	buildRow := func(y int) {
		dst := rowIntegral(y)
		if y < 0 {
			for x := range dst {
				dst[x] = 0
			}
			return
		}
		prev := rowIntegral(y - 1)
		src := pixels[y*width : (y+1)*width]
		var rowSum int32
		dst[0] = 0
		for x := 0; x < width; x++ {
			rowSum += int32(src[x])
			above := int32(0)
			if y > 0 {
				above = prev[x+1]
			}
			dst[x+1] = above + rowSum
		}
	}

	// Seed the ring with rows [-halfW-1, halfW-1] relative to the first
	// threshold row (row 0), so enough lookahead exists once the main
	// loop starts.
	for y := -halfW - 1; y < halfW; y++ {
		buildRow(y)
	}

	rectSum := func(yTop, yBottom, xLeft, xRight int) int32 {
		top := rowIntegral(yTop - 1)
		bottom := rowIntegral(yBottom)
		return bottom[xRight] - bottom[xLeft] - top[xRight] + top[xLeft]
	}

	for y := 0; y < height; y++ {
		if y+halfW < height {
			buildRow(y + halfW)
		}

		yTop := max(0, y-halfW)
		yBottom := min(height-1, y+halfW)

		rowHeight := yBottom - yTop + 1

		// Left boundary: x-halfW clips to 0, so every pixel needs the
		// max(). Right boundary: x+halfW clips to width-1, needs the
		// min(). The core between them needs neither — precomputing
		// area << 8 once per row there instead of per pixel.
		leftBoundary := min(halfW, width)
		rightBoundaryStart := max(leftBoundary, width-halfW)

		for x := 0; x < leftBoundary; x++ {
			xL, xR := 0, min(width-1, x+halfW)+1
			area := rowHeight * (xR - xL)
			windowSum := rectSum(yTop, yBottom, xL, xR)
			pixel := int32(pixels[y*width+x])
			if int64(pixel)*int64(area)*256 <= int64(windowSum)*int64(scaledFactor) {
				out.Set(x, y)
			}
		}

		coreAreaScaled := int64(rowHeight*(2*halfW+1)) << 8
		for x := leftBoundary; x < rightBoundaryStart; x++ {
			xL, xR := x-halfW, x+halfW+1
			windowSum := rectSum(yTop, yBottom, xL, xR)
			pixel := int32(pixels[y*width+x])
			if int64(pixel)*coreAreaScaled <= int64(windowSum)*int64(scaledFactor) {
				out.Set(x, y)
			}
		}

		for x := rightBoundaryStart; x < width; x++ {
			xL, xR := max(0, x-halfW), width
			area := rowHeight * (xR - xL)
			windowSum := rectSum(yTop, yBottom, xL, xR)
			pixel := int32(pixels[y*width+x])
			if int64(pixel)*int64(area)*256 <= int64(windowSum)*int64(scaledFactor) {
				out.Set(x, y)
			}
		}
	}

	return out, nil
}
