// Package imageprep converts caller-supplied pixel buffers (grayscale,
// RGBA, or BGRA) into a packed luminance buffer sized for the decode
// pipeline, downsampling oversized frames. Grounded on the
// PixelRole/Pixel bit-packing idiom in inkstray-rsc-qr's coding/qr.go,
// generalized here from "QR module bit" packing to grayscale byte
// packing, and on the tagged-pixel-format dispatch the teacher's
// encoder.go uses for its own matrix construction (switch over a closed
// enum instead of runtime polymorphism).
package imageprep

import (
	"fmt"
	"math"
)

// Format is the closed set of pixel layouts this module accepts.
type Format int

const (
	Grayscale Format = iota
	RGBA
	BGRA
)

func (f Format) bytesPerPixel() int {
	switch f {
	case Grayscale:
		return 1
	case RGBA, BGRA:
		return 4
	default:
		return 0
	}
}

// targetPixels bounds the output grayscale buffer's pixel count; larger
// source frames are downsampled to approximately this size before the
// rest of the pipeline runs.
const targetPixels = 1_000_000

// LuminanceBuffer is the packed 8-bit-per-pixel grayscale buffer the
// binarizer consumes.
type LuminanceBuffer struct {
	Pixels        []byte
	Width, Height int
}

// Prepare validates and converts a caller pixel buffer into a
// LuminanceBuffer, downsampling if the source exceeds targetPixels.
func Prepare(pixels []byte, width, height, rowStride int, format Format) (*LuminanceBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imageprep: invalid dimensions %dx%d", width, height)
	}
	bpp := format.bytesPerPixel()
	minStride := width * bpp
	if rowStride < minStride {
		return nil, fmt.Errorf("imageprep: rowStride %d below minimum %d", rowStride, minStride)
	}
	if len(pixels) < rowStride*height {
		return nil, fmt.Errorf("imageprep: buffer length %d too small for %d rows of stride %d", len(pixels), height, rowStride)
	}

	totalPixels := width * height
	if totalPixels <= targetPixels {
		return passThrough(pixels, width, height, rowStride, format)
	}
	return downsample(pixels, width, height, rowStride, format)
}

func passThrough(pixels []byte, width, height, rowStride int, format Format) (*LuminanceBuffer, error) {
	if format == Grayscale && rowStride == width {
		out := make([]byte, width*height)
		copy(out, pixels[:width*height])
		return &LuminanceBuffer{Pixels: out, Width: width, Height: height}, nil
	}

	out := make([]byte, width*height)
	for y := 0; y < height; y++ {
		row := pixels[y*rowStride:]
		dst := out[y*width : (y+1)*width]
		if format == Grayscale {
			copy(dst, row[:width])
			continue
		}
		convertRow(row, dst, width, format)
	}
	return &LuminanceBuffer{Pixels: out, Width: width, Height: height}, nil
}

func downsample(pixels []byte, width, height, rowStride int, format Format) (*LuminanceBuffer, error) {
	totalPixels := width * height
	scale := int(math.Ceil(math.Sqrt(float64(totalPixels) / float64(targetPixels))))
	if scale < 1 {
		scale = 1
	}
	if scale > 8 {
		scale = 8
	}

	outW := width / scale
	outH := height / scale
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	out := make([]byte, outW*outH)
	bpp := format.bytesPerPixel()
	for dy := 0; dy < outH; dy++ {
		srcY := dy*scale + scale/2
		if srcY >= height {
			srcY = height - 1
		}
		rowStart := srcY * rowStride
		for dx := 0; dx < outW; dx++ {
			srcX := dx*scale + scale/2
			if srcX >= width {
				srcX = width - 1
			}
			if format == Grayscale {
				out[dy*outW+dx] = pixels[rowStart+srcX]
				continue
			}
			off := rowStart + srcX*bpp
			out[dy*outW+dx] = toGray(pixels[off], pixels[off+1], pixels[off+2], format)
		}
	}
	return &LuminanceBuffer{Pixels: out, Width: outW, Height: outH}, nil
}

func convertRow(row, dst []byte, width int, format Format) {
	for x := 0; x < width; x++ {
		off := x * 4
		dst[x] = toGray(row[off], row[off+1], row[off+2], format)
	}
}

// toGray applies the integer luminance approximation Y = (306R +
// 601G + 117B) >> 10, equivalent to the 0.299/0.587/0.114 ITU-R
// weights scaled by 1024. b0/b1/b2 are the buffer's first three
// channel bytes in source order; format tells us whether that's R,G,B
// (RGBA) or B,G,R (BGRA).
func toGray(b0, b1, b2 byte, format Format) byte {
	var r, g, b byte
	if format == BGRA {
		b, g, r = b0, b1, b2
	} else {
		r, g, b = b0, b1, b2
	}
	if r == g && g == b {
		return r
	}
	y := (306*int(r) + 601*int(g) + 117*int(b)) >> 10
	return byte(y)
}

// FromARGBInts converts a caller-supplied slice of packed 32-bit ARGB
// integers (alpha in bits 24-31, then R, G, B) into a LuminanceBuffer
// directly, without an intermediate byte buffer. This mirrors the
// source library's RGBLuminanceSource entry point, kept here as a
// public conversion helper for callers that already have decoded
// pixels in memory (e.g. from an image/color.RGBA buffer) rather than
// a raw byte stream.
func FromARGBInts(argb []int32, width, height int) (*LuminanceBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imageprep: invalid dimensions %dx%d", width, height)
	}
	if len(argb) < width*height {
		return nil, fmt.Errorf("imageprep: argb buffer length %d too small for %dx%d", len(argb), width, height)
	}

	out := make([]byte, width*height)
	for i := 0; i < width*height; i++ {
		px := uint32(argb[i])
		r := byte(px >> 16)
		g := byte(px >> 8)
		b := byte(px)
		out[i] = toGray(r, g, b, RGBA)
	}
	return &LuminanceBuffer{Pixels: out, Width: width, Height: height}, nil
}
