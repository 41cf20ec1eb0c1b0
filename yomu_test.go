package yomu_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashokshau/yomu"
	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/qrdecoder"
	"github.com/ashokshau/yomu/internal/qrfixture"
)

// renderGrayscale rasterizes a module BitMatrix into a grayscale pixel
// buffer at the given per-module scale, surrounded by a quiet_zone-
// module white border, mirroring how a real camera frame presents a
// printed symbol: dark modules become near-black pixels, light modules
// near-white.
func renderGrayscale(m *bitmatrix.BitMatrix, scale, quietZone int) (pixels []byte, width, height int) {
	dim := m.Width()
	width = (dim + 2*quietZone) * scale
	height = width
	pixels = make([]byte, width*height)
	for i := range pixels {
		pixels[i] = 255
	}
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			if !m.Get(col, row) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				py := (row+quietZone)*scale + dy
				for dx := 0; dx < scale; dx++ {
					px := (col+quietZone)*scale + dx
					pixels[py*width+px] = 0
				}
			}
		}
	}
	return pixels, width, height
}

func TestDecodeNumericSymbolEndToEnd(t *testing.T) {
	m, err := qrfixture.EncodeNumeric("1234", qrfixture.Options{Level: qrdecoder.LevelL, Version: 1, MaskPattern: -1})
	require.NoError(t, err)

	pixels, w, h := renderGrayscale(m, 4, 4)

	y := yomu.All()
	result, err := y.Decode(yomu.Image{
		Pixels: pixels, Width: w, Height: h, RowStride: w, Format: yomu.FormatGrayscale,
	})
	require.NoError(t, err)
	require.Equal(t, "1234", result.Text)
	require.Equal(t, yomu.LevelL, result.ECLevel)
}

func TestDecodeByteSymbolEndToEnd(t *testing.T) {
	m, err := qrfixture.EncodeByte([]byte("https://example.com/yomu"), qrfixture.Options{Level: qrdecoder.LevelM, MaskPattern: -1})
	require.NoError(t, err)

	pixels, w, h := renderGrayscale(m, 3, 4)

	y := yomu.All()
	result, err := y.Decode(yomu.Image{
		Pixels: pixels, Width: w, Height: h, RowStride: w, Format: yomu.FormatGrayscale,
	})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/yomu", result.Text)
}

func TestDecodeReturnsSymbolCorners(t *testing.T) {
	m, err := qrfixture.EncodeAlphanumeric("CORNER TEST", qrfixture.Options{Level: qrdecoder.LevelH, MaskPattern: -1})
	require.NoError(t, err)

	pixels, w, h := renderGrayscale(m, 4, 4)

	y := yomu.All()
	result, err := y.Decode(yomu.Image{
		Pixels: pixels, Width: w, Height: h, RowStride: w, Format: yomu.FormatGrayscale,
	})
	require.NoError(t, err)
	require.Len(t, result.SymbolCorners, 4)
}

func TestDecodeUniformNoiseReportsNoSymbolWithoutPanic(t *testing.T) {
	const size = 200
	pixels := make([]byte, size*size)
	seed := uint32(12345)
	for i := range pixels {
		seed = seed*1664525 + 1013904223
		pixels[i] = byte(seed >> 24)
	}

	y := yomu.All()
	require.NotPanics(t, func() {
		_, err := y.Decode(yomu.Image{
			Pixels: pixels, Width: size, Height: size, RowStride: size, Format: yomu.FormatGrayscale,
		})
		require.ErrorIs(t, err, yomu.ErrNoSymbolFound)
	})
}

func TestDecodeAllDisabledQRReturnsEmpty(t *testing.T) {
	y := yomu.New(yomu.WithQRCode(false))
	results, err := y.DecodeAll(yomu.Image{
		Pixels: make([]byte, 100*100), Width: 100, Height: 100, RowStride: 100, Format: yomu.FormatGrayscale,
	})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestDecodeRejectsInvalidImageArguments(t *testing.T) {
	y := yomu.All()
	_, err := y.Decode(yomu.Image{Pixels: nil, Width: 0, Height: 0, RowStride: 0, Format: yomu.FormatGrayscale})
	require.Error(t, err)
	var yerr *yomu.Error
	require.ErrorAs(t, err, &yerr)
	require.Equal(t, yomu.ArgumentError, yerr.Kind)
}

func TestWithLoggerReceivesDetectionDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	y := yomu.New(yomu.WithLogger(logger))
	const size = 64
	pixels := make([]byte, size*size)
	for i := range pixels {
		pixels[i] = 255
	}
	_, err := y.Decode(yomu.Image{
		Pixels: pixels, Width: size, Height: size, RowStride: size, Format: yomu.FormatGrayscale,
	})
	require.ErrorIs(t, err, yomu.ErrNoSymbolFound)
	require.Contains(t, buf.String(), "QR detection failed")
}

func TestWithLoggerIgnoresNilLogger(t *testing.T) {
	y := yomu.New(yomu.WithLogger(nil))
	require.NotNil(t, y)
}

func TestReassembleStructuredAppendOrdersByIndex(t *testing.T) {
	results := []*yomu.DecoderResult{
		{Text: "World", StructuredAppend: &yomu.StructuredAppendInfo{SequenceIndex: 1, SequenceCount: 2, Parity: 0x5}},
		{Text: "Hello ", StructuredAppend: &yomu.StructuredAppendInfo{SequenceIndex: 0, SequenceCount: 2, Parity: 0x5}},
	}
	text, err := yomu.ReassembleStructuredAppend(results)
	require.NoError(t, err)
	require.Equal(t, "Hello World", text)
}

func TestReassembleStructuredAppendRejectsMismatchedParity(t *testing.T) {
	results := []*yomu.DecoderResult{
		{Text: "A", StructuredAppend: &yomu.StructuredAppendInfo{SequenceIndex: 0, SequenceCount: 2, Parity: 0x5}},
		{Text: "B", StructuredAppend: &yomu.StructuredAppendInfo{SequenceIndex: 1, SequenceCount: 2, Parity: 0x9}},
	}
	_, err := yomu.ReassembleStructuredAppend(results)
	require.Error(t, err)
}
