package yomu

import (
	"errors"
	"log/slog"

	"github.com/ashokshau/yomu/internal/binarizer"
	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/detector"
	"github.com/ashokshau/yomu/internal/imageprep"
	"github.com/ashokshau/yomu/internal/qrdecoder"
	"github.com/ashokshau/yomu/internal/reedsolomon"
)

// tightAlignmentAllowance is the always-attempted first alignment
// search radius (in modules), per spec.md §4.11.
const tightAlignmentAllowance = 5

// Format is the closed set of pixel layouts Decode/DecodeAll accept.
type Format = imageprep.Format

const (
	FormatGrayscale = imageprep.Grayscale
	FormatRGBA      = imageprep.RGBA
	FormatBGRA      = imageprep.BGRA
)

// Image is a caller-owned, read-only pixel buffer. The library borrows
// it for the duration of one Decode/DecodeAll call and never retains a
// reference afterward.
type Image struct {
	Pixels    []byte
	Width     int
	Height    int
	RowStride int
	Format    Format
}

// Yomu is an immutable decode configuration, safe to share across
// goroutines. Build one with New or a preset (All, QROnly, BarcodeOnly)
// and reuse it for every Decode/DecodeAll call.
type Yomu struct {
	enableQRCode           bool
	barcodeScanner         BarcodeScanner
	binarizerThreshold     float64
	alignmentAreaAllowance int
	logger                 *slog.Logger
}

// Decode attempts to locate and read a single symbol. It tries the QR
// path first (tight alignment allowance, then the configured loose
// allowance on any detection failure), then barcode scanning if
// enabled, returning ErrNoSymbolFound if neither produces a result.
func (y *Yomu) Decode(img Image) (*DecoderResult, error) {
	results, err := y.decodeQR(img, 1)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results[0], nil
	}
	return nil, ErrNoSymbolFound
}

// DecodeAll locates and reads every QR symbol in the image (multi-
// detection); barcode scanning, being single-symbol, does not
// contribute to this call. Returns an empty slice, not an error, when
// QR decoding is disabled or nothing is found — matching spec.md §6.
func (y *Yomu) DecodeAll(img Image) ([]*DecoderResult, error) {
	if !y.enableQRCode {
		return nil, nil
	}
	results, err := y.decodeQR(img, 0)
	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == DetectionError {
			return nil, nil
		}
		return nil, err
	}
	return results, nil
}

// decodeQR runs the shared pipeline prefix (ImagePrep, Binarizer,
// Detector with the tight-then-loose retry ladder) then, for each
// detected symbol, grid sampling and the full BitMatrixParser/
// DecodedBitStreamParser decode. maxSymbols caps detector.DetectAll (0
// = unbounded); callers wanting a single result pass 1.
//
// A panic anywhere in the pipeline (a pattern the geometry/arithmetic
// stages can still hit on pathological input despite their own checks)
// is recovered here and reported as an ImageProcessingError rather than
// crashing the caller, per the module's error-handling contract.
func (y *Yomu) decodeQR(img Image, maxSymbols int) (results []*DecoderResult, err error) {
	if !y.enableQRCode {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = newErr(ImageProcessingError, "recovered panic in decode pipeline: %v", r)
		}
	}()

	buf, err := imageprep.Prepare(img.Pixels, img.Width, img.Height, img.RowStride, img.Format)
	if err != nil {
		return nil, wrapErr(ArgumentError, err, "image preparation failed")
	}

	bits, err := (binarizer.Adaptive{}).Binarize(buf, y.binarizerThreshold)
	if err != nil {
		return nil, wrapErr(ImageProcessingError, err, "binarization failed")
	}

	detections, detErr := y.detectWithRetry(bits, maxSymbols)
	if detErr != nil {
		y.logger.Debug("yomu: QR detection failed", "err", detErr)
		return nil, nil
	}

	results = make([]*DecoderResult, 0, len(detections))
	for _, d := range detections {
		result, err := y.decodeDetectionSafely(d)
		if err != nil {
			if e, ok := err.(*Error); ok && (e.Kind == DecodeError || e.Kind == ReedSolomonError || e.Kind == ImageProcessingError) {
				y.logger.Debug("yomu: symbol decode failed", "err", err)
				continue
			}
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// decodeDetectionSafely isolates a panic in a single symbol's decode
// (e.g. an exhausted Reed-Solomon block hitting a degenerate internal
// state) so it is skipped like any other uncorrectable symbol instead
// of aborting the whole DecodeAll batch.
func (y *Yomu) decodeDetectionSafely(d *detector.Result) (result *DecoderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = newErr(ImageProcessingError, "recovered panic decoding symbol: %v", r)
		}
	}()
	return y.decodeDetection(d)
}

// detectWithRetry runs the tight-allowance attempt first, retrying
// once at the configured looser allowance on any detection error, per
// spec.md §4.11 and §7: the tight→loose alignment-allowance retry is
// the only automatic retry in the pipeline.
func (y *Yomu) detectWithRetry(bits *bitmatrix.BitMatrix, maxSymbols int) ([]*detector.Result, error) {
	if results, err := detector.DetectAll(bits, false, maxSymbols, tightAlignmentAllowance); err == nil {
		return results, nil
	}
	results, err := detector.DetectAll(bits, true, maxSymbols, float64(y.alignmentAreaAllowance))
	if err != nil {
		return nil, newErr(DetectionError, "no finder pattern triplet found: %v", err)
	}
	return results, nil
}

// decodeDetection samples the detected grid and runs the symbol-level
// decode on it.
func (y *Yomu) decodeDetection(d *detector.Result) (*DecoderResult, error) {
	parsed, err := qrdecoder.Decode(d.Bits)
	if err != nil {
		if errors.Is(err, reedsolomon.ErrTooManyErrors) {
			return nil, wrapErr(ReedSolomonError, err, "error correction exhausted")
		}
		return nil, wrapErr(DecodeError, err, "symbol decode failed")
	}
	return &DecoderResult{
		Text:                 parsed.Text,
		ByteSegments:         parsed.ByteSegments,
		ECLevel:              parsed.ECLevel,
		ApplicationIndicator: parsed.ApplicationIndicator,
		StructuredAppend:     fromInternalStructuredAppend(parsed.StructuredAppend),
		SymbolCorners:        fromDetectorCorners(d.Corners),
	}, nil
}
