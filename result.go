package yomu

import (
	"github.com/ashokshau/yomu/internal/detector"
	"github.com/ashokshau/yomu/internal/qrdecoder"
)

// Point is an image-space coordinate, used for SymbolCorners.
type Point struct {
	X, Y float64
}

// ECLevel is the QR error-correction level of a decoded symbol.
type ECLevel = qrdecoder.ECLevel

const (
	LevelL = qrdecoder.LevelL
	LevelM = qrdecoder.LevelM
	LevelQ = qrdecoder.LevelQ
	LevelH = qrdecoder.LevelH
)

// StructuredAppendInfo records a decoded symbol's position within a
// Structured Append sequence. See ReassembleStructuredAppend.
type StructuredAppendInfo struct {
	SequenceIndex int
	SequenceCount int
	Parity        byte
}

// DecoderResult is the public result of a successful Decode/DecodeAll
// call.
type DecoderResult struct {
	Text         string
	ByteSegments [][]byte
	ECLevel      ECLevel

	// ApplicationIndicator carries a decoded FNC1 (first or second
	// position) application indicator, when the symbol carries one.
	ApplicationIndicator *string

	// StructuredAppend carries this symbol's position in a Structured
	// Append sequence, when present. Collect these across repeated
	// Decode calls and pass them to ReassembleStructuredAppend.
	StructuredAppend *StructuredAppendInfo

	// SymbolCorners are the detected pattern centers in image
	// coordinates, purely diagnostic: the bottomLeft, topLeft and
	// topRight finder centers, followed by the alignment-pattern center
	// when one was found (so three or four points).
	SymbolCorners []Point
}

func fromInternalStructuredAppend(sa *qrdecoder.StructuredAppendInfo) *StructuredAppendInfo {
	if sa == nil {
		return nil
	}
	return &StructuredAppendInfo{
		SequenceIndex: sa.SequenceIndex,
		SequenceCount: sa.SequenceCount,
		Parity:        sa.Parity,
	}
}

func fromDetectorCorners(corners []detector.Point) []Point {
	if corners == nil {
		return nil
	}
	out := make([]Point, len(corners))
	for i, c := range corners {
		out[i] = Point{X: c.X, Y: c.Y}
	}
	return out
}
