// Package qrfixture synthesizes ground-truth QR symbols for the
// decoder's own tests. Adapted from the teacher's encoder.go/
// reedsolomon.go (originally a small public QR-writing library): the
// bit-buffer, matrix-construction, and BCH format-info logic survive
// almost unchanged, generalized from the teacher's "byte mode, versions
// 1-4 only, mask 0 only, single block only" scope to every version,
// level, mask, and the block-interleaving internal/qrdecoder's version
// table describes, driven by the decoder's own tables instead of a
// second, independent copy of them.
//
// This package is test-only: it is never imported outside _test.go
// files, matching spec.md's exclusion of QR generation as a public
// library feature.
package qrfixture

import (
	"fmt"

	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/gf256"
	"github.com/ashokshau/yomu/internal/qrdecoder"
)

// bitBuffer accumulates bits MSB-first, mirroring the teacher's
// BitBuffer.Put(num, length) idiom.
type bitBuffer struct {
	bits []bool
}

func (b *bitBuffer) put(num, length int) {
	for i := 0; i < length; i++ {
		b.bits = append(b.bits, (num>>(length-1-i))&1 == 1)
	}
}

func (b *bitBuffer) len() int { return len(b.bits) }

// Options configures a synthesized symbol. Version and MaskPattern are
// picked automatically (smallest fitting version; mask 0) when zero and
// -1 respectively, matching how a real encoder would choose them, but
// tests can pin exact values to exercise specific decode paths.
type Options struct {
	Level       qrdecoder.ECLevel
	Version     int // 0 = pick smallest that fits
	MaskPattern int // -1 = use mask 0
}

// EncodeByte builds a Byte-mode symbol carrying content.
func EncodeByte(content []byte, opts Options) (*bitmatrix.BitMatrix, error) {
	return encode(opts, func(buf *bitBuffer, version int) error {
		buf.put(int(qrdecoder.ModeByte), 4)
		buf.put(len(content), qrdecoder.CharacterCountBits(qrdecoder.ModeByte, version))
		for _, b := range content {
			buf.put(int(b), 8)
		}
		return nil
	}, len(content)*8+4+16)
}

// EncodeNumeric builds a Numeric-mode symbol carrying digits (every
// byte of s must be '0'-'9').
func EncodeNumeric(s string, opts Options) (*bitmatrix.BitMatrix, error) {
	return encode(opts, func(buf *bitBuffer, version int) error {
		buf.put(int(qrdecoder.ModeNumeric), 4)
		buf.put(len(s), qrdecoder.CharacterCountBits(qrdecoder.ModeNumeric, version))
		for i := 0; i < len(s); i += 3 {
			group := s[i:min(i+3, len(s))]
			v := 0
			for _, c := range group {
				if c < '0' || c > '9' {
					return fmt.Errorf("qrfixture: non-digit %q in numeric content", c)
				}
				v = v*10 + int(c-'0')
			}
			switch len(group) {
			case 3:
				buf.put(v, 10)
			case 2:
				buf.put(v, 7)
			case 1:
				buf.put(v, 4)
			}
		}
		return nil
	}, len(s)*4+4+16)
}

// alphanumericChars mirrors qrdecoder's decode-side table; duplicated
// here (rather than exported from qrdecoder) since it is encode-only
// data with no decode-side use beyond what qrdecoder.alphanumericChars
// already serves internally.
const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// EncodeAlphanumeric builds an Alphanumeric-mode symbol. Every byte of
// s must be present in the 45-character alphanumeric alphabet.
func EncodeAlphanumeric(s string, opts Options) (*bitmatrix.BitMatrix, error) {
	return encode(opts, func(buf *bitBuffer, version int) error {
		buf.put(int(qrdecoder.ModeAlphanumeric), 4)
		buf.put(len(s), qrdecoder.CharacterCountBits(qrdecoder.ModeAlphanumeric, version))
		for i := 0; i < len(s); i += 2 {
			if i+1 < len(s) {
				hi := indexOf(s[i])
				lo := indexOf(s[i+1])
				if hi < 0 || lo < 0 {
					return fmt.Errorf("qrfixture: character outside alphanumeric alphabet")
				}
				buf.put(hi*45+lo, 11)
			} else {
				v := indexOf(s[i])
				if v < 0 {
					return fmt.Errorf("qrfixture: character outside alphanumeric alphabet")
				}
				buf.put(v, 6)
			}
		}
		return nil
	}, len(s)*6+4+16)
}

func indexOf(c byte) int {
	for i := 0; i < len(alphanumericChars); i++ {
		if alphanumericChars[i] == c {
			return i
		}
	}
	return -1
}

// encode picks a version (if unset), lays out the segment payload via
// writeSegment, pads to capacity, computes interleaved Reed-Solomon
// blocks, and builds the final module matrix.
func encode(opts Options, writeSegment func(buf *bitBuffer, version int) error, approxBits int) (*bitmatrix.BitMatrix, error) {
	version := opts.Version
	if version == 0 {
		var err error
		version, err = smallestFittingVersion(opts.Level, approxBits)
		if err != nil {
			return nil, err
		}
	}
	mask := opts.MaskPattern
	if mask < 0 {
		mask = 0
	}

	blocks, err := qrdecoder.ECBlocks(version, opts.Level)
	if err != nil {
		return nil, err
	}
	totalDataBytes := 0
	for _, b := range blocks {
		totalDataBytes += b.DataCodewords
	}

	buf := &bitBuffer{}
	if err := writeSegment(buf, version); err != nil {
		return nil, err
	}

	capacityBits := totalDataBytes * 8
	if buf.len() > capacityBits {
		return nil, fmt.Errorf("qrfixture: content too large for version %d", version)
	}
	term := min(4, capacityBits-buf.len())
	buf.put(0, term)
	if buf.len()%8 != 0 {
		buf.put(0, 8-buf.len()%8)
	}
	padBytes := [2]int{0xEC, 0x11}
	padIdx := 0
	for buf.len() < capacityBits {
		buf.put(padBytes[padIdx], 8)
		padIdx = (padIdx + 1) % 2
	}

	dataCodewords := bitsToBytes(buf.bits)

	fullBlocks := make([][]byte, len(blocks))
	offset := 0
	for i, b := range blocks {
		dataSlice := dataCodewords[offset : offset+b.DataCodewords]
		offset += b.DataCodewords
		ec := generateECCodewords(dataSlice, b.ECCodewords)
		full := make([]byte, b.DataCodewords+b.ECCodewords)
		copy(full, dataSlice)
		copy(full[b.DataCodewords:], ec)
		fullBlocks[i] = full
	}

	interleaved := interleave(fullBlocks, blocks)

	return buildMatrix(version, opts.Level, mask, interleaved)
}

// smallestFittingVersion mirrors the teacher's "try versions in order,
// stop at the first that fits" search, generalized across the full
// version range instead of the teacher's hardcoded 1-4.
func smallestFittingVersion(level qrdecoder.ECLevel, approxBits int) (int, error) {
	for v := 1; v <= 40; v++ {
		blocks, err := qrdecoder.ECBlocks(v, level)
		if err != nil {
			continue
		}
		totalData := 0
		for _, b := range blocks {
			totalData += b.DataCodewords
		}
		if approxBits <= totalData*8 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("qrfixture: content too large for any version at this level")
}

func bitsToBytes(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// generateECCodewords computes the Reed-Solomon check symbols for one
// block's data, via message(x)*x^numEC mod generator(x), the same
// shift-register division the teacher's CalculateECCodewords performs,
// rebuilt atop internal/gf256 instead of its private expTable/logTable.
func generateECCodewords(data []byte, numECCodewords int) []byte {
	gen := gf256.GeneratorPoly(numECCodewords)

	remainder := make(gf256.Poly, len(data)+numECCodewords)
	for i, b := range data {
		remainder[i] = int(b)
	}
	for i := 0; i < len(data); i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j, gc := range gen {
			remainder[i+j] = gf256.Add(remainder[i+j], gf256.Mul(gc, coef))
		}
	}

	out := make([]byte, numECCodewords)
	for i := 0; i < numECCodewords; i++ {
		out[i] = byte(remainder[len(data)+i])
	}
	return out
}

// interleave reassembles the per-block (data+EC) codeword arrays into
// the single round-robin stream the zigzag module-placement walk
// expects: every block's data codewords column-by-column (short blocks
// simply running out first), then every block's EC codewords
// column-by-column.
func interleave(fullBlocks [][]byte, blocks []qrdecoder.ECBlock) []byte {
	maxData := 0
	total := 0
	for _, b := range blocks {
		if b.DataCodewords > maxData {
			maxData = b.DataCodewords
		}
		total += b.DataCodewords + b.ECCodewords
	}
	out := make([]byte, 0, total)
	for col := 0; col < maxData; col++ {
		for i, b := range blocks {
			if col < b.DataCodewords {
				out = append(out, fullBlocks[i][col])
			}
		}
	}
	ecPerBlock := blocks[0].ECCodewords
	for col := 0; col < ecPerBlock; col++ {
		for i := range blocks {
			out = append(out, fullBlocks[i][blocks[i].DataCodewords+col])
		}
	}
	return out
}

// buildMatrix lays out finder/separator/alignment/timing patterns, the
// dark module, format info, and the masked data codewords, following
// the teacher's module-placement geometry generalized to
// internal/qrdecoder's alignment-center table and zigzag walk, so the
// fixture exercises exactly the region logic the parser itself uses.
func buildMatrix(version int, level qrdecoder.ECLevel, mask int, codewords []byte) (*bitmatrix.BitMatrix, error) {
	dimension := qrdecoder.Dimension(version)
	m := bitmatrix.New(dimension, dimension)

	drawFinder := func(topRow, leftCol int) {
		for i := 0; i < 7; i++ {
			for j := 0; j < 7; j++ {
				dark := i == 0 || i == 6 || j == 0 || j == 6 || (i >= 2 && i <= 4 && j >= 2 && j <= 4)
				if dark {
					m.Set(leftCol+j, topRow+i)
				}
			}
		}
	}
	drawFinder(0, 0)
	drawFinder(0, dimension-7)
	drawFinder(dimension-7, 0)

	centers := qrdecoder.AlignmentCenters(version)
	for _, cy := range centers {
		for _, cx := range centers {
			if (cx < 9 && cy < 9) || (cx < 9 && cy > dimension-9) || (cx > dimension-9 && cy < 9) {
				continue
			}
			for i := -2; i <= 2; i++ {
				for j := -2; j <= 2; j++ {
					dark := i == -2 || i == 2 || j == -2 || j == 2 || (i == 0 && j == 0)
					if dark {
						m.Set(cx+j, cy+i)
					}
				}
			}
		}
	}

	for i := 8; i < dimension-8; i++ {
		if i%2 == 0 {
			m.Set(i, 6)
			m.Set(6, i)
		}
	}

	m.Set(8, dimension-8) // dark module

	// Data placement: same zigzag walk the parser reads, skipping
	// function modules via the parser's own predicate so the fixture
	// and the code under test agree on where data lives by
	// construction.
	bitIdx := 0
	totalBits := len(codewords) * 8
	getBit := func(k int) bool {
		if k >= totalBits {
			return false
		}
		return (codewords[k/8]>>uint(7-k%8))&1 == 1
	}

	readingUp := true
	for col := dimension - 1; col > 0; col -= 2 {
		if col == 6 {
			col--
		}
		for count := 0; count < dimension; count++ {
			row := count
			if readingUp {
				row = dimension - 1 - count
			}
			for colOffset := 0; colOffset < 2; colOffset++ {
				currentCol := col - colOffset
				if qrdecoder.IsFunctionModule(row, currentCol, dimension, version) {
					continue
				}
				bit := getBit(bitIdx)
				bitIdx++
				if qrdecoder.MaskFunc(mask)(row, currentCol) {
					bit = !bit
				}
				if bit {
					m.Set(currentCol, row)
				}
			}
		}
		readingUp = !readingUp
	}

	placeFormatInfo(m, dimension, level, mask)
	if version >= 7 {
		placeVersionInfo(m, dimension, version)
	}

	return m, nil
}

// formatECBits mirrors qrdecoder's ecLevelBits mapping inverted: the
// 2-bit field value that decodes to each level.
func formatECBits(level qrdecoder.ECLevel) int {
	switch level {
	case qrdecoder.LevelM:
		return 0
	case qrdecoder.LevelL:
		return 1
	case qrdecoder.LevelH:
		return 2
	case qrdecoder.LevelQ:
		return 3
	}
	return 0
}

// placeFormatInfo writes the masked 15-bit format codeword at both
// redundant locations the parser reads, via the parser's own
// coordinate walks: coordinate index i carries bit (14-i).
func placeFormatInfo(m *bitmatrix.BitMatrix, dimension int, level qrdecoder.ECLevel, mask int) {
	data := (formatECBits(level) << 3) | mask
	codeword := qrdecoder.EncodeFormatBits(data)

	for _, loc := range [][][2]int{qrdecoder.FormatLocation1(dimension), qrdecoder.FormatLocation2(dimension)} {
		for i, c := range loc {
			if (codeword>>uint(14-i))&1 == 1 {
				m.Set(c[0], c[1])
			} else {
				m.Clear(c[0], c[1])
			}
		}
	}
}

// placeVersionInfo writes the 18-bit version codeword at both
// redundant locations the parser reads: coordinate index i carries bit
// (17-i).
func placeVersionInfo(m *bitmatrix.BitMatrix, dimension, version int) {
	pattern := qrdecoder.VersionInfoPattern(version)
	for _, loc := range [][][2]int{qrdecoder.VersionLocation1(dimension), qrdecoder.VersionLocation2(dimension)} {
		for i, c := range loc {
			if (pattern>>uint(17-i))&1 == 1 {
				m.Set(c[0], c[1])
			}
		}
	}
}
