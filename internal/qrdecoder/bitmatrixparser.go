package qrdecoder

import (
	"fmt"

	"github.com/ashokshau/yomu/internal/bitmatrix"
	"github.com/ashokshau/yomu/internal/reedsolomon"
)

// ParsedSymbol holds the corrected data-codeword stream and the symbol
// metadata recovered from format/version info, ready for
// DecodedBitStreamParser.
type ParsedSymbol struct {
	Version         int
	ECLevel         ECLevel
	Data            []byte
	ErrorsCorrected int
}

// formatLocation1 and formatLocation2 are the two redundant bit
// positions for the 15-bit format-info field, each read independently
// so one location surviving damage still recovers the field. Grounded
// on the extractor's readFormatInformationBits1/2 walks: location 1
// runs along row 8 (skipping the timing column 6) then up column 8;
// location 2 runs up column 8 from the bottom edge beside the
// bottom-left finder, then along row 8 beside the top-right finder.
// FormatLocation1, FormatLocation2, VersionLocation1, and
// VersionLocation2 expose the same coordinate walks this parser reads,
// for internal/qrfixture to place format/version info at matching
// positions (coordinate index i corresponds to bit 14-i of the 15-bit
// format codeword, or bit 17-i of the 18-bit version codeword) when
// synthesizing test symbols.
func FormatLocation1(dimension int) [][2]int { return formatLocation1(dimension) }
func FormatLocation2(dimension int) [][2]int { return formatLocation2(dimension) }
func VersionLocation1(dimension int) [][2]int { return versionLocation1(dimension) }
func VersionLocation2(dimension int) [][2]int { return versionLocation2(dimension) }

func formatLocation1(dimension int) [][2]int {
	coords := make([][2]int, 0, 15)
	for col := 0; col <= 5; col++ {
		coords = append(coords, [2]int{col, 8})
	}
	coords = append(coords, [2]int{7, 8})
	coords = append(coords, [2]int{8, 8})
	coords = append(coords, [2]int{8, 7})
	for row := 5; row >= 0; row-- {
		coords = append(coords, [2]int{8, row})
	}
	return coords
}

func formatLocation2(dimension int) [][2]int {
	coords := make([][2]int, 0, 15)
	for i := 0; i < 7; i++ {
		coords = append(coords, [2]int{8, dimension - 1 - i})
	}
	for i := 0; i < 8; i++ {
		coords = append(coords, [2]int{dimension - 8 + i, 8})
	}
	return coords
}

func readBitsAt(m *bitmatrix.BitMatrix, coords [][2]int) int {
	v := 0
	for _, c := range coords {
		v <<= 1
		if m.Get(c[0], c[1]) {
			v |= 1
		}
	}
	return v
}

// versionLocation1 and versionLocation2 are the two redundant 6x3
// blocks holding version info for versions >= 7, beside the top-right
// and bottom-left finder patterns respectively.
func versionLocation1(dimension int) [][2]int {
	coords := make([][2]int, 0, 18)
	for i := 0; i < 18; i++ {
		col := dimension - 11 + i%3
		row := i / 3
		coords = append(coords, [2]int{col, row})
	}
	return coords
}

func versionLocation2(dimension int) [][2]int {
	coords := make([][2]int, 0, 18)
	for i := 0; i < 18; i++ {
		row := dimension - 11 + i%3
		col := i / 3
		coords = append(coords, [2]int{col, row})
	}
	return coords
}

// ReadFormatAndVersion recovers the error-correction level, mask
// pattern, and QR version from a sampled (unmasked-grid) symbol. The
// format field is read from both redundant locations and reconciled via
// BCH(15,5); the version field (when the dimension implies version 7 or
// higher) is read from both redundant locations and reconciled via
// BCH(18,6), falling back to the geometric dimension when the symbol is
// too small to carry an explicit version block.
func ReadFormatAndVersion(m *bitmatrix.BitMatrix) (ECLevel, int, int, error) {
	dimension := m.Width()

	raw1 := readBitsAt(m, formatLocation1(dimension))
	level, maskPattern, err1 := DecodeFormatBits(raw1)
	if err1 != nil {
		raw2 := readBitsAt(m, formatLocation2(dimension))
		level, maskPattern, err1 = DecodeFormatBits(raw2)
		if err1 != nil {
			return 0, 0, 0, fmt.Errorf("qrdecoder: could not recover format information: %w", err1)
		}
	}

	version, err := VersionForDimension(dimension)
	if err != nil {
		return 0, 0, 0, err
	}

	if version >= 7 {
		raw1 := readBitsAt(m, versionLocation1(dimension))
		v, errV := DecodeVersionBits(raw1)
		if errV != nil {
			raw2 := readBitsAt(m, versionLocation2(dimension))
			v, errV = DecodeVersionBits(raw2)
		}
		if errV == nil {
			version = v
		}
	}

	return level, maskPattern, version, nil
}

// IsFunctionModule reports whether (row, col) in a dimension x dimension
// symbol of the given version belongs to a fixed structural pattern
// rather than a data/EC codeword. Exported so internal/qrfixture can
// walk the same zigzag data path this parser reads, without
// duplicating the region logic.
func IsFunctionModule(row, col, dimension, version int) bool {
	return isFunctionModule(row, col, dimension, version)
}

// isFunctionModule reports whether (row, col) belongs to a fixed
// structural pattern rather than a data/EC codeword: the three finder-
// pattern corners (with their separators and format info, 9x9 at the
// top-left and 9x8 / 8x9 at the other two), the timing strips, the
// permanent dark module, the 5x5 alignment patterns on version-2-and-up
// symbols, and the two version-info blocks on version-7-and-up symbols.
func isFunctionModule(row, col, dimension, version int) bool {
	// Top-left finder + separator + format info.
	if row <= 8 && col <= 8 {
		return true
	}
	// Top-right finder + separator + format info.
	if row <= 8 && col >= dimension-8 {
		return true
	}
	// Bottom-left finder + separator + format info.
	if row >= dimension-8 && col <= 8 {
		return true
	}
	// Timing strips.
	if row == 6 || col == 6 {
		return true
	}
	// Alignment patterns, versions 2+: every center pair except the
	// three that would overlap the finder corners.
	centers := AlignmentCenters(version)
	last := len(centers) - 1
	for i, cy := range centers {
		for j, cx := range centers {
			if (i == 0 && j == 0) || (i == 0 && j == last) || (i == last && j == 0) {
				continue
			}
			if row >= cy-2 && row <= cy+2 && col >= cx-2 && col <= cx+2 {
				return true
			}
		}
	}
	// Version-info blocks, versions 7+.
	if version >= 7 {
		if row < 6 && col >= dimension-11 && col <= dimension-9 {
			return true
		}
		if col < 6 && row >= dimension-11 && row <= dimension-9 {
			return true
		}
	}
	return false
}

// unmask XORs every non-function module with the mask pattern's
// formula, producing the true (unmasked) module bits in place in a
// freshly allocated matrix so the caller's sampled grid is untouched.
func unmask(m *bitmatrix.BitMatrix, maskPattern, version int) *bitmatrix.BitMatrix {
	dimension := m.Width()
	fn := maskFuncs[maskPattern]
	out := bitmatrix.New(dimension, dimension)
	for row := 0; row < dimension; row++ {
		for col := 0; col < dimension; col++ {
			bit := m.Get(col, row)
			if !isFunctionModule(row, col, dimension, version) && fn(row, col) {
				bit = !bit
			}
			if bit {
				out.Set(col, row)
			}
		}
	}
	return out
}

// readCodewords walks the unmasked grid in the standard zigzag order,
// two columns at a time from the right edge, alternating direction
// every column pair and skipping both the vertical timing column and
// every function module, to produce the raw interleaved codeword
// stream (format/version info is read separately and is not part of
// this walk).
func readCodewords(m *bitmatrix.BitMatrix, version int) []byte {
	dimension := m.Width()
	totalCodewords := TotalCodewords(version)
	result := make([]byte, 0, totalCodewords)

	var bitBuf, bitCount int
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
				if isFunctionModule(row, currentCol, dimension, version) {
					continue
				}
				bitBuf <<= 1
				if m.Get(currentCol, row) {
					bitBuf |= 1
				}
				bitCount++
				if bitCount == 8 {
					result = append(result, byte(bitBuf))
					bitBuf, bitCount = 0, 0
				}
			}
		}
		readingUp = !readingUp
	}
	return result
}

// Parse runs the full BitMatrixParser stage: format/version recovery,
// unmasking, the zigzag codeword walk, de-interleaving into the
// version's block layout, and Reed-Solomon error correction per block,
// recombining corrected data codewords into a single byte stream for
// DecodedBitStreamParser.
func Parse(sampled *bitmatrix.BitMatrix) (*ParsedSymbol, error) {
	level, maskPattern, version, err := ReadFormatAndVersion(sampled)
	if err != nil {
		return nil, err
	}

	unmasked := unmask(sampled, maskPattern, version)
	raw := readCodewords(unmasked, version)

	blocks, err := ECBlocks(version, level)
	if err != nil {
		return nil, err
	}

	data, errorsCorrected, err := deinterleaveAndCorrect(raw, blocks)
	if err != nil {
		return nil, err
	}

	return &ParsedSymbol{
		Version:         version,
		ECLevel:         level,
		Data:            data,
		ErrorsCorrected: errorsCorrected,
	}, nil
}

// Decode runs the full symbol-level pipeline on an already-sampled
// module grid: BitMatrixParser (format/version recovery, unmasking,
// codeword extraction, Reed-Solomon correction) followed by
// DecodedBitStreamParser (mode-dispatched text assembly).
func Decode(sampled *bitmatrix.BitMatrix) (*DecoderResult, error) {
	parsed, err := Parse(sampled)
	if err != nil {
		return nil, err
	}
	return ParseBitStream(parsed.Data, parsed.Version, parsed.ECLevel)
}

// deinterleaveAndCorrect splits the raw zigzag-ordered codeword stream
// into its interleaved blocks (short blocks' data codewords, then long
// blocks' one extra data codeword, then every block's EC codewords, all
// read round-robin per ISO/IEC 18004's interleaving rule), runs
// Reed-Solomon correction on each block independently, then
// concatenates the corrected data codewords back in block order.
func deinterleaveAndCorrect(raw []byte, blocks []ECBlock) ([]byte, int, error) {
	numBlocks := len(blocks)
	maxDataCodewords := 0
	totalDataCodewords := 0
	for _, b := range blocks {
		if b.DataCodewords > maxDataCodewords {
			maxDataCodewords = b.DataCodewords
		}
		totalDataCodewords += b.DataCodewords
	}

	blockBytes := make([][]byte, numBlocks)
	for i, b := range blocks {
		blockBytes[i] = make([]byte, b.DataCodewords+b.ECCodewords)
	}

	pos := 0
	for col := 0; col < maxDataCodewords; col++ {
		for i, b := range blocks {
			if col < b.DataCodewords {
				blockBytes[i][col] = raw[pos]
				pos++
			}
		}
	}
	ecPerBlock := blocks[0].ECCodewords
	for col := 0; col < ecPerBlock; col++ {
		for i, b := range blocks {
			blockBytes[i][b.DataCodewords+col] = raw[pos]
			pos++
		}
	}

	result := make([]byte, 0, totalDataCodewords)
	totalErrors := 0
	for i, b := range blocks {
		n, err := reedsolomon.Decode(blockBytes[i], b.ECCodewords)
		if err != nil {
			return nil, 0, fmt.Errorf("qrdecoder: block %d: %w", i, err)
		}
		totalErrors += n
		result = append(result, blockBytes[i][:b.DataCodewords]...)
	}
	return result, totalErrors, nil
}
