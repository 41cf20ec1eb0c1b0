package qrdecoder

import "fmt"

// ECLevel is the QR error-correction level, ordered by strength
// L < M < Q < H. The 2-bit format-info encoding uses a different order;
// see ecLevelBits.
type ECLevel int

const (
	LevelL ECLevel = iota
	LevelM
	LevelQ
	LevelH
)

func (l ECLevel) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	default:
		return "?"
	}
}

// ecLevelBits maps the 2-bit format-info field to the level it
// encodes. ISO/IEC 18004 assigns these out of numeric order.
var ecLevelBits = [4]ECLevel{LevelM, LevelL, LevelH, LevelQ}

// levelTable holds the per-level block layout for one version: the
// number of EC codewords appended to every block, and the block-count
// split itself (short blocks vs. long blocks, long blocks carrying one
// extra data codeword).
type levelTable struct {
	numBlocks int
	ecPerBlock int
}

// versionEntry is one row of the version table: alignment-pattern
// geometry (apos/astride, a compact encoding of the full center-position
// list), the total codeword count, the 18-bit version-info BCH
// codeword (versions 7-40 only), and the block layout per level.
type versionEntry struct {
	apos, astride int
	totalBytes    int
	pattern       int
	levels        [4]levelTable
}

// versionTable is the per-version geometry and error-correction block
// layout, for versions 1-40 (index 0 unused). Grounded on
// inkstray-rsc-qr's coding/qr.go vtab table (apos/astride/bytes/
// pattern/level.nblock/level.check fields, renamed here), cross-checked
// against grkuntzmd-qrcodegen's independent eccCodeWordsPerBlock/
// numErrorCorrectionBlocks literal tables.
var versionTable = [41]versionEntry{
	{},
	{100, 100, 26, 0x0, [4]levelTable{{1, 7}, {1, 10}, {1, 13}, {1, 17}}},
	{16, 100, 44, 0x0, [4]levelTable{{1, 10}, {1, 16}, {1, 22}, {1, 28}}},
	{20, 100, 70, 0x0, [4]levelTable{{1, 15}, {1, 26}, {2, 18}, {2, 22}}},
	{24, 100, 100, 0x0, [4]levelTable{{1, 20}, {2, 18}, {2, 26}, {4, 16}}},
	{28, 100, 134, 0x0, [4]levelTable{{1, 26}, {2, 24}, {4, 18}, {4, 22}}},
	{32, 100, 172, 0x0, [4]levelTable{{2, 18}, {4, 16}, {4, 24}, {4, 28}}},
	{20, 16, 196, 0x7c94, [4]levelTable{{2, 20}, {4, 18}, {6, 18}, {5, 26}}},
	{22, 18, 242, 0x85bc, [4]levelTable{{2, 24}, {4, 22}, {6, 22}, {6, 26}}},
	{24, 20, 292, 0x9a99, [4]levelTable{{2, 30}, {5, 22}, {8, 20}, {8, 24}}},
	{26, 22, 346, 0xa4d3, [4]levelTable{{4, 18}, {5, 26}, {8, 24}, {8, 28}}},
	{28, 24, 404, 0xbbf6, [4]levelTable{{4, 20}, {5, 30}, {8, 28}, {11, 24}}},
	{30, 26, 466, 0xc762, [4]levelTable{{4, 24}, {8, 22}, {10, 26}, {11, 28}}},
	{32, 28, 532, 0xd847, [4]levelTable{{4, 26}, {9, 22}, {12, 24}, {16, 22}}},
	{24, 20, 581, 0xe60d, [4]levelTable{{4, 30}, {9, 24}, {16, 20}, {16, 24}}},
	{24, 22, 655, 0xf928, [4]levelTable{{6, 22}, {10, 24}, {12, 30}, {18, 24}}},
	{24, 24, 733, 0x10b78, [4]levelTable{{6, 24}, {10, 28}, {17, 24}, {16, 30}}},
	{28, 24, 815, 0x1145d, [4]levelTable{{6, 28}, {11, 28}, {16, 28}, {19, 28}}},
	{28, 26, 901, 0x12a17, [4]levelTable{{6, 30}, {13, 26}, {18, 28}, {21, 28}}},
	{28, 28, 991, 0x13532, [4]levelTable{{7, 28}, {14, 26}, {21, 26}, {25, 26}}},
	{32, 28, 1085, 0x149a6, [4]levelTable{{8, 28}, {16, 26}, {20, 30}, {25, 28}}},
	{26, 22, 1156, 0x15683, [4]levelTable{{8, 28}, {17, 26}, {23, 28}, {25, 30}}},
	{24, 24, 1258, 0x168c9, [4]levelTable{{9, 28}, {17, 28}, {23, 30}, {34, 24}}},
	{28, 24, 1364, 0x177ec, [4]levelTable{{9, 30}, {18, 28}, {25, 30}, {30, 30}}},
	{26, 26, 1474, 0x18ec4, [4]levelTable{{10, 30}, {20, 28}, {27, 30}, {32, 30}}},
	{30, 26, 1588, 0x191e1, [4]levelTable{{12, 26}, {21, 28}, {29, 30}, {35, 30}}},
	{28, 28, 1706, 0x1afab, [4]levelTable{{12, 28}, {23, 28}, {34, 28}, {37, 30}}},
	{32, 28, 1828, 0x1b08e, [4]levelTable{{12, 30}, {25, 28}, {34, 30}, {40, 30}}},
	{24, 24, 1921, 0x1cc1a, [4]levelTable{{13, 30}, {26, 28}, {35, 30}, {42, 30}}},
	{28, 24, 2051, 0x1d33f, [4]levelTable{{14, 30}, {28, 28}, {38, 30}, {45, 30}}},
	{24, 26, 2185, 0x1ed75, [4]levelTable{{15, 30}, {29, 28}, {40, 30}, {48, 30}}},
	{28, 26, 2323, 0x1f250, [4]levelTable{{16, 30}, {31, 28}, {43, 30}, {51, 30}}},
	{32, 26, 2465, 0x209d5, [4]levelTable{{17, 30}, {33, 28}, {45, 30}, {54, 30}}},
	{28, 28, 2611, 0x216f0, [4]levelTable{{18, 30}, {35, 28}, {48, 30}, {57, 30}}},
	{32, 28, 2761, 0x228ba, [4]levelTable{{19, 30}, {37, 28}, {51, 30}, {60, 30}}},
	{28, 24, 2876, 0x2379f, [4]levelTable{{19, 30}, {38, 28}, {53, 30}, {63, 30}}},
	{22, 26, 3034, 0x24b0b, [4]levelTable{{20, 30}, {40, 28}, {56, 30}, {66, 30}}},
	{26, 26, 3196, 0x2542e, [4]levelTable{{21, 30}, {43, 28}, {59, 30}, {70, 30}}},
	{30, 26, 3362, 0x26a64, [4]levelTable{{22, 30}, {45, 28}, {62, 30}, {74, 30}}},
	{24, 28, 3532, 0x27541, [4]levelTable{{24, 30}, {47, 28}, {65, 30}, {77, 30}}},
	{28, 28, 3706, 0x28c69, [4]levelTable{{25, 30}, {49, 28}, {68, 30}, {81, 30}}},
}

// Dimension returns the module side length of version v: 17 + 4v.
func Dimension(v int) int { return 17 + 4*v }

// VersionForDimension inverts Dimension, validating that dim is in
// range and congruent to 1 mod 4 as every real symbol dimension is.
func VersionForDimension(dim int) (int, error) {
	if dim < 21 || dim > 177 || (dim-17)%4 != 0 {
		return 0, fmt.Errorf("qrdecoder: invalid symbol dimension %d", dim)
	}
	v := (dim - 17) / 4
	return v, nil
}

// AlignmentCenters returns the alignment-pattern center coordinates
// (shared by both axes) for version v, or nil for version 1 (which has
// none). Derived from the compact apos/astride encoding, where apos is
// the top-left module of the second pattern: the first center is always
// 6; the next is apos+2; each subsequent one steps by astride; the count
// is v/7+2 for v >= 2.
func AlignmentCenters(v int) []int {
	if v < 2 {
		return nil
	}
	entry := &versionTable[v]
	n := v/7 + 2
	positions := make([]int, n)
	positions[0] = 6
	x := entry.apos + 2
	for i := 1; i < n; i++ {
		positions[i] = x
		x += entry.astride
	}
	return positions
}

// ECBlock describes one interleaved Reed-Solomon block.
type ECBlock struct {
	DataCodewords int
	ECCodewords   int
}

// ECBlocks returns the ordered block layout (short blocks first, then
// long blocks carrying one extra data codeword) for version v at level
// lvl, following QR's ISO/IEC 18004 interleaving rule.
func ECBlocks(v int, lvl ECLevel) ([]ECBlock, error) {
	if v < 1 || v > 40 {
		return nil, fmt.Errorf("qrdecoder: invalid version %d", v)
	}
	entry := &versionTable[v]
	lt := entry.levels[lvl]

	totalDataBytes := entry.totalBytes - lt.numBlocks*lt.ecPerBlock
	dataPerBlock := totalDataBytes / lt.numBlocks
	extra := totalDataBytes % lt.numBlocks

	blocks := make([]ECBlock, lt.numBlocks)
	shortBlocks := lt.numBlocks - extra
	for i := 0; i < lt.numBlocks; i++ {
		data := dataPerBlock
		if i >= shortBlocks {
			data++
		}
		blocks[i] = ECBlock{DataCodewords: data, ECCodewords: lt.ecPerBlock}
	}
	return blocks, nil
}

// TotalCodewords returns the total codeword count (data + EC, across
// all blocks) for version v.
func TotalCodewords(v int) int {
	return versionTable[v].totalBytes
}

// versionInfoPattern returns the 18-bit version-info codeword (data +
// BCH check bits) for versions 7-40; versions below 7 have no
// version-info block in the symbol.
func versionInfoPattern(v int) int {
	return versionTable[v].pattern
}

// VersionInfoPattern exposes versionInfoPattern for internal/qrfixture
// to embed version info when synthesizing version-7-and-up test
// symbols.
func VersionInfoPattern(v int) int { return versionInfoPattern(v) }
