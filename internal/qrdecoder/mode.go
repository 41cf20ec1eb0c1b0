package qrdecoder

// Mode is the closed set of QR data-segment mode indicators.
type Mode int

const (
	ModeTerminator       Mode = 0x0
	ModeNumeric          Mode = 0x1
	ModeAlphanumeric     Mode = 0x2
	ModeStructuredAppend Mode = 0x3
	ModeByte             Mode = 0x4
	ModeFNC1First        Mode = 0x5
	ModeECI              Mode = 0x7
	ModeKanji            Mode = 0x8
	ModeFNC1Second       Mode = 0x9
	ModeHanzi            Mode = 0xD
)

// indicatorBits is each mode's 4-bit indicator value as read from the
// bitstream, per ISO/IEC 18004 (Hanzi's 1101 is the GB18030 extension
// ZXing also recognizes).
var indicatorBits = map[int]Mode{
	0x0: ModeTerminator,
	0x1: ModeNumeric,
	0x2: ModeAlphanumeric,
	0x3: ModeStructuredAppend,
	0x4: ModeByte,
	0x5: ModeFNC1First,
	0x7: ModeECI,
	0x8: ModeKanji,
	0x9: ModeFNC1Second,
	0xD: ModeHanzi,
}

// ModeFromIndicator resolves a 4-bit mode indicator, or ok=false for an
// indicator this decoder doesn't recognize.
func ModeFromIndicator(bits int) (Mode, bool) {
	m, ok := indicatorBits[bits]
	return m, ok
}

// sizeClass buckets a version into the three character-count-bit-width
// ranges: V1-9, V10-26, V27-40.
func sizeClass(v int) int {
	switch {
	case v <= 9:
		return 0
	case v <= 26:
		return 1
	default:
		return 2
	}
}

// characterCountBits tables, one width per sizeClass, per mode.
// Grounded on inkstray-rsc-qr's numLen/alphaLen/stringLen/kanjiLen
// tables in coding/qr.go.
var (
	numericCountBits      = [3]int{10, 12, 14}
	alphanumericCountBits = [3]int{9, 11, 13}
	byteCountBits         = [3]int{8, 16, 16}
	kanjiCountBits        = [3]int{8, 10, 12}
	hanziCountBits        = [3]int{8, 10, 12}
)

// CharacterCountBits returns how many bits encode the character count
// for the given mode at the given version.
func CharacterCountBits(m Mode, version int) int {
	class := sizeClass(version)
	switch m {
	case ModeNumeric:
		return numericCountBits[class]
	case ModeAlphanumeric:
		return alphanumericCountBits[class]
	case ModeByte:
		return byteCountBits[class]
	case ModeKanji:
		return kanjiCountBits[class]
	case ModeHanzi:
		return hanziCountBits[class]
	default:
		return 0
	}
}

// alphanumericChars is the 45-character alphabet alphanumeric mode
// packs two-per-11-bits (or one per 6 bits).
const alphanumericChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
