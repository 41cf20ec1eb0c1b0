package qrdecoder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testBitWriter builds a byte stream bit-by-bit, MSB-first, mirroring
// bitSource's read-side cursor discipline, so these tests can hand-
// construct streams for modes qrfixture doesn't synthesize (ECI,
// StructuredAppend, FNC1, Kanji, Hanzi).
type testBitWriter struct {
	bits []bool
}

func (w *testBitWriter) put(v, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, (v>>uint(i))&1 == 1)
	}
}

func (w *testBitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

func TestParseBitStreamECISwitchesByteCharset(t *testing.T) {
	w := &testBitWriter{}
	w.put(int(ModeECI), 4)
	w.put(26, 8) // UTF-8 designator
	w.put(int(ModeByte), 4)
	w.put(3, CharacterCountBits(ModeByte, 1))
	w.put(int('H'), 8)
	w.put(int('i'), 8)
	w.put(int('!'), 8)
	w.put(int(ModeTerminator), 4)

	result, err := ParseBitStream(w.bytes(), 1, LevelM)
	require.NoError(t, err)
	require.Equal(t, "Hi!", result.Text)
}

func TestParseBitStreamStructuredAppendHeader(t *testing.T) {
	w := &testBitWriter{}
	w.put(int(ModeStructuredAppend), 4)
	w.put(2, 4) // sequence index 2
	w.put(3, 4) // sequence count field 3 -> count 4
	w.put(0xA5, 8)
	w.put(int(ModeTerminator), 4)

	result, err := ParseBitStream(w.bytes(), 1, LevelM)
	require.NoError(t, err)
	require.NotNil(t, result.StructuredAppend)
	require.Equal(t, 2, result.StructuredAppend.SequenceIndex)
	require.Equal(t, 4, result.StructuredAppend.SequenceCount)
	require.Equal(t, byte(0xA5), result.StructuredAppend.Parity)
}

func TestParseBitStreamFNC1FirstDigitPair(t *testing.T) {
	w := &testBitWriter{}
	w.put(int(ModeFNC1First), 4)
	w.put(42, 8) // < 100 -> digit pair "42"
	w.put(int(ModeTerminator), 4)

	result, err := ParseBitStream(w.bytes(), 1, LevelM)
	require.NoError(t, err)
	require.NotNil(t, result.ApplicationIndicator)
	require.Equal(t, "42", *result.ApplicationIndicator)
}

func TestParseBitStreamFNC1AlphanumericPercentBecomesGS(t *testing.T) {
	w := &testBitWriter{}
	w.put(int(ModeFNC1First), 4)
	w.put(0, 8) // application indicator "00", irrelevant to this test
	w.put(int(ModeAlphanumeric), 4)
	w.put(3, CharacterCountBits(ModeAlphanumeric, 1)) // "A%1"
	w.put(indexOfAlphanumeric('A')*45+indexOfAlphanumeric('%'), 11)
	w.put(indexOfAlphanumeric('1'), 6)
	w.put(int(ModeTerminator), 4)

	result, err := ParseBitStream(w.bytes(), 1, LevelM)
	require.NoError(t, err)
	require.Equal(t, "A\x1D1", result.Text)
}

func TestParseBitStreamFNC1AlphanumericDoublePercentIsLiteral(t *testing.T) {
	w := &testBitWriter{}
	w.put(int(ModeFNC1First), 4)
	w.put(0, 8)
	w.put(int(ModeAlphanumeric), 4)
	w.put(2, CharacterCountBits(ModeAlphanumeric, 1)) // "%%"
	w.put(indexOfAlphanumeric('%')*45+indexOfAlphanumeric('%'), 11)
	w.put(int(ModeTerminator), 4)

	result, err := ParseBitStream(w.bytes(), 1, LevelM)
	require.NoError(t, err)
	require.Equal(t, "%", result.Text)
}

func indexOfAlphanumeric(c byte) int {
	for i := 0; i < len(alphanumericChars); i++ {
		if alphanumericChars[i] == c {
			return i
		}
	}
	return -1
}

func TestParseBitStreamRejectsUnknownIndicator(t *testing.T) {
	w := &testBitWriter{}
	w.put(0x6, 4) // unassigned indicator
	w.put(0, 8)

	_, err := ParseBitStream(w.bytes(), 1, LevelM)
	require.Error(t, err)
}

func TestParseBitStreamEmptyStreamYieldsEmptyText(t *testing.T) {
	result, err := ParseBitStream(nil, 1, LevelM)
	require.NoError(t, err)
	require.Equal(t, "", result.Text)
}

func TestCharacterCountBitsMatchesVersionClasses(t *testing.T) {
	require.Equal(t, 10, CharacterCountBits(ModeNumeric, 1))
	require.Equal(t, 12, CharacterCountBits(ModeNumeric, 10))
	require.Equal(t, 14, CharacterCountBits(ModeNumeric, 27))
	require.Equal(t, 8, CharacterCountBits(ModeByte, 9))
	require.Equal(t, 16, CharacterCountBits(ModeByte, 10))
}
