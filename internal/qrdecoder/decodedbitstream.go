// Package qrdecoder implements the symbol-level stages of the decode
// pipeline: version/format recovery, data masking, codeword
// de-interleaving and error correction, and the final bitstream-to-text
// decoding described here.
package qrdecoder

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// DecoderResult is the final output of the core decode pipeline: the
// assembled text, the Byte-mode segments encountered along the way, and
// the symbol's error-correction level. Each ByteSegments entry holds the
// segment after charset decoding (with any UTF-8 BOM removed), the same
// bytes appended to Text; the undecoded bytes are not kept.
type DecoderResult struct {
	Text                 string
	ByteSegments         [][]byte
	ECLevel              ECLevel
	ApplicationIndicator *string
	StructuredAppend     *StructuredAppendInfo
}

// StructuredAppendInfo records a symbol's position within a
// Structured Append sequence, so callers can collect the sequence's
// symbols across repeated Decode calls and reassemble it.
type StructuredAppendInfo struct {
	SequenceIndex int
	SequenceCount int
	Parity        byte
}

// eciCharsets maps the ECI designator values this decoder recognizes to
// their golang.org/x/text decoder. Unrecognized designators fall back
// to ISO-8859-1, matching the wider ZXing-lineage decoders' leniency.
var eciCharsets = map[int]encoding.Encoding{
	0:  charmap.ISO8859_1, // ASCII-compatible default
	1:  charmap.ISO8859_1,
	2:  charmap.ISO8859_1,
	3:  charmap.ISO8859_1,
	20: japanese.ShiftJIS,
	26: unicode.UTF8,
}

// ParseBitStream runs the DecodedBitStreamParser state machine over the
// corrected data-codeword stream: mode indicator, character-count
// field, segment payload, repeated until a Terminator mode or the
// stream runs dry.
func ParseBitStream(data []byte, version int, ecLevel ECLevel) (*DecoderResult, error) {
	src := newBitSource(data)
	result := &DecoderResult{ECLevel: ecLevel}

	var text strings.Builder
	activeCharset := charmap.ISO8859_1
	fnc1InEffect := false

	for {
		if src.available() < 4 {
			break
		}
		indicatorBits, err := src.readBits(4)
		if err != nil {
			return nil, err
		}
		mode, ok := ModeFromIndicator(indicatorBits)
		if !ok {
			return nil, fmt.Errorf("qrdecoder: unrecognized mode indicator 0x%x", indicatorBits)
		}
		if mode == ModeTerminator {
			break
		}

		switch mode {
		case ModeNumeric:
			if err := decodeNumeric(src, version, &text); err != nil {
				return nil, err
			}
		case ModeAlphanumeric:
			if err := decodeAlphanumeric(src, version, &text, fnc1InEffect); err != nil {
				return nil, err
			}
		case ModeByte:
			seg, err := decodeByte(src, version, activeCharset)
			if err != nil {
				return nil, err
			}
			result.ByteSegments = append(result.ByteSegments, seg)
			text.Write(seg)
		case ModeKanji:
			if err := decodeKanji(src, version, &text); err != nil {
				return nil, err
			}
		case ModeHanzi:
			if err := decodeHanzi(src, version, &text); err != nil {
				return nil, err
			}
		case ModeECI:
			cs, err := decodeECI(src)
			if err != nil {
				return nil, err
			}
			activeCharset = cs
		case ModeStructuredAppend:
			info, err := decodeStructuredAppend(src)
			if err != nil {
				return nil, err
			}
			result.StructuredAppend = info
		case ModeFNC1First:
			indicator, err := decodeFNC1First(src)
			if err != nil {
				return nil, err
			}
			result.ApplicationIndicator = indicator
			fnc1InEffect = true
		case ModeFNC1Second:
			indicator, err := decodeFNC1Second(src)
			if err != nil {
				return nil, err
			}
			result.ApplicationIndicator = indicator
			fnc1InEffect = true
		default:
			return nil, fmt.Errorf("qrdecoder: unsupported mode %v", mode)
		}
	}

	result.Text = text.String()
	return result, nil
}

// decodeNumeric reads a character-count field then unpacks digits in
// groups of three (10 bits), two (7 bits), or a final single digit (4
// bits).
func decodeNumeric(src *bitSource, version int, out *strings.Builder) error {
	count, err := src.readBits(CharacterCountBits(ModeNumeric, version))
	if err != nil {
		return err
	}
	for count >= 3 {
		v, err := src.readBits(10)
		if err != nil {
			return err
		}
		if v >= 1000 {
			return fmt.Errorf("qrdecoder: invalid numeric group %d", v)
		}
		fmt.Fprintf(out, "%03d", v)
		count -= 3
	}
	if count == 2 {
		v, err := src.readBits(7)
		if err != nil {
			return err
		}
		if v >= 100 {
			return fmt.Errorf("qrdecoder: invalid numeric group %d", v)
		}
		fmt.Fprintf(out, "%02d", v)
	} else if count == 1 {
		v, err := src.readBits(4)
		if err != nil {
			return err
		}
		if v >= 10 {
			return fmt.Errorf("qrdecoder: invalid numeric digit %d", v)
		}
		out.WriteString(strconv.Itoa(v))
	}
	return nil
}

// decodeAlphanumeric reads a character-count field then unpacks
// characters two at a time (11 bits, val/45 and val%45) with a final
// single character (6 bits) when the count is odd. When fnc1InEffect
// (an FNC1 indicator preceded this segment, per spec.md §4.10's GS1
// handling), '%' characters are massaged per ISO/IEC 18004 §6.4.8.1:
// '%%' collapses to a literal '%', and any other lone '%' becomes the
// GS1 application-data separator (ASCII GS, 0x1D).
func decodeAlphanumeric(src *bitSource, version int, out *strings.Builder, fnc1InEffect bool) error {
	count, err := src.readBits(CharacterCountBits(ModeAlphanumeric, version))
	if err != nil {
		return err
	}
	var seg strings.Builder
	for count >= 2 {
		v, err := src.readBits(11)
		if err != nil {
			return err
		}
		hi, lo := v/45, v%45
		if hi >= len(alphanumericChars) || lo >= len(alphanumericChars) {
			return fmt.Errorf("qrdecoder: invalid alphanumeric pair %d", v)
		}
		seg.WriteByte(alphanumericChars[hi])
		seg.WriteByte(alphanumericChars[lo])
		count -= 2
	}
	if count == 1 {
		v, err := src.readBits(6)
		if err != nil {
			return err
		}
		if v >= len(alphanumericChars) {
			return fmt.Errorf("qrdecoder: invalid alphanumeric char %d", v)
		}
		seg.WriteByte(alphanumericChars[v])
	}

	if !fnc1InEffect {
		out.WriteString(seg.String())
		return nil
	}
	out.WriteString(applyFNC1PercentEscape(seg.String()))
	return nil
}

// applyFNC1PercentEscape rewrites a decoded alphanumeric segment per
// ISO/IEC 18004 §6.4.8.1: a doubled "%%" collapses to one literal '%',
// and any other '%' becomes the GS1 separator byte 0x1D.
func applyFNC1PercentEscape(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			out.WriteByte('%')
			i++
			continue
		}
		out.WriteByte(0x1D)
	}
	return out.String()
}

// hasHighBit reports whether any byte has the top bit set.
func hasHighBit(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return true
		}
	}
	return false
}

// decodeByte reads a character-count field then the raw byte segment,
// decoded under the currently active ECI charset.
func decodeByte(src *bitSource, version int, charset encoding.Encoding) ([]byte, error) {
	count, err := src.readBits(CharacterCountBits(ModeByte, version))
	if err != nil {
		return nil, err
	}
	raw := make([]byte, count)
	for i := 0; i < count; i++ {
		b, err := src.readBits(8)
		if err != nil {
			return nil, err
		}
		raw[i] = byte(b)
	}

	if bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		return raw[3:], nil
	}
	if hasHighBit(raw) && utf8.Valid(raw) {
		// Heuristic: if the raw bytes already form valid, non-ASCII
		// UTF-8, trust that over the declared charset rather than
		// mangling it through an 8859-1 remap.
		return raw, nil
	}

	decoded, err := charset.NewDecoder().Bytes(raw)
	if err != nil {
		return raw, nil
	}
	return decoded, nil
}

// decodeKanji reads a character-count field then unpacks 13-bit Kanji
// codes, each re-expanded into the two Shift-JIS bytes and decoded via
// golang.org/x/text/encoding/japanese.
func decodeKanji(src *bitSource, version int, out *strings.Builder) error {
	count, err := src.readBits(CharacterCountBits(ModeKanji, version))
	if err != nil {
		return err
	}
	buf := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v, err := src.readBits(13)
		if err != nil {
			return err
		}
		assembled := (v/0xC0)<<8 | (v % 0xC0)
		var sjis int
		if assembled < 0x1F00 {
			sjis = assembled + 0x8140
		} else {
			sjis = assembled + 0xC140
		}
		buf = append(buf, byte(sjis>>8), byte(sjis))
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(buf)
	if err != nil {
		return fmt.Errorf("qrdecoder: kanji decode: %w", err)
	}
	out.Write(decoded)
	return nil
}

// decodeHanzi reads a subset indicator (GB2312 vs. GBK, where 1 means
// the GB2312 subset this decoder supports) then a character-count
// field, unpacking 13-bit codes into their two GB2312 bytes and
// decoding via golang.org/x/text/encoding/simplifiedchinese.
func decodeHanzi(src *bitSource, version int, out *strings.Builder) error {
	subset, err := src.readBits(4)
	if err != nil {
		return err
	}
	count, err := src.readBits(CharacterCountBits(ModeHanzi, version))
	if err != nil {
		return err
	}
	buf := make([]byte, 0, 2*count)
	for i := 0; i < count; i++ {
		v, err := src.readBits(13)
		if err != nil {
			return err
		}
		assembled := (v/0x60)<<8 | (v % 0x60)
		var gb int
		if assembled < 0x0A00 {
			gb = assembled + 0xA1A1
		} else {
			gb = assembled + 0xA6A1
		}
		buf = append(buf, byte(gb>>8), byte(gb))
	}
	if subset != 1 {
		return fmt.Errorf("qrdecoder: unsupported hanzi subset %d", subset)
	}
	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(buf)
	if err != nil {
		return fmt.Errorf("qrdecoder: hanzi decode: %w", err)
	}
	out.Write(decoded)
	return nil
}

// decodeECI reads the 1/2/3-byte ECI designator and resolves it to a
// charset, falling back to ISO-8859-1 for anything this decoder doesn't
// recognize.
func decodeECI(src *bitSource) (encoding.Encoding, error) {
	first, err := src.readBits(8)
	if err != nil {
		return nil, err
	}
	var designator int
	switch {
	case first&0x80 == 0:
		designator = first
	case first&0xC0 == 0x80:
		second, err := src.readBits(8)
		if err != nil {
			return nil, err
		}
		designator = (first&0x3F)<<8 | second
	default:
		second, err := src.readBits(8)
		if err != nil {
			return nil, err
		}
		third, err := src.readBits(8)
		if err != nil {
			return nil, err
		}
		designator = (first&0x1F)<<16 | second<<8 | third
	}
	if cs, ok := eciCharsets[designator]; ok {
		return cs, nil
	}
	return charmap.ISO8859_1, nil
}

// decodeStructuredAppend reads the fixed 4-bit sequence-index, 4-bit
// sequence-count, and 8-bit parity header.
func decodeStructuredAppend(src *bitSource) (*StructuredAppendInfo, error) {
	index, err := src.readBits(4)
	if err != nil {
		return nil, err
	}
	count, err := src.readBits(4)
	if err != nil {
		return nil, err
	}
	parity, err := src.readBits(8)
	if err != nil {
		return nil, err
	}
	return &StructuredAppendInfo{
		SequenceIndex: index,
		SequenceCount: count + 1,
		Parity:        byte(parity),
	}, nil
}

// decodeFNC1First reads the first-position FNC1 application indicator
// as a single byte: a value below 100 becomes a two-digit string ("42"),
// and a value of 100 or more becomes the one character v-100+33.
func decodeFNC1First(src *bitSource) (*string, error) {
	v, err := src.readBits(8)
	if err != nil {
		return nil, err
	}
	var s string
	if v < 100 {
		s = fmt.Sprintf("%02d", v)
	} else {
		s = string(rune(v - 100 + 33))
	}
	return &s, nil
}

// decodeFNC1Second reads the second-position FNC1 application
// indicator: either a single byte (AIM indicator, offset into printable
// ASCII) or, when the first byte is in [100,199], a two-character
// industry code.
func decodeFNC1Second(src *bitSource) (*string, error) {
	v, err := src.readBits(8)
	if err != nil {
		return nil, err
	}
	var s string
	switch {
	case v < 100:
		s = string(rune(v + 33))
	case v < 200:
		second, err := src.readBits(8)
		if err != nil {
			return nil, err
		}
		s = string(rune(v-100+65)) + string(rune(second))
	default:
		s = strconv.Itoa(v)
	}
	return &s, nil
}
