package reedsolomon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashokshau/yomu/internal/gf256"
)

// encode produces data+EC codewords the same way the generator
// polynomial construction in gf256 implies: message(x) * x^numEC mod
// generator(x) gives the remainder appended as check symbols.
func encode(data []byte, numECCodewords int) []byte {
	gen := gf256.GeneratorPoly(numECCodewords)

	msg := make(gf256.Poly, len(data)+numECCodewords)
	for i, b := range data {
		msg[i] = int(b)
	}

	remainder := make(gf256.Poly, len(msg))
	copy(remainder, msg)
	for i := 0; i < len(data); i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j, gc := range gen {
			remainder[i+j] = gf256.Add(remainder[i+j], gf256.Mul(gc, coef))
		}
	}

	out := make([]byte, len(data)+numECCodewords)
	copy(out, data)
	for i := 0; i < numECCodewords; i++ {
		out[len(data)+i] = byte(remainder[len(data)+i])
	}
	return out
}

func TestDecodeCleanCodewordsNoErrors(t *testing.T) {
	data := []byte{32, 91, 11, 120, 209, 114, 220, 77}
	numEC := 10
	codewords := encode(data, numEC)

	corrected, err := Decode(codewords, numEC)
	require.NoError(t, err)
	require.Equal(t, 0, corrected)
	require.Equal(t, data, codewords[:len(data)])
}

func TestDecodeCorrectsSingleError(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	numEC := 10
	codewords := encode(data, numEC)

	codewords[3] ^= 0xFF

	corrected, err := Decode(codewords, numEC)
	require.NoError(t, err)
	require.Equal(t, 1, corrected)
	require.Equal(t, data, codewords[:len(data)])
}

func TestDecodeCorrectsMultipleErrorsWithinCapacity(t *testing.T) {
	data := []byte{10, 20, 30, 40, 50, 60}
	numEC := 10 // capacity: 5 errors
	codewords := encode(data, numEC)

	codewords[0] ^= 0x55
	codewords[2] ^= 0x11
	codewords[5] ^= 0x80
	codewords[7] ^= 0x01

	corrected, err := Decode(codewords, numEC)
	require.NoError(t, err)
	require.Equal(t, 4, corrected)
	require.Equal(t, data, codewords[:len(data)])
}

func TestDecodeSurvivesZeroLeadingSyndromeCoefficient(t *testing.T) {
	// This exact (data, numEC, error) combination drove a stored-zero
	// leading coefficient into the first Berlekamp-Massey iteration
	// (rLast[0] == 0 while rLast.Degree() >= 0 elsewhere in the slice),
	// which used to panic in gf256.Inverse instead of decoding a
	// correctable two-error block.
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	numEC := 10
	codewords := encode(data, numEC)

	codewords[0] ^= 57
	codewords[1] ^= 99

	require.NotPanics(t, func() {
		corrected, err := Decode(codewords, numEC)
		require.NoError(t, err)
		require.Equal(t, 2, corrected)
		require.Equal(t, data, codewords[:len(data)])
	})
}

func TestDecodeReportsTooManyErrors(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	numEC := 6 // capacity: 3 errors
	codewords := encode(data, numEC)

	for i := range codewords {
		codewords[i] ^= 0xFF
	}

	_, err := Decode(codewords, numEC)
	require.ErrorIs(t, err, ErrTooManyErrors)
}
