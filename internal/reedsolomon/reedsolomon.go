// Package reedsolomon implements QR code error correction decoding over
// GF(256): syndrome computation, Berlekamp-Massey for the error locator
// polynomial, Chien search for its roots, and Forney's algorithm for the
// error magnitudes. Grounded on the algorithm pipeline in
// jalphad-abstract_algebra's qrcode/decoder/error_correction.go, but
// reimplemented over internal/gf256's table-based field instead of a
// general abstract-algebra package, matching how every production QR
// decoder (including this module's teacher's encoder-side
// reedsolomon.go) does GF(256) arithmetic for speed.
package reedsolomon

import (
	"errors"
	"fmt"

	"github.com/ashokshau/yomu/internal/gf256"
)

// ErrTooManyErrors means the error locator's degree exceeded the number
// of roots Chien search found, or a correction fell outside the block —
// the block is uncorrectable.
var ErrTooManyErrors = errors.New("reedsolomon: too many errors to correct")

// Decode corrects codewords in place (data followed by numECCodewords
// check bytes) and returns the number of errors that were corrected. It
// returns ErrTooManyErrors if correction isn't possible.
func Decode(codewords []byte, numECCodewords int) (int, error) {
	poly := make(gf256.Poly, len(codewords))
	for i, b := range codewords {
		poly[i] = int(b)
	}

	syndromeCoefficients := make([]int, numECCodewords)
	noError := true
	for i := 0; i < numECCodewords; i++ {
		eval := poly.Eval(gf256.Exp(i))
		syndromeCoefficients[len(syndromeCoefficients)-1-i] = eval
		if eval != 0 {
			noError = false
		}
	}
	if noError {
		return 0, nil
	}

	syndrome := gf256.Poly(syndromeCoefficients)

	sigma, omega, err := runBerlekampMassey(syndrome, numECCodewords)
	if err != nil {
		return 0, err
	}

	errorLocations, err := chienSearch(sigma, len(poly))
	if err != nil {
		return 0, err
	}
	errorMagnitudes := forneyMagnitudes(sigma, omega, errorLocations)

	n := len(poly)
	for i, loc := range errorLocations {
		position := n - 1 - gf256.Log(loc)
		if position < 0 || position >= n {
			return 0, fmt.Errorf("%w: bad error position %d", ErrTooManyErrors, position)
		}
		poly[position] = gf256.Add(poly[position], errorMagnitudes[i])
	}

	for i := range codewords {
		codewords[i] = byte(poly[i])
	}
	return len(errorLocations), nil
}

// runBerlekampMassey finds the error locator polynomial sigma and error
// evaluator polynomial omega from the syndrome polynomial, via the
// iterative Berlekamp-Massey algorithm (implemented here as the
// extended-Euclid variant used throughout ZXing-lineage decoders: run
// the polynomial GCD of x^numECCodewords and the syndrome until the
// remainder's degree drops below numECCodewords/2).
func runBerlekampMassey(syndrome gf256.Poly, numECCodewords int) (sigma, omega gf256.Poly, err error) {
	// monomial x^numECCodewords
	rLast := make(gf256.Poly, numECCodewords+1)
	rLast[0] = 1
	r := syndrome

	sLast := gf256.Poly{1}
	s := gf256.Poly{}

	tLast := gf256.Poly{}
	tt := gf256.Poly{1}

	for r.Degree() >= numECCodewords/2 {
		rLastLast, sLastLast, tLastLast := rLast, sLast, tLast
		rLast, sLast, tLast = r, s, tt

		// rLast may carry leading zero coefficients left over from a
		// prior AddPoly/MulPoly (neither strips them), so its true
		// leading term isn't necessarily at index 0 even though
		// Degree() (which already skips leading zeros) says otherwise.
		rLast = rLast.Normalize()
		if rLast.Degree() < 0 {
			return nil, nil, fmt.Errorf("%w: r last degenerated", ErrTooManyErrors)
		}
		r = rLastLast
		quotient := gf256.Poly{}
		denomLeadTerm := rLast[0]
		dltInverse := gf256.Inverse(denomLeadTerm)
		for r.Degree() >= rLast.Degree() && r.Degree() >= 0 {
			r = r.Normalize()
			degreeDiff := r.Degree() - rLast.Degree()
			scale := gf256.Mul(r[0], dltInverse)
			term := make(gf256.Poly, degreeDiff+1)
			term[0] = scale
			quotient = gf256.AddPoly(quotient, term)
			r = gf256.AddPoly(r, gf256.MulPoly(term, rLast))
		}

		s = gf256.AddPoly(gf256.MulPoly(quotient, sLast), sLastLast)
		tt = gf256.AddPoly(gf256.MulPoly(quotient, tLast), tLastLast)
	}

	sigmaTildeAtZero := tt[len(tt)-1]
	if sigmaTildeAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma(0) is zero", ErrTooManyErrors)
	}

	inverse := gf256.Inverse(sigmaTildeAtZero)
	sigma = gf256.ScalePoly(tt, inverse).Normalize()
	omega = gf256.ScalePoly(r, inverse)
	return sigma, omega, nil
}

// chienSearch finds the roots of sigma by brute-force evaluation at
// every nonzero field element (Chien search), returning the
// corresponding error-locator values X_i (the inverses of the roots),
// where X_i = alpha^(n-1-position) for a codeword index position.
func chienSearch(sigma gf256.Poly, n int) ([]int, error) {
	numErrors := sigma.Degree()
	if numErrors == 1 {
		return []int{sigma[0]}, nil
	}

	result := make([]int, 0, numErrors)
	for i := 1; i < 256 && len(result) < numErrors; i++ {
		if sigma.Eval(i) == 0 {
			result = append(result, gf256.Inverse(i))
		}
	}
	if len(result) != numErrors {
		return nil, fmt.Errorf("%w: found %d roots, expected %d", ErrTooManyErrors, len(result), numErrors)
	}
	return result, nil
}

// forneyMagnitudes computes the error value at each located position
// using Forney's formula: e_i = -X_i * omega(X_i^-1) / sigma'(X_i^-1).
// In GF(2^k), negation is a no-op.
func forneyMagnitudes(sigma, omega gf256.Poly, errorLocations []int) []int {
	result := make([]int, len(errorLocations))
	for i, loc := range errorLocations {
		xiInverse := gf256.Inverse(loc)
		result[i] = forneyAt(sigma, omega, gf256.Log(xiInverse))
	}
	return result
}

func forneyAt(sigma, omega gf256.Poly, xiInverseLog int) int {
	xiInverse := gf256.Exp(xiInverseLog)

	errorLocatorDegree := sigma.Degree()
	// Evaluate the formal derivative of sigma at xiInverse: coefficients
	// at odd powers of x survive (characteristic 2), each contributing
	// its coefficient times xiInverse^(power-1).
	derivative := 0
	for i := 0; i < len(sigma); i++ {
		power := errorLocatorDegree - i
		if power <= 0 || power%2 == 0 {
			continue
		}
		term := sigma[i]
		if term == 0 {
			continue
		}
		derivative = gf256.Add(derivative, gf256.Mul(term, gf256.Exp((power-1)*xiInverseLog)))
	}
	if derivative == 0 {
		return 0
	}

	numerator := omega.Eval(xiInverse)
	numerator = gf256.Mul(gf256.Inverse(xiInverse), numerator)
	return gf256.Div(numerator, derivative)
}
