package gf256

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInverseRoundTrip(t *testing.T) {
	for x := 1; x <= 255; x++ {
		require.Equal(t, 1, Mul(x, Inverse(x)), "x=%d", x)
	}
}

func TestExpLogInverse(t *testing.T) {
	for x := 1; x <= 255; x++ {
		require.Equal(t, x, Exp(Log(x)), "x=%d", x)
	}
}

func TestAddIsXor(t *testing.T) {
	require.Equal(t, 0, Add(200, 200))
	require.Equal(t, 200^57, Add(200, 57))
}

func TestMulZero(t *testing.T) {
	require.Equal(t, 0, Mul(0, 42))
	require.Equal(t, 0, Mul(42, 0))
}

func TestGeneratorPolyDegree(t *testing.T) {
	for _, n := range []int{7, 10, 13, 17, 30} {
		gen := GeneratorPoly(n)
		require.Equal(t, n, gen.Degree())
		require.Len(t, gen, n+1)
	}
}

func TestPolyEval(t *testing.T) {
	p := Poly{1, 0, 1} // x^2 + 1
	require.Equal(t, 1, p.Eval(0))
	require.Equal(t, Add(Mul(1, 1), 1), p.Eval(1))
}
