package bitmatrix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	widths := []int{1, 17, 32, 33, 97}
	heights := []int{1, 5, 32, 97}
	for _, w := range widths {
		for _, h := range heights {
			m := New(w, h)
			require.Equal(t, (w+31)/32*h, len(m.RawWords()))
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					require.False(t, m.Get(x, y), "fresh matrix should be all-clear at (%d,%d)", x, y)
				}
			}
			m.Set(w-1, h-1)
			require.True(t, m.Get(w-1, h-1))
			m.Clear(w - 1, h-1)
			require.False(t, m.Get(w-1, h-1))
		}
	}
}

func TestGetOutOfBoundsIsFalse(t *testing.T) {
	m := New(10, 10)
	require.False(t, m.Get(-1, 0))
	require.False(t, m.Get(0, -1))
	require.False(t, m.Get(10, 0))
	require.False(t, m.Get(0, 10))
}

func TestSetRegionClips(t *testing.T) {
	m := New(5, 5)
	m.SetRegion(-2, -2, 4, 4)
	require.True(t, m.Get(0, 0))
	require.True(t, m.Get(1, 1))
	require.False(t, m.Get(2, 2))
}

func TestRowCount(t *testing.T) {
	m := New(40, 2)
	for x := 0; x < 40; x += 2 {
		m.Set(x, 0)
	}
	require.Equal(t, 20, m.RowCount(0))
	require.Equal(t, 0, m.RowCount(1))
}
