package math

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, uint64(0), AlignUp[uint64](0, 256))
	require.Equal(t, uint64(256), AlignUp[uint64](1, 256))
	require.Equal(t, uint64(256), AlignUp[uint64](256, 256))
	require.Equal(t, uint64(12), AlignUp[uint64](10, 3))
	require.Equal(t, uint32(7), AlignUp[uint32](7, 1))
}

func TestLog2AndMipExtent(t *testing.T) {
	require.Equal(t, uint32(0), Log2[uint32](1))
	require.Equal(t, uint32(3), Log2[uint32](8))
	require.Equal(t, uint32(9), Log2[uint32](1023))

	dims := [][2]uint32{}
	for mip := uint32(0); mip < 4; mip++ {
		dims = append(dims, [2]uint32{MipExtent[uint32](8, mip), MipExtent[uint32](4, mip)})
	}
	require.Equal(t, [][2]uint32{{8, 4}, {4, 2}, {2, 1}, {1, 1}}, dims)
}

func TestClampMinMax(t *testing.T) {
	require.Equal(t, 5, Clamp(9, 0, 5))
	require.Equal(t, float32(0), Clamp(float32(-1), 0, 1))
	require.Equal(t, 3, Max(3, 2))
	require.Equal(t, 2, Min(3, 2))
	require.True(t, IsPow2[uint64](256))
	require.False(t, IsPow2[uint64](0))
}
