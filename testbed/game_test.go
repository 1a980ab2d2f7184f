package testbed

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuadLayout(t *testing.T) {
	vertices, indices := quad()
	require.Len(t, vertices, 4*vertexStride)
	require.Len(t, indices, 12)

	// third vertex is the top right corner with uv (1, 0)
	v := vertices[2*vertexStride:]
	read := func(i int) float32 { return stdmath.Float32frombits(binary.LittleEndian.Uint32(v[i*4:])) }
	require.Equal(t, float32(0.5), read(0))
	require.Equal(t, float32(0.5), read(1))
	require.Equal(t, float32(1), read(3))
	require.Equal(t, float32(0), read(4))

	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(indices[4:]))
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(indices[10:]))
}

func TestChecker(t *testing.T) {
	pix := checker(16)
	require.Len(t, pix, 16*16*4)
	require.Equal(t, byte(0xE0), pix[0])
	// first pixel of the second cell on the first row
	require.Equal(t, byte(0x30), pix[8*4])
	// opaque everywhere
	for i := 3; i < len(pix); i += 4 {
		require.Equal(t, byte(0xFF), pix[i])
	}
}

func TestNewTestGameWiresCallbacks(t *testing.T) {
	tg := NewTestGame()
	require.NotNil(t, tg.FnInitialize)
	require.NotNil(t, tg.FnRender)
	require.NotNil(t, tg.FnShutdown)
	require.Equal(t, "config/anvil.toml", tg.ApplicationConfig.ConfigPath)
	// nothing was created, so shutdown is a no-op
	require.NoError(t, tg.Shutdown())
}
