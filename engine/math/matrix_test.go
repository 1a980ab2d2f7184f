package math

import (
	"encoding/binary"
	m "math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMat4MulIdentity(t *testing.T) {
	tr := NewMat4Translation(NewVec3(1, 2, 3))
	require.Equal(t, tr, tr.Mul(NewMat4Identity()))
	require.Equal(t, tr, NewMat4Identity().Mul(tr))

	both := NewMat4Scale(NewVec3(2, 2, 2)).Mul(tr)
	require.True(t, both.TransformPoint(NewVec3(1, 1, 1)).Compare(NewVec3(3, 4, 5), 1e-6))
}

func TestLookAtMovesTargetDownNegativeZ(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, 5), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	require.True(t, view.TransformPoint(NewVec3(0, 0, 0)).Compare(NewVec3(0, 0, -5), 1e-5))
	require.True(t, view.TransformPoint(NewVec3(1, 0, 0)).Compare(NewVec3(1, 0, -5), 1e-5))
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := NewMat4Perspective(DegToRad(60), 16.0/9.0, 0.1, 100)
	require.InDelta(t, -1, proj.TransformPoint(NewVec3(0, 0, -0.1)).Z, 1e-4)
	require.InDelta(t, 1, proj.TransformPoint(NewVec3(0, 0, -100)).Z, 1e-4)
}

func TestEulerZQuarterTurn(t *testing.T) {
	r := NewMat4EulerZ(K_PI / 2)
	require.True(t, r.TransformPoint(NewVec3(1, 0, 0)).Compare(NewVec3(0, 1, 0), 1e-6))
}

func TestMat4Bytes(t *testing.T) {
	b := NewMat4Translation(NewVec3(7, 0, 0)).Bytes()
	require.Len(t, b, 64)
	require.Equal(t, float32(1), m.Float32frombits(binary.LittleEndian.Uint32(b[0:])))
	require.Equal(t, float32(7), m.Float32frombits(binary.LittleEndian.Uint32(b[48:])))
}
