package components

import (
	"testing"

	"github.com/spaghettifunk/anvil/engine/math"
	"github.com/stretchr/testify/require"
)

func TestCameraOrbitKeepsDistance(t *testing.T) {
	c := NewCamera(16.0 / 9.0)
	require.True(t, c.Position().Compare(math.NewVec3(0, 0, 3), 1e-5))

	c.Orbit(math.K_PI / 2)
	pos := c.Position()
	require.InDelta(t, 3, pos.Length(), 1e-5)
	require.InDelta(t, 0, pos.Y, 1e-6)
}

func TestCameraTargetProjectsToCenter(t *testing.T) {
	c := NewCamera(1)
	c.Orbit(0.7)
	clip := c.ViewProjection().TransformPoint(c.Target)
	require.InDelta(t, 0, clip.X, 1e-5)
	require.InDelta(t, 0, clip.Y, 1e-5)
	require.Greater(t, clip.Z, float32(-1))
	require.Less(t, clip.Z, float32(1))
}
