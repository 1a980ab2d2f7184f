package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/platform"
	"github.com/stretchr/testify/require"
)

// recordingDevice only implements the frame ring; every other call panics on the nil
// embedded interface.
type recordingDevice struct {
	GraphicsDevice
	calls    []string
	beginErr error
}

func (d *recordingDevice) PresentBegin() error {
	d.calls = append(d.calls, "begin")
	return d.beginErr
}

func (d *recordingDevice) ExecuteDeferredContexts() error {
	d.calls = append(d.calls, "deferred")
	return nil
}

func (d *recordingDevice) PresentEnd() error {
	d.calls = append(d.calls, "end")
	return nil
}

func TestDrawFrameOrder(t *testing.T) {
	device := &recordingDevice{}
	f := NewFrontend(device)

	err := f.DrawFrame(0.016, func(g GraphicsDevice, dt float64) error {
		require.Same(t, device, g)
		device.calls = append(device.calls, "render")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"begin", "render", "deferred", "end"}, device.calls)
}

func TestDrawFrameSkipsOutOfDateSwapchain(t *testing.T) {
	device := &recordingDevice{beginErr: errors.Wrap(core.ErrSwapchainBooting, "acquire")}
	f := NewFrontend(device)

	rendered := false
	require.NoError(t, f.DrawFrame(0.016, func(GraphicsDevice, float64) error {
		rendered = true
		return nil
	}))
	require.False(t, rendered)
	require.Equal(t, []string{"begin"}, device.calls)
	require.Equal(t, uint64(1), f.Skipped())
}

func TestDrawFrameClosesFrameOnRenderError(t *testing.T) {
	device := &recordingDevice{}
	f := NewFrontend(device)

	boom := errors.New("boom")
	err := f.DrawFrame(0.016, func(GraphicsDevice, float64) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"begin", "deferred", "end"}, device.calls)
}

func TestDirectXBackendIsUnavailable(t *testing.T) {
	_, err := newDirectXBackend(core.DefaultConfig(), &platform.Platform{})
	require.ErrorIs(t, err, core.ErrBackendUnavailable)
}
