package renderer

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/platform"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

// RenderFunc records one frame. It runs between PresentBegin and PresentEnd.
type RenderFunc func(device GraphicsDevice, deltaTime float64) error

type Frontend struct {
	device    GraphicsDevice
	presenter FramePresenter
	clock     *core.Clock
	skipped   uint64
}

var (
	initRenderer sync.Once
	frontend     *Frontend
	initErr      error
)

// New brings up the backend named in the config. The first call wins; later calls return
// the same frontend.
func New(cfg *core.Config, window *platform.Platform) (*Frontend, error) {
	initRenderer.Do(func() {
		rendererType, ok := metadata.ParseRendererType(cfg.Renderer.Backend)
		if !ok {
			core.LogWarn("unknown renderer backend %q, falling back to %s", cfg.Renderer.Backend, rendererType)
		}
		factory, found := backends[rendererType]
		if !found {
			initErr = errors.Wrapf(core.ErrBackendUnavailable, "%s", rendererType)
			return
		}
		device, err := factory(cfg, window)
		if err != nil {
			core.LogError(err.Error())
			initErr = err
			return
		}
		frontend = NewFrontend(device)
		core.LogInfo("%s renderer initialized.", rendererType)
	})
	return frontend, initErr
}

// Device returns the device created by New, or nil before that.
func Device() GraphicsDevice {
	if frontend == nil {
		return nil
	}
	return frontend.device
}

func NewFrontend(device GraphicsDevice) *Frontend {
	_ = core.MetricsInitialize()
	return &Frontend{
		device:    device,
		presenter: device,
		clock:     core.NewClock(),
	}
}

func (f *Frontend) Device() GraphicsDevice {
	return f.device
}

// Skipped counts the frames dropped because the swapchain was being recreated.
func (f *Frontend) Skipped() uint64 {
	return f.skipped
}

/**
 * @brief Runs one frame: begin, let render record, submit the deferred threads and
 * present. A frame whose image cannot be acquired because the swapchain is out of date is
 * skipped without error.
 */
func (f *Frontend) DrawFrame(deltaTime float64, render RenderFunc) error {
	f.clock.Start()

	if err := f.presenter.PresentBegin(); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			f.skipped++
			return nil
		}
		core.LogError(err.Error())
		return err
	}

	if render != nil {
		if err := render(f.device, deltaTime); err != nil {
			core.LogError("render callback failed: %s", err)
			// the frame is still closed so the ring stays consistent
			if endErr := f.endFrame(); endErr != nil {
				return errors.CombineErrors(err, endErr)
			}
			return err
		}
	}

	if err := f.endFrame(); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}

	f.clock.Update()
	core.MetricsUpdate(f.clock.Elapsed())
	return nil
}

func (f *Frontend) endFrame() error {
	if err := f.presenter.ExecuteDeferredContexts(); err != nil {
		return err
	}
	return f.presenter.PresentEnd()
}

func (f *Frontend) Shutdown() error {
	if f.device == nil {
		return nil
	}
	if err := f.device.WaitForGPU(); err != nil {
		core.LogWarn("wait for gpu: %s", err)
	}
	err := f.device.Close()
	f.device = nil
	f.presenter = nil
	return err
}
