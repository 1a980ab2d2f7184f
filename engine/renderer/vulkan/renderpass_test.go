package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

type passFixture struct {
	driver     *fakeDriver
	manager    *RenderPassManager
	cmd        vk.CommandBuffer
	pipeline   vk.Pipeline
	renderPass vk.RenderPass
	extent     vk.Extent2D
}

func newPassFixture() *passFixture {
	driver := newFakeDriver()
	f := &passFixture{
		driver:     driver,
		manager:    NewRenderPassManager(driver, newFramebufferCache()),
		cmd:        fakeHandle[vk.CommandBuffer](),
		pipeline:   fakeHandle[vk.Pipeline](),
		renderPass: fakeHandle[vk.RenderPass](),
		extent:     vk.Extent2D{Width: 256, Height: 128},
	}
	f.manager.SetPipeline(f.cmd, f.pipeline, f.renderPass)
	return f
}

func TestRenderPassSameTargetsStayActive(t *testing.T) {
	f := newPassFixture()
	a := fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))
	require.True(t, f.manager.Active())

	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Equal(t, 1, f.driver.beginPasses)
	require.Equal(t, 0, f.driver.endPasses)
	require.Equal(t, 1, f.driver.framebuffers)
}

func TestRenderPassNewTargetsRestartPass(t *testing.T) {
	f := newPassFixture()
	a, b := fakeHandle[vk.ImageView](), fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))
	f.manager.SetTargets([]vk.ImageView{b}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Equal(t, 2, f.driver.beginPasses)
	require.Equal(t, 1, f.driver.endPasses)
	require.Equal(t, 2, f.driver.framebuffers)
}

func TestRenderPassFramebufferCacheSurvivesReset(t *testing.T) {
	f := newPassFixture()
	a := fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))
	f.manager.Disable(f.cmd)
	f.manager.Reset()
	require.False(t, f.manager.Active())

	f.manager.SetPipeline(f.cmd, f.pipeline, f.renderPass)
	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Equal(t, 1, f.driver.framebuffers)
	require.Equal(t, 1, f.manager.cache.Len())
}

func TestRenderPassDisableOnlyEndsActivePass(t *testing.T) {
	f := newPassFixture()
	f.manager.Disable(f.cmd)
	require.Equal(t, 0, f.driver.endPasses)

	f.manager.SetTargets([]vk.ImageView{fakeHandle[vk.ImageView]()}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))
	f.manager.Disable(f.cmd)
	f.manager.Disable(f.cmd)
	require.Equal(t, 1, f.driver.endPasses)

	// the targets are kept, so the next draw begins the pass again from the cache
	require.NoError(t, f.manager.Validate(f.cmd))
	require.Equal(t, 2, f.driver.beginPasses)
	require.Equal(t, 1, f.driver.framebuffers)
}

func TestRenderPassClearWaitsForItsTarget(t *testing.T) {
	f := newPassFixture()
	a, b := fakeHandle[vk.ImageView](), fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	f.manager.QueueClear(ClearRequest{View: b, Color: [4]float32{1, 0, 0, 1}})
	require.NoError(t, f.manager.Validate(f.cmd))
	require.Empty(t, f.driver.clearCalls)
	require.Equal(t, 1, f.manager.PendingClears())

	f.manager.SetTargets([]vk.ImageView{b}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Len(t, f.driver.clearCalls, 1)
	require.Len(t, f.driver.clearCalls[0], 1)
	require.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), f.driver.clearCalls[0][0].AspectMask)
	require.Equal(t, uint32(0), f.driver.clearCalls[0][0].ColorAttachment)
	require.Zero(t, f.manager.PendingClears())
}

func TestRenderPassDepthClearAspects(t *testing.T) {
	f := newPassFixture()
	color, depth := fakeHandle[vk.ImageView](), fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{color}, depth, f.extent, 1)
	f.manager.QueueClear(ClearRequest{View: depth, Depth: 1, Flags: metadata.ClearDepth | metadata.ClearStencil})
	f.manager.QueueClear(ClearRequest{View: color})
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Len(t, f.driver.clearCalls, 1)
	require.Len(t, f.driver.clearCalls[0], 2)
	require.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit|vk.ImageAspectStencilBit), f.driver.clearCalls[0][0].AspectMask)
	require.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), f.driver.clearCalls[0][1].AspectMask)
}

func TestRenderPassValidateWithoutTargetsAsserts(t *testing.T) {
	f := newPassFixture()
	require.Panics(t, func() { _ = f.manager.Validate(f.cmd) })
}

func TestRenderPassBackbufferResumesWithoutCache(t *testing.T) {
	f := newPassFixture()
	present, resume := fakeHandle[vk.RenderPass](), fakeHandle[vk.RenderPass]()
	framebuffer := fakeHandle[vk.Framebuffer]()
	view := fakeHandle[vk.ImageView]()

	f.manager.BeginExternal(f.cmd, present, resume, framebuffer, view, f.extent, [4]float32{0, 0, 0, 1})
	require.NoError(t, f.manager.Validate(f.cmd))
	require.Equal(t, 1, f.driver.beginPasses)

	f.manager.Disable(f.cmd)
	require.NoError(t, f.manager.Validate(f.cmd))
	require.Equal(t, 2, f.driver.beginPasses)

	f.manager.SetTargets([]vk.ImageView{fakeHandle[vk.ImageView]()}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))
	f.manager.BindBackbuffer()
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Equal(t, 4, f.driver.beginPasses)
	require.Equal(t, 1, f.driver.framebuffers)
}

func TestRenderPassFramebufferCacheDestroyThenReuse(t *testing.T) {
	f := newPassFixture()
	a := fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))
	f.manager.Disable(f.cmd)

	f.manager.cache.destroy(f.driver)
	require.Zero(t, f.manager.cache.Len())
	require.Equal(t, 1, f.driver.destroyed)

	f.manager.Reset()
	f.manager.SetPipeline(f.cmd, f.pipeline, f.renderPass)
	f.manager.SetTargets([]vk.ImageView{a}, nil, f.extent, 1)
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Equal(t, 2, f.driver.framebuffers)
	require.Equal(t, 1, f.manager.cache.Len())
}

func TestRenderPassMismatchedClearIsDropped(t *testing.T) {
	f := newPassFixture()
	color, depth := fakeHandle[vk.ImageView](), fakeHandle[vk.ImageView]()

	f.manager.SetTargets([]vk.ImageView{color}, depth, f.extent, 1)
	f.manager.QueueClear(ClearRequest{View: color, Depth: 1, Flags: metadata.ClearDepth})
	f.manager.QueueClear(ClearRequest{View: depth, Color: [4]float32{1, 1, 1, 1}})
	require.NoError(t, f.manager.Validate(f.cmd))

	require.Empty(t, f.driver.clearCalls)
	require.Zero(t, f.manager.PendingClears())
}

func TestRenderPassClearOverflowAsserts(t *testing.T) {
	f := newPassFixture()
	for i := 0; i < maxPendingClears; i++ {
		f.manager.QueueClear(ClearRequest{View: fakeHandle[vk.ImageView]()})
	}
	require.Equal(t, maxPendingClears, f.manager.PendingClears())

	require.Panics(t, func() {
		f.manager.QueueClear(ClearRequest{View: fakeHandle[vk.ImageView]()})
	})
	require.Equal(t, maxPendingClears, f.manager.PendingClears())
}
