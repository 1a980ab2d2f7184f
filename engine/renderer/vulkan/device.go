package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

const (
	maxViewports     = 6
	maxScissors      = 8
	maxVertexBuffers = 8
)

type DeviceConfig struct {
	MaxRenameCount      uint32
	ThreadAllocatorSize uint64
	BufferUploaderSize  uint64
	TextureUploaderSize uint64
	// ClearColor is what PresentBegin clears the backbuffer to.
	ClearColor [4]float32
}

// DeviceConfigFrom maps the renderer section of the engine config.
func DeviceConfigFrom(cfg core.RendererConfig) DeviceConfig {
	return DeviceConfig{
		MaxRenameCount:      cfg.MaxRenameCount,
		ThreadAllocatorSize: cfg.ThreadAllocatorSize,
		BufferUploaderSize:  cfg.BufferUploaderSize,
		TextureUploaderSize: cfg.TextureUploaderSize,
	}
}

func (c *DeviceConfig) applyDefaults() {
	if c.MaxRenameCount == 0 {
		c.MaxRenameCount = DEFAULT_MAX_RENAME_COUNT
	}
	if c.ThreadAllocatorSize == 0 {
		c.ThreadAllocatorSize = core.DefaultThreadAllocatorSize
	}
	if c.BufferUploaderSize == 0 {
		c.BufferUploaderSize = core.DefaultUploaderSize
	}
	if c.TextureUploaderSize == 0 {
		c.TextureUploaderSize = core.DefaultUploaderSize
	}
}

// nullResources back every descriptor slot that nothing is bound to.
type nullResources struct {
	buffer       vk.Buffer
	bufferMemory vk.DeviceMemory
	bufferView   vk.BufferView
	image        vk.Image
	imageMemory  vk.DeviceMemory
	imageView    vk.ImageView
	sampler      vk.Sampler
}

func (n *nullResources) descriptors() nullDescriptors {
	return nullDescriptors{
		buffer:     n.buffer,
		imageView:  n.imageView,
		bufferView: n.bufferView,
		sampler:    n.sampler,
	}
}

// threadState is the recording state of one thread that outlives a descriptor stall.
type threadState struct {
	renderPass *RenderPassManager

	graphicsPSO *pipelineResource
	computePSO  *pipelineResource

	vertexBuffers [maxVertexBuffers]vk.Buffer
	vertexOffsets [maxVertexBuffers]vk.DeviceSize
	vertexCount   uint32

	indexBuffer    vk.Buffer
	indexOffset    vk.DeviceSize
	indexType      vk.IndexType
	hasIndexBuffer bool

	viewports   []vk.Viewport
	scissors    []vk.Rect2D
	blendFactor [4]float32
	stencilRef  uint32
}

/**
 * @brief The Vulkan rendering device. Resource creation may be called from any goroutine;
 * each GraphicsThread must only ever be recorded from one goroutine at a time.
 */
type Device struct {
	driver   Driver
	config   DeviceConfig
	locks    *LockPool
	families QueueFamilies

	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	layouts      *descriptorLayouts
	nulls        nullResources
	framebuffers *framebufferCache
	copyQueue    *copyQueue
	stallFence   *Fence

	presentPass           vk.RenderPass
	resumePass            vk.RenderPass
	swapchainViews        []vk.ImageView
	swapchainFramebuffers []vk.Framebuffer
	screen                vk.Extent2D
	multiViewport         bool

	frames  [BACKBUFFER_COUNT]*FrameResources
	threads [metadata.GraphicsThreadCount]threadState

	frameCount    uint64
	imageIndex    uint32
	imageAcquired bool
	// imageWaited is set once a submission this frame has waited on imageAvailable.
	imageWaited bool
	submitted   [metadata.GraphicsThreadCount]bool

	stats deviceStats
}

// NewDevice builds the frame ring on top of driver. The device owns driver from here on,
// it is destroyed by Close and also when NewDevice fails.
func NewDevice(driver Driver, config DeviceConfig) (*Device, error) {
	config.applyDefaults()
	families := driver.QueueFamilies()
	d := &Device{
		driver:        driver,
		config:        config,
		locks:         NewLockPool(),
		families:      families,
		graphicsQueue: driver.Queue(families.Graphics),
		presentQueue:  driver.Queue(families.Present),
		framebuffers:  newFramebufferCache(),
		screen:        driver.SwapchainExtent(),
		multiViewport: driver.MultiViewport(),
	}
	d.locks.SetQueueFamily(families.Graphics)
	d.locks.SetQueueFamily(families.Present)

	var err error
	if d.layouts, err = createDescriptorLayouts(driver); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "descriptor layouts")
	}
	if d.copyQueue, err = newCopyQueue(driver, d.locks, config.BufferUploaderSize, config.TextureUploaderSize); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "copy queue")
	}
	if err = d.createNullResources(); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "null resources")
	}
	if err = d.createPresentPasses(); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "present render pass")
	}
	if err = d.createSwapchainFramebuffers(); err != nil {
		d.Close()
		return nil, errors.Wrap(err, "swapchain framebuffers")
	}
	if d.stallFence, err = NewFence(driver, false); err != nil {
		d.Close()
		return nil, err
	}

	for i := range d.frames {
		if d.frames[i], err = newFrameResources(driver, d.layouts, d.nulls.descriptors(), &d.config); err != nil {
			d.Close()
			return nil, errors.Wrapf(err, "frame slot %d", i)
		}
		for t := range d.frames[i].threads {
			d.frames[i].threads[t].descriptors.onOverflow = d.descriptorFlush(metadata.GraphicsThread(t))
		}
	}
	for t := range d.threads {
		d.threads[t].renderPass = NewRenderPassManager(driver, d.framebuffers)
	}

	if err = d.beginFrame(); err != nil {
		d.Close()
		return nil, err
	}
	d.captureStats(d.frame(), 0)
	core.LogInfo("Vulkan device created (%d frames in flight, %d recording threads).", BACKBUFFER_COUNT, metadata.GraphicsThreadCount)
	return d, nil
}

func (d *Device) createNullResources() error {
	var err error
	n := &d.nulls
	sharing, families := d.sharingMode()

	n.buffer, err = d.driver.CreateBuffer(&vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  16,
		Usage: vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit | vk.BufferUsageStorageBufferBit |
			vk.BufferUsageUniformTexelBufferBit | vk.BufferUsageStorageTexelBufferBit | vk.BufferUsageVertexBufferBit),
		SharingMode:           sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
	})
	if err != nil {
		return err
	}
	if n.bufferMemory, err = d.bindBufferMemory(n.buffer); err != nil {
		return err
	}
	n.bufferView, err = d.driver.CreateBufferView(&vk.BufferViewCreateInfo{
		SType:  vk.StructureTypeBufferViewCreateInfo,
		Buffer: n.buffer,
		Format: vk.FormatR32g32b32a32Sfloat,
		Range:  vk.DeviceSize(vk.WholeSize),
	})
	if err != nil {
		return err
	}

	n.image, err = d.driver.CreateImage(&vk.ImageCreateInfo{
		SType:                 vk.StructureTypeImageCreateInfo,
		ImageType:             vk.ImageType2d,
		Format:                vk.FormatR8g8b8a8Unorm,
		Extent:                vk.Extent3D{Width: 1, Height: 1, Depth: 1},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                vk.ImageTilingOptimal,
		Usage:                 vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageStorageBit),
		SharingMode:           sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		InitialLayout:         vk.ImageLayoutUndefined,
	})
	if err != nil {
		return err
	}
	if n.imageMemory, err = d.bindImageMemory(n.image); err != nil {
		return err
	}
	if n.imageView, err = d.createImageView(n.image, vk.ImageViewType2d, vk.FormatR8g8b8a8Unorm, colorAspect, 0, 1, 0, 1); err != nil {
		return err
	}
	if err = d.copyQueue.transition(n.image, colorAspect, 1, 1, vk.ImageLayoutGeneral); err != nil {
		return err
	}

	n.sampler, err = d.driver.CreateSampler(&vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterNearest,
		MinFilter:    vk.FilterNearest,
		MipmapMode:   vk.SamplerMipmapModeNearest,
		AddressModeU: vk.SamplerAddressModeClampToEdge,
		AddressModeV: vk.SamplerAddressModeClampToEdge,
		AddressModeW: vk.SamplerAddressModeClampToEdge,
		BorderColor:  vk.BorderColorFloatTransparentBlack,
	})
	return err
}

func (d *Device) destroyNullResources() {
	n := &d.nulls
	if !isNull(n.sampler) {
		d.driver.DestroySampler(n.sampler)
	}
	if !isNull(n.imageView) {
		d.driver.DestroyImageView(n.imageView)
	}
	if !isNull(n.image) {
		d.driver.DestroyImage(n.image)
	}
	if !isNull(n.imageMemory) {
		d.driver.FreeMemory(n.imageMemory)
	}
	if !isNull(n.bufferView) {
		d.driver.DestroyBufferView(n.bufferView)
	}
	if !isNull(n.buffer) {
		d.driver.DestroyBuffer(n.buffer)
	}
	if !isNull(n.bufferMemory) {
		d.driver.FreeMemory(n.bufferMemory)
	}
	*n = nullResources{}
}

/**
 * @brief The backbuffer pass comes in two flavours: presentPass clears the image when the
 * frame starts, resumePass loads it when the pass has to be begun again later in the frame.
 */
func (d *Device) createPresentPasses() error {
	var err error
	if d.presentPass, err = d.createBackbufferPass(vk.AttachmentLoadOpClear, vk.ImageLayoutUndefined); err != nil {
		return err
	}
	d.resumePass, err = d.createBackbufferPass(vk.AttachmentLoadOpLoad, vk.ImageLayoutPresentSrc)
	return err
}

func (d *Device) createBackbufferPass(load vk.AttachmentLoadOp, initial vk.ImageLayout) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         d.driver.SwapchainFormat(),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         load,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  initial,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}
	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}}
	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}}
	return d.driver.CreateRenderPass(&vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	})
}

// createSwapchainFramebuffers builds one view and framebuffer per swapchain image. They are
// indexed by the acquired image index, which is not necessarily the ring slot.
func (d *Device) createSwapchainFramebuffers() error {
	images := d.driver.SwapchainImages()
	d.swapchainViews = make([]vk.ImageView, len(images))
	d.swapchainFramebuffers = make([]vk.Framebuffer, len(images))
	for i, image := range images {
		view, err := d.createImageView(image, vk.ImageViewType2d, d.driver.SwapchainFormat(), colorAspect, 0, 1, 0, 1)
		if err != nil {
			return err
		}
		d.swapchainViews[i] = view

		fb, err := d.driver.CreateFramebuffer(&vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      d.presentPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           d.screen.Width,
			Height:          d.screen.Height,
			Layers:          1,
		})
		if err != nil {
			return err
		}
		d.swapchainFramebuffers[i] = fb
	}
	return nil
}

func (d *Device) frame() *FrameResources {
	return d.frames[d.frameCount%BACKBUFFER_COUNT]
}

func (d *Device) resources(thread metadata.GraphicsThread) *threadResources {
	return &d.frame().threads[thread]
}

// commandList returns the open command buffer of thread in the current slot.
func (d *Device) commandList(thread metadata.GraphicsThread) vk.CommandBuffer {
	res := d.resources(thread)
	core.Assert(res.commands.Recording(), "graphics thread %d is not recording (state %s)", thread, res.commands.State)
	return res.commands.Handle
}

// beginFrame opens the current slot for recording and re-issues the default state on every thread.
func (d *Device) beginFrame() error {
	if err := d.frame().begin(d.driver); err != nil {
		return err
	}
	for t := range d.threads {
		d.resetThreadState(metadata.GraphicsThread(t))
		d.submitted[t] = false
	}
	return nil
}

func (d *Device) defaultViewport() vk.Viewport {
	return vk.Viewport{
		Width:    float32(d.screen.Width),
		Height:   float32(d.screen.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

func (d *Device) viewportCount() int {
	if d.multiViewport {
		return maxViewports
	}
	return 1
}

func (d *Device) scissorCount() int {
	if d.multiViewport {
		return maxScissors
	}
	return 1
}

func (d *Device) resetThreadState(thread metadata.GraphicsThread) {
	ts := &d.threads[thread]
	ts.renderPass.Reset()
	ts.graphicsPSO = nil
	ts.computePSO = nil
	ts.vertexBuffers = [maxVertexBuffers]vk.Buffer{}
	ts.vertexOffsets = [maxVertexBuffers]vk.DeviceSize{}
	ts.vertexCount = 0
	ts.indexBuffer = nil
	ts.indexOffset = 0
	ts.hasIndexBuffer = false

	ts.viewports = make([]vk.Viewport, d.viewportCount())
	for i := range ts.viewports {
		ts.viewports[i] = d.defaultViewport()
	}
	ts.scissors = make([]vk.Rect2D, d.scissorCount())
	for i := range ts.scissors {
		ts.scissors[i] = vk.Rect2D{Extent: vk.Extent2D{Width: 65535, Height: 65535}}
	}
	ts.blendFactor = [4]float32{1, 1, 1, 1}
	ts.stencilRef = 0

	d.applyDynamicState(thread)
}

func (d *Device) applyDynamicState(thread metadata.GraphicsThread) {
	ts := &d.threads[thread]
	cmd := d.resources(thread).commands.Handle
	d.driver.CmdSetViewport(cmd, ts.viewports)
	d.driver.CmdSetScissor(cmd, ts.scissors)
	d.driver.CmdSetBlendConstants(cmd, ts.blendFactor)
	d.driver.CmdSetStencilReference(cmd, ts.stencilRef)
}

// rebind restores pipeline and geometry bindings on a command buffer that was just re-begun.
func (d *Device) rebind(thread metadata.GraphicsThread) {
	ts := &d.threads[thread]
	cmd := d.resources(thread).commands.Handle
	if ts.computePSO != nil {
		d.driver.CmdBindPipeline(cmd, vk.PipelineBindPointCompute, ts.computePSO.pipeline)
	}
	if ts.vertexCount > 0 {
		d.driver.CmdBindVertexBuffers(cmd, 0, ts.vertexBuffers[:ts.vertexCount], ts.vertexOffsets[:ts.vertexCount])
	}
	if ts.hasIndexBuffer {
		d.driver.CmdBindIndexBuffer(cmd, ts.indexBuffer, ts.indexOffset, ts.indexType)
	}
}

func (d *Device) descriptorFlush(thread metadata.GraphicsThread) func(vk.CommandBuffer) error {
	return func(vk.CommandBuffer) error {
		return d.stallThread(thread)
	}
}

/**
 * @brief Submits what thread has recorded so far, waits for it and reopens the command
 * buffer with the same dynamic state and bindings. Every GPU visible descriptor set of the
 * thread is free again afterwards.
 */
func (d *Device) stallThread(thread metadata.GraphicsThread) error {
	res := d.resources(thread)
	ts := &d.threads[thread]

	ts.renderPass.Disable(res.commands.Handle)
	if err := res.commands.End(d.driver); err != nil {
		return err
	}

	batch := SubmitBatch{Commands: []vk.CommandBuffer{res.commands.Handle}}
	if thread == metadata.GraphicsThreadImmediate && d.imageAcquired && !d.imageWaited {
		batch.Wait = []vk.Semaphore{d.frame().imageAvailable}
		batch.WaitStages = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
		d.imageWaited = true
	}
	err := d.locks.SafeQueueCall(d.families.Graphics, func() error {
		return d.driver.QueueSubmit(d.graphicsQueue, batch, d.stallFence.Handle)
	})
	if err != nil {
		return err
	}
	res.commands.UpdateSubmitted()

	if err := d.stallFence.Wait(d.driver); err != nil {
		return err
	}
	if err := d.stallFence.Reset(d.driver); err != nil {
		return err
	}
	if err := res.commands.Reset(d.driver); err != nil {
		return err
	}
	if err := res.commands.Begin(d.driver, false, true); err != nil {
		return err
	}

	d.applyDynamicState(thread)
	d.rebind(thread)
	core.EventFire(core.EVENT_CODE_RENDERER_STALL, d, core.EventContext{})
	return nil
}

// WaitForGPU blocks until every queue is idle.
func (d *Device) WaitForGPU() error {
	if err := d.driver.DeviceWaitIdle(); err != nil {
		core.LogError("wait for GPU: %s", err)
		return err
	}
	return nil
}

func (d *Device) FrameCount() uint64 {
	return d.frameCount
}

func (d *Device) ScreenSize() (uint32, uint32) {
	return d.screen.Width, d.screen.Height
}

// Close waits for the GPU and releases everything the device created. Resources handed
// out by the Create* calls must have been destroyed before.
func (d *Device) Close() error {
	if err := d.driver.DeviceWaitIdle(); err != nil {
		core.LogWarn("device wait idle on close: %s", err)
	}
	for i, frame := range d.frames {
		if frame != nil {
			frame.destroy(d.driver)
			d.frames[i] = nil
		}
	}
	if d.stallFence != nil {
		d.stallFence.Destroy(d.driver)
		d.stallFence = nil
	}
	d.framebuffers.destroy(d.driver)
	for _, fb := range d.swapchainFramebuffers {
		if !isNull(fb) {
			d.driver.DestroyFramebuffer(fb)
		}
	}
	d.swapchainFramebuffers = nil
	for _, view := range d.swapchainViews {
		if !isNull(view) {
			d.driver.DestroyImageView(view)
		}
	}
	d.swapchainViews = nil
	if !isNull(d.resumePass) {
		d.driver.DestroyRenderPass(d.resumePass)
		d.resumePass = nil
	}
	if !isNull(d.presentPass) {
		d.driver.DestroyRenderPass(d.presentPass)
		d.presentPass = nil
	}
	d.destroyNullResources()
	if d.copyQueue != nil {
		d.copyQueue.destroy()
		d.copyQueue = nil
	}
	if d.layouts != nil {
		d.layouts.destroy(d.driver)
		d.layouts = nil
	}
	d.driver.Destroy()
	core.LogInfo("Vulkan device destroyed.")
	return nil
}
