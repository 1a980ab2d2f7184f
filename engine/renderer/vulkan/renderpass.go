package vulkan

import (
	"sync"

	"github.com/dolthub/swiss"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/containers"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

const maxPendingClears = 64

type passState uint8

const (
	passIdle passState = iota
	passActive
)

func (s passState) String() string {
	if s == passActive {
		return "active"
	}
	return "idle"
}

// ClearRequest asks for View to be cleared the next time it is part of an active pass.
// Flags of zero means a color clear.
type ClearRequest struct {
	View    vk.ImageView
	Color   [4]float32
	Depth   float32
	Stencil uint8
	Flags   metadata.ClearFlag
}

type cachedFramebuffer struct {
	views  []vk.ImageView
	extent vk.Extent2D
	layers uint32
	handle vk.Framebuffer
}

func (f *cachedFramebuffer) matches(views []vk.ImageView, extent vk.Extent2D, layers uint32) bool {
	return sameExtent(f.extent, extent) && f.layers == layers && sameViews(f.views, views)
}

func sameExtent(a, b vk.Extent2D) bool {
	return a.Width == b.Width && a.Height == b.Height
}

func sameViews(a, b []vk.ImageView) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

/**
 * @brief Framebuffers keyed by the graphics pipeline whose render pass they were built for.
 * Shared by every recording thread and it outlives frame resets.
 */
type framebufferCache struct {
	mu      sync.Mutex
	entries *swiss.Map[vk.Pipeline, []cachedFramebuffer]
	count   int
}

func newFramebufferCache() *framebufferCache {
	return &framebufferCache{entries: swiss.NewMap[vk.Pipeline, []cachedFramebuffer](64)}
}

func (c *framebufferCache) resolve(rec passRecorder, pipeline vk.Pipeline, renderPass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D, layers uint32) (vk.Framebuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, _ := c.entries.Get(pipeline)
	for i := range cached {
		if cached[i].matches(views, extent, layers) {
			return cached[i].handle, nil
		}
	}

	attachments := append([]vk.ImageView(nil), views...)
	framebuffer, err := rec.CreateFramebuffer(&vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          layers,
	})
	if err != nil {
		return framebuffer, err
	}
	c.entries.Put(pipeline, append(cached, cachedFramebuffer{
		views:  attachments,
		extent: extent,
		layers: layers,
		handle: framebuffer,
	}))
	c.count++
	return framebuffer, nil
}

// forget destroys every framebuffer built for pipeline.
func (c *framebufferCache) forget(rec passRecorder, pipeline vk.Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries.Get(pipeline)
	if !ok {
		return
	}
	for _, fb := range cached {
		rec.DestroyFramebuffer(fb.handle)
	}
	c.count -= len(cached)
	c.entries.Delete(pipeline)
}

func (c *framebufferCache) destroy(rec passRecorder) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Iter(func(_ vk.Pipeline, cached []cachedFramebuffer) bool {
		for _, fb := range cached {
			rec.DestroyFramebuffer(fb.handle)
		}
		return false
	})
	c.entries = swiss.NewMap[vk.Pipeline, []cachedFramebuffer](64)
	c.count = 0
}

func (c *framebufferCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// externalPass is a pass the device began on the presentation framebuffer.
type externalPass struct {
	resume      vk.RenderPass
	framebuffer vk.Framebuffer
	views       []vk.ImageView
	extent      vk.Extent2D
}

/**
 * @brief Render pass state of one recording thread. Render targets can be bound speculatively;
 * the native pass is only (re)begun by Validate right before a draw.
 */
type RenderPassManager struct {
	recorder passRecorder
	cache    *framebufferCache

	state passState
	dirty bool

	views      []vk.ImageView
	colorCount int
	extent     vk.Extent2D
	layers     uint32

	pipeline   vk.Pipeline
	renderPass vk.RenderPass
	external   *externalPass

	clears *containers.Ring[ClearRequest]
}

func NewRenderPassManager(recorder passRecorder, cache *framebufferCache) *RenderPassManager {
	return &RenderPassManager{
		recorder: recorder,
		cache:    cache,
		clears:   containers.NewRing[ClearRequest](maxPendingClears, false),
	}
}

// SetTargets stores the attachment set. depth may be nil. It only marks the pass dirty
// when something actually changed.
func (m *RenderPassManager) SetTargets(colors []vk.ImageView, depth vk.ImageView, extent vk.Extent2D, layers uint32) {
	views := make([]vk.ImageView, 0, len(colors)+1)
	views = append(views, colors...)
	if !isNull(depth) {
		views = append(views, depth)
	}
	if layers == 0 {
		layers = 1
	}
	if sameViews(views, m.views) && sameExtent(extent, m.extent) && layers == m.layers {
		return
	}
	m.views = views
	m.colorCount = len(colors)
	m.extent = extent
	m.layers = layers
	m.dirty = true
}

// SetPipeline records the pipeline and the render pass it was built against. On the
// backbuffer an active pass binds it right away, offscreen targets begin a new pass on the next Validate.
func (m *RenderPassManager) SetPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline, renderPass vk.RenderPass) {
	if pipeline == m.pipeline {
		return
	}
	m.pipeline = pipeline
	m.renderPass = renderPass
	if !m.isBackbuffer() {
		m.dirty = true
		return
	}
	if m.state == passActive {
		m.recorder.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
	}
}

/**
 * @brief Begins renderPass on the presentation framebuffer right away. resume must be a
 * compatible pass that loads its attachment, it is used when the pass is begun again later in the frame.
 */
func (m *RenderPassManager) BeginExternal(cmd vk.CommandBuffer, renderPass, resume vk.RenderPass, framebuffer vk.Framebuffer, view vk.ImageView, extent vk.Extent2D, clear [4]float32) {
	m.Disable(cmd)
	m.external = &externalPass{
		resume:      resume,
		framebuffer: framebuffer,
		views:       []vk.ImageView{view},
		extent:      extent,
	}
	m.views = m.external.views
	m.colorCount = 1
	m.extent = extent
	m.layers = 1

	m.recorder.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      renderPass,
		Framebuffer:     framebuffer,
		RenderArea:      vk.Rect2D{Extent: extent},
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(clear[:])},
	})
	m.state = passActive
	m.dirty = false
}

// BindBackbuffer targets the presentation framebuffer again.
func (m *RenderPassManager) BindBackbuffer() {
	core.Assert(m.external != nil, "no presentation pass has been begun this frame")
	m.SetTargets(m.external.views, nil, m.external.extent, 1)
}

func (m *RenderPassManager) isBackbuffer() bool {
	return m.external != nil && sameExtent(m.extent, m.external.extent) && sameViews(m.views, m.external.views)
}

// Validate makes sure the pass for the current targets is active on cmd and resolves
// pending clears for the bound attachments.
func (m *RenderPassManager) Validate(cmd vk.CommandBuffer) error {
	core.Assert(len(m.views) > 0, "render pass validated before any target was bound")

	if m.dirty || m.state != passActive {
		var renderPass vk.RenderPass
		var framebuffer vk.Framebuffer
		if m.isBackbuffer() {
			renderPass, framebuffer = m.external.resume, m.external.framebuffer
		} else {
			core.Assert(!isNull(m.pipeline), "render targets validated before a graphics pipeline was bound")
			fb, err := m.cache.resolve(m.recorder, m.pipeline, m.renderPass, m.views, m.extent, m.layers)
			if err != nil {
				return err
			}
			renderPass, framebuffer = m.renderPass, fb
		}

		if m.state == passActive {
			m.recorder.CmdEndRenderPass(cmd)
		}
		m.recorder.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
			SType:       vk.StructureTypeRenderPassBeginInfo,
			RenderPass:  renderPass,
			Framebuffer: framebuffer,
			RenderArea:  vk.Rect2D{Extent: m.extent},
		})
		if !isNull(m.pipeline) {
			m.recorder.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, m.pipeline)
		}
		m.dirty = false
		m.state = passActive
	}

	m.resolveClears(cmd)
	return nil
}

func (m *RenderPassManager) resolveClears(cmd vk.CommandBuffer) {
	if m.clears.IsEmpty() {
		return
	}

	var attachments []vk.ClearAttachment
	m.clears.Filter(func(req ClearRequest) bool {
		for i, view := range m.views {
			if view != req.View {
				continue
			}
			isDepth := i >= m.colorCount
			if req.Flags == 0 && !isDepth {
				attachments = append(attachments, vk.ClearAttachment{
					AspectMask:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
					ColorAttachment: uint32(i),
					ClearValue:      vk.NewClearValue(req.Color[:]),
				})
				return false
			}
			if req.Flags != 0 && isDepth {
				var aspect vk.ImageAspectFlagBits
				if req.Flags&metadata.ClearDepth != 0 {
					aspect |= vk.ImageAspectDepthBit
				}
				if req.Flags&metadata.ClearStencil != 0 {
					aspect |= vk.ImageAspectStencilBit
				}
				attachments = append(attachments, vk.ClearAttachment{
					AspectMask: vk.ImageAspectFlags(aspect),
					ClearValue: vk.NewClearDepthStencil(req.Depth, uint32(req.Stencil)),
				})
				return false
			}
			core.LogWarn("dropping clear of view %v: request does not match the attachment kind", view)
			return false
		}
		return true
	})

	if len(attachments) == 0 {
		return
	}
	m.recorder.CmdClearAttachments(cmd, attachments, []vk.ClearRect{{
		Rect:       vk.Rect2D{Extent: m.extent},
		LayerCount: m.layers,
	}})
}

// QueueClear defers a clear until its view is part of a validated pass. At most
// maxPendingClears may wait at once.
func (m *RenderPassManager) QueueClear(req ClearRequest) {
	err := m.clears.Push(req)
	core.Assert(err == nil, "more than %d clears pending", maxPendingClears)
	if err != nil {
		core.LogWarn("dropping clear request: %s", err)
	}
}

// Disable ends the native pass if one is active. Targets are kept.
func (m *RenderPassManager) Disable(cmd vk.CommandBuffer) {
	if m.state == passActive {
		m.recorder.CmdEndRenderPass(cmd)
		m.state = passIdle
	}
}

func (m *RenderPassManager) Active() bool {
	return m.state == passActive
}

func (m *RenderPassManager) PendingClears() int {
	return m.clears.Len()
}

// Reset drops all per-frame state. The framebuffer cache is left alone.
func (m *RenderPassManager) Reset() {
	m.state = passIdle
	m.dirty = false
	m.views = nil
	m.colorCount = 0
	m.extent = vk.Extent2D{}
	m.layers = 0
	m.pipeline = nil
	m.renderPass = nil
	m.external = nil
	m.clears.Clear()
}
