package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	anvilmath "github.com/spaghettifunk/anvil/engine/math"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

const maxRenderTargets = 8

// staging copies inside a command buffer are aligned like constant buffer offsets
const transientAlignment = 256

func (d *Device) BindViewports(viewports []metadata.ViewPort, thread metadata.GraphicsThread) {
	core.Assert(len(viewports) <= maxViewports, "%d viewports bound, at most %d are supported", len(viewports), maxViewports)
	ts := &d.threads[thread]
	count := anvilmath.Min(len(viewports), len(ts.viewports))
	if count == 0 {
		return
	}
	for i := 0; i < count; i++ {
		vp := viewports[i]
		ts.viewports[i] = vk.Viewport{
			X:        vp.TopLeftX,
			Y:        vp.TopLeftY,
			Width:    vp.Width,
			Height:   vp.Height,
			MinDepth: vp.MinDepth,
			MaxDepth: vp.MaxDepth,
		}
	}
	d.driver.CmdSetViewport(d.commandList(thread), ts.viewports[:count])
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (d *Device) SetScissorRects(rects []metadata.Rect, thread metadata.GraphicsThread) {
	core.Assert(len(rects) <= maxScissors, "%d scissor rects bound, at most %d are supported", len(rects), maxScissors)
	ts := &d.threads[thread]
	count := anvilmath.Min(len(rects), len(ts.scissors))
	if count == 0 {
		return
	}
	for i := 0; i < count; i++ {
		r := rects[i]
		ts.scissors[i] = vk.Rect2D{
			Offset: vk.Offset2D{X: anvilmath.Max(0, r.Left), Y: anvilmath.Max(0, r.Top)},
			Extent: vk.Extent2D{
				Width:  uint32(absInt32(r.Right - r.Left)),
				Height: uint32(absInt32(r.Top - r.Bottom)),
			},
		}
	}
	d.driver.CmdSetScissor(d.commandList(thread), ts.scissors[:count])
}

func textureOf(texture *metadata.Texture2D) *textureResource {
	res, ok := texture.InternalData.(*textureResource)
	core.Assert(ok, "texture %s has not been created", texture.ID)
	return res
}

func bufferOf(buffer *metadata.GPUBuffer) *bufferResource {
	res, ok := buffer.InternalData.(*bufferResource)
	core.Assert(ok, "buffer %s has not been created", buffer.ID)
	return res
}

// pick returns full when index is negative, otherwise the additional view at index.
func pick(full vk.ImageView, additional []vk.ImageView, index int) vk.ImageView {
	if index < 0 {
		return full
	}
	core.Assert(index < len(additional), "view index %d out of range, the resource has %d additional views", index, len(additional))
	return additional[index]
}

/**
 * @brief Targets the given render targets and depth buffer on thread. The pass is only
 * begun by the next draw. With no targets at all the backbuffer is bound again.
 */
func (d *Device) BindRenderTargets(renderTargets []*metadata.Texture2D, depthStencil *metadata.Texture2D, thread metadata.GraphicsThread, arrayIndex int) {
	core.Assert(len(renderTargets) <= maxRenderTargets, "%d render targets bound, at most %d are supported", len(renderTargets), maxRenderTargets)
	rp := d.threads[thread].renderPass
	if len(renderTargets) == 0 && depthStencil == nil {
		rp.BindBackbuffer()
		return
	}

	var extent vk.Extent2D
	layers := uint32(1)
	colors := make([]vk.ImageView, 0, len(renderTargets))
	for _, rt := range renderTargets {
		res := textureOf(rt)
		colors = append(colors, pick(res.rtv, res.additionalRTVs, arrayIndex))
		extent = vk.Extent2D{Width: rt.Desc.Width, Height: rt.Desc.Height}
		switch {
		case arrayIndex < 0:
			layers = rt.Desc.ArraySize
		case rt.RequestIndependentRenderTargetCubemaps:
			layers = 6
		default:
			layers = 1
		}
	}
	var depth vk.ImageView
	if depthStencil != nil {
		depth = textureOf(depthStencil).dsv
		extent = vk.Extent2D{Width: depthStencil.Desc.Width, Height: depthStencil.Desc.Height}
		layers = depthStencil.Desc.ArraySize
	}
	rp.SetTargets(colors, depth, extent, layers)
}

func (d *Device) ClearRenderTarget(texture *metadata.Texture2D, color [4]float32, thread metadata.GraphicsThread, arrayIndex int) {
	res := textureOf(texture)
	d.threads[thread].renderPass.QueueClear(ClearRequest{
		View:  pick(res.rtv, res.additionalRTVs, arrayIndex),
		Color: color,
	})
}

func (d *Device) ClearDepthStencil(texture *metadata.Texture2D, flags metadata.ClearFlag, depth float32, stencil uint8, thread metadata.GraphicsThread) {
	if flags == 0 {
		return
	}
	d.threads[thread].renderPass.QueueClear(ClearRequest{
		View:    textureOf(texture).dsv,
		Depth:   depth,
		Stencil: stencil,
		Flags:   flags,
	})
}

/**
 * @brief Binds a shader resource view of resource to slot. Textures, typed buffers and raw
 * buffers land in different descriptor ranges, decided by the kind set at creation.
 * A negative arrayIndex binds the full view.
 */
func (d *Device) BindResource(stage metadata.ShaderStage, resource metadata.Resourcer, slot uint32, thread metadata.GraphicsThread, arrayIndex int) {
	if resource == nil {
		return
	}
	r := resource.Resource()
	if !r.IsValid() {
		return
	}
	table := d.resources(thread).descriptors

	switch r.Kind {
	case metadata.ResourceKindTexture:
		res := r.InternalData.(*textureResource)
		view := pick(res.srv, res.additionalSRVs, arrayIndex)
		if isNull(view) {
			return
		}
		table.BindTexture(stage, slot, r.ID, arrayIndex, view)
	case metadata.ResourceKindTypedBuffer:
		res := r.InternalData.(*bufferResource)
		if isNull(res.srv) {
			return
		}
		table.BindTypedBuffer(stage, slot, r.ID, res.srv)
	case metadata.ResourceKindBuffer:
		table.BindRawBuffer(stage, slot, r.ID, r.InternalData.(*bufferResource).buffer)
	}
}

func (d *Device) BindResources(stage metadata.ShaderStage, resources []metadata.Resourcer, slot uint32, thread metadata.GraphicsThread) {
	for i, resource := range resources {
		d.BindResource(stage, resource, slot+uint32(i), thread, -1)
	}
}

func (d *Device) BindUnorderedAccessResource(stage metadata.ShaderStage, resource metadata.Resourcer, slot uint32, thread metadata.GraphicsThread, arrayIndex int) {
	if resource == nil {
		return
	}
	r := resource.Resource()
	if !r.IsValid() {
		return
	}
	table := d.resources(thread).descriptors

	switch r.Kind {
	case metadata.ResourceKindTexture:
		res := r.InternalData.(*textureResource)
		view := pick(res.uav, res.additionalUAVs, arrayIndex)
		if isNull(view) {
			return
		}
		table.BindStorageImage(stage, slot, r.ID, arrayIndex, view)
	case metadata.ResourceKindTypedBuffer:
		res := r.InternalData.(*bufferResource)
		if isNull(res.uav) {
			return
		}
		table.BindStorageTexelBuffer(stage, slot, r.ID, res.uav)
	case metadata.ResourceKindBuffer:
		table.BindStorageBuffer(stage, slot, r.ID, r.InternalData.(*bufferResource).buffer)
	}
}

func (d *Device) BindUnorderedAccessResources(stage metadata.ShaderStage, resources []metadata.Resourcer, slot uint32, thread metadata.GraphicsThread) {
	for i, resource := range resources {
		d.BindUnorderedAccessResource(stage, resource, slot+uint32(i), thread, -1)
	}
}

func (d *Device) BindUnorderedAccessResourceCS(resource metadata.Resourcer, slot uint32, thread metadata.GraphicsThread, arrayIndex int) {
	d.BindUnorderedAccessResource(metadata.ShaderStageCS, resource, slot, thread, arrayIndex)
}

func (d *Device) BindUnorderedAccessResourcesCS(resources []metadata.Resourcer, slot uint32, thread metadata.GraphicsThread) {
	d.BindUnorderedAccessResources(metadata.ShaderStageCS, resources, slot, thread)
}

func (d *Device) BindSampler(stage metadata.ShaderStage, sampler *metadata.Sampler, slot uint32, thread metadata.GraphicsThread) {
	if sampler == nil {
		return
	}
	res, ok := sampler.InternalData.(*samplerResource)
	if !ok {
		return
	}
	d.resources(thread).descriptors.BindSampler(stage, slot, sampler.ID, res.sampler)
}

func (d *Device) BindConstantBuffer(stage metadata.ShaderStage, buffer *metadata.GPUBuffer, slot uint32, thread metadata.GraphicsThread) {
	if buffer == nil || !buffer.IsValid() {
		return
	}
	res := bufferOf(buffer)
	d.resources(thread).descriptors.BindConstantBuffer(stage, slot, buffer.ID, res.buffer, 0, vk.DeviceSize(buffer.Desc.ByteWidth))
}

/**
 * @brief Binds vertex buffers starting at slot. Strides come from the input layout of the
 * pipeline. Nil entries are backed by the null buffer.
 */
func (d *Device) BindVertexBuffers(buffers []*metadata.GPUBuffer, slot uint32, offsets []uint64, thread metadata.GraphicsThread) {
	core.Assert(int(slot)+len(buffers) <= maxVertexBuffers, "vertex buffers %d..%d out of range", slot, int(slot)+len(buffers))
	ts := &d.threads[thread]

	handles := make([]vk.Buffer, len(buffers))
	offs := make([]vk.DeviceSize, len(buffers))
	valid := false
	for i, b := range buffers {
		handles[i] = d.nulls.buffer
		if b != nil && b.IsValid() {
			handles[i] = bufferOf(b).buffer
			valid = true
		}
		if i < len(offsets) {
			offs[i] = vk.DeviceSize(offsets[i])
		}
		ts.vertexBuffers[int(slot)+i] = handles[i]
		ts.vertexOffsets[int(slot)+i] = offs[i]
	}
	if end := slot + uint32(len(buffers)); end > ts.vertexCount {
		ts.vertexCount = end
	}
	for i := uint32(0); i < ts.vertexCount; i++ {
		if isNull(ts.vertexBuffers[i]) {
			ts.vertexBuffers[i] = d.nulls.buffer
		}
	}
	if valid {
		d.driver.CmdBindVertexBuffers(d.commandList(thread), slot, handles, offs)
	}
}

func (d *Device) BindIndexBuffer(buffer *metadata.GPUBuffer, format metadata.IndexBufferFormat, offset uint64, thread metadata.GraphicsThread) {
	if buffer == nil || !buffer.IsValid() {
		return
	}
	ts := &d.threads[thread]
	ts.indexBuffer = bufferOf(buffer).buffer
	ts.indexOffset = vk.DeviceSize(offset)
	ts.indexType = convertIndexType(format)
	ts.hasIndexBuffer = true
	d.driver.CmdBindIndexBuffer(d.commandList(thread), ts.indexBuffer, ts.indexOffset, ts.indexType)
}

func (d *Device) BindStencilRef(value uint32, thread metadata.GraphicsThread) {
	d.threads[thread].stencilRef = value
	d.driver.CmdSetStencilReference(d.commandList(thread), value)
}

func (d *Device) BindBlendFactor(value [4]float32, thread metadata.GraphicsThread) {
	d.threads[thread].blendFactor = value
	d.driver.CmdSetBlendConstants(d.commandList(thread), value)
}

func (d *Device) BindGraphicsPSO(pso *metadata.GraphicsPSO, thread metadata.GraphicsThread) {
	res, ok := pso.InternalData.(*pipelineResource)
	core.Assert(ok, "graphics pipeline has not been created")
	ts := &d.threads[thread]
	ts.graphicsPSO = res
	ts.renderPass.SetPipeline(d.commandList(thread), res.pipeline, res.renderPass)
}

func (d *Device) BindComputePSO(pso *metadata.ComputePSO, thread metadata.GraphicsThread) {
	res, ok := pso.InternalData.(*pipelineResource)
	core.Assert(ok, "compute pipeline has not been created")
	ts := &d.threads[thread]
	if ts.computePSO == res {
		return
	}
	ts.computePSO = res
	d.driver.CmdBindPipeline(d.commandList(thread), vk.PipelineBindPointCompute, res.pipeline)
}

// prepareDraw flushes the graphics descriptors, then makes sure the pass is active. In this
// order a descriptor stall can never end the pass the draw is recorded into.
func (d *Device) prepareDraw(thread metadata.GraphicsThread) (vk.CommandBuffer, error) {
	cmd := d.commandList(thread)
	ts := &d.threads[thread]
	core.Assert(ts.graphicsPSO != nil, "draw on thread %d without a graphics pipeline", thread)

	if err := d.resources(thread).descriptors.Validate(cmd, false); err != nil {
		return cmd, err
	}
	if err := ts.renderPass.Validate(cmd); err != nil {
		return cmd, errors.Wrap(err, "render pass")
	}
	return cmd, nil
}

func (d *Device) Draw(vertexCount, startVertex uint32, thread metadata.GraphicsThread) error {
	return d.DrawInstanced(vertexCount, 1, startVertex, 0, thread)
}

func (d *Device) DrawIndexed(indexCount, startIndex uint32, baseVertex int32, thread metadata.GraphicsThread) error {
	return d.DrawIndexedInstanced(indexCount, 1, startIndex, baseVertex, 0, thread)
}

func (d *Device) DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32, thread metadata.GraphicsThread) error {
	cmd, err := d.prepareDraw(thread)
	if err != nil {
		return err
	}
	d.driver.CmdDraw(cmd, vertexCount, instanceCount, startVertex, startInstance)
	return nil
}

func (d *Device) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32, thread metadata.GraphicsThread) error {
	core.Assert(d.threads[thread].hasIndexBuffer, "indexed draw on thread %d without an index buffer", thread)
	cmd, err := d.prepareDraw(thread)
	if err != nil {
		return err
	}
	d.driver.CmdDrawIndexed(cmd, indexCount, instanceCount, startIndex, baseVertex, startInstance)
	return nil
}

func (d *Device) DrawInstancedIndirect(args *metadata.GPUBuffer, offset uint64, thread metadata.GraphicsThread) error {
	buffer := bufferOf(args).buffer
	cmd, err := d.prepareDraw(thread)
	if err != nil {
		return err
	}
	d.driver.CmdDrawIndirect(cmd, buffer, vk.DeviceSize(offset))
	return nil
}

func (d *Device) DrawIndexedInstancedIndirect(args *metadata.GPUBuffer, offset uint64, thread metadata.GraphicsThread) error {
	core.Assert(d.threads[thread].hasIndexBuffer, "indexed draw on thread %d without an index buffer", thread)
	buffer := bufferOf(args).buffer
	cmd, err := d.prepareDraw(thread)
	if err != nil {
		return err
	}
	d.driver.CmdDrawIndexedIndirect(cmd, buffer, vk.DeviceSize(offset))
	return nil
}

func (d *Device) prepareDispatch(thread metadata.GraphicsThread) (vk.CommandBuffer, error) {
	cmd := d.commandList(thread)
	ts := &d.threads[thread]
	core.Assert(ts.computePSO != nil, "dispatch on thread %d without a compute pipeline", thread)

	ts.renderPass.Disable(cmd)
	if err := d.resources(thread).descriptors.Validate(cmd, true); err != nil {
		return cmd, err
	}
	return cmd, nil
}

// afterDispatch makes compute writes visible to everything recorded later.
func (d *Device) afterDispatch(cmd vk.CommandBuffer) {
	d.driver.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		[]vk.MemoryBarrier{{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: vk.AccessFlags(vk.AccessMemoryWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
		}}, nil, nil)
}

func (d *Device) Dispatch(x, y, z uint32, thread metadata.GraphicsThread) error {
	cmd, err := d.prepareDispatch(thread)
	if err != nil {
		return err
	}
	d.driver.CmdDispatch(cmd, x, y, z)
	d.afterDispatch(cmd)
	return nil
}

func (d *Device) DispatchIndirect(args *metadata.GPUBuffer, offset uint64, thread metadata.GraphicsThread) error {
	buffer := bufferOf(args).buffer
	cmd, err := d.prepareDispatch(thread)
	if err != nil {
		return err
	}
	d.driver.CmdDispatchIndirect(cmd, buffer, vk.DeviceSize(offset))
	d.afterDispatch(cmd)
	return nil
}

func copyAspect(texture *metadata.Texture2D) vk.ImageAspectFlags {
	if texture.Desc.BindFlags&metadata.BindDepthStencil != 0 {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	return colorAspect
}

// copyImage records an image to image copy between two barriers. Both images stay in GENERAL.
func (d *Device) copyImage(thread metadata.GraphicsThread, dst, src vk.Image, region vk.ImageCopy) {
	cmd := d.commandList(thread)
	d.threads[thread].renderPass.Disable(cmd)

	allCommands := vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	transfer := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	d.driver.CmdPipelineBarrier(cmd, allCommands, transfer, []vk.MemoryBarrier{{
		SType:         vk.StructureTypeMemoryBarrier,
		SrcAccessMask: vk.AccessFlags(vk.AccessMemoryWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessTransferReadBit | vk.AccessTransferWriteBit),
	}}, nil, nil)
	d.driver.CmdCopyImage(cmd, src, vk.ImageLayoutGeneral, dst, vk.ImageLayoutGeneral, []vk.ImageCopy{region})
	d.driver.CmdPipelineBarrier(cmd, transfer, allCommands, []vk.MemoryBarrier{{
		SType:         vk.StructureTypeMemoryBarrier,
		SrcAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessMemoryReadBit),
	}}, nil, nil)
}

// CopyTexture2D copies the first mip of src over dst.
func (d *Device) CopyTexture2D(dst, src *metadata.Texture2D, thread metadata.GraphicsThread) {
	d.copyImage(thread, textureOf(dst).image, textureOf(src).image, vk.ImageCopy{
		SrcSubresource: vk.ImageSubresourceLayers{AspectMask: copyAspect(src), LayerCount: 1},
		DstSubresource: vk.ImageSubresourceLayers{AspectMask: copyAspect(dst), LayerCount: 1},
		Extent:         vk.Extent3D{Width: dst.Desc.Width, Height: dst.Desc.Height, Depth: 1},
	})
}

// CopyTexture2DRegion copies mip srcMip of src into mip dstMip of dst at (dstX, dstY).
func (d *Device) CopyTexture2DRegion(dst *metadata.Texture2D, dstMip, dstX, dstY uint32, src *metadata.Texture2D, srcMip uint32, thread metadata.GraphicsThread) {
	d.copyImage(thread, textureOf(dst).image, textureOf(src).image, vk.ImageCopy{
		SrcSubresource: vk.ImageSubresourceLayers{AspectMask: copyAspect(src), MipLevel: srcMip, LayerCount: 1},
		DstSubresource: vk.ImageSubresourceLayers{AspectMask: copyAspect(dst), MipLevel: dstMip, LayerCount: 1},
		DstOffset:      vk.Offset3D{X: int32(dstX), Y: int32(dstY)},
		Extent: vk.Extent3D{
			Width:  anvilmath.MipExtent(src.Desc.Width, srcMip),
			Height: anvilmath.MipExtent(src.Desc.Height, srcMip),
			Depth:  1,
		},
	})
}

// readAccess is how a buffer with these bind flags is consumed by the pipeline.
func readAccess(desc *metadata.GPUBufferDesc) vk.AccessFlags {
	switch {
	case desc.BindFlags&metadata.BindConstantBuffer != 0:
		return vk.AccessFlags(vk.AccessUniformReadBit)
	case desc.BindFlags&metadata.BindVertexBuffer != 0:
		return vk.AccessFlags(vk.AccessVertexAttributeReadBit)
	case desc.BindFlags&metadata.BindIndexBuffer != 0:
		return vk.AccessFlags(vk.AccessIndexReadBit)
	}
	return vk.AccessFlags(vk.AccessShaderReadBit)
}

/**
 * @brief Records a copy of size bytes from the thread allocator into dst at dstOffset. The
 * barriers order it after earlier reads of dst and before later ones on the same queue.
 */
func (d *Device) recordBufferCopy(thread metadata.GraphicsThread, desc *metadata.GPUBufferDesc, dst vk.Buffer, data []byte, dstOffset uint64) []byte {
	cmd := d.commandList(thread)
	d.threads[thread].renderPass.Disable(cmd)

	allocator := d.resources(thread).allocator
	staged := allocator.Allocate(uint64(len(data)), transientAlignment)
	copy(staged, data)

	access := readAccess(desc)
	allCommands := vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	transfer := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       access,
		DstAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              dst,
		Offset:              vk.DeviceSize(dstOffset),
		Size:                vk.DeviceSize(len(data)),
	}
	d.driver.CmdPipelineBarrier(cmd, allCommands, transfer, nil, []vk.BufferMemoryBarrier{barrier}, nil)

	d.driver.CmdCopyBuffer(cmd, allocator.Buffer(), dst, []vk.BufferCopy{{
		SrcOffset: vk.DeviceSize(allocator.CalculateOffset(staged)),
		DstOffset: vk.DeviceSize(dstOffset),
		Size:      vk.DeviceSize(len(data)),
	}})

	barrier.SrcAccessMask, barrier.DstAccessMask = barrier.DstAccessMask, access
	d.driver.CmdPipelineBarrier(cmd, transfer, allCommands, nil, []vk.BufferMemoryBarrier{barrier}, nil)
	return staged
}

/**
 * @brief Replaces the start of buffer with data on thread's command stream. Everything
 * recorded earlier on the thread still sees the old contents.
 */
func (d *Device) UpdateBuffer(buffer *metadata.GPUBuffer, data []byte, thread metadata.GraphicsThread) error {
	if buffer.Desc.Usage == metadata.UsageImmutable {
		return errors.Wrapf(core.ErrImmutableResource, "update of buffer %s", buffer.ID)
	}
	core.Assert(len(data) <= int(buffer.Desc.ByteWidth), "update of %d bytes into a buffer of %d", len(data), buffer.Desc.ByteWidth)
	if len(data) == 0 {
		return nil
	}
	size := anvilmath.Min(len(data), int(buffer.Desc.ByteWidth))
	d.recordBufferCopy(thread, &buffer.Desc, bufferOf(buffer).buffer, data[:size], 0)
	return nil
}

/**
 * @brief Reserves size bytes of ring and returns the CPU memory to fill together with the
 * offset the data will have inside ring. The memory may be written until the thread is
 * submitted. The ring wraps to 0 when it is full and at the first allocation of every frame.
 */
func (d *Device) AllocateFromRingBuffer(ring *metadata.GPURingBuffer, size uint64, thread metadata.GraphicsThread) ([]byte, uint64) {
	desc := &ring.Desc
	core.Assert(desc.Usage == metadata.UsageDynamic && desc.CPUAccessFlags&metadata.CPUAccessWrite != 0, "ring buffer %s must be dynamic and CPU writable", ring.ID)
	core.Assert(uint64(desc.ByteWidth) > size, "%d bytes cannot fit in ring buffer of %d", size, desc.ByteWidth)
	if size == 0 {
		return nil, 0
	}

	position := ring.ByteOffset
	if position+size > uint64(desc.ByteWidth) || ring.ResidentFrame != d.frameCount {
		position = 0
	}
	staged := d.recordBufferCopy(thread, desc, bufferOf(&ring.GPUBuffer).buffer, make([]byte, size), position)

	ring.ByteOffset = position + size
	ring.ResidentFrame = d.frameCount
	return staged, position
}

// InvalidateBufferAccess is a no-op: buffer memory is never left mapped.
func (d *Device) InvalidateBufferAccess(buffer *metadata.GPUBuffer, thread metadata.GraphicsThread) {}

// stateAccess translates engine resource states into the access mask they imply.
func stateAccess(state metadata.ResourceState) vk.AccessFlags {
	var access vk.AccessFlagBits
	if state&metadata.ResourceStateVertexAndConstantBuffer != 0 {
		access |= vk.AccessVertexAttributeReadBit | vk.AccessUniformReadBit
	}
	if state&metadata.ResourceStateIndexBuffer != 0 {
		access |= vk.AccessIndexReadBit
	}
	if state&metadata.ResourceStateRenderTarget != 0 {
		access |= vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit
	}
	if state&metadata.ResourceStateUnorderedAccess != 0 {
		access |= vk.AccessShaderReadBit | vk.AccessShaderWriteBit
	}
	if state&metadata.ResourceStateDepthWrite != 0 {
		access |= vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit
	}
	if state&metadata.ResourceStateDepthRead != 0 {
		access |= vk.AccessDepthStencilAttachmentReadBit
	}
	if state&(metadata.ResourceStateNonPixelShaderResource|metadata.ResourceStatePixelShaderResource) != 0 {
		access |= vk.AccessShaderReadBit
	}
	if state&metadata.ResourceStateIndirectArgument != 0 {
		access |= vk.AccessIndirectCommandReadBit
	}
	if state&metadata.ResourceStateCopyDest != 0 {
		access |= vk.AccessTransferWriteBit
	}
	if state&metadata.ResourceStateCopySource != 0 {
		access |= vk.AccessTransferReadBit
	}
	return vk.AccessFlags(access)
}

/**
 * @brief Orders every access of resources in state before ahead of the accesses of state
 * after. Images live in GENERAL layout, so only access masks change.
 */
func (d *Device) TransitionBarrier(resources []metadata.Resourcer, before, after metadata.ResourceState, thread metadata.GraphicsThread) {
	srcAccess, dstAccess := stateAccess(before), stateAccess(after)
	var buffers []vk.BufferMemoryBarrier
	var images []vk.ImageMemoryBarrier
	for _, resource := range resources {
		if resource == nil || !resource.Resource().IsValid() {
			continue
		}
		switch res := resource.Resource().InternalData.(type) {
		case *bufferResource:
			buffers = append(buffers, vk.BufferMemoryBarrier{
				SType:               vk.StructureTypeBufferMemoryBarrier,
				SrcAccessMask:       srcAccess,
				DstAccessMask:       dstAccess,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Buffer:              res.buffer,
				Size:                vk.DeviceSize(vk.WholeSize),
			})
		case *textureResource:
			images = append(images, vk.ImageMemoryBarrier{
				SType:               vk.StructureTypeImageMemoryBarrier,
				SrcAccessMask:       srcAccess,
				DstAccessMask:       dstAccess,
				OldLayout:           vk.ImageLayoutGeneral,
				NewLayout:           vk.ImageLayoutGeneral,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Image:               res.image,
				SubresourceRange: vk.ImageSubresourceRange{
					AspectMask: res.aspect,
					LevelCount: res.mips,
					LayerCount: res.layers,
				},
			})
		}
	}
	if len(buffers) == 0 && len(images) == 0 {
		return
	}

	cmd := d.commandList(thread)
	d.threads[thread].renderPass.Disable(cmd)
	allCommands := vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	d.driver.CmdPipelineBarrier(cmd, allCommands, allCommands, nil, buffers, images)
}

// UAVBarrier waits for every pending shader write before later shader accesses.
func (d *Device) UAVBarrier(resources []metadata.Resourcer, thread metadata.GraphicsThread) {
	cmd := d.commandList(thread)
	d.threads[thread].renderPass.Disable(cmd)
	allCommands := vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	d.driver.CmdPipelineBarrier(cmd, allCommands, allCommands, []vk.MemoryBarrier{{
		SType:         vk.StructureTypeMemoryBarrier,
		SrcAccessMask: vk.AccessFlags(vk.AccessShaderWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit),
	}}, nil, nil)
}

func notSupported(operation string) error {
	return errors.Wrapf(core.ErrNotSupported, "vulkan: %s", operation)
}

func (d *Device) GenerateMips(texture *metadata.Texture2D, thread metadata.GraphicsThread, arrayIndex int) error {
	return notSupported("GenerateMips")
}

func (d *Device) MSAAResolve(dst, src *metadata.Texture2D, thread metadata.GraphicsThread) error {
	return notSupported("MSAAResolve")
}

func (d *Device) DownloadBuffer(src, staging *metadata.GPUBuffer, data []byte, thread metadata.GraphicsThread) error {
	return notSupported("DownloadBuffer")
}

func (d *Device) CreateQuery(query *metadata.GPUQuery) error {
	return notSupported("CreateQuery")
}

func (d *Device) QueryBegin(query *metadata.GPUQuery, thread metadata.GraphicsThread) error {
	return notSupported("QueryBegin")
}

func (d *Device) QueryEnd(query *metadata.GPUQuery, thread metadata.GraphicsThread) error {
	return notSupported("QueryEnd")
}

func (d *Device) QueryRead(query *metadata.GPUQuery, thread metadata.GraphicsThread) error {
	return notSupported("QueryRead")
}

func (d *Device) SaveTexturePNG(path string, texture *metadata.Texture2D, thread metadata.GraphicsThread) error {
	return notSupported("SaveTexturePNG")
}

func (d *Device) SaveTextureDDS(path string, texture *metadata.Texture2D, thread metadata.GraphicsThread) error {
	return notSupported("SaveTextureDDS")
}

func (d *Device) EventBegin(name string, thread metadata.GraphicsThread) {}

func (d *Device) EventEnd(thread metadata.GraphicsThread) {}

func (d *Device) SetMarker(name string, thread metadata.GraphicsThread) {}
