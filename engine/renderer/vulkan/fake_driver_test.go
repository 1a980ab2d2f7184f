package vulkan

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

var errFakeOutOfMemory = errors.New("out of device memory")

// fakeHandle returns a unique non-null handle of any vk handle type.
func fakeHandle[T any]() T {
	p := new(uint64)
	return *(*T)(unsafe.Pointer(&p))
}

type fakeBuffer struct {
	size   vk.DeviceSize
	memory vk.DeviceMemory
	offset vk.DeviceSize
}

type fakeImage struct {
	extent vk.Extent3D
	mips   uint32
	layers uint32
}

type fakeFence struct {
	signaled bool
}

type fakeBind struct {
	bindPoint vk.PipelineBindPoint
	firstSet  uint32
	set       vk.DescriptorSet
}

/**
 * @brief An in-memory Driver. Buffer copies recorded on a command buffer run when it is
 * submitted, and fences can be held back to observe the CPU blocking on them.
 */
type fakeDriver struct {
	mu         sync.Mutex
	cond       *sync.Cond
	holdFences bool
	held       []vk.Fence

	images    []vk.Image
	queues    map[uint32]vk.Queue
	families  QueueFamilies
	memory    map[vk.DeviceMemory][]byte
	buffers   map[vk.Buffer]*fakeBuffer
	textures  map[vk.Image]*fakeImage
	fences    map[vk.Fence]*fakeFence
	pending   map[vk.CommandBuffer][]func()
	destroyed int

	// failAllocations makes every AllocateMemory call fail.
	failAllocations bool

	descriptorWrites int
	descriptorCopies int
	descriptorBinds  []fakeBind
	framebuffers     int
	beginPasses      int
	endPasses        int
	clearCalls       [][]vk.ClearAttachment
	pipelineBinds    int
	submits          []SubmitBatch
	fenceWaits       int
	presents         int
	imageCopies      [][]vk.BufferImageCopy
	imageInfos       []vk.ImageCreateInfo
	barriers         int
	draws            int
	dispatches       int
	viewportCounts   []int
}

func newFakeDriver() *fakeDriver {
	d := &fakeDriver{
		images:   []vk.Image{fakeHandle[vk.Image](), fakeHandle[vk.Image](), fakeHandle[vk.Image]()},
		families: QueueFamilies{Graphics: 0, Present: 0, Copy: 1},
		queues:   map[uint32]vk.Queue{0: fakeHandle[vk.Queue](), 1: fakeHandle[vk.Queue]()},
		memory:   map[vk.DeviceMemory][]byte{},
		buffers:  map[vk.Buffer]*fakeBuffer{},
		textures: map[vk.Image]*fakeImage{},
		fences:   map[vk.Fence]*fakeFence{},
		pending:  map[vk.CommandBuffer][]func(){},
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// release signals every fence submitted while fences were held and stops holding them.
func (d *fakeDriver) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holdFences = false
	for _, f := range d.held {
		d.fences[f].signaled = true
	}
	d.held = nil
	d.cond.Broadcast()
}

func (d *fakeDriver) hold() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.holdFences = true
}

func (d *fakeDriver) waits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fenceWaits
}

// bufferContents reads size bytes of the memory bound to buffer.
func (d *fakeDriver) bufferContents(buffer vk.Buffer) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.buffers[buffer]
	mem := d.memory[b.memory]
	return append([]byte(nil), mem[b.offset:b.offset+b.size]...)
}

func (d *fakeDriver) record(cmd vk.CommandBuffer, fn func()) {
	d.pending[cmd] = append(d.pending[cmd], fn)
}

func (d *fakeDriver) UpdateDescriptorSets(writes []vk.WriteDescriptorSet, copies []vk.CopyDescriptorSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.descriptorWrites += len(writes)
	d.descriptorCopies += len(copies)
}

func (d *fakeDriver) CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.descriptorBinds = append(d.descriptorBinds, fakeBind{bindPoint: bindPoint, firstSet: firstSet, set: sets[0]})
}

func (d *fakeDriver) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.framebuffers++
	return fakeHandle[vk.Framebuffer](), nil
}

func (d *fakeDriver) DestroyFramebuffer(framebuffer vk.Framebuffer) { d.destroyed++ }

func (d *fakeDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	d.beginPasses++
}

func (d *fakeDriver) CmdEndRenderPass(cmd vk.CommandBuffer) { d.endPasses++ }

func (d *fakeDriver) CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	d.pipelineBinds++
}

func (d *fakeDriver) CmdClearAttachments(cmd vk.CommandBuffer, attachments []vk.ClearAttachment, rects []vk.ClearRect) {
	d.clearCalls = append(d.clearCalls, attachments)
}

func (d *fakeDriver) QueueFamilies() QueueFamilies                      { return d.families }
func (d *fakeDriver) MultiViewport() bool                               { return true }
func (d *fakeDriver) Queue(family uint32) vk.Queue                      { return d.queues[family] }
func (d *fakeDriver) SwapchainImages() []vk.Image                       { return d.images }
func (d *fakeDriver) SwapchainFormat() vk.Format                        { return vk.FormatB8g8r8a8Unorm }
func (d *fakeDriver) SwapchainExtent() vk.Extent2D                      { return vk.Extent2D{Width: 640, Height: 480} }
func (d *fakeDriver) DeviceWaitIdle() error                             { return nil }
func (d *fakeDriver) DestroyBuffer(buffer vk.Buffer)                    { d.destroyed++ }
func (d *fakeDriver) DestroyImage(image vk.Image)                       { d.destroyed++ }
func (d *fakeDriver) FreeMemory(memory vk.DeviceMemory)                 { d.destroyed++ }
func (d *fakeDriver) UnmapMemory(memory vk.DeviceMemory)                {}
func (d *fakeDriver) DestroyImageView(view vk.ImageView)                { d.destroyed++ }
func (d *fakeDriver) DestroyBufferView(view vk.BufferView)              { d.destroyed++ }
func (d *fakeDriver) DestroySampler(sampler vk.Sampler)                 { d.destroyed++ }
func (d *fakeDriver) DestroyShaderModule(vk.ShaderModule)               { d.destroyed++ }
func (d *fakeDriver) DestroyRenderPass(vk.RenderPass)                   { d.destroyed++ }
func (d *fakeDriver) DestroyPipeline(vk.Pipeline)                       { d.destroyed++ }
func (d *fakeDriver) DestroyDescriptorSetLayout(vk.DescriptorSetLayout) {}
func (d *fakeDriver) DestroyPipelineLayout(vk.PipelineLayout)           {}
func (d *fakeDriver) DestroyDescriptorPool(vk.DescriptorPool)           {}
func (d *fakeDriver) DestroyFence(vk.Fence)                             {}
func (d *fakeDriver) DestroySemaphore(vk.Semaphore)                     {}
func (d *fakeDriver) DestroyCommandPool(vk.CommandPool)                 {}
func (d *fakeDriver) Destroy()                                          {}

func (d *fakeDriver) AcquireNextImage(signal vk.Semaphore) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return uint32(d.presents % len(d.images)), nil
}

func (d *fakeDriver) QueuePresent(queue vk.Queue, wait vk.Semaphore, imageIndex uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
	return nil
}

func (d *fakeDriver) CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buffer := fakeHandle[vk.Buffer]()
	d.buffers[buffer] = &fakeBuffer{size: info.Size}
	return buffer, nil
}

func (d *fakeDriver) CreateImage(info *vk.ImageCreateInfo) (vk.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	image := fakeHandle[vk.Image]()
	d.textures[image] = &fakeImage{extent: info.Extent, mips: info.MipLevels, layers: info.ArrayLayers}
	d.imageInfos = append(d.imageInfos, *info)
	return image, nil
}

func (d *fakeDriver) BufferMemoryRequirements(buffer vk.Buffer) vk.MemoryRequirements {
	d.mu.Lock()
	defer d.mu.Unlock()
	return vk.MemoryRequirements{Size: d.buffers[buffer].size, Alignment: 256, MemoryTypeBits: 0xffffffff}
}

func (d *fakeDriver) ImageMemoryRequirements(image vk.Image) vk.MemoryRequirements {
	d.mu.Lock()
	defer d.mu.Unlock()
	img := d.textures[image]
	size := vk.DeviceSize(img.extent.Width) * vk.DeviceSize(img.extent.Height) * 16 * vk.DeviceSize(img.layers)
	return vk.MemoryRequirements{Size: size * 2, Alignment: 256, MemoryTypeBits: 0xffffffff}
}

func (d *fakeDriver) FindMemoryType(typeBits uint32, flags vk.MemoryPropertyFlags) (uint32, bool) {
	return 0, true
}

func (d *fakeDriver) AllocateMemory(size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAllocations {
		return nil, errFakeOutOfMemory
	}
	memory := fakeHandle[vk.DeviceMemory]()
	d.memory[memory] = make([]byte, size)
	return memory, nil
}

func (d *fakeDriver) BindBufferMemory(buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffers[buffer].memory = memory
	d.buffers[buffer].offset = offset
	return nil
}

func (d *fakeDriver) BindImageMemory(image vk.Image, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return nil
}

func (d *fakeDriver) MapMemory(memory vk.DeviceMemory, size vk.DeviceSize) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.memory[memory][:size], nil
}

func (d *fakeDriver) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	return fakeHandle[vk.ImageView](), nil
}

func (d *fakeDriver) CreateBufferView(info *vk.BufferViewCreateInfo) (vk.BufferView, error) {
	return fakeHandle[vk.BufferView](), nil
}

func (d *fakeDriver) CreateSampler(info *vk.SamplerCreateInfo) (vk.Sampler, error) {
	return fakeHandle[vk.Sampler](), nil
}

func (d *fakeDriver) CreateShaderModule(code []byte) (vk.ShaderModule, error) {
	return fakeHandle[vk.ShaderModule](), nil
}

func (d *fakeDriver) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	return fakeHandle[vk.RenderPass](), nil
}

func (d *fakeDriver) CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	return fakeHandle[vk.Pipeline](), nil
}

func (d *fakeDriver) CreateComputePipeline(info *vk.ComputePipelineCreateInfo) (vk.Pipeline, error) {
	return fakeHandle[vk.Pipeline](), nil
}

func (d *fakeDriver) CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error) {
	return fakeHandle[vk.DescriptorSetLayout](), nil
}

func (d *fakeDriver) CreatePipelineLayout(layouts []vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	return fakeHandle[vk.PipelineLayout](), nil
}

func (d *fakeDriver) CreateDescriptorPool(info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, error) {
	return fakeHandle[vk.DescriptorPool](), nil
}

func (d *fakeDriver) AllocateDescriptorSets(pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, len(layouts))
	for i := range sets {
		sets[i] = fakeHandle[vk.DescriptorSet]()
	}
	return sets, nil
}

func (d *fakeDriver) CreateFence(signaled bool) (vk.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fence := fakeHandle[vk.Fence]()
	d.fences[fence] = &fakeFence{signaled: signaled}
	return fence, nil
}

func (d *fakeDriver) WaitForFence(fence vk.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fenceWaits++
	for !d.fences[fence].signaled {
		d.cond.Wait()
	}
	return nil
}

func (d *fakeDriver) ResetFence(fence vk.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fences[fence].signaled = false
	return nil
}

func (d *fakeDriver) CreateSemaphore() (vk.Semaphore, error) {
	return fakeHandle[vk.Semaphore](), nil
}

func (d *fakeDriver) CreateCommandPool(family uint32) (vk.CommandPool, error) {
	return fakeHandle[vk.CommandPool](), nil
}

func (d *fakeDriver) ResetCommandPool(pool vk.CommandPool) error { return nil }

func (d *fakeDriver) AllocateCommandBuffer(pool vk.CommandPool) (vk.CommandBuffer, error) {
	return fakeHandle[vk.CommandBuffer](), nil
}

func (d *fakeDriver) BeginCommandBuffer(cmd vk.CommandBuffer, flags vk.CommandBufferUsageFlags) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, cmd)
	return nil
}

func (d *fakeDriver) EndCommandBuffer(cmd vk.CommandBuffer) error { return nil }

func (d *fakeDriver) QueueSubmit(queue vk.Queue, batch SubmitBatch, fence vk.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cmd := range batch.Commands {
		for _, fn := range d.pending[cmd] {
			fn()
		}
		delete(d.pending, cmd)
	}
	d.submits = append(d.submits, batch)
	if !isNull(fence) {
		if d.holdFences {
			d.held = append(d.held, fence)
		} else {
			d.fences[fence].signaled = true
			d.cond.Broadcast()
		}
	}
	return nil
}

func (d *fakeDriver) CmdBindVertexBuffers(cmd vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
}

func (d *fakeDriver) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
}

func (d *fakeDriver) CmdSetViewport(cmd vk.CommandBuffer, viewports []vk.Viewport) {
	d.viewportCounts = append(d.viewportCounts, len(viewports))
}

func (d *fakeDriver) CmdSetScissor(cmd vk.CommandBuffer, scissors []vk.Rect2D)        {}
func (d *fakeDriver) CmdSetBlendConstants(cmd vk.CommandBuffer, constants [4]float32) {}
func (d *fakeDriver) CmdSetStencilReference(cmd vk.CommandBuffer, reference uint32)   {}

func (d *fakeDriver) CmdDraw(cmd vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.draws++
}

func (d *fakeDriver) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	d.draws++
}

func (d *fakeDriver) CmdDrawIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	d.draws++
}

func (d *fakeDriver) CmdDrawIndexedIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	d.draws++
}

func (d *fakeDriver) CmdDispatch(cmd vk.CommandBuffer, x, y, z uint32) { d.dispatches++ }

func (d *fakeDriver) CmdDispatchIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	d.dispatches++
}

// CmdCopyBuffer runs at submit time against the bound memory of both buffers.
func (d *fakeDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	regions = append([]vk.BufferCopy(nil), regions...)
	d.record(cmd, func() {
		s, t := d.buffers[src], d.buffers[dst]
		for _, r := range regions {
			from := d.memory[s.memory][s.offset+r.SrcOffset : s.offset+r.SrcOffset+r.Size]
			copy(d.memory[t.memory][t.offset+r.DstOffset:], from)
		}
	})
}

func (d *fakeDriver) CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.imageCopies = append(d.imageCopies, append([]vk.BufferImageCopy(nil), regions...))
}

func (d *fakeDriver) CmdCopyImage(cmd vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy) {
}

func (d *fakeDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, memory []vk.MemoryBarrier, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.barriers++
}
