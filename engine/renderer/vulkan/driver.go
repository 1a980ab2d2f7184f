package vulkan

import (
	vk "github.com/goki/vulkan"
)

//go:generate mockgen -source=driver.go -destination=mocks/mock_descriptor.go -package=mocks DescriptorUpdater

// DescriptorUpdater is the slice of the driver the descriptor tables write through.
type DescriptorUpdater interface {
	UpdateDescriptorSets(writes []vk.WriteDescriptorSet, copies []vk.CopyDescriptorSet)
	CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet)
}

// passRecorder is what RenderPassManager needs to begin, end and clear passes.
type passRecorder interface {
	CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(framebuffer vk.Framebuffer)
	CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo)
	CmdEndRenderPass(cmd vk.CommandBuffer)
	CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline)
	CmdClearAttachments(cmd vk.CommandBuffer, attachments []vk.ClearAttachment, rects []vk.ClearRect)
}

// QueueFamilies are the family indices the device was created with.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
	Copy     uint32
}

// SubmitBatch is one vkQueueSubmit worth of work.
type SubmitBatch struct {
	Commands   []vk.CommandBuffer
	Wait       []vk.Semaphore
	WaitStages []vk.PipelineStageFlags
	Signal     []vk.Semaphore
}

/**
 * @brief Every native call the device makes. The vk-backed implementation lives in
 * driver_vk.go; tests substitute an in-memory recorder.
 */
type Driver interface {
	DescriptorUpdater
	passRecorder

	QueueFamilies() QueueFamilies
	/** @brief Whether more than one viewport and scissor can be set at once. */
	MultiViewport() bool
	Queue(family uint32) vk.Queue
	SwapchainImages() []vk.Image
	SwapchainFormat() vk.Format
	SwapchainExtent() vk.Extent2D
	AcquireNextImage(signal vk.Semaphore) (uint32, error)
	QueuePresent(queue vk.Queue, wait vk.Semaphore, imageIndex uint32) error

	CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error)
	DestroyBuffer(buffer vk.Buffer)
	CreateImage(info *vk.ImageCreateInfo) (vk.Image, error)
	DestroyImage(image vk.Image)
	BufferMemoryRequirements(buffer vk.Buffer) vk.MemoryRequirements
	ImageMemoryRequirements(image vk.Image) vk.MemoryRequirements
	FindMemoryType(typeBits uint32, flags vk.MemoryPropertyFlags) (uint32, bool)
	AllocateMemory(size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error)
	FreeMemory(memory vk.DeviceMemory)
	BindBufferMemory(buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error
	BindImageMemory(image vk.Image, memory vk.DeviceMemory, offset vk.DeviceSize) error
	MapMemory(memory vk.DeviceMemory, size vk.DeviceSize) ([]byte, error)
	UnmapMemory(memory vk.DeviceMemory)

	CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(view vk.ImageView)
	CreateBufferView(info *vk.BufferViewCreateInfo) (vk.BufferView, error)
	DestroyBufferView(view vk.BufferView)
	CreateSampler(info *vk.SamplerCreateInfo) (vk.Sampler, error)
	DestroySampler(sampler vk.Sampler)
	CreateShaderModule(code []byte) (vk.ShaderModule, error)
	DestroyShaderModule(module vk.ShaderModule)
	CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(renderPass vk.RenderPass)
	CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error)
	CreateComputePipeline(info *vk.ComputePipelineCreateInfo) (vk.Pipeline, error)
	DestroyPipeline(pipeline vk.Pipeline)

	CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout)
	CreatePipelineLayout(layouts []vk.DescriptorSetLayout) (vk.PipelineLayout, error)
	DestroyPipelineLayout(layout vk.PipelineLayout)
	CreateDescriptorPool(info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, error)
	DestroyDescriptorPool(pool vk.DescriptorPool)
	AllocateDescriptorSets(pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error)

	CreateFence(signaled bool) (vk.Fence, error)
	DestroyFence(fence vk.Fence)
	WaitForFence(fence vk.Fence) error
	ResetFence(fence vk.Fence) error
	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(semaphore vk.Semaphore)

	CreateCommandPool(family uint32) (vk.CommandPool, error)
	DestroyCommandPool(pool vk.CommandPool)
	ResetCommandPool(pool vk.CommandPool) error
	AllocateCommandBuffer(pool vk.CommandPool) (vk.CommandBuffer, error)
	BeginCommandBuffer(cmd vk.CommandBuffer, flags vk.CommandBufferUsageFlags) error
	EndCommandBuffer(cmd vk.CommandBuffer) error
	QueueSubmit(queue vk.Queue, batch SubmitBatch, fence vk.Fence) error
	DeviceWaitIdle() error

	CmdBindVertexBuffers(cmd vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize)
	CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType)
	CmdSetViewport(cmd vk.CommandBuffer, viewports []vk.Viewport)
	CmdSetScissor(cmd vk.CommandBuffer, scissors []vk.Rect2D)
	CmdSetBlendConstants(cmd vk.CommandBuffer, constants [4]float32)
	CmdSetStencilReference(cmd vk.CommandBuffer, reference uint32)
	CmdDraw(cmd vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdDrawIndexed(cmd vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	CmdDrawIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize)
	CmdDrawIndexedIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize)
	CmdDispatch(cmd vk.CommandBuffer, x, y, z uint32)
	CmdDispatchIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize)
	CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy)
	CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy)
	CmdCopyImage(cmd vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy)
	CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, memory []vk.MemoryBarrier, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier)

	Destroy()
}
