package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
)

// WindowSurface is the platform window the swapchain presents to.
type WindowSurface interface {
	GetRequiredExtensionNames() []string
	GetInstanceProcAddress() unsafe.Pointer
	CreateSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (uint32, uint32)
}

// DriverOptions configures instance and swapchain creation.
type DriverOptions struct {
	AppName    string
	Validation bool
	VSync      bool
}

type vkDriver struct {
	instance       vk.Instance
	debugMessenger vk.DebugReportCallback
	surface        vk.Surface
	physical       vk.PhysicalDevice
	device         vk.Device
	memory         vk.PhysicalDeviceMemoryProperties
	families       QueueFamilies
	multiViewport  bool
	queues         map[uint32]vk.Queue
	swapchain      *swapchain
}

// NewVulkanDriver brings up instance, surface, device and swapchain for window.
func NewVulkanDriver(window WindowSurface, opts DriverOptions) (Driver, error) {
	procAddr := window.GetInstanceProcAddress()
	if procAddr == nil {
		return nil, errors.Wrap(core.ErrBackendUnavailable, "GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize vk")
	}

	d := &vkDriver{queues: map[uint32]vk.Queue{}}
	if err := d.createInstance(window, opts); err != nil {
		return nil, err
	}

	surfacePtr, err := window.CreateSurface(d.instance)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.surface = vk.SurfaceFromPointer(surfacePtr)
	core.LogDebug("Vulkan surface created.")

	physical, families, support, err := selectPhysicalDevice(d.instance, d.surface)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.physical = physical
	d.families = families
	vk.GetPhysicalDeviceMemoryProperties(physical, &d.memory)
	d.memory.Deref()

	if d.device, d.multiViewport, err = createLogicalDevice(physical, families); err != nil {
		d.Destroy()
		return nil, err
	}
	for _, family := range []uint32{families.Graphics, families.Present, families.Copy} {
		if _, ok := d.queues[family]; ok {
			continue
		}
		var queue vk.Queue
		vk.GetDeviceQueue(d.device, family, 0, &queue)
		d.queues[family] = queue
	}

	width, height := window.FramebufferSize()
	if d.swapchain, err = createSwapchain(d.device, d.surface, families, support, width, height, opts.VSync); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *vkDriver) createInstance(window WindowSurface, opts DriverOptions) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(opts.AppName),
		PEngineName:        VulkanSafeString("anvil"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := append([]string{}, window.GetRequiredExtensionNames()...)
	if runtime.GOOS == "darwin" {
		extensions = append(extensions, vk.KhrPortabilityEnumerationExtensionName, vk.KhrGetPhysicalDeviceProperties2ExtensionName)
		createInfo.Flags |= 1
	}

	var layers []string
	if opts.Validation {
		if hasInstanceLayer("VK_LAYER_KHRONOS_validation") {
			layers = append(layers, "VK_LAYER_KHRONOS_validation")
			extensions = append(extensions, vk.ExtDebugReportExtensionName)
		} else {
			core.LogWarn("Validation layer VK_LAYER_KHRONOS_validation is missing, continuing without it.")
		}
	}
	for _, e := range extensions {
		core.LogDebug("Required extension: %s", e)
	}

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, nil, &d.instance); res != vk.Success {
		err := resultError("vkCreateInstance", res)
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(d.instance); err != nil {
		return errors.Wrap(err, "failed to load instance functions")
	}
	core.LogInfo("Vulkan Instance created.")

	if len(layers) > 0 {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(d.instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			d.debugMessenger = dbg
		}
	}
	return nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false
	}
	for i := range layers {
		layers[i].Deref()
		if vk.ToString(layers[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}

func (d *vkDriver) Destroy() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
		if d.swapchain != nil {
			d.swapchain.destroy(d.device)
		}
		vk.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
	if d.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debugMessenger, nil)
		d.debugMessenger = vk.NullDebugReportCallback
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}

func (d *vkDriver) QueueFamilies() QueueFamilies { return d.families }
func (d *vkDriver) Queue(family uint32) vk.Queue { return d.queues[family] }
func (d *vkDriver) SwapchainImages() []vk.Image  { return d.swapchain.Images }
func (d *vkDriver) SwapchainFormat() vk.Format   { return d.swapchain.Format.Format }
func (d *vkDriver) SwapchainExtent() vk.Extent2D { return d.swapchain.Extent }
func (d *vkDriver) DeviceWaitIdle() error {
	return resultError("vkDeviceWaitIdle", vk.DeviceWaitIdle(d.device))
}
func (d *vkDriver) ResetFence(fence vk.Fence) error {
	return resultError("vkResetFences", vk.ResetFences(d.device, 1, []vk.Fence{fence}))
}

func (d *vkDriver) AcquireNextImage(signal vk.Semaphore) (uint32, error) {
	var index uint32
	res := vk.AcquireNextImage(d.device, d.swapchain.Handle, vk.MaxUint64, signal, vk.NullFence, &index)
	if res == vk.ErrorOutOfDate {
		return 0, core.ErrSwapchainBooting
	}
	if res != vk.Success && res != vk.Suboptimal {
		return 0, resultError("vkAcquireNextImageKHR", res)
	}
	return index, nil
}

func (d *vkDriver) QueuePresent(queue vk.Queue, wait vk.Semaphore, imageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{d.swapchain.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	res := vk.QueuePresent(queue, &presentInfo)
	if res == vk.ErrorOutOfDate || res == vk.Suboptimal {
		return core.ErrSwapchainBooting
	}
	return resultError("vkQueuePresentKHR", res)
}

func (d *vkDriver) CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error) {
	var buffer vk.Buffer
	return buffer, resultError("vkCreateBuffer", vk.CreateBuffer(d.device, info, nil, &buffer))
}

func (d *vkDriver) DestroyBuffer(buffer vk.Buffer) { vk.DestroyBuffer(d.device, buffer, nil) }

func (d *vkDriver) CreateImage(info *vk.ImageCreateInfo) (vk.Image, error) {
	var image vk.Image
	return image, resultError("vkCreateImage", vk.CreateImage(d.device, info, nil, &image))
}

func (d *vkDriver) DestroyImage(image vk.Image) { vk.DestroyImage(d.device, image, nil) }

func (d *vkDriver) BufferMemoryRequirements(buffer vk.Buffer) vk.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &req)
	req.Deref()
	return req
}

func (d *vkDriver) ImageMemoryRequirements(image vk.Image) vk.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, image, &req)
	req.Deref()
	return req
}

// FindMemoryType returns the first memory type allowed by typeBits that has every flag.
func (d *vkDriver) FindMemoryType(typeBits uint32, flags vk.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < d.memory.MemoryTypeCount; i++ {
		d.memory.MemoryTypes[i].Deref()
		if typeBits&(1<<i) != 0 && d.memory.MemoryTypes[i].PropertyFlags&flags == flags {
			return i, true
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return 0, false
}

func (d *vkDriver) AllocateMemory(size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error) {
	var memory vk.DeviceMemory
	res := vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	return memory, resultError("vkAllocateMemory", res)
}

func (d *vkDriver) FreeMemory(memory vk.DeviceMemory) { vk.FreeMemory(d.device, memory, nil) }

func (d *vkDriver) BindBufferMemory(buffer vk.Buffer, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return resultError("vkBindBufferMemory", vk.BindBufferMemory(d.device, buffer, memory, offset))
}

func (d *vkDriver) BindImageMemory(image vk.Image, memory vk.DeviceMemory, offset vk.DeviceSize) error {
	return resultError("vkBindImageMemory", vk.BindImageMemory(d.device, image, memory, offset))
}

func (d *vkDriver) MapMemory(memory vk.DeviceMemory, size vk.DeviceSize) ([]byte, error) {
	var ptr unsafe.Pointer
	if res := vk.MapMemory(d.device, memory, 0, size, 0, &ptr); res != vk.Success {
		return nil, resultError("vkMapMemory", res)
	}
	return unsafe.Slice((*byte)(ptr), int(size)), nil
}

func (d *vkDriver) UnmapMemory(memory vk.DeviceMemory) { vk.UnmapMemory(d.device, memory) }

func (d *vkDriver) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	return view, resultError("vkCreateImageView", vk.CreateImageView(d.device, info, nil, &view))
}

func (d *vkDriver) DestroyImageView(view vk.ImageView) { vk.DestroyImageView(d.device, view, nil) }

func (d *vkDriver) CreateBufferView(info *vk.BufferViewCreateInfo) (vk.BufferView, error) {
	var view vk.BufferView
	return view, resultError("vkCreateBufferView", vk.CreateBufferView(d.device, info, nil, &view))
}

func (d *vkDriver) DestroyBufferView(view vk.BufferView) { vk.DestroyBufferView(d.device, view, nil) }

func (d *vkDriver) CreateSampler(info *vk.SamplerCreateInfo) (vk.Sampler, error) {
	var sampler vk.Sampler
	return sampler, resultError("vkCreateSampler", vk.CreateSampler(d.device, info, nil, &sampler))
}

func (d *vkDriver) DestroySampler(sampler vk.Sampler) { vk.DestroySampler(d.device, sampler, nil) }

func (d *vkDriver) CreateShaderModule(code []byte) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	res := vk.CreateShaderModule(d.device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	return module, resultError("vkCreateShaderModule", res)
}

func sliceUint32(data []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

func (d *vkDriver) DestroyShaderModule(module vk.ShaderModule) {
	vk.DestroyShaderModule(d.device, module, nil)
}

func (d *vkDriver) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	return renderPass, resultError("vkCreateRenderPass", vk.CreateRenderPass(d.device, info, nil, &renderPass))
}

func (d *vkDriver) DestroyRenderPass(renderPass vk.RenderPass) {
	vk.DestroyRenderPass(d.device, renderPass, nil)
}

func (d *vkDriver) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	return framebuffer, resultError("vkCreateFramebuffer", vk.CreateFramebuffer(d.device, info, nil, &framebuffer))
}

func (d *vkDriver) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(d.device, framebuffer, nil)
}

func (d *vkDriver) CreateGraphicsPipeline(info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.device, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	return pipelines[0], resultError("vkCreateGraphicsPipelines", res)
}

func (d *vkDriver) CreateComputePipeline(info *vk.ComputePipelineCreateInfo) (vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateComputePipelines(d.device, vk.NullPipelineCache, 1, []vk.ComputePipelineCreateInfo{*info}, nil, pipelines)
	return pipelines[0], resultError("vkCreateComputePipelines", res)
}

func (d *vkDriver) DestroyPipeline(pipeline vk.Pipeline) { vk.DestroyPipeline(d.device, pipeline, nil) }

func (d *vkDriver) CreateDescriptorSetLayout(info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, error) {
	var layout vk.DescriptorSetLayout
	return layout, resultError("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(d.device, info, nil, &layout))
}

func (d *vkDriver) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {
	vk.DestroyDescriptorSetLayout(d.device, layout, nil)
}

func (d *vkDriver) CreatePipelineLayout(layouts []vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	res := vk.CreatePipelineLayout(d.device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(layouts)),
		PSetLayouts:    layouts,
	}, nil, &layout)
	return layout, resultError("vkCreatePipelineLayout", res)
}

func (d *vkDriver) DestroyPipelineLayout(layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(d.device, layout, nil)
}

func (d *vkDriver) CreateDescriptorPool(info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, error) {
	var pool vk.DescriptorPool
	return pool, resultError("vkCreateDescriptorPool", vk.CreateDescriptorPool(d.device, info, nil, &pool))
}

func (d *vkDriver) DestroyDescriptorPool(pool vk.DescriptorPool) {
	vk.DestroyDescriptorPool(d.device, pool, nil)
}

func (d *vkDriver) AllocateDescriptorSets(pool vk.DescriptorPool, layouts []vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, len(layouts))
	for i := range layouts {
		res := vk.AllocateDescriptorSets(d.device, &vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layouts[i]},
		}, &sets[i])
		if res != vk.Success {
			return nil, resultError("vkAllocateDescriptorSets", res)
		}
	}
	return sets, nil
}

func (d *vkDriver) UpdateDescriptorSets(writes []vk.WriteDescriptorSet, copies []vk.CopyDescriptorSet) {
	vk.UpdateDescriptorSets(d.device, uint32(len(writes)), writes, uint32(len(copies)), copies)
}

func (d *vkDriver) CreateFence(signaled bool) (vk.Fence, error) {
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	return fence, resultError("vkCreateFence", vk.CreateFence(d.device, &info, nil, &fence))
}

func (d *vkDriver) DestroyFence(fence vk.Fence) { vk.DestroyFence(d.device, fence, nil) }

func (d *vkDriver) WaitForFence(fence vk.Fence) error {
	return resultError("vkWaitForFences", vk.WaitForFences(d.device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64))
}

func (d *vkDriver) CreateSemaphore() (vk.Semaphore, error) {
	var semaphore vk.Semaphore
	res := vk.CreateSemaphore(d.device, &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}, nil, &semaphore)
	return semaphore, resultError("vkCreateSemaphore", res)
}

func (d *vkDriver) DestroySemaphore(semaphore vk.Semaphore) {
	vk.DestroySemaphore(d.device, semaphore, nil)
}

func (d *vkDriver) CreateCommandPool(family uint32) (vk.CommandPool, error) {
	var pool vk.CommandPool
	res := vk.CreateCommandPool(d.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	return pool, resultError("vkCreateCommandPool", res)
}

func (d *vkDriver) DestroyCommandPool(pool vk.CommandPool) {
	vk.DestroyCommandPool(d.device, pool, nil)
}

func (d *vkDriver) ResetCommandPool(pool vk.CommandPool) error {
	return resultError("vkResetCommandPool", vk.ResetCommandPool(d.device, pool, 0))
}

func (d *vkDriver) AllocateCommandBuffer(pool vk.CommandPool) (vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, 1)
	res := vk.AllocateCommandBuffers(d.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	return buffers[0], resultError("vkAllocateCommandBuffers", res)
}

func (d *vkDriver) BeginCommandBuffer(cmd vk.CommandBuffer, flags vk.CommandBufferUsageFlags) error {
	return resultError("vkBeginCommandBuffer", vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	}))
}

func (d *vkDriver) EndCommandBuffer(cmd vk.CommandBuffer) error {
	return resultError("vkEndCommandBuffer", vk.EndCommandBuffer(cmd))
}

func (d *vkDriver) QueueSubmit(queue vk.Queue, batch SubmitBatch, fence vk.Fence) error {
	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   uint32(len(batch.Commands)),
		PCommandBuffers:      batch.Commands,
		WaitSemaphoreCount:   uint32(len(batch.Wait)),
		PWaitSemaphores:      batch.Wait,
		PWaitDstStageMask:    batch.WaitStages,
		SignalSemaphoreCount: uint32(len(batch.Signal)),
		PSignalSemaphores:    batch.Signal,
	}
	return resultError("vkQueueSubmit", vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submit}, fence))
}

func (d *vkDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(cmd, info, vk.SubpassContentsInline)
}

func (d *vkDriver) CmdEndRenderPass(cmd vk.CommandBuffer) { vk.CmdEndRenderPass(cmd) }

func (d *vkDriver) CmdBindPipeline(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cmd, bindPoint, pipeline)
}

func (d *vkDriver) CmdClearAttachments(cmd vk.CommandBuffer, attachments []vk.ClearAttachment, rects []vk.ClearRect) {
	vk.CmdClearAttachments(cmd, uint32(len(attachments)), attachments, uint32(len(rects)), rects)
}

func (d *vkDriver) CmdBindDescriptorSets(cmd vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(cmd, bindPoint, layout, firstSet, uint32(len(sets)), sets, 0, nil)
}

func (d *vkDriver) CmdBindVertexBuffers(cmd vk.CommandBuffer, firstBinding uint32, buffers []vk.Buffer, offsets []vk.DeviceSize) {
	vk.CmdBindVertexBuffers(cmd, firstBinding, uint32(len(buffers)), buffers, offsets)
}

func (d *vkDriver) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(cmd, buffer, offset, indexType)
}

func (d *vkDriver) CmdSetViewport(cmd vk.CommandBuffer, viewports []vk.Viewport) {
	vk.CmdSetViewport(cmd, 0, uint32(len(viewports)), viewports)
}

func (d *vkDriver) CmdSetScissor(cmd vk.CommandBuffer, scissors []vk.Rect2D) {
	vk.CmdSetScissor(cmd, 0, uint32(len(scissors)), scissors)
}

func (d *vkDriver) CmdSetBlendConstants(cmd vk.CommandBuffer, constants [4]float32) {
	vk.CmdSetBlendConstants(cmd, &constants)
}

func (d *vkDriver) CmdSetStencilReference(cmd vk.CommandBuffer, reference uint32) {
	vk.CmdSetStencilReference(cmd, vk.StencilFaceFlags(vk.StencilFaceFrontBit|vk.StencilFaceBackBit), reference)
}

func (d *vkDriver) CmdDraw(cmd vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(cmd, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (d *vkDriver) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(cmd, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

func (d *vkDriver) CmdDrawIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	vk.CmdDrawIndirect(cmd, buffer, offset, 1, 0)
}

func (d *vkDriver) CmdDrawIndexedIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	vk.CmdDrawIndexedIndirect(cmd, buffer, offset, 1, 0)
}

func (d *vkDriver) CmdDispatch(cmd vk.CommandBuffer, x, y, z uint32) { vk.CmdDispatch(cmd, x, y, z) }

func (d *vkDriver) CmdDispatchIndirect(cmd vk.CommandBuffer, buffer vk.Buffer, offset vk.DeviceSize) {
	vk.CmdDispatchIndirect(cmd, buffer, offset)
}

func (d *vkDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, regions []vk.BufferCopy) {
	vk.CmdCopyBuffer(cmd, src, dst, uint32(len(regions)), regions)
}

func (d *vkDriver) CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, layout vk.ImageLayout, regions []vk.BufferImageCopy) {
	vk.CmdCopyBufferToImage(cmd, src, dst, layout, uint32(len(regions)), regions)
}

func (d *vkDriver) CmdCopyImage(cmd vk.CommandBuffer, src vk.Image, srcLayout vk.ImageLayout, dst vk.Image, dstLayout vk.ImageLayout, regions []vk.ImageCopy) {
	vk.CmdCopyImage(cmd, src, srcLayout, dst, dstLayout, uint32(len(regions)), regions)
}

func (d *vkDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, src, dst vk.PipelineStageFlags, memory []vk.MemoryBarrier, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(cmd, src, dst, 0,
		uint32(len(memory)), memory,
		uint32(len(buffers)), buffers,
		uint32(len(images)), images)
}
