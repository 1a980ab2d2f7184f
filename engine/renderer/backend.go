package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/platform"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
	"github.com/spaghettifunk/anvil/engine/renderer/vulkan"
)

// FramePresenter is the part of a device that drives the frame ring.
type FramePresenter interface {
	PresentBegin() error
	ExecuteDeferredContexts() error
	PresentEnd() error
}

// GraphicsDevice is what the engine talks to. Every backend implements all of it.
type GraphicsDevice interface {
	FramePresenter

	CreateBuffer(desc *metadata.GPUBufferDesc, initialData *metadata.SubresourceData, buffer *metadata.GPUBuffer) error
	CreateTexture2D(desc *metadata.TextureDesc, initialData []metadata.SubresourceData, texture *metadata.Texture2D) error
	CreateTextureFromFile(path string, mipMaps bool, texture *metadata.Texture2D) error
	CreateSamplerState(desc *metadata.SamplerDesc, sampler *metadata.Sampler) error
	CreateBlendState(desc *metadata.BlendStateDesc, state *metadata.BlendState) error
	CreateDepthStencilState(desc *metadata.DepthStencilStateDesc, state *metadata.DepthStencilState) error
	CreateRasterizerState(desc *metadata.RasterizerStateDesc, state *metadata.RasterizerState) error
	CreateInputLayout(desc []metadata.VertexLayoutDesc, layout *metadata.InputLayout) error
	CreateVertexShader(bytecode []byte, shader *metadata.Shader) error
	CreateHullShader(bytecode []byte, shader *metadata.Shader) error
	CreateDomainShader(bytecode []byte, shader *metadata.Shader) error
	CreateGeometryShader(bytecode []byte, shader *metadata.Shader) error
	CreatePixelShader(bytecode []byte, shader *metadata.Shader) error
	CreateComputeShader(bytecode []byte, shader *metadata.Shader) error
	CreateGraphicsPSO(desc *metadata.GraphicsPSODesc, pso *metadata.GraphicsPSO) error
	CreateComputePSO(desc *metadata.ComputePSODesc, pso *metadata.ComputePSO) error
	CreateQuery(query *metadata.GPUQuery) error
	Destroy(resource interface{})

	FinishCommandList(thread metadata.GraphicsThread) error
	WaitForGPU() error
	FrameCount() uint64
	ScreenSize() (uint32, uint32)
	Close() error

	BindViewports(viewports []metadata.ViewPort, thread metadata.GraphicsThread)
	SetScissorRects(rects []metadata.Rect, thread metadata.GraphicsThread)
	BindRenderTargets(renderTargets []*metadata.Texture2D, depthStencil *metadata.Texture2D, thread metadata.GraphicsThread, arrayIndex int)
	ClearRenderTarget(texture *metadata.Texture2D, color [4]float32, thread metadata.GraphicsThread, arrayIndex int)
	ClearDepthStencil(texture *metadata.Texture2D, flags metadata.ClearFlag, depth float32, stencil uint8, thread metadata.GraphicsThread)
	BindResource(stage metadata.ShaderStage, resource metadata.Resourcer, slot uint32, thread metadata.GraphicsThread, arrayIndex int)
	BindResources(stage metadata.ShaderStage, resources []metadata.Resourcer, slot uint32, thread metadata.GraphicsThread)
	BindUnorderedAccessResource(stage metadata.ShaderStage, resource metadata.Resourcer, slot uint32, thread metadata.GraphicsThread, arrayIndex int)
	BindUnorderedAccessResources(stage metadata.ShaderStage, resources []metadata.Resourcer, slot uint32, thread metadata.GraphicsThread)
	BindUnorderedAccessResourceCS(resource metadata.Resourcer, slot uint32, thread metadata.GraphicsThread, arrayIndex int)
	BindUnorderedAccessResourcesCS(resources []metadata.Resourcer, slot uint32, thread metadata.GraphicsThread)
	BindSampler(stage metadata.ShaderStage, sampler *metadata.Sampler, slot uint32, thread metadata.GraphicsThread)
	BindConstantBuffer(stage metadata.ShaderStage, buffer *metadata.GPUBuffer, slot uint32, thread metadata.GraphicsThread)
	BindVertexBuffers(buffers []*metadata.GPUBuffer, slot uint32, offsets []uint64, thread metadata.GraphicsThread)
	BindIndexBuffer(buffer *metadata.GPUBuffer, format metadata.IndexBufferFormat, offset uint64, thread metadata.GraphicsThread)
	BindStencilRef(value uint32, thread metadata.GraphicsThread)
	BindBlendFactor(value [4]float32, thread metadata.GraphicsThread)
	BindGraphicsPSO(pso *metadata.GraphicsPSO, thread metadata.GraphicsThread)
	BindComputePSO(pso *metadata.ComputePSO, thread metadata.GraphicsThread)

	Draw(vertexCount, startVertex uint32, thread metadata.GraphicsThread) error
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32, thread metadata.GraphicsThread) error
	DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32, thread metadata.GraphicsThread) error
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32, thread metadata.GraphicsThread) error
	DrawInstancedIndirect(args *metadata.GPUBuffer, offset uint64, thread metadata.GraphicsThread) error
	DrawIndexedInstancedIndirect(args *metadata.GPUBuffer, offset uint64, thread metadata.GraphicsThread) error
	Dispatch(x, y, z uint32, thread metadata.GraphicsThread) error
	DispatchIndirect(args *metadata.GPUBuffer, offset uint64, thread metadata.GraphicsThread) error

	CopyTexture2D(dst, src *metadata.Texture2D, thread metadata.GraphicsThread)
	CopyTexture2DRegion(dst *metadata.Texture2D, dstMip, dstX, dstY uint32, src *metadata.Texture2D, srcMip uint32, thread metadata.GraphicsThread)
	UpdateBuffer(buffer *metadata.GPUBuffer, data []byte, thread metadata.GraphicsThread) error
	AllocateFromRingBuffer(ring *metadata.GPURingBuffer, size uint64, thread metadata.GraphicsThread) ([]byte, uint64)
	InvalidateBufferAccess(buffer *metadata.GPUBuffer, thread metadata.GraphicsThread)
	TransitionBarrier(resources []metadata.Resourcer, before, after metadata.ResourceState, thread metadata.GraphicsThread)
	UAVBarrier(resources []metadata.Resourcer, thread metadata.GraphicsThread)
	GenerateMips(texture *metadata.Texture2D, thread metadata.GraphicsThread, arrayIndex int) error
	MSAAResolve(dst, src *metadata.Texture2D, thread metadata.GraphicsThread) error
	DownloadBuffer(src, staging *metadata.GPUBuffer, data []byte, thread metadata.GraphicsThread) error
	QueryBegin(query *metadata.GPUQuery, thread metadata.GraphicsThread) error
	QueryEnd(query *metadata.GPUQuery, thread metadata.GraphicsThread) error
	QueryRead(query *metadata.GPUQuery, thread metadata.GraphicsThread) error
	SaveTexturePNG(path string, texture *metadata.Texture2D, thread metadata.GraphicsThread) error
	SaveTextureDDS(path string, texture *metadata.Texture2D, thread metadata.GraphicsThread) error

	EventBegin(name string, thread metadata.GraphicsThread)
	EventEnd(thread metadata.GraphicsThread)
	SetMarker(name string, thread metadata.GraphicsThread)

	WriteStats(writer *jwriter.Writer)
}

var _ GraphicsDevice = (*vulkan.Device)(nil)

type backendFactory func(cfg *core.Config, window *platform.Platform) (GraphicsDevice, error)

var backends = map[metadata.RendererType]backendFactory{
	metadata.Vulkan:  newVulkanBackend,
	metadata.DirectX: newDirectXBackend,
}

func newVulkanBackend(cfg *core.Config, window *platform.Platform) (GraphicsDevice, error) {
	driver, err := vulkan.NewVulkanDriver(window, vulkan.DriverOptions{
		AppName:    cfg.Window.Title,
		Validation: cfg.Renderer.Validation,
		VSync:      cfg.Renderer.VSync,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vulkan driver")
	}
	device, err := vulkan.NewDevice(driver, vulkan.DeviceConfigFrom(cfg.Renderer))
	if err != nil {
		return nil, errors.Wrap(err, "vulkan device")
	}
	return device, nil
}

// No DirectX runtime is reachable from this build.
func newDirectXBackend(cfg *core.Config, window *platform.Platform) (GraphicsDevice, error) {
	return nil, errors.Wrapf(core.ErrBackendUnavailable, "%s", metadata.DirectX)
}
