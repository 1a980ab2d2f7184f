package vulkan

import (
	"image"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/assets/loaders"
	"github.com/spaghettifunk/anvil/engine/core"
	anvilmath "github.com/spaghettifunk/anvil/engine/math"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

var colorAspect = vk.ImageAspectFlags(vk.ImageAspectColorBit)

// uploadDstAccess is every read a freshly uploaded buffer may see next.
var uploadDstAccess = vk.AccessFlags(vk.AccessUniformReadBit | vk.AccessIndexReadBit |
	vk.AccessVertexAttributeReadBit | vk.AccessShaderReadBit)

type bufferResource struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	srv    vk.BufferView
	uav    vk.BufferView
}

type textureResource struct {
	image  vk.Image
	memory vk.DeviceMemory
	format vk.Format
	aspect vk.ImageAspectFlags
	mips   uint32
	layers uint32

	srv vk.ImageView
	uav vk.ImageView
	rtv vk.ImageView
	dsv vk.ImageView

	additionalSRVs []vk.ImageView
	additionalUAVs []vk.ImageView
	additionalRTVs []vk.ImageView
}

type samplerResource struct {
	sampler vk.Sampler
}

type shaderResource struct {
	module vk.ShaderModule
}

type pipelineResource struct {
	pipeline   vk.Pipeline
	renderPass vk.RenderPass
	bindPoint  vk.PipelineBindPoint
}

func aspectOf(format vk.Format) vk.ImageAspectFlags {
	switch format {
	case vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	case vk.FormatD32Sfloat, vk.FormatD16Unorm:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	return colorAspect
}

// sharingMode shares resources between the graphics and copy families when they differ.
func (d *Device) sharingMode() (vk.SharingMode, []uint32) {
	if d.families.Graphics == d.families.Copy {
		return vk.SharingModeExclusive, nil
	}
	return vk.SharingModeConcurrent, []uint32{d.families.Graphics, d.families.Copy}
}

func (d *Device) bindBufferMemory(buffer vk.Buffer) (vk.DeviceMemory, error) {
	req := d.driver.BufferMemoryRequirements(buffer)
	typeIndex, ok := d.driver.FindMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if !ok {
		return nil, errors.Wrap(core.ErrUnknown, "no device local memory type for buffer")
	}
	memory, err := d.driver.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		return nil, err
	}
	if err := d.driver.BindBufferMemory(buffer, memory, 0); err != nil {
		d.driver.FreeMemory(memory)
		return nil, err
	}
	return memory, nil
}

func (d *Device) bindImageMemory(image vk.Image) (vk.DeviceMemory, error) {
	req := d.driver.ImageMemoryRequirements(image)
	typeIndex, ok := d.driver.FindMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if !ok {
		return nil, errors.Wrap(core.ErrUnknown, "no device local memory type for image")
	}
	memory, err := d.driver.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		return nil, err
	}
	if err := d.driver.BindImageMemory(image, memory, 0); err != nil {
		d.driver.FreeMemory(memory)
		return nil, err
	}
	return memory, nil
}

func (d *Device) createImageView(image vk.Image, viewType vk.ImageViewType, format vk.Format, aspect vk.ImageAspectFlags, baseMip, mips, baseLayer, layers uint32) (vk.ImageView, error) {
	return d.driver.CreateImageView(&vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   baseMip,
			LevelCount:     mips,
			BaseArrayLayer: baseLayer,
			LayerCount:     layers,
		},
	})
}

func bufferUsage(desc *metadata.GPUBufferDesc) vk.BufferUsageFlagBits {
	usage := vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit
	if desc.BindFlags&metadata.BindVertexBuffer != 0 {
		usage |= vk.BufferUsageVertexBufferBit
	}
	if desc.BindFlags&metadata.BindIndexBuffer != 0 {
		usage |= vk.BufferUsageIndexBufferBit
	}
	if desc.BindFlags&metadata.BindConstantBuffer != 0 {
		usage |= vk.BufferUsageUniformBufferBit
	}
	if desc.BindFlags&metadata.BindShaderResource != 0 {
		if desc.Format == metadata.FormatUnknown {
			usage |= vk.BufferUsageStorageBufferBit
		} else {
			usage |= vk.BufferUsageUniformTexelBufferBit
		}
	}
	if desc.BindFlags&metadata.BindUnorderedAccess != 0 {
		if desc.Format == metadata.FormatUnknown {
			usage |= vk.BufferUsageStorageBufferBit
		} else {
			usage |= vk.BufferUsageStorageTexelBufferBit
		}
	}
	if desc.MiscFlags&metadata.ResourceMiscDrawIndirectArgs != 0 {
		usage |= vk.BufferUsageIndirectBufferBit
	}
	return usage
}

/**
 * @brief Creates buffer from desc. Initial data is copied through the shared uploader and
 * becomes visible to the graphics queue with the next PresentBegin.
 */
func (d *Device) CreateBuffer(desc *metadata.GPUBufferDesc, initialData *metadata.SubresourceData, buffer *metadata.GPUBuffer) error {
	if desc.ByteWidth == 0 {
		err := errors.Wrap(core.ErrInvalidDescriptor, "buffer with zero size")
		core.LogError(err.Error())
		return err
	}
	buffer.Desc = *desc
	buffer.Kind = metadata.ResourceKindBuffer
	if desc.Format != metadata.FormatUnknown && desc.BindFlags&(metadata.BindShaderResource|metadata.BindUnorderedAccess) != 0 {
		buffer.Kind = metadata.ResourceKindTypedBuffer
	}

	sharing, families := d.sharingMode()
	handle, err := d.driver.CreateBuffer(&vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		Size:                  vk.DeviceSize(desc.ByteWidth),
		Usage:                 vk.BufferUsageFlags(bufferUsage(desc)),
		SharingMode:           sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	res := &bufferResource{buffer: handle}
	if res.memory, err = d.bindBufferMemory(handle); err != nil {
		d.destroyBuffer(res)
		core.LogError(err.Error())
		return err
	}

	if buffer.Kind == metadata.ResourceKindTypedBuffer {
		format := convertFormat(desc.Format)
		if format == vk.FormatUndefined {
			d.destroyBuffer(res)
			return errors.Wrapf(core.ErrUnsupportedFormat, "typed buffer format %d", desc.Format)
		}
		info := &vk.BufferViewCreateInfo{
			SType:  vk.StructureTypeBufferViewCreateInfo,
			Buffer: handle,
			Format: format,
			Range:  vk.DeviceSize(vk.WholeSize),
		}
		if desc.BindFlags&metadata.BindShaderResource != 0 {
			if res.srv, err = d.driver.CreateBufferView(info); err != nil {
				d.destroyBuffer(res)
				return err
			}
		}
		if desc.BindFlags&metadata.BindUnorderedAccess != 0 {
			if res.uav, err = d.driver.CreateBufferView(info); err != nil {
				d.destroyBuffer(res)
				return err
			}
		}
	}

	if initialData != nil && len(initialData.SysMem) > 0 {
		size := anvilmath.Min(int(desc.ByteWidth), len(initialData.SysMem))
		if err := d.copyQueue.uploadBuffer(handle, initialData.SysMem[:size], uploadDstAccess); err != nil {
			d.destroyBuffer(res)
			return err
		}
	}

	return d.locks.SafeCall(ResourceManagement, func() error {
		buffer.ID = core.IdentifierAquireNewID(buffer)
		buffer.InternalData = res
		return nil
	})
}

func textureUsage(desc *metadata.TextureDesc) vk.ImageUsageFlagBits {
	usage := vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit
	if desc.BindFlags&metadata.BindShaderResource != 0 {
		usage |= vk.ImageUsageSampledBit
	}
	if desc.BindFlags&metadata.BindRenderTarget != 0 {
		usage |= vk.ImageUsageColorAttachmentBit
	}
	if desc.BindFlags&metadata.BindDepthStencil != 0 {
		usage |= vk.ImageUsageDepthStencilAttachmentBit
	}
	if desc.BindFlags&metadata.BindUnorderedAccess != 0 {
		usage |= vk.ImageUsageStorageBit
	}
	return usage
}

// fullMipChain is the number of levels down to and including 1x1.
func fullMipChain(width, height uint32) uint32 {
	return anvilmath.Log2(anvilmath.Max(width, height)) + 1
}

/**
 * @brief Creates a 2D texture, texture array or cubemap. initialData holds one entry per
 * subresource, indexed layer*mips + mip. A MipLevels of 0 requests the full chain and is
 * written back to texture.Desc.
 */
func (d *Device) CreateTexture2D(desc *metadata.TextureDesc, initialData []metadata.SubresourceData, texture *metadata.Texture2D) error {
	if desc.Width == 0 || desc.Height == 0 {
		err := errors.Wrapf(core.ErrInvalidDescriptor, "texture of %dx%d", desc.Width, desc.Height)
		core.LogError(err.Error())
		return err
	}
	format := convertFormat(desc.Format)
	if format == vk.FormatUndefined {
		err := errors.Wrapf(core.ErrUnsupportedFormat, "texture format %d", desc.Format)
		core.LogError(err.Error())
		return err
	}

	texture.Kind = metadata.ResourceKindTexture
	texture.Desc = *desc
	if texture.Desc.MipLevels == 0 {
		texture.Desc.MipLevels = fullMipChain(desc.Width, desc.Height)
	}
	texture.Desc.ArraySize = anvilmath.Max(texture.Desc.ArraySize, 1)
	mips, layers := texture.Desc.MipLevels, texture.Desc.ArraySize
	cube := desc.MiscFlags&metadata.ResourceMiscTextureCube != 0

	var flags vk.ImageCreateFlagBits
	if cube {
		flags |= vk.ImageCreateCubeCompatibleBit
	}
	samples := vk.SampleCount1Bit
	if desc.SampleDesc.Count > 1 {
		samples = vk.SampleCountFlagBits(desc.SampleDesc.Count)
	}

	sharing, families := d.sharingMode()
	handle, err := d.driver.CreateImage(&vk.ImageCreateInfo{
		SType:                 vk.StructureTypeImageCreateInfo,
		Flags:                 vk.ImageCreateFlags(flags),
		ImageType:             vk.ImageType2d,
		Format:                format,
		Extent:                vk.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
		MipLevels:             mips,
		ArrayLayers:           layers,
		Samples:               samples,
		Tiling:                vk.ImageTilingOptimal,
		Usage:                 vk.ImageUsageFlags(textureUsage(desc)),
		SharingMode:           sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		InitialLayout:         vk.ImageLayoutUndefined,
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	res := &textureResource{
		image:  handle,
		format: format,
		aspect: aspectOf(format),
		mips:   mips,
		layers: layers,
	}
	if res.memory, err = d.bindImageMemory(handle); err != nil {
		d.destroyTexture(res)
		core.LogError(err.Error())
		return err
	}

	if len(initialData) > 0 {
		err = d.copyQueue.uploadTexture(handle, res.aspect, mips, layers, metadata.FormatStride(desc.Format),
			textureUploads(&texture.Desc, initialData))
	} else {
		err = d.copyQueue.transition(handle, res.aspect, mips, layers, vk.ImageLayoutGeneral)
	}
	if err != nil {
		d.destroyTexture(res)
		return err
	}

	if err := d.createTextureViews(texture, res, cube); err != nil {
		d.destroyTexture(res)
		core.LogError(err.Error())
		return err
	}
	return d.locks.SafeCall(ResourceManagement, func() error {
		texture.ID = core.IdentifierAquireNewID(texture)
		texture.InternalData = res
		return nil
	})
}

// textureUploads lays out initial data per subresource. Mip extents halve down to 1.
func textureUploads(desc *metadata.TextureDesc, initialData []metadata.SubresourceData) []textureUpload {
	uploads := make([]textureUpload, 0, len(initialData))
	for layer := uint32(0); layer < desc.ArraySize; layer++ {
		for mip := uint32(0); mip < desc.MipLevels; mip++ {
			index := int(layer*desc.MipLevels + mip)
			if index >= len(initialData) || len(initialData[index].SysMem) == 0 {
				continue
			}
			uploads = append(uploads, textureUpload{
				data:   initialData[index].SysMem,
				pitch:  initialData[index].SysMemPitch,
				mip:    mip,
				layer:  layer,
				width:  anvilmath.MipExtent(desc.Width, mip),
				height: anvilmath.MipExtent(desc.Height, mip),
			})
		}
	}
	return uploads
}

func (d *Device) createTextureViews(texture *metadata.Texture2D, res *textureResource, cube bool) error {
	desc := &texture.Desc
	layers := res.layers
	var err error

	arrayType := vk.ImageViewType2d
	switch {
	case cube && layers > 6:
		arrayType = vk.ImageViewTypeCubeArray
	case cube:
		arrayType = vk.ImageViewTypeCube
	case layers > 1:
		arrayType = vk.ImageViewType2dArray
	}
	attachmentType := vk.ImageViewType2d
	if layers > 1 {
		attachmentType = vk.ImageViewType2dArray
	}
	sampledAspect := res.aspect
	if res.aspect != colorAspect {
		sampledAspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}

	if desc.BindFlags&metadata.BindShaderResource != 0 {
		if res.srv, err = d.createImageView(res.image, arrayType, res.format, sampledAspect, 0, res.mips, 0, layers); err != nil {
			return err
		}
		if texture.RequestIndependentShaderResourceArraySlices {
			for layer := uint32(0); layer < layers; layer++ {
				view, err := d.createImageView(res.image, vk.ImageViewType2d, res.format, sampledAspect, 0, res.mips, layer, 1)
				if err != nil {
					return err
				}
				res.additionalSRVs = append(res.additionalSRVs, view)
			}
		}
		if texture.RequestIndependentShaderResourcesForMIPs {
			for mip := uint32(0); mip < res.mips; mip++ {
				view, err := d.createImageView(res.image, attachmentType, res.format, sampledAspect, mip, 1, 0, layers)
				if err != nil {
					return err
				}
				res.additionalSRVs = append(res.additionalSRVs, view)
			}
		}
	}

	if desc.BindFlags&metadata.BindUnorderedAccess != 0 {
		if res.uav, err = d.createImageView(res.image, attachmentType, res.format, res.aspect, 0, 1, 0, layers); err != nil {
			return err
		}
		if texture.RequestIndependentUnorderedAccessResourcesForMIPs {
			for mip := uint32(0); mip < res.mips; mip++ {
				view, err := d.createImageView(res.image, attachmentType, res.format, res.aspect, mip, 1, 0, layers)
				if err != nil {
					return err
				}
				res.additionalUAVs = append(res.additionalUAVs, view)
			}
		}
	}

	if desc.BindFlags&metadata.BindRenderTarget != 0 {
		if res.rtv, err = d.createImageView(res.image, attachmentType, res.format, res.aspect, 0, 1, 0, layers); err != nil {
			return err
		}
		switch {
		case texture.RequestIndependentRenderTargetArraySlices:
			for layer := uint32(0); layer < layers; layer++ {
				view, err := d.createImageView(res.image, vk.ImageViewType2d, res.format, res.aspect, 0, 1, layer, 1)
				if err != nil {
					return err
				}
				res.additionalRTVs = append(res.additionalRTVs, view)
			}
		case texture.RequestIndependentRenderTargetCubemaps && cube:
			for first := uint32(0); first+6 <= layers; first += 6 {
				view, err := d.createImageView(res.image, vk.ImageViewType2dArray, res.format, res.aspect, 0, 1, first, 6)
				if err != nil {
					return err
				}
				res.additionalRTVs = append(res.additionalRTVs, view)
			}
		}
	}

	if desc.BindFlags&metadata.BindDepthStencil != 0 {
		if res.dsv, err = d.createImageView(res.image, attachmentType, res.format, res.aspect, 0, 1, 0, layers); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Decodes an image file to RGBA8 and uploads it as a shader resource. With mipMaps
 * the chain is built on the CPU before the upload.
 */
func (d *Device) CreateTextureFromFile(path string, mipMaps bool, texture *metadata.Texture2D) error {
	img, err := loaders.DecodeImage(path)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	levels := []*image.RGBA{img}
	if mipMaps {
		levels = loaders.MipChain(img)
	}

	data := make([]metadata.SubresourceData, len(levels))
	for i, level := range levels {
		data[i] = metadata.SubresourceData{
			SysMem:      level.Pix,
			SysMemPitch: uint32(level.Stride),
		}
	}
	bounds := img.Bounds()
	desc := &metadata.TextureDesc{
		Width:      uint32(bounds.Dx()),
		Height:     uint32(bounds.Dy()),
		Depth:      1,
		ArraySize:  1,
		MipLevels:  uint32(len(levels)),
		Format:     metadata.FormatR8G8B8A8Unorm,
		SampleDesc: metadata.SampleDesc{Count: 1},
		Usage:      metadata.UsageImmutable,
		BindFlags:  metadata.BindShaderResource,
	}
	return d.CreateTexture2D(desc, data, texture)
}

func (d *Device) CreateSamplerState(desc *metadata.SamplerDesc, sampler *metadata.Sampler) error {
	filter := convertFilter(desc.Filter)
	info := &vk.SamplerCreateInfo{
		SType:            vk.StructureTypeSamplerCreateInfo,
		MagFilter:        filter.mag,
		MinFilter:        filter.min,
		MipmapMode:       filter.mip,
		AddressModeU:     convertTextureAddressMode(desc.AddressU),
		AddressModeV:     convertTextureAddressMode(desc.AddressV),
		AddressModeW:     convertTextureAddressMode(desc.AddressW),
		MipLodBias:       desc.MipLODBias,
		AnisotropyEnable: vk.False,
		MaxAnisotropy:    1,
		CompareEnable:    vk.False,
		CompareOp:        convertComparisonFunc(desc.ComparisonFunc),
		MinLod:           desc.MinLOD,
		MaxLod:           desc.MaxLOD,
		BorderColor:      vk.BorderColorFloatTransparentBlack,
	}
	if filter.anisotropy {
		info.AnisotropyEnable = vk.True
		info.MaxAnisotropy = float32(anvilmath.Clamp(desc.MaxAnisotropy, 1, 16))
	}
	if filter.compare {
		info.CompareEnable = vk.True
	}
	if desc.BorderColor[3] > 0 {
		info.BorderColor = vk.BorderColorFloatOpaqueBlack
		if desc.BorderColor[0] > 0 {
			info.BorderColor = vk.BorderColorFloatOpaqueWhite
		}
	}

	handle, err := d.driver.CreateSampler(info)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	sampler.Desc = *desc
	return d.locks.SafeCall(ResourceManagement, func() error {
		sampler.ID = core.IdentifierAquireNewID(sampler)
		sampler.InternalData = &samplerResource{sampler: handle}
		return nil
	})
}

func (d *Device) CreateBlendState(desc *metadata.BlendStateDesc, state *metadata.BlendState) error {
	state.Desc = *desc
	if !desc.IndependentBlendEnable {
		for i := 1; i < len(state.Desc.RenderTarget); i++ {
			state.Desc.RenderTarget[i] = state.Desc.RenderTarget[0]
		}
	}
	return nil
}

func (d *Device) CreateDepthStencilState(desc *metadata.DepthStencilStateDesc, state *metadata.DepthStencilState) error {
	state.Desc = *desc
	return nil
}

func (d *Device) CreateRasterizerState(desc *metadata.RasterizerStateDesc, state *metadata.RasterizerState) error {
	state.Desc = *desc
	return nil
}

// CreateInputLayout copies the elements. Every element needs a known format for the stride lookup.
func (d *Device) CreateInputLayout(desc []metadata.VertexLayoutDesc, layout *metadata.InputLayout) error {
	for i := range desc {
		if formatStride(desc[i].Format) == 0 {
			err := errors.Wrapf(core.ErrUnsupportedFormat, "input element %s%d", desc[i].SemanticName, desc[i].SemanticIndex)
			core.LogError(err.Error())
			return err
		}
	}
	layout.Desc = append([]metadata.VertexLayoutDesc(nil), desc...)
	return nil
}

func (d *Device) createShader(stage metadata.ShaderStage, bytecode []byte, shader *metadata.Shader) error {
	if len(bytecode) == 0 {
		err := errors.Wrapf(core.ErrEmptyBytecode, "%s shader", stage)
		core.LogError(err.Error())
		return err
	}
	module, err := d.driver.CreateShaderModule(bytecode)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	shader.Stage = stage
	shader.Code = append([]byte(nil), bytecode...)
	shader.InternalData = &shaderResource{module: module}
	return nil
}

func (d *Device) CreateVertexShader(bytecode []byte, shader *metadata.Shader) error {
	return d.createShader(metadata.ShaderStageVS, bytecode, shader)
}

func (d *Device) CreateHullShader(bytecode []byte, shader *metadata.Shader) error {
	return d.createShader(metadata.ShaderStageHS, bytecode, shader)
}

func (d *Device) CreateDomainShader(bytecode []byte, shader *metadata.Shader) error {
	return d.createShader(metadata.ShaderStageDS, bytecode, shader)
}

func (d *Device) CreateGeometryShader(bytecode []byte, shader *metadata.Shader) error {
	return d.createShader(metadata.ShaderStageGS, bytecode, shader)
}

func (d *Device) CreatePixelShader(bytecode []byte, shader *metadata.Shader) error {
	return d.createShader(metadata.ShaderStagePS, bytecode, shader)
}

func (d *Device) CreateComputeShader(bytecode []byte, shader *metadata.Shader) error {
	return d.createShader(metadata.ShaderStageCS, bytecode, shader)
}

/**
 * @brief Releases the native objects behind resource. The GPU must no longer use it, call
 * WaitForGPU first when unsure.
 */
func (d *Device) Destroy(resource interface{}) {
	if ring, ok := resource.(*metadata.GPURingBuffer); ok {
		resource = &ring.GPUBuffer
	}
	_ = d.locks.SafeCall(ResourceManagement, func() error {
		d.destroyResource(resource)
		return nil
	})
}

func (d *Device) destroyResource(resource interface{}) {
	switch r := resource.(type) {
	case *metadata.GPUBuffer:
		if res, ok := r.InternalData.(*bufferResource); ok {
			d.destroyBuffer(res)
		}
		core.IdentifierReleaseID(r.ID)
		r.InternalData = nil
	case *metadata.Texture2D:
		if res, ok := r.InternalData.(*textureResource); ok {
			d.destroyTexture(res)
		}
		core.IdentifierReleaseID(r.ID)
		r.InternalData = nil
	case *metadata.Sampler:
		if res, ok := r.InternalData.(*samplerResource); ok {
			d.driver.DestroySampler(res.sampler)
		}
		core.IdentifierReleaseID(r.ID)
		r.InternalData = nil
	case *metadata.Shader:
		if res, ok := r.InternalData.(*shaderResource); ok {
			d.driver.DestroyShaderModule(res.module)
		}
		r.InternalData = nil
	case *metadata.GraphicsPSO:
		if res, ok := r.InternalData.(*pipelineResource); ok {
			d.destroyPipeline(res)
		}
		r.InternalData = nil
	case *metadata.ComputePSO:
		if res, ok := r.InternalData.(*pipelineResource); ok {
			d.destroyPipeline(res)
		}
		r.InternalData = nil
	default:
		core.LogWarn("destroy: %T holds no native objects", resource)
	}
}

func (d *Device) destroyBuffer(res *bufferResource) {
	if !isNull(res.uav) {
		d.driver.DestroyBufferView(res.uav)
	}
	if !isNull(res.srv) {
		d.driver.DestroyBufferView(res.srv)
	}
	if !isNull(res.buffer) {
		d.driver.DestroyBuffer(res.buffer)
	}
	if !isNull(res.memory) {
		d.driver.FreeMemory(res.memory)
	}
	*res = bufferResource{}
}

func (d *Device) destroyTexture(res *textureResource) {
	views := append([]vk.ImageView{res.srv, res.uav, res.rtv, res.dsv}, res.additionalSRVs...)
	views = append(views, res.additionalUAVs...)
	views = append(views, res.additionalRTVs...)
	for _, view := range views {
		if !isNull(view) {
			d.driver.DestroyImageView(view)
		}
	}
	if !isNull(res.image) {
		d.driver.DestroyImage(res.image)
	}
	if !isNull(res.memory) {
		d.driver.FreeMemory(res.memory)
	}
	*res = textureResource{}
}
