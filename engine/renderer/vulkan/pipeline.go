package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func sampleCount(desc metadata.SampleDesc) vk.SampleCountFlagBits {
	if desc.Count > 1 {
		return vk.SampleCountFlagBits(desc.Count)
	}
	return vk.SampleCount1Bit
}

/**
 * @brief Builds the render pass a graphics pipeline is created against. Attachments are
 * loaded and stored in GENERAL layout, since a pass may be ended and begun again several
 * times within a frame. Clears go through CmdClearAttachments.
 */
func (d *Device) createPipelineRenderPass(desc *metadata.GraphicsPSODesc) (vk.RenderPass, error) {
	samples := sampleCount(desc.SampleDesc)
	attachments := make([]vk.AttachmentDescription, 0, desc.NumRTs+1)
	colorRefs := make([]vk.AttachmentReference, 0, desc.NumRTs)
	for i := uint32(0); i < desc.NumRTs; i++ {
		format := convertFormat(desc.RTFormats[i])
		if format == vk.FormatUndefined {
			return nil, errors.Wrapf(core.ErrUnsupportedFormat, "render target %d format %d", i, desc.RTFormats[i])
		}
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         format,
			Samples:        samples,
			LoadOp:         vk.AttachmentLoadOpLoad,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutGeneral,
			FinalLayout:    vk.ImageLayoutGeneral,
		})
		colorRefs = append(colorRefs, vk.AttachmentReference{Attachment: i, Layout: vk.ImageLayoutGeneral})
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}
	if desc.DSFormat != metadata.FormatUnknown {
		format := convertFormat(desc.DSFormat)
		if format == vk.FormatUndefined {
			return nil, errors.Wrapf(core.ErrUnsupportedFormat, "depth format %d", desc.DSFormat)
		}
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         format,
			Samples:        samples,
			LoadOp:         vk.AttachmentLoadOpLoad,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpLoad,
			StencilStoreOp: vk.AttachmentStoreOpStore,
			InitialLayout:  vk.ImageLayoutGeneral,
			FinalLayout:    vk.ImageLayoutGeneral,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: uint32(len(attachments) - 1),
			Layout:     vk.ImageLayoutGeneral,
		}
	}

	return d.driver.CreateRenderPass(&vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	})
}

// vertexInput resolves the input layout into one binding per input slot. AppendAlignedElement
// offsets continue after the previous element of the same slot.
func vertexInput(layout *metadata.InputLayout) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription) {
	if layout == nil {
		return nil, nil
	}
	var bindings []vk.VertexInputBindingDescription
	attributes := make([]vk.VertexInputAttributeDescription, 0, len(layout.Desc))
	slotIndex := map[uint32]int{}

	for i, element := range layout.Desc {
		index, ok := slotIndex[element.InputSlot]
		if !ok {
			index = len(bindings)
			slotIndex[element.InputSlot] = index
			bindings = append(bindings, vk.VertexInputBindingDescription{
				Binding:   element.InputSlot,
				InputRate: convertInputRate(element.InputSlotClass),
			})
		}
		binding := &bindings[index]

		offset := element.AlignedByteOffset
		if offset == metadata.AppendAlignedElement {
			offset = binding.Stride
		}
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: uint32(i),
			Binding:  element.InputSlot,
			Format:   convertFormat(element.Format),
			Offset:   offset,
		})
		if end := offset + formatStride(element.Format); end > binding.Stride {
			binding.Stride = end
		}
	}
	return bindings, attributes
}

func stencilOpState(desc metadata.DepthStencilOpDesc, readMask, writeMask uint8) vk.StencilOpState {
	return vk.StencilOpState{
		FailOp:      convertStencilOp(desc.StencilFailOp),
		PassOp:      convertStencilOp(desc.StencilPassOp),
		DepthFailOp: convertStencilOp(desc.StencilDepthFailOp),
		CompareOp:   convertComparisonFunc(desc.StencilFunc),
		CompareMask: uint32(readMask),
		WriteMask:   uint32(writeMask),
	}
}

func (d *Device) shaderStages(desc *metadata.GraphicsPSODesc) []vk.PipelineShaderStageCreateInfo {
	shaders := [...]*metadata.Shader{desc.VS, desc.HS, desc.DS, desc.GS, desc.PS}
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(shaders))
	for i, shader := range shaders {
		if shader == nil {
			continue
		}
		res, ok := shader.InternalData.(*shaderResource)
		if !ok {
			continue
		}
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stageFlags[metadata.ShaderStageVS+metadata.ShaderStage(i)],
			Module: res.module,
			PName:  "main\x00",
		})
	}
	return stages
}

/**
 * @brief Creates a graphics pipeline and the render pass its targets are bound with.
 * Viewport, scissor, stencil reference and blend constants are dynamic.
 */
func (d *Device) CreateGraphicsPSO(desc *metadata.GraphicsPSODesc, pso *metadata.GraphicsPSO) error {
	if desc.VS == nil || desc.VS.InternalData == nil {
		err := errors.Wrap(core.ErrInvalidDescriptor, "graphics pipeline without a vertex shader")
		core.LogError(err.Error())
		return err
	}
	core.Assert(desc.NumRTs <= uint32(len(desc.RTFormats)), "%d render targets requested, at most %d are supported", desc.NumRTs, len(desc.RTFormats))

	renderPass, err := d.createPipelineRenderPass(desc)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	bindings, attributes := vertexInput(desc.IL)
	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               convertPrimitiveTopology(desc.PT),
		PrimitiveRestartEnable: vk.False,
	}
	tessellation := vk.PipelineTessellationStateCreateInfo{
		SType:              vk.StructureTypePipelineTessellationStateCreateInfo,
		PatchControlPoints: 3,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: uint32(d.viewportCount()),
		ScissorCount:  uint32(d.viewportCount()),
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceClockwise,
		LineWidth:               1.0,
	}
	if desc.RS != nil {
		rs := &desc.RS.Desc
		rasterizer.PolygonMode = convertFillMode(rs.FillMode)
		rasterizer.CullMode = convertCullMode(rs.CullMode)
		if rs.FrontCounterClockwise {
			rasterizer.FrontFace = vk.FrontFaceCounterClockwise
		}
		rasterizer.DepthBiasEnable = boolToVk(rs.DepthBias != 0 || rs.SlopeScaledDepthBias != 0)
		rasterizer.DepthBiasConstantFactor = float32(rs.DepthBias)
		rasterizer.DepthBiasClamp = rs.DepthBiasClamp
		rasterizer.DepthBiasSlopeFactor = rs.SlopeScaledDepthBias
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: sampleCount(desc.SampleDesc),
		MinSampleShading:     1.0,
	}
	if desc.SampleMask != 0 && desc.SampleMask != 0xffffffff {
		multisample.PSampleMask = []vk.SampleMask{vk.SampleMask(desc.SampleMask)}
	}
	if desc.BS != nil {
		multisample.AlphaToCoverageEnable = boolToVk(desc.BS.Desc.AlphaToCoverageEnable)
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:          vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthCompareOp: vk.CompareOpAlways,
		MaxDepthBounds: 1.0,
	}
	if desc.DSS != nil {
		dss := &desc.DSS.Desc
		depthStencil.DepthTestEnable = boolToVk(dss.DepthEnable)
		depthStencil.DepthWriteEnable = boolToVk(dss.DepthWriteMask == metadata.DepthWriteMaskAll)
		depthStencil.DepthCompareOp = convertComparisonFunc(dss.DepthFunc)
		depthStencil.StencilTestEnable = boolToVk(dss.StencilEnable)
		depthStencil.Front = stencilOpState(dss.FrontFace, dss.StencilReadMask, dss.StencilWriteMask)
		depthStencil.Back = stencilOpState(dss.BackFace, dss.StencilReadMask, dss.StencilWriteMask)
	}

	blendAttachments := make([]vk.PipelineColorBlendAttachmentState, desc.NumRTs)
	for i := range blendAttachments {
		rt := metadata.DefaultRenderTargetBlendStateDesc()
		if desc.BS != nil {
			rt = desc.BS.Desc.RenderTarget[i]
		}
		blendAttachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         boolToVk(rt.BlendEnable),
			SrcColorBlendFactor: convertBlend(rt.SrcBlend),
			DstColorBlendFactor: convertBlend(rt.DestBlend),
			ColorBlendOp:        convertBlendOp(rt.BlendOp),
			SrcAlphaBlendFactor: convertBlend(rt.SrcBlendAlpha),
			DstAlphaBlendFactor: convertBlend(rt.DestBlendAlpha),
			AlphaBlendOp:        convertBlendOp(rt.BlendOpAlpha),
			ColorWriteMask:      convertColorWriteMask(rt.RenderTargetWriteMask),
		}
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
		BlendConstants:  [4]float32{1, 1, 1, 1},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateStencilReference,
		vk.DynamicStateBlendConstants,
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	stages := d.shaderStages(desc)
	info := &vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              d.layouts.graphics,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}
	if desc.PT == metadata.PrimitivePatchList {
		info.PTessellationState = &tessellation
	}

	var pipeline vk.Pipeline
	err = d.locks.SafeCall(PipelineManagement, func() error {
		var err error
		pipeline, err = d.driver.CreateGraphicsPipeline(info)
		return err
	})
	if err != nil {
		d.driver.DestroyRenderPass(renderPass)
		core.LogError(err.Error())
		return err
	}

	pso.Desc = *desc
	pso.InternalData = &pipelineResource{
		pipeline:   pipeline,
		renderPass: renderPass,
		bindPoint:  vk.PipelineBindPointGraphics,
	}
	return nil
}

func (d *Device) CreateComputePSO(desc *metadata.ComputePSODesc, pso *metadata.ComputePSO) error {
	if desc.CS == nil {
		err := errors.Wrap(core.ErrInvalidDescriptor, "compute pipeline without a compute shader")
		core.LogError(err.Error())
		return err
	}
	res, ok := desc.CS.InternalData.(*shaderResource)
	if !ok {
		err := errors.Wrap(core.ErrInvalidDescriptor, "compute shader has not been created")
		core.LogError(err.Error())
		return err
	}

	var pipeline vk.Pipeline
	err := d.locks.SafeCall(PipelineManagement, func() error {
		var err error
		pipeline, err = d.driver.CreateComputePipeline(&vk.ComputePipelineCreateInfo{
			SType: vk.StructureTypeComputePipelineCreateInfo,
			Stage: vk.PipelineShaderStageCreateInfo{
				SType:  vk.StructureTypePipelineShaderStageCreateInfo,
				Stage:  vk.ShaderStageComputeBit,
				Module: res.module,
				PName:  "main\x00",
			},
			Layout:            d.layouts.compute,
			BasePipelineIndex: -1,
		})
		return err
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	pso.Desc = *desc
	pso.InternalData = &pipelineResource{pipeline: pipeline, bindPoint: vk.PipelineBindPointCompute}
	return nil
}

// destroyPipeline also drops every framebuffer cached for the pipeline.
func (d *Device) destroyPipeline(res *pipelineResource) {
	if res.bindPoint == vk.PipelineBindPointGraphics {
		d.framebuffers.forget(d.driver, res.pipeline)
	}
	if !isNull(res.pipeline) {
		d.driver.DestroyPipeline(res.pipeline)
	}
	if !isNull(res.renderPass) {
		d.driver.DestroyRenderPass(res.renderPass)
	}
	*res = pipelineResource{}
}
