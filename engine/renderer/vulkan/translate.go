package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

var formats = map[metadata.Format]vk.Format{
	metadata.FormatR32G32B32A32Typeless:   vk.FormatR32g32b32a32Sfloat,
	metadata.FormatR32G32B32A32Float:      vk.FormatR32g32b32a32Sfloat,
	metadata.FormatR32G32B32A32Uint:       vk.FormatR32g32b32a32Uint,
	metadata.FormatR32G32B32A32Sint:       vk.FormatR32g32b32a32Sint,
	metadata.FormatR32G32B32Typeless:      vk.FormatR32g32b32Sfloat,
	metadata.FormatR32G32B32Float:         vk.FormatR32g32b32Sfloat,
	metadata.FormatR32G32B32Uint:          vk.FormatR32g32b32Uint,
	metadata.FormatR32G32B32Sint:          vk.FormatR32g32b32Sint,
	metadata.FormatR16G16B16A16Typeless:   vk.FormatR16g16b16a16Sfloat,
	metadata.FormatR16G16B16A16Float:      vk.FormatR16g16b16a16Sfloat,
	metadata.FormatR16G16B16A16Unorm:      vk.FormatR16g16b16a16Unorm,
	metadata.FormatR16G16B16A16Uint:       vk.FormatR16g16b16a16Uint,
	metadata.FormatR16G16B16A16Snorm:      vk.FormatR16g16b16a16Snorm,
	metadata.FormatR16G16B16A16Sint:       vk.FormatR16g16b16a16Sint,
	metadata.FormatR32G32Typeless:         vk.FormatR32g32Sfloat,
	metadata.FormatR32G32Float:            vk.FormatR32g32Sfloat,
	metadata.FormatR32G32Uint:             vk.FormatR32g32Uint,
	metadata.FormatR32G32Sint:             vk.FormatR32g32Sint,
	metadata.FormatR32G8X24Typeless:       vk.FormatD32SfloatS8Uint,
	metadata.FormatD32FloatS8X24Uint:      vk.FormatD32SfloatS8Uint,
	metadata.FormatR10G10B10A2Typeless:    vk.FormatA2b10g10r10UnormPack32,
	metadata.FormatR10G10B10A2Unorm:       vk.FormatA2b10g10r10UnormPack32,
	metadata.FormatR10G10B10A2Uint:        vk.FormatA2b10g10r10UintPack32,
	metadata.FormatR11G11B10Float:         vk.FormatB10g11r11UfloatPack32,
	metadata.FormatR8G8B8A8Typeless:       vk.FormatR8g8b8a8Unorm,
	metadata.FormatR8G8B8A8Unorm:          vk.FormatR8g8b8a8Unorm,
	metadata.FormatR8G8B8A8UnormSrgb:      vk.FormatR8g8b8a8Srgb,
	metadata.FormatR8G8B8A8Uint:           vk.FormatR8g8b8a8Uint,
	metadata.FormatR8G8B8A8Snorm:          vk.FormatR8g8b8a8Snorm,
	metadata.FormatR8G8B8A8Sint:           vk.FormatR8g8b8a8Sint,
	metadata.FormatR16G16Typeless:         vk.FormatR16g16Sfloat,
	metadata.FormatR16G16Float:            vk.FormatR16g16Sfloat,
	metadata.FormatR16G16Unorm:            vk.FormatR16g16Unorm,
	metadata.FormatR16G16Uint:             vk.FormatR16g16Uint,
	metadata.FormatR16G16Snorm:            vk.FormatR16g16Snorm,
	metadata.FormatR16G16Sint:             vk.FormatR16g16Sint,
	metadata.FormatR32Typeless:            vk.FormatD32Sfloat,
	metadata.FormatD32Float:               vk.FormatD32Sfloat,
	metadata.FormatR32Float:               vk.FormatR32Sfloat,
	metadata.FormatR32Uint:                vk.FormatR32Uint,
	metadata.FormatR32Sint:                vk.FormatR32Sint,
	metadata.FormatR24G8Typeless:          vk.FormatD24UnormS8Uint,
	metadata.FormatD24UnormS8Uint:         vk.FormatD24UnormS8Uint,
	metadata.FormatR8G8Typeless:           vk.FormatR8g8Unorm,
	metadata.FormatR8G8Unorm:              vk.FormatR8g8Unorm,
	metadata.FormatR8G8Uint:               vk.FormatR8g8Uint,
	metadata.FormatR8G8Snorm:              vk.FormatR8g8Snorm,
	metadata.FormatR8G8Sint:               vk.FormatR8g8Sint,
	metadata.FormatR16Typeless:            vk.FormatD16Unorm,
	metadata.FormatR16Float:               vk.FormatR16Sfloat,
	metadata.FormatD16Unorm:               vk.FormatD16Unorm,
	metadata.FormatR16Unorm:               vk.FormatR16Unorm,
	metadata.FormatR16Uint:                vk.FormatR16Uint,
	metadata.FormatR16Snorm:               vk.FormatR16Snorm,
	metadata.FormatR16Sint:                vk.FormatR16Sint,
	metadata.FormatR8Typeless:             vk.FormatR8Unorm,
	metadata.FormatR8Unorm:                vk.FormatR8Unorm,
	metadata.FormatR8Uint:                 vk.FormatR8Uint,
	metadata.FormatR8Snorm:                vk.FormatR8Snorm,
	metadata.FormatR8Sint:                 vk.FormatR8Sint,
	metadata.FormatA8Unorm:                vk.FormatR8Unorm,
	metadata.FormatR9G9B9E5SharedExp:      vk.FormatE5b9g9r9UfloatPack32,
	metadata.FormatBC1Typeless:            vk.FormatBc1RgbaUnormBlock,
	metadata.FormatBC1Unorm:               vk.FormatBc1RgbaUnormBlock,
	metadata.FormatBC1UnormSrgb:           vk.FormatBc1RgbaSrgbBlock,
	metadata.FormatBC2Typeless:            vk.FormatBc2UnormBlock,
	metadata.FormatBC2Unorm:               vk.FormatBc2UnormBlock,
	metadata.FormatBC2UnormSrgb:           vk.FormatBc2SrgbBlock,
	metadata.FormatBC3Typeless:            vk.FormatBc3UnormBlock,
	metadata.FormatBC3Unorm:               vk.FormatBc3UnormBlock,
	metadata.FormatBC3UnormSrgb:           vk.FormatBc3SrgbBlock,
	metadata.FormatBC4Typeless:            vk.FormatBc4UnormBlock,
	metadata.FormatBC4Unorm:               vk.FormatBc4UnormBlock,
	metadata.FormatBC4Snorm:               vk.FormatBc4SnormBlock,
	metadata.FormatBC5Typeless:            vk.FormatBc5UnormBlock,
	metadata.FormatBC5Unorm:               vk.FormatBc5UnormBlock,
	metadata.FormatBC5Snorm:               vk.FormatBc5SnormBlock,
	metadata.FormatB5G6R5Unorm:            vk.FormatB5g6r5UnormPack16,
	metadata.FormatB5G5R5A1Unorm:          vk.FormatB5g5r5a1UnormPack16,
	metadata.FormatB8G8R8A8Unorm:          vk.FormatB8g8r8a8Unorm,
	metadata.FormatB8G8R8X8Unorm:          vk.FormatB8g8r8a8Unorm,
	metadata.FormatB8G8R8A8Typeless:       vk.FormatB8g8r8a8Unorm,
	metadata.FormatB8G8R8A8UnormSrgb:      vk.FormatB8g8r8a8Srgb,
	metadata.FormatB8G8R8X8Typeless:       vk.FormatB8g8r8a8Unorm,
	metadata.FormatB8G8R8X8UnormSrgb:      vk.FormatB8g8r8a8Srgb,
	metadata.FormatBC6HTypeless:           vk.FormatBc6hUfloatBlock,
	metadata.FormatBC6HUF16:               vk.FormatBc6hUfloatBlock,
	metadata.FormatBC6HSF16:               vk.FormatBc6hSfloatBlock,
	metadata.FormatBC7Typeless:            vk.FormatBc7UnormBlock,
	metadata.FormatBC7Unorm:               vk.FormatBc7UnormBlock,
	metadata.FormatBC7UnormSrgb:           vk.FormatBc7SrgbBlock,
	metadata.FormatB4G4R4A4Unorm:          vk.FormatB4g4r4a4UnormPack16,
	metadata.FormatR10G10B10XRBiasA2Unorm: vk.FormatA2b10g10r10UnormPack32,
}

// convertFormat returns vk.FormatUndefined for formats with no native match.
func convertFormat(value metadata.Format) vk.Format {
	if f, ok := formats[value]; ok {
		return f
	}
	return vk.FormatUndefined
}

func convertComparisonFunc(value metadata.ComparisonFunc) vk.CompareOp {
	switch value {
	case metadata.ComparisonNever:
		return vk.CompareOpNever
	case metadata.ComparisonLess:
		return vk.CompareOpLess
	case metadata.ComparisonEqual:
		return vk.CompareOpEqual
	case metadata.ComparisonLessEqual:
		return vk.CompareOpLessOrEqual
	case metadata.ComparisonGreater:
		return vk.CompareOpGreater
	case metadata.ComparisonNotEqual:
		return vk.CompareOpNotEqual
	case metadata.ComparisonGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	case metadata.ComparisonAlways:
		return vk.CompareOpAlways
	}
	return vk.CompareOpNever
}

func convertBlend(value metadata.Blend) vk.BlendFactor {
	switch value {
	case metadata.BlendZero:
		return vk.BlendFactorZero
	case metadata.BlendOne:
		return vk.BlendFactorOne
	case metadata.BlendSrcColor:
		return vk.BlendFactorSrcColor
	case metadata.BlendInvSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case metadata.BlendSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case metadata.BlendInvSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case metadata.BlendDestAlpha:
		return vk.BlendFactorDstAlpha
	case metadata.BlendInvDestAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	case metadata.BlendDestColor:
		return vk.BlendFactorDstColor
	case metadata.BlendInvDestColor:
		return vk.BlendFactorOneMinusDstColor
	case metadata.BlendSrcAlphaSat:
		return vk.BlendFactorSrcAlphaSaturate
	case metadata.BlendBlendFactor:
		return vk.BlendFactorConstantColor
	case metadata.BlendInvBlendFactor:
		return vk.BlendFactorOneMinusConstantColor
	case metadata.BlendSrc1Color:
		return vk.BlendFactorSrc1Color
	case metadata.BlendInvSrc1Color:
		return vk.BlendFactorOneMinusSrc1Color
	case metadata.BlendSrc1Alpha:
		return vk.BlendFactorSrc1Alpha
	case metadata.BlendInvSrc1Alpha:
		return vk.BlendFactorOneMinusSrc1Alpha
	}
	return vk.BlendFactorZero
}

func convertBlendOp(value metadata.BlendOp) vk.BlendOp {
	switch value {
	case metadata.BlendOpAdd:
		return vk.BlendOpAdd
	case metadata.BlendOpSubtract:
		return vk.BlendOpSubtract
	case metadata.BlendOpRevSubtract:
		return vk.BlendOpReverseSubtract
	case metadata.BlendOpMin:
		return vk.BlendOpMin
	case metadata.BlendOpMax:
		return vk.BlendOpMax
	}
	return vk.BlendOpAdd
}

func convertTextureAddressMode(value metadata.TextureAddressMode) vk.SamplerAddressMode {
	switch value {
	case metadata.TextureAddressWrap:
		return vk.SamplerAddressModeRepeat
	case metadata.TextureAddressMirror:
		return vk.SamplerAddressModeMirroredRepeat
	case metadata.TextureAddressClamp:
		return vk.SamplerAddressModeClampToEdge
	case metadata.TextureAddressBorder:
		return vk.SamplerAddressModeClampToBorder
	case metadata.TextureAddressMirrorOnce:
		return vk.SamplerAddressModeMirrorClampToEdge
	}
	return vk.SamplerAddressModeClampToEdge
}

type samplerFilter struct {
	min, mag   vk.Filter
	mip        vk.SamplerMipmapMode
	anisotropy bool
	compare    bool
}

func convertFilter(value metadata.Filter) samplerFilter {
	n, l := vk.FilterNearest, vk.FilterLinear
	mn, ml := vk.SamplerMipmapModeNearest, vk.SamplerMipmapModeLinear

	switch value {
	case metadata.FilterMinMagMipPoint:
		return samplerFilter{min: n, mag: n, mip: mn}
	case metadata.FilterMinMagPointMipLinear:
		return samplerFilter{min: n, mag: n, mip: ml}
	case metadata.FilterMinPointMagLinearMipPoint:
		return samplerFilter{min: n, mag: l, mip: mn}
	case metadata.FilterMinPointMagMipLinear:
		return samplerFilter{min: n, mag: l, mip: ml}
	case metadata.FilterMinLinearMagMipPoint:
		return samplerFilter{min: l, mag: n, mip: mn}
	case metadata.FilterMinLinearMagPointMipLinear:
		return samplerFilter{min: l, mag: n, mip: ml}
	case metadata.FilterMinMagLinearMipPoint:
		return samplerFilter{min: l, mag: l, mip: mn}
	case metadata.FilterMinMagMipLinear:
		return samplerFilter{min: l, mag: l, mip: ml}
	case metadata.FilterAnisotropic:
		return samplerFilter{min: l, mag: l, mip: ml, anisotropy: true}
	case metadata.FilterComparisonMinMagMipPoint:
		return samplerFilter{min: n, mag: n, mip: mn, compare: true}
	case metadata.FilterComparisonMinMagPointMipLinear:
		return samplerFilter{min: n, mag: n, mip: ml, compare: true}
	case metadata.FilterComparisonMinPointMagLinearMipPoint:
		return samplerFilter{min: n, mag: l, mip: mn, compare: true}
	case metadata.FilterComparisonMinPointMagMipLinear:
		return samplerFilter{min: n, mag: l, mip: ml, compare: true}
	case metadata.FilterComparisonMinLinearMagMipPoint:
		return samplerFilter{min: l, mag: n, mip: mn, compare: true}
	case metadata.FilterComparisonMinLinearMagPointMipLinear:
		return samplerFilter{min: l, mag: n, mip: ml, compare: true}
	case metadata.FilterComparisonMinMagLinearMipPoint:
		return samplerFilter{min: l, mag: l, mip: mn, compare: true}
	case metadata.FilterComparisonMinMagMipLinear:
		return samplerFilter{min: l, mag: l, mip: ml, compare: true}
	case metadata.FilterComparisonAnisotropic:
		return samplerFilter{min: l, mag: l, mip: ml, anisotropy: true, compare: true}
	}
	// minimum/maximum reductions need an extension
	return samplerFilter{min: n, mag: n, mip: mn}
}

func convertPrimitiveTopology(value metadata.PrimitiveTopology) vk.PrimitiveTopology {
	switch value {
	case metadata.PrimitivePointList:
		return vk.PrimitiveTopologyPointList
	case metadata.PrimitiveLineList:
		return vk.PrimitiveTopologyLineList
	case metadata.PrimitiveTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case metadata.PrimitivePatchList:
		return vk.PrimitiveTopologyPatchList
	}
	return vk.PrimitiveTopologyTriangleList
}

func convertFillMode(value metadata.FillMode) vk.PolygonMode {
	if value == metadata.FillWireframe {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

func convertCullMode(value metadata.CullMode) vk.CullModeFlags {
	switch value {
	case metadata.CullBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	case metadata.CullFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

func convertColorWriteMask(value metadata.ColorWrite) vk.ColorComponentFlags {
	var mask vk.ColorComponentFlagBits
	if value&metadata.ColorWriteRed != 0 {
		mask |= vk.ColorComponentRBit
	}
	if value&metadata.ColorWriteGreen != 0 {
		mask |= vk.ColorComponentGBit
	}
	if value&metadata.ColorWriteBlue != 0 {
		mask |= vk.ColorComponentBBit
	}
	if value&metadata.ColorWriteAlpha != 0 {
		mask |= vk.ColorComponentABit
	}
	return vk.ColorComponentFlags(mask)
}

func convertInputRate(value metadata.InputClassification) vk.VertexInputRate {
	if value == metadata.InputPerInstanceData {
		return vk.VertexInputRateInstance
	}
	return vk.VertexInputRateVertex
}

func convertIndexType(value metadata.IndexBufferFormat) vk.IndexType {
	if value == metadata.IndexFormat32Bit {
		return vk.IndexTypeUint32
	}
	return vk.IndexTypeUint16
}

func convertStencilOp(value metadata.StencilOp) vk.StencilOp {
	switch value {
	case metadata.StencilOpZero:
		return vk.StencilOpZero
	case metadata.StencilOpReplace:
		return vk.StencilOpReplace
	case metadata.StencilOpIncrSat:
		return vk.StencilOpIncrementAndClamp
	case metadata.StencilOpDecrSat:
		return vk.StencilOpDecrementAndClamp
	case metadata.StencilOpInvert:
		return vk.StencilOpInvert
	case metadata.StencilOpIncr:
		return vk.StencilOpIncrementAndWrap
	case metadata.StencilOpDecr:
		return vk.StencilOpDecrementAndWrap
	}
	return vk.StencilOpKeep
}

// formatStride resolves AppendAlignedElement offsets in vertex layouts.
func formatStride(value metadata.Format) uint32 {
	return metadata.FormatStride(value)
}
