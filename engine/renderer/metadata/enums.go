package metadata

type ShaderStage uint8

const (
	ShaderStageVS ShaderStage = iota
	ShaderStageHS
	ShaderStageDS
	ShaderStageGS
	ShaderStagePS
	ShaderStageCS
	ShaderStageCount
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVS:
		return "VS"
	case ShaderStageHS:
		return "HS"
	case ShaderStageDS:
		return "DS"
	case ShaderStageGS:
		return "GS"
	case ShaderStagePS:
		return "PS"
	case ShaderStageCS:
		return "CS"
	}
	return "unknown"
}

/** @brief Identifies an independent command recording stream. */
type GraphicsThread uint8

const (
	GraphicsThreadImmediate GraphicsThread = iota
	GraphicsThreadReflections
	GraphicsThreadScene
	GraphicsThreadMisc1
	GraphicsThreadMisc2
	GraphicsThreadMisc3
	GraphicsThreadCount
)

type BindFlag uint32

const (
	BindVertexBuffer    BindFlag = 0x1
	BindIndexBuffer     BindFlag = 0x2
	BindConstantBuffer  BindFlag = 0x4
	BindShaderResource  BindFlag = 0x8
	BindStreamOutput    BindFlag = 0x10
	BindRenderTarget    BindFlag = 0x20
	BindDepthStencil    BindFlag = 0x40
	BindUnorderedAccess BindFlag = 0x80
)

type Usage uint8

const (
	UsageDefault Usage = iota
	UsageImmutable
	UsageDynamic
	UsageStaging
)

type CPUAccessFlag uint32

const (
	CPUAccessWrite CPUAccessFlag = 0x10000
	CPUAccessRead  CPUAccessFlag = 0x20000
)

type ResourceMiscFlag uint32

const (
	ResourceMiscShared              ResourceMiscFlag = 0x1
	ResourceMiscTextureCube         ResourceMiscFlag = 0x4
	ResourceMiscDrawIndirectArgs    ResourceMiscFlag = 0x10
	ResourceMiscBufferAllowRawViews ResourceMiscFlag = 0x20
	ResourceMiscBufferStructured    ResourceMiscFlag = 0x40
	ResourceMiscTiled               ResourceMiscFlag = 0x40000
)

type ComparisonFunc uint8

const (
	ComparisonNever ComparisonFunc = iota + 1
	ComparisonLess
	ComparisonEqual
	ComparisonLessEqual
	ComparisonGreater
	ComparisonNotEqual
	ComparisonGreaterEqual
	ComparisonAlways
)

type DepthWriteMask uint8

const (
	DepthWriteMaskZero DepthWriteMask = iota
	DepthWriteMaskAll
)

type StencilOp uint8

const (
	StencilOpKeep StencilOp = iota + 1
	StencilOpZero
	StencilOpReplace
	StencilOpIncrSat
	StencilOpDecrSat
	StencilOpInvert
	StencilOpIncr
	StencilOpDecr
)

type Blend uint8

const (
	BlendZero Blend = iota + 1
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
	BlendSrcAlphaSat
	BlendBlendFactor
	BlendInvBlendFactor
	BlendSrc1Color
	BlendInvSrc1Color
	BlendSrc1Alpha
	BlendInvSrc1Alpha
)

type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota + 1
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

type ColorWrite uint8

const (
	ColorWriteDisable ColorWrite = 0
	ColorWriteRed     ColorWrite = 1
	ColorWriteGreen   ColorWrite = 2
	ColorWriteBlue    ColorWrite = 4
	ColorWriteAlpha   ColorWrite = 8
	ColorWriteAll     ColorWrite = ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha
)

type FillMode uint8

const (
	FillWireframe FillMode = iota
	FillSolid
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type Filter uint8

const (
	FilterMinMagMipPoint Filter = iota
	FilterMinMagPointMipLinear
	FilterMinPointMagLinearMipPoint
	FilterMinPointMagMipLinear
	FilterMinLinearMagMipPoint
	FilterMinLinearMagPointMipLinear
	FilterMinMagLinearMipPoint
	FilterMinMagMipLinear
	FilterAnisotropic
	FilterComparisonMinMagMipPoint
	FilterComparisonMinMagPointMipLinear
	FilterComparisonMinPointMagLinearMipPoint
	FilterComparisonMinPointMagMipLinear
	FilterComparisonMinLinearMagMipPoint
	FilterComparisonMinLinearMagPointMipLinear
	FilterComparisonMinMagLinearMipPoint
	FilterComparisonMinMagMipLinear
	FilterComparisonAnisotropic
	FilterMinimumMinMagMipPoint
	FilterMinimumMinMagMipLinear
	FilterMinimumAnisotropic
	FilterMaximumMinMagMipPoint
	FilterMaximumMinMagMipLinear
	FilterMaximumAnisotropic
)

type TextureAddressMode uint8

const (
	TextureAddressWrap TextureAddressMode = iota + 1
	TextureAddressMirror
	TextureAddressClamp
	TextureAddressBorder
	TextureAddressMirrorOnce
)

type PrimitiveTopology uint8

const (
	PrimitiveUndefined PrimitiveTopology = iota
	PrimitiveTriangleList
	PrimitiveTriangleStrip
	PrimitivePointList
	PrimitiveLineList
	PrimitivePatchList
)

type InputClassification uint8

const (
	InputPerVertexData InputClassification = iota
	InputPerInstanceData
)

// AppendAlignedElement asks the layout builder to place the attribute right after the previous one.
const AppendAlignedElement uint32 = 0xffffffff

type IndexBufferFormat uint8

const (
	IndexFormat16Bit IndexBufferFormat = iota
	IndexFormat32Bit
)

type ClearFlag uint32

const (
	ClearDepth   ClearFlag = 0x1
	ClearStencil ClearFlag = 0x2
)

type ResourceState uint32

const (
	ResourceStateCommon                  ResourceState = 0
	ResourceStateVertexAndConstantBuffer ResourceState = 0x1
	ResourceStateIndexBuffer             ResourceState = 0x2
	ResourceStateRenderTarget            ResourceState = 0x4
	ResourceStateUnorderedAccess         ResourceState = 0x8
	ResourceStateDepthWrite              ResourceState = 0x10
	ResourceStateDepthRead               ResourceState = 0x20
	ResourceStateNonPixelShaderResource  ResourceState = 0x40
	ResourceStatePixelShaderResource     ResourceState = 0x80
	ResourceStateIndirectArgument        ResourceState = 0x200
	ResourceStateCopyDest                ResourceState = 0x400
	ResourceStateCopySource              ResourceState = 0x800
	ResourceStateGenericRead             ResourceState = 0x1 | 0x2 | 0x40 | 0x80 | 0x200 | 0x800
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
)

func (r RendererType) String() string {
	switch r {
	case Vulkan:
		return "vulkan"
	case DirectX:
		return "directx"
	}
	return "unknown"
}

// ParseRendererType maps a config value to a backend. Unknown names resolve to Vulkan.
func ParseRendererType(name string) (RendererType, bool) {
	switch name {
	case "vulkan", "":
		return Vulkan, true
	case "directx", "dx11":
		return DirectX, true
	}
	return Vulkan, false
}
