package metadata

type SampleDesc struct {
	Count   uint32
	Quality uint32
}

/** @brief Describes a GPU buffer at creation time. */
type GPUBufferDesc struct {
	/** @brief Size of the buffer in bytes. */
	ByteWidth uint32
	Usage     Usage
	BindFlags BindFlag
	/** @brief CPU access requested for the buffer. Dynamic ring buffers require CPUAccessWrite. */
	CPUAccessFlags      CPUAccessFlag
	MiscFlags           ResourceMiscFlag
	StructureByteStride uint32
	/** @brief FormatUnknown for raw/structured buffers, anything else makes the buffer typed. */
	Format Format
}

/** @brief Describes a texture at creation time. */
type TextureDesc struct {
	Width  uint32
	Height uint32
	Depth  uint32
	/** @brief Number of array slices. Cubemaps use 6 slices per cube. */
	ArraySize uint32
	/** @brief 0 requests the full mip chain. */
	MipLevels      uint32
	Format         Format
	SampleDesc     SampleDesc
	Usage          Usage
	BindFlags      BindFlag
	CPUAccessFlags CPUAccessFlag
	MiscFlags      ResourceMiscFlag
}

/** @brief Initial contents of one subresource (one mip of one array slice). */
type SubresourceData struct {
	SysMem           []byte
	SysMemPitch      uint32
	SysMemSlicePitch uint32
}

type SamplerDesc struct {
	Filter         Filter
	AddressU       TextureAddressMode
	AddressV       TextureAddressMode
	AddressW       TextureAddressMode
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc ComparisonFunc
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}

type RenderTargetBlendStateDesc struct {
	BlendEnable           bool
	SrcBlend              Blend
	DestBlend             Blend
	BlendOp               BlendOp
	SrcBlendAlpha         Blend
	DestBlendAlpha        Blend
	BlendOpAlpha          BlendOp
	RenderTargetWriteMask ColorWrite
}

// DefaultRenderTargetBlendStateDesc is opaque writing of all channels.
func DefaultRenderTargetBlendStateDesc() RenderTargetBlendStateDesc {
	return RenderTargetBlendStateDesc{
		BlendEnable:           false,
		SrcBlend:              BlendSrcAlpha,
		DestBlend:             BlendInvSrcAlpha,
		BlendOp:               BlendOpAdd,
		SrcBlendAlpha:         BlendOne,
		DestBlendAlpha:        BlendOne,
		BlendOpAlpha:          BlendOpAdd,
		RenderTargetWriteMask: ColorWriteAll,
	}
}

type BlendStateDesc struct {
	AlphaToCoverageEnable  bool
	IndependentBlendEnable bool
	RenderTarget           [8]RenderTargetBlendStateDesc
}

type DepthStencilOpDesc struct {
	StencilFailOp      StencilOp
	StencilDepthFailOp StencilOp
	StencilPassOp      StencilOp
	StencilFunc        ComparisonFunc
}

type DepthStencilStateDesc struct {
	DepthEnable      bool
	DepthWriteMask   DepthWriteMask
	DepthFunc        ComparisonFunc
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        DepthStencilOpDesc
	BackFace         DepthStencilOpDesc
}

type RasterizerStateDesc struct {
	FillMode              FillMode
	CullMode              CullMode
	FrontCounterClockwise bool
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       bool
	MultisampleEnable     bool
	AntialiasedLineEnable bool
}

type VertexLayoutDesc struct {
	SemanticName         string
	SemanticIndex        uint32
	Format               Format
	InputSlot            uint32
	AlignedByteOffset    uint32
	InputSlotClass       InputClassification
	InstanceDataStepRate uint32
}

/** @brief Everything needed to build a graphics pipeline and its render pass. */
type GraphicsPSODesc struct {
	VS  *Shader
	HS  *Shader
	DS  *Shader
	GS  *Shader
	PS  *Shader
	BS  *BlendState
	RS  *RasterizerState
	DSS *DepthStencilState
	IL  *InputLayout
	PT  PrimitiveTopology
	/** @brief Number of color render targets, at most 8. */
	NumRTs     uint32
	RTFormats  [8]Format
	DSFormat   Format
	SampleDesc SampleDesc
	SampleMask uint32
}

type ComputePSODesc struct {
	CS *Shader
}

type ViewPort struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}
