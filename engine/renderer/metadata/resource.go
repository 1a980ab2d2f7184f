package metadata

import "github.com/google/uuid"

/** @brief Resolved once at creation time so binding never has to inspect concrete types. */
type ResourceKind uint8

const (
	ResourceKindUnknown ResourceKind = iota
	ResourceKindBuffer
	ResourceKindTypedBuffer
	ResourceKindTexture
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindBuffer:
		return "buffer"
	case ResourceKindTypedBuffer:
		return "typed_buffer"
	case ResourceKindTexture:
		return "texture"
	}
	return "unknown"
}

/**
 * @brief The engine-facing half of every GPU resource. The backend stores its
 * native handles in InternalData.
 */
type GPUResource struct {
	/** @brief Stable identity used for descriptor de-duplication. */
	ID   uuid.UUID
	Kind ResourceKind
	/** @brief Backend-specific data. */
	InternalData interface{}
}

// IsValid reports whether a backend has created native storage for the resource.
func (r *GPUResource) IsValid() bool {
	return r != nil && r.InternalData != nil
}

// Resource exposes the shared header of buffers and textures.
func (r *GPUResource) Resource() *GPUResource {
	return r
}

// Resourcer is satisfied by every type embedding GPUResource.
type Resourcer interface {
	Resource() *GPUResource
}

type GPUBuffer struct {
	GPUResource
	Desc GPUBufferDesc
}

/** @brief A dynamic buffer that is sub-allocated front to back and wraps once per frame. */
type GPURingBuffer struct {
	GPUBuffer
	/** @brief Current write position in bytes. */
	ByteOffset uint64
	/** @brief Frame in which ByteOffset was last advanced. */
	ResidentFrame uint64
}

type Texture struct {
	GPUResource
	Desc TextureDesc

	RequestIndependentRenderTargetArraySlices         bool
	RequestIndependentRenderTargetCubemaps            bool
	RequestIndependentShaderResourceArraySlices       bool
	RequestIndependentShaderResourcesForMIPs          bool
	RequestIndependentUnorderedAccessResourcesForMIPs bool
}

type Texture2D struct {
	Texture
}

type Sampler struct {
	ID           uuid.UUID
	Desc         SamplerDesc
	InternalData interface{}
}

type Shader struct {
	Stage        ShaderStage
	Code         []byte
	InternalData interface{}
}

type BlendState struct {
	Desc BlendStateDesc
}

type DepthStencilState struct {
	Desc DepthStencilStateDesc
}

type RasterizerState struct {
	Desc RasterizerStateDesc
}

type InputLayout struct {
	Desc []VertexLayoutDesc
}

type GraphicsPSO struct {
	Desc         GraphicsPSODesc
	InternalData interface{}
}

type ComputePSO struct {
	Desc         ComputePSODesc
	InternalData interface{}
}

type GPUQueryType uint8

const (
	GPUQueryTypeEvent GPUQueryType = iota
	GPUQueryTypeOcclusion
	GPUQueryTypeOcclusionPredicate
	GPUQueryTypeTimestamp
	GPUQueryTypeTimestampDisjoint
)

type GPUQuery struct {
	Type GPUQueryType
	/** @brief Filled by a successful QueryRead. */
	Result       uint64
	InternalData interface{}
}
