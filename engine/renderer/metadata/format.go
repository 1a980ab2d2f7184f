package metadata

// Format enumerates engine pixel and vertex formats. The ordering follows the
// legacy immediate-context API so values can be passed through unchanged there.
type Format uint32

const (
	FormatUnknown Format = iota
	FormatR32G32B32A32Typeless
	FormatR32G32B32A32Float
	FormatR32G32B32A32Uint
	FormatR32G32B32A32Sint
	FormatR32G32B32Typeless
	FormatR32G32B32Float
	FormatR32G32B32Uint
	FormatR32G32B32Sint
	FormatR16G16B16A16Typeless
	FormatR16G16B16A16Float
	FormatR16G16B16A16Unorm
	FormatR16G16B16A16Uint
	FormatR16G16B16A16Snorm
	FormatR16G16B16A16Sint
	FormatR32G32Typeless
	FormatR32G32Float
	FormatR32G32Uint
	FormatR32G32Sint
	FormatR32G8X24Typeless
	FormatD32FloatS8X24Uint
	FormatR32FloatX8X24Typeless
	FormatX32TypelessG8X24Uint
	FormatR10G10B10A2Typeless
	FormatR10G10B10A2Unorm
	FormatR10G10B10A2Uint
	FormatR11G11B10Float
	FormatR8G8B8A8Typeless
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8UnormSrgb
	FormatR8G8B8A8Uint
	FormatR8G8B8A8Snorm
	FormatR8G8B8A8Sint
	FormatR16G16Typeless
	FormatR16G16Float
	FormatR16G16Unorm
	FormatR16G16Uint
	FormatR16G16Snorm
	FormatR16G16Sint
	FormatR32Typeless
	FormatD32Float
	FormatR32Float
	FormatR32Uint
	FormatR32Sint
	FormatR24G8Typeless
	FormatD24UnormS8Uint
	FormatR24UnormX8Typeless
	FormatX24TypelessG8Uint
	FormatR8G8Typeless
	FormatR8G8Unorm
	FormatR8G8Uint
	FormatR8G8Snorm
	FormatR8G8Sint
	FormatR16Typeless
	FormatR16Float
	FormatD16Unorm
	FormatR16Unorm
	FormatR16Uint
	FormatR16Snorm
	FormatR16Sint
	FormatR8Typeless
	FormatR8Unorm
	FormatR8Uint
	FormatR8Snorm
	FormatR8Sint
	FormatA8Unorm
	FormatR1Unorm
	FormatR9G9B9E5SharedExp
	FormatR8G8B8G8Unorm
	FormatG8R8G8B8Unorm
	FormatBC1Typeless
	FormatBC1Unorm
	FormatBC1UnormSrgb
	FormatBC2Typeless
	FormatBC2Unorm
	FormatBC2UnormSrgb
	FormatBC3Typeless
	FormatBC3Unorm
	FormatBC3UnormSrgb
	FormatBC4Typeless
	FormatBC4Unorm
	FormatBC4Snorm
	FormatBC5Typeless
	FormatBC5Unorm
	FormatBC5Snorm
	FormatB5G6R5Unorm
	FormatB5G5R5A1Unorm
	FormatB8G8R8A8Unorm
	FormatB8G8R8X8Unorm
	FormatR10G10B10XRBiasA2Unorm
	FormatB8G8R8A8Typeless
	FormatB8G8R8A8UnormSrgb
	FormatB8G8R8X8Typeless
	FormatB8G8R8X8UnormSrgb
	FormatBC6HTypeless
	FormatBC6HUF16
	FormatBC6HSF16
	FormatBC7Typeless
	FormatBC7Unorm
	FormatBC7UnormSrgb
	FormatB4G4R4A4Unorm
)

// FormatStride returns the size in bytes of one element of the format. Block
// compressed formats report the size of one 4x4 block.
func FormatStride(f Format) uint32 {
	switch f {
	case FormatR32G32B32A32Typeless, FormatR32G32B32A32Float, FormatR32G32B32A32Uint, FormatR32G32B32A32Sint,
		FormatBC2Typeless, FormatBC2Unorm, FormatBC2UnormSrgb,
		FormatBC3Typeless, FormatBC3Unorm, FormatBC3UnormSrgb,
		FormatBC5Typeless, FormatBC5Unorm, FormatBC5Snorm,
		FormatBC6HTypeless, FormatBC6HUF16, FormatBC6HSF16,
		FormatBC7Typeless, FormatBC7Unorm, FormatBC7UnormSrgb:
		return 16
	case FormatR32G32B32Typeless, FormatR32G32B32Float, FormatR32G32B32Uint, FormatR32G32B32Sint:
		return 12
	case FormatR16G16B16A16Typeless, FormatR16G16B16A16Float, FormatR16G16B16A16Unorm, FormatR16G16B16A16Uint,
		FormatR16G16B16A16Snorm, FormatR16G16B16A16Sint,
		FormatR32G32Typeless, FormatR32G32Float, FormatR32G32Uint, FormatR32G32Sint,
		FormatR32G8X24Typeless, FormatD32FloatS8X24Uint, FormatR32FloatX8X24Typeless, FormatX32TypelessG8X24Uint,
		FormatBC1Typeless, FormatBC1Unorm, FormatBC1UnormSrgb,
		FormatBC4Typeless, FormatBC4Unorm, FormatBC4Snorm:
		return 8
	case FormatR10G10B10A2Typeless, FormatR10G10B10A2Unorm, FormatR10G10B10A2Uint, FormatR11G11B10Float,
		FormatR8G8B8A8Typeless, FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSrgb, FormatR8G8B8A8Uint,
		FormatR8G8B8A8Snorm, FormatR8G8B8A8Sint,
		FormatR16G16Typeless, FormatR16G16Float, FormatR16G16Unorm, FormatR16G16Uint, FormatR16G16Snorm, FormatR16G16Sint,
		FormatR32Typeless, FormatD32Float, FormatR32Float, FormatR32Uint, FormatR32Sint,
		FormatR24G8Typeless, FormatD24UnormS8Uint, FormatR24UnormX8Typeless, FormatX24TypelessG8Uint,
		FormatR9G9B9E5SharedExp, FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm,
		FormatB8G8R8A8Unorm, FormatB8G8R8X8Unorm, FormatR10G10B10XRBiasA2Unorm,
		FormatB8G8R8A8Typeless, FormatB8G8R8A8UnormSrgb, FormatB8G8R8X8Typeless, FormatB8G8R8X8UnormSrgb:
		return 4
	case FormatR8G8Typeless, FormatR8G8Unorm, FormatR8G8Uint, FormatR8G8Snorm, FormatR8G8Sint,
		FormatR16Typeless, FormatR16Float, FormatD16Unorm, FormatR16Unorm, FormatR16Uint, FormatR16Snorm, FormatR16Sint,
		FormatB5G6R5Unorm, FormatB5G5R5A1Unorm, FormatB4G4R4A4Unorm:
		return 2
	case FormatR8Typeless, FormatR8Unorm, FormatR8Uint, FormatR8Snorm, FormatR8Sint, FormatA8Unorm, FormatR1Unorm:
		return 1
	}
	return 16
}

// IsDepthStencilFormat reports whether the format can only be bound as a depth target.
func IsDepthStencilFormat(f Format) bool {
	switch f {
	case FormatD32FloatS8X24Uint, FormatD32Float, FormatD24UnormS8Uint, FormatD16Unorm:
		return true
	}
	return false
}
