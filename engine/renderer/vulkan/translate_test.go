package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

func TestConvertFormat(t *testing.T) {
	require.Equal(t, vk.FormatR8g8b8a8Unorm, convertFormat(metadata.FormatR8G8B8A8Unorm))
	require.Equal(t, vk.FormatR32g32b32a32Sfloat, convertFormat(metadata.FormatR32G32B32A32Float))
	require.Equal(t, vk.FormatD32Sfloat, convertFormat(metadata.FormatD32Float))
	require.Equal(t, vk.FormatUndefined, convertFormat(metadata.FormatUnknown))
	require.Equal(t, vk.FormatUndefined, convertFormat(metadata.FormatR1Unorm))
}

func TestConvertStateEnums(t *testing.T) {
	require.Equal(t, vk.CompareOpLessOrEqual, convertComparisonFunc(metadata.ComparisonLessEqual))
	require.Equal(t, vk.CompareOpNever, convertComparisonFunc(0))

	require.Equal(t, vk.BlendFactorConstantColor, convertBlend(metadata.BlendBlendFactor))
	require.Equal(t, vk.BlendFactorOneMinusConstantColor, convertBlend(metadata.BlendInvBlendFactor))
	require.Equal(t, vk.BlendFactorZero, convertBlend(0))

	require.Equal(t, vk.BlendOpReverseSubtract, convertBlendOp(metadata.BlendOpRevSubtract))
	require.Equal(t, vk.BlendOpAdd, convertBlendOp(0))

	require.Equal(t, vk.SamplerAddressModeMirrorClampToEdge, convertTextureAddressMode(metadata.TextureAddressMirrorOnce))
	require.Equal(t, vk.SamplerAddressModeClampToEdge, convertTextureAddressMode(0))

	require.Equal(t, vk.IndexTypeUint32, convertIndexType(metadata.IndexFormat32Bit))
	require.Equal(t, vk.PolygonModeLine, convertFillMode(metadata.FillWireframe))
	require.Equal(t, vk.PrimitiveTopologyTriangleList, convertPrimitiveTopology(metadata.PrimitiveUndefined))
}

func TestConvertFilter(t *testing.T) {
	f := convertFilter(metadata.FilterMinPointMagLinearMipPoint)
	require.Equal(t, vk.FilterNearest, f.min)
	require.Equal(t, vk.FilterLinear, f.mag)
	require.Equal(t, vk.SamplerMipmapModeNearest, f.mip)
	require.False(t, f.anisotropy)

	f = convertFilter(metadata.FilterComparisonAnisotropic)
	require.True(t, f.anisotropy)
	require.True(t, f.compare)

	f = convertFilter(metadata.FilterMaximumMinMagMipLinear)
	require.Equal(t, samplerFilter{min: vk.FilterNearest, mag: vk.FilterNearest, mip: vk.SamplerMipmapModeNearest}, f)
}

func TestConvertColorWriteMask(t *testing.T) {
	all := vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
	require.Equal(t, all, convertColorWriteMask(metadata.ColorWriteAll))
	require.Equal(t, vk.ColorComponentFlags(0), convertColorWriteMask(metadata.ColorWriteDisable))
}
