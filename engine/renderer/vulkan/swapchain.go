package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	anvilmath "github.com/spaghettifunk/anvil/engine/math"
)

// BACKBUFFER_COUNT is the depth of the frame ring and the swapchain image count.
const BACKBUFFER_COUNT = 2

type swapchain struct {
	Handle vk.Swapchain
	Format vk.SurfaceFormat
	Extent vk.Extent2D
	Images []vk.Image
}

func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers MAILBOX, then IMMEDIATE. FIFO is always available and is used for vsync.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	best := vk.PresentModeFifo
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
		if mode == vk.PresentModeImmediate {
			best = mode
		}
	}
	return best
}

func chooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  anvilmath.Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: anvilmath.Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func createSwapchain(device vk.Device, surface vk.Surface, families QueueFamilies, support *swapchainSupportInfo, width, height uint32, vsync bool) (*swapchain, error) {
	sc := &swapchain{
		Format: chooseSurfaceFormat(support.Formats),
		Extent: chooseExtent(support.Capabilities, width, height),
	}

	imageCount := anvilmath.Max(uint32(BACKBUFFER_COUNT), support.Capabilities.MinImageCount)
	if support.Capabilities.MaxImageCount > 0 && imageCount > support.Capabilities.MaxImageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      sc.Format.Format,
		ImageColorSpace:  sc.Format.ColorSpace,
		ImageExtent:      sc.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      choosePresentMode(support.PresentModes, vsync),
		Clipped:          vk.True,
	}
	if families.Graphics != families.Present {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{families.Graphics, families.Present}
	}

	if res := vk.CreateSwapchain(device, &createInfo, nil, &sc.Handle); res != vk.Success {
		return nil, resultError("vkCreateSwapchainKHR", res)
	}

	var count uint32
	if res := vk.GetSwapchainImages(device, sc.Handle, &count, nil); res != vk.Success {
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}
	sc.Images = make([]vk.Image, count)
	if res := vk.GetSwapchainImages(device, sc.Handle, &count, sc.Images); res != vk.Success {
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}
	core.LogInfo("Swapchain created successfully (%dx%d).", sc.Extent.Width, sc.Extent.Height)
	return sc, nil
}

func (sc *swapchain) destroy(device vk.Device) {
	if sc.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, sc.Handle, nil)
		sc.Handle = vk.NullSwapchain
	}
}
