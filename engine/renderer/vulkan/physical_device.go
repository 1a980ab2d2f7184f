package vulkan

import (
	"runtime"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
)

type swapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

type physicalDeviceRequirements struct {
	DeviceExtensionNames []string
	SamplerAnisotropy    bool
}

// selectPhysicalDevice picks the first device with graphics, present and copy
// queues plus a usable swapchain.
func selectPhysicalDevice(instance vk.Instance, surface vk.Surface) (vk.PhysicalDevice, QueueFamilies, *swapchainSupportInfo, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance, &count, nil); res != vk.Success {
		return nil, QueueFamilies{}, nil, resultError("vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return nil, QueueFamilies{}, nil, errors.Wrap(core.ErrNoSuitableDevice, "no devices which support Vulkan were found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance, &count, devices); res != vk.Success {
		return nil, QueueFamilies{}, nil, resultError("vkEnumeratePhysicalDevices", res)
	}

	requirements := physicalDeviceRequirements{
		DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
		SamplerAnisotropy:    runtime.GOOS != "darwin",
	}

	for _, device := range devices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(device, &properties)
		properties.Deref()

		var features vk.PhysicalDeviceFeatures
		vk.GetPhysicalDeviceFeatures(device, &features)
		features.Deref()

		families, ok := findQueueFamilies(device, surface)
		if !ok {
			core.LogInfo("Device '%s' lacks a graphics or present queue, skipping.", vk.ToString(properties.DeviceName[:]))
			continue
		}
		support, err := querySwapchainSupport(device, surface)
		if err != nil {
			return nil, QueueFamilies{}, nil, err
		}
		if len(support.Formats) < 1 || len(support.PresentModes) < 1 {
			core.LogInfo("Required swapchain support not present, skipping device.")
			continue
		}
		if !hasDeviceExtensions(device, requirements.DeviceExtensionNames) {
			continue
		}
		if requirements.SamplerAnisotropy && features.SamplerAnisotropy == vk.False {
			core.LogInfo("Device does not support samplerAnisotropy, skipping.")
			continue
		}

		core.LogInfo("Selected device: '%s'.", vk.ToString(properties.DeviceName[:]))
		switch properties.DeviceType {
		case vk.PhysicalDeviceTypeIntegratedGpu:
			core.LogInfo("GPU type is Integrated.")
		case vk.PhysicalDeviceTypeDiscreteGpu:
			core.LogInfo("GPU type is Discrete.")
		case vk.PhysicalDeviceTypeVirtualGpu:
			core.LogInfo("GPU type is Virtual.")
		case vk.PhysicalDeviceTypeCpu:
			core.LogInfo("GPU type is CPU.")
		default:
			core.LogInfo("GPU type is Unknown.")
		}
		core.LogDebug("Graphics Family Index: %d", families.Graphics)
		core.LogDebug("Present Family Index:  %d", families.Present)
		core.LogDebug("Copy Family Index:     %d", families.Copy)
		return device, families, support, nil
	}
	return nil, QueueFamilies{}, nil, errors.Wrap(core.ErrNoSuitableDevice, "no physical devices were found which meet the requirements")
}

// findQueueFamilies prefers a transfer-only family for copies and falls back to graphics.
func findQueueFamilies(device vk.PhysicalDevice, surface vk.Surface) (QueueFamilies, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, props)

	const unset = ^uint32(0)
	families := QueueFamilies{Graphics: unset, Present: unset, Copy: unset}
	for i := range props {
		props[i].Deref()
		flags := vk.QueueFlagBits(props[i].QueueFlags)

		if families.Graphics == unset && flags&vk.QueueGraphicsBit != 0 {
			families.Graphics = uint32(i)
		}
		if families.Copy == unset && flags == vk.QueueTransferBit {
			families.Copy = uint32(i)
		}

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return families, false
		}
		if families.Present == unset && supportsPresent == vk.True {
			families.Present = uint32(i)
		}
	}
	if families.Copy == unset {
		families.Copy = families.Graphics
	}
	return families, families.Graphics != unset && families.Present != unset
}

func querySwapchainSupport(device vk.PhysicalDevice, surface vk.Surface) (*swapchainSupportInfo, error) {
	info := &swapchainSupportInfo{}
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &info.Capabilities); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	info.Capabilities.Deref()
	info.Capabilities.CurrentExtent.Deref()
	info.Capabilities.MinImageExtent.Deref()
	info.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if formatCount != 0 {
		info.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, info.Formats); res != vk.Success {
			return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range info.Formats {
			info.Formats[i].Deref()
		}
	}

	var modeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if modeCount != 0 {
		info.PresentModes = make([]vk.PresentMode, modeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &modeCount, info.PresentModes); res != vk.Success {
			return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
	}
	return info, nil
}

func deviceExtensionNames(device vk.PhysicalDevice) map[string]bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success || count == 0 {
		return nil
	}
	props := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, props); res != vk.Success {
		return nil
	}
	names := make(map[string]bool, count)
	for i := range props {
		props[i].Deref()
		names[vk.ToString(props[i].ExtensionName[:])] = true
	}
	return names
}

func hasDeviceExtensions(device vk.PhysicalDevice, required []string) bool {
	available := deviceExtensionNames(device)
	for _, name := range required {
		if !available[name] {
			core.LogInfo("Required extension not found: '%s', skipping device.", name)
			return false
		}
	}
	return true
}

// createLogicalDevice creates one queue per unique family.
func createLogicalDevice(physical vk.PhysicalDevice, families QueueFamilies) (vk.Device, bool, error) {
	unique := []uint32{families.Graphics}
	for _, f := range []uint32{families.Present, families.Copy} {
		seen := false
		for _, u := range unique {
			seen = seen || u == f
		}
		if !seen {
			unique = append(unique, f)
		}
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(unique))
	for i, family := range unique {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if deviceExtensionNames(physical)["VK_KHR_portability_subset"] {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	var supported vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(physical, &supported)
	supported.Deref()

	features := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy:  vk.True,
		DepthClamp:         vk.True,
		FillModeNonSolid:   vk.True,
		MultiViewport:      supported.MultiViewport,
		GeometryShader:     supported.GeometryShader,
		TessellationShader: supported.TessellationShader,
	}
	if runtime.GOOS == "darwin" {
		features.SamplerAnisotropy = vk.False
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	var device vk.Device
	if res := vk.CreateDevice(physical, &deviceCreateInfo, nil, &device); res != vk.Success {
		return nil, false, resultError("vkCreateDevice", res)
	}
	core.LogInfo("Logical device created.")
	return device, features.MultiViewport == vk.True, nil
}
