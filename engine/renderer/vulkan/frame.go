package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

// threadResources belong to exactly one recording thread in one frame slot.
type threadResources struct {
	commands    *CommandBuffer
	allocator   *FrameAllocator
	descriptors *DescriptorTable
}

/**
 * @brief One slot of the frame ring. Nothing in it may be touched by the CPU between the
 * submission that signals fence and the wait on it.
 */
type FrameResources struct {
	fence          *Fence
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	threads        [metadata.GraphicsThreadCount]threadResources
}

func newFrameResources(driver Driver, layouts *descriptorLayouts, nulls nullDescriptors, config *DeviceConfig) (*FrameResources, error) {
	f := &FrameResources{}

	var err error
	if f.fence, err = NewFence(driver, false); err != nil {
		return nil, err
	}
	if f.imageAvailable, err = driver.CreateSemaphore(); err != nil {
		f.destroy(driver)
		return nil, err
	}
	if f.renderFinished, err = driver.CreateSemaphore(); err != nil {
		f.destroy(driver)
		return nil, err
	}

	family := driver.QueueFamilies().Graphics
	for i := range f.threads {
		t := &f.threads[i]
		if t.commands, err = NewCommandBuffer(driver, family); err != nil {
			f.destroy(driver)
			return nil, err
		}
		if t.allocator, err = NewFrameAllocator(driver, config.ThreadAllocatorSize); err != nil {
			f.destroy(driver)
			return nil, err
		}
		if t.descriptors, err = NewDescriptorTable(driver, layouts, nulls, config.MaxRenameCount); err != nil {
			f.destroy(driver)
			return nil, err
		}
	}
	return f, nil
}

// begin opens every thread's command buffer for a new frame. The GPU must be done with the slot.
func (f *FrameResources) begin(driver Driver) error {
	for i := range f.threads {
		t := &f.threads[i]
		if err := t.commands.Reset(driver); err != nil {
			return err
		}
		if err := t.commands.Begin(driver, false, true); err != nil {
			return err
		}
		t.descriptors.Reset()
		t.allocator.Clear()
	}
	return nil
}

func (f *FrameResources) destroy(driver Driver) {
	for i := range f.threads {
		t := &f.threads[i]
		if t.descriptors != nil {
			t.descriptors.Destroy(driver)
		}
		if t.allocator != nil {
			t.allocator.Destroy(driver)
		}
		if t.commands != nil {
			t.commands.Destroy(driver)
		}
	}
	if !isNull(f.renderFinished) {
		driver.DestroySemaphore(f.renderFinished)
	}
	if !isNull(f.imageAvailable) {
		driver.DestroySemaphore(f.imageAvailable)
	}
	if f.fence != nil {
		f.fence.Destroy(driver)
	}
	core.LogDebug("frame resources destroyed")
}
