package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	anvilmath "github.com/spaghettifunk/anvil/engine/math"
)

/**
 * @brief A bump allocator over a persistently mapped, host-coherent buffer. Individual
 * allocations are never freed; Clear rewinds the cursor once the GPU is done with them.
 */
type FrameAllocator struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	data   []byte
	base   uintptr
	offset uint64
}

// NewFrameAllocator creates a host-visible transfer/vertex/index/uniform buffer of size bytes and maps it.
func NewFrameAllocator(driver Driver, size uint64) (*FrameAllocator, error) {
	buffer, err := driver.CreateBuffer(&vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  vk.DeviceSize(size),
		Usage: vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageVertexBufferBit |
			vk.BufferUsageIndexBufferBit | vk.BufferUsageUniformBufferBit),
		SharingMode: vk.SharingModeExclusive,
	})
	if err != nil {
		return nil, err
	}
	req := driver.BufferMemoryRequirements(buffer)
	typeIndex, ok := driver.FindMemoryType(req.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if !ok {
		driver.DestroyBuffer(buffer)
		return nil, errors.Wrap(core.ErrUnknown, "no host visible memory type for frame allocator")
	}
	memory, err := driver.AllocateMemory(req.Size, typeIndex)
	if err != nil {
		driver.DestroyBuffer(buffer)
		return nil, err
	}
	if err := driver.BindBufferMemory(buffer, memory, 0); err != nil {
		driver.FreeMemory(memory)
		driver.DestroyBuffer(buffer)
		return nil, err
	}
	data, err := driver.MapMemory(memory, vk.DeviceSize(size))
	if err != nil {
		driver.FreeMemory(memory)
		driver.DestroyBuffer(buffer)
		return nil, err
	}
	a := newFrameAllocator(data)
	a.buffer = buffer
	a.memory = memory
	return a, nil
}

func newFrameAllocator(data []byte) *FrameAllocator {
	return &FrameAllocator{
		data: data,
		base: uintptr(unsafe.Pointer(unsafe.SliceData(data))),
	}
}

// Allocate returns size bytes whose address is a multiple of alignment. Running past
// the end of the mapping is an assertion.
func (a *FrameAllocator) Allocate(size, alignment uint64) []byte {
	address := anvilmath.AlignUp(uint64(a.base)+a.offset, alignment)
	start := address - uint64(a.base)
	core.Assert(start+size <= a.Capacity(), "frame allocator overflow: %d + %d exceeds capacity %d", start, size, a.Capacity())
	a.offset = start + size
	return a.data[start : start+size : start+size]
}

// CalculateOffset is the byte offset of a slice returned by Allocate, relative to the buffer start.
func (a *FrameAllocator) CalculateOffset(ptr []byte) uint64 {
	address := uintptr(unsafe.Pointer(unsafe.SliceData(ptr)))
	core.Assert(address >= a.base && uint64(address-a.base)+uint64(len(ptr)) <= a.Capacity(),
		"pointer %#x is outside of the frame allocator mapping", address)
	return uint64(address - a.base)
}

func (a *FrameAllocator) Clear() {
	a.offset = 0
}

func (a *FrameAllocator) Capacity() uint64 {
	return uint64(len(a.data))
}

func (a *FrameAllocator) Used() uint64 {
	return a.offset
}

func (a *FrameAllocator) Buffer() vk.Buffer {
	return a.buffer
}

func (a *FrameAllocator) Destroy(driver Driver) {
	if a.memory != vk.NullDeviceMemory {
		driver.UnmapMemory(a.memory)
		driver.FreeMemory(a.memory)
	}
	if a.buffer != vk.NullBuffer {
		driver.DestroyBuffer(a.buffer)
	}
	a.data = nil
	a.offset = 0
}
