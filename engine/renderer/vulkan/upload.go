package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	anvilmath "github.com/spaghettifunk/anvil/engine/math"
)

// copyQueue batches every upload recorded during a frame into one single-use command
// buffer. All of its state is only touched under CopyQueueManagement.
type copyQueue struct {
	driver   Driver
	locks    *LockPool
	family   uint32
	queue    vk.Queue
	commands *CommandBuffer
	fence    *Fence

	buffers  *FrameAllocator
	textures *FrameAllocator

	pending bool
	flushes uint64
}

func newCopyQueue(driver Driver, locks *LockPool, bufferSize, textureSize uint64) (*copyQueue, error) {
	family := driver.QueueFamilies().Copy
	q := &copyQueue{
		driver: driver,
		locks:  locks,
		family: family,
		queue:  driver.Queue(family),
	}
	locks.SetQueueFamily(family)

	var err error
	if q.commands, err = NewCommandBuffer(driver, family); err != nil {
		return nil, err
	}
	if q.fence, err = NewFence(driver, false); err != nil {
		q.destroy()
		return nil, err
	}
	if q.buffers, err = NewFrameAllocator(driver, bufferSize); err != nil {
		q.destroy()
		return nil, err
	}
	if q.textures, err = NewFrameAllocator(driver, textureSize); err != nil {
		q.destroy()
		return nil, err
	}
	if err := q.commands.Begin(driver, true, false); err != nil {
		q.destroy()
		return nil, err
	}
	return q, nil
}

// reserve flushes pending uploads when uploader cannot take size more bytes.
// Must be called with the copy lock held.
func (q *copyQueue) reserve(uploader *FrameAllocator, size, alignment uint64) error {
	core.Assert(size <= uploader.Capacity(), "upload of %d bytes exceeds uploader capacity %d", size, uploader.Capacity())
	if anvilmath.AlignUp(uploader.Used(), alignment)+size > uploader.Capacity() {
		return q.submitAndWait()
	}
	return nil
}

func (q *copyQueue) stage(uploader *FrameAllocator, data []byte, alignment uint64) uint64 {
	dst := uploader.Allocate(uint64(len(data)), alignment)
	copy(dst, data)
	return uploader.CalculateOffset(dst)
}

/**
 * @brief Records a copy of data to the start of dst followed by a barrier that makes the
 * write visible to dstAccess.
 */
func (q *copyQueue) uploadBuffer(dst vk.Buffer, data []byte, dstAccess vk.AccessFlags) error {
	return q.locks.SafeCall(CopyQueueManagement, func() error {
		if err := q.reserve(q.buffers, uint64(len(data)), 4); err != nil {
			return err
		}
		offset := q.stage(q.buffers, data, 4)
		cmd := q.commands.Handle

		q.driver.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			nil, []vk.BufferMemoryBarrier{{
				SType:               vk.StructureTypeBufferMemoryBarrier,
				DstAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Buffer:              dst,
				Size:                vk.DeviceSize(vk.WholeSize),
			}}, nil)

		q.driver.CmdCopyBuffer(cmd, q.buffers.Buffer(), dst, []vk.BufferCopy{{
			SrcOffset: vk.DeviceSize(offset),
			Size:      vk.DeviceSize(len(data)),
		}})

		q.driver.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
			nil, []vk.BufferMemoryBarrier{{
				SType:               vk.StructureTypeBufferMemoryBarrier,
				SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
				DstAccessMask:       dstAccess,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Buffer:              dst,
				Size:                vk.DeviceSize(vk.WholeSize),
			}}, nil)

		q.pending = true
		return nil
	})
}

// textureUpload is one subresource of a texture upload.
type textureUpload struct {
	data   []byte
	pitch  uint32
	mip    uint32
	layer  uint32
	width  uint32
	height uint32
}

/**
 * @brief Stages every subresource, copies them into image and leaves the whole image in
 * GENERAL layout.
 */
func (q *copyQueue) uploadTexture(image vk.Image, aspect vk.ImageAspectFlags, mips, layers, stride uint32, uploads []textureUpload) error {
	return q.locks.SafeCall(CopyQueueManagement, func() error {
		alignment := uint64(anvilmath.Max(stride, 4))
		var total uint64
		for _, u := range uploads {
			total += anvilmath.AlignUp(uint64(len(u.data)), alignment)
		}
		if err := q.reserve(q.textures, total+alignment, alignment); err != nil {
			return err
		}

		regions := make([]vk.BufferImageCopy, 0, len(uploads))
		for _, u := range uploads {
			offset := q.stage(q.textures, u.data, alignment)
			var rowLength uint32
			if stride > 0 && u.pitch > u.width*stride {
				rowLength = u.pitch / stride
			}
			regions = append(regions, vk.BufferImageCopy{
				BufferOffset:    vk.DeviceSize(offset),
				BufferRowLength: rowLength,
				ImageSubresource: vk.ImageSubresourceLayers{
					AspectMask:     aspect,
					MipLevel:       u.mip,
					BaseArrayLayer: u.layer,
					LayerCount:     1,
				},
				ImageExtent: vk.Extent3D{Width: u.width, Height: u.height, Depth: 1},
			})
		}

		cmd := q.commands.Handle
		subresources := vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: mips,
			LayerCount: layers,
		}
		q.driver.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			nil, nil, []vk.ImageMemoryBarrier{{
				SType:               vk.StructureTypeImageMemoryBarrier,
				DstAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
				OldLayout:           vk.ImageLayoutUndefined,
				NewLayout:           vk.ImageLayoutTransferDstOptimal,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Image:               image,
				SubresourceRange:    subresources,
			}})

		q.driver.CmdCopyBufferToImage(cmd, q.textures.Buffer(), image, vk.ImageLayoutTransferDstOptimal, regions)

		q.driver.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
			nil, nil, []vk.ImageMemoryBarrier{{
				SType:               vk.StructureTypeImageMemoryBarrier,
				SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
				DstAccessMask:       vk.AccessFlags(vk.AccessShaderReadBit),
				OldLayout:           vk.ImageLayoutTransferDstOptimal,
				NewLayout:           vk.ImageLayoutGeneral,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Image:               image,
				SubresourceRange:    subresources,
			}})

		q.pending = true
		return nil
	})
}

// transition moves a freshly created image from UNDEFINED to layout.
func (q *copyQueue) transition(image vk.Image, aspect vk.ImageAspectFlags, mips, layers uint32, layout vk.ImageLayout) error {
	return q.locks.SafeCall(CopyQueueManagement, func() error {
		q.driver.CmdPipelineBarrier(q.commands.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
			nil, nil, []vk.ImageMemoryBarrier{{
				SType:               vk.StructureTypeImageMemoryBarrier,
				OldLayout:           vk.ImageLayoutUndefined,
				NewLayout:           layout,
				SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
				DstQueueFamilyIndex: vk.QueueFamilyIgnored,
				Image:               image,
				SubresourceRange: vk.ImageSubresourceRange{
					AspectMask: aspect,
					LevelCount: mips,
					LayerCount: layers,
				},
			}})
		q.pending = true
		return nil
	})
}

// flush submits the batched uploads and blocks until the copy queue has executed them.
func (q *copyQueue) flush() error {
	return q.locks.SafeCall(CopyQueueManagement, q.submitAndWait)
}

func (q *copyQueue) submitAndWait() error {
	if !q.pending {
		return nil
	}
	if err := q.commands.End(q.driver); err != nil {
		return err
	}
	err := q.locks.SafeQueueCall(q.family, func() error {
		return q.driver.QueueSubmit(q.queue, SubmitBatch{Commands: []vk.CommandBuffer{q.commands.Handle}}, q.fence.Handle)
	})
	if err != nil {
		core.LogError("copy queue submit: %s", err)
		return err
	}
	q.commands.UpdateSubmitted()
	q.fence.Submitted = true

	if err := q.fence.Wait(q.driver); err != nil {
		return err
	}
	if err := q.fence.Reset(q.driver); err != nil {
		return err
	}
	if err := q.commands.Reset(q.driver); err != nil {
		return err
	}
	if err := q.commands.Begin(q.driver, true, false); err != nil {
		return err
	}
	q.buffers.Clear()
	q.textures.Clear()
	q.pending = false
	q.flushes++
	return nil
}

func (q *copyQueue) destroy() {
	if q.textures != nil {
		q.textures.Destroy(q.driver)
	}
	if q.buffers != nil {
		q.buffers.Destroy(q.driver)
	}
	if q.fence != nil {
		q.fence.Destroy(q.driver)
	}
	if q.commands != nil {
		q.commands.Destroy(q.driver)
	}
}
