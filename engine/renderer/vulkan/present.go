package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

/**
 * @brief Flushes the uploads recorded since the last frame, acquires the next swapchain
 * image and begins the clearing presentation pass on the immediate thread.
 */
func (d *Device) PresentBegin() error {
	if err := d.copyQueue.flush(); err != nil {
		return errors.Wrap(err, "copy queue flush")
	}

	frame := d.frame()
	index, err := d.driver.AcquireNextImage(frame.imageAvailable)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			core.LogWarn("swapchain is out of date, skipping frame %d", d.frameCount)
		}
		return err
	}
	d.imageIndex = index
	d.imageAcquired = true
	d.imageWaited = false

	immediate := metadata.GraphicsThreadImmediate
	d.threads[immediate].renderPass.BeginExternal(d.commandList(immediate), d.presentPass, d.resumePass,
		d.swapchainFramebuffers[index], d.swapchainViews[index], d.screen, d.config.ClearColor)
	return nil
}

// closeThread ends the pass and the command buffer of thread. It reports false when the
// thread had already been closed this frame.
func (d *Device) closeThread(thread metadata.GraphicsThread) (bool, error) {
	if d.submitted[thread] {
		return false, nil
	}
	res := d.resources(thread)
	d.threads[thread].renderPass.Disable(res.commands.Handle)
	if err := res.commands.End(d.driver); err != nil {
		return false, err
	}
	d.submitted[thread] = true
	return true, nil
}

func (d *Device) submit(batch SubmitBatch, fence vk.Fence) error {
	return d.locks.SafeQueueCall(d.families.Graphics, func() error {
		return d.driver.QueueSubmit(d.graphicsQueue, batch, fence)
	})
}

// FinishCommandList closes the command buffer of a deferred thread. It is submitted by the
// next ExecuteDeferredContexts or PresentEnd, and the thread records nothing else this frame.
func (d *Device) FinishCommandList(thread metadata.GraphicsThread) error {
	core.Assert(thread != metadata.GraphicsThreadImmediate, "the immediate thread is closed by PresentEnd")
	res := d.resources(thread)
	d.threads[thread].renderPass.Disable(res.commands.Handle)
	return res.commands.End(d.driver)
}

/**
 * @brief Submits the command buffers of every deferred thread. Their work executes before
 * anything the immediate thread submits in PresentEnd. The slot fence signalled by
 * PresentEnd also covers this submission.
 */
func (d *Device) ExecuteDeferredContexts() error {
	var cmds []vk.CommandBuffer
	for t := metadata.GraphicsThreadImmediate + 1; t < metadata.GraphicsThreadCount; t++ {
		closed, err := d.closeThread(t)
		if err != nil {
			return err
		}
		if closed {
			cmds = append(cmds, d.resources(t).commands.Handle)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	if err := d.submit(SubmitBatch{Commands: cmds}, nil); err != nil {
		core.LogError("deferred submit: %s", err)
		return err
	}
	for t := metadata.GraphicsThreadImmediate + 1; t < metadata.GraphicsThreadCount; t++ {
		d.resources(t).commands.UpdateSubmitted()
	}
	return nil
}

/**
 * @brief Submits the frame, presents it and moves to the next ring slot. Reusing a slot
 * always waits on its fence first, so the CPU never gets more than BACKBUFFER_COUNT frames
 * ahead of the GPU.
 */
func (d *Device) PresentEnd() error {
	core.Assert(d.imageAcquired, "PresentEnd called without a successful PresentBegin")
	frame := d.frame()

	var cmds []vk.CommandBuffer
	for t := metadata.GraphicsThreadImmediate; t < metadata.GraphicsThreadCount; t++ {
		closed, err := d.closeThread(t)
		if err != nil {
			return err
		}
		if closed {
			cmds = append(cmds, d.resources(t).commands.Handle)
		}
	}

	batch := SubmitBatch{
		Commands: cmds,
		Signal:   []vk.Semaphore{frame.renderFinished},
	}
	if !d.imageWaited {
		batch.Wait = []vk.Semaphore{frame.imageAvailable}
		batch.WaitStages = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
		d.imageWaited = true
	}
	if err := d.submit(batch, frame.fence.Handle); err != nil {
		core.LogError("frame submit: %s", err)
		return err
	}
	frame.fence.Submitted = true
	for t := range frame.threads {
		frame.threads[t].commands.UpdateSubmitted()
	}

	err := d.locks.SafeQueueCall(d.families.Present, func() error {
		return d.driver.QueuePresent(d.presentQueue, frame.renderFinished, d.imageIndex)
	})
	if err != nil {
		if !errors.Is(err, core.ErrSwapchainBooting) {
			return err
		}
		core.LogWarn("present: %s", err)
	}
	d.imageAcquired = false
	d.frameCount++
	d.captureStats(frame, (d.frameCount-1)%BACKBUFFER_COUNT)

	next := d.frame()
	if d.frameCount >= BACKBUFFER_COUNT {
		if err := next.fence.Wait(d.driver); err != nil {
			return err
		}
		if err := next.fence.Reset(d.driver); err != nil {
			return err
		}
	}
	return d.beginFrame()
}
