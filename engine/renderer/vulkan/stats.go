package vulkan

import (
	"sync"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

type threadStats struct {
	allocatorUsed     uint64
	allocatorCapacity uint64
	passActive        bool
	rings             [metadata.ShaderStageCount]uint32
}

// deviceStats is copied on the frame goroutine so readers never touch live frame state.
type deviceStats struct {
	mu sync.Mutex

	frameCount       uint64
	ringSlot         uint64
	framebuffers     int
	copyQueueFlushes uint64
	descriptorStalls uint64
	threads          [metadata.GraphicsThreadCount]threadStats
}

// captureStats records frame, the slot that was just submitted or is being recorded, as
// the latest snapshot. Only called from the goroutine driving the frame.
func (d *Device) captureStats(frame *FrameResources, slot uint64) {
	var flushes uint64
	_ = d.locks.SafeCall(CopyQueueManagement, func() error {
		flushes = d.copyQueue.flushes
		return nil
	})

	var stalls uint64
	for _, f := range d.frames {
		for t := range f.threads {
			stalls += f.threads[t].descriptors.Stalls()
		}
	}

	var threads [metadata.GraphicsThreadCount]threadStats
	for t := range threads {
		res := &frame.threads[t]
		threads[t] = threadStats{
			allocatorUsed:     res.allocator.Used(),
			allocatorCapacity: res.allocator.Capacity(),
			passActive:        d.threads[t].renderPass.Active(),
		}
		for stage := metadata.ShaderStageVS; stage < metadata.ShaderStageCount; stage++ {
			threads[t].rings[stage] = res.descriptors.Ring(stage)
		}
	}
	framebuffers := d.framebuffers.Len()

	d.stats.mu.Lock()
	defer d.stats.mu.Unlock()
	d.stats.frameCount = d.frameCount
	d.stats.ringSlot = slot
	d.stats.framebuffers = framebuffers
	d.stats.copyQueueFlushes = flushes
	d.stats.descriptorStalls = stalls
	d.stats.threads = threads
}

// WriteStats writes the snapshot taken at the last PresentEnd: allocator usage and
// descriptor ring positions per thread of the submitted slot, plus device wide counters.
// Safe to call from any goroutine.
func (d *Device) WriteStats(writer *jwriter.Writer) {
	d.stats.mu.Lock()
	defer d.stats.mu.Unlock()
	s := &d.stats

	obj := writer.Object()
	defer obj.End()

	obj.Name("FrameCount").Int(int(s.frameCount))
	obj.Name("RingSlot").Int(int(s.ringSlot))
	obj.Name("Framebuffers").Int(s.framebuffers)
	obj.Name("CopyQueueFlushes").Int(int(s.copyQueueFlushes))

	threads := obj.Name("Threads").Array()
	for t := metadata.GraphicsThreadImmediate; t < metadata.GraphicsThreadCount; t++ {
		ts := &s.threads[t]

		thread := threads.Object()
		thread.Name("Thread").Int(int(t))
		thread.Name("AllocatorUsed").Int(int(ts.allocatorUsed))
		thread.Name("AllocatorCapacity").Int(int(ts.allocatorCapacity))
		thread.Name("PassActive").Bool(ts.passActive)

		rings := thread.Name("DescriptorRing").Object()
		for stage := metadata.ShaderStageVS; stage < metadata.ShaderStageCount; stage++ {
			rings.Name(stage.String()).Int(int(ts.rings[stage]))
		}
		rings.End()
		thread.End()
	}
	threads.End()

	obj.Name("DescriptorStalls").Int(int(s.descriptorStalls))
}

// Stats renders WriteStats into a standalone JSON document.
func (d *Device) Stats() ([]byte, error) {
	w := jwriter.NewWriter()
	d.WriteStats(&w)
	return w.Bytes(), w.Error()
}
