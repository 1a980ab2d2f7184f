package vulkan

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

const immediate = metadata.GraphicsThreadImmediate

func newTestDevice(t *testing.T, config DeviceConfig) (*Device, *fakeDriver) {
	t.Helper()
	if config.ThreadAllocatorSize == 0 {
		config.ThreadAllocatorSize = 64 * 1024
	}
	if config.BufferUploaderSize == 0 {
		config.BufferUploaderSize = 1 << 20
	}
	if config.TextureUploaderSize == 0 {
		config.TextureUploaderSize = 1 << 20
	}
	driver := newFakeDriver()
	device, err := NewDevice(driver, config)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, device.Close())
	})
	return device, driver
}

func newConstantBuffer(t *testing.T, d *Device, size uint32) *metadata.GPUBuffer {
	t.Helper()
	buffer := &metadata.GPUBuffer{}
	require.NoError(t, d.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: size,
		Usage:     metadata.UsageDefault,
		BindFlags: metadata.BindConstantBuffer,
	}, nil, buffer))
	return buffer
}

func newBackbufferPSO(t *testing.T, d *Device) *metadata.GraphicsPSO {
	t.Helper()
	vs := &metadata.Shader{}
	require.NoError(t, d.CreateVertexShader([]byte{0x03, 0x02, 0x23, 0x07}, vs))
	desc := &metadata.GraphicsPSODesc{
		VS:     vs,
		PT:     metadata.PrimitiveTriangleList,
		NumRTs: 1,
	}
	desc.RTFormats[0] = metadata.FormatB8G8R8A8Unorm
	pso := &metadata.GraphicsPSO{}
	require.NoError(t, d.CreateGraphicsPSO(desc, pso))
	return pso
}

func TestDeviceNewFrameIssuesDefaultState(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})

	require.Len(t, driver.viewportCounts, int(metadata.GraphicsThreadCount))
	for _, count := range driver.viewportCounts {
		require.Equal(t, maxViewports, count)
	}
	require.Len(t, d.threads[immediate].scissors, maxScissors)
	require.Equal(t, [4]float32{1, 1, 1, 1}, d.threads[immediate].blendFactor)
	require.Zero(t, d.FrameCount())
}

func TestDeviceRingBlocksOnReusedSlot(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	buffer := newConstantBuffer(t, d, 64)

	require.NoError(t, d.PresentBegin())
	require.NoError(t, d.UpdateBuffer(buffer, bytes.Repeat([]byte{1}, 64), immediate))
	require.NotZero(t, d.frames[0].threads[immediate].allocator.Used())

	// the GPU never finishes frame 0 until released
	driver.hold()
	require.NoError(t, d.PresentEnd())
	require.NoError(t, d.PresentBegin())

	done := make(chan error, 1)
	go func() {
		done <- d.PresentEnd()
	}()

	finished := func() bool {
		select {
		case err := <-done:
			done <- err
			return true
		default:
			return false
		}
	}
	require.Never(t, finished, 100*time.Millisecond, 10*time.Millisecond)

	driver.release()
	require.Eventually(t, finished, time.Second, 5*time.Millisecond)
	require.NoError(t, <-done)

	require.Equal(t, uint64(2), d.FrameCount())
	require.Zero(t, d.frames[0].threads[immediate].allocator.Used())
}

func TestDeviceUpdateBufferRoundTrip(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	buffer := newConstantBuffer(t, d, 256)
	data := bytes.Repeat([]byte{0xAB}, 256)

	require.NoError(t, d.PresentBegin())
	require.NoError(t, d.UpdateBuffer(buffer, data, immediate))
	require.NoError(t, d.PresentEnd())

	require.Equal(t, data, driver.bufferContents(bufferOf(buffer).buffer))
}

func TestDeviceInitialDataIsUploadedBeforeTheFrame(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buffer := &metadata.GPUBuffer{}
	require.NoError(t, d.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: 8,
		Usage:     metadata.UsageImmutable,
		BindFlags: metadata.BindVertexBuffer,
	}, &metadata.SubresourceData{SysMem: data}, buffer))

	require.NoError(t, d.PresentBegin())
	require.Equal(t, data, driver.bufferContents(bufferOf(buffer).buffer))
	require.ErrorIs(t, d.UpdateBuffer(buffer, data, immediate), core.ErrImmutableResource)
	require.NoError(t, d.PresentEnd())
}

func TestDeviceInitialDataReachesConstantBufferAfterPresent(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	data := bytes.Repeat([]byte{0xAB}, 256)
	buffer := &metadata.GPUBuffer{}
	require.NoError(t, d.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: 256,
		Usage:     metadata.UsageDefault,
		BindFlags: metadata.BindConstantBuffer,
	}, &metadata.SubresourceData{SysMem: data}, buffer))

	require.NoError(t, d.PresentBegin())
	require.NoError(t, d.PresentEnd())

	require.Equal(t, data, driver.bufferContents(bufferOf(buffer).buffer))
	require.Equal(t, uint64(1), d.FrameCount())
}

func TestDeviceRingBufferWrapsEveryFrame(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	ring := &metadata.GPURingBuffer{}
	require.NoError(t, d.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth:      1024,
		Usage:          metadata.UsageDynamic,
		CPUAccessFlags: metadata.CPUAccessWrite,
		BindFlags:      metadata.BindVertexBuffer,
	}, nil, &ring.GPUBuffer))

	require.NoError(t, d.PresentBegin())
	first, offset := d.AllocateFromRingBuffer(ring, 100, immediate)
	require.Len(t, first, 100)
	require.Zero(t, offset)

	second, offset := d.AllocateFromRingBuffer(ring, 100, immediate)
	require.Equal(t, uint64(100), offset)
	copy(second, bytes.Repeat([]byte{0x5A}, 100))
	require.NoError(t, d.PresentEnd())

	contents := driver.bufferContents(bufferOf(&ring.GPUBuffer).buffer)
	require.Equal(t, bytes.Repeat([]byte{0x5A}, 100), contents[100:200])

	require.NoError(t, d.PresentBegin())
	_, offset = d.AllocateFromRingBuffer(ring, 100, immediate)
	require.Zero(t, offset)
	require.NoError(t, d.PresentEnd())
}

func TestDeviceTextureMipExtents(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	desc := &metadata.TextureDesc{
		Width:     8,
		Height:    4,
		MipLevels: 4,
		ArraySize: 1,
		Format:    metadata.FormatR8G8B8A8Unorm,
		Usage:     metadata.UsageImmutable,
		BindFlags: metadata.BindShaderResource,
	}
	var initial []metadata.SubresourceData
	for _, extent := range [][2]uint32{{8, 4}, {4, 2}, {2, 1}, {1, 1}} {
		initial = append(initial, metadata.SubresourceData{
			SysMem:      make([]byte, extent[0]*extent[1]*4),
			SysMemPitch: extent[0] * 4,
		})
	}

	texture := &metadata.Texture2D{}
	require.NoError(t, d.CreateTexture2D(desc, initial, texture))
	require.Equal(t, metadata.ResourceKindTexture, texture.Kind)

	regions := driver.imageCopies[len(driver.imageCopies)-1]
	require.Len(t, regions, 4)
	expected := []vk.Extent3D{
		{Width: 8, Height: 4, Depth: 1},
		{Width: 4, Height: 2, Depth: 1},
		{Width: 2, Height: 1, Depth: 1},
		{Width: 1, Height: 1, Depth: 1},
	}
	for i, region := range regions {
		require.Equal(t, uint32(i), region.ImageSubresource.MipLevel)
		require.Equal(t, expected[i].Width, region.ImageExtent.Width)
		require.Equal(t, expected[i].Height, region.ImageExtent.Height)
		require.Zero(t, region.BufferRowLength)
	}
}

func TestDeviceTextureFullMipChain(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	texture := &metadata.Texture2D{}
	require.NoError(t, d.CreateTexture2D(&metadata.TextureDesc{
		Width:     16,
		Height:    4,
		Format:    metadata.FormatR8G8B8A8Unorm,
		BindFlags: metadata.BindShaderResource,
	}, nil, texture))

	require.Equal(t, uint32(5), texture.Desc.MipLevels)
	require.Equal(t, uint32(1), texture.Desc.ArraySize)
	require.Equal(t, uint32(5), driver.imageInfos[len(driver.imageInfos)-1].MipLevels)
}

func TestDeviceDescriptorOverflowStalls(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{MaxRenameCount: 2})
	pso := newBackbufferPSO(t, d)
	a, b := newConstantBuffer(t, d, 64), newConstantBuffer(t, d, 64)

	require.NoError(t, d.PresentBegin())
	d.BindGraphicsPSO(pso, immediate)
	submits := len(driver.submits)

	for _, cb := range []*metadata.GPUBuffer{a, b, a} {
		d.BindConstantBuffer(metadata.ShaderStageVS, cb, 0, immediate)
		require.NoError(t, d.Draw(3, 0, immediate))
	}

	table := d.resources(immediate).descriptors
	require.Equal(t, uint64(1), table.Stalls())
	require.Equal(t, uint32(1), table.Ring(metadata.ShaderStageVS))
	require.Len(t, driver.submits, submits+1)
	require.Equal(t, 3, driver.draws)
	require.True(t, d.threads[immediate].renderPass.Active())

	require.NoError(t, d.PresentEnd())
	last := driver.submits[len(driver.submits)-1]
	require.Empty(t, last.Wait, "the stall already waited on the acquired image")
}

func TestDeviceDeferredThreadsSubmitFirst(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})

	require.NoError(t, d.PresentBegin())
	require.NoError(t, d.FinishCommandList(metadata.GraphicsThreadScene))
	require.NoError(t, d.ExecuteDeferredContexts())
	deferred := driver.submits[len(driver.submits)-1]
	require.Len(t, deferred.Commands, int(metadata.GraphicsThreadCount)-1)

	require.NoError(t, d.PresentEnd())
	frame := driver.submits[len(driver.submits)-1]
	require.Len(t, frame.Commands, 1)
	require.Len(t, frame.Wait, 1)
	require.Len(t, frame.Signal, 1)
	require.Equal(t, 1, driver.presents)
}

func TestDeviceDispatchBindsComputeDescriptors(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	cs := &metadata.Shader{}
	require.NoError(t, d.CreateComputeShader([]byte{0x03, 0x02, 0x23, 0x07}, cs))
	pso := &metadata.ComputePSO{}
	require.NoError(t, d.CreateComputePSO(&metadata.ComputePSODesc{CS: cs}, pso))

	require.NoError(t, d.PresentBegin())
	d.BindComputePSO(pso, immediate)
	require.NoError(t, d.Dispatch(8, 8, 1, immediate))

	require.Equal(t, 1, driver.dispatches)
	require.False(t, d.threads[immediate].renderPass.Active())
	bind := driver.descriptorBinds[len(driver.descriptorBinds)-1]
	require.Equal(t, vk.PipelineBindPointCompute, bind.bindPoint)
	require.NoError(t, d.PresentEnd())
}

func TestDeviceRejectsInvalidResources(t *testing.T) {
	d, _ := newTestDevice(t, DeviceConfig{})

	require.ErrorIs(t, d.CreateBuffer(&metadata.GPUBufferDesc{}, nil, &metadata.GPUBuffer{}), core.ErrInvalidDescriptor)
	require.ErrorIs(t, d.CreateTexture2D(&metadata.TextureDesc{Width: 4, Height: 4}, nil, &metadata.Texture2D{}), core.ErrUnsupportedFormat)
	require.ErrorIs(t, d.CreatePixelShader(nil, &metadata.Shader{}), core.ErrEmptyBytecode)
	require.ErrorIs(t, d.CreateGraphicsPSO(&metadata.GraphicsPSODesc{}, &metadata.GraphicsPSO{}), core.ErrInvalidDescriptor)
	require.ErrorIs(t, d.GenerateMips(&metadata.Texture2D{}, immediate, -1), core.ErrNotSupported)
}

func TestDeviceDestroyReleasesIdentifier(t *testing.T) {
	d, _ := newTestDevice(t, DeviceConfig{})
	buffer := newConstantBuffer(t, d, 256)

	owner, ok := core.IdentifierOwner(buffer.ID)
	require.True(t, ok)
	require.Same(t, buffer, owner)

	d.Destroy(buffer)
	_, ok = core.IdentifierOwner(buffer.ID)
	require.False(t, ok)
	require.Nil(t, buffer.InternalData)
}

func TestDeviceFailedCreateReleasesEverything(t *testing.T) {
	d, driver := newTestDevice(t, DeviceConfig{})
	count := core.IdentifierCount()
	destroyed := driver.destroyed
	driver.failAllocations = true

	buffer := &metadata.GPUBuffer{}
	require.Error(t, d.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: 256,
		Usage:     metadata.UsageDefault,
		BindFlags: metadata.BindConstantBuffer,
	}, nil, buffer))
	require.Zero(t, buffer.ID)
	require.Nil(t, buffer.InternalData)

	texture := &metadata.Texture2D{}
	require.Error(t, d.CreateTexture2D(&metadata.TextureDesc{
		Width:      16,
		Height:     16,
		ArraySize:  1,
		MipLevels:  1,
		Format:     metadata.FormatR8G8B8A8Unorm,
		SampleDesc: metadata.SampleDesc{Count: 1},
		BindFlags:  metadata.BindShaderResource,
	}, nil, texture))
	require.Zero(t, texture.ID)
	require.Nil(t, texture.InternalData)

	require.Equal(t, count, core.IdentifierCount())
	// the buffer and the image were created before the allocation failed
	require.Equal(t, destroyed+2, driver.destroyed)

	driver.failAllocations = false
	require.NoError(t, d.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: 256,
		Usage:     metadata.UsageDefault,
		BindFlags: metadata.BindConstantBuffer,
	}, nil, buffer))
	require.Equal(t, count+1, core.IdentifierCount())
	d.Destroy(buffer)
	require.Equal(t, count, core.IdentifierCount())
}

func TestDeviceStatsIsValidJSON(t *testing.T) {
	d, _ := newTestDevice(t, DeviceConfig{})
	out, err := d.Stats()
	require.NoError(t, err)
	require.True(t, json.Valid(out))

	var stats struct {
		FrameCount int
		Threads    []struct {
			Thread            int
			AllocatorCapacity int
		}
	}
	require.NoError(t, json.Unmarshal(out, &stats))
	require.Len(t, stats.Threads, int(metadata.GraphicsThreadCount))
	require.Equal(t, 64*1024, stats.Threads[0].AllocatorCapacity)
}

func TestDeviceStatsReadDuringFrames(t *testing.T) {
	d, _ := newTestDevice(t, DeviceConfig{})
	buffer := newConstantBuffer(t, d, 256)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			out, err := d.Stats()
			if err != nil || !json.Valid(out) {
				t.Errorf("invalid stats: %v %s", err, out)
				return
			}
		}
	}()

	const frames = 8
	for i := 0; i < frames; i++ {
		require.NoError(t, d.PresentBegin())
		require.NoError(t, d.UpdateBuffer(buffer, bytes.Repeat([]byte{byte(i)}, 256), immediate))
		require.NoError(t, d.PresentEnd())
	}
	close(stop)
	wg.Wait()

	out, err := d.Stats()
	require.NoError(t, err)
	var stats struct {
		FrameCount int
		RingSlot   int
		Threads    []struct {
			AllocatorUsed int
		}
	}
	require.NoError(t, json.Unmarshal(out, &stats))
	require.Equal(t, frames, stats.FrameCount)
	require.Equal(t, (frames-1)%BACKBUFFER_COUNT, stats.RingSlot)
	require.NotZero(t, stats.Threads[immediate].AllocatorUsed)
}
