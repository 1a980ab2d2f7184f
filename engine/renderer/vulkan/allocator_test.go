package vulkan

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestFrameAllocatorAlignmentAndOrdering(t *testing.T) {
	a := newFrameAllocator(make([]byte, 64*1024))
	r := rand.New(rand.NewSource(42))

	var lastEnd uint64
	for i := 0; i < 200; i++ {
		size := 1 + r.Uint64n(200)
		align := uint64(1) << r.Uint64n(9)
		if a.Used()+size+align > a.Capacity() {
			break
		}

		got := a.Allocate(size, align)
		require.Len(t, got, int(size))

		address := uint64(uintptr(unsafe.Pointer(unsafe.SliceData(got))))
		require.Zero(t, address%align, "allocation %d not aligned to %d", i, align)

		offset := a.CalculateOffset(got)
		require.GreaterOrEqual(t, offset, lastEnd, "allocation %d overlaps the previous one", i)
		lastEnd = offset + size
	}
}

func TestFrameAllocatorOverflowAsserts(t *testing.T) {
	a := newFrameAllocator(make([]byte, 256))
	a.Allocate(200, 1)

	require.Panics(t, func() { a.Allocate(100, 1) })
}

func TestFrameAllocatorClearRewinds(t *testing.T) {
	a := newFrameAllocator(make([]byte, 256))
	first := a.Allocate(128, 16)
	a.Allocate(64, 16)
	require.NotZero(t, a.Used())

	a.Clear()
	require.Zero(t, a.Used())
	again := a.Allocate(128, 16)
	require.Equal(t, a.CalculateOffset(first), a.CalculateOffset(again))
}

func TestFrameAllocatorOffsetRoundTrip(t *testing.T) {
	backing := make([]byte, 1024)
	a := newFrameAllocator(backing)
	a.Allocate(3, 1)

	dst := a.Allocate(32, 16)
	for i := range dst {
		dst[i] = byte(i + 1)
	}
	offset := a.CalculateOffset(dst)
	require.Equal(t, dst, backing[offset:offset+32])
}

func TestFrameAllocatorRejectsForeignSlices(t *testing.T) {
	a := newFrameAllocator(make([]byte, 64))
	require.Panics(t, func() { a.CalculateOffset(make([]byte, 4)) })
}
