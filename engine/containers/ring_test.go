package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingPushPop(t *testing.T) {
	r := NewRing[int](3, false)
	require.True(t, r.IsEmpty())

	require.NoError(t, r.Push(1))
	require.NoError(t, r.Push(2))
	require.NoError(t, r.Push(3))
	require.True(t, r.IsFull())
	require.ErrorIs(t, r.Push(4), ErrRingFull)

	v, err := r.Pop()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	require.NoError(t, r.Push(4))
	require.Equal(t, 2, r.At(0))
	require.Equal(t, 4, r.At(2))

	front, err := r.Peek()
	require.NoError(t, err)
	require.Equal(t, 2, front)
}

func TestRingOverwrite(t *testing.T) {
	r := NewRing[string](2, true)
	require.NoError(t, r.Push("a"))
	require.NoError(t, r.Push("b"))
	require.NoError(t, r.Push("c"))
	require.Equal(t, 2, r.Len())
	require.Equal(t, "b", r.At(0))
	require.Equal(t, "c", r.At(1))
}

func TestRingFilterKeepsOrder(t *testing.T) {
	r := NewRing[int](8, false)
	for i := 0; i < 6; i++ {
		require.NoError(t, r.Push(i))
	}
	r.Filter(func(v int) bool { return v%2 == 1 })
	require.Equal(t, 3, r.Len())
	require.Equal(t, []int{1, 3, 5}, []int{r.At(0), r.At(1), r.At(2)})

	r.Clear()
	_, err := r.Pop()
	require.ErrorIs(t, err, ErrRingEmpty)
}
