package containers

import "github.com/cockroachdb/errors"

var (
	ErrRingFull  = errors.New("ring is full")
	ErrRingEmpty = errors.New("ring is empty")
)

// Ring is a fixed-capacity FIFO. Push on a full ring fails unless it was
// created with overwrite enabled, in which case the oldest element is dropped.
type Ring[T any] struct {
	data       []T
	readIndex  int
	writeIndex int
	count      int
	overwrite  bool
}

func NewRing[T any](size int, overwrite bool) *Ring[T] {
	return &Ring[T]{
		data:      make([]T, size),
		overwrite: overwrite,
	}
}

// Push adds an element at the back.
func (r *Ring[T]) Push(value T) error {
	if r.IsFull() {
		if !r.overwrite {
			return ErrRingFull
		}
		r.readIndex = (r.readIndex + 1) % len(r.data)
		r.count--
	}
	r.data[r.writeIndex] = value
	r.writeIndex = (r.writeIndex + 1) % len(r.data)
	r.count++
	return nil
}

// Pop removes and returns the front element.
func (r *Ring[T]) Pop() (T, error) {
	var zero T
	if r.IsEmpty() {
		return zero, ErrRingEmpty
	}
	value := r.data[r.readIndex]
	r.data[r.readIndex] = zero
	r.readIndex = (r.readIndex + 1) % len(r.data)
	r.count--
	return value, nil
}

// Peek returns the front element without removing it.
func (r *Ring[T]) Peek() (T, error) {
	var zero T
	if r.IsEmpty() {
		return zero, ErrRingEmpty
	}
	return r.data[r.readIndex], nil
}

// At returns the i-th element counted from the front.
func (r *Ring[T]) At(i int) T {
	return r.data[(r.readIndex+i)%len(r.data)]
}

// Filter keeps only the elements for which keep returns true, preserving order.
func (r *Ring[T]) Filter(keep func(T) bool) {
	n := r.count
	for i := 0; i < n; i++ {
		v, _ := r.Pop()
		if keep(v) {
			_ = r.Push(v)
		}
	}
}

func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.readIndex, r.writeIndex, r.count = 0, 0, 0
}

func (r *Ring[T]) Len() int {
	return r.count
}

func (r *Ring[T]) Cap() int {
	return len(r.data)
}

func (r *Ring[T]) IsEmpty() bool {
	return r.count == 0
}

func (r *Ring[T]) IsFull() bool {
	return r.count == len(r.data)
}
