package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// AlignUp rounds value up to the next multiple of alignment. An alignment of 0
// or 1 leaves the value untouched. Alignment does not need to be a power of two.
func AlignUp[T constraints.Unsigned](value, alignment T) T {
	if alignment <= 1 {
		return value
	}
	return (value + alignment - 1) / alignment * alignment
}

// IsPow2 reports whether v is a non-zero power of two.
func IsPow2[T constraints.Unsigned](v T) bool {
	return v != 0 && v&(v-1) == 0
}

// Log2 returns floor(log2(v)). Log2(0) is 0.
func Log2[T constraints.Unsigned](v T) T {
	var r T
	for v > 1 {
		v >>= 1
		r++
	}
	return r
}

// MipExtent is the size of a texture dimension at the given mip level, never below 1.
func MipExtent[T constraints.Unsigned](dim T, mip T) T {
	return Max(1, dim>>mip)
}
