package utils

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

const BitsPerByte = 8

// Returns the size in bits of n bytes
func Bits(bytes int) int {
	return bytes * BitsPerByte
}

// Returns the size in bytes of values of a type
func Sizeof[T any]() int {
	var val T
	return int(unsafe.Sizeof(val))
}

// Returns the size in bits of values of a type
func SizeofBits[T any]() int {
	return Bits(Sizeof[T]())
}

// Returns an all ones bitmask of n bits of the given unsigned integer type
func AllOnes[T constraints.Unsigned](bits int) T {
	if bits >= SizeofBits[T]() {
		return ^T(0)
	}

	return (T(1) << bits) - T(1)
}

// Returns bit n of value as 0 or 1
func Bit[T constraints.Unsigned](value T, n int) T {
	return (value >> n) & 1
}

// Returns the inclusive bit range [lo, hi] of value, right aligned
func BitRange[T constraints.Unsigned](value T, lo int, hi int) T {
	return (value >> lo) & AllOnes[T](hi-lo+1)
}

// Masks value to its width least significant bits and moves them to position.
// Bits of value not fitting in the field are silently discarded.
func EncodeField[T constraints.Unsigned](value T, width int, position int) T {
	return (value & AllOnes[T](width)) << position
}

// Returns a mask with the lowest bit of bit replicated on length consecutive
// positions starting at from
func RepeatBit[T constraints.Unsigned](bit T, from int, length int) T {
	var value T

	for i := from; i-from < length; i++ {
		value |= EncodeField(bit&1, 1, i)
	}

	return value
}
