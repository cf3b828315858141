package insn

import (
	"golang.org/x/exp/constraints"

	"github.com/Manu343726/armemit/pkg/utils"
)

// Unit is a code unit of an instruction stream: 32 bit words for ARM,
// 16 bit half-words for Thumb
type Unit interface {
	~uint16 | ~uint32
}

// Unit counts returned by the encoders
const (
	ArmUnits       = 1
	ThumbUnits     = 1
	ThumbWideUnits = 2
)

// Copies units to the start of buf. Nothing is written if they do not fit.
func emit[T Unit](buf []T, units ...T) int {
	if len(buf) < len(units) {
		return 0
	}

	return copy(buf, units)
}

func emitArm(buf []uint32, insn uint32) int {
	return emit(buf, insn)
}

func emitThumb(buf []uint16, insn uint16) int {
	return emit(buf, insn)
}

// Thumb-2 wide instructions are stored high half-word first
func emitThumbWide(buf []uint16, insn uint32) int {
	return emit(buf, uint16(bits(insn, 16, 31)), uint16(bits(insn, 0, 15)))
}

// Moves the width least significant bits of value to position
func encode[V constraints.Integer](value V, width int, position int) uint32 {
	return utils.EncodeField(uint32(value), width, position)
}

func encode16[V constraints.Integer](value V, width int, position int) uint16 {
	return utils.EncodeField(uint16(value), width, position)
}

func bit(value uint32, n int) uint32 {
	return utils.Bit(value, n)
}

func bits(value uint32, lo int, hi int) uint32 {
	return utils.BitRange(value, lo, hi)
}

func flag(value bool) uint32 {
	if value {
		return 1
	}
	return 0
}

func abs(value int32) uint32 {
	if value < 0 {
		return uint32(-value)
	}
	return uint32(value)
}
