package insn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitThumb(t *testing.T) {
	tests := []struct {
		name     string
		emit     func(buf []uint16) int
		expected uint16
	}{
		{name: "beq rel 0", emit: func(buf []uint16) int { return EmitThumbB(buf, CC_EQ, 0) }, expected: 0xD000},
		{name: "bne backwards", emit: func(buf []uint16) int { return EmitThumbB(buf, CC_NE, uint32(0xFFFFFFFC)) }, expected: 0xD1FE},
		{name: "bgt forward", emit: func(buf []uint16) int { return EmitThumbB(buf, CC_GT, 0x10) }, expected: 0xDC08},
		{name: "blx register", emit: func(buf []uint16) int { return EmitThumbBLX(buf, Reg(R3)) }, expected: 0x4798},
		{name: "mov low registers", emit: func(buf []uint16) int { return EmitThumbMov(buf, R0, Reg(R1)) }, expected: 0x4608},
		{name: "mov to high register", emit: func(buf []uint16) int { return EmitThumbMov(buf, R8, Reg(R0)) }, expected: 0x4680},
		{name: "mov from sp", emit: func(buf []uint16) int { return EmitThumbMov(buf, R0, Reg(SP)) }, expected: 0x4668},
		{name: "cmp", emit: func(buf []uint16) int { return EmitThumbCmp(buf, R0, Imm(1)) }, expected: 0x2801},
		{name: "push with lr", emit: func(buf []uint16) int { return EmitThumbPush(buf, 1<<4, true) }, expected: 0xB510},
		{name: "pop with pc", emit: func(buf []uint16) int { return EmitThumbPop(buf, 1<<4, true) }, expected: 0xBD10},
		{name: "push low registers only", emit: func(buf []uint16) int { return EmitThumbPush(buf, 0xFF, false) }, expected: 0xB4FF},
		{name: "str", emit: func(buf []uint16) int { return EmitThumbStr(buf, R0, R1, Imm(1)) }, expected: 0x6048},
		{name: "add sp", emit: func(buf []uint16) int { return EmitThumbAddSp(buf, Imm(16)) }, expected: 0xB004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]uint16, 1)
			require.Equal(t, ThumbUnits, tt.emit(buf))
			assert.Equalf(t, tt.expected, buf[0], "got %#04x, expected %#04x", buf[0], tt.expected)
		})
	}
}

func TestEmitThumb_WrongOperandKind(t *testing.T) {
	tests := []struct {
		name string
		emit func(buf []uint16) int
	}{
		{name: "mov immediate", emit: func(buf []uint16) int { return EmitThumbMov(buf, R0, Imm(1)) }},
		{name: "mov nil", emit: func(buf []uint16) int { return EmitThumbMov(buf, R0, nil) }},
		{name: "cmp register", emit: func(buf []uint16) int { return EmitThumbCmp(buf, R0, Reg(R1)) }},
		{name: "str register", emit: func(buf []uint16) int { return EmitThumbStr(buf, R0, R1, Reg(R2)) }},
		{name: "str memory", emit: func(buf []uint16) int { return EmitThumbStr(buf, R0, R1, Mem(AddressingMode_Offset, 4)) }},
		{name: "add sp register", emit: func(buf []uint16) int { return EmitThumbAddSp(buf, Reg(R1)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []uint16{0xBEEF}
			assert.Zero(t, tt.emit(buf))
			assert.Equal(t, uint16(0xBEEF), buf[0])
		})
	}
}

func TestEmitThumb_ShortBuffer(t *testing.T) {
	assert.Zero(t, EmitThumbB(nil, CC_EQ, 0))
	assert.Zero(t, EmitThumbPush([]uint16{}, 0x0F, true))
	assert.Zero(t, EmitThumbBLX(nil, Reg(R0)))
}
