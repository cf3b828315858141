package insn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeArmImmediate(t *testing.T) {
	tests := []struct {
		value    uint32
		expected uint32
		ok       bool
	}{
		{value: 0, expected: 0x000, ok: true},
		{value: 0xFF, expected: 0x0FF, ok: true},
		{value: 0x100, expected: 0xC01, ok: true},
		{value: 0xFF000000, expected: 0x4FF, ok: true},
		{value: 0xF000000F, expected: 0x2FF, ok: true},
		{value: 0x101, ok: false},
		{value: 0x12345678, ok: false},
	}

	for _, tt := range tests {
		imm12, ok := EncodeArmImmediate(tt.value)
		require.Equalf(t, tt.ok, ok, "value %#x", tt.value)

		if ok {
			assert.Equalf(t, tt.expected, imm12, "value %#x", tt.value)
			assert.Equal(t, tt.value, ExpandArmImmediate(imm12))
		}
	}
}

func TestEncodeThumbImmediate(t *testing.T) {
	tests := []struct {
		value    uint32
		expected uint32
		ok       bool
	}{
		{value: 0x000000AB, expected: 0x0AB, ok: true},
		{value: 0x00AB00AB, expected: 0x1AB, ok: true},
		{value: 0xAB00AB00, expected: 0x2AB, ok: true},
		{value: 0xABABABAB, expected: 0x3AB, ok: true},
		{value: 0x80000000, expected: 0x400, ok: true},
		{value: 0x00000100, expected: 0xF80, ok: true},
		{value: 0x0003FC00, expected: 0xB7F, ok: true},
		{value: 0x00000101, ok: false},
		{value: 0x12345678, ok: false},
	}

	for _, tt := range tests {
		imm12, ok := EncodeThumbImmediate(tt.value)
		require.Equalf(t, tt.ok, ok, "value %#x", tt.value)

		if ok {
			assert.Equalf(t, tt.expected, imm12, "value %#x", tt.value)

			expanded, valid := ExpandThumbImmediate(imm12)
			assert.True(t, valid)
			assert.Equal(t, tt.value, expanded)
		}
	}
}

func TestExpandThumbImmediate_Unpredictable(t *testing.T) {
	for _, imm12 := range []uint32{0x100, 0x200, 0x300} {
		_, valid := ExpandThumbImmediate(imm12)
		assert.Falsef(t, valid, "imm12 %#x", imm12)
	}
}
