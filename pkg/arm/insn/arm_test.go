package insn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type armEncodingTest struct {
	name     string
	emit     func(buf []uint32) int
	expected uint32
}

func runArmEncodingTests(t *testing.T, tests []armEncodingTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]uint32, 1)
			require.Equal(t, ArmUnits, tt.emit(buf))
			assert.Equalf(t, tt.expected, buf[0], "got %#08x, expected %#08x", buf[0], tt.expected)
		})
	}
}

func TestEmitArmBranch(t *testing.T) {
	runArmEncodingTests(t, []armEncodingTest{
		{
			name:     "b rel 8",
			emit:     func(buf []uint32) int { return EmitArmB(buf, CC_AL, 8) },
			expected: 0xEA000002,
		},
		{
			name:     "bl rel 8",
			emit:     func(buf []uint32) int { return EmitArmBL(buf, CC_AL, 8) },
			expected: 0xEB000002,
		},
		{
			name:     "bne backwards",
			emit:     func(buf []uint32) int { return EmitArmB(buf, CC_NE, uint32(0xFFFFFFF8)) },
			expected: 0x1AFFFFFE,
		},
		{
			name:     "blx immediate word aligned",
			emit:     func(buf []uint32) int { return EmitArmBLX(buf, CC_AL, Imm(8)) },
			expected: 0xFA000002,
		},
		{
			name:     "blx immediate half-word aligned sets H",
			emit:     func(buf []uint32) int { return EmitArmBLX(buf, CC_AL, Imm(10)) },
			expected: 0xFB000002,
		},
		{
			name:     "blx immediate ignores the condition",
			emit:     func(buf []uint32) int { return EmitArmBLX(buf, CC_EQ, Imm(8)) },
			expected: 0xFA000002,
		},
		{
			name:     "blx register",
			emit:     func(buf []uint32) int { return EmitArmBLX(buf, CC_AL, Reg(R3)) },
			expected: 0xE12FFF33,
		},
		{
			name:     "immediate is truncated to 24 bits",
			emit:     func(buf []uint32) int { return EmitArmB(buf, CC_AL, 0x0C000004) },
			expected: 0xEA000001,
		},
	})
}

func TestEmitArmBranch_UnencodableVariants(t *testing.T) {
	tests := []struct {
		name    string
		operand Operand
		link    bool
		xchg    bool
	}{
		{name: "immediate exchange without link", operand: Imm(8), link: false, xchg: true},
		{name: "register without exchange", operand: Reg(R0), link: true, xchg: false},
		{name: "register without link", operand: Reg(R0), link: false, xchg: true},
		{name: "register plain branch", operand: Reg(R0), link: false, xchg: false},
		{name: "memory operand", operand: Mem(AddressingMode_Offset, 4), link: true, xchg: true},
		{name: "nil operand", operand: nil, link: true, xchg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []uint32{0xCAFEBABE}
			assert.Zero(t, EmitArmBranch(buf, CC_AL, tt.operand, tt.link, tt.xchg))
			assert.Equal(t, uint32(0xCAFEBABE), buf[0])
		})
	}
}

func TestEmitArmDataProcessing(t *testing.T) {
	runArmEncodingTests(t, []armEncodingTest{
		{
			name:     "mov immediate",
			emit:     func(buf []uint32) int { return EmitArmMov(buf, CC_AL, R0, Imm(1)) },
			expected: 0xE3A00001,
		},
		{
			name:     "mov register",
			emit:     func(buf []uint32) int { return EmitArmMov(buf, CC_AL, R0, Reg(R1)) },
			expected: 0xE1A00001,
		},
		{
			name:     "moveq register",
			emit:     func(buf []uint32) int { return EmitArmMov(buf, CC_EQ, LR, Reg(IP)) },
			expected: 0x01A0E00C,
		},
		{
			name:     "movw",
			emit:     func(buf []uint32) int { return EmitArmMovw(buf, CC_AL, R0, Imm(0x5678)) },
			expected: 0xE3050678,
		},
		{
			name:     "movt",
			emit:     func(buf []uint32) int { return EmitArmMovt(buf, CC_AL, R0, Imm(0x1234)) },
			expected: 0xE3410234,
		},
		{
			name:     "cmp",
			emit:     func(buf []uint32) int { return EmitArmCmp(buf, CC_AL, R1, Imm(5)) },
			expected: 0xE3510005,
		},
		{
			name:     "bic",
			emit:     func(buf []uint32) int { return EmitArmBic(buf, CC_AL, R0, R0, Imm(1)) },
			expected: 0xE3C00001,
		},
		{
			name:     "add",
			emit:     func(buf []uint32) int { return EmitArmAdd(buf, CC_AL, R0, R1, Imm(4)) },
			expected: 0xE2810004,
		},
		{
			name:     "add sp",
			emit:     func(buf []uint32) int { return EmitArmAdd(buf, CC_AL, SP, SP, Imm(0x40)) },
			expected: 0xE28DD040,
		},
	})
}

func TestEmitArmDataProcessing_WrongOperandKind(t *testing.T) {
	tests := []struct {
		name string
		emit func(buf []uint32) int
	}{
		{name: "mov memory", emit: func(buf []uint32) int { return EmitArmMov(buf, CC_AL, R0, Mem(AddressingMode_Offset, 0)) }},
		{name: "movw register", emit: func(buf []uint32) int { return EmitArmMovw(buf, CC_AL, R0, Reg(R1)) }},
		{name: "movt register", emit: func(buf []uint32) int { return EmitArmMovt(buf, CC_AL, R0, Reg(R1)) }},
		{name: "cmp register", emit: func(buf []uint32) int { return EmitArmCmp(buf, CC_AL, R0, Reg(R1)) }},
		{name: "bic register", emit: func(buf []uint32) int { return EmitArmBic(buf, CC_AL, R0, R0, Reg(R1)) }},
		{name: "add register", emit: func(buf []uint32) int { return EmitArmAdd(buf, CC_AL, R0, R0, Reg(R1)) }},
		{name: "str immediate", emit: func(buf []uint32) int { return EmitArmStr(buf, CC_AL, R0, SP, Imm(4)) }},
		{name: "str unsupported addressing mode", emit: func(buf []uint32) int { return EmitArmStr(buf, CC_AL, R0, SP, Mem(AddressingMode(1), 4)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []uint32{0xCAFEBABE}
			assert.Zero(t, tt.emit(buf))
			assert.Equal(t, uint32(0xCAFEBABE), buf[0])
		})
	}
}

func TestEmitArmStack(t *testing.T) {
	runArmEncodingTests(t, []armEncodingTest{
		{
			name:     "push list",
			emit:     func(buf []uint32) int { return EmitArmPushList(buf, CC_AL, Registers(R4, LR)) },
			expected: 0xE92D4010,
		},
		{
			name:     "pop list",
			emit:     func(buf []uint32) int { return EmitArmPopList(buf, CC_AL, Registers(R4, PC)) },
			expected: 0xE8BD8010,
		},
		{
			name:     "push all core registers",
			emit:     func(buf []uint32) int { return EmitArmPushList(buf, CC_AL, RegisterListMask(0, 16, 0)) },
			expected: 0xE92DFFFF,
		},
		{
			name:     "push one",
			emit:     func(buf []uint32) int { return EmitArmPushOne(buf, CC_AL, R0) },
			expected: 0xE52D0004,
		},
		{
			name:     "pop one",
			emit:     func(buf []uint32) int { return EmitArmPopOne(buf, CC_AL, R0) },
			expected: 0xE49D0004,
		},
		{
			name:     "vpush d8-d15",
			emit:     func(buf []uint32) int { return EmitArmVpush(buf, CC_AL, 8, 8) },
			expected: 0xED2D8B10,
		},
		{
			name:     "vpush d16-d31",
			emit:     func(buf []uint32) int { return EmitArmVpush(buf, CC_AL, 16, 16) },
			expected: 0xED6D0B20,
		},
		{
			name:     "vpop d8-d15",
			emit:     func(buf []uint32) int { return EmitArmVpop(buf, CC_AL, 8, 8) },
			expected: 0xECBD8B10,
		},
	})
}

func TestEmitArmSystem(t *testing.T) {
	runArmEncodingTests(t, []armEncodingTest{
		{
			name:     "ldrex",
			emit:     func(buf []uint32) int { return EmitArmLdrex(buf, CC_AL, R0, R1) },
			expected: 0xE1910F9F,
		},
		{
			name:     "strex",
			emit:     func(buf []uint32) int { return EmitArmStrex(buf, CC_AL, R2, R0, R1) },
			expected: 0xE1812F90,
		},
		{
			name:     "dmb sy",
			emit:     func(buf []uint32) int { return EmitArmDmb(buf) },
			expected: 0xF57FF05F,
		},
		{
			name:     "mrs",
			emit:     func(buf []uint32) int { return EmitArmMrs(buf, CC_AL, R0) },
			expected: 0xE10F0000,
		},
		{
			name:     "msr",
			emit:     func(buf []uint32) int { return EmitArmMsr(buf, CC_AL, R0) },
			expected: 0xE12CF000,
		},
		{
			name:     "str negative offset",
			emit:     func(buf []uint32) int { return EmitArmStr(buf, CC_AL, R0, SP, Mem(AddressingMode_Offset, -4)) },
			expected: 0xE50D0004,
		},
		{
			name:     "str positive offset",
			emit:     func(buf []uint32) int { return EmitArmStr(buf, CC_AL, R1, R2, Mem(AddressingMode_Offset, 8)) },
			expected: 0xE5821008,
		},
	})
}

func TestEmitArm_ShortBuffer(t *testing.T) {
	assert.Zero(t, EmitArmB(nil, CC_AL, 8))
	assert.Zero(t, EmitArmMov([]uint32{}, CC_AL, R0, Imm(1)))
	assert.Zero(t, EmitArmDmb(make([]uint32, 0, 4)))
}

func TestEmitArmMov32(t *testing.T) {
	for _, value := range []uint32{0, 0x12345678, 0xFFFFFFFF, 0x0000FFFF, 0xFFFF0000} {
		buf := make([]uint32, 2)
		require.Equal(t, 2*ArmUnits, EmitArmMov32(buf, R7, value))

		assert.Equal(t, ARM_MOVW, buf[0]&0x0FF00000)
		assert.Equal(t, ARM_MOVT, buf[1]&0x0FF00000)
		assert.Equal(t, uint32(R7), bits(buf[0], 12, 15))
		assert.Equal(t, uint32(R7), bits(buf[1], 12, 15))
		assert.Equalf(t, value, CombineConstant(decodeArmMovWide(buf[0]), decodeArmMovWide(buf[1])), "value %#x", value)
	}
}

func TestEmitArmMov32_ShortBuffer(t *testing.T) {
	buf := []uint32{0xCAFEBABE}
	assert.Zero(t, EmitArmMov32(buf, R0, 0x12345678))
	assert.Equal(t, uint32(0xCAFEBABE), buf[0])
}

// Extracts imm4:imm12 from an ARM MOVW/MOVT word
func decodeArmMovWide(word uint32) uint32 {
	return bits(word, 16, 19)<<12 | bits(word, 0, 11)
}
