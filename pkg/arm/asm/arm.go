package asm

import (
	"math/bits"
	"strings"

	"github.com/Manu343726/armemit/pkg/arm/branch"
	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
)

var armEncoders = encoderTable[uint32]{
	"b":     {conditional: true, size: fixedSize(1), emit: armBranch(insn.EmitArmB)},
	"bl":    {conditional: true, size: fixedSize(1), emit: armBranch(insn.EmitArmBL)},
	"blx":   {conditional: true, size: fixedSize(1), emit: armBlx},
	"mov":   {conditional: true, size: fixedSize(1), emit: armMov},
	"movw":  {conditional: true, size: fixedSize(1), emit: armMovWide(insn.EmitArmMovw)},
	"movt":  {conditional: true, size: fixedSize(1), emit: armMovWide(insn.EmitArmMovt)},
	"mov32": {size: fixedSize(2), emit: armMov32},
	"cmp":   {conditional: true, size: fixedSize(1), emit: armCmp},
	"bic":   {conditional: true, size: fixedSize(1), emit: armBic},
	"add":   {conditional: true, size: fixedSize(1), emit: armAdd},
	"push":  {conditional: true, size: fixedSize(1), emit: armStack(insn.EmitArmPushList, insn.EmitArmPushOne)},
	"pop":   {conditional: true, size: fixedSize(1), emit: armStack(insn.EmitArmPopList, insn.EmitArmPopOne)},
	"vpush": {conditional: true, size: fixedSize(1), emit: armVectorStack(insn.EmitArmVpush)},
	"vpop":  {conditional: true, size: fixedSize(1), emit: armVectorStack(insn.EmitArmVpop)},
	"ldrex": {conditional: true, size: fixedSize(1), emit: armLdrex},
	"strex": {conditional: true, size: fixedSize(1), emit: armStrex},
	"dmb":   {size: fixedSize(1), emit: armDmb},
	"mrs":   {conditional: true, size: fixedSize(1), emit: armMrs},
	"msr":   {conditional: true, size: fixedSize(1), emit: armMsr},
	"str":   {conditional: true, size: fixedSize(1), emit: armStr},
}

// Relative immediate of an ARM branch to ARM code
func (c *context) armBranchOffset(to uint32) (uint32, error) {
	if to%4 != 0 {
		return 0, utils.MakeError(ErrMisaligned, "ARM branch target %#x is not word aligned", to)
	}

	if !branch.ArmIsReachable(c.address, to) {
		return 0, utils.MakeError(ErrUnreachable, "%#x from %#x", to, c.address)
	}

	return branch.ArmBranchRelativeDistance(c.address, to), nil
}

func armBranch(emit func(buf []uint32, cond insn.ConditionCode, rel uint32) int) emitFunc[uint32] {
	return func(c *context, s *statement, buf []uint32) (int, error) {
		if err := s.expectOperands(1); err != nil {
			return 0, err
		}

		to, err := c.target(s.operands[0])
		if err != nil {
			return 0, err
		}

		rel, err := c.armBranchOffset(to)
		if err != nil {
			return 0, err
		}

		return encoded(emit(buf, s.cond, rel))
	}
}

// blx rm, or blx to Thumb code at an absolute address or label
func armBlx(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(1); err != nil {
		return 0, err
	}

	if rm, err := insn.ParseRegister(s.operands[0]); err == nil {
		return encoded(insn.EmitArmBLX(buf, s.cond, insn.Reg(rm)))
	}

	if s.cond != insn.CC_AL {
		return 0, utils.MakeError(ErrOperand, "blx to an immediate target cannot be conditional")
	}

	to, err := c.target(s.operands[0])
	if err != nil {
		return 0, err
	}

	// The mode bit of a Thumb address is not part of the offset
	to &^= 1

	if !branch.ArmIsReachable(c.address, to) {
		return 0, utils.MakeError(ErrUnreachable, "%#x from %#x", to, c.address)
	}

	return encoded(insn.EmitArmBLX(buf, insn.CC_AL, insn.Imm(branch.ArmBranchRelativeDistance(c.address, to))))
}

// Parses a data processing immediate as a rotated 8 bit constant
func armModifiedImmediate(text string) (uint32, error) {
	value, err := parseImmediate(text)
	if err != nil {
		return 0, err
	}

	imm12, ok := insn.EncodeArmImmediate(value)
	if !ok {
		return 0, utils.MakeError(ErrOutOfRange, "'%v' is not an 8 bit constant rotated by an even amount", text)
	}

	return imm12, nil
}

func armMov(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	if rm, err := insn.ParseRegister(s.operands[1]); err == nil {
		return encoded(insn.EmitArmMov(buf, s.cond, rd, insn.Reg(rm)))
	}

	imm12, err := armModifiedImmediate(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmMov(buf, s.cond, rd, insn.Imm(imm12)))
}

func armMovWide(emit func(buf []uint32, cond insn.ConditionCode, rd insn.Register, operand insn.Operand) int) emitFunc[uint32] {
	return func(c *context, s *statement, buf []uint32) (int, error) {
		if err := s.expectOperands(2); err != nil {
			return 0, err
		}

		rd, err := parseRegister(s.operands[0])
		if err != nil {
			return 0, err
		}

		imm16, err := c.immediate(s.operands[1], 16)
		if err != nil {
			return 0, err
		}

		return encoded(emit(buf, s.cond, rd, insn.Imm(imm16)))
	}
}

func armMov32(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	value, err := parseImmediate(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmMov32(buf, rd, value))
}

func armCmp(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rn, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	imm12, err := armModifiedImmediate(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmCmp(buf, s.cond, rn, insn.Imm(imm12)))
}

func armBic(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(3); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rn, err := parseRegister(s.operands[1])
	if err != nil {
		return 0, err
	}

	imm12, err := armModifiedImmediate(s.operands[2])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmBic(buf, s.cond, rd, rn, insn.Imm(imm12)))
}

func armAdd(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(3); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rn, err := parseRegister(s.operands[1])
	if err != nil {
		return 0, err
	}

	imm8, err := c.immediate(s.operands[2], 8)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmAdd(buf, s.cond, rd, rn, insn.Imm(imm8)))
}

// PUSH and POP use the single register encoding when the list has one register
func armStack(
	list func(buf []uint32, cond insn.ConditionCode, list insn.RegisterList) int,
	one func(buf []uint32, cond insn.ConditionCode, rt insn.Register) int,
) emitFunc[uint32] {
	return func(c *context, s *statement, buf []uint32) (int, error) {
		if err := s.expectOperands(1); err != nil {
			return 0, err
		}

		registers, err := parseRegisterList(s.operands[0])
		if err != nil {
			return 0, err
		}

		if bits.OnesCount16(uint16(registers)) == 1 {
			return encoded(one(buf, s.cond, insn.Register(bits.TrailingZeros16(uint16(registers)))))
		}

		return encoded(list(buf, s.cond, registers))
	}
}

func armVectorStack(emit func(buf []uint32, cond insn.ConditionCode, rs uint8, length uint8) int) emitFunc[uint32] {
	return func(c *context, s *statement, buf []uint32) (int, error) {
		if err := s.expectOperands(1); err != nil {
			return 0, err
		}

		first, count, err := parseVectorList(s.operands[0])
		if err != nil {
			return 0, err
		}

		return encoded(emit(buf, s.cond, first, count))
	}
}

// ARM exclusives only address [rn]
func armExclusiveBase(text string) (insn.Register, error) {
	rn, offset, err := parseMemory(text)
	if err != nil {
		return 0, err
	}

	if offset != 0 {
		return 0, utils.MakeError(ErrOperand, "'%v': ARM exclusive accesses take no offset", text)
	}

	return rn, nil
}

func armLdrex(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rt, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rn, err := armExclusiveBase(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmLdrex(buf, s.cond, rt, rn))
}

func armStrex(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(3); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rt, err := parseRegister(s.operands[1])
	if err != nil {
		return 0, err
	}

	rn, err := armExclusiveBase(s.operands[2])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmStrex(buf, s.cond, rd, rt, rn))
}

// Only the full system barrier is encodable
func checkBarrier(s *statement) error {
	switch {
	case len(s.operands) == 0:
		return nil
	case len(s.operands) == 1 && strings.EqualFold(s.operands[0], "sy"):
		return nil
	}

	return utils.MakeError(ErrOperand, "only 'dmb sy' is supported")
}

func armDmb(c *context, s *statement, buf []uint32) (int, error) {
	if err := checkBarrier(s); err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmDmb(buf))
}

func checkStatusRegister(text string, names ...string) error {
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(text), name) {
			return nil
		}
	}

	return utils.MakeError(ErrOperand, "expected %v, got '%v'", strings.Join(names, " or "), text)
}

func armMrs(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	if err := checkStatusRegister(s.operands[1], "apsr", "cpsr"); err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmMrs(buf, s.cond, rd))
}

func armMsr(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	if err := checkStatusRegister(s.operands[0], "apsr_nzcvqg", "cpsr_fs"); err != nil {
		return 0, err
	}

	rn, err := parseRegister(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmMsr(buf, s.cond, rn))
}

func armStr(c *context, s *statement, buf []uint32) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rt, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rn, offset, err := parseMemory(s.operands[1])
	if err != nil {
		return 0, err
	}

	magnitude := uint32(offset)
	if offset < 0 {
		magnitude = uint32(-offset)
	}

	if _, err := c.fit(magnitude, 12, s.operands[1]); err != nil {
		return 0, err
	}

	return encoded(insn.EmitArmStr(buf, s.cond, rt, rn, insn.Mem(insn.AddressingMode_Offset, offset)))
}
