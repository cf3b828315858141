package asm

import (
	"math/bits"

	"github.com/Manu343726/armemit/pkg/arm/branch"
	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
)

var thumbEncoders = encoderTable[uint16]{
	"b":      {conditional: true, size: fixedSize(insn.ThumbUnits), emit: thumbBranchShort},
	"b.w":    {conditional: true, size: fixedSize(insn.ThumbWideUnits), emit: thumbBranchWide},
	"bl":     {size: fixedSize(insn.ThumbWideUnits), emit: thumbBl},
	"blx":    {size: thumbBlxSize, emit: thumbBlx},
	"mov":    {size: fixedSize(insn.ThumbUnits), emit: thumbMov},
	"movw":   {size: fixedSize(insn.ThumbWideUnits), emit: thumbMovWide(insn.EmitThumbMovw)},
	"movt":   {size: fixedSize(insn.ThumbWideUnits), emit: thumbMovWide(insn.EmitThumbMovt)},
	"mov32":  {size: fixedSize(2 * insn.ThumbWideUnits), emit: thumbMov32},
	"cmp":    {size: fixedSize(insn.ThumbUnits), emit: thumbCmp},
	"cmp.w":  {size: fixedSize(insn.ThumbWideUnits), emit: thumbCmpWide},
	"bic":    {size: fixedSize(insn.ThumbWideUnits), emit: thumbBic},
	"bic.w":  {size: fixedSize(insn.ThumbWideUnits), emit: thumbBic},
	"push":   {size: thumbStackSize(thumbPushShortList), emit: thumbPush},
	"push.w": {size: fixedSize(insn.ThumbWideUnits), emit: thumbPush},
	"pop":    {size: thumbStackSize(thumbPopShortList), emit: thumbPop},
	"pop.w":  {size: fixedSize(insn.ThumbWideUnits), emit: thumbPop},
	"vpush":  {size: fixedSize(insn.ThumbWideUnits), emit: thumbVectorStack(insn.EmitThumbVpush)},
	"vpop":   {size: fixedSize(insn.ThumbWideUnits), emit: thumbVectorStack(insn.EmitThumbVpop)},
	"ldrex":  {size: fixedSize(insn.ThumbWideUnits), emit: thumbLdrex},
	"strex":  {size: fixedSize(insn.ThumbWideUnits), emit: thumbStrex},
	"dmb":    {size: fixedSize(insn.ThumbWideUnits), emit: thumbDmb},
	"mrs":    {size: fixedSize(insn.ThumbWideUnits), emit: thumbMrs},
	"msr":    {size: fixedSize(insn.ThumbWideUnits), emit: thumbMsr},
	"str":    {size: fixedSize(insn.ThumbUnits), emit: thumbStr},
	"add":    {size: fixedSize(insn.ThumbUnits), emit: thumbAddSp},
}

// Registers the 16 bit PUSH and POP can transfer
const (
	thumbPushShortList = insn.RegisterList(0xFF | 1<<insn.LR)
	thumbPopShortList  = insn.RegisterList(0xFF | 1<<insn.PC)
	thumbWideList      = insn.RegisterList(0x1FFF)
)

// Relative immediate of a Thumb branch to Thumb code, checked against a signed
// immediate of the given bits
func (c *context) thumbBranchOffset(to uint32, width int) (uint32, error) {
	rel := branch.ThumbBranchRelativeDistance(c.address, to)

	if !branch.FitsSigned(rel, width) {
		return 0, utils.MakeError(ErrUnreachable, "%#x from %#x with a %v bit offset", to, c.address, width)
	}

	return rel, nil
}

func (c *context) thumbTarget(s *statement, width int) (uint32, error) {
	if err := s.expectOperands(1); err != nil {
		return 0, err
	}

	to, err := c.target(s.operands[0])
	if err != nil {
		return 0, err
	}

	if width == 25 && !branch.ThumbIsReachable(c.address, to) {
		return 0, utils.MakeError(ErrUnreachable, "%#x from %#x", to, c.address)
	}

	return c.thumbBranchOffset(to, width)
}

// b<cond> label: the 16 bit conditional branch, +/-256 bytes
func thumbBranchShort(c *context, s *statement, buf []uint16) (int, error) {
	if !s.hasCond {
		// Unconditional branches always use B.W
		return 0, utils.MakeError(ErrSyntax, "use b.w for unconditional Thumb branches")
	}

	if s.cond >= insn.CC_AL {
		return 0, utils.MakeError(ErrOperand, "condition %v is not valid for a conditional branch", s.cond)
	}

	rel, err := c.thumbTarget(s, 9)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbB(buf, s.cond, rel))
}

// b.w label (+/-16MB) and b<cond>.w label (+/-1MB)
func thumbBranchWide(c *context, s *statement, buf []uint16) (int, error) {
	if !s.hasCond || s.cond == insn.CC_AL {
		rel, err := c.thumbTarget(s, 25)
		if err != nil {
			return 0, err
		}

		return encoded(insn.EmitThumbBW(buf, rel))
	}

	if s.cond == insn.CC_NV {
		return 0, utils.MakeError(ErrOperand, "condition %v is not valid for a conditional branch", s.cond)
	}

	rel, err := c.thumbTarget(s, 21)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbBWCond(buf, s.cond, rel))
}

func thumbBl(c *context, s *statement, buf []uint16) (int, error) {
	rel, err := c.thumbTarget(s, 25)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbBL(buf, rel))
}

func thumbBlxSize(s *statement) (int, error) {
	if len(s.operands) == 1 {
		if _, err := insn.ParseRegister(s.operands[0]); err == nil {
			return insn.ThumbUnits, nil
		}
	}

	return insn.ThumbWideUnits, nil
}

// blx rm, or blx to ARM code at an absolute address or label
func thumbBlx(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(1); err != nil {
		return 0, err
	}

	if rm, err := insn.ParseRegister(s.operands[0]); err == nil {
		return encoded(insn.EmitThumbBLX(buf, insn.Reg(rm)))
	}

	to, err := c.target(s.operands[0])
	if err != nil {
		return 0, err
	}

	if to%4 != 0 {
		return 0, utils.MakeError(ErrMisaligned, "ARM target %#x is not word aligned", to)
	}

	if !branch.ThumbToArmIsReachable(c.address, to) {
		return 0, utils.MakeError(ErrUnreachable, "%#x from %#x", to, c.address)
	}

	return encoded(insn.EmitThumbBLX(buf, insn.Imm(branch.ThumbToArmBranchRelativeDistance(c.address, to))))
}

func thumbMov(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rm, err := insn.ParseRegister(s.operands[1])
	if err != nil {
		return 0, utils.MakeError(ErrOperand, "'%v': Thumb mov only moves registers, use movw or mov32 for constants", s.operands[1])
	}

	return encoded(insn.EmitThumbMov(buf, rd, insn.Reg(rm)))
}

func thumbMovWide(emit func(buf []uint16, rd insn.Register, operand insn.Operand) int) emitFunc[uint16] {
	return func(c *context, s *statement, buf []uint16) (int, error) {
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

		return encoded(emit(buf, rd, insn.Imm(imm16)))
	}
}

func thumbMov32(c *context, s *statement, buf []uint16) (int, error) {
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

	return encoded(insn.EmitThumbMov32(buf, rd, value))
}

func thumbCmp(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rn, err := parseLowRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	imm8, err := c.immediate(s.operands[1], 8)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbCmp(buf, rn, insn.Imm(imm8)))
}

// Parses a Thumb-2 data processing immediate as a modified immediate constant
func thumbModifiedImmediate(text string) (uint32, error) {
	value, err := parseImmediate(text)
	if err != nil {
		return 0, err
	}

	imm12, ok := insn.EncodeThumbImmediate(value)
	if !ok {
		return 0, utils.MakeError(ErrOutOfRange, "'%v' has no Thumb-2 modified immediate form", text)
	}

	return imm12, nil
}

func thumbCmpWide(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rn, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	imm12, err := thumbModifiedImmediate(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbCmpw(buf, rn, insn.Imm(imm12)))
}

func thumbBic(c *context, s *statement, buf []uint16) (int, error) {
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

	imm12, err := thumbModifiedImmediate(s.operands[2])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbBic(buf, rd, rn, insn.Imm(imm12)))
}

// push and pop pick the 16 bit encoding when the list allows it
func thumbStackSize(short insn.RegisterList) func(s *statement) (int, error) {
	return func(s *statement) (int, error) {
		if err := s.expectOperands(1); err != nil {
			return 0, err
		}

		registers, err := parseRegisterList(s.operands[0])
		if err != nil {
			return 0, err
		}

		if registers&^short == 0 {
			return insn.ThumbUnits, nil
		}

		return insn.ThumbWideUnits, nil
	}
}

// PUSH.W and POP.W are UNPREDICTABLE with less than two registers
func checkWideList(list insn.RegisterList, operand string) error {
	if bits.OnesCount16(uint16(list)) < 2 {
		return utils.MakeError(ErrOperand, "'%v': wide register lists need at least two registers", operand)
	}

	return nil
}

func thumbPush(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(1); err != nil {
		return 0, err
	}

	registers, err := parseRegisterList(s.operands[0])
	if err != nil {
		return 0, err
	}

	lr := registers.Has(insn.LR)
	transferred := registers
	registers = registers.Without(insn.LR)

	if len(buf) == insn.ThumbUnits {
		return encoded(insn.EmitThumbPush(buf, uint8(registers), lr))
	}

	if err := checkWideList(transferred, s.operands[0]); err != nil {
		return 0, err
	}

	if registers&^thumbWideList != 0 {
		return 0, utils.MakeError(ErrOperand, "'%v': push.w cannot transfer sp or pc", s.operands[0])
	}

	return encoded(insn.EmitThumbPushList(buf, registers, lr))
}

func thumbPop(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(1); err != nil {
		return 0, err
	}

	registers, err := parseRegisterList(s.operands[0])
	if err != nil {
		return 0, err
	}

	pc := registers.Has(insn.PC)
	lr := registers.Has(insn.LR)
	transferred := registers
	registers = registers.Without(insn.PC, insn.LR)

	if len(buf) == insn.ThumbUnits {
		return encoded(insn.EmitThumbPop(buf, uint8(registers), pc))
	}

	if err := checkWideList(transferred, s.operands[0]); err != nil {
		return 0, err
	}

	if registers&^thumbWideList != 0 {
		return 0, utils.MakeError(ErrOperand, "'%v': pop.w cannot transfer sp", s.operands[0])
	}

	if pc && lr {
		return 0, utils.MakeError(ErrOperand, "'%v': pop.w cannot load both lr and pc", s.operands[0])
	}

	return encoded(insn.EmitThumbPopList(buf, registers, pc, lr))
}

func thumbVectorStack(emit func(buf []uint16, rs uint8, length uint8) int) emitFunc[uint16] {
	return func(c *context, s *statement, buf []uint16) (int, error) {
		if err := s.expectOperands(1); err != nil {
			return 0, err
		}

		first, count, err := parseVectorList(s.operands[0])
		if err != nil {
			return 0, err
		}

		return encoded(emit(buf, first, count))
	}
}

// Parses [rn, #offset] where the instruction stores offset / scale in width bits
func (c *context) scaledMemory(text string, scale uint32, width int) (insn.Register, uint32, error) {
	rn, offset, err := parseMemory(text)
	if err != nil {
		return 0, 0, err
	}

	if offset < 0 {
		return 0, 0, utils.MakeError(ErrOperand, "'%v': negative offsets are not encodable", text)
	}

	field, err := c.scaled(uint32(offset), scale, width, text)
	if err != nil {
		return 0, 0, err
	}

	return rn, field, nil
}

func thumbLdrex(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rt, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rn, imm8, err := c.scaledMemory(s.operands[1], 4, 8)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbLdrex(buf, rt, rn, insn.Imm(imm8)))
}

func thumbStrex(c *context, s *statement, buf []uint16) (int, error) {
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

	rn, imm8, err := c.scaledMemory(s.operands[2], 4, 8)
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbStrex(buf, rd, rt, rn, insn.Imm(imm8)))
}

func thumbDmb(c *context, s *statement, buf []uint16) (int, error) {
	if err := checkBarrier(s); err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbDmb(buf))
}

func thumbMrs(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rd, err := parseRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	if err := checkStatusRegister(s.operands[1], "apsr"); err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbMrs(buf, rd))
}

func thumbMsr(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	if err := checkStatusRegister(s.operands[0], "apsr_nzcvqg"); err != nil {
		return 0, err
	}

	rn, err := parseRegister(s.operands[1])
	if err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbMsr(buf, rn))
}

func thumbStr(c *context, s *statement, buf []uint16) (int, error) {
	if err := s.expectOperands(2); err != nil {
		return 0, err
	}

	rt, err := parseLowRegister(s.operands[0])
	if err != nil {
		return 0, err
	}

	rn, imm5, err := c.scaledMemory(s.operands[1], 4, 5)
	if err != nil {
		return 0, err
	}

	if !rn.IsLow() {
		return 0, utils.MakeError(ErrOperand, "'%v': base must be a low register (r0-r7)", s.operands[1])
	}

	return encoded(insn.EmitThumbStr(buf, rt, rn, insn.Imm(imm5)))
}

// add sp, #imm and add sp, sp, #imm
func thumbAddSp(c *context, s *statement, buf []uint16) (int, error) {
	operands := s.operands
	if len(operands) == 3 {
		if rn, err := insn.ParseRegister(operands[1]); err != nil || rn != insn.SP {
			return 0, utils.MakeError(ErrOperand, "only 'add sp, sp, #imm' is supported")
		}

		operands = []string{operands[0], operands[2]}
	}

	if len(operands) != 2 {
		return 0, utils.MakeError(ErrSyntax, "'add' expects 'sp, #imm' operands")
	}

	if rd, err := insn.ParseRegister(operands[0]); err != nil || rd != insn.SP {
		return 0, utils.MakeError(ErrOperand, "only 'add sp, #imm' is supported")
	}

	value, err := parseImmediate(operands[1])
	if err != nil {
		return 0, err
	}

	if _, err := c.scaled(value, 4, 7, operands[1]); err != nil {
		return 0, err
	}

	return encoded(insn.EmitThumbAddSp(buf, insn.Imm(value)))
}
