package insn

// EmitArmBranch encodes B, BL and BLX.
//
// With an immediate operand the value is the branch offset already adjusted
// for the pipeline (see branch.ArmBranchRelativeDistance):
//   - link and exchange: BLX (immediate). The condition is forced to NV, which
//     is how the architecture tells BLX apart from BL, and the H bit (24) comes
//     from bit 1 of the offset since the target is half-word aligned Thumb code.
//     The cond argument is ignored in this case.
//   - link only: BL
//   - neither: B
//
// With a register operand only link and exchange together are encodable
// (BLX rm). Every other combination returns 0.
func EmitArmBranch(buf []uint32, cond ConditionCode, operand Operand, link bool, exchange bool) int {
	switch op := operand.(type) {
	case ImmediateOperand:
		imm := uint32(op)
		l := flag(link)

		if exchange {
			if !link {
				return 0
			}

			cond = CC_NV
			l = bit(imm, 1)
		}

		return emitArm(buf, ARM_B|
			encode(l, 1, 24)|
			encode(cond, 4, 28)|
			encode(imm>>2, 24, 0))
	case RegisterOperand:
		if !link || !exchange {
			// Only BLX has a register operand
			return 0
		}

		return emitArm(buf, ARM_BLX|
			encode(cond, 4, 28)|
			encode(op, 4, 0))
	}

	return 0
}

// EmitArmB encodes B with an adjusted relative offset
func EmitArmB(buf []uint32, cond ConditionCode, rel uint32) int {
	return EmitArmBranch(buf, cond, Imm(rel), false, false)
}

// EmitArmBL encodes BL with an adjusted relative offset
func EmitArmBL(buf []uint32, cond ConditionCode, rel uint32) int {
	return EmitArmBranch(buf, cond, Imm(rel), true, false)
}

// EmitArmBLX encodes BLX with either an adjusted relative offset or a register
func EmitArmBLX(buf []uint32, cond ConditionCode, operand Operand) int {
	return EmitArmBranch(buf, cond, operand, true, true)
}

// EmitArmMov encodes MOV rd, #imm12 or MOV rd, rm
func EmitArmMov(buf []uint32, cond ConditionCode, rd Register, operand Operand) int {
	switch op := operand.(type) {
	case ImmediateOperand:
		return emitArm(buf, ARM_MOV|
			encode(cond, 4, 28)|
			// Immediate form
			encode(1, 1, 25)|
			encode(rd, 4, 12)|
			encode(bits(uint32(op), 0, 11), 12, 0))
	case RegisterOperand:
		return emitArm(buf, ARM_MOV|
			encode(cond, 4, 28)|
			encode(rd, 4, 12)|
			encode(op, 4, 0))
	}

	return 0
}

// ARM MOVW and MOVT share the imm4:imm12 split
func armMovWide(buf []uint32, opcode uint32, cond ConditionCode, rd Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitArm(buf, opcode|
		encode(cond, 4, 28)|
		encode(bits(uint32(imm), 12, 15), 4, 16)|
		encode(rd, 4, 12)|
		encode(bits(uint32(imm), 0, 11), 12, 0))
}

// EmitArmMovw encodes MOVW rd, #imm16, writing the low half of rd and clearing the high half
func EmitArmMovw(buf []uint32, cond ConditionCode, rd Register, operand Operand) int {
	return armMovWide(buf, ARM_MOVW, cond, rd, operand)
}

// EmitArmMovt encodes MOVT rd, #imm16, writing the high half of rd
func EmitArmMovt(buf []uint32, cond ConditionCode, rd Register, operand Operand) int {
	return armMovWide(buf, ARM_MOVT, cond, rd, operand)
}

// EmitArmCmp encodes CMP rn, #imm12
func EmitArmCmp(buf []uint32, cond ConditionCode, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitArm(buf, ARM_CMP|
		encode(cond, 4, 28)|
		encode(rn, 4, 16)|
		encode(bits(uint32(imm), 0, 11), 12, 0))
}

// EmitArmBic encodes BIC rd, rn, #imm12
func EmitArmBic(buf []uint32, cond ConditionCode, rd Register, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitArm(buf, ARM_BIC|
		encode(cond, 4, 28)|
		encode(rn, 4, 16)|
		encode(rd, 4, 12)|
		encode(bits(uint32(imm), 0, 11), 12, 0))
}

// EmitArmAdd encodes ADD rd, rn, #imm8 without rotation and without updating the flags
func EmitArmAdd(buf []uint32, cond ConditionCode, rd Register, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitArm(buf, ARM_ADD|
		// Immediate form
		encode(1, 1, 25)|
		encode(cond, 4, 28)|
		// S
		encode(0, 1, 20)|
		encode(rn, 4, 16)|
		encode(rd, 4, 12)|
		encode(imm, 8, 0))
}

// EmitArmPushList encodes PUSH {list}
func EmitArmPushList(buf []uint32, cond ConditionCode, list RegisterList) int {
	return emitArm(buf, ARM_PUSH_A1|
		encode(cond, 4, 28)|
		encode(list, 16, 0))
}

// EmitArmPushOne encodes PUSH {rt}, the single register form the list form cannot express
func EmitArmPushOne(buf []uint32, cond ConditionCode, rt Register) int {
	return emitArm(buf, ARM_PUSH_A2|
		encode(cond, 4, 28)|
		encode(rt, 4, 12))
}

// EmitArmPopList encodes POP {list}
func EmitArmPopList(buf []uint32, cond ConditionCode, list RegisterList) int {
	return emitArm(buf, ARM_POP_A1|
		encode(cond, 4, 28)|
		encode(list, 16, 0))
}

// EmitArmPopOne encodes POP {rt}
func EmitArmPopOne(buf []uint32, cond ConditionCode, rt Register) int {
	return emitArm(buf, ARM_POP_A2|
		encode(cond, 4, 28)|
		encode(rt, 4, 12))
}

// VPUSH and VPOP: D:Vd is the first double-word register, imm8 the number of
// single-word slots
func armVectorStack(buf []uint32, opcode uint32, cond ConditionCode, rs uint8, length uint8) int {
	return emitArm(buf, opcode|
		encode(cond, 4, 28)|
		encode(bit(uint32(rs), 4), 1, 22)|
		encode(bits(uint32(rs), 0, 3), 4, 12)|
		encode(2*uint32(length), 8, 0))
}

// EmitArmVpush encodes VPUSH {d(rs)-d(rs+length-1)}
func EmitArmVpush(buf []uint32, cond ConditionCode, rs uint8, length uint8) int {
	return armVectorStack(buf, ARM_VPUSH, cond, rs, length)
}

// EmitArmVpop encodes VPOP {d(rs)-d(rs+length-1)}
func EmitArmVpop(buf []uint32, cond ConditionCode, rs uint8, length uint8) int {
	return armVectorStack(buf, ARM_VPOP, cond, rs, length)
}

// EmitArmLdrex encodes LDREX rt, [rn]
func EmitArmLdrex(buf []uint32, cond ConditionCode, rt Register, rn Register) int {
	return emitArm(buf, ARM_LDREX|
		encode(cond, 4, 28)|
		encode(rn, 4, 16)|
		encode(rt, 4, 12))
}

// EmitArmStrex encodes STREX rd, rt, [rn]. rd receives 0 if the store succeeded.
func EmitArmStrex(buf []uint32, cond ConditionCode, rd Register, rt Register, rn Register) int {
	return emitArm(buf, ARM_STREX|
		encode(cond, 4, 28)|
		encode(rn, 4, 16)|
		encode(rd, 4, 12)|
		encode(rt, 4, 0))
}

// EmitArmDmb encodes DMB SY
func EmitArmDmb(buf []uint32) int {
	return emitArm(buf, ARM_DMB|encode(barrierFullSystem, 4, 0))
}

// EmitArmMrs encodes MRS rd, APSR
func EmitArmMrs(buf []uint32, cond ConditionCode, rd Register) int {
	return emitArm(buf, ARM_MRS|
		encode(cond, 4, 28)|
		encode(rd, 4, 12))
}

// EmitArmMsr encodes MSR APSR_nzcvqg, rn
func EmitArmMsr(buf []uint32, cond ConditionCode, rn Register) int {
	return emitArm(buf, ARM_MSR|
		encode(cond, 4, 28)|
		encode(msrMaskFlags, 2, 18)|
		encode(rn, 4, 0))
}

// EmitArmStr encodes STR rt, [rn, #+/-imm12]. Only memory operands in offset
// addressing mode are encodable.
func EmitArmStr(buf []uint32, cond ConditionCode, rt Register, rn Register, operand Operand) int {
	mem, ok := operand.(MemoryOperand)
	if !ok {
		return 0
	}

	switch mem.Mode {
	case AddressingMode_Offset:
		return emitArm(buf, ARM_STR|
			encode(cond, 4, 28)|
			// P
			encode(1, 1, 24)|
			// U
			encode(flag(mem.Index >= 0), 1, 23)|
			encode(rn, 4, 16)|
			encode(rt, 4, 12)|
			encode(bits(abs(mem.Index), 0, 11), 12, 0))
	}

	return 0
}

// EmitArmMov32 loads a 32 bit constant into rd with MOVW followed by MOVT.
// Returns 2, or 0 if buf has room for less than two words.
func EmitArmMov32(buf []uint32, rd Register, value uint32) int {
	if len(buf) < 2*ArmUnits {
		return 0
	}

	low, high := SplitConstant(value)

	n := EmitArmMovw(buf, CC_AL, rd, Imm(low))
	n += EmitArmMovt(buf[n:], CC_AL, rd, Imm(high))

	return n
}
