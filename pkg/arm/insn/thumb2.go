package insn

// EmitThumbBranch encodes the Thumb branches and calls.
//
// With an immediate operand the value is the branch offset already adjusted
// for the pipeline, and the instruction is the 32 bit B.W (no flags), BL (link)
// or BLX (link and exchange, offset from branch.ThumbToArmBranchRelativeDistance).
// The offset is split as S:I1:I2:imm10:imm11 where the stored J1 and J2 bits are
// NOT(I1) EOR S and NOT(I2) EOR S. BLX stores the offset as imm10H:imm10L:'0'
// and clears bit 12 to select the ARM target instruction set.
//
// With a register operand only link and exchange together are encodable, as
// the 16 bit BLX rm. Every other combination returns 0.
func EmitThumbBranch(buf []uint16, operand Operand, link bool, exchange bool) int {
	switch op := operand.(type) {
	case ImmediateOperand:
		if exchange && !link {
			return 0
		}

		imm := uint32(op)

		var imm11 uint32
		if exchange {
			// imm10L:H
			imm11 = bits(imm, 2, 11) << 1
		} else {
			imm11 = bits(imm, 1, 11)
		}

		imm10 := bits(imm, 12, 21)
		s := bit(imm, 24)
		j1 := s ^ (bit(imm, 23) ^ 1)
		j2 := s ^ (bit(imm, 22) ^ 1)

		return emitThumbWide(buf, THUMB_BW|
			encode(s, 1, 26)|
			encode(imm10, 10, 16)|
			encode(flag(link), 1, 14)|
			encode(j1, 1, 13)|
			encode(flag(!exchange), 1, 12)|
			encode(j2, 1, 11)|
			encode(imm11, 11, 0))
	case RegisterOperand:
		if !link || !exchange {
			return 0
		}

		return emitThumb(buf, THUMB_BLX|encode16(op, 4, 3))
	}

	return 0
}

// EmitThumbBW encodes the unconditional B.W with an adjusted relative offset
func EmitThumbBW(buf []uint16, rel uint32) int {
	return EmitThumbBranch(buf, Imm(rel), false, false)
}

// EmitThumbBL encodes BL with an adjusted relative offset
func EmitThumbBL(buf []uint16, rel uint32) int {
	return EmitThumbBranch(buf, Imm(rel), true, false)
}

// EmitThumbBLX encodes BLX with either an adjusted Thumb to ARM relative offset or a register
func EmitThumbBLX(buf []uint16, operand Operand) int {
	return EmitThumbBranch(buf, operand, true, true)
}

// EmitThumbBWCond encodes the conditional B<cond>.W with an adjusted relative
// offset in [-1048576, 1048574]. The offset is stored as S:J2:J1:imm6:imm11,
// with the condition where B.W keeps the top of imm10. cond must not be AL or NV.
func EmitThumbBWCond(buf []uint16, cond ConditionCode, rel uint32) int {
	imm11 := bits(rel, 1, 11)
	imm6 := bits(rel, 12, 17)
	j1 := bit(rel, 18)
	j2 := bit(rel, 19)
	s := bit(rel, 20)

	return emitThumbWide(buf, THUMB_BW|
		encode(s, 1, 26)|
		encode(cond, 4, 22)|
		encode(imm6, 6, 16)|
		encode(j1, 1, 13)|
		encode(j2, 1, 11)|
		encode(imm11, 11, 0))
}

// Thumb modified immediates and MOVW/MOVT spread a 12 (16) bit value as
// imm4:i:imm3:imm8, with i at bit 26 and imm4 at bits 16-19
func thumbSplitImmediate(imm uint32) uint32 {
	return encode(bit(imm, 11), 1, 26) |
		encode(bits(imm, 8, 10), 3, 12) |
		encode(bits(imm, 0, 7), 8, 0)
}

func thumbMovWide(buf []uint16, opcode uint32, rd Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumbWide(buf, opcode|
		thumbSplitImmediate(uint32(imm))|
		encode(bits(uint32(imm), 12, 15), 4, 16)|
		encode(rd, 4, 8))
}

// EmitThumbMovw encodes MOVW rd, #imm16
func EmitThumbMovw(buf []uint16, rd Register, operand Operand) int {
	return thumbMovWide(buf, THUMB_MOVW, rd, operand)
}

// EmitThumbMovt encodes MOVT rd, #imm16
func EmitThumbMovt(buf []uint16, rd Register, operand Operand) int {
	return thumbMovWide(buf, THUMB_MOVT, rd, operand)
}

// EmitThumbMov32 loads a 32 bit constant into rd with MOVW followed by MOVT.
// Returns 4, or 0 if buf has room for less than four half-words.
func EmitThumbMov32(buf []uint16, rd Register, value uint32) int {
	if len(buf) < 2*ThumbWideUnits {
		return 0
	}

	low, high := SplitConstant(value)

	n := EmitThumbMovw(buf, rd, Imm(low))
	n += EmitThumbMovt(buf[n:], rd, Imm(high))

	return n
}

// EmitThumbCmpw encodes CMP.W rn, #imm12
func EmitThumbCmpw(buf []uint16, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumbWide(buf, THUMB_CMPW|
		encode(rn, 4, 16)|
		thumbSplitImmediate(uint32(imm)))
}

// EmitThumbBic encodes BIC rd, rn, #imm12
func EmitThumbBic(buf []uint16, rd Register, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumbWide(buf, THUMB_BIC|
		encode(rn, 4, 16)|
		encode(rd, 4, 8)|
		thumbSplitImmediate(uint32(imm)))
}

// EmitThumbPushList encodes PUSH.W {list} over r0-r12, plus lr if requested
func EmitThumbPushList(buf []uint16, list RegisterList, lr bool) int {
	return emitThumbWide(buf, THUMB_PUSH_T2|
		encode(flag(lr), 1, 14)|
		encode(list, 13, 0))
}

// EmitThumbPopList encodes POP.W {list} over r0-r12, plus pc and lr if requested
func EmitThumbPopList(buf []uint16, list RegisterList, pc bool, lr bool) int {
	return emitThumbWide(buf, THUMB_POPW|
		encode(flag(pc), 1, 15)|
		encode(flag(lr), 1, 14)|
		encode(list, 13, 0))
}

func thumbVectorStack(buf []uint16, opcode uint32, rs uint8, length uint8) int {
	return emitThumbWide(buf, opcode|
		encode(bit(uint32(rs), 4), 1, 22)|
		encode(bits(uint32(rs), 0, 3), 4, 12)|
		encode(2*uint32(length), 8, 0))
}

// EmitThumbVpush encodes VPUSH {d(rs)-d(rs+length-1)}
func EmitThumbVpush(buf []uint16, rs uint8, length uint8) int {
	return thumbVectorStack(buf, THUMB_VPUSH, rs, length)
}

// EmitThumbVpop encodes VPOP {d(rs)-d(rs+length-1)}
func EmitThumbVpop(buf []uint16, rs uint8, length uint8) int {
	return thumbVectorStack(buf, THUMB_VPOP, rs, length)
}

// EmitThumbLdrex encodes LDREX rt, [rn, #imm8 * 4]. The immediate is the already
// scaled field value.
func EmitThumbLdrex(buf []uint16, rt Register, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumbWide(buf, THUMB_LDREX|
		encode(rn, 4, 16)|
		encode(rt, 4, 12)|
		encode(bits(uint32(imm), 0, 7), 8, 0))
}

// EmitThumbStrex encodes STREX rd, rt, [rn, #imm8 * 4]
func EmitThumbStrex(buf []uint16, rd Register, rt Register, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumbWide(buf, THUMB_STREX|
		encode(rn, 4, 16)|
		encode(rt, 4, 12)|
		encode(rd, 4, 8)|
		encode(imm, 8, 0))
}

// EmitThumbDmb encodes DMB SY
func EmitThumbDmb(buf []uint16) int {
	return emitThumbWide(buf, THUMB_DMB|encode(barrierFullSystem, 4, 0))
}

// EmitThumbMrs encodes MRS rd, APSR
func EmitThumbMrs(buf []uint16, rd Register) int {
	return emitThumbWide(buf, THUMB_MRS|encode(rd, 4, 8))
}

// EmitThumbMsr encodes MSR APSR_nzcvqg, rn
func EmitThumbMsr(buf []uint16, rn Register) int {
	return emitThumbWide(buf, THUMB_MSR|
		encode(rn, 4, 16)|
		encode(msrMaskFlags, 2, 10))
}
