package insn

// EmitThumbB encodes the 16 bit conditional branch B<cond> with an adjusted
// relative offset. Only offsets within [-256, 254] are representable. cond
// must not be AL or NV, those values select other instructions.
func EmitThumbB(buf []uint16, cond ConditionCode, rel uint32) int {
	return emitThumb(buf, THUMB_B|
		encode16(cond, 4, 8)|
		encode16(rel>>1, 8, 0))
}

// EmitThumbMov encodes MOV rd, rm. The 16 bit form has no immediate variant.
func EmitThumbMov(buf []uint16, rd Register, operand Operand) int {
	rm, ok := operand.(RegisterOperand)
	if !ok {
		return 0
	}

	return emitThumb(buf, THUMB_MOV|
		// D:Rd
		encode16(bit(uint32(rd), 3), 1, 7)|
		encode16(bits(uint32(rd), 0, 2), 3, 0)|
		encode16(rm, 4, 3))
}

// EmitThumbCmp encodes CMP rn, #imm8 for a low register rn
func EmitThumbCmp(buf []uint16, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumb(buf, THUMB_CMP|
		encode16(rn, 3, 8)|
		encode16(bits(uint32(imm), 0, 7), 8, 0))
}

// EmitThumbPush encodes PUSH {list} over r0-r7, plus lr if requested
func EmitThumbPush(buf []uint16, list uint8, lr bool) int {
	return emitThumb(buf, THUMB_PUSH_T1|
		encode16(list, 8, 0)|
		encode16(flag(lr), 1, 8))
}

// EmitThumbPop encodes POP {list} over r0-r7, plus pc if requested
func EmitThumbPop(buf []uint16, list uint8, pc bool) int {
	return emitThumb(buf, THUMB_POP|
		encode16(flag(pc), 1, 8)|
		encode16(list, 8, 0))
}

// EmitThumbStr encodes STR rt, [rn, #imm5 * 4] for low registers. The
// immediate is the already scaled 5 bit field value.
func EmitThumbStr(buf []uint16, rt Register, rn Register, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumb(buf, THUMB_STR|
		encode16(imm, 5, 6)|
		encode16(rn, 3, 3)|
		encode16(rt, 3, 0))
}

// EmitThumbAddSp encodes ADD sp, sp, #imm. The immediate is a byte count, a
// multiple of 4 up to 508.
func EmitThumbAddSp(buf []uint16, operand Operand) int {
	imm, ok := operand.(ImmediateOperand)
	if !ok {
		return 0
	}

	return emitThumb(buf, THUMB_ADD_SP|encode16(imm>>2, 7, 0))
}
