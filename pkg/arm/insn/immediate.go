package insn

// ExpandArmImmediate returns the value of an ARM modified immediate: imm12[7:0]
// rotated right by twice imm12[11:8]
func ExpandArmImmediate(imm12 uint32) uint32 {
	return ror(imm12&0xFF, 2*int(bits(imm12, 8, 11)))
}

// EncodeArmImmediate returns the imm12 field of ARM data processing
// instructions for value, or false if value is not an 8 bit constant rotated
// by an even amount
func EncodeArmImmediate(value uint32) (uint32, bool) {
	for rotation := 0; rotation < 16; rotation++ {
		if imm8 := ror(value, 32-2*rotation); imm8 <= 0xFF {
			return encode(rotation, 4, 8) | imm8, true
		}
	}

	return 0, false
}

// ExpandThumbImmediate returns the value of a Thumb-2 modified immediate
// i:imm3:imm8. Byte replication patterns with a zero byte are unpredictable
// and reported as false.
func ExpandThumbImmediate(imm12 uint32) (uint32, bool) {
	imm8 := imm12 & 0xFF

	if bits(imm12, 10, 11) == 0 {
		switch bits(imm12, 8, 9) {
		case 0b00:
			return imm8, true
		case 0b01:
			return imm8<<16 | imm8, imm8 != 0
		case 0b10:
			return imm8<<24 | imm8<<8, imm8 != 0
		default:
			return imm8 * 0x01010101, imm8 != 0
		}
	}

	unrotated := 0x80 | bits(imm12, 0, 6)
	return ror(unrotated, int(bits(imm12, 7, 11))), true
}

// EncodeThumbImmediate returns the i:imm3:imm8 field of Thumb-2 data processing
// instructions for value, or false if value has no modified immediate form
func EncodeThumbImmediate(value uint32) (uint32, bool) {
	if value <= 0xFF {
		return value, true
	}

	low := value & 0xFF
	high := bits(value, 8, 15)

	switch {
	case low != 0 && value == low<<16|low:
		return 0x100 | low, true
	case high != 0 && value == high<<24|high<<8:
		return 0x200 | high, true
	case low != 0 && value == low*0x01010101:
		return 0x300 | low, true
	}

	// '1':imm7 rotated right by 8 to 31
	for rotation := 8; rotation < 32; rotation++ {
		if unrotated := ror(value, 32-rotation); unrotated&^0x7F == 0x80 {
			return encode(rotation, 5, 7) | unrotated&0x7F, true
		}
	}

	return 0, false
}

// Rotates value right by n bits
func ror(value uint32, n int) uint32 {
	n %= 32
	return value>>n | value<<(32-n)
}
