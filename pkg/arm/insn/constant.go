package insn

// SplitConstant splits a 32 bit value into the MOVW (low) and MOVT (high) halves
func SplitConstant(value uint32) (low uint32, high uint32) {
	return bits(value, 0, 15), bits(value, 16, 31)
}

// CombineConstant is the inverse of SplitConstant
func CombineConstant(low uint32, high uint32) uint32 {
	return high<<16 | bits(low, 0, 15)
}
