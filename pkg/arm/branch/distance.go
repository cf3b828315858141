// Package branch computes the relative immediates expected by the branch
// encoders of package insn and checks whether a target is within reach.
//
// Addresses are absolute. Relative values are two's complement offsets
// returned as uint32, the form the encoders take.
package branch

// Pipeline fetch bias: the PC reads two instructions ahead of the branch
const (
	ArmPCBias   = 8
	ThumbPCBias = 4
)

// Bits of a relative offset that sit above the signed branch immediate
const (
	armReachShift   = 25
	thumbReachShift = 24
)

// ArmDistance returns to - from for two ARM addresses
func ArmDistance(from uint32, to uint32) uint32 {
	return to - from
}

// ThumbDistance returns the distance between two Thumb addresses, ignoring
// the mode bit of both
func ThumbDistance(from uint32, to uint32) uint32 {
	return (to &^ 1) - (from &^ 1)
}

// ThumbToArmDistance returns the distance from a Thumb BLX to an ARM target.
// Both ends are word aligned, as the processor aligns PC before adding the offset.
func ThumbToArmDistance(from uint32, to uint32) uint32 {
	return (to &^ 3) - (from &^ 3)
}

// ArmAdjustedOffset removes the ARM fetch bias from a distance
func ArmAdjustedOffset(distance uint32) uint32 {
	return distance - ArmPCBias
}

// ThumbAdjustedOffset removes the Thumb fetch bias from a distance
func ThumbAdjustedOffset(distance uint32) uint32 {
	return distance - ThumbPCBias
}

// ArmBranchRelativeDistance returns the immediate of an ARM B/BL/BLX at from
// targeting to
func ArmBranchRelativeDistance(from uint32, to uint32) uint32 {
	return ArmAdjustedOffset(ArmDistance(from, to))
}

// ThumbBranchRelativeDistance returns the immediate of a Thumb branch at from
// targeting Thumb code at to
func ThumbBranchRelativeDistance(from uint32, to uint32) uint32 {
	return ThumbAdjustedOffset(ThumbDistance(from, to))
}

// ThumbToArmBranchRelativeDistance returns the immediate of a Thumb BLX at
// from targeting ARM code at to
func ThumbToArmBranchRelativeDistance(from uint32, to uint32) uint32 {
	return ThumbAdjustedOffset(ThumbToArmDistance(from, to))
}

// Returns true if every bit of rel above the immediate matches its sign bit
func fits(rel uint32, shift int) bool {
	high := int32(rel) >> shift
	return high == 0 || high == -1
}

// ArmIsReachable returns true if an ARM branch at from can reach to
func ArmIsReachable(from uint32, to uint32) bool {
	return fits(ArmBranchRelativeDistance(from, to), armReachShift)
}

// ThumbIsReachable returns true if a Thumb B.W or BL at from can reach to
func ThumbIsReachable(from uint32, to uint32) bool {
	return fits(ThumbBranchRelativeDistance(from, to), thumbReachShift)
}

// ThumbToArmIsReachable returns true if a Thumb BLX at from can reach ARM code at to
func ThumbToArmIsReachable(from uint32, to uint32) bool {
	return fits(ThumbToArmBranchRelativeDistance(from, to), thumbReachShift)
}

// FitsSigned returns true if rel, read as a two's complement value, fits in a
// signed immediate of the given bits. It checks the narrower branch forms
// (Thumb B<cond> and B<cond>.W) that the reachability helpers do not cover.
func FitsSigned(rel uint32, bits int) bool {
	return fits(rel, bits-1)
}
