package emu

// BranchTarget returns the target of a BEQ at index pc with the given
// relative offset.
func BranchTarget(pc int, offset int16) int {
	return pc + int(offset)
}

// BranchTaken reports whether BEQ's operands compare equal.
func BranchTaken(a, b uint16) bool {
	return a == b
}
