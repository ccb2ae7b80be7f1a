package emu

// EffectiveAddress computes base + offset, wrapped to 16 bits.
func EffectiveAddress(base uint16, offset int16) uint16 {
	return base + uint16(offset)
}
