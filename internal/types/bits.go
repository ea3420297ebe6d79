package types

// Bit masks for the packed flag byte of the CPU, least significant
// first.
const (
	Bit0 = 1 << iota // 0b0000_0001
	Bit1             // 0b0000_0010
	Bit2             // 0b0000_0100
	Bit3             // 0b0000_1000
)
