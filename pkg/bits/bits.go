// Package bits joins and splits the bytes of 16-bit values.
package bits

// Compose16 joins a high and a low byte into a 16-bit value.
//
//	Compose16(0x80, 0x01) == 0x8001
func Compose16(high, low uint8) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Split16 is the inverse of Compose16.
func Split16(value uint16) (high, low uint8) {
	return uint8(value >> 8), uint8(value)
}
