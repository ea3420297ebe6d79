package cpu

import "github.com/thelolagemann/sm83/internal/types"

// Flag is a bit of the packed flag byte returned by CPU.F.
type Flag = uint8

const (
	FlagZero      Flag = types.Bit0
	FlagSubtract  Flag = types.Bit1
	FlagHalfCarry Flag = types.Bit2
	FlagCarry     Flag = types.Bit3
)

// Flags holds the four condition flags. The booleans are the only
// stored form; the packed byte is derived on demand.
type Flags struct {
	Zero        bool
	Subtraction bool
	HalfCarry   bool
	Carry       bool
}

// Pack returns the flags as a byte, one bit per set flag.
func (f Flags) Pack() uint8 {
	var packed uint8
	if f.Zero {
		packed |= FlagZero
	}
	if f.Subtraction {
		packed |= FlagSubtract
	}
	if f.HalfCarry {
		packed |= FlagHalfCarry
	}
	if f.Carry {
		packed |= FlagCarry
	}
	return packed
}

// UnpackFlags is the inverse of Flags.Pack. Bits outside the four flag
// bits are ignored.
func UnpackFlags(packed uint8) Flags {
	return Flags{
		Zero:        packed&FlagZero != 0,
		Subtraction: packed&FlagSubtract != 0,
		HalfCarry:   packed&FlagHalfCarry != 0,
		Carry:       packed&FlagCarry != 0,
	}
}

// setFlags sets all four flags at once.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	c.flags = Flags{zero, subtract, halfCarry, carry}
}

// F returns the packed flag byte.
func (c *CPU) F() uint8 { return c.flags.Pack() }

// Flags returns a copy of the current flags.
func (c *CPU) Flags() Flags { return c.flags }

// Zero reports whether the zero flag is set.
func (c *CPU) Zero() bool { return c.flags.Zero }

// Subtraction reports whether the subtraction flag is set.
func (c *CPU) Subtraction() bool { return c.flags.Subtraction }

// HalfCarry reports whether the half carry flag is set.
func (c *CPU) HalfCarry() bool { return c.flags.HalfCarry }

// Carry reports whether the carry flag is set.
func (c *CPU) Carry() bool { return c.flags.Carry }
