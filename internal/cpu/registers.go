package cpu

import (
	"fmt"

	"github.com/thelolagemann/sm83/pkg/bits"
)

// 8-bit register slots, as encoded in the 3-bit register fields of an
// opcode. RegHLIndirect is not a register: it addresses the byte in
// memory pointed to by HL.
const (
	RegB uint8 = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLIndirect
	RegA
)

// 16-bit register pairs, as encoded in the 2-bit pair field.
const (
	PairBC uint8 = iota
	PairDE
	PairHL
	PairSP
)

var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "[HL]", "A"}

var pairNames = [4]string{"BC", "DE", "HL", "SP"}

// RegisterPair represents a pair of registers which is used to hold a
// 16-bit value.
type RegisterPair struct {
	High *uint8
	Low  *uint8
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r RegisterPair) Uint16() uint16 {
	return bits.Compose16(*r.High, *r.Low)
}

// SetUint16 sets the value of the RegisterPair to the given value.
func (r RegisterPair) SetUint16(value uint16) {
	*r.High, *r.Low = bits.Split16(value)
}

// get8 returns the value of the 8-bit slot at index. Index 6 reads
// memory at HL.
func (c *CPU) get8(index uint8) uint8 {
	if index == RegHLIndirect {
		return c.read(c.pairs[PairHL].Uint16())
	}
	return *c.register(index)
}

// set8 sets the 8-bit slot at index. Index 6 writes memory at HL.
func (c *CPU) set8(index, value uint8) {
	if index == RegHLIndirect {
		c.write(c.pairs[PairHL].Uint16(), value)
		return
	}
	*c.register(index) = value
}

// register returns a pointer to the register at index. The opcode
// table only ever produces indices 0-7, so anything else means the
// table itself is broken.
func (c *CPU) register(index uint8) *uint8 {
	if index > RegA || index == RegHLIndirect {
		panic(fmt.Sprintf("invalid register index: %d", index))
	}
	return &c.r[index]
}

// get16 returns the value of the register pair at index.
func (c *CPU) get16(index uint8) uint16 {
	switch index {
	case PairBC, PairDE, PairHL:
		return c.pairs[index].Uint16()
	case PairSP:
		return c.sp
	}
	panic(fmt.Sprintf("invalid register pair index: %d", index))
}

// set16 sets the value of the register pair at index.
func (c *CPU) set16(index uint8, value uint16) {
	switch index {
	case PairBC, PairDE, PairHL:
		c.pairs[index].SetUint16(value)
	case PairSP:
		c.sp = value
	default:
		panic(fmt.Sprintf("invalid register pair index: %d", index))
	}
}

// A returns the accumulator.
func (c *CPU) A() uint8 { return c.r[RegA] }

// B returns register B.
func (c *CPU) B() uint8 { return c.r[RegB] }

// C returns register C.
func (c *CPU) C() uint8 { return c.r[RegC] }

// D returns register D.
func (c *CPU) D() uint8 { return c.r[RegD] }

// E returns register E.
func (c *CPU) E() uint8 { return c.r[RegE] }

// H returns register H.
func (c *CPU) H() uint8 { return c.r[RegH] }

// L returns register L.
func (c *CPU) L() uint8 { return c.r[RegL] }

// AF returns A and the packed flag byte as a pair.
func (c *CPU) AF() uint16 { return bits.Compose16(c.r[RegA], c.F()) }

// BC returns the BC register pair.
func (c *CPU) BC() uint16 { return c.pairs[PairBC].Uint16() }

// DE returns the DE register pair.
func (c *CPU) DE() uint16 { return c.pairs[PairDE].Uint16() }

// HL returns the HL register pair.
func (c *CPU) HL() uint16 { return c.pairs[PairHL].Uint16() }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// PC returns the program counter.
func (c *CPU) PC() uint16 { return c.pc }
