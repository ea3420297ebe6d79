package cpu

import "fmt"

// execute runs the handler for op. Register operands are decoded from
// instr: bits 4-5 select a pair, bits 3-5 the destination slot and
// bits 0-2 the source slot.
func (c *CPU) execute(instr uint8, op Opcode) {
	pair, dst, src := instr>>4&0x3, instr>>3&0x7, instr&0x7

	switch op.Handler {
	case HandlerNOP:
	case HandlerLoadPairImmediate:
		c.set16(pair, c.readOperand16())
	case HandlerStoreSP:
		address := c.readOperand16()
		c.write(address, uint8(c.sp))
		c.write(address+1, uint8(c.sp>>8))
	case HandlerStoreA:
		c.write(c.get16(pair), c.r[RegA])
	case HandlerLoadA:
		c.r[RegA] = c.read(c.get16(pair))
	case HandlerIncrementPair:
		c.set16(pair, c.get16(pair)+1)
	case HandlerDecrementPair:
		c.set16(pair, c.get16(pair)-1)
	case HandlerAddHL:
		c.addHL(c.get16(pair))
	case HandlerIncrement:
		c.set8(dst, c.increment(c.get8(dst)))
	case HandlerDecrement:
		c.set8(dst, c.decrement(c.get8(dst)))
	case HandlerLoadImmediate:
		c.set8(dst, c.readOperand())
	case HandlerMove:
		c.set8(dst, c.get8(src))
	case HandlerHalt:
		c.halted = true
	default:
		panic(fmt.Sprintf("no handler for opcode 0x%02X (%s)", instr, op.Name))
	}
}

// increment the given value and set the flags accordingly.
//
//	INC n
//	n = 8-bit value
//
// Flags affected:
//
//	Z - Set if the wrapped result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(value uint8) uint8 {
	incremented := value + 1
	c.setFlags(incremented == 0, false, value&0xF == 0xF, c.flags.Carry)
	return incremented
}

// decrement the given value and set the flags accordingly.
//
//	DEC n
//	n = 8-bit value
//
// Flags affected:
//
//	Z - Set if the wrapped result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(value uint8) uint8 {
	decremented := value - 1
	c.setFlags(decremented == 0, true, value&0xF == 0, c.flags.Carry)
	return decremented
}

// addHL adds the given value to the HL register pair.
//
//	ADD HL, rr
//	rr = 16-bit register
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(value uint16) {
	hl := c.pairs[PairHL].Uint16()
	sum := uint32(hl) + uint32(value)
	c.setFlags(c.flags.Zero, false, (hl&0xFFF)+(value&0xFFF) > 0xFFF, sum > 0xFFFF)
	c.pairs[PairHL].SetUint16(uint16(sum))
}
