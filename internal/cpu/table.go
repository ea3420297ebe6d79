package cpu

import "fmt"

// Handler identifies the generic routine that executes an opcode. The
// routine recovers its register operands from the opcode byte itself.
type Handler uint8

const (
	// HandlerNone marks an opcode this core does not implement.
	HandlerNone Handler = iota
	HandlerNOP
	HandlerLoadPairImmediate
	HandlerStoreSP
	HandlerStoreA
	HandlerLoadA
	HandlerIncrementPair
	HandlerDecrementPair
	HandlerAddHL
	HandlerIncrement
	HandlerDecrement
	HandlerLoadImmediate
	HandlerMove
	HandlerHalt
)

// Opcode is a single entry of the dispatch table.
type Opcode struct {
	// Name is the mnemonic, with n8/n16 standing in for immediates.
	Name    string
	Handler Handler
	// Cycles is the total latency of the instruction, including the
	// tick spent fetching it.
	Cycles uint8
}

// Implemented reports whether the opcode has a handler.
func (o Opcode) Implemented() bool {
	return o.Handler != HandlerNone
}

// Length returns the size of the instruction in bytes, opcode
// included.
func (o Opcode) Length() uint16 {
	switch o.Handler {
	case HandlerLoadPairImmediate, HandlerStoreSP:
		return 3
	case HandlerLoadImmediate:
		return 2
	}
	return 1
}

// Table maps every opcode byte to its entry. Unused bytes hold the
// zero Opcode.
type Table [256]Opcode

// Instructions is the table used by a CPU unless WithTable says
// otherwise.
var Instructions = NewTable()

// Lookup returns the entry for opcode.
func (t *Table) Lookup(opcode uint8) Opcode {
	return t[opcode]
}

// Implemented returns the number of opcodes with a handler.
func (t *Table) Implemented() int {
	n := 0
	for _, o := range t {
		if o.Implemented() {
			n++
		}
	}
	return n
}

// Define sets the entry for opcode. Defining the same opcode twice
// panics, as it means two families claim the same encoding.
func (t *Table) Define(opcode uint8, name string, h Handler, cycles uint8) {
	if t[opcode].Implemented() {
		panic(fmt.Sprintf("opcode 0x%02X already defined as %s", opcode, t[opcode].Name))
	}
	t[opcode] = Opcode{Name: name, Handler: h, Cycles: cycles}
}

// NewTable builds the dispatch table by walking the register fields of
// each instruction family.
//
//	00pp_0001  LD r16, n16     00rr_r100  INC r8
//	00pp_0010  LD [r16], A     00rr_r101  DEC r8
//	00pp_0011  INC r16         00rr_r110  LD r8, n8
//	00pp_1001  ADD HL, r16     01dd_dsss  LD r8, r8
//	00pp_1010  LD A, [r16]     0000_1000  LD [n16], SP
//	00pp_1011  DEC r16         0111_0110  HALT
func NewTable() *Table {
	t := &Table{}

	t.Define(0x00, "NOP", HandlerNOP, 1)
	t.Define(0x08, "LD [n16], SP", HandlerStoreSP, 5)

	for p := uint8(0); p < 4; p++ {
		t.Define(0b0000_0001|p<<4, "LD "+pairNames[p]+", n16", HandlerLoadPairImmediate, 3)
		t.Define(0b0000_0011|p<<4, "INC "+pairNames[p], HandlerIncrementPair, 2)
		t.Define(0b0000_1011|p<<4, "DEC "+pairNames[p], HandlerDecrementPair, 2)
		t.Define(0b0000_1001|p<<4, "ADD HL, "+pairNames[p], HandlerAddHL, 2)
	}

	// only BC and DE; HL+ and HL- are not part of this core
	for p := PairBC; p <= PairDE; p++ {
		t.Define(0b0000_0010|p<<4, "LD ["+pairNames[p]+"], A", HandlerStoreA, 2)
		t.Define(0b0000_1010|p<<4, "LD A, ["+pairNames[p]+"]", HandlerLoadA, 2)
	}

	for r := uint8(0); r < 8; r++ {
		t.Define(0b0000_0100|r<<3, "INC "+registerNames[r], HandlerIncrement, 1)
		t.Define(0b0000_0101|r<<3, "DEC "+registerNames[r], HandlerDecrement, 1)
		t.Define(0b0000_0110|r<<3, "LD "+registerNames[r]+", n8", HandlerLoadImmediate, 2)
	}

	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			cycles := uint8(1)
			switch {
			case dst == RegHLIndirect && src == RegHLIndirect:
				continue // HALT
			case dst == RegHLIndirect || src == RegHLIndirect:
				cycles = 2
			}
			t.Define(0b0100_0000|dst<<3|src, "LD "+registerNames[dst]+", "+registerNames[src], HandlerMove, cycles)
		}
	}

	t.Define(0b0111_0110, "HALT", HandlerHalt, 1)

	return t
}
