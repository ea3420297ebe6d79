// Package cpu implements the instruction core of a Game Boy-class
// 8-bit CPU: a table-driven fetch, decode and execute loop over a flat
// memory buffer, with per-instruction cycle accounting.
//
// Timing is coarse. An instruction takes full effect on the tick it is
// fetched, and the rest of its declared cycles pass as idle ticks
// before the next fetch.
package cpu

import (
	"github.com/thelolagemann/sm83/internal/memory"
	"github.com/thelolagemann/sm83/pkg/log"
)

// CPU executes instructions from a memory buffer it borrows at
// construction. It is not safe for concurrent use, and the host must
// not modify the buffer while Run, RunFor or Step is executing.
type CPU struct {
	// r holds the 8-bit registers, indexed by register slot. r[6] is
	// unused, as slot 6 addresses memory at HL.
	r     [8]uint8
	pairs [3]RegisterPair // BC, DE, HL
	sp    uint16
	pc    uint16
	flags Flags

	mem   []byte
	table *Table

	halted    bool
	overrun   bool // PC advanced past 0xFFFF
	remaining uint8
	ticks     uint64

	log     log.Logger
	trace   bool
	profile *Profile
}

// Opt configures a CPU.
type Opt func(c *CPU)

// WithLogger sets the logger that receives diagnostics, such as
// unrecognised opcodes.
func WithLogger(l log.Logger) Opt {
	return func(c *CPU) {
		c.log = l
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace() Opt {
	return func(c *CPU) {
		c.trace = true
	}
}

// WithProfile records executions and ticks per opcode into p.
func WithProfile(p *Profile) Opt {
	return func(c *CPU) {
		c.profile = p
	}
}

// WithTable replaces the dispatch table.
func WithTable(t *Table) Opt {
	return func(c *CPU) {
		c.table = t
	}
}

// New returns a CPU bound to the buffer of mem.
func New(mem *memory.Memory, opts ...Opt) *CPU {
	c := &CPU{
		mem:   mem.Raw(),
		table: Instructions,
		log:   log.New(),
	}
	c.pairs[PairBC] = RegisterPair{&c.r[RegB], &c.r[RegC]}
	c.pairs[PairDE] = RegisterPair{&c.r[RegD], &c.r[RegE]}
	c.pairs[PairHL] = RegisterPair{&c.r[RegH], &c.r[RegL]}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Reset clears the registers, flags and execution state. Memory is
// left untouched.
func (c *CPU) Reset() {
	c.r = [8]uint8{}
	c.sp, c.pc = 0, 0
	c.flags = Flags{}
	c.halted = false
	c.overrun = false
	c.remaining = 0
	c.ticks = 0
}

// Run executes until a HALT instruction has completed or the program
// counter runs past the end of memory. There is no step limit: a
// program that never halts, on a buffer the program counter can't run
// off, never returns. Use RunFor to bound it.
func (c *CPU) Run() {
	c.Resume()
	for c.Step() {
	}
}

// RunFor is Run, but stops after at most limit ticks. It returns the
// number of ticks consumed.
func (c *CPU) RunFor(limit uint64) uint64 {
	c.Resume()
	var n uint64
	for n < limit && c.Step() {
		n++
	}
	return n
}

// Resume clears the halted state so that Step continues past a HALT.
func (c *CPU) Resume() {
	c.halted = false
}

// Step advances the CPU by a single tick. If the current instruction
// still has cycles outstanding, the tick is spent idle; otherwise the
// next instruction is fetched and executed. Step reports false, without
// consuming a tick, once the CPU is halted or the program counter has
// run past the end of memory.
func (c *CPU) Step() bool {
	if c.remaining > 0 {
		c.remaining--
		c.ticks++
		return true
	}

	if c.halted || c.overrun || int(c.pc) >= len(c.mem) {
		return false
	}

	c.ticks++
	c.runInstruction(c.readInstruction())
	return true
}

// runInstruction dispatches opcode through the table. An opcode with
// no handler is reported and skipped; the program counter has already
// moved past it.
func (c *CPU) runInstruction(opcode uint8) {
	op := c.table.Lookup(opcode)
	if !op.Implemented() {
		c.log.Errorf("unrecognised instruction %08b (0x%02X) at 0x%04X", opcode, opcode, c.pc-1)
		if c.profile != nil {
			c.profile.unknown(opcode)
		}
		return
	}

	if c.trace {
		text, _ := c.Disassemble(c.pc - 1)
		c.log.Debugf("%04X  %-16s A:%02X F:%02X BC:%04X DE:%04X HL:%04X SP:%04X",
			c.pc-1, text, c.A(), c.F(), c.BC(), c.DE(), c.HL(), c.sp)
	}

	c.execute(opcode, op)
	c.remaining = op.Cycles - 1

	if c.profile != nil {
		c.profile.record(opcode, op)
	}
}

// readInstruction reads the opcode at PC and advances PC.
func (c *CPU) readInstruction() uint8 {
	value := c.mem[c.pc]
	c.advance()
	return value
}

// readOperand reads the next immediate byte and advances PC.
func (c *CPU) readOperand() uint8 {
	if c.overrun {
		return 0xFF
	}
	value := c.read(c.pc)
	c.advance()
	return value
}

// advance increments PC, recording an overrun when it wraps.
func (c *CPU) advance() {
	c.pc++
	if c.pc == 0 {
		c.overrun = true
	}
}

// readOperand16 reads a little-endian 16-bit immediate.
func (c *CPU) readOperand16() uint16 {
	low := c.readOperand()
	return uint16(c.readOperand())<<8 | uint16(low)
}

// read returns the byte at address. Addresses past the end of the
// buffer read as 0xFF.
func (c *CPU) read(address uint16) uint8 {
	if int(address) >= len(c.mem) {
		c.log.Debugf("read from 0x%04X is outside memory (%d bytes)", address, len(c.mem))
		return 0xFF
	}
	return c.mem[address]
}

// write sets the byte at address. Writes past the end of the buffer
// are dropped.
func (c *CPU) write(address uint16, value uint8) {
	if int(address) >= len(c.mem) {
		c.log.Debugf("write of 0x%02X to 0x%04X is outside memory (%d bytes)", value, address, len(c.mem))
		return
	}
	c.mem[address] = value
}

// Halted reports whether the last run ended on a HALT instruction.
func (c *CPU) Halted() bool { return c.halted }

// Ticks returns the number of ticks consumed since the CPU was created
// or last Reset.
func (c *CPU) Ticks() uint64 { return c.ticks }
