package cpu

import (
	"fmt"
	"strings"
)

// Disassemble renders the instruction at address, substituting its
// immediate operands, and returns the address of the instruction that
// follows it. Opcodes without a handler render as a data byte.
func (c *CPU) Disassemble(address uint16) (string, uint16) {
	opcode := c.read(address)
	op := c.table.Lookup(opcode)
	if !op.Implemented() {
		return fmt.Sprintf("DB $%02X", opcode), address + 1
	}

	text := op.Name
	switch op.Length() {
	case 2:
		text = strings.Replace(text, "n8", fmt.Sprintf("$%02X", c.read(address+1)), 1)
	case 3:
		value := uint16(c.read(address+2))<<8 | uint16(c.read(address+1))
		text = strings.Replace(text, "n16", fmt.Sprintf("$%04X", value), 1)
	}

	return text, address + op.Length()
}

// DisassembleRange disassembles count instructions starting at address,
// one per line, prefixed by their address. A negative count lists
// nothing.
func (c *CPU) DisassembleRange(address uint16, count int) []string {
	if count < 0 {
		count = 0
	}
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		text, next := c.Disassemble(address)
		lines = append(lines, fmt.Sprintf("%04X  %s", address, text))
		address = next
	}
	return lines
}
