package cpu

import (
	"github.com/thelolagemann/sm83/internal/types"
)

var (
	_ types.Stater     = (*CPU)(nil)
	_ types.Resettable = (*CPU)(nil)
)

// Load restores the registers and execution state from s. Memory is
// not part of the CPU state.
func (c *CPU) Load(s *types.State) {
	for i := range c.r {
		c.r[i] = s.Read8()
	}
	c.flags = UnpackFlags(s.Read8())
	c.sp = s.Read16()
	c.pc = s.Read16()
	c.halted = s.ReadBool()
	c.overrun = s.ReadBool()
	c.remaining = s.Read8()
	c.ticks = s.Read64()
}

// Save writes the registers and execution state to s.
func (c *CPU) Save(s *types.State) {
	for _, r := range c.r {
		s.Write8(r)
	}
	s.Write8(c.F())
	s.Write16(c.sp)
	s.Write16(c.pc)
	s.WriteBool(c.halted)
	s.WriteBool(c.overrun)
	s.Write8(c.remaining)
	s.Write64(c.ticks)
}

// Snapshot returns the saved CPU state followed by the little-endian
// xxhash of memory. It is the payload streamed to monitors.
func (c *CPU) Snapshot(checksum uint64) []byte {
	s := types.NewState()
	c.Save(s)
	s.Write64(checksum)
	return s.Bytes()
}
