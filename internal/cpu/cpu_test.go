package cpu

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/sm83/internal/memory"
	"github.com/thelolagemann/sm83/internal/types"
	"github.com/thelolagemann/sm83/pkg/log"
)

// newTestCPU returns a CPU bound to a default sized memory holding
// program at address 0, and the buffer its log is written to.
func newTestCPU(t *testing.T, program []byte, opts ...Opt) (*CPU, *memory.Memory, *bytes.Buffer) {
	t.Helper()
	mem := memory.New(memory.DefaultSize)
	mem.Load(program, 0)

	var out bytes.Buffer
	opts = append([]Opt{WithLogger(log.NewWithWriter(&out, logrus.DebugLevel))}, opts...)
	return New(mem, opts...), mem, &out
}

func TestCPU_Programs(t *testing.T) {
	t.Run("NOP, HALT", func(t *testing.T) {
		c, _, out := newTestCPU(t, []byte{
			0b0000_0000, // NOP
			0b0111_0110, // HALT
		})
		c.Run()

		assert.True(t, c.Halted())
		assert.Equal(t, uint16(2), c.PC())
		assert.Empty(t, out.String())
	})
	t.Run("LD r8, n8", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0110, 0x55, // LD B, $55
			0b0011_1110, 0xAA, // LD A, $AA
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint8(0x55), c.B())
		assert.Equal(t, uint8(0xAA), c.A())
	})
	t.Run("LD r8, r8", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0110, 0x12, // LD B, $12
			0b0111_1000, // LD A, B
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint8(0x12), c.A())
		assert.Equal(t, uint8(0x12), c.B())
	})
	t.Run("LD r16, n16", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0001, 0x55, 0xAA, // LD BC, $AA55
			0b0001_0001, 0xF0, 0x0F, // LD DE, $0FF0
			0b0010_0001, 0x34, 0x12, // LD HL, $1234
			0b0011_0001, 0xFE, 0xFF, // LD SP, $FFFE
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint16(0xAA55), c.BC())
		assert.Equal(t, uint16(0x0FF0), c.DE())
		assert.Equal(t, uint16(0x1234), c.HL())
		assert.Equal(t, uint16(0xFFFE), c.SP())
	})
	t.Run("LD [BC], A", func(t *testing.T) {
		c, mem, _ := newTestCPU(t, []byte{
			0b0011_1110, 0xAA, // LD A, $AA
			0b0000_0001, 0x06, 0x00, // LD BC, $0006
			0b0000_0010, // LD [BC], A
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint8(0xAA), mem.Raw()[6])
	})
	t.Run("LD A, [BC]", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0001, 0x05, 0x00, // LD BC, $0005
			0b0000_1010, // LD A, [BC]
			0b0111_0110, // HALT
			0xAA,
		})
		c.Run()

		assert.Equal(t, uint8(0xAA), c.A())
	})
	t.Run("INC r16, DEC r16", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0001, 0x02, 0x00, // LD BC, $0002
			0b0001_0001, 0x02, 0x00, // LD DE, $0002
			0b0000_0011, // INC BC
			0b0001_1011, // DEC DE
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint16(0x03), c.BC())
		assert.Equal(t, uint16(0x01), c.DE())
	})
	t.Run("INC r8 twice", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0100, // INC B
			0b0000_0100, // INC B
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint8(2), c.B())
		assert.False(t, c.Zero())
		assert.False(t, c.HalfCarry())
		assert.False(t, c.Subtraction())
	})
	t.Run("DEC r8 twice", func(t *testing.T) {
		c, _, _ := newTestCPU(t, []byte{
			0b0000_0101, // DEC B
			0b0000_0101, // DEC B
			0b0111_0110, // HALT
		})
		c.Run()

		assert.Equal(t, uint8(0xFE), c.B())
		assert.False(t, c.Zero())
		assert.False(t, c.HalfCarry())
		assert.True(t, c.Subtraction())
	})
}

func TestCPU_AddHL(t *testing.T) {
	tests := []struct {
		name      string
		bc, hl    uint16
		want      uint16
		halfCarry bool
		carry     bool
	}{
		{"no carry", 0x0003, 0x0002, 0x0005, false, false},
		{"half carry", 0x0FFF, 0x0FFF, 0x1FFE, true, false},
		{"carry", 0xF000, 0xF000, 0xE000, false, true},
		{"both", 0xFFFF, 0x0001, 0x0000, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCPU(t, []byte{
				0b0000_0001, uint8(tt.bc), uint8(tt.bc >> 8), // LD BC, n16
				0b0010_0001, uint8(tt.hl), uint8(tt.hl >> 8), // LD HL, n16
				0b0000_1001, // ADD HL, BC
				0b0111_0110, // HALT
			})
			c.Run()

			assert.Equal(t, tt.want, c.HL())
			assert.Equal(t, tt.halfCarry, c.HalfCarry(), "half carry")
			assert.Equal(t, tt.carry, c.Carry(), "carry")
			assert.False(t, c.Subtraction())
		})
	}
}

func TestCPU_PairWraparound(t *testing.T) {
	c, _, _ := newTestCPU(t, []byte{
		0b0000_0001, 0xFF, 0xFF, // LD BC, $FFFF
		0b0001_0001, 0x00, 0x00, // LD DE, $0000
		0b0000_0011, // INC BC
		0b0001_1011, // DEC DE
		0b0111_0110, // HALT
	})
	c.Run()

	assert.Equal(t, uint16(0x0000), c.BC())
	assert.Equal(t, uint16(0xFFFF), c.DE())
	assert.Equal(t, Flags{}, c.Flags(), "16-bit INC/DEC leave flags alone")
}

func TestCPU_UnrecognisedInstruction(t *testing.T) {
	c, _, out := newTestCPU(t, []byte{
		0b1101_0011, // unused on hardware
		0b0111_0110, // HALT
	})

	assert.NotPanics(t, c.Run)
	assert.True(t, c.Halted())
	assert.Contains(t, out.String(), "11010011")
	assert.Equal(t, uint64(2), c.Ticks(), "an unknown opcode costs only its fetch")
}

func TestCPU_Timing(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		ticks   uint64
	}{
		{"NOP, HALT", []byte{0x00, 0x76}, 2},
		{"LD B, n8, HALT", []byte{0x06, 0x01, 0x76}, 3},
		{"LD BC, n16, HALT", []byte{0x01, 0x01, 0x02, 0x76}, 4},
		{"LD [n16], SP, HALT", []byte{0x08, 0x00, 0x10, 0x76}, 6},
		{"INC BC, ADD HL, BC, HALT", []byte{0x03, 0x09, 0x76}, 5},
		{"LD A, [HL], HALT", []byte{0x7E, 0x76}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestCPU(t, tt.program)
			c.Run()
			assert.Equal(t, tt.ticks, c.Ticks())
		})
	}
}

func TestCPU_Step(t *testing.T) {
	c, _, _ := newTestCPU(t, []byte{
		0b0000_0001, 0x34, 0x12, // LD BC, $1234
		0b0111_0110, // HALT
	})

	// the whole effect lands on the first tick
	require.True(t, c.Step())
	assert.Equal(t, uint16(0x1234), c.BC())
	assert.Equal(t, uint16(3), c.PC())

	// then two idle ticks
	require.True(t, c.Step())
	require.True(t, c.Step())
	assert.Equal(t, uint16(3), c.PC())
	assert.False(t, c.Halted())

	require.True(t, c.Step())
	assert.True(t, c.Halted())

	assert.False(t, c.Step())
	assert.Equal(t, uint64(4), c.Ticks())
}

func TestCPU_EndOfMemory(t *testing.T) {
	mem := memory.New(4)
	mem.Load([]byte{0x00, 0x04, 0x04, 0x01}, 0) // NOP, INC B, INC B, LD BC, n16
	c := New(mem, WithLogger(log.NewNullLogger()))
	c.Run()

	assert.False(t, c.Halted())
	assert.Equal(t, uint8(0xFF), c.C(), "operands past memory read as $FF")
	assert.Equal(t, uint8(0xFF), c.B())
	assert.Equal(t, uint16(6), c.PC())
	assert.Equal(t, uint64(6), c.Ticks())
}

func TestCPU_EndOfFullMemory(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		c := New(memory.New(memory.MaxSize), WithLogger(log.NewNullLogger()))

		assert.Equal(t, uint64(memory.MaxSize), c.RunFor(memory.MaxSize+1000))
		assert.Equal(t, uint16(0), c.PC(), "PC wrapped")
		assert.False(t, c.Step())
		assert.NotPanics(t, c.Run)
		assert.Equal(t, uint64(memory.MaxSize), c.Ticks())

		// survives a save state
		s := types.NewState()
		c.Save(s)
		restored := New(memory.New(memory.DefaultSize), WithLogger(log.NewNullLogger()))
		restored.Load(s)
		assert.False(t, restored.Step())

		// and Reset starts over
		c.Reset()
		assert.True(t, c.Step())
	})

	t.Run("operand", func(t *testing.T) {
		mem := memory.New(memory.MaxSize)
		mem.Load([]byte{0b0000_0001, 0x34}, 0xFFFE) // LD BC, $??34
		c := New(mem, WithLogger(log.NewNullLogger()))
		c.pc = 0xFFFE
		c.Run()

		assert.Equal(t, uint16(0xFF34), c.BC(), "operands past memory read as $FF")
		assert.Equal(t, uint64(3), c.Ticks())
		assert.False(t, c.Halted())
	})
}

func TestCPU_RunFor(t *testing.T) {
	// LD B, n8 / DEC B / JR loop would need jumps, so spin on a long
	// run of NOPs instead
	c, _, _ := newTestCPU(t, nil)

	assert.Equal(t, uint64(100), c.RunFor(100))
	assert.Equal(t, uint16(100), c.PC())

	// resumes where it left off
	assert.Equal(t, uint64(10), c.RunFor(10))
	assert.Equal(t, uint16(110), c.PC())

	// and stops early on HALT
	c.mem[120] = 0x76
	assert.Equal(t, uint64(11), c.RunFor(1000))
	assert.True(t, c.Halted())
}

func TestCPU_Reuse(t *testing.T) {
	c, mem, _ := newTestCPU(t, []byte{
		0b0000_0100, // INC B
		0b0111_0110, // HALT
		0b0000_0100, // INC B
		0b0111_0110, // HALT
	})

	c.Run()
	assert.Equal(t, uint8(1), c.B())
	assert.True(t, c.Halted())

	// a second run picks up after the HALT
	c.Run()
	assert.Equal(t, uint8(2), c.B())
	assert.Equal(t, uint16(4), c.PC())

	// Reset starts the program again, reading the same buffer
	mem.Load([]byte{0b0000_0101}, 0) // DEC B
	c.Reset()
	assert.Equal(t, uint8(0), c.B())
	assert.Zero(t, c.Ticks())
	c.Run()
	assert.Equal(t, uint8(0xFF), c.B())
}

func TestCPU_OutsideMemory(t *testing.T) {
	c, _, out := newTestCPU(t, []byte{
		0b0011_1110, 0x42, // LD A, $42
		0b0000_0001, 0x00, 0x90, // LD BC, $9000
		0b0000_0010, // LD [BC], A
		0b0000_1010, // LD A, [BC]
		0b0111_0110, // HALT
	})

	assert.NotPanics(t, c.Run)
	assert.Equal(t, uint8(0xFF), c.A())
	assert.Contains(t, out.String(), "outside memory")
}

func TestCPU_Trace(t *testing.T) {
	c, _, out := newTestCPU(t, []byte{
		0b0000_0110, 0x55, // LD B, $55
		0b0111_0110, // HALT
	}, WithTrace())
	c.Run()

	assert.Contains(t, out.String(), "LD B, $55")
	assert.Contains(t, out.String(), "HALT")
}
