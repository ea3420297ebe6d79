package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thelolagemann/sm83/internal/types"
)

func TestCPU_SaveLoad(t *testing.T) {
	c, _, _ := newTestCPU(t, []byte{
		0x01, 0x34, 0x12, // LD BC, $1234
		0x31, 0xFE, 0xFF, // LD SP, $FFFE
		0x3E, 0x0F, // LD A, $0F
		0x3C, // INC A
		0x76, // HALT
	})
	c.Run()

	s := types.NewState()
	c.Save(s)

	restored, _, _ := newTestCPU(t, nil)
	restored.Load(types.StateFromBytes(s.Bytes()))

	assert.Equal(t, c.A(), restored.A())
	assert.Equal(t, c.BC(), restored.BC())
	assert.Equal(t, c.SP(), restored.SP())
	assert.Equal(t, c.PC(), restored.PC())
	assert.Equal(t, c.Flags(), restored.Flags())
	assert.True(t, restored.HalfCarry())
	assert.Equal(t, c.Halted(), restored.Halted())
	assert.Equal(t, c.Ticks(), restored.Ticks())

	// the pairs still point at the restored registers
	restored.set16(PairBC, 0x4321)
	assert.Equal(t, uint8(0x43), restored.B())
}

func TestCPU_Snapshot(t *testing.T) {
	c, mem, _ := newTestCPU(t, []byte{0x76})
	c.Run()

	snap := c.Snapshot(mem.Checksum())
	s := types.StateFromBytes(snap)

	restored, _, _ := newTestCPU(t, nil)
	restored.Load(s)
	require.NoError(t, s.Err())
	assert.Equal(t, mem.Checksum(), s.Read64())
	assert.True(t, restored.Halted())
	assert.Equal(t, uint16(1), restored.PC())
}
