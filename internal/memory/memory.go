// Package memory provides the flat, fixed-capacity byte buffer that the
// CPU fetches from and mutates.
//
// The buffer is shared: Raw returns the live slice, and a CPU bound to
// a Memory keeps that slice for its whole lifetime. Only one writer may
// touch the buffer while a CPU is running; mutating it from the host
// during a run, or running two CPUs against it at once, is undefined.
package memory

import (
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/thelolagemann/sm83/internal/types"
)

const (
	// DefaultSize is the capacity used by hosts that don't ask for one.
	DefaultSize = 0x2000 // 8 KiB
	// MaxSize is the largest buffer the 16-bit address space can reach.
	MaxSize = 0x10000
)

// Memory owns a zero-initialised byte buffer of fixed capacity.
type Memory struct {
	data []byte
}

// New returns a Memory of the given capacity. It panics if size is
// outside 1..MaxSize, as no address could reach the excess.
func New(size int) *Memory {
	if size <= 0 || size > MaxSize {
		panic(fmt.Sprintf("memory: invalid size %d", size))
	}
	return &Memory{
		data: make([]byte, size),
	}
}

// Clear resets every byte to zero.
func (m *Memory) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// Load copies data into the buffer starting at offset and returns the
// number of bytes copied. Bytes that would land past the end of the
// buffer are dropped; an offset outside the buffer copies nothing.
func (m *Memory) Load(data []byte, offset int) int {
	if offset < 0 || offset >= len(m.data) {
		return 0
	}
	return copy(m.data[offset:], data)
}

// Raw returns the live buffer. It is not a copy.
func (m *Memory) Raw() []byte {
	return m.data
}

// Len returns the capacity of the buffer.
func (m *Memory) Len() int {
	return len(m.data)
}

// Checksum returns the xxhash of the buffer contents, used to compare
// memory images across runs and save states.
func (m *Memory) Checksum() uint64 {
	return xxhash.Sum64(m.data)
}

// SaveState writes the buffer to s. Memory can't satisfy types.Stater
// directly, as Load is taken by image loading.
func (m *Memory) SaveState(s *types.State) {
	s.WriteData(m.data)
}

// LoadState restores the buffer from s in place, so a CPU bound to m keeps
// seeing the restored contents. A state taken from a larger buffer is
// truncated; a smaller one leaves the tail zeroed.
func (m *Memory) LoadState(s *types.State) {
	m.Clear()
	s.ReadData(m.data)
}
