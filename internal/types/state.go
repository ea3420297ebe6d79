package types

import (
	"errors"
	"fmt"
	"os"
)

// ErrShortState is reported by State.Err when a read ran past the end
// of the underlying data.
var ErrShortState = errors.New("state: unexpected end of data")

// Resettable is an interface that allows an object to be reset.
type Resettable interface {
	Reset() // Reset the state of the object
}

// Stater is an interface that allows an object to be saved
// and loaded from a state.
type Stater interface {
	Load(*State) // Load the state of the object
	Save(*State) // Save the state of the object
}

// State is a little-endian byte stream used to save and restore the
// machine between runs. Writes append, reads consume from the front.
// A read past the end yields zero values and records ErrShortState,
// so a Stater can load unconditionally and the caller checks Err once.
type State struct {
	raw          []byte
	readPosition int
	err          error
}

// NewState creates a new, empty state.
func NewState() *State {
	return &State{raw: make([]byte, 0, 64)}
}

// StateFromBytes creates a state that reads from raw.
func StateFromBytes(raw []byte) *State {
	return &State{raw: raw}
}

// StateFromFile reads a state previously written with SaveToFile.
func StateFromFile(filename string) (*State, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	return StateFromBytes(raw), nil
}

// Err returns the first error encountered while reading.
func (s *State) Err() error {
	return s.err
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
}

func (s *State) Write64(value uint64) {
	for i := 0; i < 8; i++ {
		s.raw = append(s.raw, byte(value>>(8*i)))
	}
}

func (s *State) WriteBool(value bool) {
	if value {
		s.Write8(1)
	} else {
		s.Write8(0)
	}
}

// WriteData writes a length-prefixed block of bytes.
func (s *State) WriteData(data []byte) {
	s.Write64(uint64(len(data)))
	s.raw = append(s.raw, data...)
}

// take returns the next n bytes, or nil if fewer remain.
func (s *State) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if s.readPosition+n > len(s.raw) {
		s.err = ErrShortState
		return nil
	}
	b := s.raw[s.readPosition : s.readPosition+n]
	s.readPosition += n
	return b
}

func (s *State) Read8() uint8 {
	b := s.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (s *State) Read16() uint16 {
	b := s.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (s *State) Read64() uint64 {
	b := s.take(8)
	if b == nil {
		return 0
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func (s *State) ReadBool() bool {
	return s.Read8() != 0
}

// ReadData reads a block written by WriteData into p, returning the
// number of bytes copied. Bytes that do not fit in p are skipped.
func (s *State) ReadData(p []byte) int {
	n := s.Read64()
	if s.err != nil {
		return 0
	}
	if n > uint64(len(s.raw)-s.readPosition) {
		s.err = ErrShortState
		return 0
	}
	b := s.take(int(n))
	return copy(p, b)
}

// SaveToFile writes the raw state to filename.
func (s *State) SaveToFile(filename string) error {
	return os.WriteFile(filename, s.raw, 0644)
}

// Bytes returns the raw state data.
func (s *State) Bytes() []byte {
	return s.raw
}
