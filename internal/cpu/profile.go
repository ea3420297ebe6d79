package cpu

import "sort"

// Profile counts how often each opcode ran and how many ticks it
// accounted for. Attach one with WithProfile.
type Profile struct {
	Executions [256]uint64
	Ticks      [256]uint64
	// Unknown counts fetches of opcodes with no handler.
	Unknown [256]uint64

	names [256]string
}

// ProfileEntry is the summary of a single opcode.
type ProfileEntry struct {
	Opcode     uint8
	Name       string
	Executions uint64
	Ticks      uint64
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{}
}

func (p *Profile) record(opcode uint8, op Opcode) {
	p.Executions[opcode]++
	p.Ticks[opcode] += uint64(op.Cycles)
	p.names[opcode] = op.Name
}

func (p *Profile) unknown(opcode uint8) {
	p.Unknown[opcode]++
	p.Ticks[opcode]++
}

// Total returns the number of instructions executed.
func (p *Profile) Total() uint64 {
	var total uint64
	for _, n := range p.Executions {
		total += n
	}
	return total
}

// Top returns up to n executed opcodes, most executed first. Ties are
// broken by opcode.
func (p *Profile) Top(n int) []ProfileEntry {
	entries := make([]ProfileEntry, 0, 16)
	for i, count := range p.Executions {
		if count == 0 {
			continue
		}
		entries = append(entries, ProfileEntry{
			Opcode:     uint8(i),
			Name:       p.names[i],
			Executions: count,
			Ticks:      p.Ticks[i],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Executions != entries[j].Executions {
			return entries[i].Executions > entries[j].Executions
		}
		return entries[i].Opcode < entries[j].Opcode
	})

	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
