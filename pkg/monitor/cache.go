package monitor

import "encoding/binary"

// cacheSize is the number of snapshots clients are expected to keep.
const cacheSize = 64

type cacheEntry struct {
	hash uint64
	data []byte
}

// cache is a ring of recently sent snapshots keyed by their hash.
type cache struct {
	entries [cacheSize]cacheEntry
	next    int
}

// index returns the slot holding hash, or -1.
func (c *cache) index(hash uint64) int {
	for i, e := range c.entries {
		if e.data != nil && e.hash == hash {
			return i
		}
	}
	return -1
}

// add stores data in the next slot, evicting the oldest entry, and
// returns the slot used.
func (c *cache) add(hash uint64, data []byte) int {
	slot := c.next
	c.entries[slot] = cacheEntry{hash: hash, data: data}
	c.next = (c.next + 1) % cacheSize
	return slot
}

// remove forgets hash, if present.
func (c *cache) remove(hash uint64) {
	if i := c.index(hash); i != -1 {
		c.entries[i] = cacheEntry{}
	}
}

// sync encodes every entry as a CacheSync payload.
func (c *cache) sync() []byte {
	var data []byte
	for i, e := range c.entries {
		if e.data == nil {
			continue
		}
		var header [4]byte
		binary.LittleEndian.PutUint16(header[0:], uint16(len(e.data)))
		binary.LittleEndian.PutUint16(header[2:], uint16(i))
		data = append(data, header[:]...)
		data = append(data, e.data...)
	}
	return data
}
