package monitor

import "encoding/binary"

// Type is the first byte of every message sent to a client.
type Type = uint8

const (
	// Info carries the hub settings and the client's ID:
	//
	//	[Info, settings, id]
	//
	// Bit 0 of settings is set when snapshot payloads are brotli
	// compressed.
	Info Type = iota + 1
	// Snapshot carries a new snapshot and the cache slot it now
	// occupies:
	//
	//	[Snapshot, slot (2 bytes LE), payload...]
	Snapshot
	// SnapshotCache repeats a snapshot the client already holds:
	//
	//	[SnapshotCache, slot (2 bytes LE)]
	SnapshotCache
	// CacheSync sends every cached snapshot to a newly connected
	// client, as a run of [length (2), slot (2), payload] records.
	CacheSync

	// Close is sent by a client that is about to disconnect.
	Close Type = 255
)

const settingCompression = 1 << 0

func newMessage(t Type, slot uint16, payload []byte) []byte {
	msg := make([]byte, 3, 3+len(payload))
	msg[0] = t
	binary.LittleEndian.PutUint16(msg[1:], slot)
	return append(msg, payload...)
}
