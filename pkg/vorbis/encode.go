package vorbis

import (
	"encoding/binary"
)

// Comment is a comment header ready to be encoded.
type Comment struct {
	Vendor string
	// Entries are raw "KEY=value" strings, written as given.
	Entries []string
}

// Encode returns the full comment header packet, marker included, followed
// by the framing bit.
func (c Comment) Encode() []byte {
	size := len(Marker) + 4 + len(c.Vendor) + 4 + 1
	for _, e := range c.Entries {
		size += 4 + len(e)
	}

	b := make([]byte, 0, size)
	b = append(b, Marker...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(c.Vendor)))
	b = append(b, c.Vendor...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(c.Entries)))
	for _, e := range c.Entries {
		b = binary.LittleEndian.AppendUint32(b, uint32(len(e)))
		b = append(b, e...)
	}
	return append(b, 1)
}
