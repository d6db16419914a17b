package ogg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Page header flags.
const (
	FlagContinued = 0x01
	FlagBOS       = 0x02
	FlagEOS       = 0x04
)

const (
	capturePattern = "OggS"
	headerSize     = 27

	// maxLace is the lacing value that continues a packet into the next lace.
	maxLace = 255
)

// Page is a single Ogg page as read from the stream.
type Page struct {
	Version         byte
	Flags           byte
	GranulePosition int64
	SerialNumber    uint32
	SequenceNumber  uint32
	Checksum        uint32

	// Segments holds the lacing values, one per lace in Payload.
	Segments []byte
	Payload  []byte
}

// BOS reports whether the page begins a logical bitstream.
func (p *Page) BOS() bool { return p.Flags&FlagBOS != 0 }

// EOS reports whether the page ends a logical bitstream.
func (p *Page) EOS() bool { return p.Flags&FlagEOS != 0 }

// Continued reports whether the first lace continues a packet from an
// earlier page.
func (p *Page) Continued() bool { return p.Flags&FlagContinued != 0 }

// ReadPage reads the next page from r.
//
// It returns io.EOF when r is exhausted exactly on a page boundary.
func ReadPage(r io.Reader) (*Page, error) {
	var hdr [headerSize]byte

	n, err := io.ReadFull(r, hdr[:])
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedHeader, n, headerSize)
	case err != nil:
		return nil, fmt.Errorf("ogg: reading page header: %w", err)
	}

	if string(hdr[0:4]) != capturePattern {
		return nil, fmt.Errorf("%w: capture pattern %q", ErrInvalidPage, hdr[0:4])
	}
	if hdr[4] != 0 {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidPage, hdr[4])
	}

	p := &Page{
		Version:         hdr[4],
		Flags:           hdr[5],
		GranulePosition: int64(binary.LittleEndian.Uint64(hdr[6:14])),
		SerialNumber:    binary.LittleEndian.Uint32(hdr[14:18]),
		SequenceNumber:  binary.LittleEndian.Uint32(hdr[18:22]),
		Checksum:        binary.LittleEndian.Uint32(hdr[22:26]),
		Segments:        make([]byte, hdr[26]),
	}

	if _, err := io.ReadFull(r, p.Segments); err != nil {
		return nil, truncated("segment table", err)
	}

	size := 0
	for _, lace := range p.Segments {
		size += int(lace)
	}

	p.Payload = make([]byte, size)
	if _, err := io.ReadFull(r, p.Payload); err != nil {
		return nil, truncated("payload", err)
	}

	return p, nil
}

func truncated(what string, err error) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short %s", ErrTruncatedPage, what)
	}
	return fmt.Errorf("ogg: reading %s: %w", what, err)
}

// Encode serialises the page, filling in the checksum. The Checksum field is
// updated to match.
func (p *Page) Encode() []byte {
	data := make([]byte, headerSize+len(p.Segments)+len(p.Payload))

	copy(data[0:4], capturePattern)
	data[4] = p.Version
	data[5] = p.Flags
	binary.LittleEndian.PutUint64(data[6:14], uint64(p.GranulePosition))
	binary.LittleEndian.PutUint32(data[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:22], p.SequenceNumber)
	data[26] = byte(len(p.Segments))
	copy(data[headerSize:], p.Segments)
	copy(data[headerSize+len(p.Segments):], p.Payload)

	p.Checksum = checksum(data)
	binary.LittleEndian.PutUint32(data[22:26], p.Checksum)

	return data
}

// SegmentTable returns the lacing values for a packet of n bytes. A packet
// whose length is a multiple of 255 gets a terminating zero lace.
func SegmentTable(n int) []byte {
	laces := make([]byte, 0, n/maxLace+1)
	for n >= maxLace {
		laces = append(laces, maxLace)
		n -= maxLace
	}
	return append(laces, byte(n))
}
