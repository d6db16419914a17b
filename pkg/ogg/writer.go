package ogg

import "io"

// maxSegments is the number of lacing values a single page can hold.
const maxSegments = 255

// Writer packs packets of one logical bitstream into pages.
type Writer struct {
	w        io.Writer
	serial   uint32
	sequence uint32
	started  bool
}

// NewWriter returns a Writer emitting pages with the given serial number.
func NewWriter(w io.Writer, serial uint32) *Writer {
	return &Writer{w: w, serial: serial}
}

// WritePacket writes pkt, spreading it over as many pages as its segment
// table needs. The first page of the stream carries the BOS flag; eos marks
// the last page written for this packet as the end of the stream.
func (w *Writer) WritePacket(pkt []byte, granule int64, eos bool) error {
	laces := SegmentTable(len(pkt))
	continued := false

	for len(laces) > 0 {
		n := min(len(laces), maxSegments)

		size := 0
		for _, lace := range laces[:n] {
			size += int(lace)
		}

		page := &Page{
			GranulePosition: -1,
			SerialNumber:    w.serial,
			SequenceNumber:  w.sequence,
			Segments:        laces[:n],
			Payload:         pkt[:size],
		}
		if !w.started {
			page.Flags |= FlagBOS
			w.started = true
		}
		if continued {
			page.Flags |= FlagContinued
		}

		laces, pkt = laces[n:], pkt[size:]
		if len(laces) == 0 {
			page.GranulePosition = granule
			if eos {
				page.Flags |= FlagEOS
			}
		}

		if _, err := w.w.Write(page.Encode()); err != nil {
			return err
		}
		w.sequence++
		continued = true
	}

	return nil
}
