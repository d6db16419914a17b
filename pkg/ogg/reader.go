package ogg

import (
	"io"
	"iter"
)

// PacketReader reassembles logical packets from a stream of pages. It makes a
// single forward pass over the stream and cannot be restarted.
type PacketReader struct {
	r io.Reader

	// carry holds the leading part of a packet that continues on a later page.
	carry []byte
	// pending holds packets completed by the last page but not yet returned.
	pending [][]byte

	serial  uint32
	started bool
	pages   int
	err     error
}

// NewPacketReader returns a PacketReader reading pages from r.
func NewPacketReader(r io.Reader) *PacketReader {
	return &PacketReader{r: r}
}

// Next returns the next complete packet. It returns io.EOF once the stream
// ends cleanly on a page boundary. After any error, every later call returns
// the same error.
func (pr *PacketReader) Next() ([]byte, error) {
	for len(pr.pending) == 0 {
		if pr.err != nil {
			return nil, pr.err
		}

		page, err := ReadPage(pr.r)
		if err != nil {
			pr.err = err
			pr.carry = nil
			return nil, err
		}
		pr.pages++
		pr.split(page)
	}

	pkt := pr.pending[0]
	pr.pending[0] = nil
	pr.pending = pr.pending[1:]
	return pkt, nil
}

// Pages returns the number of pages read so far.
func (pr *PacketReader) Pages() int { return pr.pages }

// split walks the segment table of page, queueing every packet it completes
// and keeping an unterminated tail as carry for the next page.
func (pr *PacketReader) split(page *Page) {
	if pr.started && (page.BOS() || page.SerialNumber != pr.serial) {
		// A new logical bitstream cannot continue a packet from the old one.
		pr.carry = nil
	}
	pr.serial = page.SerialNumber
	pr.started = true

	start, end := 0, 0
	open := false
	for _, lace := range page.Segments {
		end += int(lace)
		open = true
		if lace < maxLace {
			pr.pending = append(pr.pending, pr.join(page.Payload[start:end]))
			start = end
			open = false
		}
	}

	if open {
		pr.carry = append(pr.carry, page.Payload[start:end]...)
	}
}

func (pr *PacketReader) join(b []byte) []byte {
	pkt := make([]byte, 0, len(pr.carry)+len(b))
	pkt = append(pkt, pr.carry...)
	pkt = append(pkt, b...)
	pr.carry = nil
	return pkt
}

// Packets returns an iterator over the packets in r. Iteration stops after
// the first error, which is yielded; a clean end of stream yields nothing.
func Packets(r io.Reader) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		pr := NewPacketReader(r)
		for {
			pkt, err := pr.Next()
			if err == io.EOF {
				return
			}
			if !yield(pkt, err) || err != nil {
				return
			}
		}
	}
}
