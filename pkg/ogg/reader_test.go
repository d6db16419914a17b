package ogg

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func encodePage(serial uint32, flags byte, segments []byte, payload []byte) []byte {
	p := &Page{
		Flags:        flags,
		SerialNumber: serial,
		Segments:     segments,
		Payload:      payload,
	}
	return p.Encode()
}

func readAll(t *testing.T, r io.Reader) ([][]byte, error) {
	t.Helper()

	var pkts [][]byte
	pr := NewPacketReader(r)
	for {
		pkt, err := pr.Next()
		if err == io.EOF {
			return pkts, nil
		}
		if err != nil {
			return pkts, err
		}
		pkts = append(pkts, pkt)
	}
}

func TestReadPage(t *testing.T) {
	payload := []byte("hello world")
	src := &Page{
		Flags:           FlagBOS,
		GranulePosition: 4096,
		SerialNumber:    0xdeadbeef,
		SequenceNumber:  7,
		Segments:        []byte{byte(len(payload))},
		Payload:         payload,
	}
	data := src.Encode()

	page, err := ReadPage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}

	if page.GranulePosition != 4096 || page.SerialNumber != 0xdeadbeef || page.SequenceNumber != 7 {
		t.Errorf("unexpected header fields: %+v", page)
	}
	if !page.BOS() || page.EOS() || page.Continued() {
		t.Errorf("unexpected flags %#x", page.Flags)
	}
	if page.Checksum != src.Checksum {
		t.Errorf("checksum = %#x, want %#x", page.Checksum, src.Checksum)
	}
	if !bytes.Equal(page.Payload, payload) {
		t.Errorf("payload = %q, want %q", page.Payload, payload)
	}
}

func TestReadPageErrors(t *testing.T) {
	valid := encodePage(1, 0, []byte{3}, []byte("abc"))

	badPattern := append([]byte(nil), valid...)
	copy(badPattern, "OggX")

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 1

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.EOF},
		{"short header", valid[:10], ErrTruncatedHeader},
		{"bad capture pattern", badPattern, ErrInvalidPage},
		{"bad version", badVersion, ErrInvalidPage},
		{"short segment table", valid[:headerSize], ErrTruncatedPage},
		{"short payload", valid[:len(valid)-1], ErrTruncatedPage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadPage(bytes.NewReader(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPacketReaderZeroSegmentPage(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, nil, nil))
	buf.Write(encodePage(1, 0, []byte{2}, []byte("ok")))

	pkts, err := readAll(t, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 1 || string(pkts[0]) != "ok" {
		t.Fatalf("packets = %q, want [ok]", pkts)
	}
}

func TestPacketReaderZeroSegmentPageKeepsCarry(t *testing.T) {
	first := bytes.Repeat([]byte{'a'}, 255)

	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{255}, first))
	buf.Write(encodePage(1, 0, nil, nil))
	buf.Write(encodePage(1, FlagContinued, []byte{1}, []byte("b")))

	pkts, err := readAll(t, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 1 || len(pkts[0]) != 256 || pkts[0][255] != 'b' {
		t.Fatalf("unexpected packets: %d", len(pkts))
	}
}

func TestPacketReaderSpansTwoPages(t *testing.T) {
	first := bytes.Repeat([]byte{'x'}, 2*255)
	second := bytes.Repeat([]byte{'y'}, 255+40)

	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{255, 255}, first))
	buf.Write(encodePage(1, FlagContinued, []byte{255, 40}, second))

	pkts, err := readAll(t, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 1 {
		t.Fatalf("got %d packets, want 1", len(pkts))
	}

	want := append(append([]byte(nil), first...), second...)
	if !bytes.Equal(pkts[0], want) {
		t.Fatalf("packet length %d, want %d", len(pkts[0]), len(want))
	}
}

func TestPacketReaderSeveralPacketsPerPage(t *testing.T) {
	long := bytes.Repeat([]byte{'l'}, 300)
	payload := append([]byte("one"), long...)
	payload = append(payload, "three"...)

	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{3, 255, 45, 0, 5}, payload))

	pkts, err := readAll(t, &buf)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]byte{[]byte("one"), long, {}, []byte("three")}
	if len(pkts) != len(want) {
		t.Fatalf("got %d packets, want %d", len(pkts), len(want))
	}
	for i := range want {
		if !bytes.Equal(pkts[i], want[i]) {
			t.Errorf("packet %d = %q, want %q", i, pkts[i], want[i])
		}
	}
}

func TestPacketReaderExactMultipleOf255(t *testing.T) {
	body := bytes.Repeat([]byte{'z'}, 255)

	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{255}, body))
	buf.Write(encodePage(1, FlagContinued, []byte{0, 2}, []byte("hi")))

	pkts, err := readAll(t, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if !bytes.Equal(pkts[0], body) || string(pkts[1]) != "hi" {
		t.Fatalf("unexpected packets %d/%d bytes", len(pkts[0]), len(pkts[1]))
	}
}

func TestPacketReaderInvalidPageIsFinal(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{5}, []byte("first")))
	buf.WriteString("NotOggAtAll, just some bytes after a good page")
	buf.Write(encodePage(1, 0, []byte{5}, []byte("after")))

	pr := NewPacketReader(&buf)

	pkt, err := pr.Next()
	if err != nil || string(pkt) != "first" {
		t.Fatalf("Next = %q, %v", pkt, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := pr.Next(); !errors.Is(err, ErrInvalidPage) {
			t.Fatalf("call %d: err = %v, want ErrInvalidPage", i, err)
		}
	}
}

func TestPacketReaderNewBitstreamDropsCarry(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{255}, bytes.Repeat([]byte{'a'}, 255)))
	buf.Write(encodePage(2, FlagBOS, []byte{3}, []byte("new")))

	pkts, err := readAll(t, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 1 || string(pkts[0]) != "new" {
		t.Fatalf("packets = %q, want [new]", pkts)
	}
}

func TestPacketsIterator(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodePage(1, FlagBOS, []byte{1, 1}, []byte("ab")))
	buf.Write([]byte("Og"))

	var got []string
	var last error
	for pkt, err := range Packets(&buf) {
		if err != nil {
			last = err
			break
		}
		got = append(got, string(pkt))
	}

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("packets = %q", got)
	}
	if !errors.Is(last, ErrTruncatedHeader) {
		t.Errorf("err = %v, want ErrTruncatedHeader", last)
	}
}
