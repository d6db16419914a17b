package ogg

import (
	"bytes"
	"testing"
)

func TestSegmentTable(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0}},
		{10, []byte{10}},
		{255, []byte{255, 0}},
		{600, []byte{255, 255, 90}},
	}

	for _, tc := range tests {
		if got := SegmentTable(tc.n); !bytes.Equal(got, tc.want) {
			t.Errorf("SegmentTable(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestWriterSpillsLargePacketsAcrossPages(t *testing.T) {
	small := []byte("header")
	large := bytes.Repeat([]byte{0x5a}, 255*255+1000)

	var buf bytes.Buffer
	w := NewWriter(&buf, 42)
	if err := w.WritePacket(small, 0, false); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePacket(large, 1024, true); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()

	var pages []*Page
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		p, err := ReadPage(r)
		if err != nil {
			t.Fatal(err)
		}
		pages = append(pages, p)
	}

	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	if !pages[0].BOS() || pages[1].BOS() {
		t.Errorf("BOS flag only expected on the first page")
	}
	if !pages[2].Continued() || !pages[2].EOS() {
		t.Errorf("last page flags = %#x", pages[2].Flags)
	}
	if pages[1].GranulePosition != -1 || pages[2].GranulePosition != 1024 {
		t.Errorf("granule positions = %d, %d", pages[1].GranulePosition, pages[2].GranulePosition)
	}

	pkts, err := readAll(t, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(pkts) != 2 || !bytes.Equal(pkts[0], small) || !bytes.Equal(pkts[1], large) {
		t.Fatalf("packets did not survive the round trip")
	}
}

func TestEncodeChecksumCoversPayload(t *testing.T) {
	a := &Page{SerialNumber: 1, Segments: []byte{3}, Payload: []byte("abc")}
	b := &Page{SerialNumber: 1, Segments: []byte{3}, Payload: []byte("abd")}
	a.Encode()
	b.Encode()

	if a.Checksum == 0 || a.Checksum == b.Checksum {
		t.Fatalf("checksums %#x and %#x should differ", a.Checksum, b.Checksum)
	}
}
