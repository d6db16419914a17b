// Package vorbis decodes Vorbis comment headers into canonical track fields.
//
// See https://xiph.org/vorbis/doc/v-comment.html for the header layout.
package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zachfi/nowplaying/pkg/track"
)

// CommentHeaderType is the packet type byte of a comment header.
const CommentHeaderType = 0x03

// Marker is the prefix identifying a comment header packet.
var Marker = []byte("\x03vorbis")

// ErrTruncatedComment is returned when a length declared in the header runs
// past the end of the packet.
var ErrTruncatedComment = errors.New("vorbis: truncated comment header")

// fieldNames maps lowercased comment keys to canonical fields.
var fieldNames = map[string]string{
	"album":       track.Album,
	"albumartist": track.AlbumArtist,
	"title":       track.Title,
	"artist":      track.Artist,
	"date":        track.Year,
	"tracknumber": track.Track,
	"discnumber":  track.Disc,
	"genre":       track.Genre,
	"description": track.Comment,
	"composer":    track.Composer,
}

// CanonicalField returns the canonical field for a comment key, matched case
// insensitively.
func CanonicalField(key string) (string, bool) {
	f, ok := fieldNames[strings.ToLower(key)]
	return f, ok
}

// IsCommentHeader reports whether pkt starts with the comment header marker.
func IsCommentHeader(pkt []byte) bool {
	return bytes.HasPrefix(pkt, Marker)
}

// DecodeComment decodes the body of a comment header, that is the packet
// with the marker already stripped. The vendor string is skipped. Entries
// that are not valid UTF-8, lack a '=' or use an unknown key are dropped;
// the others are returned in the order they appear, duplicates included.
func DecodeComment(data []byte) ([]track.Pair, error) {
	c := cursor{data: data}

	vendorLen, err := c.uint32("vendor length")
	if err != nil {
		return nil, err
	}
	if _, err := c.next(vendorLen, "vendor string"); err != nil {
		return nil, err
	}

	count, err := c.uint32("comment count")
	if err != nil {
		return nil, err
	}

	var pairs []track.Pair
	for i := uint32(0); i < count; i++ {
		n, err := c.uint32("comment length")
		if err != nil {
			return pairs, err
		}
		entry, err := c.next(n, "comment")
		if err != nil {
			return pairs, err
		}

		if !utf8.Valid(entry) {
			continue
		}
		key, value, ok := strings.Cut(string(entry), "=")
		if !ok {
			continue
		}
		if field, ok := CanonicalField(key); ok {
			pairs = append(pairs, track.Pair{Field: field, Value: value})
		}
	}

	return pairs, nil
}

type cursor struct {
	data []byte
	off  int
}

func (c *cursor) next(n uint32, what string) ([]byte, error) {
	if uint64(n) > uint64(len(c.data)-c.off) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d left", ErrTruncatedComment, what, n, len(c.data)-c.off)
	}
	b := c.data[c.off : c.off+int(n)]
	c.off += int(n)
	return b, nil
}

func (c *cursor) uint32(what string) (uint32, error) {
	b, err := c.next(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
