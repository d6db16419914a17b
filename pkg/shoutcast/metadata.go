package shoutcast

import (
	"strings"

	"github.com/zachfi/nowplaying/pkg/track"
)

// Metadata is one decoded ICY metadata block.
type Metadata struct {
	StreamTitle string
	StreamURL   string
}

// NewMetadata parses a metadata block such as
// "StreamTitle='Artist - Title';StreamUrl='';". Trailing NUL padding is
// ignored.
func NewMetadata(b []byte) *Metadata {
	m := &Metadata{}

	s := strings.TrimRight(string(b), "\x00")
	for s != "" {
		key, rest, ok := strings.Cut(s, "='")
		if !ok {
			break
		}
		// Values may contain quotes, so a value ends at the next "';".
		value, next, found := strings.Cut(rest, "';")
		if !found {
			value = strings.TrimSuffix(rest, "'")
		}

		switch strings.TrimSpace(key) {
		case "StreamTitle":
			m.StreamTitle = value
		case "StreamUrl":
			m.StreamURL = value
		}
		s = next
	}

	return m
}

// Equals reports whether m and other carry the same values. Two nil values
// are equal.
func (m *Metadata) Equals(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	return *m == *other
}

// Pairs splits StreamTitle on the first " - " into artist and title. A title
// without the separator is reported as the title alone.
func (m *Metadata) Pairs() []track.Pair {
	if m.StreamTitle == "" {
		return nil
	}

	artist, title, ok := strings.Cut(m.StreamTitle, " - ")
	if !ok {
		return []track.Pair{{Field: track.Title, Value: strings.TrimSpace(m.StreamTitle)}}
	}

	return []track.Pair{
		{Field: track.Artist, Value: strings.TrimSpace(artist)},
		{Field: track.Title, Value: strings.TrimSpace(title)},
	}
}
