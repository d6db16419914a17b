// Package track holds the now playing data model: decoded metadata pairs,
// the records built from them and the bounded history of recent tracks.
package track

// Canonical metadata fields.
const (
	Album       = "album"
	AlbumArtist = "albumartist"
	Title       = "title"
	Artist      = "artist"
	Year        = "year"
	Track       = "track"
	Disc        = "disc"
	Genre       = "genre"
	Comment     = "comment"
	Composer    = "composer"
)

// Fields lists the canonical fields in a stable order.
var Fields = []string{Album, AlbumArtist, Title, Artist, Year, Track, Disc, Genre, Comment, Composer}

// Pair is one decoded metadata entry.
type Pair struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Record is an ordered mapping of canonical field to value.
type Record struct {
	order  []string
	values map[string]string
}

// NewRecord builds a record from pairs. When a field repeats the last value
// wins, while the field keeps the position of its first appearance.
func NewRecord(pairs []Pair) Record {
	r := Record{values: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		if _, ok := r.values[p.Field]; !ok {
			r.order = append(r.order, p.Field)
		}
		r.values[p.Field] = p.Value
	}
	return r
}

// Get returns the value of field, or "" when it is absent.
func (r Record) Get(field string) string {
	return r.values[field]
}

// Has reports whether field is present.
func (r Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Valid reports whether the record names an artist or a title.
func (r Record) Valid() bool {
	return r.Has(Artist) || r.Has(Title)
}

// Fields returns the fields present, in order.
func (r Record) Fields() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of fields present.
func (r Record) Len() int { return len(r.order) }

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Pairs returns the record as pairs, one per field, in order.
func (r Record) Pairs() []Pair {
	pairs := make([]Pair, 0, len(r.order))
	for _, f := range r.order {
		pairs = append(pairs, Pair{Field: f, Value: r.values[f]})
	}
	return pairs
}
