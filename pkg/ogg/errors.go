package ogg

import "errors"

var (
	// ErrInvalidPage is returned when a page does not start with the "OggS"
	// capture pattern or carries an unknown stream structure version. The
	// reader cannot resynchronise after it.
	ErrInvalidPage = errors.New("ogg: invalid page")

	// ErrTruncatedHeader is returned when the stream ends part way through the
	// fixed 27 byte page header.
	ErrTruncatedHeader = errors.New("ogg: truncated page header")

	// ErrTruncatedPage is returned when the stream ends inside a segment table
	// or a page payload.
	ErrTruncatedPage = errors.New("ogg: truncated page")
)
