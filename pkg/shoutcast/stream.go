package shoutcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const userAgent = "nowplaying/1.0 (Icecast metadata reader)"

// MetadataCallbackFunc is the type of the function called when the stream metadata changes
type MetadataCallbackFunc func(m *Metadata)

// Stream represents an open shoutcast stream.
type Stream struct {
	// The name of the server
	Name string

	// What category the server falls under
	Genre string

	// The description of the stream
	Description string

	// Homepage of the server
	URL string

	// Bitrate of the server
	Bitrate int

	// ContentType of the stream body, e.g. "application/ogg"
	ContentType string

	// Optional function to be executed when stream metadata changes
	MetadataCallbackFunc MetadataCallbackFunc

	// Amount of bytes to read before expecting a metadata block. Zero when
	// the server sends no ICY metadata.
	metaint int

	// Stream metadata
	metadata *Metadata

	// The number of bytes read since last metadata block
	pos int

	// The underlying data stream
	rc io.ReadCloser
}

// Open connects to url, resolving playlist URLs first. ctx bounds the
// lifetime of the connection.
func Open(ctx context.Context, url string, logger *slog.Logger) (*Stream, error) {
	logger.Info("opening stream", "url", url)

	// Timeout for establishing the connection only. The stream itself must
	// be readable indefinitely.
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	client := &http.Client{Transport: &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: 10 * time.Second,
	}}

	resolvedURL, err := resolvePlaylistURL(ctx, client, url)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist URL: %w", err)
	}
	if resolvedURL != url {
		logger.Info("resolved playlist to stream URL", "url", resolvedURL)
		url = resolvedURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("accept", "*/*")
	req.Header.Add("user-agent", userAgent)
	req.Header.Add("icy-metadata", "1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	for k, v := range resp.Header {
		logger.Debug("stream header", "key", k, "value", v[0])
	}

	var bitrate int
	if rawBitrate := resp.Header.Get("icy-br"); rawBitrate != "" {
		// Some servers send "128,128".
		rawBitrate, _, _ = strings.Cut(rawBitrate, ",")
		bitrate, err = strconv.Atoi(rawBitrate)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("cannot parse bitrate: %v", err)
		}
	}

	var metaint int
	if raw := resp.Header.Get("icy-metaint"); raw != "" {
		metaint, err = strconv.Atoi(raw)
		if err != nil || metaint < 0 {
			resp.Body.Close()
			return nil, fmt.Errorf("cannot parse metaint %q: %v", raw, err)
		}
	}

	return &Stream{
		Name:        firstNonEmpty(resp.Header.Get("icy-name"), resp.Header.Get("ice-name")),
		Genre:       firstNonEmpty(resp.Header.Get("icy-genre"), resp.Header.Get("ice-genre")),
		Description: firstNonEmpty(resp.Header.Get("icy-description"), resp.Header.Get("ice-description")),
		URL:         firstNonEmpty(resp.Header.Get("icy-url"), resp.Header.Get("ice-url")),
		Bitrate:     bitrate,
		ContentType: resp.Header.Get("Content-Type"),
		metaint:     metaint,
		rc:          resp.Body,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsOgg reports whether the stream is an Ogg container.
func (s *Stream) IsOgg() bool {
	ct := strings.ToLower(s.ContentType)
	return strings.Contains(ct, "ogg") || strings.Contains(ct, "opus")
}

// HasMetadata reports whether the server interleaves ICY metadata blocks.
func (s *Stream) HasMetadata() bool { return s.metaint > 0 }

// Metadata returns the last metadata block seen, or nil.
func (s *Stream) Metadata() *Metadata { return s.metadata }

// Read implements io.Reader, returning stream bytes with ICY metadata blocks
// removed.
func (s *Stream) Read(buf []byte) (int, error) {
	if s.metaint == 0 {
		return s.rc.Read(buf)
	}

	if s.pos == s.metaint {
		if err := s.readMetadata(); err != nil {
			return 0, err
		}
		s.pos = 0
	}

	// Never read past the next metadata block.
	if remaining := s.metaint - s.pos; len(buf) > remaining {
		buf = buf[:remaining]
	}

	n, err := s.rc.Read(buf)
	s.pos += n
	return n, err
}

// readMetadata consumes one metadata block: a length byte counting 16 byte
// units, then the block itself.
func (s *Stream) readMetadata() error {
	var lenByte [1]byte
	if _, err := io.ReadFull(s.rc, lenByte[:]); err != nil {
		return err
	}

	size := int(lenByte[0]) * 16
	if size == 0 {
		return nil
	}

	block := make([]byte, size)
	if _, err := io.ReadFull(s.rc, block); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	if m := NewMetadata(block); !m.Equals(s.metadata) {
		s.metadata = m
		if s.MetadataCallbackFunc != nil {
			s.MetadataCallbackFunc(m)
		}
	}
	return nil
}

// Close closes the stream
func (s *Stream) Close() error {
	return s.rc.Close()
}
