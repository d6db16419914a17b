// Package pipeline turns Ogg streams into track updates for a set of sinks.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zachfi/nowplaying/pkg/ogg"
	"github.com/zachfi/nowplaying/pkg/sink"
	"github.com/zachfi/nowplaying/pkg/track"
	"github.com/zachfi/nowplaying/pkg/vorbis"
)

var tracer = otel.Tracer("github.com/zachfi/nowplaying/pkg/pipeline")

// IsFormatError reports whether err comes from a malformed container or
// comment header.
func IsFormatError(err error) bool {
	return errors.Is(err, ogg.ErrInvalidPage) ||
		errors.Is(err, ogg.ErrTruncatedHeader) ||
		errors.Is(err, ogg.ErrTruncatedPage) ||
		errors.Is(err, vorbis.ErrTruncatedComment)
}

// Session owns the track history and the sinks for one listening session.
// Streams from any number of connections may be consumed concurrently.
type Session struct {
	logger  *slog.Logger
	history *track.History

	// mtx serialises history updates together with the sink fan-out.
	mtx   sync.Mutex
	sinks []sink.Sink
}

// New returns a session recording accepted tracks into history.
func New(history *track.History, logger *slog.Logger) *Session {
	return &Session{
		logger:  logger,
		history: history,
	}
}

// Register adds s after the sinks already registered. Sinks should be
// registered before streams are consumed.
func (s *Session) Register(sk sink.Sink) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.sinks = append(s.sinks, sk)
}

// RegisterFunc registers fn as a sink.
func (s *Session) RegisterFunc(name string, fn func(ctx context.Context, pairs []track.Pair) error) {
	s.Register(sink.NewFunc(name, fn))
}

// Sinks returns the names of the registered sinks in invocation order.
func (s *Session) Sinks() []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	names := make([]string, 0, len(s.sinks))
	for _, sk := range s.sinks {
		names = append(names, sk.Name())
	}
	return names
}

// History returns the session history.
func (s *Session) History() *track.History { return s.history }

// Consume processes packets from r until the stream ends, a format error
// occurs or ctx is cancelled. A clean end of stream and cancellation return
// nil. A truncated comment header is a format error and ends the stream
// without an update. Cancellation is observed between packets only.
func (s *Session) Consume(ctx context.Context, r io.Reader) error {
	pr := ogg.NewPacketReader(r)
	for {
		if ctx.Err() != nil {
			return nil
		}

		pkt, err := pr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil && !IsFormatError(err) {
				return nil
			}
			return err
		}

		if _, err := s.HandlePacket(ctx, pkt); err != nil {
			return err
		}
	}
}

// HandlePacket dispatches the metadata of pkt if it is a comment header.
// Other packets are ignored. It reports whether sinks were invoked, and
// returns vorbis.ErrTruncatedComment when the header is cut short; none of
// its pairs are dispatched in that case.
func (s *Session) HandlePacket(ctx context.Context, pkt []byte) (bool, error) {
	metricPackets.Inc()

	if !vorbis.IsCommentHeader(pkt) {
		return false, nil
	}
	metricCommentHeaders.Inc()

	pairs, err := vorbis.DecodeComment(pkt[len(vorbis.Marker):])
	if err != nil {
		metricDecodeFailures.Inc()
		return false, err
	}

	return s.Dispatch(ctx, pairs), nil
}

// Dispatch records pairs as the current track and invokes every sink in
// registration order. Updates without an artist or a title are dropped. A
// failing sink is logged and does not stop the others.
func (s *Session) Dispatch(ctx context.Context, pairs []track.Pair) bool {
	rec := track.NewRecord(pairs)
	if !rec.Valid() {
		metricDiscarded.Inc()
		s.logger.Debug("ignoring update without artist or title", "fields", rec.Len())
		return false
	}

	ctx, span := tracer.Start(ctx, "Session.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("artist", rec.Get(track.Artist)),
		attribute.String("title", rec.Get(track.Title)),
	)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.history.Push(rec)
	metricUpdates.Inc()
	s.logger.Info("now playing", "artist", rec.Get(track.Artist), "title", rec.Get(track.Title))

	for _, sk := range s.sinks {
		start := time.Now()
		err := sk.Update(ctx, pairs)
		metricSinkDuration.WithLabelValues(sk.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			err = &sink.Error{Sink: sk.Name(), Err: err}
			metricSinkErrors.WithLabelValues(sk.Name()).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "sink failed")
			s.logger.Error("sink update failed", "sink", sk.Name(), "err", err)
		}
	}

	return true
}
