package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/grafana/dskit/backoff"
	"github.com/grafana/dskit/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zachfi/nowplaying/pkg/pipeline"
	"github.com/zachfi/nowplaying/pkg/shoutcast"
)

var module = "remote"

var metricReconnects = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "nowplaying",
	Subsystem: "remote",
	Name:      "reconnects_total",
	Help:      "Times the remote stream was reopened after ending or failing.",
})

// Remote follows a stream published on an Icecast or Shoutcast server and
// feeds its metadata into the session: Ogg streams through the demuxer, other
// streams through their ICY StreamTitle.
type Remote struct {
	services.Service
	cfg     *Config
	logger  *slog.Logger
	session *pipeline.Session
}

// New creates and returns a new Remote.
func New(cfg Config, session *pipeline.Session, logger slog.Logger) (*Remote, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote url is required")
	}
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = defaultReconnectInitial
	}
	if cfg.ReconnectBackoffMax < cfg.ReconnectBackoff {
		cfg.ReconnectBackoffMax = max(defaultReconnectMax, cfg.ReconnectBackoff)
	}

	r := &Remote{
		cfg:     &cfg,
		logger:  logger.With("module", module),
		session: session,
	}

	r.Service = services.NewBasicService(nil, r.running, r.stopping)

	return r, nil
}

func (r *Remote) running(ctx context.Context) error {
	boff := backoff.New(ctx, backoff.Config{
		MinBackoff: r.cfg.ReconnectBackoff,
		MaxBackoff: r.cfg.ReconnectBackoffMax,
	})

	for boff.Ongoing() {
		err := r.follow(ctx, boff)
		if ctx.Err() != nil {
			return nil
		}

		if err != nil {
			r.logger.Error("stream failed", "err", err, "retries", boff.NumRetries())
		} else {
			r.logger.Info("stream ended", "retries", boff.NumRetries())
		}

		metricReconnects.Inc()
		boff.Wait()
	}

	return nil
}

// follow reads one connection to the stream until it ends.
func (r *Remote) follow(ctx context.Context, boff *backoff.Backoff) error {
	stream, err := shoutcast.Open(ctx, r.cfg.URL, r.logger)
	if err != nil {
		return err
	}
	defer stream.Close()

	boff.Reset()
	r.logger.Info("following stream", "name", stream.Name, "content_type", stream.ContentType, "icy", stream.HasMetadata())

	switch {
	case stream.IsOgg():
		return r.session.Consume(ctx, stream)

	case stream.HasMetadata():
		stream.MetadataCallbackFunc = func(m *shoutcast.Metadata) {
			r.session.Dispatch(ctx, m.Pairs())
		}
		_, err := io.Copy(io.Discard, stream)
		return err
	}

	return fmt.Errorf("stream %q carries no metadata (Content-Type: %s)", r.cfg.URL, stream.ContentType)
}

func (r *Remote) stopping(_ error) error {
	r.logger.Info("stopping")
	return nil
}
