package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"

	"github.com/zachfi/nowplaying/pkg/pipeline"
	"github.com/zachfi/nowplaying/pkg/render"
	"github.com/zachfi/nowplaying/pkg/sink"
	"github.com/zachfi/nowplaying/pkg/track"
)

var module = "session"

// Session owns the track history and output sinks shared by every stream
// source of one run.
type Session struct {
	services.Service
	cfg    *Config
	logger *slog.Logger

	Pipeline *pipeline.Session
}

// New creates the session and its configured sinks. A file sink that cannot
// be set up is reported and left out; the other sinks still run.
func New(cfg Config, logger slog.Logger) (*Session, error) {
	s := &Session{
		cfg:    &cfg,
		logger: logger.With("module", module),
	}

	history := track.NewHistory(track.Capacity(cfg.Append, cfg.MaxTracks))
	s.Pipeline = pipeline.New(history, s.logger)

	if !cfg.Quiet {
		s.Pipeline.Register(sink.NewConsole(os.Stdout))
	}

	if cfg.OutputFile != "" {
		fileCfg, err := s.fileConfig()
		if err != nil {
			return nil, err
		}

		f, err := sink.NewFile(fileCfg, history, s.logger)
		if err != nil {
			s.logger.Error("file output disabled", "path", cfg.OutputFile, "err", err)
		} else {
			s.Pipeline.Register(f)
		}
	}

	s.Service = services.NewIdleService(s.starting, s.stopping)

	return s, nil
}

func (s *Session) fileConfig() (sink.FileConfig, error) {
	fc := sink.FileConfig{
		Path:      s.cfg.OutputFile,
		Append:    s.cfg.Append,
		MaxTracks: s.cfg.MaxTracks,
		Format:    s.cfg.OutputFormat,
	}

	switch s.cfg.LineEnding {
	case "":
	case "lf":
		fc.LineSeparator = "\n"
	case "crlf":
		fc.LineSeparator = "\r\n"
	default:
		return fc, fmt.Errorf("unknown line ending %q", s.cfg.LineEnding)
	}

	switch {
	case s.cfg.FileTemplate != "":
		b, err := os.ReadFile(s.cfg.FileTemplate)
		if err != nil {
			return fc, errors.Wrap(err, "failed to read file template")
		}
		fc.Template = string(b)
	case s.cfg.HTML:
		fc.Template = render.HTML
	}

	return fc, nil
}

func (s *Session) starting(_ context.Context) error {
	s.logger.Info("session ready",
		"sinks", s.Pipeline.Sinks(),
		"history", s.Pipeline.History().Cap(),
		"output_file", s.cfg.OutputFile,
	)
	return nil
}

func (s *Session) stopping(_ error) error {
	s.logger.Info("stopping", "tracks", s.Pipeline.History().Len())
	return nil
}
