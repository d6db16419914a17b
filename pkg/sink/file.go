package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/zachfi/nowplaying/pkg/render"
	"github.com/zachfi/nowplaying/pkg/track"
)

// LineSeparator is the platform line terminator used when none is configured.
var LineSeparator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// FileConfig configures a file sink.
type FileConfig struct {
	Path string

	// Append keeps previous tracks in the file. With MaxTracks > 0 the file
	// is rewritten with the last MaxTracks tracks, otherwise every track is
	// appended.
	Append    bool
	MaxTracks int

	// Format renders one track. Defaults to render.Default.
	Format string
	// Template, when set, renders the whole file from the track history.
	Template string

	// LineSeparator joins rendered tracks. Defaults to LineSeparator.
	LineSeparator string
}

// File writes the current track, or the recent history, to a text file.
type File struct {
	mtx     sync.Mutex
	cfg     FileConfig
	history *track.History
	logger  *slog.Logger

	format   *render.Template
	template *render.Template
}

// NewFile prepares the output file, creating missing parent directories and
// an empty file. history must be the one the pipeline pushes into before the
// sink is updated. A malformed format is reported as a warning and the
// default format is used instead; a malformed file template is reported and
// ignored, leaving the file to the per-track format.
func NewFile(cfg FileConfig, history *track.History, logger *slog.Logger) (*File, error) {
	if cfg.LineSeparator == "" {
		cfg.LineSeparator = LineSeparator
	}

	f := &File{
		cfg:     cfg,
		history: history,
		logger:  logger.With("sink", "file", "path", cfg.Path),
	}

	if err := f.create(); err != nil {
		return nil, err
	}

	var err error
	if f.format, err = render.Parse(cfg.Format); err != nil {
		f.logger.Warn("invalid output format, using default", "format", cfg.Format, "default", render.Default, "err", err)
	}
	if cfg.Template != "" {
		tmpl, err := render.Parse(cfg.Template)
		if err != nil {
			f.logger.Warn("invalid file template, writing one line per track", "err", err)
		} else {
			f.template = tmpl
		}
	}

	return f, nil
}

func (f *File) create() error {
	info, err := os.Stat(f.cfg.Path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%w: %s", ErrOutputPathIsDirectory, f.cfg.Path)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(f.cfg.Path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}

	fh, err := os.OpenFile(f.cfg.Path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}
	return fh.Close()
}

func (f *File) Name() string { return "file" }

// Path returns the output file path.
func (f *File) Path() string { return f.cfg.Path }

// Update writes the file for the latest update.
func (f *File) Update(_ context.Context, pairs []track.Pair) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.template == nil && f.cfg.Append && f.cfg.MaxTracks <= 0 {
		return f.append(f.renderTrack(track.NewRecord(pairs)))
	}

	return f.rewrite(f.content())
}

func (f *File) content() string {
	records := f.history.Snapshot()

	if f.template != nil {
		out, err := f.template.Execute(render.ForHistory(records))
		if err != nil {
			f.logger.Warn("file template failed, rendered default", "err", err)
		}
		return out
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, f.renderTrack(r))
	}
	return strings.Join(lines, f.cfg.LineSeparator)
}

func (f *File) renderTrack(r track.Record) string {
	out, err := f.format.Execute(render.ForRecord(r))
	if err != nil {
		f.logger.Warn("output format failed, rendered default", "err", err)
	}
	return out
}

func (f *File) append(line string) error {
	fh, err := os.OpenFile(f.cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := fh.WriteString(line + f.cfg.LineSeparator); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// rewrite replaces the file through a temporary file in the same directory
// so readers never observe a partial write.
func (f *File) rewrite(content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.cfg.Path), "."+filepath.Base(f.cfg.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, f.cfg.Path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
