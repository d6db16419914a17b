package session

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zachfi/nowplaying/pkg/track"
)

var logger = *slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewRegistersSinks(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "page.tmpl")
	if err := os.WriteFile(tmpl, []byte("{{range tracks}}{{.title}};{{end}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out", "nowplaying.html")
	s, err := New(Config{
		OutputFile:   out,
		Append:       true,
		MaxTracks:    2,
		FileTemplate: tmpl,
		LineEnding:   "crlf",
	}, logger)
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(s.Pipeline.Sinks(), ","); got != "console,file" {
		t.Fatalf("sinks = %s", got)
	}
	if s.Pipeline.History().Cap() != 2 {
		t.Fatalf("history capacity = %d, want 2", s.Pipeline.History().Cap())
	}

	for _, title := range []string{"a", "b", "c"} {
		s.Pipeline.Dispatch(context.Background(), []track.Pair{{Field: track.Title, Value: title}})
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "b;c;" {
		t.Fatalf("file = %q", b)
	}
}

func TestNewQuietWithoutFile(t *testing.T) {
	s, err := New(Config{Quiet: true, MaxTracks: 5}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Pipeline.Sinks()) != 0 || s.Pipeline.History().Cap() != 1 {
		t.Fatalf("sinks=%v cap=%d", s.Pipeline.Sinks(), s.Pipeline.History().Cap())
	}
}

func TestNewDisablesFileOnDirectory(t *testing.T) {
	s, err := New(Config{OutputFile: t.TempDir()}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(s.Pipeline.Sinks(), ","); got != "console" {
		t.Fatalf("sinks = %s, want console only", got)
	}
}

func TestNewRejectsUnknownLineEnding(t *testing.T) {
	_, err := New(Config{OutputFile: filepath.Join(t.TempDir(), "x"), LineEnding: "cr"}, logger)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNewHTMLPage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nowplaying.html")
	s, err := New(Config{Quiet: true, OutputFile: out, Append: true, MaxTracks: 3, HTML: true}, logger)
	if err != nil {
		t.Fatal(err)
	}

	s.Pipeline.Dispatch(context.Background(), []track.Pair{{Field: track.Artist, Value: "A"}, {Field: track.Title, Value: "One"}})
	s.Pipeline.Dispatch(context.Background(), []track.Pair{{Field: track.Artist, Value: "B"}, {Field: track.Title, Value: "Two"}})

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	page := string(b)
	if !strings.HasPrefix(page, "<!DOCTYPE html>") || !strings.Contains(page, "<p>A - One</p>\n        <p>B - Two</p>") {
		t.Fatalf("page = %q", page)
	}
}
