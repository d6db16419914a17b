package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/zachfi/nowplaying/pkg/pipeline"
	"github.com/zachfi/nowplaying/pkg/track"
)

func TestSendTrackIsDemuxable(t *testing.T) {
	var buf bytes.Buffer
	if err := sendTrack(&buf, "Fake Artist", "First"); err != nil {
		t.Fatal(err)
	}
	if err := sendTrack(&buf, "", "Second"); err != nil {
		t.Fatal(err)
	}

	session := pipeline.New(track.NewHistory(2), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := session.Consume(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	got := session.History().Snapshot()
	if len(got) != 2 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0].Get(track.Artist) != "Fake Artist" || got[0].Get(track.Title) != "First" {
		t.Errorf("first = %v", got[0].Map())
	}
	if got[1].Has(track.Artist) || got[1].Get(track.Title) != "Second" {
		t.Errorf("second = %v", got[1].Map())
	}
}
