package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/zachfi/nowplaying/pkg/track"
)

// Console prints "Artist - Title" for every update.
type Console struct {
	mtx sync.Mutex
	w   io.Writer
}

// NewConsole returns a console sink writing to w, or to stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Update(_ context.Context, pairs []track.Pair) error {
	line := TrackString(track.NewRecord(pairs))
	if line == "" {
		return nil
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	_, err := fmt.Fprintln(c.w, line)
	return err
}

// TrackString renders "artist - title", or "" when both are empty.
func TrackString(r track.Record) string {
	s := r.Get(track.Artist) + " - " + r.Get(track.Title)
	if utf8.RuneCountInString(s) <= 3 {
		return ""
	}
	return s
}
