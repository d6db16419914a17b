// Package sink contains the outputs that decoded track metadata is routed to.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/zachfi/nowplaying/pkg/track"
)

var (
	// ErrOutputPathIsDirectory is returned when a file sink is pointed at a
	// directory.
	ErrOutputPathIsDirectory = errors.New("output path is a directory")

	// ErrUnwritablePath is returned when a file sink cannot create its file.
	ErrUnwritablePath = errors.New("output path is not writable")
)

// Sink receives every accepted track update. Pairs are passed in decode
// order, duplicates included.
type Sink interface {
	Name() string
	Update(ctx context.Context, pairs []track.Pair) error
}

// Error reports a failed write by a sink.
type Error struct {
	Sink string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Func adapts a function to the Sink interface.
type Func struct {
	name string
	fn   func(ctx context.Context, pairs []track.Pair) error
}

// NewFunc returns a sink calling fn for every update.
func NewFunc(name string, fn func(ctx context.Context, pairs []track.Pair) error) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Update(ctx context.Context, pairs []track.Pair) error {
	return f.fn(ctx, pairs)
}
