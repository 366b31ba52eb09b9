package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/example/sketchpad/internal/raster"
)

// ErrLoadSuperseded is reported to a load's callback when a later Clear or
// LoadImage made its result obsolete. The canvas is left as the later call
// set it.
var ErrLoadSuperseded = errors.New("editor: load superseded by a newer request")

// LoadError reports a source that could not be fetched or decoded. The
// canvas, view and history are unchanged when it is returned.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadImage replaces the canvas with the image at src without blocking. The
// image is scaled to the canvas size. On success the view is reset and the
// loaded image becomes the only history entry. done, if not nil, receives
// the outcome on the loading goroutine.
func (e *Editor) LoadImage(ctx context.Context, src Source, done func(error)) {
	seq := e.nextLoad()
	go func() {
		err := e.load(ctx, seq, src)
		if err != nil && !errors.Is(err, ErrLoadSuperseded) {
			log.Printf("%v", err)
		}
		if done != nil {
			done(err)
		}
	}()
}

// Load is the blocking form of LoadImage.
func (e *Editor) Load(ctx context.Context, src Source) error {
	return e.load(ctx, e.nextLoad(), src)
}

func (e *Editor) nextLoad() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadSeq++
	return e.loadSeq
}

func (e *Editor) load(ctx context.Context, seq uint64, src Source) error {
	if src == nil {
		return &LoadError{Source: "<nil>", Err: errors.New("no source")}
	}
	e.mu.Lock()
	size := image.Pt(e.width, e.height)
	bg := e.background
	client := e.client
	e.mu.Unlock()

	data, err := src.Fetch(ctx, client)
	if err != nil {
		return &LoadError{Source: src.String(), Err: err}
	}
	img, err := raster.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return &LoadError{Source: src.String(), Err: err}
	}
	fitted := raster.Fit(img, size, bg)

	e.mu.Lock()
	err = e.applyLoad(seq, fitted, src)
	e.mu.Unlock()
	e.changed(err == nil)
	return err
}

func (e *Editor) applyLoad(seq uint64, img *image.RGBA, src Source) error {
	if seq != e.loadSeq {
		return ErrLoadSuperseded
	}
	if e.surface == nil {
		return &LoadError{Source: src.String(), Err: ErrNotMounted}
	}
	e.machine.Abort()
	if err := e.surface.Load(img); err != nil {
		return &LoadError{Source: src.String(), Err: err}
	}
	e.history.Reset(e.surface.Snapshot())
	e.machine.ResetView()
	return nil
}
