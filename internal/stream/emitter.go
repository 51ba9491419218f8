// Package stream emits serialized subtitle output in bounded chunks.
package stream

import (
	"context"
	"io"
	"net/http"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/subtitle"
	"github.com/devfikr/subpolish/internal/utils"
)

// DefaultWindowSize is the caption count serialized per chunk.
const DefaultWindowSize = 100

// BodyFunc serializes one window. Injectable so tests can count or fail
// chunk production.
type BodyFunc func(items []models.Caption, format string, offset int) ([]byte, error)

// Emitter turns a document into a finite chunk sequence. Production is
// cooperative: a chunk is built, written, and only then is the next window
// touched, so a slow consumer back-pressures the producer and a gone
// consumer stops it.
type Emitter struct {
	windowSize int
	body       BodyFunc
}

func New(windowSize int, body BodyFunc) *Emitter {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if body == nil {
		body = subtitle.StreamBody
	}
	return &Emitter{windowSize: windowSize, body: body}
}

// Emit writes header, one chunk per window, then the trailer. The first
// failed write or a cancelled ctx stops production before the next window is
// computed; a serialization failure aborts the stream with its error rather
// than truncating silently.
func (e *Emitter) Emit(ctx context.Context, items []models.Caption, format string, w io.Writer) error {
	const op = "stream.Emit"

	header, err := subtitle.StreamHeader(format)
	if err != nil {
		return err
	}
	if err := writeChunk(w, header); err != nil {
		return utils.E(utils.CodeUnavailable, op, "consumer went away", err)
	}

	for offset := 0; offset < len(items); offset += e.windowSize {
		if err := ctx.Err(); err != nil {
			return utils.E(utils.CodeUnavailable, op, "stream cancelled", err)
		}
		end := offset + e.windowSize
		if end > len(items) {
			end = len(items)
		}
		chunk, err := e.body(items[offset:end], format, offset)
		if err != nil {
			return err
		}
		if err := writeChunk(w, chunk); err != nil {
			return utils.E(utils.CodeUnavailable, op, "consumer went away", err)
		}
	}

	if err := writeChunk(w, subtitle.StreamTrailer(format)); err != nil {
		return utils.E(utils.CodeUnavailable, op, "consumer went away", err)
	}
	return nil
}

func writeChunk(w io.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
