package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/subtitle"
	"github.com/devfikr/subpolish/internal/utils"
)

func captions(n int) []models.Caption {
	out := make([]models.Caption, n)
	for i := range out {
		ms := int64(i) * 2000
		out[i] = models.Caption{
			Index:   i + 1,
			StartMS: ms,
			EndMS:   ms + 1500,
			Content: fmt.Sprintf("Caption %d", i+1),
			Text:    fmt.Sprintf("Caption %d", i+1),
			Kind:    models.KindCaption,
		}
	}
	return out
}

func TestEmitMatchesWholeDocumentSRT(t *testing.T) {
	items := captions(250) // 3 windows at the default size
	var buf bytes.Buffer
	if err := New(0, nil).Emit(context.Background(), items, "srt", &buf); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	whole, err := subtitle.Serialize(items, "srt")
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), whole) {
		t.Fatal("chunked srt output differs from whole-document output")
	}
}

func TestEmitChunkedParsesBack(t *testing.T) {
	items := captions(25)
	for _, format := range []string{"vtt", "sbv", "smi", "json"} {
		var buf bytes.Buffer
		if err := New(10, nil).Emit(context.Background(), items, format, &buf); err != nil {
			t.Fatalf("%s: Emit: %v", format, err)
		}
		doc, err := subtitle.Parse(buf.Bytes(), format)
		if err != nil {
			t.Fatalf("%s: Parse of chunked output: %v", format, err)
		}
		got := doc.Displayable()
		if len(got) != len(items) {
			t.Fatalf("%s: got %d captions, want %d", format, len(got), len(items))
		}
		for i := range items {
			if got[i].Content != items[i].Content {
				t.Errorf("%s: caption %d content %q, want %q", format, i, got[i].Content, items[i].Content)
			}
		}
	}
}

// cancelAfterWriter cancels the context once limit chunks were consumed and
// fails every write after that, like a closed connection.
type cancelAfterWriter struct {
	writes int
	limit  int
	cancel context.CancelFunc
}

func (w *cancelAfterWriter) Write(p []byte) (int, error) {
	if w.writes >= w.limit {
		return 0, errors.New("connection closed")
	}
	w.writes++
	if w.writes == w.limit {
		w.cancel()
	}
	return len(p), nil
}

func TestEmitStopsWhenConsumerGone(t *testing.T) {
	items := captions(500) // 5 windows of 100
	serialized := 0
	probe := func(items []models.Caption, format string, offset int) ([]byte, error) {
		serialized++
		return subtitle.StreamBody(items, format, offset)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// limit 3: header + chunk 1 + chunk 2, then the consumer is gone
	w := &cancelAfterWriter{limit: 3, cancel: cancel}

	err := New(100, probe).Emit(ctx, items, "srt", w)
	if err == nil {
		t.Fatal("Emit returned nil, want abort error")
	}
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("got %v, want UNAVAILABLE", err)
	}
	if serialized != 2 {
		t.Fatalf("serializer ran %d times after disconnect at chunk 2, want 2", serialized)
	}
}

func TestEmitAbortsOnSerializationError(t *testing.T) {
	items := captions(10)
	boom := func([]models.Caption, string, int) ([]byte, error) {
		return nil, errors.New("bad chunk")
	}
	var buf bytes.Buffer
	err := New(5, boom).Emit(context.Background(), items, "srt", &buf)
	if err == nil || err.Error() != "bad chunk" {
		t.Fatalf("got %v, want bad chunk", err)
	}
}
