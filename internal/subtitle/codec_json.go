package subtitle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

// jsonCodec carries the canonical caption shape directly. Decode accepts the
// serializer's own output as well as hand-written arrays with partial fields.
type jsonCodec struct{}

type jsonCaption struct {
	Index      *int    `json:"index,omitempty"`
	StartMS    int64   `json:"start_ms"`
	EndMS      int64   `json:"end_ms"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Content    string  `json:"content"`
	Text       string  `json:"text,omitempty"`
	Kind       *string `json:"kind,omitempty"`
}

func (jsonCodec) decode(data string) ([]cue, error) {
	var raw []jsonCaption
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	cues := make([]cue, 0, len(raw))
	for _, r := range raw {
		kind := models.KindCaption
		if r.Kind != nil && models.Kind(*r.Kind) == models.KindMeta {
			kind = models.KindMeta
		}
		content := r.Content
		if content == "" {
			content = r.Text
		}
		cues = append(cues, cue{startMS: r.StartMS, endMS: r.EndMS, content: content, kind: kind})
	}
	return cues, nil
}

// encodeJSONElements marshals one window's captions as bare array elements
// for chunked output; the array brackets live in the stream header/trailer.
func encodeJSONElements(items []models.Caption, offset int) (string, error) {
	var b strings.Builder
	for i, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		if offset+i > 0 {
			b.WriteString(",")
		}
		el, err := json.Marshal(it)
		if err != nil {
			return "", err
		}
		b.Write(el)
	}
	return b.String(), nil
}

func (jsonCodec) encode(items []models.Caption) (string, error) {
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
