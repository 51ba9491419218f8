package subtitle

import (
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

// cue is a codec-level entry before normalization. Codecs report what the
// container says; Parse owns indexing, sanitizing and defaulting.
type cue struct {
	startMS int64
	endMS   int64
	content string
	kind    models.Kind
}

// codec is one container grammar. decode and encode are symmetric: encode
// output must decode back to the same cues up to renumbering.
type codec interface {
	decode(data string) ([]cue, error)
	encode(items []models.Caption) (string, error)
}

var codecs = map[string]codec{
	"srt":  srtCodec{},
	"vtt":  vttCodec{},
	"sub":  subCodec{fps: defaultFPS},
	"sbv":  sbvCodec{},
	"lrc":  lrcCodec{},
	"smi":  smiCodec{},
	"ssa":  ssaCodec{legacy: true},
	"ass":  ssaCodec{},
	"json": jsonCodec{},
}

var mimeTypes = map[string]string{
	"srt":  "application/x-subrip",
	"vtt":  "text/vtt",
	"sub":  "text/plain",
	"sbv":  "text/plain",
	"lrc":  "text/plain",
	"smi":  "application/smil",
	"ssa":  "text/plain",
	"ass":  "text/plain",
	"json": "application/json",
}

// defaultFPS is the frame rate assumed for MicroDVD timing.
const defaultFPS = 25.0

// Supported reports whether ext (without dot, any case) names a known format.
func Supported(ext string) bool {
	_, ok := codecs[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// UsesBOM reports whether serialized output for the format carries a UTF-8
// byte-order-mark. Every text format does; json does not.
func UsesBOM(format string) bool {
	return strings.ToLower(format) != "json"
}

// FormatInfo describes one supported container for API consumers.
type FormatInfo struct {
	Extension   string `json:"extension"`
	ContentType string `json:"contentType"`
	UsesBOM     bool   `json:"usesBOM"`
}

// Formats lists the supported containers in stable order.
func Formats() []FormatInfo {
	exts := []string{"srt", "vtt", "sub", "sbv", "lrc", "smi", "ssa", "ass", "json"}
	out := make([]FormatInfo, 0, len(exts))
	for _, e := range exts {
		out = append(out, FormatInfo{Extension: e, ContentType: mimeTypes[e], UsesBOM: UsesBOM(e)})
	}
	return out
}
