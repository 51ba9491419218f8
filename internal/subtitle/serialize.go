package subtitle

import (
	"path/filepath"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/utils"
)

// brandSuffix is appended to every download filename.
const brandSuffix = "-aipolished"

// Serialize renders captions into the target container. Meta entries are
// skipped; the codec sees display captions only, in the order given. Any
// failure inside the codec comes back as a SerializationError.
func Serialize(items []models.Caption, format string) ([]byte, error) {
	const op = "subtitle.Serialize"

	format = strings.ToLower(strings.TrimPrefix(format, "."))
	c, ok := codecs[format]
	if !ok {
		return nil, utils.E(utils.CodeUnsupportedFormat, op, "unsupported format: "+format, nil)
	}

	display := make([]models.Caption, 0, len(items))
	for _, it := range items {
		if it.Kind == "" || it.Kind == models.KindCaption {
			display = append(display, it)
		}
	}

	body, err := c.encode(display)
	if err != nil {
		return nil, utils.E(utils.CodeSerialization, op, "failed to build "+format+" output", err)
	}

	if UsesBOM(format) {
		return append(append([]byte{}, utf8BOM...), body...), nil
	}
	return []byte(body), nil
}

// SerializeDocument is Serialize over a whole document.
func SerializeDocument(doc *models.CaptionDocument, format string) ([]byte, error) {
	return Serialize(doc.Captions, format)
}

// StreamHeader opens a chunked emission of the format: BOM plus any
// container preamble. Emitted exactly once, before the first window.
func StreamHeader(format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if _, ok := codecs[format]; !ok {
		return nil, utils.E(utils.CodeUnsupportedFormat, "subtitle.StreamHeader", "unsupported format: "+format, nil)
	}

	var head string
	switch format {
	case "vtt":
		head = "WEBVTT\n"
	case "smi":
		head = samiHead
	case "ssa":
		head = ssaCodec{legacy: true}.header()
	case "ass":
		head = ssaCodec{}.header()
	case "json":
		return []byte("["), nil
	}
	if UsesBOM(format) {
		return append(append([]byte{}, utf8BOM...), head...), nil
	}
	return []byte(head), nil
}

// StreamBody renders one window of captions. offset is the count of captions
// already emitted; SRT numbering, block separation and JSON comma placement
// depend on it. Windows concatenated after StreamHeader and before
// StreamTrailer must parse back to the same captions as a whole-document
// Serialize.
func StreamBody(items []models.Caption, format string, offset int) ([]byte, error) {
	const op = "subtitle.StreamBody"

	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if _, ok := codecs[format]; !ok {
		return nil, utils.E(utils.CodeUnsupportedFormat, op, "unsupported format: "+format, nil)
	}

	var body string
	var err error
	switch format {
	case "srt":
		body, err = encodeSRTFrom(items, offset)
	case "vtt":
		body, err = encodeVTTCues(items)
	case "smi":
		body, err = encodeSAMISyncs(items)
	case "ssa":
		body, err = ssaCodec{legacy: true}.encodeDialogue(items)
	case "ass":
		body, err = ssaCodec{}.encodeDialogue(items)
	case "json":
		body, err = encodeJSONElements(items, offset)
	case "sbv":
		body, err = codecs[format].encode(items)
		if err == nil && offset > 0 && body != "" {
			body = "\n" + body
		}
	default:
		// line-oriented formats concatenate as-is
		body, err = codecs[format].encode(items)
	}
	if err != nil {
		return nil, utils.E(utils.CodeSerialization, op, "failed to build "+format+" chunk", err)
	}
	return []byte(body), nil
}

// StreamTrailer closes a chunked emission.
func StreamTrailer(format string) []byte {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "smi":
		return []byte(samiTail)
	case "json":
		return []byte("]")
	default:
		return nil
	}
}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) (string, error) {
	mt, ok := mimeTypes[strings.ToLower(strings.TrimPrefix(format, "."))]
	if !ok {
		return "", utils.E(utils.CodeUnsupportedFormat, "subtitle.ContentType", "unsupported format: "+format, nil)
	}
	return mt, nil
}

// OutputFilename derives the download name: original stem, brand suffix,
// target extension.
func OutputFilename(original, format string) string {
	base := filepath.Base(original)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "subtitles"
	}
	return stem + brandSuffix + "." + strings.ToLower(strings.TrimPrefix(format, "."))
}
