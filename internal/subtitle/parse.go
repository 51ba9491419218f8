package subtitle

import (
	"strings"

	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/utils"
)

// MaxUploadBytes caps the raw payload size checked before any parsing work.
const MaxUploadBytes = 50 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse turns raw bytes plus a declared extension into a normalized
// CaptionDocument. Preconditions (size, known format) are rejected before
// the grammar runs. Entry indices from the container are never trusted:
// every document comes out re-indexed 1..N in grammar order, with timings
// defaulted to 0 where absent and all text run through Sanitize.
func Parse(raw []byte, ext string) (*models.CaptionDocument, error) {
	const op = "subtitle.Parse"

	if len(raw) > MaxUploadBytes {
		return nil, utils.E(utils.CodeValidation, op, "file exceeds 50MB limit", nil)
	}
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	c, ok := codecs[ext]
	if !ok {
		return nil, utils.E(utils.CodeUnsupportedFormat, op, "unsupported format: "+ext, nil)
	}

	data := string(trimBOM(raw))
	cues, err := c.decode(data)
	if err != nil {
		return nil, utils.E(utils.CodeParse, op, err.Error(), err)
	}

	doc := &models.CaptionDocument{}
	idx := 0
	for _, cu := range cues {
		kind := cu.kind
		if kind == "" {
			kind = models.KindCaption
		}
		content := Sanitize(cu.content)
		if kind == models.KindCaption && content == "" {
			continue
		}
		idx++
		start, end := cu.startMS, cu.endMS
		if start < 0 {
			start = 0
		}
		if end < start {
			end = start
		}
		doc.Captions = append(doc.Captions, models.Caption{
			Index:      idx,
			StartMS:    start,
			EndMS:      end,
			DurationMS: end - start,
			Content:    content,
			Text:       flatten(content),
			Kind:       kind,
		})
	}
	if len(doc.Displayable()) == 0 {
		return nil, utils.E(utils.CodeParse, op, "no valid subtitles found", nil)
	}
	return doc, nil
}

func trimBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == utf8BOM[0] && raw[1] == utf8BOM[1] && raw[2] == utf8BOM[2] {
		return raw[3:]
	}
	return raw
}

// flatten is the plain-text variant of sanitized content: line breaks
// collapse to single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
