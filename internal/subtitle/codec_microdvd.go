package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

// subCodec handles MicroDVD .sub: "{startFrame}{stopFrame}text|more".
// Frame timing is converted through a fixed frame rate.
type subCodec struct {
	fps float64
}

func (c subCodec) decode(data string) ([]cue, error) {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	var cues []cue
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		start, rest, err := readFrameField(line)
		if err != nil {
			return nil, err
		}
		stop, text, err := readFrameField(rest)
		if err != nil {
			return nil, err
		}
		// frame 1 header line carries player defaults, not a caption
		kind := models.KindCaption
		if start == 1 && stop == 1 {
			kind = models.KindMeta
		}
		cues = append(cues, cue{
			startMS: c.framesToMS(start),
			endMS:   c.framesToMS(stop),
			content: strings.ReplaceAll(text, "|", "\n"),
			kind:    kind,
		})
	}
	return cues, nil
}

func (c subCodec) encode(items []models.Caption) (string, error) {
	var b strings.Builder
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		text := strings.ReplaceAll(it.Content, "\n", "|")
		fmt.Fprintf(&b, "{%d}{%d}%s\n", c.msToFrames(it.StartMS), c.msToFrames(it.EndMS), text)
	}
	return b.String(), nil
}

func (c subCodec) framesToMS(frames int64) int64 {
	return int64(math.Round(float64(frames) * 1000.0 / c.fps))
}

func (c subCodec) msToFrames(ms int64) int64 {
	return int64(math.Round(float64(ms) * c.fps / 1000.0))
}

// readFrameField reads a leading "{N}" and returns N plus the remainder.
func readFrameField(s string) (int64, string, error) {
	if !strings.HasPrefix(s, "{") {
		return 0, "", fmt.Errorf("sub: malformed line %q", s)
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return 0, "", fmt.Errorf("sub: malformed line %q", s)
	}
	n, err := strconv.ParseInt(s[1:end], 10, 64)
	if err != nil || n < 0 {
		return 0, "", fmt.Errorf("sub: invalid frame number in %q", s)
	}
	return n, s[end+1:], nil
}
