package subtitle

import (
	"fmt"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

// lrcCodec handles lyric files: "[mm:ss.xx]text". LRC lines carry no end
// time; each line's end is the next line's start, the last line keeps 0
// duration. ID tags like [ti:...] are kept as meta entries.
type lrcCodec struct{}

func (lrcCodec) decode(data string) ([]cue, error) {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	var cues []cue
	var timedAt []int // positions in cues that need an end time backfilled
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "[") {
			continue
		}
		end := strings.IndexByte(line, ']')
		if end < 0 {
			continue
		}
		tag := line[1:end]
		text := line[end+1:]
		ms, err := parseClock(tag)
		if err != nil {
			// non-time tag: [ti:...], [ar:...], [offset:...]
			cues = append(cues, cue{content: line, kind: models.KindMeta})
			continue
		}
		timedAt = append(timedAt, len(cues))
		cues = append(cues, cue{startMS: ms, endMS: ms, content: text, kind: models.KindCaption})
	}
	for i := 0; i+1 < len(timedAt); i++ {
		cues[timedAt[i]].endMS = cues[timedAt[i+1]].startMS
	}
	return cues, nil
}

func (lrcCodec) encode(items []models.Caption) (string, error) {
	var b strings.Builder
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		text := strings.ReplaceAll(it.Content, "\n", " ")
		fmt.Fprintf(&b, "%s%s\n", formatTimeLRC(it.StartMS), text)
	}
	return b.String(), nil
}
