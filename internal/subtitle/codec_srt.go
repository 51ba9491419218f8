package subtitle

import (
	"fmt"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

type srtCodec struct{}

func (srtCodec) decode(data string) ([]cue, error) {
	var cues []cue
	for _, block := range splitBlocks(data) {
		lines := block
		// optional sequence line before the timing line
		if len(lines) > 1 && !strings.Contains(lines[0], "-->") && strings.Contains(lines[1], "-->") {
			lines = lines[1:]
		}
		if len(lines) == 0 || !strings.Contains(lines[0], "-->") {
			continue
		}
		start, end, err := parseTimeRange(lines[0], "-->")
		if err != nil {
			return nil, fmt.Errorf("srt: %w", err)
		}
		cues = append(cues, cue{
			startMS: start,
			endMS:   end,
			content: strings.Join(lines[1:], "\n"),
			kind:    models.KindCaption,
		})
	}
	return cues, nil
}

func (srtCodec) encode(items []models.Caption) (string, error) {
	return encodeSRTFrom(items, 0)
}

// encodeSRTFrom renders blocks numbered offset+1 onward. Output numbering is
// always sequential and independent of the captions' own indices.
func encodeSRTFrom(items []models.Caption, offset int) (string, error) {
	var b strings.Builder
	n := offset
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		n++
		if n > offset+1 || offset > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", n, FormatTime(it.StartMS), FormatTime(it.EndMS), it.Content)
	}
	return b.String(), nil
}

type vttCodec struct{}

func (vttCodec) decode(data string) ([]cue, error) {
	var cues []cue
	for i, block := range splitBlocks(data) {
		lines := block
		if i == 0 && strings.HasPrefix(lines[0], "WEBVTT") {
			continue
		}
		first := strings.ToUpper(strings.TrimSpace(lines[0]))
		if strings.HasPrefix(first, "NOTE") || first == "STYLE" || first == "REGION" {
			cues = append(cues, cue{content: strings.Join(lines, "\n"), kind: models.KindMeta})
			continue
		}
		// optional cue identifier line
		if len(lines) > 1 && !strings.Contains(lines[0], "-->") && strings.Contains(lines[1], "-->") {
			lines = lines[1:]
		}
		if !strings.Contains(lines[0], "-->") {
			continue
		}
		// cue settings after the end time are dropped
		timing := lines[0]
		if j := strings.Index(timing, "-->"); j >= 0 {
			rest := strings.Fields(timing[j+3:])
			if len(rest) > 1 {
				timing = timing[:j+3] + " " + rest[0]
			}
		}
		start, end, err := parseTimeRange(timing, "-->")
		if err != nil {
			return nil, fmt.Errorf("vtt: %w", err)
		}
		cues = append(cues, cue{
			startMS: start,
			endMS:   end,
			content: strings.Join(lines[1:], "\n"),
			kind:    models.KindCaption,
		})
	}
	return cues, nil
}

func (vttCodec) encode(items []models.Caption) (string, error) {
	body, err := encodeVTTCues(items)
	if err != nil {
		return "", err
	}
	return "WEBVTT\n" + body, nil
}

func encodeVTTCues(items []models.Caption) (string, error) {
	var b strings.Builder
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n%s --> %s\n%s\n", formatTimeVTT(it.StartMS), formatTimeVTT(it.EndMS), it.Content)
	}
	return b.String(), nil
}

type sbvCodec struct{}

func (sbvCodec) decode(data string) ([]cue, error) {
	var cues []cue
	for _, block := range splitBlocks(data) {
		if !strings.Contains(block[0], ",") {
			continue
		}
		start, end, err := parseTimeRange(block[0], ",")
		if err != nil {
			continue // sbv has no header; skip stray prose
		}
		cues = append(cues, cue{
			startMS: start,
			endMS:   end,
			content: strings.Join(block[1:], "\n"),
			kind:    models.KindCaption,
		})
	}
	return cues, nil
}

func (sbvCodec) encode(items []models.Caption) (string, error) {
	var b strings.Builder
	first := true
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		fmt.Fprintf(&b, "%s,%s\n%s\n", formatTimeVTT(it.StartMS), formatTimeVTT(it.EndMS), it.Content)
	}
	return b.String(), nil
}

// splitBlocks normalizes line endings and returns blank-line separated
// blocks as non-empty line slices.
func splitBlocks(data string) [][]string {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// parseTimeRange parses "start SEP end" with surrounding whitespace.
func parseTimeRange(line, sep string) (int64, int64, error) {
	parts := strings.SplitN(line, sep, 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func checkTiming(c models.Caption) error {
	if c.StartMS < 0 || c.EndMS < c.StartMS {
		return fmt.Errorf("caption %d: inconsistent timing %d..%d", c.Index, c.StartMS, c.EndMS)
	}
	return nil
}
