package subtitle

import (
	"fmt"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

// ssaCodec handles SubStation Alpha scripts. legacy selects the v4 (.ssa)
// flavor; otherwise v4+ (.ass). Only Dialogue events become captions;
// script-info and style lines are regenerated on encode, so decode skips
// them rather than carrying them as meta.
type ssaCodec struct {
	legacy bool
}

func (c ssaCodec) decode(data string) ([]cue, error) {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")
	var cues []cue
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Dialogue:") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, "Dialogue:"))
		// Format: Marked/Layer, Start, End, Style, Name, MarginL, MarginR,
		// MarginV, Effect, Text — text is everything past the 9th comma.
		fields := strings.SplitN(rest, ",", 10)
		if len(fields) < 10 {
			return nil, fmt.Errorf("ssa: short dialogue line %q", line)
		}
		start, err := parseClock(fields[1])
		if err != nil {
			return nil, fmt.Errorf("ssa: %w", err)
		}
		end, err := parseClock(fields[2])
		if err != nil {
			return nil, fmt.Errorf("ssa: %w", err)
		}
		text := strings.ReplaceAll(fields[9], "\\N", "\n")
		text = strings.ReplaceAll(text, "\\n", "\n")
		text = stripOverrides(text)
		cues = append(cues, cue{startMS: start, endMS: end, content: text, kind: models.KindCaption})
	}
	return cues, nil
}

func (c ssaCodec) encode(items []models.Caption) (string, error) {
	body, err := c.encodeDialogue(items)
	if err != nil {
		return "", err
	}
	return c.header() + body, nil
}

func (c ssaCodec) header() string {
	var b strings.Builder
	if c.legacy {
		b.WriteString("[Script Info]\nScriptType: v4.00\n\n[V4 Styles]\n")
		b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, TertiaryColour, BackColour, Bold, Italic, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, AlphaLevel, Encoding\n")
		b.WriteString("Style: Default,Arial,20,65535,65535,65535,-2147483640,0,0,1,2,2,2,10,10,10,0,0\n")
	} else {
		b.WriteString("[Script Info]\nScriptType: v4.00+\n\n[V4+ Styles]\n")
		b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
		b.WriteString("Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n")
	}
	b.WriteString("\n[Events]\n")
	if c.legacy {
		b.WriteString("Format: Marked, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	} else {
		b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	}
	return b.String()
}

func (c ssaCodec) encodeDialogue(items []models.Caption) (string, error) {
	marked := "0"
	if c.legacy {
		marked = "Marked=0"
	}
	var b strings.Builder
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		text := strings.ReplaceAll(it.Content, "\n", "\\N")
		fmt.Fprintf(&b, "Dialogue: %s,%s,%s,Default,,0,0,0,,%s\n",
			marked, formatTimeSSA(it.StartMS), formatTimeSSA(it.EndMS), text)
	}
	return b.String(), nil
}

// stripOverrides removes {\...} style override blocks from event text.
func stripOverrides(s string) string {
	if !strings.ContainsRune(s, '{') {
		return s
	}
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '{':
			depth++
		case s[i] == '}' && depth > 0:
			depth--
		case depth == 0:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
