package subtitle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devfikr/subpolish/internal/models"
)

// smiCodec handles SAMI: <SYNC Start=ms> blocks inside a <BODY>. A sync
// whose text is empty (or &nbsp;) clears the screen and only terminates the
// previous caption. Ends are backfilled from the following sync.
type smiCodec struct{}

func (smiCodec) decode(data string) ([]cue, error) {
	lower := strings.ToLower(data)
	var cues []cue
	open := -1 // index of the cue still waiting for its end time

	pos := 0
	for {
		i := strings.Index(lower[pos:], "<sync")
		if i < 0 {
			break
		}
		i += pos
		tagEnd := strings.IndexByte(lower[i:], '>')
		if tagEnd < 0 {
			break
		}
		tagEnd += i
		start, err := samiStartAttr(data[i : tagEnd+1])
		if err != nil {
			return nil, err
		}

		next := strings.Index(lower[tagEnd+1:], "<sync")
		var body string
		if next < 0 {
			body = data[tagEnd+1:]
			pos = len(data)
		} else {
			body = data[tagEnd+1 : tagEnd+1+next]
			pos = tagEnd + 1 + next
		}

		text := samiText(body)
		if open >= 0 {
			cues[open].endMS = start
			open = -1
		}
		if text == "" {
			continue
		}
		open = len(cues)
		cues = append(cues, cue{startMS: start, endMS: start, content: text, kind: models.KindCaption})
	}
	return cues, nil
}

const (
	samiHead = "<SAMI>\n<HEAD>\n<TITLE>Subtitles</TITLE>\n</HEAD>\n<BODY>\n"
	samiTail = "</BODY>\n</SAMI>\n"
)

func (smiCodec) encode(items []models.Caption) (string, error) {
	body, err := encodeSAMISyncs(items)
	if err != nil {
		return "", err
	}
	return samiHead + body + samiTail, nil
}

func encodeSAMISyncs(items []models.Caption) (string, error) {
	var b strings.Builder
	for _, it := range items {
		if err := checkTiming(it); err != nil {
			return "", err
		}
		text := strings.ReplaceAll(it.Content, "\n", "<br>")
		fmt.Fprintf(&b, "<SYNC Start=%d><P>%s\n", it.StartMS, text)
		fmt.Fprintf(&b, "<SYNC Start=%d><P>&nbsp;\n", it.EndMS)
	}
	return b.String(), nil
}

// samiStartAttr pulls the Start= value out of a <SYNC ...> tag.
func samiStartAttr(tag string) (int64, error) {
	lower := strings.ToLower(tag)
	i := strings.Index(lower, "start")
	if i < 0 {
		return 0, fmt.Errorf("smi: sync tag without start: %q", tag)
	}
	rest := tag[i+len("start"):]
	rest = strings.TrimLeft(rest, " =\"'")
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j == 0 {
		return 0, fmt.Errorf("smi: invalid start attribute: %q", tag)
	}
	n, err := strconv.ParseInt(rest[:j], 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// samiText flattens a sync body to display text: <br> becomes a newline,
// other tags drop, &nbsp; is blank.
func samiText(body string) string {
	body = strings.ReplaceAll(body, "<br>", "\n")
	body = strings.ReplaceAll(body, "<BR>", "\n")
	body = strings.ReplaceAll(body, "<br/>", "\n")
	var b strings.Builder
	inTag := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inTag:
			if c == '>' {
				inTag = false
			}
		case c == '<':
			inTag = true
		default:
			b.WriteByte(c)
		}
	}
	text := b.String()
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return strings.TrimSpace(text)
}
