package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTime renders milliseconds as an SRT timecode, HH:MM:SS,mmm. Hours
// are zero-padded to two digits and keep growing past 99.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	frac := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, frac)
}

// formatTimeVTT renders HH:MM:SS.mmm (WebVTT, SBV).
func formatTimeVTT(ms int64) string {
	return strings.Replace(FormatTime(ms), ",", ".", 1)
}

// formatTimeSSA renders H:MM:SS.cc (centiseconds, single hour digit).
func formatTimeSSA(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	cs := (ms % 1000) / 10
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// formatTimeLRC renders [mm:ss.xx] (hundredths, minutes unbounded).
func formatTimeLRC(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	m := ms / 60000
	s := (ms % 60000) / 1000
	cs := (ms % 1000) / 10
	return fmt.Sprintf("[%02d:%02d.%02d]", m, s, cs)
}

// parseClock parses "H:MM:SS", "HH:MM:SS,mmm", "HH:MM:SS.mmm" or "MM:SS.mmm"
// into milliseconds. The fractional part may be 1-3 digits and either
// separator; hours are optional.
func parseClock(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timecode")
	}

	frac := int64(0)
	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		f := s[i+1:]
		if f == "" || len(f) > 3 {
			return 0, fmt.Errorf("invalid timecode fraction %q", s)
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q", s)
		}
		for d := len(f); d < 3; d++ {
			n *= 10
		}
		frac = int64(n)
		s = s[:i]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode %q", s)
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timecode %q", s)
		}
		total = total*60 + int64(n)
	}
	return total*1000 + frac, nil
}
