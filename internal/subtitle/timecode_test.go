package subtitle

import "testing"

func TestFormatTime(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00,000"},
		{1, "00:00:00,001"},
		{999, "00:00:00,999"},
		{1000, "00:00:01,000"},
		{61000, "00:01:01,000"},
		{3661001, "01:01:01,001"},
		{360000000, "100:00:00,000"},
		{-5, "00:00:00,000"},
	}
	for _, c := range cases {
		if got := FormatTime(c.ms); got != c.want {
			t.Errorf("FormatTime(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		bad  bool
	}{
		{"00:00:00,000", 0, false},
		{"01:01:01,001", 3661001, false},
		{"00:00:01.5", 1500, false},
		{"12:34.56", 754560, false},
		{"1:02:03", 3723000, false},
		{"", 0, true},
		{"abc", 0, true},
		{"00:00:00,1234", 0, true},
	}
	for _, c := range cases {
		got, err := parseClock(c.in)
		if c.bad {
			if err == nil {
				t.Errorf("parseClock(%q): want error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseClockRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 999, 59999, 3661001, 86399999} {
		got, err := parseClock(FormatTime(ms))
		if err != nil {
			t.Fatalf("parseClock(FormatTime(%d)): %v", ms, err)
		}
		if got != ms {
			t.Errorf("round trip %d -> %d", ms, got)
		}
	}
}
