package codec

import "testing"

func TestTimestampToSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1:02:03", 3723},
		{"0:00:59", 59},
		{"10:00", 600},
		{"0:00", 0},
		{"2:05", 125},
		// Unsupported shapes collapse to zero.
		{"90", 0},
		{"", 0},
		{"1:2:3:4", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := TimestampToSeconds(tt.in); got != tt.want {
			t.Errorf("TimestampToSeconds(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSecondsToTimestamp(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{3723, "1:02:03"},
		{600, "10:00"},
		{59, "0:59"},
		{0, "0:00"},
		{7205, "2:00:05"},
		{-5, "0:00"},
	}

	for _, tt := range tests {
		if got := SecondsToTimestamp(tt.in); got != tt.want {
			t.Errorf("SecondsToTimestamp(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimestampRoundTripOnSeconds(t *testing.T) {
	for _, s := range []int{0, 59, 60, 599, 600, 3599, 3600, 3723, 7325} {
		if got := TimestampToSeconds(SecondsToTimestamp(s)); got != s {
			t.Errorf("round trip of %d seconds came back as %d", s, got)
		}
	}
}
