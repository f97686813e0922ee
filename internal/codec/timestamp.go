package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// TimestampToSeconds converts "H:MM:SS" or "M:SS" into seconds. Any other
// shape yields 0. Field magnitudes are not bounds-checked; the strings come
// from trusted callers.
func TimestampToSeconds(s string) int {
	parts := strings.Split(s, ":")

	switch len(parts) {
	case 3:
		h := atoiOrZero(parts[0])
		m := atoiOrZero(parts[1])
		sec := atoiOrZero(parts[2])
		return h*3600 + m*60 + sec
	case 2:
		m := atoiOrZero(parts[0])
		sec := atoiOrZero(parts[1])
		return m*60 + sec
	default:
		return 0
	}
}

// SecondsToTimestamp renders seconds as "H:MM:SS" when there is at least one
// full hour, otherwise "M:SS", zero-padding minutes and seconds.
func SecondsToTimestamp(total int) string {
	if total < 0 {
		total = 0
	}

	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
