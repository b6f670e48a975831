package redis

import (
	"strconv"
	"time"
)

// Scores are Unix microseconds, which a float64 holds exactly for any
// realistic date.

func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

// minScore is the inclusive lower bound for t, rounded up to the next
// microsecond.
func minScore(t time.Time) string {
	if t.IsZero() {
		return "-inf"
	}
	us := t.UnixMicro()
	if time.UnixMicro(us).Before(t) {
		us++
	}
	return strconv.FormatInt(us, 10)
}

// maxScore is the inclusive upper bound for t, rounded down.
func maxScore(t time.Time) string {
	if t.IsZero() {
		return "+inf"
	}
	return strconv.FormatInt(t.UnixMicro(), 10)
}
