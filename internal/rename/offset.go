package rename

import (
	"errors"
	"math"
	"time"
)

// ErrOffsetOutOfRange reports a timezone offset whose second count does not
// fit in 32 bits.
var ErrOffsetOutOfRange = errors.New("offset too big")

// OffsetSeconds converts a fractional hour offset to whole seconds, rounding
// half away from zero. The result must fit an int32; anything else,
// including NaN, is rejected.
func OffsetSeconds(hours float32) (int32, error) {
	seconds := math.Round(float64(hours) * 3600)
	if !(seconds >= math.MinInt32 && seconds <= math.MaxInt32) {
		return 0, ErrOffsetOutOfRange
	}
	return int32(seconds), nil
}

// ApplyOffset shifts a timestamp by the given number of seconds.
func ApplyOffset(t time.Time, seconds int32) time.Time {
	return t.Add(time.Duration(seconds) * time.Second)
}
