package rename

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestOffsetSeconds(t *testing.T) {
	tests := []struct {
		name  string
		hours float32
		want  int32
		err   error
	}{
		{"zero", 0, 0, nil},
		{"negative half hour", -3.5, -12600, nil},
		{"positive", 10, 36000, nil},
		{"fractional hours", 0.25, 900, nil},
		{"rounds to nearest second", 0.001, 4, nil},
		{"too large", 1e9, 0, ErrOffsetOutOfRange},
		{"too small", -1e9, 0, ErrOffsetOutOfRange},
		{"nan", float32(math.NaN()), 0, ErrOffsetOutOfRange},
		{"positive infinity", float32(math.Inf(1)), 0, ErrOffsetOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := OffsetSeconds(tc.hours)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err=%v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Fatalf("seconds=%d, want %d", got, tc.want)
			}
		})
	}
}

func TestApplyOffset(t *testing.T) {
	got := ApplyOffset(time.Unix(1000000, 0), -12600)
	if got.Unix() != 987400 {
		t.Fatalf("unix=%d, want 987400", got.Unix())
	}
}

func TestApplyOffsetCrossesDateBoundary(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 30, 0, 0, time.UTC)
	got := ApplyOffset(start, -3600)
	want := time.Date(2022, 12, 31, 23, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("date=%v, want %v", got, want)
	}
}
