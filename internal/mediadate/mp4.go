package mediadate

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abema/go-mp4"
)

// ISO-BMFF timestamps count seconds from 1904-01-01T00:00:00 UTC.
const mp4EpochOffset = 2082844800

// Unix seconds for 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z. A movie
// header timestamp outside this range cannot be a real capture date.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

// mp4CreationDate extracts the creation date of an ISO-BMFF (MP4/QuickTime)
// file from the movie header. A stored zero is taken at face value and maps
// to the 1904 epoch.
func mp4CreationDate(r io.ReadSeeker) (time.Time, error) {
	boxes, err := mp4.ExtractBoxWithPayload(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse mp4: %w", err)
	}
	if len(boxes) == 0 {
		return time.Time{}, errors.New("parse mp4: no movie header (mvhd) box")
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return time.Time{}, errors.New("parse mp4: no movie header (mvhd) box")
	}
	seconds := int64(mvhd.GetCreationTime()) - mp4EpochOffset
	if seconds < minUnixSeconds || seconds > maxUnixSeconds {
		return time.Time{}, ErrNoCreationDate
	}
	return time.Unix(seconds, 0).UTC(), nil
}
