package mediadate

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"
)

// Options adjusts how creation dates are resolved.
type Options struct {
	// FileTimeFallback falls back to the filesystem timestamp when the
	// container carries no creation date.
	FileTimeFallback bool
	Logger           *slog.Logger
}

func (o Options) normalize() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// CreationDate resolves the embedded creation date of a media file. The
// container format is chosen by file extension alone; a file that does not
// parse as what its extension claims is an error, never re-sniffed.
func CreationDate(path string) (time.Time, error) {
	return CreationDateWithOptions(path, Options{})
}

func CreationDateWithOptions(path string, opts Options) (time.Time, error) {
	opts = opts.normalize()
	kind := KindForPath(path)
	if kind == KindUnknown {
		return time.Time{}, ErrUnknownFileType
	}
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	var date time.Time
	switch kind {
	case KindMatroska:
		date, err = matroskaCreationDate(f, info.Size())
	case KindMP4:
		date, err = mp4CreationDate(f)
	}
	if err != nil {
		if errors.Is(err, ErrNoCreationDate) && opts.FileTimeFallback {
			fallback, ferr := fileTime(path)
			if ferr != nil {
				return time.Time{}, err
			}
			opts.Logger.Debug("no embedded creation date, using file time",
				"path", path, "time", fallback)
			return fallback, nil
		}
		return time.Time{}, err
	}
	opts.Logger.Debug("resolved creation date", "path", path, "kind", kind, "date", date)
	return date, nil
}
