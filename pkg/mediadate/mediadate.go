// Package mediadate exposes creation date extraction for Matroska and
// MP4/QuickTime files to other programs.
package mediadate

import (
	"log/slog"
	"time"

	"github.com/wezm/mkv-rename/internal/mediadate"
)

// Types
type Kind = mediadate.Kind

// Constants
const (
	KindUnknown  = mediadate.KindUnknown
	KindMatroska = mediadate.KindMatroska
	KindMP4      = mediadate.KindMP4
)

// Errors
var (
	ErrUnknownFileType = mediadate.ErrUnknownFileType
	ErrNoCreationDate  = mediadate.ErrNoCreationDate
)

// Options adjusts how creation dates are resolved.
type Options struct {
	// FileTimeFallback falls back to the filesystem timestamp when the
	// container carries no creation date.
	FileTimeFallback bool
	Logger           *slog.Logger
}

// Functions
func CreationDate(path string) (time.Time, error) {
	return mediadate.CreationDate(path)
}

func CreationDateWithOptions(path string, opts Options) (time.Time, error) {
	return mediadate.CreationDateWithOptions(path, mediadate.Options{
		FileTimeFallback: opts.FileTimeFallback,
		Logger:           opts.Logger,
	})
}

func KindForPath(path string) Kind {
	return mediadate.KindForPath(path)
}
