package mediadate

import (
	"path/filepath"
	"strings"
)

// Kind identifies the container family a file is handled as. Dispatch is by
// file extension only, never by content sniffing, so a misnamed file is
// reported as a parse failure rather than silently reinterpreted.
type Kind int

const (
	KindUnknown Kind = iota
	KindMatroska
	KindMP4
)

func (k Kind) String() string {
	switch k {
	case KindMatroska:
		return "Matroska"
	case KindMP4:
		return "MP4"
	default:
		return "Unknown"
	}
}

// KindForPath maps a file path to its container kind. The extension match is
// case-insensitive; paths without a recognized extension map to KindUnknown.
func KindForPath(path string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "mkv":
		return KindMatroska
	case "mov", "mp4", "m4v":
		return KindMP4
	default:
		return KindUnknown
	}
}
