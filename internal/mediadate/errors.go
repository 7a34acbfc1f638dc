package mediadate

import "errors"

var (
	// ErrUnknownFileType reports a path whose extension is outside the
	// dispatch table.
	ErrUnknownFileType = errors.New("unknown file type")

	// ErrNoCreationDate reports a container that parsed cleanly but carries
	// no usable creation date.
	ErrNoCreationDate = errors.New("unable to determine creation date")
)
