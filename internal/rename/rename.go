// Package rename plans and performs timestamp-prefix renames of media files.
package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Swapped out in tests.
var renameFile = os.Rename

// Operation is a planned rename of one file.
type Operation struct {
	Path      string
	NewPath   string
	Timestamp time.Time
}

// PlanFile builds the rename operation for path with its resolved, already
// offset creation timestamp.
func PlanFile(path string, timestamp time.Time) Operation {
	return Operation{
		Path:      path,
		NewPath:   NewPath(path, timestamp),
		Timestamp: timestamp,
	}
}

// NewPath returns the destination path for path: the original file name
// prefixed with the timestamp as Unix seconds, in the same directory.
// Panics if path has no file name component; callers only pass paths that
// named an existing regular file.
func NewPath(path string, timestamp time.Time) string {
	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		panic(fmt.Sprintf("rename: path %q has no file name", path))
	}
	return filepath.Join(filepath.Dir(path), strconv.FormatInt(timestamp.Unix(), 10)+" "+base)
}

// Apply performs the rename.
func (op Operation) Apply() error {
	if err := renameFile(op.Path, op.NewPath); err != nil {
		return fmt.Errorf("unable to rename to %s: %w", op.NewPath, err)
	}
	return nil
}

// Revert moves the file back to its original name.
func (op Operation) Revert() error {
	if err := renameFile(op.NewPath, op.Path); err != nil {
		return fmt.Errorf("unable to rename to %s: %w", op.Path, err)
	}
	return nil
}

// String renders the operation the way dry runs report it, with the
// timestamp in RFC 2822 form.
func (op Operation) String() string {
	return fmt.Sprintf("%s -> %s (%s)", op.Path, op.NewPath, op.Timestamp.Format(time.RFC1123Z))
}
