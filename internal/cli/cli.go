// Package cli implements the mkv-rename batch run: resolve each file's
// creation date, apply the run-wide offset, and rename.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wezm/mkv-rename/internal/journal"
	"github.com/wezm/mkv-rename/internal/mediadate"
	"github.com/wezm/mkv-rename/internal/rename"
)

const (
	exitOK    = 0
	exitError = 1
)

// Options carries one run's settings.
type Options struct {
	// DryRun reports the planned renames without touching anything.
	DryRun bool
	// TzOffsetHours is added to every extracted timestamp.
	TzOffsetHours float32
	// FileTimeFallback uses the filesystem timestamp when the container
	// carries no creation date.
	FileTimeFallback bool
	// Journal, when non-nil, records every performed rename.
	Journal *journal.Journal
	Logger  *slog.Logger
}

// Run renames every file named by paths; a directory argument stands for the
// recognized media files directly inside it. A failing file is reported on
// stderr and the rest of the batch continues. The exit code is nonzero if
// anything failed. An offset that does not fit int32 seconds aborts the run
// before any file is touched.
func Run(ctx context.Context, opts Options, paths []string, stdout, stderr io.Writer) int {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	offsetSeconds, err := rename.OffsetSeconds(opts.TzOffsetHours)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	var runID string
	if opts.Journal != nil && !opts.DryRun {
		runID = journal.NewRunID()
	}

	failed := false
	for _, arg := range paths {
		files, err := expandPath(arg)
		if err != nil {
			fmt.Fprintf(stderr, "Error processing %s: %v\n", arg, err)
			failed = true
			continue
		}
		for _, file := range files {
			if err := processFile(ctx, opts, offsetSeconds, runID, file, stdout); err != nil {
				fmt.Fprintf(stderr, "Error processing %s: %v\n", file, err)
				failed = true
			}
		}
	}

	if failed {
		return exitError
	}
	return exitOK
}

func processFile(ctx context.Context, opts Options, offsetSeconds int32, runID string, path string, stdout io.Writer) error {
	date, err := mediadate.CreationDateWithOptions(path, mediadate.Options{
		FileTimeFallback: opts.FileTimeFallback,
		Logger:           opts.Logger,
	})
	if err != nil {
		return err
	}

	op := rename.PlanFile(path, rename.ApplyOffset(date, offsetSeconds))
	if opts.DryRun {
		fmt.Fprintln(stdout, op.String())
		return nil
	}
	if err := op.Apply(); err != nil {
		return err
	}
	opts.Logger.Info("renamed", "from", op.Path, "to", op.NewPath)
	if opts.Journal != nil {
		// A journal failure never fails the rename it records.
		if err := opts.Journal.Record(ctx, runID, op.Path, op.NewPath, op.Timestamp.Unix()); err != nil {
			opts.Logger.Warn("journal write failed", "path", op.Path, "error", err)
		}
	}
	return nil
}

// expandPath resolves one command line argument to concrete files. A file is
// taken as-is whatever its extension; a directory contributes the recognized
// media files directly inside it, in name order, and is an error when it
// holds none.
func expandPath(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	entries, err := os.ReadDir(arg)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if mediadate.KindForPath(entry.Name()) == mediadate.KindUnknown {
			continue
		}
		files = append(files, filepath.Join(arg, entry.Name()))
	}
	if len(files) == 0 {
		return nil, errors.New("no recognized media files")
	}
	sort.Strings(files)
	return files, nil
}
