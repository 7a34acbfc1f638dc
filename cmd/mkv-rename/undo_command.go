package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wezm/mkv-rename/internal/journal"
	"github.com/wezm/mkv-rename/internal/rename"
)

func newUndoCommand(cctx *commandContext) *cobra.Command {
	var runID string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the renames of a previous run",
		Long:  "Revert the renames recorded for a run, the most recent one by default.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return errors.New("journal is disabled in configuration")
			}
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			ctx := cmd.Context()
			target := strings.TrimSpace(runID)
			if target == "" {
				target, err = j.LastRunID(ctx)
				if err != nil {
					return err
				}
				if target == "" {
					return errors.New("journal is empty, nothing to undo")
				}
			}

			entries, err := j.RunEntries(ctx, target)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no renames recorded for run %s", target)
			}

			out := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()
			failedCount := 0
			// Revert in reverse order of execution. Reverted entries leave
			// the journal so a second undo does not redo them.
			for i := len(entries) - 1; i >= 0; i-- {
				entry := entries[i]
				op := rename.Operation{
					Path:      entry.OriginalPath,
					NewPath:   entry.NewPath,
					Timestamp: time.Unix(entry.UnixSeconds, 0),
				}
				if dryRun {
					fmt.Fprintf(out, "%s -> %s\n", entry.NewPath, entry.OriginalPath)
					continue
				}
				if err := op.Revert(); err != nil {
					fmt.Fprintf(stderr, "Error processing %s: %v\n", entry.NewPath, err)
					failedCount++
					continue
				}
				if err := j.DeleteEntry(ctx, entry.ID); err != nil {
					fmt.Fprintf(stderr, "Error processing %s: %v\n", entry.NewPath, err)
				}
			}
			if failedCount > 0 {
				return fmt.Errorf("%d rename(s) could not be reverted", failedCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier to revert (defaults to the most recent)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be reverted without renaming")
	return cmd
}
