package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/wezm/mkv-rename/internal/cli"
	"github.com/wezm/mkv-rename/internal/journal"
	"github.com/wezm/mkv-rename/internal/logging"
)

// Set via ldflags on release builds.
var version = "dev"

var exitCode = 0

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCommand() *cobra.Command {
	var (
		configFlag       string
		dryRun           bool
		tzOffset         float32
		fallbackFileTime bool
		noJournal        bool
		verbose          bool
	)

	cli.SetVersion(resolveVersion())
	cctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "mkv-rename [flags] <file|directory>...",
		Short: "Rename video files to their embedded creation time",
		Long: `mkv-rename extracts the creation timestamp embedded in Matroska (.mkv) and
MP4/QuickTime (.mov, .mp4, .m4v) files and renames each file to
"<unix-seconds> <original-name>" in its directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tz-offset") {
				cfg.Rename.TzOffsetHours = tzOffset
			}
			if cmd.Flags().Changed("fallback-file-time") {
				cfg.Rename.FallbackFileTime = fallbackFileTime
			}

			level := cfg.Log.Level
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: level, Format: cfg.Log.Format})
			if err != nil {
				return err
			}

			opts := cli.Options{
				DryRun:           dryRun,
				TzOffsetHours:    cfg.Rename.TzOffsetHours,
				FileTimeFallback: cfg.Rename.FallbackFileTime,
				Logger:           logger,
			}
			if cfg.Journal.Enabled && !noJournal && !dryRun {
				if j, err := journal.Open(cfg.Journal.Path); err != nil {
					// Journal failures downgrade to warnings; the batch still runs.
					logger.Warn("journal unavailable", "path", cfg.Journal.Path, "error", err)
				} else {
					defer j.Close()
					opts.Journal = j
				}
			}

			exitCode = cli.Run(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be renamed without touching anything")
	rootCmd.Flags().Float32VarP(&tzOffset, "tz-offset", "t", 0, "Hours to add to every extracted timestamp (e.g. -3.5)")
	rootCmd.Flags().BoolVar(&fallbackFileTime, "fallback-file-time", false, "Use the file's own timestamp when the container has no creation date")
	rootCmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record renames in the journal")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newUpdateCommand())
	rootCmd.AddCommand(newHistoryCommand(cctx))
	rootCmd.AddCommand(newUndoCommand(cctx))
	rootCmd.AddCommand(newConfigCommand(cctx))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print mkv-rename version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.Version(cmd.OutOrStdout())
			return nil
		},
		DisableFlagsInUseLine: true,
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update mkv-rename",
		Long:  "Update mkv-rename to the latest version (release builds only).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelfUpdate(cmd.Context())
		},
		DisableFlagsInUseLine: true,
	}
}

func runSelfUpdate(ctx context.Context) error {
	if version == "" || version == "dev" {
		return errors.New("self-update is only available in release builds")
	}

	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("could not parse version: %w", err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(cli.AppRepo))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found from github repository", cli.AppRepo, version)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("Current binary is the latest version: %s\n", cli.FormatVersion(version))
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Printf("Successfully updated to version: %s\n", cli.FormatVersion(latest.Version()))
	return nil
}

func resolveVersion() string {
	if version != "" && version != "dev" {
		return normalizeVersion(version)
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return normalizeVersion(info.Main.Version)
		}
	}
	return "dev"
}

func normalizeVersion(value string) string {
	return strings.TrimPrefix(value, "v")
}
