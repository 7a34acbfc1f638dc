package cli

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wezm/mkv-rename/internal/journal"
)

func TestRunRenamesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeMkvFixture(t, dir, "IMG_4792.mkv", "2023-04-12T02:19:01Z")

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{}, []string{path}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d, stderr=%q", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected silent stdout, got %q", stdout.String())
	}
	want := filepath.Join(dir, "1681265941 IMG_4792.mkv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("original still present: %v", err)
	}
}

func TestRunAppliesOffset(t *testing.T) {
	dir := t.TempDir()
	path := writeMkvFixture(t, dir, "clip.mkv", "1970-01-12T13:46:40Z") // unix 1000000

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{TzOffsetHours: -3.5}, []string{path}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d, stderr=%q", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "987400 clip.mkv")); err != nil {
		t.Fatalf("offset rename missing: %v", err)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeMkvFixture(t, dir, "IMG_4792.mkv", "2023-04-12T02:19:01Z")

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{DryRun: true}, []string{path}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d, stderr=%q", code, stderr.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}
	report := stdout.String()
	wantPrefix := path + " -> " + filepath.Join(dir, "1681265941 IMG_4792.mkv") + " ("
	if !strings.HasPrefix(report, wantPrefix) {
		t.Fatalf("report=%q, want prefix %q", report, wantPrefix)
	}
}

func TestRunOffsetOutOfRangeIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeMkvFixture(t, dir, "IMG_4792.mkv", "2023-04-12T02:19:01Z")

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{TzOffsetHours: float32(math.NaN())}, []string{path}, &stdout, &stderr)
	if code != exitError {
		t.Fatalf("exit=%d, want %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "offset too big") {
		t.Fatalf("stderr=%q, want offset error", stderr.String())
	}
	// Checked before any file is touched.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file was touched despite fatal offset: %v", err)
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bad, []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	good := writeMkvFixture(t, dir, "IMG_4792.mkv", "2023-04-12T02:19:01Z")

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{}, []string{bad, good}, &stdout, &stderr)
	if code != exitError {
		t.Fatalf("exit=%d, want %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "Error processing "+bad+": unknown file type") {
		t.Fatalf("stderr=%q, want tagged error for %q", stderr.String(), bad)
	}
	if _, err := os.Stat(filepath.Join(dir, "1681265941 IMG_4792.mkv")); err != nil {
		t.Fatalf("good file not renamed after earlier failure: %v", err)
	}
}

func TestRunMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.mkv")
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{}, []string{missing}, &stdout, &stderr)
	if code != exitError {
		t.Fatalf("exit=%d, want %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "Error processing "+missing) {
		t.Fatalf("stderr=%q, want tagged error", stderr.String())
	}
}

func TestRunExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeMkvFixture(t, dir, "b.mkv", "2023-04-12T02:19:01Z")
	writeMkvFixture(t, dir, "a.mkv", "2020-01-01T00:00:00Z")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{}, []string{dir}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d, stderr=%q", code, stderr.String())
	}
	for _, want := range []string{"1577836800 a.mkv", "1681265941 b.mkv", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Fatalf("missing %q after directory run: %v", want, err)
		}
	}
}

func TestRunEmptyDirectoryIsAnError(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{}, []string{dir}, &stdout, &stderr)
	if code != exitError {
		t.Fatalf("exit=%d, want %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "no recognized media files") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

func TestRunRecordsRenamesInJournal(t *testing.T) {
	dir := t.TempDir()
	path := writeMkvFixture(t, dir, "IMG_4792.mkv", "2023-04-12T02:19:01Z")

	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), Options{Journal: j}, []string{path}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit=%d, stderr=%q", code, stderr.String())
	}

	entries, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d journal entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.OriginalPath != path || entry.NewPath != filepath.Join(dir, "1681265941 IMG_4792.mkv") {
		t.Fatalf("journal entry: %+v", entry)
	}
	if entry.UnixSeconds != 1681265941 || entry.RunID == "" {
		t.Fatalf("journal entry fields: %+v", entry)
	}
}

// writeMkvFixture writes a minimal Matroska file whose creation date comes
// from a QuickTime creation date tag.
func writeMkvFixture(t *testing.T, dir, name, isoDate string) string {
	t.Helper()
	simpleTag := ebmlElement(0x67C8, append(
		ebmlElement(0x45A3, []byte("com.apple.quicktime.creationdate")),
		ebmlElement(0x4487, []byte(isoDate))...,
	))
	tags := ebmlElement(0x1254C367, ebmlElement(0x7373, simpleTag))
	doc := append(ebmlElement(0x1A45DFA3, nil), ebmlElement(0x18538067, tags)...)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func ebmlElement(id uint64, payload []byte) []byte {
	var buf []byte
	switch {
	case id <= 0xFF:
		buf = []byte{byte(id)}
	case id <= 0xFFFF:
		buf = []byte{byte(id >> 8), byte(id)}
	default:
		buf = []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	}
	size := uint64(len(payload))
	if size < 0x7F {
		buf = append(buf, byte(0x80|size))
	} else {
		buf = append(buf, byte(0x40|(size>>8)), byte(size))
	}
	return append(buf, payload...)
}
