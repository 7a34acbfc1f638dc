package mediadate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreationDateMatroskaFile(t *testing.T) {
	doc := buildMatroskaFile(
		buildMatroskaTags(buildMatroskaSimpleTag(quicktimeCreationTag, "2023-04-11T22:19:01-04:00")),
	)
	path := writeFixture(t, "IMG_4792.mkv", doc)

	date, err := CreationDate(path)
	if err != nil {
		t.Fatalf("CreationDate: %v", err)
	}
	if date.Unix() != 1681258741 {
		t.Fatalf("unix=%d, want 1681258741", date.Unix())
	}
}

func TestCreationDateMP4FileUppercaseExtension(t *testing.T) {
	path := writeFixture(t, "IMG_0001.MOV", buildMP4File(writeMvhdV0(2082844800)))

	date, err := CreationDate(path)
	if err != nil {
		t.Fatalf("CreationDate: %v", err)
	}
	if date.Unix() != 0 {
		t.Fatalf("unix=%d, want 0", date.Unix())
	}
}

func TestCreationDateUnknownExtension(t *testing.T) {
	// Dispatch happens before any file access.
	_, err := CreationDate(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrUnknownFileType) {
		t.Fatalf("err=%v, want ErrUnknownFileType", err)
	}
}

func TestCreationDateMissingFile(t *testing.T) {
	_, err := CreationDate(filepath.Join(t.TempDir(), "missing.mkv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCreationDateFileTimeFallback(t *testing.T) {
	doc := buildMatroskaFile(
		buildMatroskaTags(buildMatroskaSimpleTag("ENCODER", "Lavf60.3.100")),
	)
	path := writeFixture(t, "nodate.mkv", doc)
	mtime := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := CreationDate(path); !errors.Is(err, ErrNoCreationDate) {
		t.Fatalf("err=%v, want ErrNoCreationDate without fallback", err)
	}

	date, err := CreationDateWithOptions(path, Options{FileTimeFallback: true})
	if err != nil {
		t.Fatalf("CreationDateWithOptions: %v", err)
	}
	want, err := fileTime(path)
	if err != nil {
		t.Fatalf("fileTime: %v", err)
	}
	if !date.Equal(want) {
		t.Fatalf("date=%v, want file time %v", date, want)
	}
}

func TestCreationDateFallbackDoesNotMaskParseFailures(t *testing.T) {
	path := writeFixture(t, "garbage.mkv", []byte("this is not matroska"))
	_, err := CreationDateWithOptions(path, Options{FileTimeFallback: true})
	if err == nil || errors.Is(err, ErrNoCreationDate) {
		t.Fatalf("err=%v, want a parse failure", err)
	}
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
