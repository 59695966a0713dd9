package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"clip-archiver/internal/store"
)

func writeSidecar(t *testing.T, dir, stem string, fields map[string]any) {
	t.Helper()
	if err := store.WriteJSON(filepath.Join(dir, stem+".info.json"), fields); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportExisting_CustomNaming(t *testing.T) {
	tmp := t.TempDir()
	writeSidecar(t, tmp, "clip__1", map[string]any{
		"id": "v1", "title": "First", "webpage_url": "https://example.com/1", "ext": "mp4",
	})
	writeSidecar(t, tmp, "clip__2", map[string]any{
		"id": "v2", "title": "Second", "webpage_url": "https://example.com/2", "ext": "mp4",
	})
	touch(t, tmp, "clip__1.mp4")
	touch(t, tmp, "clip__2.mp4")

	s, err := Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	n, err := s.ImportExisting(tmp, "clip")
	if err != nil {
		t.Fatalf("import existing: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 processed, got %d", n)
	}

	rows, err := s.DataRows()
	if err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", rows)
	}
}

func TestImportExisting_TitleMatchAndDuplicates(t *testing.T) {
	tmp := t.TempDir()
	writeSidecar(t, tmp, "My Great Clip", map[string]any{
		"id": "v1", "title": "My Great Clip", "webpage_url": "https://example.com/1", "ext": "mp4",
	})
	touch(t, tmp, "My Great Clip.mp4")

	s, err := Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.ImportExisting(tmp, ""); err != nil {
		t.Fatal(err)
	}
	// second pass over the same directory must not duplicate rows
	if _, err := s.ImportExisting(tmp, ""); err != nil {
		t.Fatal(err)
	}

	rows, err := s.DataRows()
	if err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Fatalf("expected deduped single row, got %d", rows)
	}
}

func TestImportExisting_EmptyDirectory(t *testing.T) {
	tmp := t.TempDir()
	s, err := Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	n, err := s.ImportExisting(filepath.Join(tmp, "missing"), "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected 0 processed for missing directory, got %d", n)
	}
}

func TestImportExisting_NumberedStemsMatchExactly(t *testing.T) {
	tmp := t.TempDir()
	writeSidecar(t, tmp, "clip__1", map[string]any{
		"id": "v1", "title": "First", "webpage_url": "https://example.com/1", "ext": "mp4",
	})
	writeSidecar(t, tmp, "clip__10", map[string]any{
		"id": "v10", "title": "Tenth", "webpage_url": "https://example.com/10", "ext": "mp4",
	})
	// only clip__10.mp4 exists; clip__1's sidecar must not claim it
	touch(t, tmp, "clip__10.mp4")

	s, err := Open(tmp, "")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.ImportExisting(tmp, "clip"); err != nil {
		t.Fatal(err)
	}

	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		t.Fatal(err)
	}
	pathCol := columnIndex(rows, "Download Path")
	if pathCol < 0 {
		t.Fatal("missing Download Path column")
	}
	for _, row := range dataRows(rows) {
		id := cellAt(row, columnIndex(rows, "Video ID"))
		path := cellAt(row, pathCol)
		switch id {
		case "v1":
			if path != "" {
				t.Fatalf("v1 must not resolve a media path, got %q", path)
			}
		case "v10":
			if path != filepath.Join(tmp, "clip__10.mp4") {
				t.Fatalf("v10 path = %q", path)
			}
		}
	}
}
