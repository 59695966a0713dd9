package batch

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResetSequence_ColdStart(t *testing.T) {
	seq := ResetSequence(t.TempDir(), "base")
	if seq.Next != 1 {
		t.Fatalf("expected cold start at 1, got %d", seq.Next)
	}
}

func TestResetSequence_ResumesPastGaps(t *testing.T) {
	tmp := t.TempDir()
	touch(t, tmp, "base__1.mp4")
	touch(t, tmp, "base__3.mp4")

	seq := ResetSequence(tmp, "base")
	if seq.Next != 4 {
		t.Fatalf("expected resume at 4, got %d", seq.Next)
	}
}

func TestResetSequence_SkipsMalformedAndForeignNames(t *testing.T) {
	tmp := t.TempDir()
	touch(t, tmp, "base__2.mp4")
	touch(t, tmp, "base__notanumber.mp4")
	touch(t, tmp, "other__9.mp4")
	touch(t, tmp, "base_5.mp4") // single underscore, not ours

	seq := ResetSequence(tmp, "base")
	if seq.Next != 3 {
		t.Fatalf("expected 3, got %d", seq.Next)
	}
}

func TestResetSequence_MissingDirectoryStartsAtOne(t *testing.T) {
	seq := ResetSequence(filepath.Join(t.TempDir(), "nope"), "base")
	if seq.Next != 1 {
		t.Fatalf("expected 1 for missing directory, got %d", seq.Next)
	}
}

func TestResetSequence_SidecarsShareTheStem(t *testing.T) {
	tmp := t.TempDir()
	touch(t, tmp, "base__7.mp4")
	touch(t, tmp, "base__7.info.json")

	seq := ResetSequence(tmp, "base")
	if seq.Next != 8 {
		t.Fatalf("expected 8, got %d", seq.Next)
	}
}

func TestAllocate_PostIncrement(t *testing.T) {
	seq := ResetSequence(t.TempDir(), "clip")

	template, index := seq.Allocate()
	if index != 1 || template != "clip__1.%(ext)s" {
		t.Fatalf("first allocation: template=%q index=%d", template, index)
	}
	template, index = seq.Allocate()
	if index != 2 || template != "clip__2.%(ext)s" {
		t.Fatalf("second allocation: template=%q index=%d", template, index)
	}
}

func TestAllocate_WithoutBaseNameUsesTitleTemplate(t *testing.T) {
	seq := ResetSequence(t.TempDir(), "")

	template, index := seq.Allocate()
	if template != TitleTemplate || index != 0 {
		t.Fatalf("expected title template with no index, got %q, %d", template, index)
	}
	if seq.Next != 1 {
		t.Fatalf("title allocations must not consume sequence numbers, Next=%d", seq.Next)
	}
}
