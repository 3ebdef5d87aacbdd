package download

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArchiveAppendAndContains(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	if archive.Contains("abc123") {
		t.Error("Expected empty archive to not contain abc123")
	}

	if err := archive.Append("abc123"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if !archive.Contains("abc123") {
		t.Error("Expected archive to contain abc123 after append")
	}
	if archive.Contains("other") {
		t.Error("Expected archive to not contain other")
	}
}

func TestArchiveAppendDeduplicates(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	for i := 0; i < 3; i++ {
		if err := archive.Append("abc123"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	data, err := os.ReadFile(archive.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	count := strings.Count(string(data), "abc123")
	if count != 1 {
		t.Errorf("Expected 1 line for abc123, got %d", count)
	}
}

func TestArchiveRemovePreservesOtherLines(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	if err := archive.Append("first"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := archive.Append("second"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// External tools may write lines this engine never produced
	f, err := os.OpenFile(archive.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := f.WriteString("vimeo external99\n"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	f.Close()

	if err := archive.Remove("first"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if archive.Contains("first") {
		t.Error("Expected first to be removed")
	}
	if !archive.Contains("second") {
		t.Error("Expected second to survive removal of first")
	}

	data, err := os.ReadFile(archive.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "vimeo external99") {
		t.Error("Expected external line to survive rewrite")
	}
}

func TestArchiveRemoveMissingFile(t *testing.T) {
	archive := NewArchive(t.TempDir())
	if err := archive.Remove("nothing"); err != nil {
		t.Errorf("Expected remove on missing file to succeed, got %v", err)
	}
}

func TestArchiveSeesExternalAppends(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	if err := archive.Append("mine"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Simulate another process appending between checks
	path := filepath.Join(dir, ArchiveFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := f.WriteString("youtube theirs\n"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	f.Close()

	if !archive.Contains("theirs") {
		t.Error("Expected Contains to see externally appended ID")
	}
}
