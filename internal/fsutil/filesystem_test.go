package fsutil

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

// Both implementations must satisfy the cache's interface.
var (
	_ FileSystem = OSFileSystem{}
	_ FileSystem = (*MemoryFileSystem)(nil)
)

func TestMemoryFileSystemWriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	data := []byte(`{"frame": 1000}`)
	if err := mfs.WriteFile("matches/m1/m1_match.json", data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := mfs.ReadFile("matches/m1/m1_match.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadFile = %q, want %q", got, data)
	}
}

func TestMemoryFileSystemReadMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.ReadFile("matches/m1/missing.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile on missing file = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryFileSystemIsolatesStoredBytes(t *testing.T) {
	mfs := NewMemoryFileSystem()

	data := []byte("original")
	if err := mfs.WriteFile("f", data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data[0] = 'X'

	got, err := mfs.ReadFile("f")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("stored bytes mutated through the caller's slice: %q", got)
	}

	// Mutating the returned slice must not touch the stored copy either.
	got[0] = 'Y'
	again, err := mfs.ReadFile("f")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(again) != "original" {
		t.Errorf("stored bytes mutated through the returned slice: %q", again)
	}
}

func TestMemoryFileSystemMkdirAllAndExists(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("data/cache/matches/m1", 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	// Every parent on the path exists afterwards.
	for _, dir := range []string{
		"data",
		"data/cache",
		"data/cache/matches",
		"data/cache/matches/m1",
	} {
		if !mfs.Exists(dir) {
			t.Errorf("Exists(%q) = false after MkdirAll", dir)
		}
	}
	if mfs.Exists("data/cache/matches/m2") {
		t.Error("Exists reports a directory that was never created")
	}
}

func TestMemoryFileSystemRemove(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("f", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := mfs.Remove("f"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if mfs.Exists("f") {
		t.Error("file still exists after Remove")
	}

	if err := mfs.Remove("f"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove on missing file = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryFileSystemCleansPaths(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("matches//m1/./file.json", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := mfs.ReadFile("matches/m1/file.json"); err != nil {
		t.Errorf("ReadFile via the cleaned path: %v", err)
	}
	if !mfs.Exists("matches/m1/file.json") {
		t.Error("Exists via the cleaned path = false")
	}
}

func TestOSFileSystemRoundTrip(t *testing.T) {
	osfs := OSFileSystem{}
	dir := t.TempDir()

	nested := filepath.Join(dir, "matches", "m1")
	if err := osfs.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	path := filepath.Join(nested, "m1_match.json")
	data := []byte(`{"pitch_length": 105}`)
	if err := osfs.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !osfs.Exists(path) {
		t.Error("Exists = false for a written file")
	}

	got, err := osfs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadFile = %q, want %q", got, data)
	}

	if err := osfs.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if osfs.Exists(path) {
		t.Error("Exists = true after Remove")
	}
}
