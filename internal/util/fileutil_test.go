package util

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("path should be a directory")
	}

	// Existing directory is not an error
	if err := EnsureDir(dir); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("same content"), 0o644)
	os.WriteFile(b, []byte("same content"), 0o644)

	hashA, err := FileHash(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, err := FileHash(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if hashA != hashB {
		t.Error("identical content should hash identically")
	}

	os.WriteFile(b, []byte("different content"), 0o644)
	hashB2, _ := FileHash(b)
	if hashA == hashB2 {
		t.Error("different content should hash differently")
	}
}

func TestFileHash_Missing(t *testing.T) {
	if _, err := FileHash("/nonexistent"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sized.txt")
	os.WriteFile(path, []byte("12345"), 0o644)

	size, err := FileSize(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}
}

func TestIsFileReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readable.txt")
	os.WriteFile(path, []byte("x"), 0o644)

	if !IsFileReadable(path) {
		t.Error("existing file should be readable")
	}
	if IsFileReadable("/nonexistent") {
		t.Error("missing file should not be readable")
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.txt", "txt"},
		{"archive.TAR", "tar"},
		{"/path/to/data.JSON", "json"},
		{"noext", ""},
		{"double.tar.gz", "gz"},
	}
	for _, tt := range tests {
		if got := FileExtension(tt.path); got != tt.want {
			t.Errorf("FileExtension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"normal-file_1.txt", "normal-file_1.txt"},
		{"has spaces.txt", "has_spaces.txt"},
		{"weird/$lash\\name", "weird__lash_name"},
		{"кириллица.txt", "_________.txt"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTempFilePath_Unique(t *testing.T) {
	a := TempFilePath("test", ".tmp")
	b := TempFilePath("test", ".tmp")
	if a == b {
		t.Error("temp paths should be unique")
	}
	if !strings.HasSuffix(a, ".tmp") {
		t.Errorf("suffix missing: %s", a)
	}
}

func TestCopyFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src.txt")
	os.WriteFile(src, []byte("copy me"), 0o644)

	// Destination directory does not exist yet
	dst := filepath.Join(t.TempDir(), "nested", "dst.txt")
	n, err := CopyFile(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 bytes copied, got %d", n)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "copy me" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestRemoveFileSafely(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doomed.txt")
	os.WriteFile(path, []byte("x"), 0o644)

	if err := RemoveFileSafely(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}

	// Second removal is not an error
	if err := RemoveFileSafely(path); err != nil {
		t.Errorf("removing a missing file should be a no-op: %v", err)
	}
}

func TestListFilesRecursively(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "top.txt"), []byte("x"), 0o644)
	os.MkdirAll(filepath.Join(dir, "sub", "deep"), 0o755)
	os.WriteFile(filepath.Join(dir, "sub", "mid.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "sub", "deep", "bottom.txt"), []byte("x"), 0o644)

	files, err := ListFilesRecursively(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	for _, want := range []string{"top.txt", "mid.txt", "bottom.txt"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing %s in %v", want, names)
		}
	}
}

func TestListFilesRecursively_MissingDir(t *testing.T) {
	files, err := ListFilesRecursively("/nonexistent/dir")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}
