package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirectoryExists(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filePath string
		wantDir  string
	}{
		{
			name:     "current directory is a no-op",
			filePath: "feed.xml",
		},
		{
			name:     "single directory",
			filePath: filepath.Join(tempDir, "out", "feed.xml"),
			wantDir:  filepath.Join(tempDir, "out"),
		},
		{
			name:     "nested directories",
			filePath: filepath.Join(tempDir, "a", "b", "c", "feed.xml"),
			wantDir:  filepath.Join(tempDir, "a", "b", "c"),
		},
		{
			name:     "directory already exists",
			filePath: filepath.Join(tempDir, "feed.xml"),
			wantDir:  tempDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureDirectoryExists(tt.filePath); err != nil {
				t.Fatalf("EnsureDirectoryExists(%q) error = %v", tt.filePath, err)
			}

			if tt.wantDir == "" {
				return
			}
			info, err := os.Stat(tt.wantDir)
			if err != nil {
				t.Fatalf("directory %s not created: %v", tt.wantDir, err)
			}
			if !info.IsDir() {
				t.Errorf("%s is not a directory", tt.wantDir)
			}
		})
	}
}

func TestGetDefaultPath(t *testing.T) {
	result, err := GetDefaultPath("content.db")
	if err != nil {
		t.Fatalf("GetDefaultPath() error = %v", err)
	}

	if !filepath.IsAbs(result) {
		t.Errorf("GetDefaultPath() = %q, want absolute path", result)
	}
	if filepath.Base(result) != "content.db" {
		t.Errorf("GetDefaultPath() = %q, want base name content.db", result)
	}
}

func TestResolvePath(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(existing, []byte("site: {}\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if got := ResolvePath(existing); got != existing {
		t.Errorf("ResolvePath(absolute) = %q, want %q", got, existing)
	}

	missing := "definitely-not-here-" + filepath.Base(tempDir) + ".yaml"
	if got := ResolvePath(missing); got != missing {
		t.Errorf("ResolvePath(missing) = %q, want original path %q", got, missing)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds", "rss.xml")

	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("file content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file to remain, found %d entries", len(entries))
	}
}
