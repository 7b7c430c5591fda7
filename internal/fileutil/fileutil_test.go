package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Errorf("FileExists(%q) = false, want true", path)
	}
	if FileExists(filepath.Join(dir, "missing.txt")) {
		t.Error("FileExists should be false for a missing file")
	}
	if FileExists(dir) {
		t.Error("FileExists should be false for a directory")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"github", false},
		{"my-theme", false},
		{"./custom.css", true},
		{"../shared/a.css", true},
		{"/abs/style.css", true},
		{`C:\styles\a.css`, true},
	}
	for _, tt := range tests {
		if got := IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	if !IsURL("https://example.com/a.css") || !IsURL("http://x/y.css") {
		t.Error("http(s) URLs should be recognized")
	}
	if IsURL("ftp://example.com") || IsURL("style.css") {
		t.Error("non-http strings should not be URLs")
	}
}
