package pipeline

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngDot is a 1x1 transparent PNG.
var pngDot = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func TestEmbedImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dot.png"), pngDot, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := EmbedImages(`<p><img src="dot.png" alt="dot"></p>`, dir)
	if err != nil {
		t.Fatalf("EmbedImages() error = %v", err)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngDot)
	if !strings.Contains(got, want) {
		t.Errorf("EmbedImages() = %q, want data URI for dot.png", got)
	}
	if !strings.Contains(got, `alt="dot"`) {
		t.Errorf("EmbedImages() dropped the alt attribute: %q", got)
	}
}

func TestEmbedImagesSkips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		src  string
	}{
		{"remote URL", "https://example.com/pic.png"},
		{"data URI", "data:image/png;base64,AAAA"},
		{"missing file", "gone.png"},
		{"unknown extension", "notes.txt"},
		{"traversal", "../escape.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := `<img src="` + tt.src + `"/>`
			got, err := EmbedImages(input, dir)
			if err != nil {
				t.Fatalf("EmbedImages() error = %v", err)
			}
			if !strings.Contains(got, `src="`+tt.src+`"`) {
				t.Errorf("EmbedImages() = %q, want src %q untouched", got, tt.src)
			}
		})
	}
}

func TestEmbedImagesNoBaseDir(t *testing.T) {
	t.Parallel()

	input := `<img src="dot.png">`
	got, err := EmbedImages(input, "")
	if err != nil {
		t.Fatalf("EmbedImages() error = %v", err)
	}
	if got != input {
		t.Errorf("EmbedImages() = %q, want unchanged without a base dir", got)
	}
}

func TestEmbedImagesNoImgUnchanged(t *testing.T) {
	t.Parallel()

	input := "<p>no images here</p>\n"
	got, err := EmbedImages(input, t.TempDir())
	if err != nil {
		t.Fatalf("EmbedImages() error = %v", err)
	}
	if got != input {
		t.Errorf("EmbedImages() = %q, want unchanged", got)
	}
}
