package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedLoadTheme(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedLoader()
	css, err := e.LoadTheme("github")
	if err != nil {
		t.Fatalf("LoadTheme(github) error = %v", err)
	}
	if !strings.Contains(css, "body") {
		t.Errorf("theme content looks wrong: %q", css[:40])
	}
}

func TestEmbeddedThemeNotFound(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedLoader()
	if _, err := e.LoadTheme("nope"); !errors.Is(err, ErrThemeNotFound) {
		t.Errorf("error = %v, want ErrThemeNotFound", err)
	}
}

func TestEmbeddedThemes(t *testing.T) {
	t.Parallel()

	names := NewEmbeddedLoader().Themes()
	want := []string{"github", "paper", "plain"}
	if len(names) != len(want) {
		t.Fatalf("Themes() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Themes() = %v, want %v", names, want)
		}
	}
}

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"github", false},
		{"my-theme_2", false},
		{"", true},
		{"../escape", true},
		{"dir/name", true},
		{`dir\name`, true},
	}
	for _, tt := range tests {
		err := ValidateAssetName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAssetName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestFilesystemLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	css, err := fs.LoadTheme("custom")
	if err != nil || css != "body{}" {
		t.Errorf("LoadTheme(custom) = %q, %v", css, err)
	}
	if _, err := fs.LoadTheme("missing"); !errors.Is(err, ErrThemeNotFound) {
		t.Errorf("missing theme error = %v, want ErrThemeNotFound", err)
	}
	if _, err := fs.LoadTheme("../etc/passwd"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("traversal error = %v, want ErrInvalidAssetName", err)
	}
}

func TestFilesystemLoaderBadBase(t *testing.T) {
	t.Parallel()

	if _, err := NewFilesystemLoader(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("error = %v, want ErrInvalidBasePath", err)
	}
}

func TestResolverFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "github.css"), []byte("/* shadowed */"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra.css"), []byte("p{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewResolver(dir)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	// Custom shadows embedded on name collision.
	css, err := r.LoadTheme("github")
	if err != nil || css != "/* shadowed */" {
		t.Errorf("LoadTheme(github) = %q, %v, want shadowed copy", css, err)
	}
	// Unknown custom name falls back to embedded.
	css, err = r.LoadTheme("plain")
	if err != nil || !strings.Contains(css, "body") {
		t.Errorf("LoadTheme(plain) fallback failed: %v", err)
	}
	// Merged list holds both sources.
	names := r.Themes()
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "extra") || !strings.Contains(joined, "paper") {
		t.Errorf("Themes() = %v, want custom and embedded names", names)
	}
}
