package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemLoader serves themes from a user-supplied directory.
type FilesystemLoader struct {
	base string
}

// NewFilesystemLoader validates the directory and returns a loader over it.
func NewFilesystemLoader(base string) (*FilesystemLoader, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBasePath, base, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBasePath, base)
	}
	return &FilesystemLoader{base: abs}, nil
}

// LoadTheme reads <base>/<name>.css. The name is validated first, so the
// joined path can never leave the base directory.
func (f *FilesystemLoader) LoadTheme(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	path := filepath.Join(f.base, name+".css")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrThemeNotFound, name)
		}
		return "", fmt.Errorf("%w: %q: %v", ErrAssetRead, path, err)
	}
	return string(content), nil
}

// Themes lists the .css files in the directory, sorted.
func (f *FilesystemLoader) Themes() []string {
	entries, err := os.ReadDir(f.base)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".css") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

var _ ThemeLoader = (*FilesystemLoader)(nil)
