package assets

import (
	"errors"
	"sort"
)

// Resolver combines a user theme directory with the embedded themes. Custom
// themes win on name collisions; unknown names fall back to embedded.
type Resolver struct {
	custom   ThemeLoader // nil when no theme directory is configured
	embedded ThemeLoader
}

// NewResolver builds a Resolver. An empty themeDir means embedded only.
func NewResolver(themeDir string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if themeDir != "" {
		fs, err := NewFilesystemLoader(themeDir)
		if err != nil {
			return nil, err
		}
		r.custom = fs
	}
	return r, nil
}

// LoadTheme tries the custom directory first, falling back to embedded only
// for not-found errors. Validation and I/O errors surface immediately.
func (r *Resolver) LoadTheme(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTheme(name)
	}
	content, err := r.custom.LoadTheme(name)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, ErrThemeNotFound) {
		return "", err
	}
	return r.embedded.LoadTheme(name)
}

// Themes merges both loaders' names, deduplicated and sorted.
func (r *Resolver) Themes() []string {
	seen := map[string]bool{}
	var names []string
	add := func(list []string) {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	add(r.embedded.Themes())
	if r.custom != nil {
		add(r.custom.Themes())
	}
	sort.Strings(names)
	return names
}

var _ ThemeLoader = (*Resolver)(nil)
