// Package assets loads the stylesheet themes used for standalone HTML
// output. Themes ship embedded in the binary; a user-supplied theme
// directory can shadow them by name.
package assets

// ThemeLoader loads a CSS theme by name (without the .css extension).
type ThemeLoader interface {
	// LoadTheme returns the theme's CSS content. Returns ErrThemeNotFound
	// when no theme of that name exists and ErrInvalidAssetName when the
	// name contains path characters.
	LoadTheme(name string) (string, error)

	// Themes lists the available theme names.
	Themes() []string
}
