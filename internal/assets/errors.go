package assets

import "errors"

var (
	// ErrThemeNotFound indicates the requested theme does not exist.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrInvalidAssetName indicates the theme name contains path separators
	// or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the theme directory is not a directory.
	ErrInvalidBasePath = errors.New("invalid theme directory")

	// ErrAssetRead indicates an I/O error while reading a theme file.
	ErrAssetRead = errors.New("failed to read asset")
)
