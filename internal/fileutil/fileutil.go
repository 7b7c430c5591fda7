// Package fileutil holds small path and file classification helpers shared
// by the CLI and the asset loaders.
package fileutil

import (
	"os"
	"strings"
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath reports whether the string names a file rather than a theme or
// style name. Anything containing a path separator is treated as a path:
//
//	"github"           -> false (name)
//	"./custom.css"     -> true
//	"../shared/a.css"  -> true
//	"/etc/style.css"   -> true
//	`C:\styles\a.css`  -> true
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// IsURL reports whether the string is an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
