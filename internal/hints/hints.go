// Package hints builds actionable hint suffixes for common CLI failures,
// formatted consistently as "\n  hint: <text>" for appending to error
// messages.
package hints

import "strings"

// ForConfigNotFound suggests the --config flag and, when a user config path
// was among the searched locations, creating the file there.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/apexmark") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForThemeNotFound lists the themes that are actually available.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForOutputFile suggests checking the destination directory.
func ForOutputFile() string {
	return format("check parent directory exists and is writable")
}

// ForBibliography lists the supported bibliography formats.
func ForBibliography() string {
	return format("supported formats: BibTeX (.bib), CSL-JSON (.json), CSL-YAML (.yaml)")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
