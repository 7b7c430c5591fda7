package cite

import (
	"os"
	"regexp"
	"strings"
)

// Style is the slice of a CSL style the renderer honors: the style title and
// its citation-format class. The class picks between numeric [n] and
// author-date (Family Year) inline labels; this is not full CSL processing,
// in the same spirit as formatEntry.
type Style struct {
	Name       string
	AuthorDate bool
}

var (
	cslFormatPattern = regexp.MustCompile(`citation-format="([^"]+)"`)
	cslTitlePattern  = regexp.MustCompile(`<title>([^<]*)</title>`)
)

// LoadStyle reads a CSL style file and classifies its citation format.
// Unreadable or unrecognizable files degrade to the numeric default.
func LoadStyle(path string) Style {
	if path == "" {
		return Style{}
	}
	data, err := os.ReadFile(path) // #nosec G304 -- style path is user-provided
	if err != nil || len(data) > MaxBibliographySize {
		return Style{}
	}
	text := string(data)
	s := Style{}
	if m := cslTitlePattern.FindStringSubmatch(text); m != nil {
		s.Name = strings.TrimSpace(m[1])
	}
	if m := cslFormatPattern.FindStringSubmatch(text); m != nil {
		s.AuthorDate = m[1] == "author-date"
	}
	return s
}
