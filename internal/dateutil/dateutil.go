// Package dateutil resolves "auto" date values in document metadata. A
// metadata entry of "auto" or "auto:FORMAT" becomes the current date, with
// the format written in friendly tokens (YYYY, MM, DD) instead of Go's
// reference time.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat indicates a malformed date format string.
var ErrInvalidFormat = errors.New("invalid date format")

// MaxFormatLength caps format strings from untrusted metadata.
const MaxFormatLength = 50

// DefaultFormat is used for a bare "auto" value.
const DefaultFormat = "YYYY-MM-DD"

// tokens maps friendly tokens to Go time layout fragments, longest first so
// greedy matching picks YYYY over YY.
var tokens = []struct {
	text   string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts accepted after "auto:".
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseFormat converts a friendly format string to a Go time layout.
// Bracketed text is copied literally: "[updated] YYYY" keeps the word
// "updated" as-is. Unrecognized characters pass through unchanged.
func ParseFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: empty format", ErrInvalidFormat)
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidFormat, MaxFormatLength)
	}

	var b strings.Builder
	b.Grow(len(format) + 8)
	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at %d", ErrInvalidFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		matched := false
		for _, t := range tokens {
			if strings.HasPrefix(format[i:], t.text) {
				b.WriteString(t.layout)
				i += len(t.text)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String(), nil
}

// Resolve expands auto date values:
//
//	"auto"         -> now in the default format
//	"auto:FORMAT"  -> now in a custom format
//	"auto:preset"  -> now using a named preset (iso, european, us, long)
//
// Anything else is returned unchanged, including words that merely start
// with "auto". The time parameter lets tests pin the clock.
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(value)
	if lower != "auto" && !strings.HasPrefix(lower, "auto:") {
		return value, nil
	}
	if lower == "auto" {
		layout, err := ParseFormat(DefaultFormat)
		if err != nil {
			return "", err
		}
		return now.Format(layout), nil
	}

	format := value[len("auto:"):]
	if format == "" {
		return "", fmt.Errorf("%w: nothing after \"auto:\"", ErrInvalidFormat)
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	layout, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
