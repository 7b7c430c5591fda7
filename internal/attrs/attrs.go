// Package attrs implements Kramdown-style inline attribute lists (IAL),
// named attribute list definitions (ALD), and MultiMarkdown image attribute
// extraction.
package attrs

import (
	"html"
	"strings"
)

// Curly quote delimiters accepted for attribute values. Smart-typography
// processing upstream converts straight quotes in some pipelines, and the
// values must still parse.
const (
	leftCurly  = '“'
	rightCurly = '”'
)

// Pair is one extra key/value attribute.
type Pair struct {
	Key   string
	Value string
}

// Attributes holds the parsed content of a {: ...} list.
type Attributes struct {
	ID      string
	Classes []string
	Extras  []Pair
}

// Empty reports whether no attribute was parsed.
func (a *Attributes) Empty() bool {
	return a == nil || (a.ID == "" && len(a.Classes) == 0 && len(a.Extras) == 0)
}

// String serializes to an HTML attribute string: id first, then class, then
// extras in order, space-joined with no leading space.
func (a *Attributes) String() string {
	if a.Empty() {
		return ""
	}
	var parts []string
	if a.ID != "" {
		parts = append(parts, `id="`+html.EscapeString(a.ID)+`"`)
	}
	if len(a.Classes) > 0 {
		parts = append(parts, `class="`+html.EscapeString(strings.Join(a.Classes, " "))+`"`)
	}
	for _, p := range a.Extras {
		parts = append(parts, p.Key+`="`+html.EscapeString(p.Value)+`"`)
	}
	return strings.Join(parts, " ")
}

// ParseIAL parses the inner content of a {: ...} list. Tokens are
// whitespace-separated: #id sets the id (last one wins), .class appends a
// class, key=value records an extra pair. Values may be unquoted, single or
// double quoted with backslash escapes, or delimited by curly quotes.
func ParseIAL(content string) *Attributes {
	a := &Attributes{}
	i := 0
	for i < len(content) {
		// Skip whitespace between tokens.
		for i < len(content) && (content[i] == ' ' || content[i] == '\t') {
			i++
		}
		if i >= len(content) {
			break
		}
		switch content[i] {
		case '#':
			tok, next := readBareToken(content, i+1)
			if tok != "" {
				a.ID = tok
			}
			i = next
		case '.':
			tok, next := readBareToken(content, i+1)
			if tok != "" {
				a.Classes = append(a.Classes, tok)
			}
			i = next
		default:
			key, value, next, ok := readKeyValue(content, i)
			if !ok {
				// Not key=value: a bare word is an ALD reference handled by
				// the caller; skip it here.
				_, next := readBareToken(content, i)
				i = next
				continue
			}
			a.Extras = append(a.Extras, Pair{Key: key, Value: value})
			i = next
		}
	}
	return a
}

// readBareToken reads until whitespace or '}'.
func readBareToken(s string, i int) (string, int) {
	start := i
	for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '}' {
		i++
	}
	return s[start:i], i
}

// readKeyValue parses key=value with the supported quoting forms.
func readKeyValue(s string, i int) (key, value string, next int, ok bool) {
	start := i
	for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' && s[i] != '}' {
		i++
	}
	if i >= len(s) || s[i] != '=' || i == start {
		return "", "", start, false
	}
	key = s[start:i]
	i++ // consume '='
	if i >= len(s) {
		return key, "", i, true
	}
	switch {
	case s[i] == '"' || s[i] == '\'':
		quote := s[i]
		i++
		var b strings.Builder
		for i < len(s) {
			if s[i] == '\\' && i+1 < len(s) && s[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			if s[i] == quote {
				i++
				break
			}
			b.WriteByte(s[i])
			i++
		}
		return key, b.String(), i, true
	case strings.HasPrefix(s[i:], string(leftCurly)):
		i += len(string(leftCurly))
		end := strings.Index(s[i:], string(rightCurly))
		if end == -1 {
			value, i = readUnquoted(s, i)
			return key, value, i, true
		}
		value = s[i : i+end]
		return key, value, i + end + len(string(rightCurly)), true
	default:
		value, i = readUnquoted(s, i)
		return key, value, i, true
	}
}

func readUnquoted(s string, i int) (string, int) {
	start := i
	for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '}' {
		i++
	}
	return s[start:i], i
}

// IsALDReference reports whether the IAL content is a bare reference name,
// with none of the '#', '.', '=' characters that mark literal attributes.
func IsALDReference(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.ContainsAny(trimmed, "#.= \t") {
		return "", false
	}
	return trimmed, true
}
