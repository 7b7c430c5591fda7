package attrs

import (
	"regexp"
	"strings"
)

// ALDEntry is a named, reusable attribute set from a {:name: ...} definition.
type ALDEntry struct {
	Name  string
	Attrs *Attributes
}

// ALDList holds the definitions collected from one document.
type ALDList struct {
	entries []ALDEntry
}

// Lookup resolves a reference name by exact string match.
func (l *ALDList) Lookup(name string) (*Attributes, bool) {
	if l == nil {
		return nil, false
	}
	for _, e := range l.entries {
		if e.Name == name {
			return e.Attrs, true
		}
	}
	return nil, false
}

// Len returns the number of definitions.
func (l *ALDList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// aldDefPattern matches an ALD definition line: the second colon after the
// name distinguishes it from a plain IAL.
var aldDefPattern = regexp.MustCompile(`^\{:([A-Za-z][A-Za-z0-9_-]*):\s*([^}]*)\}\s*$`)

// ExtractALDs removes {:name: attributes} definition lines from the text and
// returns the collected definitions. The input is returned unchanged (no
// copy) when no definition is present.
func ExtractALDs(text string) (string, *ALDList) {
	list := &ALDList{}
	if !strings.Contains(text, "{:") {
		return text, list
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	found := false
	for _, line := range lines {
		if m := aldDefPattern.FindStringSubmatch(line); m != nil {
			list.entries = append(list.entries, ALDEntry{Name: m[1], Attrs: ParseIAL(m[2])})
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return text, list
	}
	return strings.Join(kept, "\n"), list
}

// pureIALPattern matches a line that is nothing but a {: ...} attribute list.
var pureIALPattern = regexp.MustCompile(`^\{:([^}]*)\}\s*$`)

// tocIALPattern matches the Kramdown {:toc} convention, with optional
// whitespace-separated options after the toc token.
var tocIALPattern = regexp.MustCompile(`^(?i)toc(\s+(.*))?$`)

// IsPureIALLine reports whether the line is a standalone IAL (and not an ALD
// definition) and returns its inner content.
func IsPureIALLine(line string) (string, bool) {
	if aldDefPattern.MatchString(line) {
		return "", false
	}
	m := pureIALPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// PreprocessIAL inserts a blank line before any standalone IAL line whose
// previous line is non-blank content, so the block parser sees the attribute
// line as its own paragraph instead of appending it to the previous one.
// A pure-IAL line starting with the toc token is rewritten to the HTML
// comment TOC marker instead. Returns the input unchanged when nothing
// matched.
func PreprocessIAL(text string) string {
	if !strings.Contains(text, "{:") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+4)
	changed := false
	inFence := false
	prevBlank := true
	prevIAL := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		content, isIAL := "", false
		if !inFence {
			content, isIAL = IsPureIALLine(trimmed)
		}
		if isIAL {
			if m := tocIALPattern.FindStringSubmatch(content); m != nil {
				marker := "<!--TOC-->"
				if opts := strings.TrimSpace(m[2]); opts != "" {
					marker = "<!--TOC " + opts + "-->"
				}
				out = append(out, marker)
				changed = true
				prevBlank = false
				prevIAL = false
				continue
			}
			if !prevBlank && !prevIAL {
				out = append(out, "")
				changed = true
			}
			out = append(out, line)
			prevBlank = false
			prevIAL = true
			continue
		}
		out = append(out, line)
		prevBlank = trimmed == ""
		prevIAL = false
	}
	if !changed {
		return text
	}
	return strings.Join(out, "\n")
}
