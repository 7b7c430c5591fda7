// Package metadata implements document metadata extraction, merging and
// variable substitution.
//
// Metadata arrives from three tiers: an external metadata file, the document
// prefix (YAML front matter, a Pandoc title block, or MultiMarkdown-style
// leading key/value lines), and command-line pairs. Later tiers win on
// conflicting keys. Lookup is case-insensitive and whitespace-insensitive.
package metadata

import (
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/apexmark/apexmark/internal/yamlutil"
)

// Item is a single key/value metadata pair.
type Item struct {
	Key   string
	Value string
}

// List is an ordered collection of metadata pairs. Insertion order is
// preserved for YAML re-serialization.
type List struct {
	items []Item
}

// NewList returns an empty metadata list.
func NewList() *List {
	return &List{}
}

// normalizeKey strips spaces and lowercases for the secondary-pass lookup.
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, " ", ""))
}

// Add appends a pair. Empty keys are rejected silently.
func (l *List) Add(key, value string) {
	if key == "" {
		return
	}
	l.items = append(l.items, Item{Key: key, Value: value})
}

// Get looks up a value by key. An exact match wins; otherwise keys are
// compared case-insensitively with spaces stripped. The last matching entry
// wins, mirroring merge semantics.
func (l *List) Get(key string) (string, bool) {
	for i := len(l.items) - 1; i >= 0; i-- {
		if l.items[i].Key == key {
			return l.items[i].Value, true
		}
	}
	want := normalizeKey(key)
	for i := len(l.items) - 1; i >= 0; i-- {
		if normalizeKey(l.items[i].Key) == want {
			return l.items[i].Value, true
		}
	}
	return "", false
}

// Items returns the pairs in insertion order.
func (l *List) Items() []Item {
	return l.items
}

// Len returns the number of pairs.
func (l *List) Len() int {
	return len(l.items)
}

// Merge appends every pair from other, removing any existing entry with the
// same normalized key first so the overriding value is the only survivor.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	for _, it := range other.items {
		l.Set(it.Key, it.Value)
	}
}

// Set removes prior entries with the same normalized key and appends the new
// pair at the end.
func (l *List) Set(key, value string) {
	if key == "" {
		return
	}
	want := normalizeKey(key)
	kept := l.items[:0]
	for _, it := range l.items {
		if normalizeKey(it.Key) != want {
			kept = append(kept, it)
		}
	}
	l.items = kept
	l.items = append(l.items, Item{Key: key, Value: value})
}

// MarshalYAML re-serializes the list as a YAML front matter block, preserving
// insertion order. Used by the CLI merge-and-reinject path.
func (l *List) MarshalYAML() ([]byte, error) {
	ms := make(yaml.MapSlice, 0, len(l.items))
	for _, it := range l.items {
		ms = append(ms, yaml.MapItem{Key: it.Key, Value: it.Value})
	}
	return yamlutil.Marshal(ms)
}

// FrontMatter renders the list as a ----delimited YAML block ready to be
// prepended to a document. Empty lists produce an empty string.
func (l *List) FrontMatter() string {
	if len(l.items) == 0 {
		return ""
	}
	data, err := l.MarshalYAML()
	if err != nil {
		return ""
	}
	return "---\n" + string(data) + "---\n\n"
}

// Extract parses document-prefix metadata and reports the byte offset where
// content begins. The returned list is empty (never nil) when the document
// carries no metadata, and the offset is then zero: extraction never copies
// text, callers advance their own cursor.
func Extract(text string) (*List, int) {
	if strings.HasPrefix(text, "---") {
		if list, off, ok := extractYAML(text); ok {
			return list, off
		}
	}
	if strings.HasPrefix(text, "%") {
		if list, off, ok := extractPandoc(text); ok {
			return list, off
		}
	}
	return extractMMD(text)
}

// extractYAML scans a ---  ...  ---/... front matter block line by line.
// Each key: value line splits on the first colon with one layer of matching
// quotes stripped from the value.
func extractYAML(text string) (*List, int, bool) {
	firstNL := strings.IndexByte(text, '\n')
	if firstNL == -1 {
		return nil, 0, false
	}
	if strings.TrimSpace(text[:firstNL]) != "---" {
		return nil, 0, false
	}

	list := NewList()
	pos := firstNL + 1
	for pos <= len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		var line string
		if lineEnd == -1 {
			line = text[pos:]
			lineEnd = len(line)
		} else {
			line = text[pos : pos+lineEnd]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" || trimmed == "..." {
			end := pos + lineEnd
			if end < len(text) {
				end++ // consume the newline after the close delimiter
			}
			return list, end, true
		}
		if colon := strings.IndexByte(line, ':'); colon > 0 {
			key := strings.TrimSpace(line[:colon])
			value := stripQuotes(strings.TrimSpace(line[colon+1:]))
			list.Add(key, value)
		}
		if pos+lineEnd >= len(text) {
			break
		}
		pos += lineEnd + 1
	}
	// Unterminated block: treat the document as having no metadata.
	return nil, 0, false
}

// stripQuotes removes one layer of matching single or double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// extractPandoc reads up to three consecutive %-prefixed title block lines,
// mapping them positionally to title, author and date.
func extractPandoc(text string) (*List, int, bool) {
	keys := []string{"title", "author", "date"}
	list := NewList()
	pos := 0
	for i := 0; i < 3 && pos < len(text); i++ {
		if text[pos] != '%' {
			break
		}
		lineEnd := strings.IndexByte(text[pos:], '\n')
		var line string
		if lineEnd == -1 {
			line = text[pos:]
			pos = len(text)
		} else {
			line = text[pos : pos+lineEnd]
			pos += lineEnd + 1
		}
		list.Add(keys[i], strings.TrimSpace(line[1:]))
	}
	if list.Len() == 0 {
		return nil, 0, false
	}
	return list, pos, true
}

// mmdTerminators stop MultiMarkdown-style metadata scanning when a line is
// clearly document content rather than a key/value pair.
func isMMDTerminator(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return true
	case strings.HasPrefix(trimmed, "*["): // abbreviation definition
		return true
	case strings.HasPrefix(trimmed, "<!--"): // HTML comment, includes TOC marker
		return true
	case strings.HasPrefix(trimmed, "{:"): // Kramdown block marker
		return true
	case strings.HasPrefix(trimmed, "#"): // heading
		return true
	case strings.HasPrefix(trimmed, "{{TOC"):
		return true
	}
	return false
}

// looksLikeLink reports whether a would-be metadata line is actually a bare
// URL or a markdown link, which must never be misparsed as metadata.
func looksLikeLink(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") ||
		strings.HasPrefix(trimmed, "ftp://") || strings.HasPrefix(trimmed, "mailto:") {
		return true
	}
	if strings.HasPrefix(trimmed, "[") && strings.Contains(trimmed, "](") {
		return true
	}
	return false
}

// isMMDMetadataLine requires a colon immediately followed by a space or tab.
func isMMDMetadataLine(line string) (key, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 || colon+1 >= len(line) {
		return "", "", false
	}
	if line[colon+1] != ' ' && line[colon+1] != '\t' {
		return "", "", false
	}
	key = strings.TrimSpace(line[:colon])
	if key == "" || strings.ContainsAny(key, "*`[]#") {
		return "", "", false
	}
	return key, strings.TrimSpace(line[colon+1:]), true
}

// extractMMD scans consecutive Key: Value lines at the top of the document.
// If the very first line is not a metadata line the whole document is
// reported as metadata-free rather than yielding a partial set.
func extractMMD(text string) (*List, int) {
	list := NewList()
	pos := 0
	first := true
	terminated := false
	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		var line string
		atEOF := false
		if lineEnd == -1 {
			line = text[pos:]
			atEOF = true
		} else {
			line = text[pos : pos+lineEnd]
		}

		if isMMDTerminator(line) {
			if first {
				return NewList(), 0
			}
			terminated = true
			break
		}
		key, value, ok := isMMDMetadataLine(line)
		if !ok || looksLikeLink(line) {
			if first {
				return NewList(), 0
			}
			// A malformed line mid-block ends the metadata region.
			terminated = true
			break
		}
		list.Add(key, value)
		first = false
		if atEOF {
			pos = len(text)
			break
		}
		pos += lineEnd + 1
	}
	if list.Len() == 0 {
		return NewList(), 0
	}
	// A block that reaches end of input without a terminator would swallow
	// the whole document; a colon in the first line of prose must not turn
	// the document into metadata.
	if !terminated {
		return NewList(), 0
	}
	// Consume one trailing blank line so content does not start with it.
	if pos < len(text) && text[pos] == '\n' {
		pos++
	}
	return list, pos
}

// ParseFile parses external metadata file content (the --meta-file tier).
// YAML mappings are tried first; MMD-style key/value lines act as fallback.
// Malformed input degrades to an empty list, never an error.
func ParseFile(data []byte) *List {
	if ms, err := yamlutil.UnmarshalOrdered(data); err == nil {
		list := NewList()
		for _, item := range ms {
			key, ok := item.Key.(string)
			if !ok {
				continue
			}
			list.Add(key, scalarString(item.Value))
		}
		if list.Len() > 0 {
			return list
		}
	}
	list, _ := Extract(string(data))
	return list
}

// scalarString renders a YAML scalar back to its string form.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		out, err := yamlutil.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(out), "\n")
	}
}
