// Package cite implements citation and index registries: bibliography
// loading, cite-key accumulation in first-use order, placeholder-based
// preprocessing, and the HTML-stage rendering of citations, reference lists
// and index blocks.
package cite

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/apexmark/apexmark/internal/yamlutil"
)

// MaxBibliographySize caps bibliography file reads.
const MaxBibliographySize = 1 << 20

// Entry is one bibliography record: an id plus a flat field map.
type Entry struct {
	ID     string
	Fields map[string]string
}

// Bibliography is a loaded set of entries, shared (not owned) by registries.
type Bibliography struct {
	entries []Entry
}

// Lookup finds an entry by exact id.
func (b *Bibliography) Lookup(id string) (*Entry, bool) {
	if b == nil {
		return nil, false
	}
	for i := range b.entries {
		if b.entries[i].ID == id {
			return &b.entries[i], true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (b *Bibliography) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// LoadBibliography reads and parses one bibliography file, dispatching on
// extension: .bib (BibTeX), .json (CSL-JSON), .yaml/.yml (CSL-YAML).
// Malformed or unreadable files degrade to an empty bibliography.
func LoadBibliography(paths []string) *Bibliography {
	bib := &Bibliography{}
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- bibliography path is user-provided
		if err != nil || len(data) > MaxBibliographySize {
			continue
		}
		switch {
		case strings.HasSuffix(path, ".json"):
			bib.entries = append(bib.entries, parseCSLJSON(data)...)
		case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
			bib.entries = append(bib.entries, parseCSLYAML(data)...)
		default:
			bib.entries = append(bib.entries, ParseBibTeX(string(data))...)
		}
	}
	return bib
}

// ParseBibTeX scans @type{id, key = value, ...} records. The parser is
// deliberately forgiving: anything it cannot make sense of is skipped.
func ParseBibTeX(text string) []Entry {
	var entries []Entry
	i := 0
	for i < len(text) {
		at := strings.IndexByte(text[i:], '@')
		if at == -1 {
			break
		}
		i += at + 1
		brace := strings.IndexByte(text[i:], '{')
		if brace == -1 {
			break
		}
		entryType := strings.ToLower(strings.TrimSpace(text[i : i+brace]))
		i += brace + 1
		body, next := readBalanced(text, i)
		i = next
		if entryType == "comment" || entryType == "preamble" || entryType == "string" {
			continue
		}
		entry, ok := parseBibTeXBody(entryType, body)
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// readBalanced consumes up to the brace matching the one already opened.
func readBalanced(text string, i int) (string, int) {
	depth := 1
	start := i
	for ; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start:i], i + 1
			}
		}
	}
	return text[start:], i
}

func parseBibTeXBody(entryType, body string) (Entry, bool) {
	comma := strings.IndexByte(body, ',')
	if comma == -1 {
		return Entry{}, false
	}
	id := strings.TrimSpace(body[:comma])
	if id == "" {
		return Entry{}, false
	}
	entry := Entry{ID: id, Fields: map[string]string{"type": entryType}}

	rest := body[comma+1:]
	for {
		eq := strings.IndexByte(rest, '=')
		if eq == -1 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(strings.TrimLeft(rest[:eq], ", \t\n")))
		rest = strings.TrimSpace(rest[eq+1:])
		var value string
		switch {
		case rest == "":
		case rest[0] == '{':
			value, rest = readBraceValue(rest)
		case rest[0] == '"':
			value, rest = readQuoteValue(rest)
		default:
			end := strings.IndexAny(rest, ",\n")
			if end == -1 {
				end = len(rest)
			}
			value = strings.TrimSpace(rest[:end])
			rest = rest[end:]
		}
		if key != "" {
			entry.Fields[key] = cleanBibValue(value)
		}
	}
	return entry, true
}

func readBraceValue(s string) (string, string) {
	value, next := readBalanced(s, 1)
	return value, s[min(next, len(s)):]
}

func readQuoteValue(s string) (string, string) {
	end := strings.IndexByte(s[1:], '"')
	if end == -1 {
		return s[1:], ""
	}
	return s[1 : end+1], s[end+2:]
}

// cleanBibValue strips protective braces and collapses whitespace runs.
func cleanBibValue(v string) string {
	v = strings.ReplaceAll(v, "{", "")
	v = strings.ReplaceAll(v, "}", "")
	return strings.Join(strings.Fields(v), " ")
}

// parseCSLJSON decodes a CSL-JSON array of records.
func parseCSLJSON(data []byte) []Entry {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	var entries []Entry
	for _, rec := range records {
		if e, ok := flattenCSLRecord(rec); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// parseCSLYAML decodes a CSL-YAML document, accepting either a top-level
// "references" list or a bare list.
func parseCSLYAML(data []byte) []Entry {
	var doc any
	if err := yamlutil.Unmarshal(data, &doc); err != nil {
		return nil
	}
	records := cslYAMLRecords(doc)
	var entries []Entry
	for _, rec := range records {
		if e, ok := flattenCSLRecord(rec); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func cslYAMLRecords(doc any) []map[string]any {
	var raw []any
	switch t := doc.(type) {
	case map[string]any:
		refs, ok := t["references"].([]any)
		if !ok {
			return nil
		}
		raw = refs
	case []any:
		raw = t
	default:
		return nil
	}
	var records []map[string]any
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

// flattenCSLRecord reduces a CSL record to the flat string fields the
// reference-list renderer consumes.
func flattenCSLRecord(rec map[string]any) (Entry, bool) {
	id, _ := rec["id"].(string)
	if id == "" {
		if n, ok := rec["id"].(float64); ok {
			id = fmt.Sprintf("%.0f", n)
		}
	}
	if id == "" {
		return Entry{}, false
	}
	entry := Entry{ID: id, Fields: map[string]string{}}
	for key, v := range rec {
		if key == "id" {
			continue
		}
		switch t := v.(type) {
		case string:
			entry.Fields[key] = t
		case float64:
			entry.Fields[key] = strings.TrimSuffix(fmt.Sprintf("%v", t), ".0")
		case []any:
			if key == "author" || key == "editor" {
				entry.Fields[key] = flattenNames(t)
			}
		case map[string]any:
			if key == "issued" {
				if year := cslYear(t); year != "" {
					entry.Fields["year"] = year
				}
			}
		}
	}
	return entry, true
}

// flattenNames renders a CSL name array as "Family, Given; Family, Given".
func flattenNames(names []any) string {
	var parts []string
	for _, n := range names {
		m, ok := n.(map[string]any)
		if !ok {
			continue
		}
		family, _ := m["family"].(string)
		given, _ := m["given"].(string)
		switch {
		case family != "" && given != "":
			parts = append(parts, family+", "+given)
		case family != "":
			parts = append(parts, family)
		case given != "":
			parts = append(parts, given)
		}
	}
	return strings.Join(parts, "; ")
}

// cslYear digs the year out of a CSL issued date ("date-parts" form).
func cslYear(issued map[string]any) string {
	parts, ok := issued["date-parts"].([]any)
	if !ok || len(parts) == 0 {
		if lit, ok := issued["literal"].(string); ok {
			return lit
		}
		return ""
	}
	first, ok := parts[0].([]any)
	if !ok || len(first) == 0 {
		return ""
	}
	switch y := first[0].(type) {
	case float64:
		return fmt.Sprintf("%.0f", y)
	case string:
		return y
	case int:
		return fmt.Sprintf("%d", y)
	}
	return ""
}
