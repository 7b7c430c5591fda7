package cite

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Citation placeholders use Private Use Area delimiters so the keys survive
// every later pass, including autolinking: citation preprocessing runs before
// autolink preprocessing precisely so a bare @key is never mistaken for an
// email sigil.
const (
	citeStart = ""
	citeEnd   = ""
)

// Syntax flags select which cite syntaxes the preprocessor recognizes.
type Syntax uint8

const (
	SyntaxPandoc Syntax = 1 << iota // [@key], [@a; @b], bare @key
	SyntaxMMD                       // [#key]
	SyntaxMmark                     // [@!key], [@?key]
)

// Registry accumulates distinct cite keys in first-occurrence order during
// one conversion. The bibliography is shared, not owned.
type Registry struct {
	bib   *Bibliography
	keys  []string
	index map[string]int // key -> 1-based citation number
}

// NewRegistry creates a fresh per-conversion registry.
func NewRegistry(bib *Bibliography) *Registry {
	return &Registry{bib: bib, index: make(map[string]int)}
}

// Add records a key and returns its citation number. Numbering is
// order-of-first-appearance; repeated keys keep their original number.
func (r *Registry) Add(key string) int {
	if n, ok := r.index[key]; ok {
		return n
	}
	r.keys = append(r.keys, key)
	r.index[key] = len(r.keys)
	return len(r.keys)
}

// Keys returns the distinct keys in first-use order.
func (r *Registry) Keys() []string {
	return r.keys
}

var (
	bracketCitePattern = regexp.MustCompile(`\[([@#][^\[\]]+)\]`)
	bareCitePattern    = regexp.MustCompile(`(^|[\s(])@([A-Za-z0-9_][A-Za-z0-9_:.#$%&+?<>~/-]*[A-Za-z0-9_])`)
	citeKeyPattern     = regexp.MustCompile(`^[@#][!?]?([A-Za-z0-9_][A-Za-z0-9_:.#$%&+?<>~/-]*)$`)
)

// Preprocess replaces recognized citation syntax with stable placeholders
// and records every key. Fenced code regions and inline code spans are left
// untouched. Returns the input unchanged when no citation was found.
func (r *Registry) Preprocess(text string, syntax Syntax) string {
	if syntax == 0 || !strings.ContainsAny(text, "@#") {
		return text
	}

	lines := strings.Split(text, "\n")
	changed := false
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.ContainsAny(line, "@#") {
			continue
		}
		out := r.preprocessLine(line, syntax)
		if out != line {
			lines[i] = out
			changed = true
		}
	}
	if !changed {
		return text
	}
	return strings.Join(lines, "\n")
}

func (r *Registry) preprocessLine(line string, syntax Syntax) string {
	line = protectInlineCode(line, func(segment string) string {
		segment = bracketCitePattern.ReplaceAllStringFunc(segment, func(m string) string {
			body := m[1 : len(m)-1]
			return r.replaceBracketCite(m, body, syntax)
		})
		if syntax&SyntaxPandoc != 0 {
			segment = bareCitePattern.ReplaceAllStringFunc(segment, func(m string) string {
				sub := bareCitePattern.FindStringSubmatch(m)
				key := sub[2]
				r.Add(key)
				return sub[1] + citeStart + "@" + key + citeEnd
			})
		}
		return segment
	})
	return line
}

// replaceBracketCite handles [@key], [@a; @b], [#key], [@!key], [@?key].
// Each placeholder carries the bracketed source token so an unresolved key
// can be restored in the syntax it was written in.
func (r *Registry) replaceBracketCite(original, body string, syntax Syntax) string {
	parts := strings.Split(body, ";")
	type cite struct{ key, token string }
	var cites []cite
	for _, part := range parts {
		part = strings.TrimSpace(part)
		m := citeKeyPattern.FindStringSubmatch(part)
		if m == nil {
			return original
		}
		switch {
		case strings.HasPrefix(part, "#"):
			if syntax&SyntaxMMD == 0 {
				return original
			}
		case strings.HasPrefix(part, "@!") || strings.HasPrefix(part, "@?"):
			if syntax&SyntaxMmark == 0 {
				return original
			}
		default:
			if syntax&SyntaxPandoc == 0 {
				return original
			}
		}
		cites = append(cites, cite{key: m[1], token: "[" + part + "]"})
	}
	if len(cites) == 0 {
		return original
	}
	var b strings.Builder
	for _, c := range cites {
		r.Add(c.key)
		b.WriteString(citeStart)
		b.WriteString(c.token)
		b.WriteString(citeEnd)
	}
	return b.String()
}

// protectInlineCode applies fn to the segments of a line outside `code`.
func protectInlineCode(line string, fn func(string) string) string {
	if !strings.Contains(line, "`") {
		return fn(line)
	}
	var b strings.Builder
	rest := line
	for {
		open := strings.IndexByte(rest, '`')
		if open == -1 {
			b.WriteString(fn(rest))
			break
		}
		close := strings.IndexByte(rest[open+1:], '`')
		if close == -1 {
			b.WriteString(fn(rest))
			break
		}
		b.WriteString(fn(rest[:open]))
		b.WriteString(rest[open : open+close+2])
		rest = rest[open+close+2:]
	}
	return b.String()
}

// RenderOptions control the HTML-stage citation pass.
type RenderOptions struct {
	LinkCitations        bool
	SuppressBibliography bool
	Style                Style
}

// BibliographyMarker substitutes the reference list in place when present;
// otherwise the list is appended to the document end.
const BibliographyMarker = "<!--BIBLIOGRAPHY-->"

var citePlaceholder = regexp.MustCompile(citeStart + `([^` + citeEnd + `]*)` + citeEnd)

// Render replaces citation placeholders with formatted citation HTML and
// emits the bibliography list. Unresolved keys render their original source
// text, bracketed or bare as written, and are excluded from the list.
func (r *Registry) Render(htmlText string, opts RenderOptions) string {
	if len(r.keys) == 0 {
		return strings.Replace(htmlText, BibliographyMarker, "", 1)
	}

	htmlText = citePlaceholder.ReplaceAllStringFunc(htmlText, func(m string) string {
		token := m[len(citeStart) : len(m)-len(citeEnd)]
		key := citeTokenKey(token)
		n, known := r.index[key]
		entry, resolved := r.bib.Lookup(key)
		if !known || !resolved {
			return html.EscapeString(token)
		}
		label := r.citeLabel(entry, n, opts)
		if opts.LinkCitations {
			return fmt.Sprintf(`<a class="citation" href="#cite-%s">%s</a>`, html.EscapeString(key), label)
		}
		return fmt.Sprintf(`<span class="citation">%s</span>`, label)
	})

	if opts.SuppressBibliography {
		return strings.Replace(htmlText, BibliographyMarker, "", 1)
	}
	list := r.renderBibliography()
	if list == "" {
		return strings.Replace(htmlText, BibliographyMarker, "", 1)
	}
	if strings.Contains(htmlText, BibliographyMarker) {
		return strings.Replace(htmlText, BibliographyMarker, list, 1)
	}
	return htmlText + list
}

// citeTokenKey strips the source decoration from a placeholder token,
// leaving the bare bibliography key.
func citeTokenKey(token string) string {
	t := strings.TrimPrefix(strings.TrimSuffix(token, "]"), "[")
	t = strings.TrimPrefix(t, "@")
	t = strings.TrimPrefix(t, "#")
	t = strings.TrimPrefix(t, "!")
	t = strings.TrimPrefix(t, "?")
	return t
}

// citeLabel formats the inline citation: numeric [n] by default, or
// (Family Year) when the loaded style asks for author-date.
func (r *Registry) citeLabel(e *Entry, n int, opts RenderOptions) string {
	if opts.Style.AuthorDate {
		family := familyName(e.Fields["author"])
		year := e.Fields["year"]
		label := strings.TrimSpace(family + " " + year)
		if label != "" {
			return "(" + html.EscapeString(label) + ")"
		}
	}
	return fmt.Sprintf("[%d]", n)
}

// familyName takes the family part of the first "Family, Given; ..." name.
// Names without a comma pass through whole.
func familyName(authors string) string {
	first := authors
	if i := strings.IndexByte(first, ';'); i != -1 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ','); i != -1 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}

// renderBibliography builds the reference list from resolved keys in
// first-use order.
func (r *Registry) renderBibliography() string {
	var b strings.Builder
	count := 0
	for _, key := range r.keys {
		entry, ok := r.bib.Lookup(key)
		if !ok {
			continue
		}
		if count == 0 {
			b.WriteString("<div class=\"bibliography\">\n<ol>\n")
		}
		count++
		b.WriteString(`<li id="cite-`)
		b.WriteString(html.EscapeString(key))
		b.WriteString(`">`)
		b.WriteString(formatEntry(entry))
		b.WriteString("</li>\n")
	}
	if count == 0 {
		return ""
	}
	b.WriteString("</ol>\n</div>\n")
	return b.String()
}

// formatEntry renders "Author. Title. Publisher, Year." from whichever
// fields the entry carries. This is plain reference formatting, not CSL
// style fidelity.
func formatEntry(e *Entry) string {
	var parts []string
	if v := e.Fields["author"]; v != "" {
		parts = append(parts, html.EscapeString(v))
	}
	if v := e.Fields["title"]; v != "" {
		parts = append(parts, "<em>"+html.EscapeString(v)+"</em>")
	}
	tail := ""
	if v := e.Fields["publisher"]; v != "" {
		tail = html.EscapeString(v)
	} else if v := e.Fields["journal"]; v != "" {
		tail = html.EscapeString(v)
	} else if v := e.Fields["container-title"]; v != "" {
		tail = html.EscapeString(v)
	}
	if v := e.Fields["year"]; v != "" {
		if tail != "" {
			tail += ", " + html.EscapeString(v)
		} else {
			tail = html.EscapeString(v)
		}
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	if len(parts) == 0 {
		return html.EscapeString(e.ID)
	}
	return strings.Join(parts, ". ") + "."
}
