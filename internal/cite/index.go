package cite

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Index placeholders, disjoint from the citation delimiters.
const (
	idxStart = ""
	idxEnd   = ""
)

// IndexSyntax selects which index marker syntaxes are recognized. The two
// forms are gated by independent feature flags.
type IndexSyntax uint8

const (
	IndexParen   IndexSyntax = 1 << iota // (!term)
	IndexComment                         // <!--INDEX term-->
)

// IndexRegistry accumulates index terms and their anchor ids during one
// conversion.
type IndexRegistry struct {
	terms   []string            // distinct terms in first-use order
	anchors map[string][]string // term -> anchor ids
	counter int
}

// NewIndexRegistry creates a fresh per-conversion index registry.
func NewIndexRegistry() *IndexRegistry {
	return &IndexRegistry{anchors: make(map[string][]string)}
}

// Add records one occurrence of a term and returns its anchor id.
func (r *IndexRegistry) Add(term string) string {
	if _, ok := r.anchors[term]; !ok {
		r.terms = append(r.terms, term)
	}
	r.counter++
	anchor := fmt.Sprintf("idx-%d", r.counter)
	r.anchors[term] = append(r.anchors[term], anchor)
	return anchor
}

// Terms returns the distinct terms in first-use order.
func (r *IndexRegistry) Terms() []string {
	return r.terms
}

var (
	parenIndexPattern   = regexp.MustCompile(`\(!([^()\n]+)\)`)
	commentIndexPattern = regexp.MustCompile(`<!--INDEX\s+([^>]+?)\s*-->`)
)

// Preprocess replaces index markers with placeholders carrying the assigned
// anchor id. Returns the input unchanged when no marker was found.
func (r *IndexRegistry) Preprocess(text string, syntax IndexSyntax) string {
	if syntax == 0 {
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
		if inFence {
			continue
		}
		out := line
		if syntax&IndexParen != 0 && strings.Contains(out, "(!") {
			out = protectInlineCode(out, func(segment string) string {
				return parenIndexPattern.ReplaceAllStringFunc(segment, func(m string) string {
					term := strings.TrimSpace(m[2 : len(m)-1])
					return idxStart + r.Add(term) + idxEnd
				})
			})
		}
		if syntax&IndexComment != 0 && strings.Contains(out, "<!--INDEX") {
			out = commentIndexPattern.ReplaceAllStringFunc(out, func(m string) string {
				term := commentIndexPattern.FindStringSubmatch(m)[1]
				return idxStart + r.Add(term) + idxEnd
			})
		}
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

// IndexMarker substitutes the index block in place when present; otherwise
// the block is appended to the document end.
const IndexMarker = "<!--MAKEINDEX-->"

var idxPlaceholder = regexp.MustCompile(idxStart + `([^` + idxEnd + `]*)` + idxEnd)

// Render replaces inline markers with invisible anchors and emits the
// grouped-by-first-letter index block.
func (r *IndexRegistry) Render(htmlText string) string {
	if len(r.terms) == 0 {
		return strings.Replace(htmlText, IndexMarker, "", 1)
	}

	htmlText = idxPlaceholder.ReplaceAllStringFunc(htmlText, func(m string) string {
		anchor := m[len(idxStart) : len(m)-len(idxEnd)]
		return `<span id="` + html.EscapeString(anchor) + `" class="index-marker"></span>`
	})

	block := r.renderIndexBlock()
	if strings.Contains(htmlText, IndexMarker) {
		return strings.Replace(htmlText, IndexMarker, block, 1)
	}
	return htmlText + block
}

// renderIndexBlock groups terms by uppercased first letter, letters and
// terms both sorted, with one link per recorded occurrence.
func (r *IndexRegistry) renderIndexBlock() string {
	groups := make(map[string][]string)
	for _, term := range r.terms {
		groups[indexLetter(term)] = append(groups[indexLetter(term)], term)
	}
	letters := make([]string, 0, len(groups))
	for letter := range groups {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	var b strings.Builder
	b.WriteString("<div class=\"index\">\n")
	for _, letter := range letters {
		terms := groups[letter]
		sort.Strings(terms)
		b.WriteString(`<h3 class="index-letter">`)
		b.WriteString(html.EscapeString(letter))
		b.WriteString("</h3>\n<ul>\n")
		for _, term := range terms {
			b.WriteString("<li>")
			b.WriteString(html.EscapeString(term))
			for i, anchor := range r.anchors[term] {
				b.WriteString(fmt.Sprintf(` <a href="#%s">%d</a>`, html.EscapeString(anchor), i+1))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}

func indexLetter(term string) string {
	for _, r := range term {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "#"
}
