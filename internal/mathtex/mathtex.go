// Package mathtex shields TeX math spans from the Markdown parser.
//
// Inline math $...$ and display math $$...$$ contain underscores, carets and
// backslashes that emphasis and escape handling would mangle, so Protect
// swaps each span for an indexed Private Use Area placeholder before parsing
// and Restore substitutes MathJax-compatible HTML after rendering: a
// <span class="math inline"> wrapping \(...\) or a <span class="math
// display"> wrapping \[...\].
package mathtex

import (
	"html"
	"strconv"
	"strings"
)

const (
	spanStart = ""
	spanEnd   = ""
)

// Protector holds the math spans removed from one document. State is per
// conversion; a Protector must not be reused across documents.
type Protector struct {
	saved []string
}

// NewProtector returns an empty Protector.
func NewProtector() *Protector {
	return &Protector{}
}

// Protect replaces math spans outside of code with indexed placeholders.
// Display math may occupy a single line or a block opened and closed by
// lines holding only $$. Returns the input unchanged when no span is found.
func (p *Protector) Protect(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	inFence := false
	inDisplay := false
	displayOpen := ""
	var display []string
	changed := false

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inDisplay && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")) {
			inFence = !inFence
		}
		switch {
		case inFence:
			b.WriteString(line)
		case inDisplay:
			if trimmed == "$$" {
				b.WriteString(p.place(displayHTML(strings.Join(display, "\n"))))
				inDisplay = false
				display = nil
				changed = true
			} else {
				display = append(display, line)
				continue
			}
		case trimmed == "$$":
			inDisplay = true
			displayOpen = line
			continue
		case strings.Contains(line, "$"):
			out, did := p.protectLine(line)
			b.WriteString(out)
			changed = changed || did
		default:
			b.WriteString(line)
		}
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	// An unclosed $$ block is not math; put the lines back verbatim.
	if inDisplay {
		b.WriteString(displayOpen)
		for _, l := range display {
			b.WriteByte('\n')
			b.WriteString(l)
		}
	}

	if !changed {
		return text
	}
	return b.String()
}

// protectLine handles same-line spans, skipping inline code.
func (p *Protector) protectLine(line string) (string, bool) {
	var b strings.Builder
	changed := false
	i := 0
	for i < len(line) {
		c := line[i]
		if c == '`' {
			end := strings.IndexByte(line[i+1:], '`')
			if end == -1 {
				b.WriteString(line[i:])
				break
			}
			b.WriteString(line[i : i+end+2])
			i += end + 2
			continue
		}
		if c == '\\' && i+1 < len(line) {
			b.WriteString(line[i : i+2])
			i += 2
			continue
		}
		if c == '$' {
			if strings.HasPrefix(line[i:], "$$") {
				close := strings.Index(line[i+2:], "$$")
				if close > 0 {
					b.WriteString(p.place(displayHTML(line[i+2 : i+2+close])))
					i += 2 + close + 2
					changed = true
					continue
				}
			} else if end, ok := inlineEnd(line, i); ok {
				b.WriteString(p.place(inlineHTML(line[i+1 : end])))
				i = end + 1
				changed = true
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), changed
}

// inlineEnd finds the closing $ of an inline span starting at open. The
// opening $ must touch a non-space character on its right, the closing $ a
// non-space on its left, and the closing $ must not be followed by a digit.
func inlineEnd(line string, open int) (int, bool) {
	if open+1 >= len(line) || line[open+1] == ' ' || line[open+1] == '\t' {
		return 0, false
	}
	for j := open + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '$':
			if line[j-1] == ' ' || line[j-1] == '\t' {
				continue
			}
			if j+1 < len(line) && line[j+1] >= '0' && line[j+1] <= '9' {
				continue
			}
			return j, true
		}
	}
	return 0, false
}

func (p *Protector) place(rendered string) string {
	idx := len(p.saved)
	p.saved = append(p.saved, rendered)
	return spanStart + strconv.Itoa(idx) + spanEnd
}

func inlineHTML(tex string) string {
	return `<span class="math inline">\(` + html.EscapeString(tex) + `\)</span>`
}

func displayHTML(tex string) string {
	return `<span class="math display">\[` + html.EscapeString(tex) + `\]</span>`
}

// Restore swaps placeholders for the rendered math HTML. Placeholders with
// an out-of-range index are left untouched.
func (p *Protector) Restore(text string) string {
	if len(p.saved) == 0 || !strings.Contains(text, spanStart) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.Index(text, spanStart)
		if start == -1 {
			b.WriteString(text)
			break
		}
		end := strings.Index(text[start:], spanEnd)
		if end == -1 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		idx, err := strconv.Atoi(text[start+len(spanStart) : start+end])
		if err != nil || idx < 0 || idx >= len(p.saved) {
			b.WriteString(text[start : start+end+len(spanEnd)])
		} else {
			b.WriteString(p.saved[idx])
		}
		text = text[start+end+len(spanEnd):]
	}
	return b.String()
}

// Count returns the number of protected spans, used by pipeline diagnostics.
func (p *Protector) Count() int {
	return len(p.saved)
}
