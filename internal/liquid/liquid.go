// Package liquid shields Liquid template tags from the rest of the pipeline.
//
// Text inside {% ... %} regions must survive every preprocessing pass and the
// Markdown parser byte-for-byte, so Protect swaps each region for an indexed
// placeholder built from Unicode Private Use Area characters. Placeholders
// pass through Goldmark unchanged and are swapped back by Restore after
// rendering.
package liquid

import (
	"strconv"
	"strings"
)

// Placeholder delimiters use Private Use Area characters that cannot occur
// in well-formed input and render to nothing if a Restore is ever missed.
const (
	tagStart = ""
	tagEnd   = ""
)

// Protector holds the spans removed from one document. State is per
// conversion; a Protector must not be reused across documents.
type Protector struct {
	saved []string
}

// NewProtector returns an empty Protector.
func NewProtector() *Protector {
	return &Protector{}
}

// Protect replaces every {% ... %} region outside of code with an indexed
// placeholder. Returns the input string unchanged (same backing data, no
// copy) when no tag is present.
func (p *Protector) Protect(text string) string {
	if !strings.Contains(text, "{%") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	inFence := false
	changed := false
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if inFence || !strings.Contains(line, "{%") {
			b.WriteString(line)
		} else {
			out, did := p.protectLine(line)
			b.WriteString(out)
			changed = changed || did
		}
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}

	if !changed {
		return text
	}
	return b.String()
}

// protectLine replaces tags on a single line, skipping inline code spans.
func (p *Protector) protectLine(line string) (string, bool) {
	var b strings.Builder
	changed := false
	i := 0
	for i < len(line) {
		c := line[i]
		if c == '`' {
			// Skip the inline code span wholesale.
			end := strings.IndexByte(line[i+1:], '`')
			if end == -1 {
				b.WriteString(line[i:])
				break
			}
			b.WriteString(line[i : i+end+2])
			i += end + 2
			continue
		}
		if c == '{' && i+1 < len(line) && line[i+1] == '%' {
			close := strings.Index(line[i+2:], "%}")
			if close == -1 {
				b.WriteString(line[i:])
				break
			}
			span := line[i : i+2+close+2]
			b.WriteString(tagStart)
			b.WriteString(strconv.Itoa(len(p.saved)))
			b.WriteString(tagEnd)
			p.saved = append(p.saved, span)
			changed = true
			i += len(span)
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), changed
}

// Restore swaps placeholders back for the original tag text. Placeholders
// whose index is out of range are left untouched rather than dropped.
func (p *Protector) Restore(text string) string {
	if len(p.saved) == 0 || !strings.Contains(text, tagStart) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.Index(text, tagStart)
		if start == -1 {
			b.WriteString(text)
			break
		}
		end := strings.Index(text[start:], tagEnd)
		if end == -1 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		idxText := text[start+len(tagStart) : start+end]
		idx, err := strconv.Atoi(idxText)
		if err != nil || idx < 0 || idx >= len(p.saved) {
			b.WriteString(text[start : start+end+len(tagEnd)])
		} else {
			b.WriteString(p.saved[idx])
		}
		text = text[start+end+len(tagEnd):]
	}
	return b.String()
}

// Count returns the number of protected spans, used by pipeline diagnostics.
func (p *Protector) Count() int {
	return len(p.saved)
}
