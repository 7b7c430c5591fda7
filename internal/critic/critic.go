// Package critic converts CriticMarkup annotations into HTML.
//
// The five markers — {++insertion++}, {--deletion--}, {~~old~>new~~},
// {==highlight==} and {>>comment<<} — are swapped for indexed Private Use
// Area placeholders before the Markdown parse (the liquid idiom) so their
// tildes and equals signs never collide with strikethrough or heading
// syntax, then restored as <ins>, <del>, <mark> and comment <span> elements
// after rendering.
package critic

import (
	"html"
	"strconv"
	"strings"
)

const (
	markStart = ""
	markEnd   = ""
)

// markers maps each opening digraph to its closing sequence.
var markers = []struct {
	open, close string
}{
	{"{++", "++}"},
	{"{--", "--}"},
	{"{~~", "~~}"},
	{"{==", "==}"},
	{"{>>", "<<}"},
}

// Protector holds the annotations removed from one document. State is per
// conversion; a Protector must not be reused across documents.
type Protector struct {
	saved []string
}

// NewProtector returns an empty Protector.
func NewProtector() *Protector {
	return &Protector{}
}

// Protect replaces every CriticMarkup annotation outside of code with an
// indexed placeholder. Returns the input unchanged when none is present.
func (p *Protector) Protect(text string) string {
	if !strings.Contains(text, "{") {
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
		if inFence || !strings.Contains(line, "{") {
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

// protectLine replaces annotations on a single line, skipping inline code.
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
		if c == '{' {
			if consumed, ok := p.protectMarker(line[i:]); ok {
				b.WriteString(markStart)
				b.WriteString(strconv.Itoa(len(p.saved) - 1))
				b.WriteString(markEnd)
				changed = true
				i += consumed
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), changed
}

// protectMarker matches one annotation at the start of rest, saves its HTML
// rendering, and reports how many bytes it consumed.
func (p *Protector) protectMarker(rest string) (int, bool) {
	for _, m := range markers {
		if !strings.HasPrefix(rest, m.open) {
			continue
		}
		end := strings.Index(rest[len(m.open):], m.close)
		if end == -1 {
			continue
		}
		body := rest[len(m.open) : len(m.open)+end]
		p.saved = append(p.saved, renderMarker(m.open, body))
		return len(m.open) + end + len(m.close), true
	}
	return 0, false
}

func renderMarker(open, body string) string {
	switch open {
	case "{++":
		return "<ins>" + html.EscapeString(body) + "</ins>"
	case "{--":
		return "<del>" + html.EscapeString(body) + "</del>"
	case "{~~":
		old, repl, found := strings.Cut(body, "~>")
		if !found {
			return "<del>" + html.EscapeString(body) + "</del>"
		}
		return "<del>" + html.EscapeString(old) + "</del><ins>" + html.EscapeString(repl) + "</ins>"
	case "{==":
		return "<mark>" + html.EscapeString(body) + "</mark>"
	default: // {>>
		return `<span class="critic comment">` + html.EscapeString(body) + "</span>"
	}
}

// Restore swaps placeholders back for the rendered annotation HTML.
// Placeholders with an out-of-range index are left untouched.
func (p *Protector) Restore(text string) string {
	if len(p.saved) == 0 || !strings.Contains(text, markStart) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.Index(text, markStart)
		if start == -1 {
			b.WriteString(text)
			break
		}
		end := strings.Index(text[start:], markEnd)
		if end == -1 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		idx, err := strconv.Atoi(text[start+len(markStart) : start+end])
		if err != nil || idx < 0 || idx >= len(p.saved) {
			b.WriteString(text[start : start+end+len(markEnd)])
		} else {
			b.WriteString(p.saved[idx])
		}
		text = text[start+end+len(markEnd):]
	}
	return b.String()
}

// Count returns the number of protected annotations.
func (p *Protector) Count() int {
	return len(p.saved)
}
