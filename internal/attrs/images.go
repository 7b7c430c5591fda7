package attrs

import (
	"regexp"
	"strings"
)

// ImageAttrEntry binds attributes either to a document-order image index
// (inline syntax, single use) or to a URL (reference definitions, index -1,
// applied to every image sharing the URL). The distinction matters because
// inline uses of the same URL may carry different attributes while a
// reference definition intentionally applies to every use.
type ImageAttrEntry struct {
	Index    int
	URL      string
	Attrs    *Attributes
	consumed bool
}

// ImageAttrList accumulates entries from one document.
type ImageAttrList struct {
	entries []*ImageAttrEntry
}

// Match finds the attributes for the nth rendered image (zero-based) with
// the given source URL. Index entries are consumed on first match; URL
// entries are reusable.
func (l *ImageAttrList) Match(index int, url string) (*Attributes, bool) {
	if l == nil {
		return nil, false
	}
	for _, e := range l.entries {
		if e.Index == index && !e.consumed {
			e.consumed = true
			return e.Attrs, true
		}
	}
	for _, e := range l.entries {
		if e.Index == -1 && e.URL == url {
			return e.Attrs, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (l *ImageAttrList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// keyEqPattern detects the start of an attribute region after a URL.
var keyEqPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*=`)

// refDefPattern matches a reference-style definition line: [ref]: url rest
var refDefPattern = regexp.MustCompile(`^(\s*\[[^\]]+\]:\s*)(\S+)(.*)$`)

// ExtractImageAttrs scans inline images and reference definitions, strips
// attribute text from the source, percent-encodes URLs in place, and
// collects the attribute entries. When fullExtract is false only the URL
// encoding is applied (the Kramdown gating). Returns the input unchanged
// when nothing matched.
func ExtractImageAttrs(text string, fullExtract bool) (string, *ImageAttrList) {
	list := &ImageAttrList{}
	if !strings.Contains(text, "![") && !strings.Contains(text, "]:") {
		return text, list
	}

	out, changed := rewriteInlineImages(text, fullExtract, list)
	if fullExtract {
		var refChanged bool
		out, refChanged = rewriteRefDefs(out, list)
		changed = changed || refChanged
	}
	if !changed {
		return text, list
	}
	return out, list
}

// rewriteInlineImages walks ![alt](url ...) spans in document order.
func rewriteInlineImages(text string, fullExtract bool, list *ImageAttrList) (string, bool) {
	var b strings.Builder
	b.Grow(len(text))
	changed := false
	imageIndex := 0
	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "![")
		if start == -1 {
			b.WriteString(text[i:])
			break
		}
		start += i
		altEnd := strings.Index(text[start:], "](")
		if altEnd == -1 {
			b.WriteString(text[i:])
			break
		}
		altEnd += start
		spanStart := altEnd + 2
		spanEnd := findCloseParen(text, spanStart)
		if spanEnd == -1 {
			b.WriteString(text[i : spanStart])
			i = spanStart
			continue
		}

		span := text[spanStart:spanEnd]
		url, title, attrText := splitImageSpan(span)

		b.WriteString(text[i : spanStart])
		b.WriteString(EncodeURL(url))
		if title != "" {
			b.WriteByte(' ')
			b.WriteString(title)
		}
		if attrText != "" && fullExtract {
			a := ParseIAL(attrText)
			if !a.Empty() {
				list.entries = append(list.entries, &ImageAttrEntry{Index: imageIndex, URL: EncodeURL(url), Attrs: a})
			}
			changed = true
		} else if attrText != "" {
			// Attribute extraction disabled: keep the text verbatim.
			b.WriteByte(' ')
			b.WriteString(attrText)
		}
		if EncodeURL(url) != url {
			changed = true
		}
		b.WriteByte(')')
		i = spanEnd + 1
		imageIndex++
	}
	return b.String(), changed
}

// findCloseParen scans for the closing ')' tracking nested parentheses.
func findCloseParen(text string, i int) int {
	depth := 1
	for ; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			return -1
		}
	}
	return -1
}

// splitImageSpan separates "url" from an optional quoted title and trailing
// attributes. Attributes are detected by scanning forward for a space
// followed by a key= pattern or a quote character, so a URL containing
// unencoded spaces is not misread as having attributes.
func splitImageSpan(span string) (url, title, attrText string) {
	rest := span
	cut := len(span)
	for i := 0; i < len(span)-1; i++ {
		if span[i] != ' ' {
			continue
		}
		next := span[i+1:]
		if keyEqPattern.MatchString(next) || next[0] == '"' || next[0] == '\'' {
			cut = i
			break
		}
	}
	url = strings.TrimSpace(span[:cut])
	rest = strings.TrimSpace(span[cut:])
	if rest == "" {
		return url, "", ""
	}
	// A leading quoted section is the title; the remainder is attributes.
	if rest[0] == '"' || rest[0] == '\'' {
		quote := rest[0]
		if end := strings.IndexByte(rest[1:], quote); end != -1 {
			title = rest[:end+2]
			attrText = strings.TrimSpace(rest[end+2:])
			return url, title, attrText
		}
	}
	return url, "", rest
}

// rewriteRefDefs extracts attributes from reference-style definitions,
// rewriting the line to "[ref]: url" and keying the entry by URL.
func rewriteRefDefs(text string, list *ImageAttrList) (string, bool) {
	if !strings.Contains(text, "]:") {
		return text, false
	}
	lines := strings.Split(text, "\n")
	changed := false
	for i, line := range lines {
		m := refDefPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rest := strings.TrimSpace(m[3])
		if rest == "" {
			continue
		}
		// Skip a quoted title before the attribute region.
		attrText := rest
		var title string
		if rest[0] == '"' || rest[0] == '\'' {
			quote := rest[0]
			end := strings.IndexByte(rest[1:], quote)
			if end == -1 {
				continue
			}
			title = rest[:end+2]
			attrText = strings.TrimSpace(rest[end+2:])
		}
		if attrText == "" || !keyEqPattern.MatchString(attrText) {
			continue
		}
		a := ParseIAL(attrText)
		if a.Empty() {
			continue
		}
		url := EncodeURL(m[2])
		list.entries = append(list.entries, &ImageAttrEntry{Index: -1, URL: url, Attrs: a})
		rebuilt := m[1] + url
		if title != "" {
			rebuilt += " " + title
		}
		lines[i] = rebuilt
		changed = true
	}
	if !changed {
		return text, false
	}
	return strings.Join(lines, "\n"), true
}

// EncodeURL percent-encodes characters that are unsafe inside a Markdown
// destination while preserving existing %XX escapes and URL structure.
func EncodeURL(url string) string {
	var b strings.Builder
	b.Grow(len(url))
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c == '%' && i+2 < len(url) && isHex(url[i+1]) && isHex(url[i+2]):
			b.WriteByte(c)
		case c == ' ':
			b.WriteString("%20")
		case c == '"':
			b.WriteString("%22")
		case c == '<':
			b.WriteString("%3C")
		case c == '>':
			b.WriteString("%3E")
		case c > 0x7F:
			b.WriteString(percentEscape(c))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

const hexDigits = "0123456789ABCDEF"

func percentEscape(c byte) string {
	return string([]byte{'%', hexDigits[c>>4], hexDigits[c&0xF]})
}
