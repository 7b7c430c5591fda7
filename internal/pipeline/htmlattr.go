package pipeline

import (
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/apexmark/apexmark/internal/attrs"
)

// fingerprintLen is how much literal text identifies a block node.
const fingerprintLen = 50

// RemoveSentinel in an attribute string deletes the whole matching element
// from the rendered HTML.
const RemoveSentinel = "data-remove"

// attrNode is one tree node awaiting attribute injection, identified by its
// expected tag, a per-type position counter, and a content fingerprint.
type attrNode struct {
	tag         string
	counterKey  string
	index       int
	attrStr     string
	fingerprint string
	hasFP       bool
	consumed    bool
}

// counterKeyFor maps a tag to its position counter. Links and images share
// the paragraph counter since they are inline.
func counterKeyFor(tag string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "h"
	case "ol", "ul":
		return "list"
	case "li":
		return "item"
	case "a", "img":
		return "p"
	}
	return tag
}

// nodeTag maps an AST node to the HTML tag the renderer emits for it.
func nodeTag(n ast.Node) string {
	switch t := n.(type) {
	case *ast.Heading:
		return "h" + string(rune('0'+t.Level))
	case *ast.Paragraph:
		return "p"
	case *ast.Blockquote:
		return "blockquote"
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		return "pre"
	case *ast.List:
		if t.IsOrdered() {
			return "ol"
		}
		return "ul"
	case *ast.ListItem:
		return "li"
	case *ast.Link:
		return "a"
	case *ast.Image:
		return "img"
	}
	if n.Kind().String() == "Table" {
		return "table"
	}
	return ""
}

// CollectAttrNodes walks the tree in document order, deriving per-type
// position counters for every countable node and recording the ones whose
// stash holds a serialized attribute string. Block nodes fingerprint on
// their leading literal text; links and images fingerprint on the URL.
func CollectAttrNodes(doc ast.Node, source []byte) []*attrNode {
	var nodes []*attrNode
	counters := map[string]int{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tag := nodeTag(n)
		if tag == "" {
			return ast.WalkContinue, nil
		}
		key := counterKeyFor(tag)
		index := counters[key]
		counters[key]++

		attrStr, ok := StashedAttrString(n)
		if !ok {
			return ast.WalkContinue, nil
		}
		// The stash must not reach the renderer: Goldmark renders an
		// attributed blockquote without the newline after its opening tag,
		// shifting the output shape of stashed nodes.
		n.RemoveAttributes()
		node := &attrNode{tag: tag, counterKey: key, index: index, attrStr: attrStr}
		switch t := n.(type) {
		case *ast.Link:
			node.fingerprint = string(t.Destination)
			node.hasFP = node.fingerprint != ""
		case *ast.Image:
			node.fingerprint = string(t.Destination)
			node.hasFP = node.fingerprint != ""
		default:
			fp := normalizeFingerprint(nodeText(n, source))
			node.fingerprint = fp
			node.hasFP = fp != ""
		}
		nodes = append(nodes, node)
		return ast.WalkContinue, nil
	})
	return nodes
}

var (
	openTagPattern = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9]*)((?:\s[^>]*)?)(/?)>`)
	srcAttrPattern = regexp.MustCompile(`(?:src|href)="([^"]*)"`)
	tagStripper    = regexp.MustCompile(`<[^>]*>`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// normalizeFingerprint collapses whitespace runs so the tree side and the
// rendered side of a fingerprint agree on line breaks, then truncates.
func normalizeFingerprint(s string) string {
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	if len(s) > fingerprintLen {
		s = s[:fingerprintLen]
	}
	return s
}

// qualifying tags for the injection walk.
var injectableTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "table": true, "blockquote": true, "ol": true, "ul": true,
	"li": true, "pre": true, "a": true, "img": true,
}

// InjectAttributes re-walks the rendered HTML, re-deriving the same per-type
// counters from the tag stream and injecting each matched node's attribute
// string: after the tag name for block tags, before the closing bracket for
// inline tags. Fingerprint matches win; nodes without a fingerprint fall
// back to position. Attribute strings carrying the remove sentinel delete
// the whole element; caption and cell-span attributes are left for the
// dedicated table pass.
func InjectAttributes(htmlText string, nodes []*attrNode) string {
	if len(nodes) == 0 {
		return htmlText
	}

	var b strings.Builder
	b.Grow(len(htmlText) + 64)
	counters := map[string]int{}
	i := 0
	for i < len(htmlText) {
		lt := strings.IndexByte(htmlText[i:], '<')
		if lt == -1 {
			b.WriteString(htmlText[i:])
			break
		}
		lt += i
		b.WriteString(htmlText[i:lt])

		m := openTagPattern.FindStringSubmatch(htmlText[lt:])
		if m == nil || !injectableTags[strings.ToLower(m[1])] {
			// Closing tag, comment, or an uncounted element.
			gt := strings.IndexByte(htmlText[lt:], '>')
			if gt == -1 {
				b.WriteString(htmlText[lt:])
				break
			}
			b.WriteString(htmlText[lt : lt+gt+1])
			i = lt + gt + 1
			continue
		}

		tag := strings.ToLower(m[1])
		fullTag := m[0]
		key := counterKeyFor(tag)
		index := counters[key]
		counters[key]++

		node := matchNode(nodes, tag, index, tagFingerprint(htmlText, lt, tag, fullTag))
		if node == nil {
			b.WriteString(fullTag)
			i = lt + len(fullTag)
			continue
		}
		node.consumed = true

		switch {
		case strings.Contains(node.attrStr, RemoveSentinel):
			end := elementEnd(htmlText, lt, tag, fullTag)
			i = end
		case strings.Contains(node.attrStr, "data-caption"),
			strings.Contains(node.attrStr, "colspan="),
			strings.Contains(node.attrStr, "rowspan="):
			b.WriteString(fullTag)
			i = lt + len(fullTag)
		default:
			b.WriteString(injectIntoTag(fullTag, tag, node.attrStr))
			i = lt + len(fullTag)
		}
	}
	return b.String()
}

// matchNode finds the attribute node for a tag occurrence: fingerprint match
// first, then a positional match among nodes that carry no fingerprint.
func matchNode(nodes []*attrNode, tag string, index int, fingerprint string) *attrNode {
	for _, n := range nodes {
		if n.consumed || n.tag != tag || !n.hasFP {
			continue
		}
		if n.fingerprint == fingerprint {
			return n
		}
	}
	for _, n := range nodes {
		if n.consumed || n.tag != tag || n.hasFP {
			continue
		}
		if n.index == index {
			return n
		}
	}
	return nil
}

// tagFingerprint derives the same fingerprint the collection pass computed:
// the URL for inline tags, the leading stripped text for block tags.
func tagFingerprint(htmlText string, tagStart int, tag, fullTag string) string {
	if tag == "a" || tag == "img" {
		if m := srcAttrPattern.FindStringSubmatch(fullTag); m != nil {
			return html.UnescapeString(m[1])
		}
		return ""
	}
	end := elementEnd(htmlText, tagStart, tag, fullTag)
	inner := htmlText[tagStart+len(fullTag) : max(tagStart+len(fullTag), end-len(tag)-3)]
	text := html.UnescapeString(tagStripper.ReplaceAllString(inner, ""))
	return normalizeFingerprint(text)
}

// elementEnd returns the byte offset just past the element's closing tag,
// tracking nested same-name tags by depth.
func elementEnd(htmlText string, tagStart int, tag, fullTag string) int {
	if strings.HasSuffix(fullTag, "/>") || tag == "img" {
		return tagStart + len(fullTag)
	}
	openTag := "<" + tag
	closeTag := "</" + tag + ">"
	depth := 1
	i := tagStart + len(fullTag)
	for i < len(htmlText) {
		next := strings.Index(htmlText[i:], "<")
		if next == -1 {
			return len(htmlText)
		}
		i += next
		if strings.HasPrefix(htmlText[i:], closeTag) {
			depth--
			if depth == 0 {
				return i + len(closeTag)
			}
			i += len(closeTag)
			continue
		}
		if strings.HasPrefix(htmlText[i:], openTag) {
			after := i + len(openTag)
			if after < len(htmlText) && (htmlText[after] == ' ' || htmlText[after] == '>' || htmlText[after] == '/') {
				depth++
			}
		}
		i++
	}
	return len(htmlText)
}

// injectIntoTag splices the attribute string into an opening tag: right
// after the tag name for block tags, right before the closing bracket for
// self-closing and inline tags.
func injectIntoTag(fullTag, tag, attrStr string) string {
	if tag == "img" || tag == "a" {
		if strings.HasSuffix(fullTag, "/>") {
			return strings.TrimSuffix(fullTag, "/>") + " " + attrStr + " />"
		}
		return strings.TrimSuffix(fullTag, ">") + " " + attrStr + ">"
	}
	nameEnd := 1 + len(tag)
	return fullTag[:nameEnd] + " " + attrStr + fullTag[nameEnd:]
}

// imgTagPattern finds image tags for the dedicated image-attribute pass.
var imgTagPattern = regexp.MustCompile(`<img\s[^>]*>`)

// InjectImageAttrs applies the attributes extracted during image
// preprocessing, matching rendered images by document-order index first and
// reusable URL entries second.
func InjectImageAttrs(htmlText string, list *attrs.ImageAttrList) string {
	if list.Len() == 0 || !strings.Contains(htmlText, "<img") {
		return htmlText
	}
	index := -1
	return imgTagPattern.ReplaceAllStringFunc(htmlText, func(tag string) string {
		index++
		src := ""
		if m := srcAttrPattern.FindStringSubmatch(tag); m != nil {
			src = html.UnescapeString(m[1])
		}
		a, ok := list.Match(index, src)
		if !ok || a.Empty() {
			return tag
		}
		return injectIntoTag(tag, "img", a.String())
	})
}
