package pipeline

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/apexmark/apexmark/internal/attrs"
)

// attrStashKey is the node attribute slot carrying the serialized attribute
// string until the HTML injection pass consumes it. The key has no "data-"
// prefix so Goldmark's renderer never emits it on its own.
const attrStashKey = "apexmark-attrs"

// StashAttrString appends a serialized attribute string to a node's stash.
func StashAttrString(n ast.Node, s string) {
	if s == "" {
		return
	}
	if prev, ok := n.AttributeString(attrStashKey); ok {
		if pb, ok := prev.([]byte); ok && len(pb) > 0 {
			s = string(pb) + " " + s
		}
	}
	n.SetAttributeString(attrStashKey, []byte(s))
}

// StashedAttrString reads a node's stashed attribute string.
func StashedAttrString(n ast.Node) (string, bool) {
	v, ok := n.AttributeString(attrStashKey)
	if !ok {
		return "", false
	}
	b, ok := v.([]byte)
	if !ok || len(b) == 0 {
		return "", false
	}
	return string(b), true
}

// nodeText concatenates the literal text under a node.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// trailingTextRun collects the maximal run of text nodes ending a node's
// child list, front to back, plus their concatenated text. The inline parser
// and the typographer split text around symbols, so trailing-pattern matching
// has to span the run, not just the last node.
func trailingTextRun(n ast.Node, source []byte) ([]*ast.Text, string) {
	var run []*ast.Text
	for c := n.LastChild(); c != nil; c = c.PreviousSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			break
		}
		run = append(run, t)
	}
	for i, j := 0, len(run)-1; i < j; i, j = i+1, j-1 {
		run[i], run[j] = run[j], run[i]
	}
	var b strings.Builder
	for _, t := range run {
		b.Write(t.Segment.Value(source))
	}
	return run, b.String()
}

var trailingIALPattern = regexp.MustCompile(`\{:([^{}]*)\}\s*$`)

// trailingIAL finds a {: ...} suffix spanning to the end of the text and
// returns its content plus the byte offset where it starts.
func trailingIAL(text string) (content string, start int, ok bool) {
	loc := trailingIALPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", 0, false
	}
	return strings.TrimSpace(text[loc[2]:loc[3]]), loc[0], true
}

// resolveIAL parses IAL content, resolving a bare ALD reference against the
// definition list. Unresolved references degrade to no attributes.
func resolveIAL(content string, alds *attrs.ALDList) *attrs.Attributes {
	if name, isRef := attrs.IsALDReference(content); isRef {
		if a, ok := alds.Lookup(name); ok {
			return a
		}
		return nil
	}
	return attrs.ParseIAL(content)
}

// isBlockIALTarget reports whether a node type accepts a following-paragraph
// IAL.
func isBlockIALTarget(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindHeading, ast.KindParagraph, ast.KindBlockquote,
		ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindList, ast.KindListItem:
		return true
	}
	return n.Kind().String() == "Table"
}

// isSpanIALTarget reports whether an inline node accepts a trailing span IAL.
func isSpanIALTarget(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindLink, ast.KindImage, ast.KindEmphasis, ast.KindCodeSpan:
		return true
	}
	return false
}

// isPureIALParagraph reports whether a paragraph holds nothing but an IAL,
// returning its content.
func isPureIALParagraph(n ast.Node, source []byte) (string, bool) {
	if n == nil || n.Kind() != ast.KindParagraph {
		return "", false
	}
	return attrs.IsPureIALLine(strings.TrimSpace(nodeText(n, source)))
}

// ApplyIALs walks the tree attaching inline attribute lists to their target
// nodes. Heading trailing IALs bind to the heading, span IALs to the
// immediately preceding inline element, and IAL-only paragraphs to the
// preceding block. Node removal is deferred to a second pass so the live
// walk never unlinks its own position.
func ApplyIALs(doc ast.Node, source []byte, alds *attrs.ALDList) {
	var toRemove []ast.Node
	scheduled := map[ast.Node]bool{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || scheduled[n] {
			return ast.WalkContinue, nil
		}

		// Block-level: an IAL-only next-sibling paragraph applies here.
		if isBlockIALTarget(n) {
			if content, ok := isPureIALParagraph(n.NextSibling(), source); ok {
				if a := resolveIAL(content, alds); !a.Empty() {
					StashAttrString(n, a.String())
				}
				toRemove = append(toRemove, n.NextSibling())
				scheduled[n.NextSibling()] = true
			}
		}

		switch n.Kind() {
		case ast.KindHeading:
			applyHeadingIAL(n, source, alds)
		case ast.KindParagraph:
			applySpanIAL(n, source, alds)
		}
		return ast.WalkContinue, nil
	})

	for _, n := range toRemove {
		if p := n.Parent(); p != nil {
			p.RemoveChild(p, n)
		}
	}
}

// applyHeadingIAL strips a trailing {: ...} from the heading's own text.
func applyHeadingIAL(n ast.Node, source []byte, alds *attrs.ALDList) {
	run, runText := trailingTextRun(n, source)
	if len(run) == 0 {
		return
	}
	content, start, ok := trailingIAL(runText)
	if !ok {
		return
	}
	if a := resolveIAL(content, alds); !a.Empty() {
		StashAttrString(n, a.String())
	}
	trimTextRun(n, run, source, start)
}

// applySpanIAL attaches a paragraph-final IAL to the preceding inline
// element when one qualifies.
func applySpanIAL(n ast.Node, source []byte, alds *attrs.ALDList) {
	run, runText := trailingTextRun(n, source)
	if len(run) == 0 {
		return
	}
	content, start, ok := trailingIAL(runText)
	if !ok {
		return
	}
	var target ast.Node
	if start == 0 {
		target = run[0].PreviousSibling()
	}
	if target == nil || !isSpanIALTarget(target) {
		// Not a span IAL. A whole-paragraph IAL is handled by the
		// preceding block; a mid-text one stays literal.
		return
	}
	if a := resolveIAL(content, alds); !a.Empty() {
		StashAttrString(target, a.String())
	}
	trimTextRun(n, run, source, start)
}

// trimTextNode shortens a text node's segment to drop a trailing IAL,
// removing the node outright when nothing remains.
func trimTextNode(parent ast.Node, txt *ast.Text, segText string, ialStart int) {
	end := ialStart
	for end > 0 && (segText[end-1] == ' ' || segText[end-1] == '\t') {
		end--
	}
	if end == 0 {
		parent.RemoveChild(parent, txt)
		return
	}
	txt.Segment = txt.Segment.WithStop(txt.Segment.Start + end)
}

var wikiLinkPattern = regexp.MustCompile(`\[\[([^\[\]|]+)(\|([^\[\]]+))?\]\]`)

// ApplyWikiLinks rewrites [[page]] and [[page|label]] spans into links. The
// inline parser splits text around failed link brackets, so the pattern is
// matched over runs of consecutive text siblings, not single nodes. The
// destination is the encoded page name plus ".html".
func ApplyWikiLinks(doc ast.Node, source []byte) {
	var parents []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == ast.KindLink || n.Kind() == ast.KindImage || n.Kind() == ast.KindCodeSpan {
			return ast.WalkSkipChildren, nil
		}
		if t, ok := n.(*ast.Text); ok {
			p := t.Parent()
			if p != nil && (len(parents) == 0 || parents[len(parents)-1] != p) {
				parents = append(parents, p)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, p := range parents {
		rewriteWikiRuns(p, source)
	}
}

// rewriteWikiRuns replaces each maximal run of text children containing a
// wiki pattern with string and link nodes.
func rewriteWikiRuns(parent ast.Node, source []byte) {
	child := parent.FirstChild()
	for child != nil {
		txt, ok := child.(*ast.Text)
		if !ok {
			child = child.NextSibling()
			continue
		}
		// Collect the run of consecutive text siblings.
		var run []*ast.Text
		var b strings.Builder
		for txt != nil {
			run = append(run, txt)
			b.Write(txt.Segment.Value(source))
			if txt.SoftLineBreak() || txt.HardLineBreak() {
				b.WriteByte('\n')
			}
			next, ok := txt.NextSibling().(*ast.Text)
			if !ok {
				break
			}
			txt = next
		}
		after := run[len(run)-1].NextSibling()

		runText := b.String()
		locs := wikiLinkPattern.FindAllStringSubmatchIndex(runText, -1)
		if locs == nil {
			child = after
			continue
		}

		pos := 0
		anchor := run[0]
		for _, loc := range locs {
			if loc[0] > pos {
				parent.InsertBefore(parent, anchor, ast.NewString([]byte(runText[pos:loc[0]])))
			}
			page := runText[loc[2]:loc[3]]
			label := page
			if loc[6] != -1 {
				label = runText[loc[6]:loc[7]]
			}
			link := ast.NewLink()
			link.Destination = []byte(attrs.EncodeURL(strings.TrimSpace(page)) + ".html")
			link.AppendChild(link, ast.NewString([]byte(label)))
			parent.InsertBefore(parent, anchor, link)
			pos = loc[1]
		}
		if pos < len(runText) {
			parent.InsertBefore(parent, anchor, ast.NewString([]byte(runText[pos:])))
		}
		for _, r := range run {
			parent.RemoveChild(parent, r)
		}
		child = after
	}
}

var calloutPattern = regexp.MustCompile(`^\[!([A-Za-z]+)\][ \t]*`)

// ApplyCallouts marks blockquotes whose first text starts with a [!TYPE]
// token, stashing a callout class and stripping the token.
func ApplyCallouts(doc ast.Node, source []byte) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindBlockquote {
			return ast.WalkContinue, nil
		}
		para := n.FirstChild()
		if para == nil || para.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		m := calloutPattern.FindStringSubmatch(nodeText(para, source))
		if m == nil {
			return ast.WalkContinue, nil
		}
		kind := strings.ToLower(m[1])
		StashAttrString(n, `class="callout callout-`+kind+`"`)
		stripLeadingBytes(para, len(m[0]))
		return ast.WalkContinue, nil
	})
}

// MergeMixedLists folds an adjacent sibling list of a different marker type
// into the preceding list, so "1. a / * b / * c" renders one ordered list.
func MergeMixedLists(doc ast.Node) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindList {
			return ast.WalkContinue, nil
		}
		list := n.(*ast.List)
		for {
			next, ok := n.NextSibling().(*ast.List)
			if !ok {
				break
			}
			for child := next.FirstChild(); child != nil; {
				move := child
				child = child.NextSibling()
				list.AppendChild(list, move)
			}
			parent := n.Parent()
			parent.RemoveChild(parent, next)
		}
		return ast.WalkContinue, nil
	})
}

// stripLeadingBytes removes the first n literal bytes from a node's leading
// text children. The marker token may span several text nodes because the
// inline parser splits around brackets.
func stripLeadingBytes(n ast.Node, count int) {
	for count > 0 {
		child := n.FirstChild()
		txt, ok := child.(*ast.Text)
		if !ok {
			return
		}
		segLen := txt.Segment.Len()
		if segLen <= count {
			n.RemoveChild(n, txt)
			count -= segLen
			continue
		}
		txt.Segment = txt.Segment.WithStart(txt.Segment.Start + count)
		return
	}
}

var manualIDPattern = regexp.MustCompile(`[ \t]\[([A-Za-z][A-Za-z0-9_-]*)\]\s*$`)

// ApplyManualHeaderIDs strips a trailing [label] from heading text and
// stashes it as the heading id. The brackets split the label across several
// text nodes, so the pattern is matched over the heading's trailing text
// run. An id from an IAL wins, so this runs after ApplyIALs and skips
// headings that already stashed one.
func ApplyManualHeaderIDs(doc ast.Node, source []byte) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if s, ok := StashedAttrString(n); ok && strings.Contains(s, `id="`) {
			return ast.WalkContinue, nil
		}
		run, runText := trailingTextRun(n, source)
		if len(run) == 0 {
			return ast.WalkContinue, nil
		}
		loc := manualIDPattern.FindStringSubmatchIndex(runText)
		if loc == nil {
			return ast.WalkContinue, nil
		}
		StashAttrString(n, `id="`+runText[loc[2]:loc[3]]+`"`)
		trimTextRun(n, run, source, loc[0])
		return ast.WalkContinue, nil
	})
}

// trimTextRun drops everything from byte offset cut (measured over the
// run's concatenated text) to the end of the run, plus any whitespace just
// before the cut.
func trimTextRun(parent ast.Node, run []*ast.Text, source []byte, cut int) {
	offset := 0
	for _, t := range run {
		seg := string(t.Segment.Value(source))
		if cut <= offset {
			parent.RemoveChild(parent, t)
		} else if cut < offset+len(seg) {
			trimTextNode(parent, t, seg, cut-offset)
		}
		offset += len(seg)
	}
}
