package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
)

// SlugStyle selects the heading id slug format.
type SlugStyle int

const (
	// SlugGFM lowercases, strips diacritics, and hyphenates spaces.
	SlugGFM SlugStyle = iota
	// SlugMMD preserves dashes and diacritics and only removes spaces.
	SlugMMD
	// SlugKramdown converts spaces to dashes and strips diacritics and
	// em/en dashes.
	SlugKramdown
)

// fallbackID is used when a heading slugifies to nothing.
const fallbackID = "header"

// diacriticFold maps common accented letters to their ASCII base. This is
// normalization-lite, not full Unicode decomposition.
var diacriticFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ý': 'y', 'ÿ': 'y', 'ñ': 'n', 'ç': 'c', 'š': 's', 'ž': 'z',
	'À': 'a', 'Á': 'a', 'Â': 'a', 'Ã': 'a', 'Ä': 'a', 'Å': 'a',
	'È': 'e', 'É': 'e', 'Ê': 'e', 'Ë': 'e',
	'Ì': 'i', 'Í': 'i', 'Î': 'i', 'Ï': 'i',
	'Ò': 'o', 'Ó': 'o', 'Ô': 'o', 'Õ': 'o', 'Ö': 'o', 'Ø': 'o',
	'Ù': 'u', 'Ú': 'u', 'Û': 'u', 'Ü': 'u',
	'Ý': 'y', 'Ñ': 'n', 'Ç': 'c', 'Š': 's', 'Ž': 'z',
}

func foldDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := diacriticFold[r]; ok {
			b.WriteRune(folded)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug builds a heading id in the requested style. Empty results fall back
// to the literal id "header".
func Slug(text string, style SlugStyle) string {
	var out string
	switch style {
	case SlugMMD:
		out = slugMMD(text)
	case SlugKramdown:
		out = slugKramdown(text)
	default:
		out = slugGFM(text)
	}
	if out == "" {
		return fallbackID
	}
	return out
}

func slugGFM(text string) string {
	text = strings.ToLower(foldDiacritics(text))
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func slugMMD(text string) string {
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			// removed
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '–' || r == '—':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func slugKramdown(text string) string {
	text = strings.ToLower(foldDiacritics(text))
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('-')
		case r == '–' || r == '—':
			// stripped
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// HeaderID pairs a heading with its assigned or generated id.
type HeaderID struct {
	Text string
	ID   string
}

var stashedIDPattern = regexp.MustCompile(`id="([^"]*)"`)

// CollectHeaderIDs walks the headings in document order, taking an id
// already present in the node's attribute stash (from an IAL or a manual
// label) or generating a slug in the requested style. Generated duplicates
// get -1, -2 suffixes.
func CollectHeaderIDs(doc ast.Node, source []byte, style SlugStyle) []HeaderID {
	var ids []HeaderID
	used := map[string]int{}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		text := nodeText(n, source)
		id := ""
		if s, ok := StashedAttrString(n); ok {
			if m := stashedIDPattern.FindStringSubmatch(s); m != nil {
				id = m[1]
			}
		}
		if id == "" {
			id = Slug(text, style)
			if count, dup := used[id]; dup {
				used[id] = count + 1
				id = fmt.Sprintf("%s-%d", id, count)
			} else {
				used[id] = 1
			}
		}
		ids = append(ids, HeaderID{Text: text, ID: id})
		return ast.WalkContinue, nil
	})
	return ids
}

var headingTagPattern = regexp.MustCompile(`<h([1-6])((?:\s[^>]*)?)>`)

// InjectHeaderIDs matches h1-h6 opening tags in document order to the
// collected id list. Tags that already carry an id attribute are skipped
// but still consume their list slot. In anchor mode a self-contained anchor
// element is inserted inside the heading instead of an id attribute.
func InjectHeaderIDs(htmlText string, ids []HeaderID, anchorMode bool) string {
	if len(ids) == 0 {
		return htmlText
	}
	pos := 0
	return headingTagPattern.ReplaceAllStringFunc(htmlText, func(tag string) string {
		if pos >= len(ids) {
			return tag
		}
		id := ids[pos].ID
		pos++
		if strings.Contains(tag, ` id="`) {
			return tag
		}
		if anchorMode {
			anchor := fmt.Sprintf(`<a href="#%s" aria-hidden="true" class="anchor" id="%s"></a>`, id, id)
			return tag + anchor
		}
		return tag[:len(tag)-1] + ` id="` + id + `">`
	})
}
