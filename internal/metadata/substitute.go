package metadata

import "strings"

// ReplaceVariables substitutes [%key] and [%key:transforms] tokens against
// the metadata list. Bracket depth inside a token is tracked so transform
// options containing brackets (regex classes, quantifiers) do not terminate
// the token early. Unknown keys leave the original token verbatim: documents
// with unrelated bracket syntax must round-trip unmodified.
func ReplaceVariables(text string, list *List, transformsEnabled bool) string {
	if !strings.Contains(text, "[%") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for {
		start := strings.Index(text, "[%")
		if start == -1 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])

		// Scan for the matching close bracket, depth starts at 1.
		depth := 1
		end := -1
		for i := start + 2; i < len(text); i++ {
			switch text[i] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end != -1 {
				break
			}
		}
		if end == -1 {
			// Unterminated token: emit the rest verbatim.
			b.WriteString(text[start:])
			break
		}

		token := text[start : end+1]
		body := text[start+2 : end]
		b.WriteString(substituteToken(token, body, list, transformsEnabled))
		text = text[end+1:]
	}
	return b.String()
}

// substituteToken resolves one [%...] token body. The original token text is
// returned for unknown keys and for transform chains that fail.
func substituteToken(token, body string, list *List, transformsEnabled bool) string {
	key := body
	chain := ""
	if transformsEnabled {
		if colon := strings.IndexByte(body, ':'); colon != -1 {
			key = body[:colon]
			chain = body[colon+1:]
		}
	}
	key = strings.TrimSpace(key)

	val, ok := list.Get(key)
	if !ok {
		return token
	}
	if chain == "" {
		return val
	}
	return ApplyTransformChain(val, ParseTransformChain(chain))
}
