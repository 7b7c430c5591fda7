package metadata

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Transform is one stage of a [%key:t1:t2(opts)] chain.
type Transform struct {
	Name    string
	Options string
	HasOpts bool
}

// value threads either a scalar string or a materialized array between
// transform stages.
type value struct {
	scalar  string
	array   []string
	isArray bool
}

// collapse joins an array value back to a scalar with comma-space, the rule
// applied whenever a string transform runs while the value is an array.
func (v value) collapse() string {
	if v.isArray {
		return strings.Join(v.array, ", ")
	}
	return v.scalar
}

// asArray coerces a scalar into an array by comma-splitting when no prior
// array exists.
func (v value) asArray() []string {
	if v.isArray {
		return v.array
	}
	parts := strings.Split(v.scalar, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseTransformChain parses "t1:t2(opts)" into stages. Colons inside
// parenthesized options do not split stages.
func ParseTransformChain(chain string) []Transform {
	var out []Transform
	depth := 0
	start := 0
	flush := func(end int) {
		raw := strings.TrimSpace(chain[start:end])
		if raw == "" {
			return
		}
		t := Transform{Name: raw}
		if open := strings.IndexByte(raw, '('); open != -1 && strings.HasSuffix(raw, ")") {
			t.Name = raw[:open]
			t.Options = raw[open+1 : len(raw)-1]
			t.HasOpts = true
		}
		t.Name = strings.ToLower(strings.TrimSpace(t.Name))
		out = append(out, t)
	}
	for i := 0; i < len(chain); i++ {
		switch chain[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(chain))
	return out
}

// ApplyTransformChain runs the chain left to right. A failing stage aborts
// the chain and the original untransformed input is returned, never an empty
// string or a partial result.
func ApplyTransformChain(input string, chain []Transform) string {
	v := value{scalar: input}
	for _, t := range chain {
		next, ok := applyTransform(v, t)
		if !ok {
			return input
		}
		v = next
	}
	return v.collapse()
}

// applyTransform evaluates one stage. Unknown names are a no-op. The second
// return is false only for the hard failure sentinel that aborts the chain.
func applyTransform(v value, t Transform) (value, bool) {
	switch t.Name {
	case "split":
		delim := t.Options
		if delim == "" {
			delim = ","
		}
		parts := strings.Split(v.collapse(), delim)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return value{array: parts, isArray: true}, true
	case "join":
		delim := t.Options
		if !t.HasOpts {
			delim = ", "
		}
		return value{scalar: strings.Join(v.asArray(), delim)}, true
	case "first":
		arr := v.asArray()
		if len(arr) == 0 {
			return value{}, true
		}
		return value{scalar: arr[0]}, true
	case "last":
		arr := v.asArray()
		if len(arr) == 0 {
			return value{}, true
		}
		return value{scalar: arr[len(arr)-1]}, true
	case "slice":
		return applySlice(v, t.Options)
	}

	// Everything below is a string transform: collapse arrays first.
	s := v.collapse()
	out, ok := applyStringTransform(s, t)
	return value{scalar: out}, ok
}

func applyStringTransform(s string, t Transform) (string, bool) {
	switch t.Name {
	case "upper":
		return strings.ToUpper(s), true
	case "lower":
		return strings.ToLower(s), true
	case "trim":
		return strings.TrimSpace(s), true
	case "capitalize":
		return capitalize(s), true
	case "title":
		return titleCase(s), true
	case "slug", "slugify":
		return Slugify(s), true
	case "replace":
		return applyReplace(s, t.Options)
	case "substring", "substr":
		return applySubstring(s, t.Options)
	case "truncate":
		return applyTruncate(s, t.Options)
	case "pad":
		return applyPad(s, t.Options)
	case "repeat":
		n, err := strconv.Atoi(strings.TrimSpace(t.Options))
		if err != nil || n < 0 {
			return "", false
		}
		return strings.Repeat(s, n), true
	case "reverse":
		return reverseString(s), true
	case "length":
		return strconv.Itoa(len([]rune(s))), true
	case "format":
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return s, true // non-numeric input passes through unchanged
		}
		spec := t.Options
		if spec == "" || !strings.Contains(spec, "%") {
			return s, true
		}
		return fmt.Sprintf(spec, f), true
	case "default":
		if s == "" {
			return t.Options, true
		}
		return s, true
	case "escape", "html_escape":
		return html.EscapeString(s), true
	case "urlencode":
		return url.QueryEscape(s), true
	case "urldecode":
		dec, err := url.QueryUnescape(s)
		if err != nil {
			return s, true
		}
		return dec, true
	case "basename":
		if idx := strings.LastIndexByte(s, '/'); idx != -1 {
			return s[idx+1:], true
		}
		return s, true
	case "prefix":
		return t.Options + s, true
	case "suffix":
		return s + t.Options, true
	case "remove":
		return strings.ReplaceAll(s, t.Options, ""), true
	case "contains":
		if strings.Contains(s, t.Options) {
			return "true", true
		}
		return "false", true
	case "strftime":
		return applyStrftime(s, t.Options), true
	}
	// Unknown transform names are a no-op, not an error.
	return s, true
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// titleCase capitalizes the first letter of each whitespace-delimited word
// and lowercases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	atWordStart := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			atWordStart = true
			b.WriteRune(r)
			continue
		}
		if atWordStart {
			b.WriteRune(unicode.ToUpper(r))
			atWordStart = false
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Slugify lowercases, keeps alphanumerics, collapses whitespace and
// underscore runs to single hyphens, drops everything else, and strips
// leading/trailing hyphens.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_':
			pendingHyphen = true
		}
	}
	return b.String()
}

// applyReplace handles replace(OLD,NEW) and replace(regex:PATTERN,NEW).
// A regex compile failure returns the input unchanged rather than aborting.
func applyReplace(s, opts string) (string, bool) {
	if opts == "" {
		return "", false
	}
	if strings.HasPrefix(opts, "regex:") {
		pattern, repl := splitReplaceOpts(opts[len("regex:"):])
		re, err := regexp.CompilePOSIX(pattern)
		if err != nil {
			return s, true
		}
		return re.ReplaceAllString(s, repl), true
	}
	old, repl := splitReplaceOpts(opts)
	if old == "" {
		return "", false
	}
	return strings.ReplaceAll(s, old, repl), true
}

// splitReplaceOpts splits "OLD,NEW" at the first comma that is not inside a
// bracket or brace group, so regex quantifiers and classes keep their commas.
func splitReplaceOpts(opts string) (string, string) {
	depth := 0
	for i := 0; i < len(opts); i++ {
		switch opts[i] {
		case '[', '{':
			depth++
		case ']', '}':
			if depth > 0 {
				depth--
			}
		case '\\':
			i++
		case ',':
			if depth == 0 {
				return opts[:i], opts[i+1:]
			}
		}
	}
	return opts, ""
}

func applySubstring(s, opts string) (string, bool) {
	parts := strings.SplitN(opts, ",", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", false
	}
	r := []rune(s)
	end := len(r)
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", false
		}
	}
	if start < 0 {
		start = len(r) + start
	}
	if end < 0 {
		end = len(r) + end
	}
	start = clamp(start, 0, len(r))
	end = clamp(end, 0, len(r))
	if start >= end {
		return "", true
	}
	return string(r[start:end]), true
}

func applyTruncate(s, opts string) (string, bool) {
	parts := strings.SplitN(opts, ",", 2)
	maxLen, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || maxLen < 0 {
		return "", false
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s, true
	}
	out := string(r[:maxLen])
	if len(parts) == 2 {
		out += parts[1]
	}
	return out, true
}

func applyPad(s, opts string) (string, bool) {
	parts := strings.SplitN(opts, ",", 2)
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width < 0 {
		return "", false
	}
	pad := " "
	if len(parts) == 2 && parts[1] != "" {
		pad = parts[1][:1]
	}
	r := []rune(s)
	for len(r) < width {
		r = append([]rune(pad), r...)
	}
	return string(r), true
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// applySlice implements slice(start[,len]). A scalar value that is not yet
// an array is treated as an array of one-character strings, giving
// character-level slicing.
func applySlice(v value, opts string) (value, bool) {
	parts := strings.SplitN(opts, ",", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return value{}, false
	}
	var arr []string
	if v.isArray {
		arr = v.array
	} else {
		for _, r := range v.scalar {
			arr = append(arr, string(r))
		}
	}
	if start < 0 {
		start = len(arr) + start
	}
	start = clamp(start, 0, len(arr))
	end := len(arr)
	if len(parts) == 2 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || n < 0 {
			return value{}, false
		}
		end = start + n
	}
	end = clamp(end, 0, len(arr))
	if start > end {
		start = end
	}
	return value{array: arr[start:end], isArray: true}, true
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Date layouts tried in order by the strftime transform.
var strftimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// strftimeTokens maps strftime conversion specifiers to Go layout fragments,
// ordered for greedy single-byte matching after '%'.
var strftimeTokens = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'B': "January",
	'b': "Jan",
	'A': "Monday",
	'a': "Mon",
	'Z': "MST",
	'j': "002",
}

// applyStrftime parses the value as a date and reformats it. Parse failure
// returns the value unchanged.
func applyStrftime(s, fmtSpec string) string {
	var parsed time.Time
	var err error
	trimmed := strings.TrimSpace(s)
	for _, layout := range strftimeLayouts {
		parsed, err = time.Parse(layout, trimmed)
		if err == nil {
			break
		}
	}
	if err != nil {
		return s
	}

	var layout strings.Builder
	for i := 0; i < len(fmtSpec); i++ {
		if fmtSpec[i] != '%' || i+1 >= len(fmtSpec) {
			layout.WriteByte(fmtSpec[i])
			continue
		}
		i++
		if fmtSpec[i] == '%' {
			layout.WriteByte('%')
			continue
		}
		if goFmt, ok := strftimeTokens[fmtSpec[i]]; ok {
			layout.WriteString(goFmt)
		} else {
			layout.WriteByte(fmtSpec[i])
		}
	}
	return parsed.Format(layout.String())
}
