package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// htmlTemplate wraps a rendered fragment in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// DocumentConfig controls standalone document wrapping.
type DocumentConfig struct {
	Title       string
	Language    string
	Stylesheets []string
	InlineCSS   string
	Scripts     []string
}

// WrapDocument embeds an HTML fragment in a full HTML5 document. Stylesheet
// links and inline CSS land before </head>, script tags before </body>.
func WrapDocument(fragment string, cfg DocumentConfig) string {
	title := cfg.Title
	if title == "" {
		title = "Document"
	}
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	doc := fmt.Sprintf(htmlTemplate, html.EscapeString(lang), html.EscapeString(title), fragment)

	var head strings.Builder
	for _, href := range cfg.Stylesheets {
		fmt.Fprintf(&head, "<link rel=\"stylesheet\" href=%q>\n", href)
	}
	if cfg.InlineCSS != "" {
		fmt.Fprintf(&head, "<style>\n%s\n</style>\n", cfg.InlineCSS)
	}
	if head.Len() > 0 {
		doc = strings.Replace(doc, "</head>", head.String()+"</head>", 1)
	}

	if len(cfg.Scripts) > 0 {
		var tail strings.Builder
		for _, src := range cfg.Scripts {
			fmt.Fprintf(&tail, "<script src=%q></script>\n", src)
		}
		doc = strings.Replace(doc, "</body>", tail.String()+"</body>", 1)
	}
	return doc
}

var blockTagPattern = regexp.MustCompile(`(?i)^</?(p|h[1-6]|div|table|thead|tbody|tr|ul|ol|li|blockquote|section|article|header|footer|figure|figcaption|dl|dt|dd|hr)(\s|/?>)`)

// TidyHTML normalizes blank runs between block elements. It never reflows
// text inside <pre> blocks.
func TidyHTML(htmlText string) string {
	lines := strings.Split(htmlText, "\n")
	var out []string
	inPre := false
	blank := false
	for _, line := range lines {
		if strings.Contains(line, "<pre") {
			inPre = true
		}
		if inPre {
			out = append(out, line)
			if strings.Contains(line, "</pre>") {
				inPre = false
			}
			blank = false
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 && !blockTagPattern.MatchString(strings.TrimSpace(trimmed)) {
			out = append(out, "")
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
