package pipeline

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxEmbedSize caps the size of an image read for embedding. Larger files
// keep their original src attribute.
const MaxEmbedSize = 10 << 20

var embedMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".avif": "image/avif",
	".ico":  "image/x-icon",
}

// EmbedImages inlines local images referenced by <img> tags as base64 data
// URIs. Paths resolve against baseDir and must stay inside it; remote URLs,
// data URIs, unreadable files, unknown extensions and files over
// MaxEmbedSize all leave the original src untouched.
func EmbedImages(htmlText, baseDir string) (string, error) {
	if baseDir == "" || !strings.Contains(htmlText, "<img") {
		return htmlText, nil
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlText)
	if err != nil {
		return "", err
	}
	embedNode(doc, absBase)
	return renderHTML(doc, isFragment)
}

// parseHTML parses either a full document or a body fragment, wrapping
// fragment nodes in a container for uniform traversal.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders a parsed tree back to a string. Fragments render their
// children directly so no <html><body> wrapper appears.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func embedNode(n *html.Node, baseDir string) {
	if n.Type == html.ElementNode && n.Data == "img" {
		embedSrc(n, baseDir)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		embedNode(c, baseDir)
	}
}

// embedSrc rewrites one img src to a data URI when the file qualifies.
func embedSrc(n *html.Node, baseDir string) {
	for i, attr := range n.Attr {
		if attr.Key != "src" || !isEmbeddablePath(attr.Val) {
			continue
		}
		mime, ok := embedMIMETypes[strings.ToLower(filepath.Ext(attr.Val))]
		if !ok {
			continue
		}
		path := attr.Val
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if !isPathUnderDir(path, baseDir) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() > MaxEmbedSize {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		n.Attr[i].Val = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
}

// isEmbeddablePath rejects everything that is not a plain local path.
func isEmbeddablePath(path string) bool {
	if path == "" {
		return false
	}
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "file://") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "//") ||
		strings.HasPrefix(path, "#") {
		return false
	}
	return true
}

// isPathUnderDir reports whether absPath stays inside dir after cleaning,
// blocking ../ traversal out of the document directory.
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
