package pipeline

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ParserConfig selects the Goldmark extensions and renderer flags for one
// conversion. The per-mode defaults live in the root package; this struct is
// the resolved result.
type ParserConfig struct {
	Tables          bool
	Strikethrough   bool
	Autolink        bool
	TaskList        bool
	Footnotes       bool
	DefinitionList  bool
	SmartTypography bool
	Emoji           bool
	Highlight       bool
	HighlightStyle  string

	Unsafe    bool
	HardWraps bool
	XHTML     bool
}

// NewMarkdown builds a Goldmark instance for the resolved config.
func NewMarkdown(cfg ParserConfig) goldmark.Markdown {
	var exts []goldmark.Extender
	if cfg.Tables {
		exts = append(exts, extension.Table)
	}
	if cfg.Strikethrough {
		exts = append(exts, extension.Strikethrough)
	}
	if cfg.Autolink {
		exts = append(exts, extension.Linkify)
	}
	if cfg.TaskList {
		exts = append(exts, extension.TaskList)
	}
	if cfg.Footnotes {
		exts = append(exts, extension.Footnote)
	}
	if cfg.DefinitionList {
		exts = append(exts, extension.DefinitionList)
	}
	if cfg.SmartTypography {
		exts = append(exts, extension.Typographer)
	}
	if cfg.Emoji {
		exts = append(exts, emoji.Emoji)
	}
	if cfg.Highlight {
		style := cfg.HighlightStyle
		if style == "" {
			style = "github"
		}
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	rendererOpts := []renderer.Option{}
	if cfg.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	if cfg.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if cfg.XHTML {
		rendererOpts = append(rendererOpts, html.WithXHTML())
	}

	// Heading ids are injected by the HTML-level pass, which controls the
	// slug style per mode, so Goldmark's own auto ids stay off.
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}

// Parse turns preprocessed source into a tree. The tree is owned by the
// conversion call and never shared.
func Parse(md goldmark.Markdown, source []byte) ast.Node {
	return md.Parser().Parse(text.NewReader(source))
}

// Render renders the (possibly postprocessed) tree to an HTML fragment.
func Render(md goldmark.Markdown, source []byte, doc ast.Node) (string, error) {
	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return "", fmt.Errorf("rendering tree: %w", err)
	}
	return buf.String(), nil
}
