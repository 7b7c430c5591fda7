package apexmark

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apexmark/apexmark/internal/attrs"
	"github.com/apexmark/apexmark/internal/cite"
	"github.com/apexmark/apexmark/internal/critic"
	"github.com/apexmark/apexmark/internal/dateutil"
	"github.com/apexmark/apexmark/internal/liquid"
	"github.com/apexmark/apexmark/internal/mathtex"
	"github.com/apexmark/apexmark/internal/metadata"
	"github.com/apexmark/apexmark/internal/pipeline"
	"github.com/apexmark/apexmark/internal/tables"
	"github.com/apexmark/apexmark/internal/trace"
)

// maxMetaFileSize caps external metadata file reads.
const maxMetaFileSize = 1 << 20

// Convert runs the full pipeline on one document and returns HTML. All
// state is allocated fresh per call, so independent conversions may run
// concurrently. A nil opts uses Unified-mode defaults.
func Convert(markdown []byte, opts *Options) (string, error) {
	if len(markdown) == 0 {
		return "", ErrEmptyInput
	}
	var o Options
	if opts == nil {
		o = DefaultOptions()
	} else {
		o = *opts
	}
	defer trace.Section("convert")()

	text := string(markdown)

	var prot *liquid.Protector
	if o.LiquidTags {
		prot = liquid.NewProtector()
		text = prot.Protect(text)
	}

	text, meta := gatherMetadata(text, &o)
	if meta.Len() > 0 && o.Metadata {
		text = metadata.ReplaceVariables(text, meta, o.MetadataTransforms)
	}
	overlayMetadata(&o, meta)

	var mathProt *mathtex.Protector
	if o.Math {
		mathProt = mathtex.NewProtector()
		text = mathProt.Protect(text)
	}
	var criticProt *critic.Protector
	if o.CriticMarkup {
		criticProt = critic.NewProtector()
		text = criticProt.Protect(text)
	}

	var alds *attrs.ALDList
	if o.KramdownAttributes {
		text = attrs.PreprocessIAL(text)
		text, alds = attrs.ExtractALDs(text)
	}

	var imgAttrs *attrs.ImageAttrList
	if o.ImageAttributes || o.ImageURLEncoding {
		text, imgAttrs = attrs.ExtractImageAttrs(text, o.ImageAttributes)
	}

	tablesChanged := false
	if o.RelaxedTables {
		if fixed := tables.ProcessRelaxedTables(text); fixed != text {
			text = fixed
			tablesChanged = true
		}
	}
	if o.HeaderlessTables {
		if fixed := tables.ProcessHeaderlessTables(text); fixed != text {
			text = fixed
			tablesChanged = true
		}
	}

	// Citation sigils are shielded here, before the parse, so autolinking
	// never mistakes @key for an email address.
	var citeReg *cite.Registry
	if o.Citations {
		bib := cite.LoadBibliography(resolvePaths(o.BaseDir, o.BibliographyFiles))
		citeReg = cite.NewRegistry(bib)
		text = citeReg.Preprocess(text, citeSyntax(&o))
	}
	var idxReg *cite.IndexRegistry
	if o.IndexParens || o.IndexComments {
		idxReg = cite.NewIndexRegistry()
		text = idxReg.Preprocess(text, indexSyntax(&o))
	}

	md := pipeline.NewMarkdown(parserConfig(&o))
	source := []byte(text)
	doc := pipeline.Parse(md, source)

	if o.WikiLinks {
		pipeline.ApplyWikiLinks(doc, source)
	}
	if o.Callouts {
		pipeline.ApplyCallouts(doc, source)
	}
	if o.KramdownAttributes {
		pipeline.ApplyIALs(doc, source, alds)
	}
	if o.ManualHeaderIDs {
		pipeline.ApplyManualHeaderIDs(doc, source)
	}
	if o.MergeMixedLists {
		pipeline.MergeMixedLists(doc)
	}

	var headerIDs []pipeline.HeaderID
	if o.HeaderIDs {
		headerIDs = pipeline.CollectHeaderIDs(doc, source, slugStyle(o.HeaderIDStyle))
	}
	attrNodes := pipeline.CollectAttrNodes(doc, source)

	htmlText, err := pipeline.Render(md, source, doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	if len(attrNodes) > 0 {
		htmlText = pipeline.InjectAttributes(htmlText, attrNodes)
	}
	if imgAttrs != nil && imgAttrs.Len() > 0 {
		htmlText = pipeline.InjectImageAttrs(htmlText, imgAttrs)
	}
	if o.HeaderIDs {
		htmlText = pipeline.InjectHeaderIDs(htmlText, headerIDs, o.HeaderAnchors)
	}
	if tablesChanged {
		htmlText = tables.ConvertRelaxedTableHeaders(htmlText)
	}
	if citeReg != nil {
		var style cite.Style
		if o.CSLFile != "" {
			style = cite.LoadStyle(resolvePath(o.BaseDir, o.CSLFile))
		}
		htmlText = citeReg.Render(htmlText, cite.RenderOptions{
			LinkCitations:        o.LinkCitations,
			SuppressBibliography: o.SuppressBibliography,
			Style:                style,
		})
	}
	if idxReg != nil {
		htmlText = idxReg.Render(htmlText)
	}
	if criticProt != nil {
		htmlText = criticProt.Restore(htmlText)
	}
	if mathProt != nil {
		htmlText = mathProt.Restore(htmlText)
	}
	if prot != nil {
		htmlText = prot.Restore(htmlText)
	}
	if o.EmbedImages && o.BaseDir != "" {
		embedded, err := pipeline.EmbedImages(htmlText, o.BaseDir)
		if err != nil {
			trace.Logf("image embedding skipped", "err", err)
		} else {
			htmlText = embedded
		}
	}

	if o.Standalone {
		cfg := pipeline.DocumentConfig{
			Title:     o.Title,
			Language:  o.Language,
			InlineCSS: o.InlineCSS,
			Scripts:   o.Scripts,
		}
		if o.CSS != "" {
			cfg.Stylesheets = []string{o.CSS}
		}
		htmlText = pipeline.WrapDocument(htmlText, cfg)
	}
	if o.PrettyPrint {
		htmlText = pipeline.TidyHTML(htmlText)
	}
	return htmlText, nil
}

// gatherMetadata builds the merged metadata list in precedence order
// (meta files, then in-document front matter, then command-line pairs)
// and strips the front matter from the working text.
func gatherMetadata(text string, o *Options) (string, *metadata.List) {
	meta := metadata.NewList()
	for _, path := range resolvePaths(o.BaseDir, o.MetaFiles) {
		data, err := readCapped(path, maxMetaFileSize)
		if err != nil {
			trace.Logf("meta file skipped", "path", path, "err", err)
			continue
		}
		meta.Merge(metadata.ParseFile(data))
	}
	if o.Metadata {
		docMeta, offset := metadata.Extract(text)
		text = text[offset:]
		meta.Merge(docMeta)
	}
	if len(o.Meta) > 0 {
		cli := metadata.NewList()
		for _, item := range o.Meta {
			cli.Add(item.Key, item.Value)
		}
		meta.Merge(cli)
	}
	if v, ok := meta.Get("date"); ok {
		resolved, err := dateutil.Resolve(v, time.Now())
		if err != nil {
			trace.Logf("date value kept as-is", "value", v, "err", err)
		} else if resolved != v {
			meta.Set("date", resolved)
		}
	}
	return text, meta
}

// overlayMetadata applies metadata-driven option overrides. Values set
// explicitly by the caller win (only empty fields are filled), except
// bibliography lists, which merge.
func overlayMetadata(o *Options, meta *metadata.List) {
	set := func(field *string, key string) {
		if *field != "" {
			return
		}
		if v, ok := meta.Get(key); ok {
			*field = v
		}
	}
	set(&o.Title, "title")
	set(&o.Language, "language")
	set(&o.CSS, "css")
	set(&o.CSLFile, "csl")

	if v, ok := meta.Get("bibliography"); ok {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				o.BibliographyFiles = append(o.BibliographyFiles, p)
			}
		}
	}
}

func citeSyntax(o *Options) cite.Syntax {
	var s cite.Syntax
	if o.CitePandoc {
		s |= cite.SyntaxPandoc
	}
	if o.CiteMultiMarkdown {
		s |= cite.SyntaxMMD
	}
	if o.CiteMmark {
		s |= cite.SyntaxMmark
	}
	if s == 0 {
		s = cite.SyntaxPandoc
	}
	return s
}

func indexSyntax(o *Options) cite.IndexSyntax {
	var s cite.IndexSyntax
	if o.IndexParens {
		s |= cite.IndexParen
	}
	if o.IndexComments {
		s |= cite.IndexComment
	}
	return s
}

func slugStyle(style HeaderIDStyle) pipeline.SlugStyle {
	switch style {
	case HeaderIDsMMD:
		return pipeline.SlugMMD
	case HeaderIDsKramdown:
		return pipeline.SlugKramdown
	}
	return pipeline.SlugGFM
}

func parserConfig(o *Options) pipeline.ParserConfig {
	return pipeline.ParserConfig{
		Tables:          o.Tables,
		Strikethrough:   o.Strikethrough,
		Autolink:        o.Autolink,
		TaskList:        o.TaskList,
		Footnotes:       o.Footnotes,
		DefinitionList:  o.DefinitionList,
		SmartTypography: o.SmartTypography,
		Emoji:           o.Emoji,
		Highlight:       o.Highlight,
		HighlightStyle:  o.HighlightStyle,
		Unsafe:          o.Unsafe,
		HardWraps:       o.HardWraps,
		XHTML:           o.XHTML,
	}
}

func resolvePath(base, p string) string {
	if base == "" || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func resolvePaths(base string, paths []string) []string {
	if base == "" || len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(base, p)
	}
	return out
}

func readCapped(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return os.ReadFile(path)
}
