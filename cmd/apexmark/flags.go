package main

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/apexmark/apexmark"
	"github.com/apexmark/apexmark/internal/config"
)

// cliFlags holds every command-line flag. Boolean fields mirror Options
// one-to-one; only flags the user actually set override mode defaults.
type cliFlags struct {
	mode    string
	output  string
	version bool

	tables          bool
	strikethrough   bool
	autolink        bool
	taskLists       bool
	footnotes       bool
	definitionLists bool
	smart           bool
	emoji           bool
	highlight       bool
	highlightStyle  string
	unsafe          bool
	hardWraps       bool
	xhtml           bool

	metadata         bool
	transforms       bool
	kramdownAttrs    bool
	imageAttrs       bool
	imageURLEncoding bool
	relaxedTables    bool
	headerlessTables bool
	liquid           bool
	math             bool
	critic           bool
	embedImages      bool

	citations      bool
	citePandoc     bool
	citeMMD        bool
	citeMmark      bool
	linkCitations  bool
	noBibliography bool
	bibliography   []string
	csl            string
	indexParens    bool
	indexComments  bool

	wikiLinks       bool
	callouts        bool
	manualHeaderIDs bool
	mergeLists      bool

	headerIDs     bool
	headerIDStyle string
	headerAnchors bool

	standalone bool
	title      string
	language   string
	css        string
	scripts    []string
	pretty     bool

	baseDir   string
	metaFiles []string
	meta      []string

	theme      string
	themeDir   string
	listThemes bool
	configPath string
	noConfig   bool
	workers    int
}

// newFlagSet registers all flags. Defaults here are placeholders; the real
// per-mode defaults come from OptionsForMode and are only overridden for
// flags the user explicitly set.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("apexmark", flag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&f.mode, "mode", "m", "unified", "dialect: commonmark, gfm, multimarkdown, kramdown, unified")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.BoolVar(&f.tables, "tables", false, "pipe tables")
	fs.BoolVar(&f.strikethrough, "strikethrough", false, "~~strikethrough~~")
	fs.BoolVar(&f.autolink, "autolink", false, "bare URL autolinking")
	fs.BoolVar(&f.taskLists, "task-lists", false, "- [x] task lists")
	fs.BoolVar(&f.footnotes, "footnotes", false, "footnote references")
	fs.BoolVar(&f.definitionLists, "definition-lists", false, "definition lists")
	fs.BoolVar(&f.smart, "smart", false, "smart typography (quotes, dashes)")
	fs.BoolVar(&f.emoji, "emoji", false, ":emoji: shortcodes")
	fs.BoolVar(&f.highlight, "highlight", false, "fenced-code syntax highlighting")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "chroma style name")
	fs.BoolVar(&f.unsafe, "unsafe", false, "pass raw HTML through")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "newlines become <br>")
	fs.BoolVar(&f.xhtml, "xhtml", false, "XHTML-style output")

	fs.BoolVar(&f.metadata, "metadata", false, "front matter and [%key] substitution")
	fs.BoolVar(&f.transforms, "transforms", false, "[%key:transform] chains")
	fs.BoolVar(&f.kramdownAttrs, "kramdown-attrs", false, "{: #id .class} attribute lists")
	fs.BoolVar(&f.imageAttrs, "image-attrs", false, "![alt](url key=val) attributes")
	fs.BoolVar(&f.imageURLEncoding, "image-url-encoding", false, "percent-encode image URLs")
	fs.BoolVar(&f.relaxedTables, "relaxed-tables", false, "repair tables missing a separator row")
	fs.BoolVar(&f.headerlessTables, "headerless-tables", false, "repair tables missing a header row")
	fs.BoolVar(&f.liquid, "liquid", false, "shield {% ... %} tags")
	fs.BoolVar(&f.math, "math", false, "$...$ and $$...$$ TeX math spans")
	fs.BoolVar(&f.critic, "critic", false, "CriticMarkup annotations")
	fs.BoolVar(&f.embedImages, "embed-images", false, "inline local images as data URIs")

	fs.BoolVar(&f.citations, "citations", false, "citation processing")
	fs.BoolVar(&f.citePandoc, "cite-pandoc", false, "[@key] syntax")
	fs.BoolVar(&f.citeMMD, "cite-mmd", false, "[#key] syntax")
	fs.BoolVar(&f.citeMmark, "cite-mmark", false, "[@!key] / [@?key] syntax")
	fs.BoolVar(&f.linkCitations, "link-citations", false, "hyperlink citations to the bibliography")
	fs.BoolVar(&f.noBibliography, "no-bibliography", false, "suppress the bibliography list")
	fs.StringSliceVar(&f.bibliography, "bibliography", nil, "bibliography file (BibTeX, CSL-JSON, CSL-YAML; repeatable)")
	fs.StringVar(&f.csl, "csl", "", "CSL style file")
	fs.BoolVar(&f.indexParens, "index-parens", false, "(!term) index markers")
	fs.BoolVar(&f.indexComments, "index-comments", false, "<!--INDEX term--> markers")

	fs.BoolVar(&f.wikiLinks, "wiki-links", false, "[[page]] wiki links")
	fs.BoolVar(&f.callouts, "callouts", false, "> [!NOTE] callout blocks")
	fs.BoolVar(&f.manualHeaderIDs, "manual-header-ids", false, "trailing [label] header ids")
	fs.BoolVar(&f.mergeLists, "merge-lists", false, "merge adjacent mixed lists")

	fs.BoolVar(&f.headerIDs, "header-ids", false, "generate heading ids")
	fs.StringVar(&f.headerIDStyle, "header-id-style", "", "slug style: gfm, mmd, kramdown")
	fs.BoolVar(&f.headerAnchors, "header-anchors", false, "anchor elements instead of id attributes")

	fs.BoolVarP(&f.standalone, "standalone", "s", false, "wrap output in a full HTML document")
	fs.StringVar(&f.title, "title", "", "document title (standalone)")
	fs.StringVar(&f.language, "language", "", "document language (standalone)")
	fs.StringVar(&f.css, "css", "", "stylesheet href (standalone)")
	fs.StringSliceVar(&f.scripts, "script", nil, "script src to inject (repeatable)")
	fs.BoolVar(&f.pretty, "pretty", false, "normalize output whitespace")

	fs.StringVar(&f.baseDir, "base-dir", "", "base directory for relative paths")
	fs.StringSliceVar(&f.metaFiles, "meta-file", nil, "external metadata file (repeatable)")
	fs.StringArrayVar(&f.meta, "meta", nil, "KEY=VALUE metadata (repeatable, comma-separated pairs)")

	fs.StringVar(&f.theme, "theme", "", "embedded theme name, CSS file path, or URL (standalone)")
	fs.StringVar(&f.themeDir, "theme-dir", "", "directory of custom themes shadowing the embedded set")
	fs.BoolVar(&f.listThemes, "list-themes", false, "list available themes and exit")
	fs.StringVar(&f.configPath, "config", "", "config file (default: search apexmark.yaml, .apexmark.yaml, ~/.config/apexmark/config.yaml)")
	fs.BoolVar(&f.noConfig, "no-config", false, "skip config file loading")
	fs.IntVarP(&f.workers, "workers", "j", 0, "parallel conversions for multiple inputs (0 = auto)")

	return fs
}

// parseFlags parses args (without the program name) and returns the flag
// values plus positional arguments.
func parseFlags(args []string) (*cliFlags, *flag.FlagSet, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	return f, fs, fs.Args(), nil
}

// buildOptions resolves mode defaults, overlays the config file, then
// overlays every flag the user explicitly set. cfg may be nil.
func buildOptions(f *cliFlags, fs *flag.FlagSet, cfg *config.Config) (apexmark.Options, error) {
	name := f.mode
	if cfg != nil && cfg.Mode != "" && !fs.Changed("mode") {
		name = cfg.Mode
	}
	mode, err := apexmark.ParseMode(name)
	if err != nil {
		return apexmark.Options{}, err
	}
	o := apexmark.OptionsForMode(mode)
	if err := applyConfig(&o, cfg); err != nil {
		return apexmark.Options{}, err
	}

	setBool := func(name string, dst *bool, v bool) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	setBool("tables", &o.Tables, f.tables)
	setBool("strikethrough", &o.Strikethrough, f.strikethrough)
	setBool("autolink", &o.Autolink, f.autolink)
	setBool("task-lists", &o.TaskList, f.taskLists)
	setBool("footnotes", &o.Footnotes, f.footnotes)
	setBool("definition-lists", &o.DefinitionList, f.definitionLists)
	setBool("smart", &o.SmartTypography, f.smart)
	setBool("emoji", &o.Emoji, f.emoji)
	setBool("highlight", &o.Highlight, f.highlight)
	setBool("unsafe", &o.Unsafe, f.unsafe)
	setBool("hard-wraps", &o.HardWraps, f.hardWraps)
	setBool("xhtml", &o.XHTML, f.xhtml)
	setBool("metadata", &o.Metadata, f.metadata)
	setBool("transforms", &o.MetadataTransforms, f.transforms)
	setBool("kramdown-attrs", &o.KramdownAttributes, f.kramdownAttrs)
	setBool("image-attrs", &o.ImageAttributes, f.imageAttrs)
	setBool("image-url-encoding", &o.ImageURLEncoding, f.imageURLEncoding)
	setBool("relaxed-tables", &o.RelaxedTables, f.relaxedTables)
	setBool("headerless-tables", &o.HeaderlessTables, f.headerlessTables)
	setBool("liquid", &o.LiquidTags, f.liquid)
	setBool("math", &o.Math, f.math)
	setBool("critic", &o.CriticMarkup, f.critic)
	setBool("embed-images", &o.EmbedImages, f.embedImages)
	setBool("citations", &o.Citations, f.citations)
	setBool("cite-pandoc", &o.CitePandoc, f.citePandoc)
	setBool("cite-mmd", &o.CiteMultiMarkdown, f.citeMMD)
	setBool("cite-mmark", &o.CiteMmark, f.citeMmark)
	setBool("link-citations", &o.LinkCitations, f.linkCitations)
	setBool("no-bibliography", &o.SuppressBibliography, f.noBibliography)
	setBool("index-parens", &o.IndexParens, f.indexParens)
	setBool("index-comments", &o.IndexComments, f.indexComments)
	setBool("wiki-links", &o.WikiLinks, f.wikiLinks)
	setBool("callouts", &o.Callouts, f.callouts)
	setBool("manual-header-ids", &o.ManualHeaderIDs, f.manualHeaderIDs)
	setBool("merge-lists", &o.MergeMixedLists, f.mergeLists)
	setBool("header-ids", &o.HeaderIDs, f.headerIDs)
	setBool("header-anchors", &o.HeaderAnchors, f.headerAnchors)
	setBool("standalone", &o.Standalone, f.standalone)
	setBool("pretty", &o.PrettyPrint, f.pretty)

	if fs.Changed("highlight-style") {
		o.HighlightStyle = f.highlightStyle
	}
	if fs.Changed("header-id-style") {
		style, err := parseHeaderIDStyle(f.headerIDStyle)
		if err != nil {
			return apexmark.Options{}, err
		}
		o.HeaderIDStyle = style
	}
	if f.title != "" {
		o.Title = f.title
	}
	if f.language != "" {
		o.Language = f.language
	}
	if f.css != "" {
		o.CSS = f.css
	}
	if f.csl != "" {
		o.CSLFile = f.csl
	}
	if f.baseDir != "" {
		o.BaseDir = f.baseDir
	}
	o.BibliographyFiles = append(o.BibliographyFiles, f.bibliography...)
	o.Scripts = append(o.Scripts, f.scripts...)
	o.MetaFiles = append(o.MetaFiles, f.metaFiles...)

	meta, err := parseMetaPairs(f.meta)
	if err != nil {
		return apexmark.Options{}, err
	}
	o.Meta = append(o.Meta, meta...)
	return o, nil
}

// applyConfig copies config-file settings into o. The flag handling later in
// buildOptions overwrites anything the user set explicitly, so the effective
// precedence is mode defaults, then config, then flags.
func applyConfig(o *apexmark.Options, cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	if cfg.HeaderIDStyle != "" {
		style, err := parseHeaderIDStyle(cfg.HeaderIDStyle)
		if err != nil {
			return err
		}
		o.HeaderIDStyle = style
	}
	if cfg.Standalone != nil {
		o.Standalone = *cfg.Standalone
	}
	if cfg.Pretty != nil {
		o.PrettyPrint = *cfg.Pretty
	}
	if cfg.CSS != "" {
		o.CSS = cfg.CSS
	}
	if cfg.Title != "" {
		o.Title = cfg.Title
	}
	if cfg.Language != "" {
		o.Language = cfg.Language
	}
	if cfg.BaseDir != "" {
		o.BaseDir = cfg.BaseDir
	}
	if cfg.CSL != "" {
		o.CSLFile = cfg.CSL
	}
	o.BibliographyFiles = append(o.BibliographyFiles, cfg.Bibliography...)
	o.MetaFiles = append(o.MetaFiles, cfg.MetaFiles...)
	for _, pair := range cfg.MetaPairs() {
		key, val, _ := strings.Cut(pair, "=")
		o.Meta = append(o.Meta, apexmark.MetaItem{Key: key, Value: val})
	}
	return nil
}

// themeSettings resolves the effective theme name and custom theme directory,
// flags winning over config.
func themeSettings(f *cliFlags, cfg *config.Config) (theme, dir string) {
	theme, dir = f.theme, f.themeDir
	if cfg != nil {
		if theme == "" {
			theme = cfg.Theme
		}
		if dir == "" {
			dir = cfg.ThemeDir
		}
	}
	return theme, dir
}

// workerCount resolves the worker flag against the config file. Zero means
// let ResolveWorkers pick from GOMAXPROCS.
func workerCount(f *cliFlags, fs *flag.FlagSet, cfg *config.Config) int {
	if fs.Changed("workers") {
		return f.workers
	}
	if cfg != nil {
		return cfg.Workers
	}
	return 0
}

func parseHeaderIDStyle(name string) (apexmark.HeaderIDStyle, error) {
	switch strings.ToLower(name) {
	case "gfm", "":
		return apexmark.HeaderIDsGFM, nil
	case "mmd", "multimarkdown":
		return apexmark.HeaderIDsMMD, nil
	case "kramdown":
		return apexmark.HeaderIDsKramdown, nil
	}
	return apexmark.HeaderIDsGFM, fmt.Errorf("unknown header-id style %q", name)
}

// parseMetaPairs expands --meta values into key/value items. Each value may
// hold several comma-separated KEY=VALUE pairs; quoted values may contain
// commas and equals signs.
func parseMetaPairs(values []string) ([]apexmark.MetaItem, error) {
	var items []apexmark.MetaItem
	for _, v := range values {
		pairs, err := splitMetaPairs(v)
		if err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			key, val, found := strings.Cut(pair, "=")
			if !found || strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("invalid --meta value %q (want KEY=VALUE)", pair)
			}
			items = append(items, apexmark.MetaItem{
				Key:   strings.TrimSpace(key),
				Value: unquoteMeta(strings.TrimSpace(val)),
			})
		}
	}
	return items, nil
}

// splitMetaPairs splits on commas outside quotes.
func splitMetaPairs(s string) ([]string, error) {
	var pairs []string
	var cur strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			cur.WriteByte(c)
		case c == ',':
			if p := strings.TrimSpace(cur.String()); p != "" {
				pairs = append(pairs, p)
			}
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in --meta value %q", s)
	}
	if p := strings.TrimSpace(cur.String()); p != "" {
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func unquoteMeta(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
