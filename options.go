package apexmark

import (
	"fmt"
	"strings"
)

// Mode selects a Markdown compatibility dialect. Each mode pre-populates a
// full set of per-feature defaults; fields changed after mode selection
// override those defaults.
type Mode int

const (
	ModeCommonMark Mode = iota
	ModeGFM
	ModeMultiMarkdown
	ModeKramdown
	ModeUnified
)

func (m Mode) String() string {
	switch m {
	case ModeCommonMark:
		return "commonmark"
	case ModeGFM:
		return "gfm"
	case ModeMultiMarkdown:
		return "multimarkdown"
	case ModeKramdown:
		return "kramdown"
	case ModeUnified:
		return "unified"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a mode name as used on the command line.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "commonmark", "cm":
		return ModeCommonMark, nil
	case "gfm", "github":
		return ModeGFM, nil
	case "multimarkdown", "mmd":
		return ModeMultiMarkdown, nil
	case "kramdown":
		return ModeKramdown, nil
	case "unified", "":
		return ModeUnified, nil
	}
	return ModeUnified, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// HeaderIDStyle selects the slug format for generated heading ids.
type HeaderIDStyle int

const (
	// HeaderIDsGFM lowercases, hyphenates spaces, and strips diacritics.
	HeaderIDsGFM HeaderIDStyle = iota
	// HeaderIDsMMD removes spaces but keeps dashes and diacritics.
	HeaderIDsMMD
	// HeaderIDsKramdown converts spaces to dashes and strips diacritics
	// and em/en dashes.
	HeaderIDsKramdown
)

// MetaItem is one externally supplied metadata pair (--meta KEY=VALUE).
type MetaItem struct {
	Key   string
	Value string
}

// Options configures a single conversion. Zero value is NOT usable; start
// from DefaultOptions or OptionsForMode.
type Options struct {
	Mode Mode

	// Parser extensions.
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
	Unsafe          bool
	HardWraps       bool
	XHTML           bool

	// Text preprocessors.
	Metadata           bool // front matter extraction + [%key] substitution
	MetadataTransforms bool // [%key:transform(...)] chains
	KramdownAttributes bool // IAL/ALD parsing and attachment
	ImageAttributes    bool // ![alt](url key=val) extraction
	ImageURLEncoding   bool // percent-encode image URLs
	RelaxedTables      bool
	HeaderlessTables   bool
	LiquidTags         bool // shield {% ... %} regions
	Math               bool // $...$ and $$...$$ TeX spans
	CriticMarkup       bool // {++ins++}, {--del--}, {~~sub~~}, {==mark==}, {>>comment<<}

	// Citations and index.
	Citations            bool
	CitePandoc           bool // [@key], [@a; @b], bare @key
	CiteMultiMarkdown    bool // [#key]
	CiteMmark            bool // [@!key], [@?key]
	LinkCitations        bool
	SuppressBibliography bool
	BibliographyFiles    []string
	CSLFile              string
	IndexParens          bool // (!term)
	IndexComments        bool // <!--INDEX term-->

	// Tree postprocessors.
	WikiLinks       bool
	Callouts        bool
	ManualHeaderIDs bool // trailing " [label]" on headings
	MergeMixedLists bool

	// Header ids.
	HeaderIDs     bool
	HeaderIDStyle HeaderIDStyle
	HeaderAnchors bool

	// Output shaping.
	Standalone  bool
	Title       string
	Language    string
	CSS         string // stylesheet href for standalone documents
	InlineCSS   string
	Scripts     []string
	PrettyPrint bool

	// Environment.
	BaseDir     string // base for relative bibliography/metadata paths
	MetaFiles   []string
	Meta        []MetaItem
	EmbedImages bool // inline local images as base64 data URIs
}

// DefaultOptions returns Unified-mode defaults, the superset dialect.
func DefaultOptions() Options {
	return OptionsForMode(ModeUnified)
}

// OptionsForMode returns the per-feature default matrix for a dialect.
func OptionsForMode(mode Mode) Options {
	o := Options{
		Mode:           mode,
		HighlightStyle: "github",
		Language:       "",
	}
	switch mode {
	case ModeCommonMark:
		// Baseline: no extensions at all.

	case ModeGFM:
		o.Tables = true
		o.Strikethrough = true
		o.Autolink = true
		o.TaskList = true
		o.HeaderIDs = true
		o.HeaderIDStyle = HeaderIDsGFM

	case ModeMultiMarkdown:
		o.Tables = true
		o.Footnotes = true
		o.DefinitionList = true
		o.SmartTypography = true
		o.Unsafe = true
		o.Metadata = true
		o.ImageAttributes = true
		o.ImageURLEncoding = true
		o.Citations = true
		o.CiteMultiMarkdown = true
		o.Math = true
		o.CriticMarkup = true
		o.HeaderIDs = true
		o.HeaderIDStyle = HeaderIDsMMD

	case ModeKramdown:
		o.Tables = true
		o.Footnotes = true
		o.DefinitionList = true
		o.SmartTypography = true
		o.Unsafe = true
		o.Metadata = true
		o.KramdownAttributes = true
		o.ImageURLEncoding = true
		o.Math = true
		o.HeaderIDs = true
		o.HeaderIDStyle = HeaderIDsKramdown

	default: // ModeUnified
		o.Tables = true
		o.Strikethrough = true
		o.Autolink = true
		o.TaskList = true
		o.Footnotes = true
		o.DefinitionList = true
		o.SmartTypography = true
		o.Emoji = true
		o.Highlight = true
		o.Unsafe = true
		o.Metadata = true
		o.MetadataTransforms = true
		o.KramdownAttributes = true
		o.ImageAttributes = true
		o.ImageURLEncoding = true
		o.RelaxedTables = true
		o.HeaderlessTables = true
		o.LiquidTags = true
		o.Math = true
		o.CriticMarkup = true
		o.Citations = true
		o.CitePandoc = true
		o.CiteMultiMarkdown = true
		o.WikiLinks = true
		o.Callouts = true
		o.ManualHeaderIDs = true
		o.MergeMixedLists = true
		o.HeaderIDs = true
		o.HeaderIDStyle = HeaderIDsGFM
	}
	return o
}
