package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: apexmark [flags] [input.md ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown to HTML. Reads stdin when no input file is given.")
	fmt.Fprintln(w, "Multiple inputs are converted in parallel, each to <name>.html.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dialects:")
	fmt.Fprintln(w, "  -m, --mode <s>            commonmark, gfm, multimarkdown, kramdown, unified")
	fmt.Fprintln(w, "                            Each mode sets its own feature defaults; any")
	fmt.Fprintln(w, "                            feature flag set explicitly overrides the default.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file, or directory for multiple inputs")
	fmt.Fprintln(w, "  -s, --standalone          Wrap output in a full HTML document")
	fmt.Fprintln(w, "      --css <href>          Stylesheet link for standalone output")
	fmt.Fprintln(w, "      --theme <name>        Inline an embedded theme, CSS file, or URL")
	fmt.Fprintln(w, "      --theme-dir <path>    Custom theme directory (shadows embedded themes)")
	fmt.Fprintln(w, "      --pretty              Normalize output whitespace")
	fmt.Fprintln(w, "  -j, --workers <n>         Parallel conversions for multiple inputs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "      --config <path>       YAML config file; searched in apexmark.yaml,")
	fmt.Fprintln(w, "                            .apexmark.yaml, ~/.config/apexmark/config.yaml")
	fmt.Fprintln(w, "      --no-config           Skip config file loading")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Metadata:")
	fmt.Fprintln(w, "      --meta KEY=VALUE      Highest-precedence metadata (repeatable,")
	fmt.Fprintln(w, "                            comma-separated pairs, quoted values)")
	fmt.Fprintln(w, "      --meta-file <path>    Lowest-precedence metadata file (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Citations:")
	fmt.Fprintln(w, "      --bibliography <path> BibTeX, CSL-JSON, or CSL-YAML file (repeatable)")
	fmt.Fprintln(w, "      --csl <path>          CSL style; author-date styles switch the")
	fmt.Fprintln(w, "                            inline labels from [1] to (Author Year)")
	fmt.Fprintln(w, "      --link-citations      Hyperlink citations to the bibliography")
	fmt.Fprintln(w, "      --no-bibliography     Suppress the bibliography list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'apexmark --help' for the full flag list.")
}
