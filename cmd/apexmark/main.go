package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/apexmark/apexmark"
	"github.com/apexmark/apexmark/internal/assets"
	"github.com/apexmark/apexmark/internal/config"
	"github.com/apexmark/apexmark/internal/fileutil"
	"github.com/apexmark/apexmark/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "apexmark:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	f, fs, rest, err := parseFlags(args)
	if err != nil {
		printUsage(os.Stderr)
		return err
	}
	if f.version {
		fmt.Fprintln(stdout, "apexmark", Version)
		return nil
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	theme, themeDir := themeSettings(f, cfg)
	resolver, err := assets.NewResolver(themeDir)
	if err != nil {
		return err
	}
	if f.listThemes {
		for _, name := range resolver.Themes() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	opts, err := buildOptions(f, fs, cfg)
	if err != nil {
		return err
	}
	if err := applyTheme(&opts, theme, resolver); err != nil {
		return err
	}

	if len(rest) > 1 {
		return runBatch(f, fs, cfg, rest, &opts, stdout)
	}

	input, err := readInput(rest, stdin)
	if err != nil {
		return err
	}
	html, err := apexmark.Convert(input, &opts)
	if err != nil {
		return err
	}
	return writeOutput(f.output, html, stdout)
}

// loadConfig loads the config file named by --config, or the first file found
// on the default search path. A missing explicit file is an error; a missing
// default file just means no config.
func loadConfig(f *cliFlags) (*config.Config, error) {
	if f.noConfig {
		return nil, nil
	}
	if f.configPath != "" {
		cfg, err := config.Load(f.configPath)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths()))
			}
			return nil, err
		}
		return cfg, nil
	}
	path, _, ok := config.Find()
	if !ok {
		return nil, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyTheme resolves a theme value into stylesheet options. A URL becomes a
// stylesheet link, a file path is inlined, and anything else is looked up as
// a theme name. Setting a theme implies standalone output.
func applyTheme(o *apexmark.Options, theme string, resolver *assets.Resolver) error {
	if theme == "" {
		return nil
	}
	o.Standalone = true
	if fileutil.IsURL(theme) {
		o.CSS = theme
		return nil
	}
	if fileutil.IsFilePath(theme) || strings.HasSuffix(theme, ".css") {
		data, err := os.ReadFile(theme)
		if err != nil {
			return fmt.Errorf("reading theme file: %w", err)
		}
		o.InlineCSS = string(data)
		return nil
	}
	css, err := resolver.LoadTheme(theme)
	if err != nil {
		if errors.Is(err, assets.ErrThemeNotFound) {
			return fmt.Errorf("%w%s", err, hints.ForThemeNotFound(resolver.Themes()))
		}
		return err
	}
	o.InlineCSS = css
	return nil
}

// runBatch converts several inputs in parallel. Outputs land next to each
// input with an .html extension, or inside --output when it names a
// directory.
func runBatch(f *cliFlags, fs *flag.FlagSet, cfg *config.Config, paths []string, opts *apexmark.Options, stdout io.Writer) error {
	outDir := ""
	if f.output != "" {
		info, err := os.Stat(f.output)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("--output must be an existing directory when converting multiple files%s", hints.ForOutputFile())
		}
		outDir = f.output
	}

	workers := apexmark.ResolveWorkers(workerCount(f, fs, cfg))
	results := apexmark.ConvertFiles(context.Background(), paths, opts, workers)

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintln(os.Stderr, "apexmark:", res.Err)
			continue
		}
		dest := outputPath(res.Path, outDir)
		if err := os.WriteFile(dest, []byte(res.HTML), 0o644); err != nil {
			failed++
			fmt.Fprintln(os.Stderr, "apexmark:", err)
			continue
		}
		fmt.Fprintln(stdout, dest)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(paths))
	}
	return nil
}

// outputPath swaps the input extension for .html, optionally relocating the
// file into dir.
func outputPath(input, dir string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".html"
	if dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

func writeOutput(path, html string, stdout io.Writer) error {
	if path == "" {
		_, err := io.WriteString(stdout, html)
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForOutputFile())
	}
	return nil
}

func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	return data, nil
}
