package main

import (
	"testing"

	"github.com/apexmark/apexmark"
)

func parseAndBuild(t *testing.T, args ...string) apexmark.Options {
	t.Helper()
	f, fs, _, err := parseFlags(args)
	if err != nil {
		t.Fatalf("parseFlags(%v) error = %v", args, err)
	}
	opts, err := buildOptions(f, fs, nil)
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	return opts
}

func TestBuildOptionsModeDefaults(t *testing.T) {
	t.Parallel()

	opts := parseAndBuild(t, "-m", "gfm")
	if !opts.Tables {
		t.Error("gfm mode should enable tables")
	}
	if opts.Footnotes {
		t.Error("gfm mode should not enable footnotes")
	}
	if opts.Unsafe {
		t.Error("gfm mode should not enable raw HTML")
	}
}

func TestBuildOptionsExplicitOverrides(t *testing.T) {
	t.Parallel()

	opts := parseAndBuild(t, "-m", "gfm", "--tables=false", "--footnotes", "--unsafe")
	if opts.Tables {
		t.Error("--tables=false should override the mode default")
	}
	if !opts.Footnotes {
		t.Error("--footnotes should override the mode default")
	}
	if !opts.Unsafe {
		t.Error("--unsafe should override the mode default")
	}
	// A flag never passed keeps its mode default.
	if !opts.Strikethrough {
		t.Error("strikethrough default lost during overlay")
	}
}

func TestBuildOptionsUnknownMode(t *testing.T) {
	t.Parallel()

	f, fs, _, err := parseFlags([]string{"-m", "textile"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if _, err := buildOptions(f, fs, nil); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestBuildOptionsPaths(t *testing.T) {
	t.Parallel()

	opts := parseAndBuild(t, "--base-dir", "/docs",
		"--bibliography", "a.bib", "--bibliography", "b.json",
		"--meta-file", "site.yml", "--csl", "apa.csl")
	if opts.BaseDir != "/docs" {
		t.Errorf("BaseDir = %q", opts.BaseDir)
	}
	if len(opts.BibliographyFiles) != 2 || opts.BibliographyFiles[1] != "b.json" {
		t.Errorf("BibliographyFiles = %v", opts.BibliographyFiles)
	}
	if len(opts.MetaFiles) != 1 || opts.MetaFiles[0] != "site.yml" {
		t.Errorf("MetaFiles = %v", opts.MetaFiles)
	}
	if opts.CSLFile != "apa.csl" {
		t.Errorf("CSLFile = %q", opts.CSLFile)
	}
}

func TestParseFlagsPositional(t *testing.T) {
	t.Parallel()

	f, _, args, err := parseFlags([]string{"doc.md", "-o", "out.html"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if len(args) != 1 || args[0] != "doc.md" {
		t.Errorf("positional args = %v, want [doc.md]", args)
	}
	if f.output != "out.html" {
		t.Errorf("output = %q, want %q", f.output, "out.html")
	}
}

func TestParseHeaderIDStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    apexmark.HeaderIDStyle
		wantErr bool
	}{
		{"gfm", apexmark.HeaderIDsGFM, false},
		{"", apexmark.HeaderIDsGFM, false},
		{"mmd", apexmark.HeaderIDsMMD, false},
		{"multimarkdown", apexmark.HeaderIDsMMD, false},
		{"Kramdown", apexmark.HeaderIDsKramdown, false},
		{"setext", apexmark.HeaderIDsGFM, true},
	}
	for _, tt := range tests {
		got, err := parseHeaderIDStyle(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHeaderIDStyle(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseHeaderIDStyle(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseMetaPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []string
		want    []apexmark.MetaItem
		wantErr bool
	}{
		{
			name:  "single pair",
			input: []string{"title=My Doc"},
			want:  []apexmark.MetaItem{{Key: "title", Value: "My Doc"}},
		},
		{
			name:  "comma separated pairs",
			input: []string{"a=1, b=2"},
			want:  []apexmark.MetaItem{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
		},
		{
			name:  "quoted value with comma",
			input: []string{`author="Doe, Jane"`},
			want:  []apexmark.MetaItem{{Key: "author", Value: "Doe, Jane"}},
		},
		{
			name:  "repeated flag accumulates",
			input: []string{"a=1", "b=2"},
			want:  []apexmark.MetaItem{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
		},
		{
			name:    "missing equals",
			input:   []string{"title"},
			wantErr: true,
		},
		{
			name:    "unterminated quote",
			input:   []string{`a="open`},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseMetaPairs(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMetaPairs(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
