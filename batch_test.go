package apexmark

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	if got := ResolveWorkers(3); got != 3 {
		t.Errorf("explicit workers = %d, want 3", got)
	}
	got := ResolveWorkers(0)
	if got < MinWorkers || got > MaxWorkers {
		t.Errorf("auto workers = %d, want within [%d, %d]", got, MinWorkers, MaxWorkers)
	}
}

func TestConvertFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	if err := os.WriteFile(a, []byte("# Alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("# Beta\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.md")

	opts := OptionsForMode(ModeGFM)
	results := ConvertFiles(context.Background(), []string{a, missing, b}, &opts, 2)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// Results stay in input order.
	if results[0].Path != a || !strings.Contains(results[0].HTML, ">Alpha</h1>") {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("missing file should record an error")
	}
	if results[2].Path != b || !strings.Contains(results[2].HTML, ">Beta</h1>") {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestConvertFilesBaseDirDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bib := "@book{kay96,\n  author = {Kay, Alan},\n  title = {Notes},\n  year = {1996}\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "refs.bib"), []byte(bib), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(doc, []byte("Cited [@kay96].\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := OptionsForMode(ModeUnified)
	opts.BibliographyFiles = []string{"refs.bib"}

	results := ConvertFiles(context.Background(), []string{doc}, &opts, 1)
	if results[0].Err != nil {
		t.Fatalf("ConvertFiles() error = %v", results[0].Err)
	}
	if !strings.Contains(results[0].HTML, `id="cite-kay96"`) {
		t.Errorf("relative bibliography not resolved against the document directory: %q", results[0].HTML)
	}
}

func TestConvertFilesCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ConvertFiles(ctx, []string{"whatever.md"}, nil, 1)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
}
