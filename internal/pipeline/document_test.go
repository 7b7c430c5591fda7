package pipeline

import (
	"strings"
	"testing"
)

func TestWrapDocumentDefaults(t *testing.T) {
	t.Parallel()

	got := WrapDocument("<p>body</p>", DocumentConfig{})

	if !strings.HasPrefix(got, "<!DOCTYPE html>\n") {
		t.Errorf("missing doctype in %q", got)
	}
	if !strings.Contains(got, `<html lang="en">`) {
		t.Errorf("default language not applied: %q", got)
	}
	if !strings.Contains(got, "<title>Document</title>") {
		t.Errorf("default title not applied: %q", got)
	}
	if !strings.Contains(got, "<body>\n<p>body</p>\n</body>") {
		t.Errorf("fragment not embedded: %q", got)
	}
}

func TestWrapDocumentAssets(t *testing.T) {
	t.Parallel()

	cfg := DocumentConfig{
		Title:       "Notes & Ideas",
		Language:    "fr",
		Stylesheets: []string{"main.css"},
		InlineCSS:   "body { margin: 0; }",
		Scripts:     []string{"app.js"},
	}
	got := WrapDocument("<p>x</p>", cfg)

	if !strings.Contains(got, "<title>Notes &amp; Ideas</title>") {
		t.Errorf("title not escaped: %q", got)
	}
	if !strings.Contains(got, `<html lang="fr">`) {
		t.Errorf("language not applied: %q", got)
	}
	link := strings.Index(got, `<link rel="stylesheet" href="main.css">`)
	style := strings.Index(got, "<style>\nbody { margin: 0; }\n</style>")
	head := strings.Index(got, "</head>")
	if link == -1 || style == -1 {
		t.Fatalf("stylesheet or inline css missing: %q", got)
	}
	if link > head || style > head {
		t.Errorf("head assets landed after </head>: %q", got)
	}
	script := strings.Index(got, `<script src="app.js"></script>`)
	body := strings.Index(got, "</body>")
	if script == -1 || script > body {
		t.Errorf("script not placed before </body>: %q", got)
	}
}

func TestTidyHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "blanks between blocks dropped",
			input: "<p>a</p>\n\n\n<p>b</p>",
			want:  "<p>a</p>\n<p>b</p>",
		},
		{
			name:  "single blank kept before text",
			input: "<p>a</p>\n\n\ninline text",
			want:  "<p>a</p>\n\ninline text",
		},
		{
			name:  "trailing spaces trimmed",
			input: "<p>a</p>   \n<p>b</p>\t",
			want:  "<p>a</p>\n<p>b</p>",
		},
		{
			name:  "pre content untouched",
			input: "<pre><code>x\n\n\ny\n</code></pre>\n<p>a</p>",
			want:  "<pre><code>x\n\n\ny\n</code></pre>\n<p>a</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TidyHTML(tt.input); got != tt.want {
				t.Errorf("TidyHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
