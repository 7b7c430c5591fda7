package attrs

import (
	"testing"
)

func TestParseIAL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "id only",
			content:  "#custom-id",
			expected: `id="custom-id"`,
		},
		{
			name:     "classes accumulate",
			content:  ".first .second",
			expected: `class="first second"`,
		},
		{
			name:     "id class and extras in order",
			content:  "#top .wide rel=nofollow",
			expected: `id="top" class="wide" rel="nofollow"`,
		},
		{
			name:     "last id wins",
			content:  "#one #two",
			expected: `id="two"`,
		},
		{
			name:     "double-quoted value with space",
			content:  `title="Hello World"`,
			expected: `title="Hello World"`,
		},
		{
			name:     "single-quoted value with escape",
			content:  `title='it\'s'`,
			expected: `title="it&#39;s"`,
		},
		{
			name:     "curly-quoted value",
			content:  "title=“Smart Value”",
			expected: `title="Smart Value"`,
		},
		{
			name:     "unquoted value stops at whitespace",
			content:  "width=50 height=20",
			expected: `width="50" height="20"`,
		},
		{
			name:     "empty content",
			content:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseIAL(tt.content).String()
			if got != tt.expected {
				t.Errorf("ParseIAL(%q).String() = %q, want %q", tt.content, got, tt.expected)
			}
		})
	}
}

func TestIsALDReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		name    string
		ok      bool
	}{
		{"refname", "refname", true},
		{"  refname  ", "refname", true},
		{"#id", "", false},
		{".class", "", false},
		{"key=value", "", false},
		{"two words", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		name, ok := IsALDReference(tt.content)
		if name != tt.name || ok != tt.ok {
			t.Errorf("IsALDReference(%q) = %q, %v, want %q, %v",
				tt.content, name, ok, tt.name, tt.ok)
		}
	}
}

func TestExtractALDs(t *testing.T) {
	t.Parallel()

	input := "para one\n{:note: .callout #n1}\npara two\n"
	text, list := ExtractALDs(input)

	if text != "para one\npara two\n" {
		t.Errorf("text = %q, want definition line removed", text)
	}
	if list.Len() != 1 {
		t.Fatalf("got %d definitions, want 1", list.Len())
	}
	a, ok := list.Lookup("note")
	if !ok {
		t.Fatal("Lookup(note) failed")
	}
	if got := a.String(); got != `id="n1" class="callout"` {
		t.Errorf("attrs = %q, want %q", got, `id="n1" class="callout"`)
	}
	if _, ok := list.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestExtractALDsNoDefinitions(t *testing.T) {
	t.Parallel()

	input := "plain text\n{: #ial-not-ald}\n"
	text, list := ExtractALDs(input)
	if text != input {
		t.Errorf("text changed without definitions: %q", text)
	}
	if list.Len() != 0 {
		t.Errorf("got %d definitions, want 0", list.Len())
	}
}

func TestPreprocessIAL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "blank line inserted after content",
			input:    "A paragraph.\n{: .note}",
			expected: "A paragraph.\n\n{: .note}",
		},
		{
			name:     "already separated unchanged",
			input:    "A paragraph.\n\n{: .note}",
			expected: "A paragraph.\n\n{: .note}",
		},
		{
			name:     "consecutive IAL lines get one separator",
			input:    "text\n{: .a}\n{: .b}",
			expected: "text\n\n{: .a}\n{: .b}",
		},
		{
			name:     "toc rewritten to marker",
			input:    "{:toc}",
			expected: "<!--TOC-->",
		},
		{
			name:     "toc with options",
			input:    "{: toc max-depth=2}",
			expected: "<!--TOC max-depth=2-->",
		},
		{
			name:     "fenced code untouched",
			input:    "```\ncode\n{: .note}\n```",
			expected: "```\ncode\n{: .note}\n```",
		},
		{
			name:     "no IAL no change",
			input:    "nothing here",
			expected: "nothing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PreprocessIAL(tt.input)
			if got != tt.expected {
				t.Errorf("PreprocessIAL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
