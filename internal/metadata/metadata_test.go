package metadata

import (
	"strings"
	"testing"
)

func TestExtractYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantPairs  map[string]string
		wantOffset int
	}{
		{
			name:       "basic front matter",
			input:      "---\ntitle: Hello\nauthor: Ada\n---\ncontent",
			wantPairs:  map[string]string{"title": "Hello", "author": "Ada"},
			wantOffset: len("---\ntitle: Hello\nauthor: Ada\n---\n"),
		},
		{
			name:       "dot-terminated block",
			input:      "---\ntitle: Hello\n...\ncontent",
			wantPairs:  map[string]string{"title": "Hello"},
			wantOffset: len("---\ntitle: Hello\n...\n"),
		},
		{
			name:       "quoted values stripped",
			input:      "---\ntitle: \"Quoted Title\"\nauthor: 'Ada'\n---\n",
			wantPairs:  map[string]string{"title": "Quoted Title", "author": "Ada"},
			wantOffset: len("---\ntitle: \"Quoted Title\"\nauthor: 'Ada'\n---\n"),
		},
		{
			name:       "unterminated block yields nothing",
			input:      "---\ntitle: Hello\ncontent without close",
			wantPairs:  nil,
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			list, offset := Extract(tt.input)
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
			if list.Len() != len(tt.wantPairs) {
				t.Fatalf("got %d pairs, want %d", list.Len(), len(tt.wantPairs))
			}
			for k, want := range tt.wantPairs {
				got, ok := list.Get(k)
				if !ok || got != want {
					t.Errorf("Get(%q) = %q, %v, want %q", k, got, ok, want)
				}
			}
		})
	}
}

func TestExtractPandoc(t *testing.T) {
	t.Parallel()

	input := "% The Title\n% Ada Lovelace\n% 1843-01-01\n\nContent"
	list, offset := Extract(input)

	want := map[string]string{
		"title":  "The Title",
		"author": "Ada Lovelace",
		"date":   "1843-01-01",
	}
	for k, v := range want {
		got, ok := list.Get(k)
		if !ok || got != v {
			t.Errorf("Get(%q) = %q, %v, want %q", k, got, ok, v)
		}
	}
	if !strings.HasPrefix(input[offset:], "\nContent") {
		t.Errorf("offset %d leaves %q", offset, input[offset:])
	}
}

func TestExtractMMD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantPairs int
		wantRest  string
	}{
		{
			name:      "simple key value block",
			input:     "Title: Doc\nAuthor: Ada\n\n# Heading",
			wantPairs: 2,
			wantRest:  "# Heading",
		},
		{
			name:      "first line not metadata means none at all",
			input:     "Just a paragraph\nTitle: Doc\n",
			wantPairs: 0,
			wantRest:  "Just a paragraph\nTitle: Doc\n",
		},
		{
			name:      "heading terminates immediately",
			input:     "# Heading\nTitle: Doc",
			wantPairs: 0,
			wantRest:  "# Heading\nTitle: Doc",
		},
		{
			name:      "bare URL is not metadata",
			input:     "https://example.com/page\n\ntext",
			wantPairs: 0,
			wantRest:  "https://example.com/page\n\ntext",
		},
		{
			name:      "colon without following space is not metadata",
			input:     "word:word\n",
			wantPairs: 0,
			wantRest:  "word:word\n",
		},
		{
			name:      "prose line with a colon is not metadata",
			input:     "Euler: $e^{i\\pi}+1=0$ is famous.\n",
			wantPairs: 0,
			wantRest:  "Euler: $e^{i\\pi}+1=0$ is famous.\n",
		},
		{
			name:      "block consuming the whole document is not metadata",
			input:     "Title: Doc\nAuthor: Ada",
			wantPairs: 0,
			wantRest:  "Title: Doc\nAuthor: Ada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			list, offset := Extract(tt.input)
			if list.Len() != tt.wantPairs {
				t.Errorf("got %d pairs, want %d", list.Len(), tt.wantPairs)
			}
			if got := tt.input[offset:]; got != tt.wantRest {
				t.Errorf("rest = %q, want %q", got, tt.wantRest)
			}
		})
	}
}

func TestListGet(t *testing.T) {
	t.Parallel()

	list := NewList()
	list.Add("Base Header Level", "2")
	list.Add("title", "first")
	list.Add("title", "second")

	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"Base Header Level", "2", true},
		{"baseheaderlevel", "2", true},
		{"BASE HEADER LEVEL", "2", true},
		{"title", "second", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := list.Get(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Get(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestListMerge(t *testing.T) {
	t.Parallel()

	base := NewList()
	base.Add("title", "from file")
	base.Add("author", "Ada")

	override := NewList()
	override.Add("Title", "from cli")

	base.Merge(override)

	if got, _ := base.Get("title"); got != "from cli" {
		t.Errorf("Get(title) = %q, want %q", got, "from cli")
	}
	// The overridden key moves to the end; no duplicate survives.
	items := base.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Key != "author" || items[1].Key != "Title" {
		t.Errorf("order = %q, %q, want author, Title", items[0].Key, items[1].Key)
	}
}

func TestFrontMatterRoundTrip(t *testing.T) {
	t.Parallel()

	list := NewList()
	list.Add("title", "Doc")
	list.Add("author", "Ada")

	block := list.FrontMatter()
	reparsed, _ := Extract(block)

	for _, it := range list.Items() {
		got, ok := reparsed.Get(it.Key)
		if !ok || got != it.Value {
			t.Errorf("round trip Get(%q) = %q, %v, want %q", it.Key, got, ok, it.Value)
		}
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	t.Run("yaml mapping", func(t *testing.T) {
		t.Parallel()
		list := ParseFile([]byte("title: Doc\nauthor: Ada\n"))
		if got, _ := list.Get("title"); got != "Doc" {
			t.Errorf("Get(title) = %q, want %q", got, "Doc")
		}
	})

	t.Run("malformed degrades to empty", func(t *testing.T) {
		t.Parallel()
		list := ParseFile([]byte("::: not metadata :::"))
		if list.Len() != 0 {
			t.Errorf("got %d pairs, want 0", list.Len())
		}
	})
}
