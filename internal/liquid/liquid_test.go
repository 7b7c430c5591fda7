package liquid

import (
	"strings"
	"testing"
)

func TestProtectRestore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		count int
	}{
		{
			name:  "single tag",
			input: "before {% assign x = 1 %} after",
			count: 1,
		},
		{
			name:  "multiple tags",
			input: "{% if a %}yes{% endif %}",
			count: 2,
		},
		{
			name:  "tag spanning markdown syntax",
			input: "# Head\n\n{% raw %}**not bold**{% endraw %}\n",
			count: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewProtector()
			protected := p.Protect(tt.input)
			if strings.Contains(protected, "{%") {
				t.Errorf("tag text survives protection: %q", protected)
			}
			if p.Count() != tt.count {
				t.Errorf("Count() = %d, want %d", p.Count(), tt.count)
			}
			restored := p.Restore(protected)
			if restored != tt.input {
				t.Errorf("round trip = %q, want %q", restored, tt.input)
			}
		})
	}
}

func TestProtectNoOp(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	input := "no tags here"
	if got := p.Protect(input); got != input {
		t.Errorf("Protect(%q) = %q, want unchanged", input, got)
	}
	if p.Count() != 0 {
		t.Errorf("Count() = %d, want 0", p.Count())
	}
}

func TestProtectSkipsCode(t *testing.T) {
	t.Parallel()

	t.Run("fenced block", func(t *testing.T) {
		t.Parallel()
		p := NewProtector()
		input := "```\n{% literal %}\n```\n"
		if got := p.Protect(input); got != input {
			t.Errorf("fenced code rewritten: %q", got)
		}
	})

	t.Run("inline span", func(t *testing.T) {
		t.Parallel()
		p := NewProtector()
		input := "use `{% tag %}` literally"
		if got := p.Protect(input); got != input {
			t.Errorf("inline code rewritten: %q", got)
		}
	})
}

func TestRestoreUnknownIndexLeftAlone(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	protected := p.Protect("{% x %}")
	// Restore on unrelated text keeps it untouched.
	if got := p.Restore("plain"); got != "plain" {
		t.Errorf("Restore(plain) = %q", got)
	}
	if got := p.Restore(protected); got != "{% x %}" {
		t.Errorf("Restore() = %q, want original tag", got)
	}
}
