package mathtex

import (
	"strings"
	"testing"
)

func TestProtectRestoreInline(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	out := p.Protect("Euler: $e^{i\\pi}+1=0$ holds.")
	if strings.Contains(out, "$") {
		t.Errorf("Protect() left a dollar sign in %q", out)
	}
	if p.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", p.Count())
	}
	got := p.Restore(out)
	want := `Euler: <span class="math inline">\(e^{i\pi}+1=0\)</span> holds.`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProtectDisplayInline(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	out := p.Restore(p.Protect("$$a < b$$"))
	want := `<span class="math display">\[a &lt; b\]</span>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestProtectDisplayBlock(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	input := "before\n$$\nx^2 + y^2\n$$\nafter"
	out := p.Restore(p.Protect(input))
	want := "before\n<span class=\"math display\">\\[x^2 + y^2\\]</span>\nafter"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestProtectNoMathUnchanged(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	input := "plain text, no formulas"
	if got := p.Protect(input); got != input {
		t.Errorf("Protect() = %q, want input unchanged", got)
	}
	if p.Count() != 0 {
		t.Errorf("Count() = %d, want 0", p.Count())
	}
}

func TestProtectSkipsCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"inline code", "use `$HOME$` here"},
		{"fenced code", "```\n$x$\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewProtector()
			if got := p.Protect(tt.input); got != tt.input {
				t.Errorf("Protect(%q) = %q, want unchanged", tt.input, got)
			}
		})
	}
}

func TestProtectCurrencyLeftAlone(t *testing.T) {
	t.Parallel()

	tests := []string{
		"it costs $5 and $6 total",
		"a lone $ sign",
		"space before close $x $",
	}
	for _, input := range tests {
		p := NewProtector()
		if got := p.Protect(input); got != input {
			t.Errorf("Protect(%q) = %q, want unchanged", input, got)
		}
	}
}

func TestProtectEscapedDollar(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	input := `pay \$10 now`
	if got := p.Protect(input); got != input {
		t.Errorf("Protect(%q) = %q, want unchanged", input, got)
	}
}

func TestProtectUnclosedDisplayBlock(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	input := "text\n$$\nnever closed"
	if got := p.Protect(input); got != input {
		t.Errorf("Protect(%q) = %q, want unchanged", input, got)
	}
}

func TestRestoreOutOfRangePlaceholder(t *testing.T) {
	t.Parallel()

	p := NewProtector()
	p.Protect("$x$")
	input := spanStart + "9" + spanEnd
	if got := p.Restore(input); got != input {
		t.Errorf("Restore(%q) = %q, want untouched", input, got)
	}
}
