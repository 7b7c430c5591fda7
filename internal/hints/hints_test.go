package hints

import (
	"strings"
	"testing"
)

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{
		"./apexmark.yaml",
		"/home/u/.config/apexmark/config.yaml",
	})
	if !strings.HasPrefix(got, "\n  hint: ") {
		t.Errorf("hint prefix missing: %q", got)
	}
	if !strings.Contains(got, "--config") {
		t.Errorf("flag suggestion missing: %q", got)
	}
	if !strings.Contains(got, "/home/u/.config/apexmark/config.yaml") {
		t.Errorf("user config path missing: %q", got)
	}
}

func TestForConfigNotFoundNoUserPath(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound([]string{"./apexmark.yaml"})
	if strings.Contains(got, "or create") {
		t.Errorf("should not suggest creating a path: %q", got)
	}
}

func TestForThemeNotFound(t *testing.T) {
	t.Parallel()

	got := ForThemeNotFound([]string{"github", "plain"})
	if !strings.Contains(got, "available: github, plain") {
		t.Errorf("theme list missing: %q", got)
	}
	if ForThemeNotFound(nil) != "" {
		t.Error("empty list should produce no hint")
	}
}
