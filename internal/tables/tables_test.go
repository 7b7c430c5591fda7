package tables

import (
	"strings"
	"testing"
)

func TestProcessRelaxedTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "two rows without separator get an empty header",
			input:    "A | B\n1 | 2",
			expected: "  |  \n--- | ---\nA | B\n1 | 2",
		},
		{
			name:     "single row is not a table",
			input:    "A | B",
			expected: "A | B",
		},
		{
			name:     "pipe-led rows get unpadded separator",
			input:    "| A | B |\n| 1 | 2 |",
			expected: "|   |   |\n|---|---|\n| A | B |\n| 1 | 2 |",
		},
		{
			name:     "table with real separator untouched",
			input:    "A | B\n--- | ---\n1 | 2",
			expected: "A | B\n--- | ---\n1 | 2",
		},
		{
			name:     "column count mismatch flushes buffer",
			input:    "A | B\n1 | 2 | 3",
			expected: "A | B\n1 | 2 | 3",
		},
		{
			name:     "blank line separates candidate runs",
			input:    "A | B\n\n1 | 2",
			expected: "A | B\n\n1 | 2",
		},
		{
			name:     "three-column relaxed table",
			input:    "a | b | c\n1 | 2 | 3\n4 | 5 | 6",
			expected: "  |  |  \n--- | --- | ---\na | b | c\n1 | 2 | 3\n4 | 5 | 6",
		},
		{
			name:     "fenced code left alone",
			input:    "```\nA | B\n1 | 2\n```",
			expected: "```\nA | B\n1 | 2\n```",
		},
		{
			name:     "no pipes no change",
			input:    "just text\nmore text",
			expected: "just text\nmore text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ProcessRelaxedTables(tt.input)
			if got != tt.expected {
				t.Errorf("ProcessRelaxedTables() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProcessRelaxedTablesIdempotent(t *testing.T) {
	t.Parallel()

	input := "A | B\n--- | ---\n1 | 2\n"
	once := ProcessRelaxedTables(input)
	twice := ProcessRelaxedTables(once)
	if once != input {
		t.Errorf("first pass changed already-valid table: %q", once)
	}
	if twice != once {
		t.Errorf("second pass not idempotent: %q vs %q", twice, once)
	}
}

func TestProcessHeaderlessTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "separator followed by row gets empty header",
			input:    "| --- | --- |\n| 1 | 2 |",
			expected: "|   |   |\n| --- | --- |\n| 1 | 2 |",
		},
		{
			name:     "separator preceded by row untouched",
			input:    "| A | B |\n| --- | --- |\n| 1 | 2 |",
			expected: "| A | B |\n| --- | --- |\n| 1 | 2 |",
		},
		{
			name:     "lookahead skips blank lines",
			input:    "| --- | --- |\n\n| 1 | 2 |",
			expected: "|   |   |\n| --- | --- |\n\n| 1 | 2 |",
		},
		{
			name:     "separator with nothing after untouched",
			input:    "| --- | --- |",
			expected: "| --- | --- |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ProcessHeaderlessTables(tt.input)
			if got != tt.expected {
				t.Errorf("ProcessHeaderlessTables() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConvertRelaxedTableHeaders(t *testing.T) {
	t.Parallel()

	t.Run("empty thead deleted", func(t *testing.T) {
		t.Parallel()
		input := "<table>\n<thead>\n<tr>\n<th></th>\n<th></th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>1</td>\n<td>2</td>\n</tr>\n</tbody>\n</table>"
		got := ConvertRelaxedTableHeaders(input)
		if strings.Contains(got, "<thead>") {
			t.Errorf("thead not deleted: %q", got)
		}
		if !strings.Contains(got, "<td>1</td>") {
			t.Errorf("body rows lost: %q", got)
		}
	})

	t.Run("real header untouched", func(t *testing.T) {
		t.Parallel()
		input := "<table>\n<thead>\n<tr>\n<th>A</th>\n<th>B</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>1</td>\n<td>2</td>\n</tr>\n</tbody>\n</table>"
		if got := ConvertRelaxedTableHeaders(input); got != input {
			t.Errorf("ConvertRelaxedTableHeaders() = %q, want unchanged", got)
		}
	})

	t.Run("marker scoped to its own table", func(t *testing.T) {
		t.Parallel()
		repaired := "<table>\n<thead>\n<tr>\n<th></th>\n<th></th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>1</td>\n<td>2</td>\n</tr>\n</tbody>\n</table>"
		ordinary := "<table>\n<thead>\n<tr>\n<th>H1</th>\n<th>H2</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>a</td>\n<td>b</td>\n</tr>\n</tbody>\n</table>"
		got := ConvertRelaxedTableHeaders(repaired + "\n" + ordinary)
		if !strings.Contains(got, "<th>H1</th>") {
			t.Errorf("ordinary table header demoted: %q", got)
		}
		if strings.Count(got, "<thead>") != 1 {
			t.Errorf("want exactly the ordinary thead kept: %q", got)
		}
	})

	t.Run("no table no change", func(t *testing.T) {
		t.Parallel()
		input := "<p>no tables here</p>"
		if got := ConvertRelaxedTableHeaders(input); got != input {
			t.Errorf("ConvertRelaxedTableHeaders() = %q, want unchanged", got)
		}
	})
}
