// Package tables repairs relaxed tables (missing separator rows) and
// headerless tables (separator without header) so the downstream table
// extension parses them, and cleans the synthetic structure back out of the
// rendered HTML.
package tables

import (
	"regexp"
	"strings"
)

// separatorPattern matches a true table separator row: only dashes, colons,
// pipes, pluses and whitespace, containing at least one dash and one pipe.
var separatorPattern = regexp.MustCompile(`^[\s|:+-]+$`)

// hrPattern matches a horizontal rule: three or more dashes, no pipe.
var hrPattern = regexp.MustCompile(`^\s*-{3,}\s*$`)

func isSeparatorRow(line string) bool {
	return separatorPattern.MatchString(line) &&
		strings.Contains(line, "-") &&
		strings.Contains(line, "|")
}

func isTableRow(line string) bool {
	return strings.Contains(line, "|") && !isSeparatorRow(line)
}

// columnCount derives the column count from pipe count adjusted for an
// outer-pipe row style.
func columnCount(line string) (count int, leadingPipe bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, false
	}
	leadingPipe = trimmed[0] == '|'
	pipes := strings.Count(trimmed, "|")
	if leadingPipe {
		if strings.HasSuffix(trimmed, "|") {
			return pipes - 1, true
		}
		return pipes, true
	}
	return pipes + 1, false
}

// bufferedRow is one candidate table row awaiting a flush decision.
type bufferedRow struct {
	text        string
	columns     int
	leadingPipe bool
}

// syntheticSeparator builds the separator row inserted under the synthetic
// header. Pipe-led rows get the unpadded |---|---| form because a
// later smart-typography pass converts spaced dash runs to em dashes;
// pipe-less rows get the padded form matching their source style.
func syntheticSeparator(columns int, leadingPipe bool) string {
	if columns < 1 {
		columns = 1
	}
	if leadingPipe {
		return "|" + strings.Repeat("---|", columns)
	}
	cells := make([]string, columns)
	for i := range cells {
		cells[i] = "---"
	}
	return strings.Join(cells, " | ")
}

// ProcessRelaxedTables buffers consecutive pipe rows with matching column
// counts and, when two or more rows flush together, inserts a synthetic
// all-empty header row plus separator above them. Every source row stays a
// data row, and the empty header is the per-table marker the HTML cleanup
// pass keys on, so tables that needed no repair are never touched. A lone
// buffered row is not a table and is emitted verbatim. Returns the input
// unchanged when no repair happened.
func ProcessRelaxedTables(text string) string {
	if !strings.Contains(text, "|") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+8)
	var buf []bufferedRow
	changed := false
	inFence := false

	flush := func() {
		if len(buf) >= 2 {
			out = append(out, emptyHeaderRow(buf[0].columns, buf[0].leadingPipe))
			out = append(out, syntheticSeparator(buf[0].columns, buf[0].leadingPipe))
			for _, r := range buf {
				out = append(out, r.text)
			}
			changed = true
		} else {
			for _, r := range buf {
				out = append(out, r.text)
			}
		}
		buf = buf[:0]
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			flush()
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		switch {
		case isSeparatorRow(trimmed) && trimmed != "":
			// A real separator: this table needs no repair. Emit the buffer
			// verbatim along with the separator.
			for _, r := range buf {
				out = append(out, r.text)
			}
			buf = buf[:0]
			out = append(out, line)
			// Pass rows through until the table ends.
			for i+1 < len(lines) && isTableRow(strings.TrimSpace(lines[i+1])) {
				i++
				out = append(out, lines[i])
			}
		case hrPattern.MatchString(line):
			flush()
			out = append(out, line)
		case trimmed == "":
			flush()
			out = append(out, line)
		case isTableRow(trimmed):
			cols, leading := columnCount(line)
			if len(buf) > 0 && cols != buf[0].columns {
				flush()
			}
			buf = append(buf, bufferedRow{text: line, columns: cols, leadingPipe: leading})
		default:
			flush()
			out = append(out, line)
		}
	}
	flush()

	if !changed {
		return text
	}
	return strings.Join(out, "\n")
}

// ProcessHeaderlessTables finds a separator row that is not preceded by a
// table row but is followed, possibly after blank lines, by one, and inserts
// a synthetic all-empty header row before it. The empty header is the signal
// the HTML cleanup pass uses to delete the meaningless thead.
func ProcessHeaderlessTables(text string) string {
	if !strings.Contains(text, "|") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+4)
	changed := false
	inFence := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence || !isSeparatorRow(trimmed) || trimmed == "" {
			out = append(out, line)
			continue
		}

		prevIsRow := i > 0 && isTableRow(strings.TrimSpace(lines[i-1]))
		if prevIsRow {
			out = append(out, line)
			continue
		}
		// Look ahead past blank lines for a table row.
		follows := false
		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			follows = isTableRow(next)
			break
		}
		if !follows {
			out = append(out, line)
			continue
		}

		cols, leading := columnCount(line)
		out = append(out, emptyHeaderRow(cols, leading))
		out = append(out, line)
		changed = true
	}

	if !changed {
		return text
	}
	return strings.Join(out, "\n")
}

// emptyHeaderRow synthesizes an all-empty header row with the given column
// count, matching the separator's pipe style.
func emptyHeaderRow(columns int, leadingPipe bool) string {
	if columns < 1 {
		columns = 1
	}
	if leadingPipe {
		return "|" + strings.Repeat("   |", columns)
	}
	cells := make([]string, columns)
	for i := range cells {
		cells[i] = "  "
	}
	return strings.Join(cells, "|")
}
