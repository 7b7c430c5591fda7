package tables

import (
	"regexp"
	"strings"
)

var (
	theadRegion = regexp.MustCompile(`(?s)<thead>.*?</thead>\s*`)
	thCell      = regexp.MustCompile(`(?s)<th[^>]*>(.*?)</th>`)
	tagStrip    = regexp.MustCompile(`<[^>]*>`)
)

// ConvertRelaxedTableHeaders removes the synthetic structure the table
// preprocessors left behind. Both repairs insert an all-empty header row, so
// a thead whose th cells are all empty is the per-table marker: it gets
// deleted, and every other table is left exactly as rendered. Returns the
// input unchanged when no table carries the marker.
func ConvertRelaxedTableHeaders(html string) string {
	if !strings.Contains(html, "<thead>") {
		return html
	}

	var b strings.Builder
	b.Grow(len(html))
	rest := html
	changed := false
	for {
		start := strings.Index(rest, "<table")
		if start == -1 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "</table>")
		if end == -1 {
			b.WriteString(rest)
			break
		}
		end += start + len("</table>")

		b.WriteString(rest[:start])
		table := rest[start:end]
		fixed := fixTable(table)
		b.WriteString(fixed)
		changed = changed || fixed != table
		rest = rest[end:]
	}
	if !changed {
		return html
	}
	return b.String()
}

func fixTable(table string) string {
	theadLoc := theadRegion.FindStringIndex(table)
	if theadLoc == nil {
		return table
	}
	if !theadIsEmpty(table[theadLoc[0]:theadLoc[1]]) {
		return table
	}
	return table[:theadLoc[0]] + table[theadLoc[1]:]
}

// theadIsEmpty reports whether every th cell renders to whitespace.
func theadIsEmpty(thead string) bool {
	cells := thCell.FindAllStringSubmatch(thead, -1)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if strings.TrimSpace(tagStrip.ReplaceAllString(c[1], "")) != "" {
			return false
		}
	}
	return true
}
