package utils

import (
	"regexp"
	"strings"
)

var (
	multiSpace     = regexp.MustCompile(`\s{2,}`)
	thousandsComma = regexp.MustCompile(`(\d),(\d{3})([^\d]|$)`)
)

// SplitRow splits a line into cells, trying delimiters in priority order:
// tab, comma, then runs of two or more spaces. Comma splitting only applies
// when it yields at least two non-empty cells, and commas acting as
// thousands separators ("1,234.56") are protected from it. Falls back to the
// whole trimmed line as a single cell.
func SplitRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if strings.Contains(trimmed, "\t") {
		return cleanCells(strings.Split(trimmed, "\t"))
	}

	if strings.Contains(trimmed, ",") {
		masked := maskThousands(trimmed)
		if strings.Contains(masked, ",") {
			cells := cleanCells(strings.Split(masked, ","))
			for i, c := range cells {
				cells[i] = strings.ReplaceAll(c, "\x00", ",")
			}
			if len(cells) >= 2 {
				return cells
			}
		}
	}

	if multiSpace.MatchString(trimmed) {
		return cleanCells(multiSpace.Split(trimmed, -1))
	}

	return []string{trimmed}
}

// maskThousands hides commas sitting between a digit and a three-digit group
// so the comma splitter cannot break currency values apart.
func maskThousands(s string) string {
	for {
		replaced := thousandsComma.ReplaceAllString(s, "$1\x00$2$3")
		if replaced == s {
			return replaced
		}
		s = replaced
	}
}

func cleanCells(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
