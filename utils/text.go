package utils

import (
	"regexp"
	"strings"
)

var (
	horizontalWS = regexp.MustCompile(`[ \t]+`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
	pageBreaks   = regexp.MustCompile(`\f|\x{000B}`)
)

// NormalizeText canonicalizes whitespace in extracted document text: CRLF/CR
// become LF, page-break artifacts are stripped, runs of horizontal whitespace
// collapse to a single space, blank-line runs collapse, and the result is
// trimmed. Purely lexical; no semantic loss.
func NormalizeText(text string) string {
	s := unifyLineEndings(text)
	s = pageBreaks.ReplaceAllString(s, "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalWS.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// NormalizeLines canonicalizes line structure while preserving intra-line
// spacing, which the row tokenizer needs to detect column gaps. Returns the
// non-structural lines of the document in order, with blank-line runs
// collapsed to a single blank line (blank lines stay: the monthly-table
// classifier keys off them).
func NormalizeLines(text string) []string {
	s := unifyLineEndings(text)
	s = pageBreaks.ReplaceAllString(s, "\n")

	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	blank := false
	for _, line := range raw {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	// Drop a trailing blank.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func unifyLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
