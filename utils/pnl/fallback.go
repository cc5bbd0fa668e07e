package pnl

import (
	"regexp"
	"strings"

	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/utils"
)

// lineItem matches "<label> <amount>" lines in fully collapsed text. The
// label must start with a letter so stray numeric rows do not match.
var lineItem = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 &/.'\-]*?)[\s:\-]+\$?\(?-?[0-9][0-9,]*(?:\.[0-9]+)?\)?-?$`)

var amountTail = regexp.MustCompile(`[\s:\-](\$?\(?-?[0-9][0-9,]*(?:\.[0-9]+)?\)?-?)$`)

// FallbackScan is the lowest-trust extraction strategy: a line-anchored
// label/amount sweep over normalized text. It runs only when the rule parser
// under-extracted, and its output is merged at fallback trust.
func FallbackScan(text string) (*dto.Statement, int) {
	stmt := dto.NewStatement()
	rows := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !lineItem.MatchString(line) {
			continue
		}
		tail := amountTail.FindStringSubmatch(line)
		if tail == nil {
			continue
		}
		amount := utils.ParseAmount(tail[1])
		if amount == nil {
			continue
		}

		label := sanitizeLabel(strings.TrimSuffix(line, tail[0]))
		if label == "" || utils.IsMonthLabel(label) {
			continue
		}
		if summaryTerms.MatchString(strings.ToLower(label)) {
			continue
		}

		stmt.Section(classify("", label)).Add(label, *amount)
		rows++
	}
	return stmt, rows
}
