// Package pnl turns normalized P&L text into a categorized statement.
package pnl

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/utils"
)

var (
	accountCode  = regexp.MustCompile(`^(\d{3,4})\b[\s.\-]*`)
	summaryTerms = regexp.MustCompile(`\b(total|subtotal|grand|net)\b`)
	// Whole-line fallback for rows the tokenizer could not split:
	// "<label>[ :-]+<amount>".
	wholeLine = regexp.MustCompile(`^(.*?)[\s:\-]+((?:\(|-)?\$?[0-9][0-9,]*(?:\.[0-9]+)?\)?-?)$`)

	incomeKeywords       = []string{"income", "revenue", "rent"}
	otherExpenseKeywords = []string{"depreciation", "amortization", "interest", "capital"}
)

// Extract walks normalized lines and accumulates labeled amounts into a
// statement. Returns the statement and the number of rows it accepted.
func Extract(lines []string) (*dto.Statement, int) {
	stmt := dto.NewStatement()
	rows := 0

	var tracker utils.TableTracker
	for _, line := range lines {
		cells := utils.SplitRow(line)
		class := tracker.Observe(cells)
		if class == utils.RowTableHeader || len(cells) == 0 {
			continue
		}

		label, amount := extractLabelAmount(cells)
		if amount == nil {
			continue
		}

		label = sanitizeLabel(label)
		code, label := splitAccountCode(label)
		if label == "" || utils.IsMonthLabel(label) {
			continue
		}
		// Summary rows would double-count already-itemized figures; an
		// account-coded row is always an item, never a summary.
		if code == "" && summaryTerms.MatchString(strings.ToLower(label)) {
			continue
		}

		stmt.Section(classify(code, label)).Add(label, *amount)
		rows++
	}
	return stmt, rows
}

// extractLabelAmount takes the right-most numeric cell as the amount and the
// leading non-numeric cells as the label. Inside a monthly table the
// right-most cell is the annual/summary column, so intermediate month values
// never become line items.
func extractLabelAmount(cells []string) (string, *decimal.Decimal) {
	if len(cells) == 1 {
		m := wholeLine.FindStringSubmatch(cells[0])
		if m == nil {
			return "", nil
		}
		return m[1], utils.ParseAmount(m[2])
	}

	amountIdx := -1
	for i := len(cells) - 1; i >= 0; i-- {
		if utils.ParseAmount(cells[i]) != nil {
			amountIdx = i
			break
		}
	}
	if amountIdx <= 0 {
		return "", nil
	}

	// The label ends at the first numeric cell after position zero; a bare
	// leading account code stays part of the label.
	labelEnd := amountIdx
	for i := 1; i < amountIdx; i++ {
		if utils.ParseAmount(cells[i]) != nil {
			labelEnd = i
			break
		}
	}
	return strings.Join(cells[:labelEnd], " "), utils.ParseAmount(cells[amountIdx])
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimRight(label, ":-")
	return strings.TrimSpace(label)
}

// splitAccountCode peels a leading account-code digit run off the label.
func splitAccountCode(label string) (string, string) {
	m := accountCode.FindStringSubmatch(label)
	if m == nil {
		return "", label
	}
	rest := strings.TrimSpace(label[len(m[0]):])
	if rest == "" {
		// A bare number is not a label.
		return "", ""
	}
	return m[1], rest
}

// classify routes a line item to a section: account codes 4xxx are income,
// 6xxx expenses, 7xxx other expenses; without a code, keywords decide, and
// expense is the default bucket.
func classify(code, label string) dto.SectionKind {
	if code != "" {
		switch code[0] {
		case '4':
			return dto.SectionIncome
		case '6':
			return dto.SectionExpense
		case '7':
			return dto.SectionOtherExpense
		}
	}
	lower := strings.ToLower(label)
	for _, kw := range incomeKeywords {
		if strings.Contains(lower, kw) {
			return dto.SectionIncome
		}
	}
	for _, kw := range otherExpenseKeywords {
		if strings.Contains(lower, kw) {
			return dto.SectionOtherExpense
		}
	}
	return dto.SectionExpense
}
