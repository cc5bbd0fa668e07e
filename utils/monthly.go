package utils

import "strings"

// RowClass is what the monthly-table tracker decided about one row.
type RowClass int

const (
	// RowOutside is a normal row outside any month-by-month table.
	RowOutside RowClass = iota
	// RowTableHeader is the header row that opened a monthly table. It
	// carries no line item and must be skipped.
	RowTableHeader
	// RowInTable is a data row inside a monthly table. Only its right-most
	// numeric cell (the annual/summary column) may be read.
	RowInTable
)

var monthNames = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true,
}

var summaryHeaders = map[string]bool{
	"ytd": true, "total": true, "grand total": true,
}

// IsMonthLabel reports whether a cell is a bare month name.
func IsMonthLabel(cell string) bool {
	return monthNames[normalizeHeaderCell(cell)]
}

func normalizeHeaderCell(cell string) string {
	c := strings.ToLower(strings.TrimSpace(cell))
	c = strings.TrimSuffix(c, ".")
	// "Jan 2024" style header cells still count as month headers.
	if fields := strings.Fields(c); len(fields) == 2 && monthNames[fields[0]] {
		return fields[0]
	}
	return c
}

// TableTracker is the two-state machine that distinguishes month-by-month
// breakdown tables (to be ignored, save their summary column) from annual
// summary rows (to be parsed).
type TableTracker struct {
	inTable bool
}

// Observe classifies the next tokenized row and advances the state machine.
// Rows must be fed in document order.
func (t *TableTracker) Observe(cells []string) RowClass {
	if len(cells) == 0 {
		t.inTable = false
		return RowOutside
	}

	months := 0
	summary := false
	for _, cell := range cells {
		norm := normalizeHeaderCell(cell)
		if monthNames[norm] {
			months++
		}
		if summaryHeaders[norm] {
			summary = true
		}
	}
	if months >= 3 || (months >= 1 && summary) {
		t.inTable = true
		return RowTableHeader
	}

	if t.inTable {
		if len(cells) <= 1 {
			t.inTable = false
			return RowOutside
		}
		return RowInTable
	}
	return RowOutside
}
