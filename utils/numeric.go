package utils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9.,\-]`)

// ParseAmount resolves a cell string into a signed decimal. It handles
// currency symbols, thousands separators, parenthesis-negative and
// trailing-minus conventions. Returns nil on empty or non-numeric input;
// callers must treat nil as "field absent", never as zero.
func ParseAmount(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// Currency symbols may sit outside or inside the parens ("$(1,234.50)",
	// "($1,234.50)"), so paren detection cannot anchor on the first byte.
	negative := strings.Contains(s, "(") && strings.Contains(s, ")")

	cleaned := nonNumeric.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	if strings.HasSuffix(cleaned, "-") {
		negative = true
		cleaned = strings.TrimSuffix(cleaned, "-")
	}
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	// The negative marker only applies to a value that parsed non-negative;
	// "-1,234.50" already carries its own sign.
	if negative && d.Sign() >= 0 {
		d = d.Neg()
	}
	return &d
}
