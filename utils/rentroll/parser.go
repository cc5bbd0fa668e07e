// Package rentroll parses per-lot rows out of rent-roll text and validates
// the resulting batch.
package rentroll

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/utils"
)

var trailingDigits = regexp.MustCompile(`(\d{1,4})\D*$`)

var (
	occupiedWords = map[string]bool{"occupied": true, "rented": true, "leased": true, "o": true}
	vacantWords   = map[string]bool{"vacant": true, "empty": true, "available": true, "v": true}
)

// CollectTotalValues gathers every numeric value appearing on a line that
// contains the word "total". A rent equal to one of these values was almost
// certainly scraped from a Total column, not a Rent column.
func CollectTotalValues(lines []string) map[string]struct{} {
	totals := make(map[string]struct{})
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "total") {
			continue
		}
		for _, cell := range utils.SplitRow(line) {
			if v := utils.ParseAmount(cell); v != nil {
				totals[v.String()] = struct{}{}
			}
		}
	}
	return totals
}

// ParseRows converts lines into rent-roll rows. Rows whose lot token yields
// no digits are dropped; rents matching a Total-line value are discarded and
// reported through the returned matched-total count.
func ParseRows(lines []string, totals map[string]struct{}) ([]dto.RentRollRow, int) {
	rows := make([]dto.RentRollRow, 0, len(lines))
	matchedTotals := 0

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "total") {
			continue
		}
		cells := utils.SplitRow(line)
		if len(cells) == 0 {
			continue
		}

		lotToken := cells[0]
		m := trailingDigits.FindStringSubmatch(lotToken)
		if m == nil {
			continue
		}
		numeric, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		row := dto.RentRollRow{
			LotNumber:     fmt.Sprintf("%03d", numeric),
			LotNumeric:    numeric,
			OriginalToken: lotToken,
		}

		statusSeen := false
		var tenantParts []string
		for _, cell := range cells[1:] {
			lower := strings.ToLower(strings.TrimSpace(cell))
			if occupiedWords[lower] {
				row.Occupied = true
				statusSeen = true
				continue
			}
			if vacantWords[lower] {
				row.Occupied = false
				statusSeen = true
				continue
			}
			if v := utils.ParseAmount(cell); v != nil {
				if row.Rent != nil {
					continue
				}
				if _, hit := totals[v.String()]; hit {
					matchedTotals++
					continue
				}
				row.Rent = v
				continue
			}
			tenantParts = append(tenantParts, strings.TrimSpace(cell))
		}
		row.Tenant = strings.Join(tenantParts, " ")

		// Without an explicit status token, a tenant or a rent value is the
		// occupancy signal.
		if !statusSeen {
			row.Occupied = row.Tenant != "" || row.Rent != nil
		}

		rows = append(rows, row)
	}
	return rows, matchedTotals
}

// rentKey gives a stable map key for a rent value.
func rentKey(d decimal.Decimal) string {
	return d.String()
}
