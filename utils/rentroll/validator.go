package rentroll

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
)

// Validate flags duplicate lots, missing rents and sequence anomalies on a
// parsed batch, mutating per-row flags in place, and computes the summary
// statistics. matchedTotals is the count of rent values discarded for
// matching a Total-line figure.
func Validate(rows []dto.RentRollRow, matchedTotals int, pol config.Policy) ([]dto.ValidationWarning, dto.RentRollSummary) {
	warnings := []dto.ValidationWarning{}

	if matchedTotals > 0 {
		warnings = append(warnings, dto.ValidationWarning{
			Code:     dto.WarnMatchedTotal,
			Message:  fmt.Sprintf("%d rent value(s) matched a Total-line figure and were discarded", matchedTotals),
			Severity: dto.SeverityWarning,
		})
	}

	// Duplicates are flagged, never merged.
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.LotNumber]++
	}
	duplicates := []string{}
	for lot, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, lot)
		}
	}
	sort.Strings(duplicates)
	if len(duplicates) > 0 {
		for i := range rows {
			if counts[rows[i].LotNumber] > 1 {
				rows[i].IsDuplicate = true
			}
		}
		warnings = append(warnings, dto.ValidationWarning{
			Code:     dto.WarnDuplicateLots,
			Message:  fmt.Sprintf("duplicate lot numbers: %v", duplicates),
			Severity: dto.SeverityWarning,
		})
	}

	missingRent := 0
	for i := range rows {
		if rows[i].Occupied && rows[i].Rent == nil {
			rows[i].MissingRent = true
			missingRent++
		}
	}
	if missingRent > 0 {
		warnings = append(warnings, dto.ValidationWarning{
			Code:     dto.WarnMissingRent,
			Message:  fmt.Sprintf("%d occupied lot(s) have no rent value", missingRent),
			Severity: dto.SeverityWarning,
		})
	}

	if w := sequenceWarning(rows, pol); w != nil {
		warnings = append(warnings, *w)
	}

	return warnings, summarize(rows)
}

// sequenceWarning fires only at portfolio scale; small parks are expected to
// have gaps in their lot numbering and must not be penalized.
func sequenceWarning(rows []dto.RentRollRow, pol config.Policy) *dto.ValidationWarning {
	if len(rows) < pol.SequenceMinLots {
		return nil
	}

	seen := make(map[int]bool, len(rows))
	nums := make([]int, 0, len(rows))
	for _, row := range rows {
		if !seen[row.LotNumeric] {
			seen[row.LotNumeric] = true
			nums = append(nums, row.LotNumeric)
		}
	}
	if len(nums) < 2 {
		return nil
	}
	sort.Ints(nums)

	maxGap := 0
	for i := 1; i < len(nums); i++ {
		if gap := nums[i] - nums[i-1] - 1; gap > maxGap {
			maxGap = gap
		}
	}
	span := nums[len(nums)-1] - nums[0] + 1
	gapRatio := 1 - float64(len(nums))/float64(span)

	if gapRatio > pol.SequenceGapRatio || maxGap > pol.SequenceMaxGap {
		return &dto.ValidationWarning{
			Code: dto.WarnNonSequential,
			Message: fmt.Sprintf("lot numbering is non-sequential: %.0f%% of the range is missing, largest gap %d",
				gapRatio*100, maxGap),
			Severity: dto.SeverityInfo,
		}
	}
	return nil
}

// summarize computes batch statistics. Rent-derived figures only count
// occupied rows with a known rent; rents are monthly, so annual income is
// the occupied-rent sum times twelve.
func summarize(rows []dto.RentRollRow) dto.RentRollSummary {
	summary := dto.RentRollSummary{TotalLots: len(rows)}

	sum := decimal.Zero
	rentCounts := make(map[string]int)
	rentValues := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if !row.Occupied || row.Rent == nil {
			continue
		}
		summary.OccupiedLots++
		sum = sum.Add(*row.Rent)
		key := rentKey(*row.Rent)
		rentCounts[key]++
		rentValues[key] = *row.Rent
	}
	if summary.OccupiedLots == 0 {
		return summary
	}

	avg := sum.Div(decimal.NewFromInt(int64(summary.OccupiedLots))).Round(2)
	summary.AverageRent = avg.InexactFloat64()

	mode := decimal.Zero
	best := 0
	for key, n := range rentCounts {
		v := rentValues[key]
		if n > best || (n == best && v.LessThan(mode)) {
			best = n
			mode = v
		}
	}
	summary.ModeRent = mode.InexactFloat64()

	summary.TotalAnnualIncome = sum.Mul(decimal.NewFromInt(12)).InexactFloat64()

	occupancy := float64(summary.OccupiedLots) / float64(summary.TotalLots) * 100
	summary.OccupancyRate = round1(occupancy)
	summary.VacancyRate = round1(100 - occupancy)
	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
