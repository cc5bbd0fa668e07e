package service

import (
	"context"
	"strings"
	"sync"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/logger"
	"github.com/parkledger/statement-extraction/utils"
	"github.com/parkledger/statement-extraction/utils/rentroll"
)

// RentRollService turns rent-roll documents into normalized, validated
// per-lot rows with batch warnings and summary statistics.
type RentRollService struct {
	source *textSource
	policy config.Policy
}

func NewRentRollService(pdfProcessor PDFProcessor, ocr OCRClient, policy config.Policy) *RentRollService {
	return &RentRollService{
		source: &textSource{pdf: pdfProcessor, ocr: ocr, policy: policy},
		policy: policy,
	}
}

// ExtractRentRoll parses and validates one rent-roll upload.
func (s *RentRollService) ExtractRentRoll(ctx context.Context, req *dto.ExtractRequest) (*dto.RentRollResponse, error) {
	log := logger.FromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	text, _, err := s.source.Acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, dto.ErrNoText
	}

	lines := utils.NormalizeLines(text)
	// The Total-line value set must cover the whole document before any
	// chunk is parsed.
	totals := rentroll.CollectTotalValues(lines)

	rows, matchedTotals := s.parseAll(lines, totals)
	if len(rows) == 0 {
		return nil, dto.ErrExtractionEmpty
	}

	warnings, summary := rentroll.Validate(rows, matchedTotals, s.policy)

	log.Info().
		Int("lots", summary.TotalLots).
		Int("occupied", summary.OccupiedLots).
		Int("warnings", len(warnings)).
		Msg("rent roll extracted")

	return &dto.RentRollResponse{
		Rows:     rowsToJSON(rows),
		Warnings: warnings,
		Summary:  summary,
	}, nil
}

// parseAll splits very large documents into chunks parsed concurrently.
// Rows are keyed by lot number, not position, so chunk order is irrelevant;
// chunks are still concatenated in order to keep output deterministic.
func (s *RentRollService) parseAll(lines []string, totals map[string]struct{}) ([]dto.RentRollRow, int) {
	if len(lines) <= s.policy.ChunkLines {
		return rentroll.ParseRows(lines, totals)
	}

	type chunkResult struct {
		rows          []dto.RentRollRow
		matchedTotals int
	}

	var chunks [][]string
	for start := 0; start < len(lines); start += s.policy.ChunkLines {
		end := start + s.policy.ChunkLines
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, lines[start:end])
	}

	results := make([]chunkResult, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()
			rows, matched := rentroll.ParseRows(chunk, totals)
			results[i] = chunkResult{rows: rows, matchedTotals: matched}
		}(i, chunk)
	}
	wg.Wait()

	var rows []dto.RentRollRow
	matchedTotals := 0
	for _, r := range results {
		rows = append(rows, r.rows...)
		matchedTotals += r.matchedTotals
	}
	return rows, matchedTotals
}

func rowsToJSON(rows []dto.RentRollRow) []dto.RentRollRowJSON {
	out := make([]dto.RentRollRowJSON, 0, len(rows))
	for _, row := range rows {
		var rent *float64
		if row.Rent != nil {
			v := row.Rent.InexactFloat64()
			rent = &v
		}
		out = append(out, dto.RentRollRowJSON{
			LotNumber:     row.LotNumber,
			LotNumeric:    row.LotNumeric,
			Occupied:      row.Occupied,
			Rent:          rent,
			Tenant:        row.Tenant,
			OriginalToken: row.OriginalToken,
			IsDuplicate:   row.IsDuplicate,
			MissingRent:   row.MissingRent,
		})
	}
	return out
}
