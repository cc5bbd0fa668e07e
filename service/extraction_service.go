package service

import (
	"context"
	"image"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/logger"
	"github.com/parkledger/statement-extraction/utils"
	"github.com/parkledger/statement-extraction/utils/pnl"
)

// StructuredExtractor is the external-model collaborator. Its output is
// untrusted and schema-validated before it reaches the merger; failure means
// degrading to a lower-trust strategy, never aborting.
type StructuredExtractor interface {
	ExtractStatement(ctx context.Context, text string) (*dto.Statement, int, error)
}

// OCRClient turns scanned input into text with a mean word confidence:
// rendered PDF pages via OCRImage, direct image uploads via
// ExtractFromUpload. The Tesseract client satisfies it.
type OCRClient interface {
	OCRImage(img image.Image) (string, float64, error)
	ExtractFromUpload(fileHeader *multipart.FileHeader) (string, float64, error)
}

// ResultStore persists finished extraction results. Persist failures must
// not fail the extraction response.
type ResultStore interface {
	SaveExtraction(ctx context.Context, result *dto.ExtractionResult, response *dto.StatementResponse) error
}

// ExtractionService runs the per-document pipeline: acquire text, normalize,
// extract by every available strategy, reconcile, categorize, persist.
type ExtractionService struct {
	source    *textSource
	extractor StructuredExtractor
	mapper    *CategoryMapper
	merger    *Merger
	store     ResultStore
	policy    config.Policy
}

func NewExtractionService(
	pdfProcessor PDFProcessor,
	ocr OCRClient,
	extractor StructuredExtractor,
	mapper *CategoryMapper,
	store ResultStore,
	policy config.Policy,
) *ExtractionService {
	return &ExtractionService{
		source:    &textSource{pdf: pdfProcessor, ocr: ocr, policy: policy},
		extractor: extractor,
		mapper:    mapper,
		merger:    NewMerger(policy),
		store:     store,
		policy:    policy,
	}
}

// ExtractStatement processes one uploaded P&L document or text payload into
// a categorized, reconciled statement response. The response always carries
// a strategy and confidence indicator; a hard failure only happens when no
// text at all could be extracted.
func (s *ExtractionService) ExtractStatement(ctx context.Context, req *dto.ExtractRequest) (*dto.StatementResponse, error) {
	log := logger.FromContext(ctx)
	started := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	text, quality, err := s.source.Acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, dto.ErrNoText
	}

	lines := utils.NormalizeLines(text)
	normalized := utils.NormalizeText(text)

	ruleStmt, ruleRows := pnl.Extract(lines)

	var structuredStmt *dto.Statement
	structuredRows := 0
	if s.extractor != nil {
		structuredStmt, structuredRows, err = s.extractor.ExtractStatement(ctx, normalized)
		if err != nil {
			// Collaborator unavailable: degrade, do not propagate.
			log.Warn().Err(err).Msg("structured extraction failed, continuing with lower-trust strategies")
			structuredStmt, structuredRows = nil, 0
		}
	}

	var fallbackStmt *dto.Statement
	fallbackRows := 0
	if ruleRows < s.policy.MinRuleRows {
		fallbackStmt, fallbackRows = pnl.FallbackScan(normalized)
	}

	outcome := s.merger.Merge(MergeInput{
		Rule:           ruleStmt,
		RuleRows:       ruleRows,
		Structured:     structuredStmt,
		StructuredRows: structuredRows,
		Fallback:       fallbackStmt,
		FallbackRows:   fallbackRows,
	})

	if outcome.Statement.TotalItems() == 0 && !outcome.Statement.NetIncomeExplicit {
		return nil, dto.ErrExtractionEmpty
	}

	suggestions, unmapped := s.mapLabels(ctx, outcome.Statement)

	result := &dto.ExtractionResult{
		ID:         uuid.NewString(),
		Statement:  outcome.Statement,
		Strategy:   outcome.Strategy,
		Confidence: outcome.Confidence,
		Metadata: dto.ExtractionMetadata{
			StructuredRows: structuredRows,
			RuleRows:       ruleRows,
			FallbackRows:   fallbackRows,
			ParseTimeMS:    time.Since(started).Milliseconds(),
			QualityScore:   quality,
		},
		Diagnostics: outcome.Diagnostics,
		CreatedAt:   time.Now().UTC(),
	}

	response := buildStatementResponse(result, suggestions, unmapped)

	if s.store != nil {
		if err := s.store.SaveExtraction(ctx, result, response); err != nil {
			log.Warn().Err(err).Str("document_id", result.ID).Msg("failed to persist extraction result")
		}
	}

	log.Info().
		Str("document_id", result.ID).
		Str("strategy", string(result.Strategy)).
		Float64("confidence", result.Confidence).
		Int("rule_rows", ruleRows).
		Int("structured_rows", structuredRows).
		Int("fallback_rows", fallbackRows).
		Msg("statement extracted")

	return response, nil
}

func (s *ExtractionService) mapLabels(ctx context.Context, stmt *dto.Statement) (map[string]dto.CategorySuggestion, []string) {
	var labels []string
	for _, kind := range []dto.SectionKind{dto.SectionIncome, dto.SectionExpense, dto.SectionOtherExpense} {
		for _, item := range stmt.Section(kind).Items() {
			labels = append(labels, item.Label)
		}
	}
	if s.mapper == nil {
		return map[string]dto.CategorySuggestion{}, nil
	}
	return s.mapper.MapLabels(ctx, labels)
}

func buildStatementResponse(result *dto.ExtractionResult, suggestions map[string]dto.CategorySuggestion, unmapped []string) *dto.StatementResponse {
	income, expense, otherExpense := result.Statement.ToJSON()
	if unmapped == nil {
		unmapped = []string{}
	}
	return &dto.StatementResponse{
		DocumentID:          result.ID,
		Income:              income,
		Expense:             expense,
		OtherExpense:        otherExpense,
		NetIncome:           result.Statement.EffectiveNetIncome().InexactFloat64(),
		CategorySuggestions: suggestions,
		Unmapped:            unmapped,
		Metadata: dto.StatementMetadataJSON{
			ExtractionStrategy: string(result.Strategy),
			ConfidenceScore:    result.Confidence,
			StructuredRows:     result.Metadata.StructuredRows,
			RuleRows:           result.Metadata.RuleRows,
			FallbackRows:       result.Metadata.FallbackRows,
			ParseTimeMS:        result.Metadata.ParseTimeMS,
		},
		Diagnostics: result.Diagnostics,
	}
}
