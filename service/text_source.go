package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/logger"
)

// textSource resolves an extract request into document text: direct text
// payload, delimited-text upload, OCR of an uploaded image, embedded PDF
// text, or OCR of scanned pages. Shared by the statement and rent-roll
// pipelines.
type textSource struct {
	pdf    PDFProcessor
	ocr    OCRClient
	policy config.Policy
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

func (ts *textSource) Acquire(ctx context.Context, req *dto.ExtractRequest) (string, float64, error) {
	log := logger.FromContext(ctx)

	if req.File == nil {
		return req.Text, 100, nil
	}

	ext := strings.ToLower(filepath.Ext(req.File.Filename))
	if imageExts[ext] {
		// A photographed or scanned page: the OCR engine is the only text
		// source there is.
		if ts.ocr == nil {
			log.Warn().Str("file", req.File.Filename).Msg("image upload received but no OCR engine is configured")
			return "", 0, nil
		}
		return ts.ocr.ExtractFromUpload(req.File)
	}

	f, err := req.File.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open upload %s: %w", req.File.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read upload %s: %w", req.File.Filename, err)
	}

	if ext != ".pdf" {
		// Delimited text exports come through as-is.
		return string(data), 100, nil
	}

	text, err := ts.pdf.ExtractText(data)
	if err != nil {
		log.Warn().Err(err).Str("file", req.File.Filename).Msg("pdf text extraction failed")
	}
	quality := evaluateTextQuality(text)
	if quality >= ts.policy.WeakTextScore {
		return text, quality, nil
	}

	// Weak or missing text layer: the document is probably a scan.
	log.Info().Str("file", req.File.Filename).Float64("quality", quality).Msg("pdf text is weak, running OCR on page images")
	ocrText, ocrConf := ts.ocrPages(ctx, data)
	if strings.TrimSpace(ocrText) != "" {
		return ocrText, ocrConf, nil
	}
	return text, quality, nil
}

func (ts *textSource) ocrPages(ctx context.Context, pdfData []byte) (string, float64) {
	log := logger.FromContext(ctx)
	if ts.ocr == nil {
		return "", 0
	}

	images, err := ts.pdf.ExtractImages(pdfData)
	if err != nil || len(images) == 0 {
		log.Warn().Err(err).Msg("failed to extract page images from pdf")
		return "", 0
	}

	var combined strings.Builder
	var totalConf float64
	pages := 0
	for _, img := range images {
		pageText, conf, err := ts.ocr.OCRImage(img)
		if err != nil {
			log.Warn().Err(err).Msg("ocr failed for a page")
			continue
		}
		combined.WriteString(pageText)
		combined.WriteString("\n")
		totalConf += conf
		pages++
	}
	if pages == 0 {
		return "", 0
	}
	return combined.String(), totalConf / float64(pages)
}

// evaluateTextQuality scores extracted text 0-100 on length and presence of
// statement vocabulary; below the policy floor the OCR path runs.
func evaluateTextQuality(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	score := 0.0
	switch {
	case len(trimmed) > 500:
		score += 40
	case len(trimmed) > 100:
		score += 20
	case len(trimmed) > 20:
		score += 10
	}

	keywords := []string{
		"income", "expense", "rent", "total", "net",
		"insurance", "payroll", "maintenance", "tax",
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += 6.67
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}
