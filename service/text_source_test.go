package service

import (
	"bytes"
	"context"
	"image"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
)

type fakePDF struct {
	text   string
	images []image.Image
}

func (f *fakePDF) ExtractText([]byte) (string, error) {
	return f.text, nil
}

func (f *fakePDF) ExtractImages([]byte) ([]image.Image, error) {
	return f.images, nil
}

type fakeOCR struct {
	text        string
	confidence  float64
	pageCalls   int
	uploadCalls int
}

func (f *fakeOCR) OCRImage(image.Image) (string, float64, error) {
	f.pageCalls++
	return f.text, f.confidence, nil
}

func (f *fakeOCR) ExtractFromUpload(*multipart.FileHeader) (string, float64, error) {
	f.uploadCalls++
	return f.text, f.confidence, nil
}

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	require.NotEmpty(t, form.File["file"])
	return form.File["file"][0]
}

const strongStatementText = `Park Haven LLC annual operating statement covering income and expense detail.
Lot rent collections, utility reimbursements and total receipts are itemized below,
followed by payroll, insurance, maintenance and tax disbursements with a net figure.
` // repeated to clear the length tier

func TestAcquireImageUploadGoesThroughOCR(t *testing.T) {
	ocr := &fakeOCR{text: "4105 Lot Rent Income  120,000.00", confidence: 91.5}
	ts := &textSource{ocr: ocr, policy: config.DefaultPolicy()}

	header := uploadHeader(t, "statement-scan.png", []byte{0x89, 'P', 'N', 'G'})
	text, quality, err := ts.Acquire(context.Background(), &dto.ExtractRequest{File: header})
	require.NoError(t, err)

	assert.Equal(t, "4105 Lot Rent Income  120,000.00", text)
	assert.Equal(t, 91.5, quality)
	assert.Equal(t, 1, ocr.uploadCalls)
	assert.Equal(t, 0, ocr.pageCalls)
}

func TestAcquireImageUploadWithoutOCREngine(t *testing.T) {
	ts := &textSource{policy: config.DefaultPolicy()}

	header := uploadHeader(t, "scan.jpg", []byte("jpeg bytes"))
	text, _, err := ts.Acquire(context.Background(), &dto.ExtractRequest{File: header})
	require.NoError(t, err)
	assert.Empty(t, text, "no OCR engine means no text, not garbage bytes")
}

func TestAcquireWeakPDFTextTriggersOCR(t *testing.T) {
	ocr := &fakeOCR{text: "6100 Payroll  30,000.00", confidence: 88}
	ts := &textSource{
		pdf:    &fakePDF{text: "x", images: []image.Image{image.NewRGBA(image.Rect(0, 0, 1, 1))}},
		ocr:    ocr,
		policy: config.DefaultPolicy(),
	}

	header := uploadHeader(t, "scanned.pdf", []byte("%PDF-1.4"))
	text, quality, err := ts.Acquire(context.Background(), &dto.ExtractRequest{File: header})
	require.NoError(t, err)

	assert.Equal(t, 1, ocr.pageCalls)
	assert.Contains(t, text, "6100 Payroll")
	assert.Equal(t, 88.0, quality)
}

func TestAcquireStrongPDFTextSkipsOCR(t *testing.T) {
	ocr := &fakeOCR{text: "should never be used"}
	ts := &textSource{
		pdf:    &fakePDF{text: strings.Repeat(strongStatementText, 3)},
		ocr:    ocr,
		policy: config.DefaultPolicy(),
	}

	header := uploadHeader(t, "digital.pdf", []byte("%PDF-1.4"))
	text, quality, err := ts.Acquire(context.Background(), &dto.ExtractRequest{File: header})
	require.NoError(t, err)

	assert.Equal(t, 0, ocr.pageCalls)
	assert.Equal(t, 0, ocr.uploadCalls)
	assert.Contains(t, text, "Lot rent collections")
	assert.GreaterOrEqual(t, quality, config.DefaultPolicy().WeakTextScore)
}

func TestAcquireNonPDFUploadIsRawText(t *testing.T) {
	ts := &textSource{policy: config.DefaultPolicy()}

	header := uploadHeader(t, "rentroll.csv", []byte("101,Occupied,450.00"))
	text, quality, err := ts.Acquire(context.Background(), &dto.ExtractRequest{File: header})
	require.NoError(t, err)
	assert.Equal(t, "101,Occupied,450.00", text)
	assert.Equal(t, 100.0, quality)
}

func TestEvaluateTextQuality(t *testing.T) {
	assert.Zero(t, evaluateTextQuality(""))
	assert.Zero(t, evaluateTextQuality("   \n\t"))

	// Short, vocabulary-free garble scores below the OCR gate.
	weak := evaluateTextQuality("zq pf ln xo")
	assert.Less(t, weak, config.DefaultPolicy().WeakTextScore)

	// Long text full of statement vocabulary clears it.
	strong := evaluateTextQuality(strings.Repeat(strongStatementText, 3))
	assert.GreaterOrEqual(t, strong, config.DefaultPolicy().WeakTextScore)
	assert.LessOrEqual(t, strong, 100.0)
}
