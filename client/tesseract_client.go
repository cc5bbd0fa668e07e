package client

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
)

// TesseractClient OCRs scanned statement pages. It is the last-resort text
// source: embedded PDF text and the structured model both outrank it.
type TesseractClient struct {
	dataPath string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{dataPath: dataPath}
}

// OCRImage extracts text and a mean word confidence from a rendered page.
func (tc *TesseractClient) OCRImage(img image.Image) (string, float64, error) {
	tempFile, err := os.CreateTemp("", "statement-page-*.png")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if err := png.Encode(tempFile, img); err != nil {
		tempFile.Close()
		return "", 0, fmt.Errorf("failed to encode page image: %w", err)
	}
	tempFile.Close()

	return tc.ExtractTextAndQuality(tempFile.Name())
}

// ExtractFromUpload OCRs an uploaded image file directly.
func (tc *TesseractClient) ExtractFromUpload(fileHeader *multipart.FileHeader) (string, float64, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tempFile, err := tc.createTempFile(file, fileHeader.Filename)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	return tc.ExtractTextAndQuality(tempFile)
}

// ExtractTextAndQuality runs Tesseract on an image file and returns the text
// plus the average word confidence (0-100).
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	ocr := gosseract.NewClient()
	defer ocr.Close()

	ocr.SetTessdataPrefix(tc.dataPath)
	if err := ocr.SetLanguage("eng"); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := ocr.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := ocr.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := ocr.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Confidence is advisory; the text still counts.
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}
	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}
	return text, avgConf, nil
}

func (tc *TesseractClient) createTempFile(file multipart.File, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "ocr-*"+ext)
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, file); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}
	return tempFile.Name(), nil
}
