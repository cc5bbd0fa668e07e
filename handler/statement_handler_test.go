package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkledger/statement-extraction/dto"
)

type fakeStatementService struct {
	gotText string
	gotFile string
	resp    *dto.StatementResponse
	err     error
}

func (f *fakeStatementService) ExtractStatement(_ context.Context, req *dto.ExtractRequest) (*dto.StatementResponse, error) {
	f.gotText = req.Text
	if req.File != nil {
		f.gotFile = req.File.Filename
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newStatementRouter(svc StatementExtractor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/statements/extract", NewStatementHandler(svc).Extract)
	return r
}

func TestStatementHandlerTextForm(t *testing.T) {
	fake := &fakeStatementService{resp: &dto.StatementResponse{DocumentID: "doc-1"}}
	router := newStatementRouter(fake)

	form := url.Values{"text": {"4105 Lot Rent Income  120,000.00"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/extract", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4105 Lot Rent Income  120,000.00", fake.gotText)

	var resp dto.StatementResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "doc-1", resp.DocumentID)
}

func TestStatementHandlerFileUpload(t *testing.T) {
	fake := &fakeStatementService{resp: &dto.StatementResponse{DocumentID: "doc-2"}}
	router := newStatementRouter(fake)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "statement.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "statement.pdf", fake.gotFile)
}

func TestStatementHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{dto.ErrNoInput, http.StatusBadRequest},
		{dto.ErrNoText, http.StatusUnprocessableEntity},
		{dto.ErrExtractionEmpty, http.StatusUnprocessableEntity},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		router := newStatementRouter(&fakeStatementService{err: tc.err})

		form := url.Values{"text": {"anything"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/extract", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.code, w.Code, "error %v", tc.err)

		var errResp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, tc.code, errResp.Code)
		assert.Equal(t, "EXTRACTION_FAILED", errResp.Error)
	}
}
