package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parkledger/statement-extraction/dto"
	"github.com/parkledger/statement-extraction/logger"
)

// StatementExtractor is the service behind the statement endpoint.
type StatementExtractor interface {
	ExtractStatement(ctx context.Context, req *dto.ExtractRequest) (*dto.StatementResponse, error)
}

type StatementHandler struct {
	service StatementExtractor
}

func NewStatementHandler(service StatementExtractor) *StatementHandler {
	return &StatementHandler{service: service}
}

// Extract handles POST /api/v1/statements/extract. The request carries either
// a multipart "file" upload or a "text" form field.
func (h *StatementHandler) Extract(c *gin.Context) {
	req, err := bindExtractRequest(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "failed to parse request", err)
		return
	}

	response, err := h.service.ExtractStatement(c.Request.Context(), req)
	if err != nil {
		status, message := classifyError(err)
		sendError(c, status, message, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// bindExtractRequest pulls the upload or text payload out of the form. A
// missing form is fine when a text field arrives via urlencoded body.
func bindExtractRequest(c *gin.Context) (*dto.ExtractRequest, error) {
	req := &dto.ExtractRequest{Text: c.PostForm("text")}

	file, err := c.FormFile("file")
	if err == nil {
		req.File = file
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return req, nil
}

// classifyError maps the service error taxonomy onto HTTP statuses. Input
// errors are the caller's fault; empty extractions mean the document was
// readable but yielded nothing usable.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, dto.ErrNoInput):
		return http.StatusBadRequest, "no input provided"
	case errors.Is(err, dto.ErrNoText), errors.Is(err, dto.ErrExtractionEmpty):
		return http.StatusUnprocessableEntity, "document could not be extracted"
	default:
		return http.StatusInternalServerError, "extraction failed"
	}
}

func sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		logger.FromContext(c.Request.Context()).Error().Err(err).Int("status", statusCode).Msg(message)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
