package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parkledger/statement-extraction/dto"
)

// RentRollExtractor is the service behind the rent-roll endpoint.
type RentRollExtractor interface {
	ExtractRentRoll(ctx context.Context, req *dto.ExtractRequest) (*dto.RentRollResponse, error)
}

type RentRollHandler struct {
	service RentRollExtractor
}

func NewRentRollHandler(service RentRollExtractor) *RentRollHandler {
	return &RentRollHandler{service: service}
}

// Extract handles POST /api/v1/rentroll/extract.
func (h *RentRollHandler) Extract(c *gin.Context) {
	req, err := bindExtractRequest(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "failed to parse request", err)
		return
	}

	response, err := h.service.ExtractRentRoll(c.Request.Context(), req)
	if err != nil {
		status, message := classifyError(err)
		sendError(c, status, message, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
