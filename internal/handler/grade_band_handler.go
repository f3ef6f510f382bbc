package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type gradeBandService interface {
	List(ctx context.Context) ([]models.GradeBand, error)
	Save(ctx context.Context, req service.SaveGradeBandsRequest) ([]models.GradeBand, error)
}

// GradeBandHandler manages the letter grade band table.
type GradeBandHandler struct {
	bands gradeBandService
}

// NewGradeBandHandler constructs handler.
func NewGradeBandHandler(bands gradeBandService) *GradeBandHandler {
	return &GradeBandHandler{bands: bands}
}

// List godoc
// @Summary List the configured grade bands in ascending order
// @Tags GradeBands
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-bands [get]
func (h *GradeBandHandler) List(c *gin.Context) {
	bands, err := h.bands.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}

// Save godoc
// @Summary Replace the grade band table
// @Tags GradeBands
// @Accept json
// @Produce json
// @Param payload body service.SaveGradeBandsRequest true "Full band table"
// @Success 200 {object} response.Envelope
// @Router /grade-bands [put]
func (h *GradeBandHandler) Save(c *gin.Context) {
	var req service.SaveGradeBandsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	bands, err := h.bands.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}
