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

type weightConfigService interface {
	Get(ctx context.Context) (*models.WeightConfig, error)
	Save(ctx context.Context, req service.SaveWeightsRequest) (*models.WeightConfig, error)
}

// WeightConfigHandler manages the shared component weight configuration.
type WeightConfigHandler struct {
	weights weightConfigService
}

// NewWeightConfigHandler constructs handler.
func NewWeightConfigHandler(weights weightConfigService) *WeightConfigHandler {
	return &WeightConfigHandler{weights: weights}
}

// Get godoc
// @Summary Get the active component weights
// @Tags Weights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /weights [get]
func (h *WeightConfigHandler) Get(c *gin.Context) {
	cfg, err := h.weights.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Save godoc
// @Summary Replace the component weights
// @Tags Weights
// @Accept json
// @Produce json
// @Param payload body service.SaveWeightsRequest true "Weight percentages"
// @Success 200 {object} response.Envelope
// @Router /weights [put]
func (h *WeightConfigHandler) Save(c *gin.Context) {
	var req service.SaveWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cfg, err := h.weights.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
