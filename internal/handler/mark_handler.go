package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
	"github.com/noah-isme/sma-grading-api/pkg/response"
)

type markService interface {
	RecordMark(ctx context.Context, req service.RecordMarkRequest) (*dto.ComputedResult, error)
	DeleteMark(ctx context.Context, scope service.MarkScope) error
	MarkDetails(ctx context.Context, studentID, subjectID, termID, yearID string) (*dto.MarkDetails, error)
	GroupResults(ctx context.Context, group models.GroupKey) ([]dto.ComputedResult, error)
	RecalculateGroup(ctx context.Context, group models.GroupKey) error
}

// MarkHandler exposes the mark mutation pipeline.
type MarkHandler struct {
	marks markService
}

// NewMarkHandler constructs handler.
func NewMarkHandler(marks markService) *MarkHandler {
	return &MarkHandler{marks: marks}
}

// Record godoc
// @Summary Record or replace a mark component
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.RecordMarkRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Router /marks [post]
func (h *MarkHandler) Record(c *gin.Context) {
	var req service.RecordMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.marks.RecordMark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a mark component and recompute its group
// @Tags Marks
// @Produce json
// @Param studentId query string true "Student"
// @Param subjectId query string true "Subject"
// @Param classId query string true "Class"
// @Param termId query string true "Term"
// @Param academicYearId query string true "Academic year"
// @Param componentType query string true "Component type"
// @Success 204
// @Router /marks [delete]
func (h *MarkHandler) Delete(c *gin.Context) {
	scope := service.MarkScope{
		StudentID:      c.Query("studentId"),
		SubjectID:      c.Query("subjectId"),
		ClassID:        c.Query("classId"),
		TermID:         c.Query("termId"),
		AcademicYearID: c.Query("academicYearId"),
		ComponentType:  models.ComponentType(c.Query("componentType")),
	}
	if err := h.marks.DeleteMark(c.Request.Context(), scope); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Details godoc
// @Summary Get the computed result plus raw-mark breakdown
// @Tags Marks
// @Produce json
// @Param studentId query string true "Student"
// @Param subjectId query string true "Subject"
// @Param termId query string true "Term"
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /marks [get]
func (h *MarkHandler) Details(c *gin.Context) {
	studentID := c.Query("studentId")
	subjectID := c.Query("subjectId")
	termID := c.Query("termId")
	yearID := c.Query("academicYearId")
	if studentID == "" || subjectID == "" || termID == "" || yearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId, subjectId, termId and academicYearId are required"))
		return
	}
	details, err := h.marks.MarkDetails(c.Request.Context(), studentID, subjectID, termID, yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// GroupResults godoc
// @Summary List ranked results for one class+subject+term+year group
// @Tags Marks
// @Produce json
// @Param classId query string true "Class"
// @Param subjectId query string true "Subject"
// @Param termId query string true "Term"
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *MarkHandler) GroupResults(c *gin.Context) {
	group := models.GroupKey{
		ClassID:        c.Query("classId"),
		SubjectID:      c.Query("subjectId"),
		TermID:         c.Query("termId"),
		AcademicYearID: c.Query("academicYearId"),
	}
	listing, err := h.marks.GroupResults(c.Request.Context(), group)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, nil)
}

// Recalculate godoc
// @Summary Re-aggregate and rerank a whole group
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body models.GroupKey true "Group scope"
// @Success 200 {object} response.Envelope
// @Router /marks/recalculate [post]
func (h *MarkHandler) Recalculate(c *gin.Context) {
	var group models.GroupKey
	if err := c.ShouldBindJSON(&group); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.marks.RecalculateGroup(c.Request.Context(), group); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "recalculated"}, nil)
}
