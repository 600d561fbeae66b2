package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// gradeHandler handles HTTP requests for salary grades.
type gradeHandler struct {
	gradeService portssvc.GradeSvcFacade
}

func newGradeHandler(gs portssvc.GradeSvcFacade) *gradeHandler {
	return &gradeHandler{gradeService: gs}
}

// registerGradeRoutes registers routes for salary grades.
func registerGradeRoutes(rg *gin.RouterGroup, gradeService portssvc.GradeSvcFacade) {
	h := newGradeHandler(gradeService)

	grades := rg.Group("/salary-grades")
	{
		grades.POST("", h.createGrade)
		grades.GET("/:id", h.getGrade)
		grades.GET("", h.listGrades)
		grades.POST("/:id/approve", h.approveGrade)
	}
}

// createGrade godoc
// @Summary Create a salary grade
// @Description Creates a Draft salary grade with its steps
// @Tags salary-grades
// @Accept json
// @Produce json
// @Param grade body dto.CreateGradeRequest true "Grade details"
// @Success 201 {object} dto.GradeResponse
// @Failure 400 {object} map[string]string "Invalid input or band ordering"
// @Failure 409 {object} map[string]string "Duplicate grade code for the scope"
// @Security BearerAuth
// @Router /salary-grades [post]
func (h *gradeHandler) createGrade(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGrade", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create salary grade", slog.String("code", req.Code))

	grade, err := h.gradeService.CreateGrade(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create salary grade")
		return
	}

	logger.Info("Salary grade created", slog.String("grade_id", grade.GradeID))
	c.JSON(http.StatusCreated, dto.ToGradeResponse(grade))
}

// getGrade godoc
// @Summary Get a salary grade by ID
// @Description Retrieves a grade including its steps
// @Tags salary-grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} dto.GradeResponse
// @Failure 404 {object} map[string]string "Grade not found"
// @Security BearerAuth
// @Router /salary-grades/{id} [get]
func (h *gradeHandler) getGrade(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	gradeID := c.Param("id")

	grade, err := h.gradeService.GetGradeByID(c.Request.Context(), gradeID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve salary grade")
		return
	}
	c.JSON(http.StatusOK, dto.ToGradeResponse(grade))
}

// listGrades godoc
// @Summary List salary grades
// @Tags salary-grades
// @Produce json
// @Param branchID query string false "Branch ID"
// @Param departmentID query string false "Department ID"
// @Param status query string false "Grade status"
// @Param code query string false "Grade code"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListGradesResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Security BearerAuth
// @Router /salary-grades [get]
func (h *gradeHandler) listGrades(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListGradesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListGrades", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.gradeService.ListGrades(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list salary grades")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// approveGrade godoc
// @Summary Approve a draft salary grade
// @Description Activates the grade, superseding any active grade with the same code and scope
// @Tags salary-grades
// @Produce json
// @Param id path string true "Grade ID"
// @Success 204 "Grade activated"
// @Failure 404 {object} map[string]string "Grade not found"
// @Failure 409 {object} map[string]string "Grade is not in Draft"
// @Security BearerAuth
// @Router /salary-grades/{id}/approve [post]
func (h *gradeHandler) approveGrade(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	gradeID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	if err := h.gradeService.ApproveGrade(c.Request.Context(), gradeID, actorID); err != nil {
		respondWithError(c, logger, err, "Failed to approve salary grade")
		return
	}

	logger.Info("Salary grade approved", slog.String("grade_id", gradeID))
	c.Status(http.StatusNoContent)
}
