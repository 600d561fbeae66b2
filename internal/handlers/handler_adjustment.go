package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// adjustmentHandler handles HTTP requests for salary adjustments.
type adjustmentHandler struct {
	adjustmentService portssvc.AdjustmentSvcFacade
}

func newAdjustmentHandler(as portssvc.AdjustmentSvcFacade) *adjustmentHandler {
	return &adjustmentHandler{adjustmentService: as}
}

// registerAdjustmentRoutes registers routes for salary adjustments.
func registerAdjustmentRoutes(rg *gin.RouterGroup, adjustmentService portssvc.AdjustmentSvcFacade) {
	h := newAdjustmentHandler(adjustmentService)

	adjustments := rg.Group("/salary-adjustments")
	{
		adjustments.POST("", h.createAdjustment)
		adjustments.GET("/:id", h.getAdjustment)
		adjustments.GET("", h.listAdjustments)
		adjustments.PUT("/:id/status", h.setAdjustmentStatus)
	}
}

// createAdjustment godoc
// @Summary Create a salary adjustment
// @Description Creates a Draft adjustment for one employee against their current mapped salary
// @Tags salary-adjustments
// @Accept json
// @Produce json
// @Param adjustment body dto.CreateAdjustmentRequest true "Adjustment details"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 400 {object} map[string]string "Invalid input, unchanged salary, or no current mapping"
// @Security BearerAuth
// @Router /salary-adjustments [post]
func (h *adjustmentHandler) createAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAdjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("employee_id", req.EmployeeID))
	logger.Info("Received request to create salary adjustment")

	adjustment, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create salary adjustment")
		return
	}

	logger.Info("Salary adjustment created", slog.String("adjustment_id", adjustment.AdjustmentID))
	c.JSON(http.StatusCreated, dto.ToAdjustmentResponse(adjustment))
}

// getAdjustment godoc
// @Summary Get a salary adjustment by ID
// @Tags salary-adjustments
// @Produce json
// @Param id path string true "Adjustment ID"
// @Success 200 {object} dto.AdjustmentResponse
// @Failure 404 {object} map[string]string "Adjustment not found"
// @Security BearerAuth
// @Router /salary-adjustments/{id} [get]
func (h *adjustmentHandler) getAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("id")

	adjustment, err := h.adjustmentService.GetAdjustmentByID(c.Request.Context(), adjustmentID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve salary adjustment")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdjustmentResponse(adjustment))
}

// listAdjustments godoc
// @Summary List salary adjustments
// @Tags salary-adjustments
// @Produce json
// @Param employeeID query string false "Employee ID"
// @Param status query string false "Adjustment status"
// @Param from query string false "Effective date lower bound (YYYY-MM-DD)"
// @Param to query string false "Effective date upper bound (YYYY-MM-DD)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListAdjustmentsResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Security BearerAuth
// @Router /salary-adjustments [get]
func (h *adjustmentHandler) listAdjustments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAdjustmentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAdjustments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.adjustmentService.ListAdjustments(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list salary adjustments")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// setAdjustmentStatus godoc
// @Summary Advance an adjustment through its workflow
// @Description Moves the adjustment to the requested status; only forward transitions of the linear state machine are allowed. Implementing also rolls the new salary into the employee's mapping.
// @Tags salary-adjustments
// @Accept json
// @Produce json
// @Param id path string true "Adjustment ID"
// @Param status body dto.SetAdjustmentStatusRequest true "Target status"
// @Success 200 {object} dto.AdjustmentResponse
// @Failure 400 {object} map[string]string "Invalid status value"
// @Failure 404 {object} map[string]string "Adjustment not found"
// @Failure 409 {object} map[string]string "Transition not allowed from current status"
// @Security BearerAuth
// @Router /salary-adjustments/{id}/status [put]
func (h *adjustmentHandler) setAdjustmentStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("id")

	var req dto.SetAdjustmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetAdjustmentStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("adjustment_id", adjustmentID), slog.String("target_status", req.Status))
	logger.Info("Received request to set adjustment status")

	adjustment, err := h.adjustmentService.SetStatus(
		c.Request.Context(), adjustmentID, domain.SalaryAdjustmentStatus(req.Status), actorID,
	)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update adjustment status")
		return
	}

	logger.Info("Adjustment status updated", slog.String("status", string(adjustment.Status)))
	c.JSON(http.StatusOK, dto.ToAdjustmentResponse(adjustment))
}
