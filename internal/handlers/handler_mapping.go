package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// mappingHandler handles HTTP requests for employee grade mappings.
type mappingHandler struct {
	mappingService portssvc.MappingSvcFacade
}

func newMappingHandler(ms portssvc.MappingSvcFacade) *mappingHandler {
	return &mappingHandler{mappingService: ms}
}

// registerMappingRoutes registers routes for employee grade mappings.
func registerMappingRoutes(rg *gin.RouterGroup, mappingService portssvc.MappingSvcFacade) {
	h := newMappingHandler(mappingService)

	mappings := rg.Group("/grade-mappings")
	{
		mappings.POST("", h.createMapping)
		mappings.GET("/:id", h.getMapping)
		mappings.GET("", h.listMappings)
		mappings.POST("/:id/approve", h.approveMapping)
	}
}

// createMapping godoc
// @Summary Create an employee grade mapping
// @Description Proposes a grade/step assignment for an employee, Pending Review until approved
// @Tags grade-mappings
// @Accept json
// @Produce json
// @Param mapping body dto.CreateMappingRequest true "Mapping details"
// @Success 201 {object} dto.MappingResponse
// @Failure 400 {object} map[string]string "Invalid input, inactive grade, or foreign step"
// @Security BearerAuth
// @Router /grade-mappings [post]
func (h *mappingHandler) createMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("employee_id", req.EmployeeID), slog.String("grade_id", req.GradeID))
	logger.Info("Received request to create grade mapping")

	mapping, err := h.mappingService.CreateMapping(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create grade mapping")
		return
	}

	logger.Info("Grade mapping created", slog.String("mapping_id", mapping.MappingID))
	c.JSON(http.StatusCreated, dto.ToMappingResponse(mapping))
}

// getMapping godoc
// @Summary Get a grade mapping by ID
// @Tags grade-mappings
// @Produce json
// @Param id path string true "Mapping ID"
// @Success 200 {object} dto.MappingResponse
// @Failure 404 {object} map[string]string "Mapping not found"
// @Security BearerAuth
// @Router /grade-mappings/{id} [get]
func (h *mappingHandler) getMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappingID := c.Param("id")

	mapping, err := h.mappingService.GetMappingByID(c.Request.Context(), mappingID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve grade mapping")
		return
	}
	c.JSON(http.StatusOK, dto.ToMappingResponse(mapping))
}

// listMappings godoc
// @Summary List grade mappings
// @Description Lists mappings filtered by employee or grade; currentOnly keeps only mappings effective today
// @Tags grade-mappings
// @Produce json
// @Param employeeID query string false "Employee ID"
// @Param gradeID query string false "Grade ID"
// @Param currentOnly query bool false "Only mappings effective today"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListMappingsResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Security BearerAuth
// @Router /grade-mappings [get]
func (h *mappingHandler) listMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListMappingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListMappings", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.mappingService.ListMappings(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list grade mappings")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// approveMapping godoc
// @Summary Approve a pending grade mapping
// @Description Ends any overlapping prior mapping for the employee and activates this one
// @Tags grade-mappings
// @Produce json
// @Param id path string true "Mapping ID"
// @Success 200 {object} dto.MappingResponse
// @Failure 404 {object} map[string]string "Mapping not found"
// @Failure 409 {object} map[string]string "Mapping is not Pending Review"
// @Security BearerAuth
// @Router /grade-mappings/{id}/approve [post]
func (h *mappingHandler) approveMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	mappingID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	mapping, err := h.mappingService.Approve(c.Request.Context(), mappingID, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to approve grade mapping")
		return
	}

	logger.Info("Grade mapping approved", slog.String("mapping_id", mappingID))
	c.JSON(http.StatusOK, dto.ToMappingResponse(mapping))
}
