package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// batchHandler handles HTTP requests for pay adjustment workflows.
type batchHandler struct {
	batchService portssvc.BatchSvcFacade
}

func newBatchHandler(bs portssvc.BatchSvcFacade) *batchHandler {
	return &batchHandler{batchService: bs}
}

// registerBatchRoutes registers routes for pay adjustment workflows.
func registerBatchRoutes(rg *gin.RouterGroup, batchService portssvc.BatchSvcFacade) {
	h := newBatchHandler(batchService)

	workflows := rg.Group("/pay-adjustment-workflows")
	{
		workflows.POST("", h.createWorkflow)
		workflows.GET("/:id", h.getWorkflow)
		workflows.GET("", h.listWorkflows)
		workflows.POST("/:id/impact", h.calculateImpact)
		workflows.POST("/:id/details", h.createDetails)
		workflows.POST("/:id/approve", h.approveWorkflow)
		workflows.POST("/:id/implement", h.implementWorkflow)
	}
}

// createWorkflow godoc
// @Summary Create a pay adjustment workflow
// @Description Creates a Draft batch workflow targeting grades, departments and positions (OR-combined)
// @Tags pay-adjustment-workflows
// @Accept json
// @Produce json
// @Param workflow body dto.CreateWorkflowRequest true "Workflow details"
// @Success 201 {object} dto.WorkflowResponse
// @Failure 400 {object} map[string]string "Invalid input or no target dimension"
// @Security BearerAuth
// @Router /pay-adjustment-workflows [post]
func (h *batchHandler) createWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateWorkflow", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create batch workflow", slog.String("name", req.Name))

	workflow, err := h.batchService.CreateWorkflow(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create batch workflow")
		return
	}

	logger.Info("Batch workflow created", slog.String("workflow_id", workflow.WorkflowID))
	c.JSON(http.StatusCreated, dto.ToWorkflowResponse(workflow))
}

// getWorkflow godoc
// @Summary Get a batch workflow by ID
// @Tags pay-adjustment-workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 404 {object} map[string]string "Workflow not found"
// @Security BearerAuth
// @Router /pay-adjustment-workflows/{id} [get]
func (h *batchHandler) getWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	workflow, err := h.batchService.GetWorkflowByID(c.Request.Context(), workflowID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve batch workflow")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(workflow))
}

// listWorkflows godoc
// @Summary List batch workflows
// @Tags pay-adjustment-workflows
// @Produce json
// @Param status query string false "Workflow status"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListWorkflowsResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Security BearerAuth
// @Router /pay-adjustment-workflows [get]
func (h *batchHandler) listWorkflows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListWorkflowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListWorkflows", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.batchService.ListWorkflows(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list batch workflows")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// calculateImpact godoc
// @Summary Calculate workflow impact
// @Description Resolves the target employee set and computes the total payroll delta, snapshotting it on the workflow
// @Tags pay-adjustment-workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} dto.ImpactResponse
// @Failure 404 {object} map[string]string "Workflow not found"
// @Security BearerAuth
// @Router /pay-adjustment-workflows/{id}/impact [post]
func (h *batchHandler) calculateImpact(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("workflow_id", workflowID))
	logger.Info("Received request to calculate workflow impact")

	impact, err := h.batchService.CalculateImpact(c.Request.Context(), workflowID, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to calculate workflow impact")
		return
	}

	logger.Info("Workflow impact calculated", slog.Int("affected_count", impact.AffectedCount))
	c.JSON(http.StatusOK, impact)
}

// createDetails godoc
// @Summary Materialize workflow detail rows
// @Description Builds one detail row per targeted employee with old and proposed salary; repeat calls replace rather than duplicate
// @Tags pay-adjustment-workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {array} domain.WorkflowDetail
// @Failure 404 {object} map[string]string "Workflow not found"
// @Security BearerAuth
// @Router /pay-adjustment-workflows/{id}/details [post]
func (h *batchHandler) createDetails(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	details, err := h.batchService.CreateWorkflowDetails(c.Request.Context(), workflowID, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create workflow details")
		return
	}

	logger.Info("Workflow details created",
		slog.String("workflow_id", workflowID), slog.Int("count", len(details)))
	c.JSON(http.StatusOK, details)
}

// approveWorkflow godoc
// @Summary Approve a draft workflow
// @Tags pay-adjustment-workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 204 "Workflow approved"
// @Failure 404 {object} map[string]string "Workflow not found"
// @Failure 409 {object} map[string]string "Workflow is not in Draft"
// @Security BearerAuth
// @Router /pay-adjustment-workflows/{id}/approve [post]
func (h *batchHandler) approveWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	if err := h.batchService.Approve(c.Request.Context(), workflowID, actorID); err != nil {
		respondWithError(c, logger, err, "Failed to approve batch workflow")
		return
	}

	logger.Info("Batch workflow approved", slog.String("workflow_id", workflowID))
	c.Status(http.StatusNoContent)
}

// implementWorkflow godoc
// @Summary Implement an approved workflow
// @Description Generates one pending salary adjustment per detail row, atomically with the status flip
// @Tags pay-adjustment-workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} dto.ImplementWorkflowResponse
// @Failure 404 {object} map[string]string "Workflow not found"
// @Failure 409 {object} map[string]string "Workflow is not Approved or has no details"
// @Security BearerAuth
// @Router /pay-adjustment-workflows/{id}/implement [post]
func (h *batchHandler) implementWorkflow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workflowID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("workflow_id", workflowID))
	logger.Info("Received request to implement batch workflow")

	resp, err := h.batchService.Implement(c.Request.Context(), workflowID, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to implement batch workflow")
		return
	}

	logger.Info("Batch workflow implemented", slog.Int("affected_employees", resp.AffectedEmployees))
	c.JSON(http.StatusOK, resp)
}
