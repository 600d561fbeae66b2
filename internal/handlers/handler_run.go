package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// runHandler handles HTTP requests for payroll runs and payslips.
type runHandler struct {
	runService portssvc.PayrollRunSvcFacade
}

func newRunHandler(rs portssvc.PayrollRunSvcFacade) *runHandler {
	return &runHandler{runService: rs}
}

// registerRunRoutes registers routes for payroll runs and payslips.
func registerRunRoutes(rg *gin.RouterGroup, runService portssvc.PayrollRunSvcFacade) {
	h := newRunHandler(runService)

	runs := rg.Group("/payroll-runs")
	{
		runs.POST("", h.createRun)
		runs.GET("/:id", h.getRun)
		runs.GET("", h.listRuns)
		runs.POST("/:id/process", h.processRun)
		runs.POST("/:id/approve", h.approveRun)
		runs.POST("/:id/lock", h.lockRun)
		runs.GET("/:id/payslips", h.listPayslips)
	}

	payslips := rg.Group("/payslips")
	{
		payslips.GET("/:id", h.getPayslip)
		payslips.POST("/:id/void", h.voidPayslip)
	}
}

// createRun godoc
// @Summary Create a payroll run
// @Description Creates a Draft payroll run for a branch and pay period
// @Tags payroll-runs
// @Accept json
// @Produce json
// @Param run body dto.CreateRunRequest true "Run details"
// @Success 201 {object} dto.RunResponse
// @Failure 400 {object} map[string]string "Invalid input or period ordering"
// @Failure 409 {object} map[string]string "Overlapping run for the branch"
// @Security BearerAuth
// @Router /payroll-runs [post]
func (h *runHandler) createRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRun", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("branch_id", req.BranchID))
	logger.Info("Received request to create payroll run")

	run, err := h.runService.CreateRun(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create payroll run")
		return
	}

	logger.Info("Payroll run created", slog.String("run_id", run.RunID))
	c.JSON(http.StatusCreated, dto.ToRunResponse(run))
}

// getRun godoc
// @Summary Get a payroll run by ID
// @Tags payroll-runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} dto.RunResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Security BearerAuth
// @Router /payroll-runs/{id} [get]
func (h *runHandler) getRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("id")

	run, err := h.runService.GetRunByID(c.Request.Context(), runID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve payroll run")
		return
	}
	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// listRuns godoc
// @Summary List payroll runs
// @Description Lists runs newest period first, filtered by branch, status and period dates
// @Tags payroll-runs
// @Produce json
// @Param branchID query string false "Branch ID"
// @Param status query string false "Run status"
// @Param from query string false "Period start lower bound (YYYY-MM-DD)"
// @Param to query string false "Period start upper bound (YYYY-MM-DD)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListRunsResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Security BearerAuth
// @Router /payroll-runs [get]
func (h *runHandler) listRuns(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListRunsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListRuns", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.runService.ListRuns(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list payroll runs")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// processRun godoc
// @Summary Process a payroll run
// @Description Computes and persists every payslip for a Draft run atomically, returning the completed run and the skip list
// @Tags payroll-runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} dto.ProcessRunResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 409 {object} map[string]string "Run is not in Draft"
// @Security BearerAuth
// @Router /payroll-runs/{id}/process [post]
func (h *runHandler) processRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("id")

	actorID, actorRole, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("run_id", runID))
	logger.Info("Received request to process payroll run")

	result, err := h.runService.ProcessRun(c.Request.Context(), runID, actorID, actorRole)
	if err != nil {
		respondWithError(c, logger, err, "Failed to process payroll run")
		return
	}

	logger.Info("Payroll run processed",
		slog.Int("employee_count", result.Run.EmployeeCount),
		slog.Int("skipped", len(result.Skipped)))
	c.JSON(http.StatusOK, dto.ProcessRunResponse{
		Run:     dto.ToRunResponse(&result.Run),
		Skipped: result.Skipped,
	})
}

// approveRun godoc
// @Summary Approve a completed payroll run
// @Tags payroll-runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} dto.RunResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 409 {object} map[string]string "Run is not Completed"
// @Security BearerAuth
// @Router /payroll-runs/{id}/approve [post]
func (h *runHandler) approveRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("id")

	actorID, actorRole, ok := requireActor(c, logger)
	if !ok {
		return
	}

	run, err := h.runService.ApproveRun(c.Request.Context(), runID, actorID, actorRole)
	if err != nil {
		respondWithError(c, logger, err, "Failed to approve payroll run")
		return
	}

	logger.Info("Payroll run approved", slog.String("run_id", runID))
	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// lockRun godoc
// @Summary Lock an approved payroll run
// @Description Locks the run for disbursement; locked runs and their payslips are immutable
// @Tags payroll-runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} dto.RunResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 409 {object} map[string]string "Run is not Approved"
// @Security BearerAuth
// @Router /payroll-runs/{id}/lock [post]
func (h *runHandler) lockRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("id")

	actorID, actorRole, ok := requireActor(c, logger)
	if !ok {
		return
	}

	run, err := h.runService.LockRun(c.Request.Context(), runID, actorID, actorRole)
	if err != nil {
		respondWithError(c, logger, err, "Failed to lock payroll run")
		return
	}

	logger.Info("Payroll run locked", slog.String("run_id", runID))
	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// listPayslips godoc
// @Summary List payslips of a run
// @Tags payroll-runs
// @Produce json
// @Param id path string true "Run ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListPayslipsResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Security BearerAuth
// @Router /payroll-runs/{id}/payslips [get]
func (h *runHandler) listPayslips(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	runID := c.Param("id")
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListPayslips", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.runService.ListPayslipsByRun(c.Request.Context(), runID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list payslips")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getPayslip godoc
// @Summary Get a payslip by ID
// @Description Retrieves one payslip including its full computation trace
// @Tags payslips
// @Produce json
// @Param id path string true "Payslip ID"
// @Success 200 {object} dto.PayslipResponse
// @Failure 404 {object} map[string]string "Payslip not found"
// @Security BearerAuth
// @Router /payslips/{id} [get]
func (h *runHandler) getPayslip(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payslipID := c.Param("id")

	payslip, err := h.runService.GetPayslipByID(c.Request.Context(), payslipID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve payslip")
		return
	}
	c.JSON(http.StatusOK, dto.ToPayslipResponse(payslip))
}

// voidPayslip godoc
// @Summary Void a payslip
// @Description Soft-deletes an active payslip; fails once the owning run is locked
// @Tags payslips
// @Produce json
// @Param id path string true "Payslip ID"
// @Success 204 "Payslip voided"
// @Failure 404 {object} map[string]string "Payslip not found"
// @Failure 409 {object} map[string]string "Payslip already voided or run locked"
// @Security BearerAuth
// @Router /payslips/{id}/void [post]
func (h *runHandler) voidPayslip(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	payslipID := c.Param("id")

	actorID, actorRole, ok := requireActor(c, logger)
	if !ok {
		return
	}

	if err := h.runService.VoidPayslip(c.Request.Context(), payslipID, actorID, actorRole); err != nil {
		respondWithError(c, logger, err, "Failed to void payslip")
		return
	}

	logger.Info("Payslip voided", slog.String("payslip_id", payslipID))
	c.Status(http.StatusNoContent)
}
