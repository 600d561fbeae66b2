package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// revisionHandler handles HTTP requests for grade revisions.
type revisionHandler struct {
	revisionService portssvc.RevisionSvcFacade
}

func newRevisionHandler(rs portssvc.RevisionSvcFacade) *revisionHandler {
	return &revisionHandler{revisionService: rs}
}

// registerRevisionRoutes registers routes for grade revisions.
func registerRevisionRoutes(rg *gin.RouterGroup, revisionService portssvc.RevisionSvcFacade) {
	h := newRevisionHandler(revisionService)

	revisions := rg.Group("/grade-revisions")
	{
		revisions.POST("", h.createRevision)
		revisions.GET("/:id", h.getRevision)
		revisions.GET("", h.listRevisions)
		revisions.POST("/:id/submit", h.submitRevision)
		revisions.POST("/:id/approve", h.approveRevision)
		revisions.POST("/:id/reject", h.rejectRevision)
		revisions.POST("/:id/implement", h.implementRevision)
	}
}

// createRevision godoc
// @Summary Create a grade revision
// @Description Proposes new bands or a percentage uplift for a grade; exactly one strategy must be supplied
// @Tags grade-revisions
// @Accept json
// @Produce json
// @Param revision body dto.CreateRevisionRequest true "Revision details"
// @Success 201 {object} dto.RevisionResponse
// @Failure 400 {object} map[string]string "Invalid input or contradictory strategy"
// @Security BearerAuth
// @Router /grade-revisions [post]
func (h *revisionHandler) createRevision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRevision", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("grade_id", req.GradeID))
	logger.Info("Received request to create grade revision")

	revision, err := h.revisionService.CreateRevision(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create grade revision")
		return
	}

	logger.Info("Grade revision created", slog.String("revision_id", revision.RevisionID))
	c.JSON(http.StatusCreated, dto.ToRevisionResponse(revision))
}

// getRevision godoc
// @Summary Get a grade revision by ID
// @Tags grade-revisions
// @Produce json
// @Param id path string true "Revision ID"
// @Success 200 {object} dto.RevisionResponse
// @Failure 404 {object} map[string]string "Revision not found"
// @Security BearerAuth
// @Router /grade-revisions/{id} [get]
func (h *revisionHandler) getRevision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	revisionID := c.Param("id")

	revision, err := h.revisionService.GetRevisionByID(c.Request.Context(), revisionID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve grade revision")
		return
	}
	c.JSON(http.StatusOK, dto.ToRevisionResponse(revision))
}

// listRevisions godoc
// @Summary List grade revisions
// @Tags grade-revisions
// @Produce json
// @Param gradeID query string false "Grade ID"
// @Param status query string false "Revision status"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListRevisionsResponse
// @Failure 400 {object} map[string]string "Invalid filter parameters"
// @Security BearerAuth
// @Router /grade-revisions [get]
func (h *revisionHandler) listRevisions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListRevisionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListRevisions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.revisionService.ListRevisions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list grade revisions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// submitRevision godoc
// @Summary Submit a draft revision for review
// @Tags grade-revisions
// @Produce json
// @Param id path string true "Revision ID"
// @Success 204 "Revision submitted"
// @Failure 404 {object} map[string]string "Revision not found"
// @Failure 409 {object} map[string]string "Revision is not in Draft"
// @Security BearerAuth
// @Router /grade-revisions/{id}/submit [post]
func (h *revisionHandler) submitRevision(c *gin.Context) {
	h.transition(c, "submit", h.revisionService.SubmitForReview)
}

// approveRevision godoc
// @Summary Approve a pending revision
// @Tags grade-revisions
// @Produce json
// @Param id path string true "Revision ID"
// @Success 204 "Revision approved"
// @Failure 404 {object} map[string]string "Revision not found"
// @Failure 409 {object} map[string]string "Revision is not Pending Review"
// @Security BearerAuth
// @Router /grade-revisions/{id}/approve [post]
func (h *revisionHandler) approveRevision(c *gin.Context) {
	h.transition(c, "approve", h.revisionService.Approve)
}

// rejectRevision godoc
// @Summary Reject a pending revision
// @Tags grade-revisions
// @Produce json
// @Param id path string true "Revision ID"
// @Success 204 "Revision rejected"
// @Failure 404 {object} map[string]string "Revision not found"
// @Failure 409 {object} map[string]string "Revision is not Pending Review"
// @Security BearerAuth
// @Router /grade-revisions/{id}/reject [post]
func (h *revisionHandler) rejectRevision(c *gin.Context) {
	h.transition(c, "reject", h.revisionService.Reject)
}

// implementRevision godoc
// @Summary Implement an approved revision
// @Description Applies the new bands to the grade and cascades one pending adjustment per mapped employee
// @Tags grade-revisions
// @Produce json
// @Param id path string true "Revision ID"
// @Success 200 {object} dto.ImplementRevisionResponse
// @Failure 404 {object} map[string]string "Revision not found"
// @Failure 409 {object} map[string]string "Revision is not Approved"
// @Security BearerAuth
// @Router /grade-revisions/{id}/implement [post]
func (h *revisionHandler) implementRevision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	revisionID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("revision_id", revisionID))
	logger.Info("Received request to implement grade revision")

	resp, err := h.revisionService.Implement(c.Request.Context(), revisionID, actorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to implement grade revision")
		return
	}

	logger.Info("Grade revision implemented", slog.Int("affected_employees", resp.AffectedEmployees))
	c.JSON(http.StatusOK, resp)
}

// transition shares the no-body status endpoints. fn is one of the service's
// SubmitForReview/Approve/Reject methods.
func (h *revisionHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, revisionID, actorID string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	revisionID := c.Param("id")

	actorID, _, ok := requireActor(c, logger)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), revisionID, actorID); err != nil {
		respondWithError(c, logger, err, "Failed to "+action+" grade revision")
		return
	}

	logger.Info("Grade revision transition applied",
		slog.String("action", action), slog.String("revision_id", revisionID))
	c.Status(http.StatusNoContent)
}
