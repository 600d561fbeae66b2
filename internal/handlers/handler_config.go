package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
)

// configHandler exposes the read side of branch configuration and tax tables.
type configHandler struct {
	configService portssvc.BranchConfigSvcFacade
}

func newConfigHandler(cs portssvc.BranchConfigSvcFacade) *configHandler {
	return &configHandler{configService: cs}
}

// registerConfigRoutes registers routes for branch configs and tax tables.
func registerConfigRoutes(rg *gin.RouterGroup, configService portssvc.BranchConfigSvcFacade) {
	h := newConfigHandler(configService)

	rg.GET("/branches/:id/config", h.getBranchConfig)
	rg.GET("/tax-tables/:version", h.getTaxTable)
}

// getBranchConfig godoc
// @Summary Get effective branch configuration
// @Description Returns the rates a payroll run for this branch would use; missing rows resolve to defaults
// @Tags config
// @Produce json
// @Param id path string true "Branch ID"
// @Success 200 {object} domain.BranchConfig
// @Security BearerAuth
// @Router /branches/{id}/config [get]
func (h *configHandler) getBranchConfig(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("id")

	cfg, err := h.configService.GetBranchConfig(c.Request.Context(), branchID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve branch config")
		return
	}
	c.JSON(200, cfg)
}

// getTaxTable godoc
// @Summary Get a withholding tax table
// @Tags config
// @Produce json
// @Param version path string true "Tax table version"
// @Success 200 {object} domain.TaxTable
// @Failure 404 {object} map[string]string "Unknown tax table version"
// @Security BearerAuth
// @Router /tax-tables/{version} [get]
func (h *configHandler) getTaxTable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	version := c.Param("version")

	table, err := h.configService.GetTaxTable(c.Request.Context(), version)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve tax table")
		return
	}
	c.JSON(200, table)
}
