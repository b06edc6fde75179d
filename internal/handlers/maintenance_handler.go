package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/middleware"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	reconcileService *services.ReconcileService
	sweepService     *services.SweepService
	jobService       *services.JobService
	auditService     *services.AuditService
}

func NewMaintenanceHandler(reconcileService *services.ReconcileService, sweepService *services.SweepService, jobService *services.JobService, auditService *services.AuditService) *MaintenanceHandler {
	return &MaintenanceHandler{
		reconcileService: reconcileService,
		sweepService:     sweepService,
		jobService:       jobService,
		auditService:     auditService,
	}
}

type RecalculateRequest struct {
	SiteName string `json:"site_name" binding:"required"`
	PlotNo   string `json:"plot_no" binding:"required"`
}

// @Summary Recalculate Plot
// @Description Rebuild a single plot's derived fields from its receipts
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request body RecalculateRequest true "Plot business key"
// @Success 200 {object} models.PlotResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /maintenance/recalculate [post]
func (h *MaintenanceHandler) Recalculate(c *gin.Context) {
	var req RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_name and plot_no are required"})
		return
	}

	plot, err := h.reconcileService.RecalculatePlot(c.Request.Context(), repository.PlotKey{
		SiteName: req.SiteName,
		PlotNo:   req.PlotNo,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.auditService.Log(c.Request.Context(), middleware.GetUserID(c), services.AuditActionRecalculate,
		"Plot", plot.ID, fmt.Sprintf("Plot %s / %s recalculated", plot.SiteName, plot.PlotNo),
		c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"plot": plot.ToResponse(), "message": "Plot recalculated"})
}

// @Summary Recalculate All Plots
// @Description Rebuild every plot's derived fields, one transaction per plot
// @Tags Maintenance
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /maintenance/recalculate-all [post]
func (h *MaintenanceHandler) RecalculateAll(c *gin.Context) {
	count, err := h.reconcileService.RecalculateAllPlots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.auditService.Log(c.Request.Context(), middleware.GetUserID(c), services.AuditActionRecalculate,
		"Plot", 0, fmt.Sprintf("%d plots recalculated", count),
		c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"recalculated": count, "message": "Recalculation finished"})
}

// @Summary Sweep Expired Tokens
// @Description Expire approved token receipts past their expiry date and release their plots
// @Tags Maintenance
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /maintenance/sweep [post]
func (h *MaintenanceHandler) Sweep(c *gin.Context) {
	expired, err := h.sweepService.SweepExpiredTokens(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": expired, "message": "Sweep finished"})
}

// @Summary Worker Status
// @Description Background worker queue statistics
// @Tags Maintenance
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /maintenance/jobs [get]
func (h *MaintenanceHandler) JobStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobService.GetStatus())
}
