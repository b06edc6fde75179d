package handlers

import (
	"net/http"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Plot         *PlotHandler
	Receipt      *ReceiptHandler
	Maintenance  *MaintenanceHandler
	User         *UserHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Plot:         NewPlotHandler(svcs.Plot, svcs.Export, svcs.Import),
		Receipt:      NewReceiptHandler(svcs.Receipt, svcs.Export),
		Maintenance:  NewMaintenanceHandler(svcs.Reconcile, svcs.Sweep, svcs.Job, svcs.Audit),
		User:         NewUserHandler(svcs.User),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
	}
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "subhsankalp-crm",
		"version": "1.0.0",
	})
}
