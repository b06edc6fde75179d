package services

import (
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/jobs"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	User         *UserService
	Plot         *PlotService
	Receipt      *ReceiptService
	Reconcile    *ReconcileService
	Sweep        *SweepService
	Notification *NotificationService
	Audit        *AuditService
	Export       *ExportService
	Import       *ImportService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	auditSvc := NewAuditService(db)
	reconcileSvc := NewReconcileService(db)
	plotSvc := NewPlotService(db, reconcileSvc, auditSvc)

	return &Services{
		User:         NewUserService(repos.User),
		Plot:         plotSvc,
		Receipt:      NewReceiptService(db, reconcileSvc, notificationSvc, auditSvc, worker),
		Reconcile:    reconcileSvc,
		Sweep:        NewSweepService(db, reconcileSvc, notificationSvc, auditSvc),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Export:       NewExportService(db),
		Import:       NewImportService(plotSvc),
		Job:          NewJobService(worker),
	}
}
