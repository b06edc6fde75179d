package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/jobs"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/pricing"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/statemachine"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptService handles the receipt lifecycle: creation, approval, rejection
// and the plot reconciliation each of those triggers.
type ReceiptService struct {
	db            *gorm.DB
	reconciler    *ReconcileService
	notifications *NotificationService
	audits        *AuditService
	worker        *jobs.Worker
}

// NewReceiptService creates a new receipt service
func NewReceiptService(db *gorm.DB, reconciler *ReconcileService, notifications *NotificationService, audits *AuditService, worker *jobs.Worker) *ReceiptService {
	return &ReceiptService{
		db:            db,
		reconciler:    reconciler,
		notifications: notifications,
		audits:        audits,
		worker:        worker,
	}
}

// CreateReceiptInput carries the fields accepted when recording a receipt
type CreateReceiptInput struct {
	SiteName     string
	PlotNo       string
	Type         string
	Amount       float64
	OtherCharges *string
	Discount     float64
	ExpiryDate   *time.Time
	Remarks      *string
	CreatedByID  uint
	CreatorRole  string
}

// ApproveReceiptInput carries the approval decision details
type ApproveReceiptInput struct {
	ApproverID uint
	Remarks    *string
	// Discount, when set, replaces the per-unit discount proposed at creation
	Discount *float64
	// ExpiryDate, when set, replaces the receipt's expiry (token extension)
	ExpiryDate *time.Time
}

// finalAmount fixes a receipt's total at approval time: the base amount plus
// any surcharge parsed from the other charges text.
func finalAmount(amount float64, otherCharges *string) float64 {
	if otherCharges == nil {
		return amount
	}
	return amount + pricing.ParseCharges(*otherCharges)
}

// applyApproval stamps the approval details on a receipt and applies its
// discount to the plot's pricing. The approver's discount overrides the
// proposal stored at creation; the receipt keeps the discount actually
// granted after clamping to the plot's current rate. plot may be nil when
// the receipt outlived its plot, the pricing is then left alone.
func applyApproval(receipt *models.Receipt, plot *models.Plot, approverID uint, discount *float64, now time.Time) {
	receipt.TotalAmount = finalAmount(receipt.Amount, receipt.OtherCharges)
	if discount != nil {
		receipt.Discount = *discount
	}
	if receipt.Discount > 0 && plot != nil {
		newRate, newTotal := pricing.ApplyDiscount(plot.EffectiveSize(), plot.UnitRate, receipt.Discount)
		receipt.Discount = plot.UnitRate - newRate
		plot.UnitRate = newRate
		plot.TotalPrice = newTotal
	}
	receipt.ApprovedByID = &approverID
	receipt.ApprovedAt = &now
}

// Create records a new pending receipt against the plot identified by site
// name and plot number. The plot must exist. Token receipts count toward the
// plot's received amount immediately, so the plot is reconciled in the same
// transaction. The total amount stays unset until approval fixes it; a
// pending receipt contributes its base amount only. Receipts recorded by an
// admin skip the review queue and are approved on the spot, discount
// included.
func (s *ReceiptService) Create(ctx context.Context, input CreateReceiptInput) (*models.Receipt, error) {
	if input.Type != models.ReceiptTypeToken && input.Type != models.ReceiptTypeBooking {
		return nil, fmt.Errorf("invalid receipt type: %s", input.Type)
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("receipt amount must be positive")
	}

	var receipt *models.Receipt
	var sold bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plots := repository.NewPlotRepository(tx)
		receipts := repository.NewReceiptRepository(tx)

		key := repository.PlotKey{SiteName: input.SiteName, PlotNo: input.PlotNo}
		plot, err := plots.FindByKeyForUpdate(ctx, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		nextNo, err := receipts.NextReceiptNo(ctx)
		if err != nil {
			return err
		}

		receipt = &models.Receipt{
			ReceiptNo:    nextNo,
			GUID:         uuid.NewString(),
			SiteName:     input.SiteName,
			PlotNo:       input.PlotNo,
			PlotID:       &plot.ID,
			Type:         input.Type,
			Status:       models.ReceiptStatusPending,
			Amount:       input.Amount,
			OtherCharges: input.OtherCharges,
			Discount:     input.Discount,
			ExpiryDate:   input.ExpiryDate,
			Remarks:      input.Remarks,
			CreatedByID:  input.CreatedByID,
		}

		if input.CreatorRole == models.RoleAdmin {
			receipt.Status = models.ReceiptStatusApproved
			applyApproval(receipt, plot, input.CreatedByID, nil, time.Now())
			if err := plots.Update(ctx, plot); err != nil {
				return err
			}
		}

		if err := receipts.Create(ctx, receipt); err != nil {
			return err
		}

		reconciled, err := s.reconciler.ReconcileKey(ctx, tx, key)
		if err != nil {
			return err
		}
		sold = reconciled.Status == models.PlotStatusSold
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		s.audits.Log(jobCtx, input.CreatedByID, AuditActionCreate, "Receipt", receipt.ID,
			fmt.Sprintf("Receipt #%d (%s) for %s / %s", receipt.ReceiptNo, receipt.Type, receipt.SiteName, receipt.PlotNo), "", "")
		if sold {
			s.notifications.NotifyAdmins(jobCtx,
				"Plot sold",
				fmt.Sprintf("Plot %s / %s is fully paid", receipt.SiteName, receipt.PlotNo),
				models.NotificationTypePlotSold)
		}
		if receipt.Status != models.ReceiptStatusPending {
			return nil
		}
		return s.notifications.NotifyAdmins(jobCtx,
			"Receipt pending approval",
			fmt.Sprintf("Receipt #%d (%s) for plot %s / %s awaits review", receipt.ReceiptNo, receipt.Type, receipt.SiteName, receipt.PlotNo),
			models.NotificationTypeReceiptSubmitted)
	})

	return receipt, nil
}

// Approve moves a pending receipt to approved, fixes its total amount,
// applies the granted discount to the owning plot's pricing and reconciles
// the plot, all in one transaction. Approving an already decided receipt
// returns ErrConflictingState.
func (s *ReceiptService) Approve(ctx context.Context, id uint, input ApproveReceiptInput) (*models.Receipt, error) {
	var receipt *models.Receipt
	var sold bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plots := repository.NewPlotRepository(tx)
		receipts := repository.NewReceiptRepository(tx)

		var err error
		receipt, err = receipts.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		rfsm := statemachine.NewReceiptFSM(receipt)
		if err := rfsm.Approve(ctx); err != nil {
			return ErrConflictingState
		}

		key := repository.PlotKey{SiteName: receipt.SiteName, PlotNo: receipt.PlotNo}
		plot, err := plots.FindByKeyForUpdate(ctx, key)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// Receipt outlived its plot. Keep the approval, skip the plot work.
			logger.Warn("approving receipt with no matching plot",
				"receipt_id", receipt.ID, "site_name", receipt.SiteName, "plot_no", receipt.PlotNo)
			plot = nil
		}

		applyApproval(receipt, plot, input.ApproverID, input.Discount, time.Now())
		if input.Remarks != nil {
			receipt.Remarks = input.Remarks
		}
		if input.ExpiryDate != nil {
			receipt.ExpiryDate = input.ExpiryDate
		}

		if plot != nil {
			if err := plots.Update(ctx, plot); err != nil {
				return err
			}
		}

		if err := receipts.Update(ctx, receipt); err != nil {
			return err
		}

		if plot == nil {
			return nil
		}
		plot, err = s.reconciler.ReconcileKey(ctx, tx, key)
		if err != nil {
			return err
		}
		sold = plot.Status == models.PlotStatusSold
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		s.audits.Log(jobCtx, input.ApproverID, AuditActionApprove, "Receipt", receipt.ID,
			fmt.Sprintf("Receipt #%d approved", receipt.ReceiptNo), "", "")
		if sold {
			s.notifications.NotifyAdmins(jobCtx,
				"Plot sold",
				fmt.Sprintf("Plot %s / %s is fully paid", receipt.SiteName, receipt.PlotNo),
				models.NotificationTypePlotSold)
		}
		return s.notifications.NotifyUser(jobCtx, receipt.CreatedByID,
			"Receipt approved",
			fmt.Sprintf("Receipt #%d for plot %s / %s was approved", receipt.ReceiptNo, receipt.SiteName, receipt.PlotNo),
			models.NotificationTypeReceiptApproved)
	})

	return receipt, nil
}

// Reject moves a pending receipt to rejected and reconciles the plot, since a
// rejected token stops counting toward the received amount. Rejecting an
// already decided receipt returns ErrConflictingState.
func (s *ReceiptService) Reject(ctx context.Context, id uint, approverID uint, remarks *string) (*models.Receipt, error) {
	var receipt *models.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receipts := repository.NewReceiptRepository(tx)

		var err error
		receipt, err = receipts.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		rfsm := statemachine.NewReceiptFSM(receipt)
		if err := rfsm.Reject(ctx); err != nil {
			return ErrConflictingState
		}

		now := time.Now()
		receipt.ApprovedByID = &approverID
		receipt.ApprovedAt = &now
		if remarks != nil {
			receipt.Remarks = remarks
		}

		if err := receipts.Update(ctx, receipt); err != nil {
			return err
		}

		key := repository.PlotKey{SiteName: receipt.SiteName, PlotNo: receipt.PlotNo}
		if _, err := s.reconciler.ReconcileKey(ctx, tx, key); err != nil {
			if errors.Is(err, ErrUnlinkedPlot) {
				logger.Warn("rejecting receipt with no matching plot",
					"receipt_id", receipt.ID, "site_name", receipt.SiteName, "plot_no", receipt.PlotNo)
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(jobCtx context.Context) error {
		s.audits.Log(jobCtx, approverID, AuditActionReject, "Receipt", receipt.ID,
			fmt.Sprintf("Receipt #%d rejected", receipt.ReceiptNo), "", "")
		return s.notifications.NotifyUser(jobCtx, receipt.CreatedByID,
			"Receipt rejected",
			fmt.Sprintf("Receipt #%d for plot %s / %s was rejected", receipt.ReceiptNo, receipt.SiteName, receipt.PlotNo),
			models.NotificationTypeReceiptRejected)
	})

	return receipt, nil
}

// GetByID returns a single receipt
func (s *ReceiptService) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	receipt, err := repository.NewReceiptRepository(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return receipt, nil
}

// List returns receipts matching the query
func (s *ReceiptService) List(ctx context.Context, query *repository.ListQuery) ([]models.Receipt, int64, error) {
	return repository.NewReceiptRepository(s.db).List(ctx, query)
}

// ListForPlot returns all receipts recorded against a plot's business key
func (s *ReceiptService) ListForPlot(ctx context.Context, siteName, plotNo string) ([]models.Receipt, error) {
	return repository.NewReceiptRepository(s.db).FindByKey(ctx, repository.PlotKey{SiteName: siteName, PlotNo: plotNo})
}
