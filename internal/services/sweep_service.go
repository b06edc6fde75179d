package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/statemachine"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/pkg/logger"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SweepService expires overdue token receipts. A token holds a plot only
// until its expiry date; once past it, the receipt is marked expired and the
// plot is reconciled so it drops back to available unless other money holds
// it. The sweep is idempotent, an expired receipt is terminal and is never
// picked up again.
type SweepService struct {
	db            *gorm.DB
	reconciler    *ReconcileService
	notifications *NotificationService
	audits        *AuditService
	limiter       *rate.Limiter
}

// NewSweepService creates a new sweep service. The limiter bounds how fast
// individual plots are processed so a large backlog after downtime does not
// saturate the database.
func NewSweepService(db *gorm.DB, reconciler *ReconcileService, notifications *NotificationService, audits *AuditService) *SweepService {
	return &SweepService{
		db:            db,
		reconciler:    reconciler,
		notifications: notifications,
		audits:        audits,
		limiter:       rate.NewLimiter(rate.Limit(20), 5),
	}
}

// SweepExpiredTokens finds approved token receipts whose expiry date has
// passed as of now, expires them and reconciles their plots. Returns the
// number of receipts expired.
func (s *SweepService) SweepExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	overdue, err := repository.NewReceiptRepository(s.db).FindExpiredTokens(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	logger.Info("token sweep started", "overdue", len(overdue))

	expired := 0
	for i := range overdue {
		if err := s.limiter.Wait(ctx); err != nil {
			return expired, err
		}

		if err := s.expireOne(ctx, overdue[i].ID, now); err != nil {
			logger.Error("failed to expire token receipt",
				"receipt_id", overdue[i].ID, "error", err)
			continue
		}
		expired++
	}

	logger.Info("token sweep finished", "expired", expired)
	return expired, nil
}

// tokenSuperseded reports whether the plot has moved past its token hold. A
// booked or sold plot keeps the token receipt approved and its money on the
// books. Any other status, including a plot already reconciled back to
// available, still needs the overdue receipt itself expired so its money
// stops counting.
func tokenSuperseded(status string) bool {
	return status == models.PlotStatusBooked || status == models.PlotStatusSold
}

func (s *SweepService) expireOne(ctx context.Context, receiptID uint, now time.Time) error {
	var receipt *models.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		receipts := repository.NewReceiptRepository(tx)
		plots := repository.NewPlotRepository(tx)

		var err error
		// Reload inside the transaction, a concurrent sweep or an approval
		// race may have changed the status since the scan.
		receipt, err = receipts.FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if !receipt.IsExpiredAt(now) {
			return nil
		}

		key := repository.PlotKey{SiteName: receipt.SiteName, PlotNo: receipt.PlotNo}
		plot, err := plots.FindByKeyForUpdate(ctx, key)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			logger.Warn("expired receipt has no matching plot",
				"receipt_id", receipt.ID, "site_name", receipt.SiteName, "plot_no", receipt.PlotNo)
			plot = nil
		}

		if plot != nil && tokenSuperseded(plot.Status) {
			return nil
		}

		rfsm := statemachine.NewReceiptFSM(receipt)
		if err := rfsm.Expire(ctx); err != nil {
			return ErrConflictingState
		}

		if err := receipts.Update(ctx, receipt); err != nil {
			return err
		}

		if plot == nil {
			return nil
		}
		_, err = s.reconciler.ReconcileKey(ctx, tx, key)
		return err
	})
	if err != nil {
		return err
	}

	if receipt != nil && receipt.Status == models.ReceiptStatusExpired {
		s.audits.Log(ctx, receipt.CreatedByID, AuditActionExpire, "Receipt", receipt.ID,
			fmt.Sprintf("Token receipt #%d expired", receipt.ReceiptNo), "", "system")
		s.notifications.NotifyUser(ctx, receipt.CreatedByID,
			"Token expired",
			fmt.Sprintf("Token receipt #%d for plot %s / %s has expired", receipt.ReceiptNo, receipt.SiteName, receipt.PlotNo),
			models.NotificationTypeReceiptExpired)
	}

	return nil
}
