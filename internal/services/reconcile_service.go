package services

import (
	"context"
	"errors"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/pricing"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusInput carries the reconciliation figures a status decision needs
type StatusInput struct {
	TotalPrice      float64
	ReceivedAmount  float64
	BookingReceived float64
	ActiveToken     bool
}

// ResolveStatus derives a plot status from reconciliation figures.
// Rules are evaluated top to bottom, first match wins:
//  1. fully paid against a known price means sold
//  2. any booking money, or any money on an unpriced plot, means booked
//  3. a live token hold means tokened
//  4. otherwise the plot is available
func ResolveStatus(in StatusInput) string {
	if in.TotalPrice > 0 && in.ReceivedAmount >= in.TotalPrice {
		return models.PlotStatusSold
	}
	if in.BookingReceived > 0 {
		return models.PlotStatusBooked
	}
	if in.TotalPrice <= 0 && in.ReceivedAmount > 0 {
		return models.PlotStatusBooked
	}
	if in.ActiveToken {
		return models.PlotStatusTokened
	}
	return models.PlotStatusAvailable
}

// ComputeFigures sums receipt contributions for a plot. A receipt counts when
// it is approved, or when it is a still pending token. Rejected and expired
// receipts never count. Returns the total received, the booking portion of it,
// and whether a token hold (approved or pending, not past expiry) is live as
// of now.
func ComputeFigures(receipts []models.Receipt, now time.Time) (received, bookingReceived float64, activeToken bool) {
	total := decimal.Zero
	booking := decimal.Zero

	for i := range receipts {
		r := &receipts[i]
		if r.CountsTowardReceived() {
			contribution := decimal.NewFromFloat(r.Contribution())
			total = total.Add(contribution)
			if r.Type == models.ReceiptTypeBooking {
				booking = booking.Add(contribution)
			}
		}
		if r.HoldsPlotAt(now) {
			activeToken = true
		}
	}

	return total.InexactFloat64(), booking.InexactFloat64(), activeToken
}

// ReconcileService recomputes plot financial figures and status from the
// receipts that reference the plot by site name and plot number.
type ReconcileService struct {
	db *gorm.DB
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(db *gorm.DB) *ReconcileService {
	return &ReconcileService{db: db}
}

// ReconcileKey recomputes and persists the received amount and status of the
// plot identified by key. It must be called inside an open transaction, the
// plot row is locked for the duration. Returns ErrUnlinkedPlot when no plot
// matches the key.
func (s *ReconcileService) ReconcileKey(ctx context.Context, tx *gorm.DB, key repository.PlotKey) (*models.Plot, error) {
	plots := repository.NewPlotRepository(tx)
	receipts := repository.NewReceiptRepository(tx)

	plot, err := plots.FindByKeyForUpdate(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnlinkedPlot
		}
		return nil, err
	}

	all, err := receipts.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	plot.EnsureTotalPrice()

	received, bookingReceived, activeToken := ComputeFigures(all, time.Now())
	plot.ReceivedAmount = received
	plot.Status = ResolveStatus(StatusInput{
		TotalPrice:      plot.TotalPrice,
		ReceivedAmount:  received,
		BookingReceived: bookingReceived,
		ActiveToken:     activeToken,
	})

	if err := plots.Update(ctx, plot); err != nil {
		return nil, err
	}
	return plot, nil
}

// RecalculatePlot rebuilds the derived fields of a single plot from scratch:
// size re-parsed from its raw text, total price, received amount and status.
func (s *ReconcileService) RecalculatePlot(ctx context.Context, key repository.PlotKey) (*models.Plot, error) {
	var result *models.Plot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plots := repository.NewPlotRepository(tx)

		plot, err := plots.FindByKeyForUpdate(ctx, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		plot.Size = pricing.ParseSize(plot.SizeText)
		if plot.UnitRate > 0 {
			plot.TotalPrice = pricing.TotalPrice(plot.Size, plot.UnitRate)
		}
		if err := plots.Update(ctx, plot); err != nil {
			return err
		}

		result, err = s.ReconcileKey(ctx, tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecalculateAllPlots runs RecalculatePlot over every plot. Each plot gets its
// own transaction so one bad row does not abort the whole run. Returns the
// number of plots successfully recalculated.
func (s *ReconcileService) RecalculateAllPlots(ctx context.Context) (int, error) {
	keys, err := repository.NewPlotRepository(s.db).AllKeys(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, key := range keys {
		if _, err := s.RecalculatePlot(ctx, key); err != nil {
			logger.Error("failed to recalculate plot",
				"site_name", key.SiteName,
				"plot_no", key.PlotNo,
				"error", err)
			continue
		}
		count++
	}

	logger.Info("plot recalculation finished", "recalculated", count, "total", len(keys))
	return count, nil
}
