package services

import (
	"testing"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTokenSuperseded(t *testing.T) {
	assert.True(t, tokenSuperseded(models.PlotStatusBooked))
	assert.True(t, tokenSuperseded(models.PlotStatusSold))
	assert.False(t, tokenSuperseded(models.PlotStatusTokened))
	assert.False(t, tokenSuperseded(models.PlotStatusAvailable))
}

// A recompute can see an approved token past its expiry before the sweep
// does: the money still counts, the hold does not, and the plot drops to
// available. The sweep must still expire the receipt from that state so the
// money comes off the books.
func TestSweepStillExpiresAfterPlotDroppedToAvailable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	receipts := []models.Receipt{
		{Type: models.ReceiptTypeToken, Status: models.ReceiptStatusApproved, Amount: 50000, ExpiryDate: &past},
	}

	received, bookingReceived, activeToken := ComputeFigures(receipts, now)
	status := ResolveStatus(StatusInput{
		TotalPrice:      1900000,
		ReceivedAmount:  received,
		BookingReceived: bookingReceived,
		ActiveToken:     activeToken,
	})

	assert.Equal(t, 50000.0, received)
	assert.Equal(t, models.PlotStatusAvailable, status)

	// The plot moving to available does not shield the overdue receipt
	assert.False(t, tokenSuperseded(status))
	assert.True(t, receipts[0].IsExpiredAt(now))

	receipts[0].Status = models.ReceiptStatusExpired
	received, _, _ = ComputeFigures(receipts, now)
	assert.Equal(t, 0.0, received)
}
